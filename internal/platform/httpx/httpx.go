// Package httpx holds the gin helpers shared by the module HTTP handlers.
package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "calmtrace/internal/platform/errors"
)

const UserHeader = "X-User-ID"

// RequireUser aborts with 401 when the caller identity header is missing.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader(UserHeader)) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + UserHeader})
			return
		}
		c.Next()
	}
}

// Logger logs one line per request; 5xx responses at Error.
func Logger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
			"user_id":  UserID(c),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithError(c.Errors.Last())
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("request failed")
			return
		}
		entry.Debug("request served")
	}
}

func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(UserHeader))
}

func Status(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrInvalidReference):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrCannotDeleteActive), errors.Is(err, apperrors.ErrSessionAlreadyEnded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func WriteError(c *gin.Context, err error) {
	status := Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}

func BadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request data", "details": err.Error()})
}

// QueryTime parses an optional RFC3339 query parameter.
func QueryTime(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

// RequiredTime parses a mandatory RFC3339 query parameter.
func RequiredTime(c *gin.Context, name string) (time.Time, error) {
	t, err := QueryTime(c, name)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	return *t, nil
}
