package httpx_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "calmtrace/internal/platform/errors"
	"calmtrace/internal/platform/httpx"
)

func TestStatusMapsTaxonomy(t *testing.T) {
	t.Parallel()
	cases := []struct {
		err  error
		want int
	}{
		{apperrors.ErrInvalidInput, http.StatusBadRequest},
		{apperrors.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", apperrors.ErrInvalidReference), http.StatusNotFound},
		{apperrors.ErrForbidden, http.StatusForbidden},
		{apperrors.ErrInsufficientData, http.StatusUnprocessableEntity},
		{apperrors.ErrCannotDeleteActive, http.StatusConflict},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := httpx.Status(tc.err); got != tc.want {
			t.Fatalf("status(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestRequireUserRejectsMissingHeader(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/me", httpx.RequireUser(), func(c *gin.Context) {
		c.String(http.StatusOK, httpx.UserID(c))
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(httpx.UserHeader, "u-1")
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "u-1" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}
