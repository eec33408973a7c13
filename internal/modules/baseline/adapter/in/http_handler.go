package in

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	baselinedto "calmtrace/internal/modules/baseline/dto"
	baselinein "calmtrace/internal/modules/baseline/port/in"
	apperrors "calmtrace/internal/platform/errors"
	"calmtrace/internal/platform/httpx"
)

type HTTPHandler struct {
	usecase baselinein.Usecase
}

func NewHTTPHandler(usecase baselinein.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

type calculateRequest struct {
	LookbackDays int `json:"lookback_days"`
}

func (h HTTPHandler) Register(r gin.IRouter) {
	g := r.Group("/baselines")
	g.POST("", h.calculate)
	g.PUT("", h.update)
	g.GET("/active", h.active)
	g.GET("/history", h.history)
	g.GET("/:version", h.get)
	g.POST("/:version/activate", h.activate)
	g.DELETE("/:version", h.delete)
	g.POST("/assess", h.assess)
	g.GET("/classify", h.classify)
}

func (h HTTPHandler) calculate(c *gin.Context) {
	req, ok := bindCalculate(c)
	if !ok {
		return
	}
	out, err := h.usecase.Calculate(c.Request.Context(), baselinedto.CalculateInput{UserID: httpx.UserID(c), LookbackDays: req.LookbackDays})
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h HTTPHandler) update(c *gin.Context) {
	req, ok := bindCalculate(c)
	if !ok {
		return
	}
	out, err := h.usecase.Update(c.Request.Context(), baselinedto.CalculateInput{UserID: httpx.UserID(c), LookbackDays: req.LookbackDays})
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) active(c *gin.Context) {
	out, err := h.usecase.GetActive(c.Request.Context(), httpx.UserID(c))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) history(c *gin.Context) {
	out, err := h.usecase.History(c.Request.Context(), httpx.UserID(c))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) get(c *gin.Context) {
	version, ok := versionParam(c)
	if !ok {
		return
	}
	out, err := h.usecase.GetByVersion(c.Request.Context(), httpx.UserID(c), version)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) activate(c *gin.Context) {
	version, ok := versionParam(c)
	if !ok {
		return
	}
	out, err := h.usecase.Activate(c.Request.Context(), httpx.UserID(c), version)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) delete(c *gin.Context) {
	version, ok := versionParam(c)
	if !ok {
		return
	}
	if err := h.usecase.Delete(c.Request.Context(), httpx.UserID(c), version); err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HTTPHandler) assess(c *gin.Context) {
	var req baselinedto.AssessInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	req.UserID = httpx.UserID(c)
	out, err := h.usecase.Assess(c.Request.Context(), req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) classify(c *gin.Context) {
	index, err := strconv.ParseFloat(c.Query("stress_index"), 64)
	if err != nil {
		httpx.BadRequest(c, fmt.Errorf("stress_index: %w", err))
		return
	}
	out, err := h.usecase.Classify(c.Request.Context(), httpx.UserID(c), index)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func bindCalculate(c *gin.Context) (calculateRequest, bool) {
	var req calculateRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return req, false
	}
	return req, true
}

func versionParam(c *gin.Context) (int, bool) {
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version < 1 {
		httpx.WriteError(c, fmt.Errorf("%w: invalid version %q", apperrors.ErrInvalidInput, c.Param("version")))
		return 0, false
	}
	return version, true
}
