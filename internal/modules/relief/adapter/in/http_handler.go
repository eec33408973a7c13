package in

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	reliefdto "calmtrace/internal/modules/relief/dto"
	reliefin "calmtrace/internal/modules/relief/port/in"
	"calmtrace/internal/platform/httpx"
)

type HTTPHandler struct {
	usecase reliefin.Usecase
}

func NewHTTPHandler(usecase reliefin.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

type startRequest struct {
	InterventionID string     `json:"intervention_id" binding:"required"`
	TriggerType    string     `json:"trigger_type"`
	StartedAt      *time.Time `json:"started_at"`
	AnomalyID      *int64     `json:"anomaly_id"`
	GestureCode    string     `json:"gesture_code"`
}

type endRequest struct {
	EndedAt    *time.Time `json:"ended_at"`
	UserRating *int       `json:"user_rating"`
}

type interventionRequest struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Name            string `json:"name" binding:"required"`
	Kind            string `json:"kind"`
	Description     string `json:"description"`
	DurationSeconds int    `json:"duration_seconds"`
}

func (h HTTPHandler) Register(r gin.IRouter) {
	r.GET("/interventions", h.listInterventions)
	r.POST("/interventions", h.saveIntervention)
	r.GET("/interventions/:id", h.getIntervention)

	g := r.Group("/relief")
	g.POST("/sessions", h.start)
	g.POST("/sessions/:id/end", h.end)
	g.GET("/sessions/:id", h.get)
	g.GET("/sessions", h.list)
	g.GET("/stats", h.stats)
}

func (h HTTPHandler) start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	out, err := h.usecase.Start(c.Request.Context(), reliefdto.StartInput{
		UserID:         httpx.UserID(c),
		InterventionID: req.InterventionID,
		TriggerType:    req.TriggerType,
		StartedAt:      req.StartedAt,
		AnomalyID:      req.AnomalyID,
		GestureCode:    req.GestureCode,
	})
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h HTTPHandler) end(c *gin.Context) {
	var req endRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, err)
			return
		}
	}
	out, err := h.usecase.End(c.Request.Context(), reliefdto.EndInput{
		UserID:     httpx.UserID(c),
		SessionID:  c.Param("id"),
		EndedAt:    req.EndedAt,
		UserRating: req.UserRating,
	})
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) get(c *gin.Context) {
	out, err := h.usecase.Get(c.Request.Context(), httpx.UserID(c), c.Param("id"))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) list(c *gin.Context) {
	from, err := httpx.RequiredTime(c, "from")
	if err != nil {
		httpx.BadRequest(c, err)
		return
	}
	to, err := httpx.RequiredTime(c, "to")
	if err != nil {
		httpx.BadRequest(c, err)
		return
	}
	out, err := h.usecase.List(c.Request.Context(), reliefdto.ListInput{UserID: httpx.UserID(c), From: from, To: to})
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) stats(c *gin.Context) {
	out, err := h.usecase.Stats(c.Request.Context(), httpx.UserID(c))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) listInterventions(c *gin.Context) {
	out, err := h.usecase.ListInterventions(c.Request.Context())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) getIntervention(c *gin.Context) {
	out, err := h.usecase.GetIntervention(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) saveIntervention(c *gin.Context) {
	var req interventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	out, err := h.usecase.SaveIntervention(c.Request.Context(), reliefdto.InterventionInput(req))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
