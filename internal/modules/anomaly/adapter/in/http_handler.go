package in

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	anomalydto "calmtrace/internal/modules/anomaly/dto"
	anomalyin "calmtrace/internal/modules/anomaly/port/in"
	"calmtrace/internal/platform/httpx"
)

type HTTPHandler struct {
	usecase anomalyin.Usecase
}

func NewHTTPHandler(usecase anomalyin.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

func (h HTTPHandler) Register(r gin.IRouter) {
	g := r.Group("/anomalies")
	g.GET("", h.list)
	g.GET("/count", h.count)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.delete)
}

func (h HTTPHandler) list(c *gin.Context) {
	from, err := httpx.QueryTime(c, "from")
	if err != nil {
		httpx.BadRequest(c, err)
		return
	}
	to, err := httpx.QueryTime(c, "to")
	if err != nil {
		httpx.BadRequest(c, err)
		return
	}
	if from != nil && to != nil {
		events, err := h.usecase.ListBetween(c.Request.Context(), anomalydto.RangeInput{UserID: httpx.UserID(c), From: *from, To: *to})
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	events, err := h.usecase.List(c.Request.Context(), anomalydto.ListInput{UserID: httpx.UserID(c), Limit: limit, Offset: offset})
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h HTTPHandler) count(c *gin.Context) {
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
	n, err := h.usecase.CountBetween(c.Request.Context(), anomalydto.RangeInput{UserID: httpx.UserID(c), From: from, To: to})
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h HTTPHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpx.BadRequest(c, err)
		return
	}
	event, err := h.usecase.Get(c.Request.Context(), httpx.UserID(c), id)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h HTTPHandler) delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpx.BadRequest(c, err)
		return
	}
	if err := h.usecase.Delete(c.Request.Context(), httpx.UserID(c), id); err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
