package in

import (
	"net/http"

	"github.com/gin-gonic/gin"

	riskdto "calmtrace/internal/modules/risk/dto"
	riskin "calmtrace/internal/modules/risk/port/in"
	"calmtrace/internal/platform/httpx"
)

type HTTPHandler struct {
	usecase riskin.Usecase
}

func NewHTTPHandler(usecase riskin.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

type computeRequest struct {
	Date       string   `json:"date" binding:"required"`
	DiaryScore *float64 `json:"diary_score"`
}

func (h HTTPHandler) Register(r gin.IRouter) {
	g := r.Group("/risk")
	g.POST("/scores", h.compute)
	g.GET("/scores", h.list)
	g.GET("/scores/:date", h.get)
}

func (h HTTPHandler) compute(c *gin.Context) {
	var req computeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	out, err := h.usecase.ComputeDay(c.Request.Context(), riskdto.ComputeInput{
		UserID:     httpx.UserID(c),
		Date:       req.Date,
		DiaryScore: req.DiaryScore,
	})
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) get(c *gin.Context) {
	out, err := h.usecase.Get(c.Request.Context(), httpx.UserID(c), c.Param("date"))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// list returns the last 30 days when no range is given.
func (h HTTPHandler) list(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	var (
		out []riskdto.ScoreOutput
		err error
	)
	if from == "" && to == "" {
		out, err = h.usecase.Recent(c.Request.Context(), httpx.UserID(c))
	} else {
		out, err = h.usecase.List(c.Request.Context(), riskdto.ListInput{UserID: httpx.UserID(c), From: from, To: to})
	}
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
