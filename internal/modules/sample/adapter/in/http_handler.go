package in

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	sampledto "calmtrace/internal/modules/sample/dto"
	samplein "calmtrace/internal/modules/sample/port/in"
	"calmtrace/internal/platform/httpx"
)

const maxBodyBytes = 8 << 20

type HTTPHandler struct {
	usecase samplein.Usecase
}

func NewHTTPHandler(usecase samplein.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

func (h HTTPHandler) Register(r gin.IRouter) {
	r.POST("/samples", h.ingest)
	r.GET("/samples", h.list)
}

// ingest takes one sample or an array. The caller header overrides any
// user_id in the body.
func (h HTTPHandler) ingest(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		httpx.BadRequest(c, err)
		return
	}
	samples, err := decodeBatch(body)
	if err != nil {
		httpx.BadRequest(c, err)
		return
	}
	userID := httpx.UserID(c)
	for i := range samples {
		samples[i].UserID = userID
		if err := validate(samples[i]); err != nil {
			httpx.BadRequest(c, err)
			return
		}
	}
	out, err := h.usecase.Ingest(c.Request.Context(), sampledto.IngestInput{Samples: samples})
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, out)
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
	out, err := h.usecase.ListRange(c.Request.Context(), sampledto.RangeInput{UserID: httpx.UserID(c), From: from, To: to})
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
