package in

import (
	"context"

	anomalydto "calmtrace/internal/modules/anomaly/dto"
	anomalyin "calmtrace/internal/modules/anomaly/port/in"
)

type CLIHandler struct {
	usecase anomalyin.Usecase
}

func NewCLIHandler(usecase anomalyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context, userID string, limit, offset int) ([]anomalydto.EventOutput, error) {
	return h.usecase.List(ctx, anomalydto.ListInput{UserID: userID, Limit: limit, Offset: offset})
}

func (h CLIHandler) Delete(ctx context.Context, userID string, eventID int64) error {
	return h.usecase.Delete(ctx, userID, eventID)
}
