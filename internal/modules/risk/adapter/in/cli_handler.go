package in

import (
	"context"

	riskdto "calmtrace/internal/modules/risk/dto"
	riskin "calmtrace/internal/modules/risk/port/in"
)

type CLIHandler struct {
	usecase riskin.Usecase
}

func NewCLIHandler(usecase riskin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Compute(ctx context.Context, userID, date string, diary *float64) (riskdto.ScoreOutput, error) {
	return h.usecase.ComputeDay(ctx, riskdto.ComputeInput{UserID: userID, Date: date, DiaryScore: diary})
}

// ComputeMissing defaults to yesterday when date is empty.
func (h CLIHandler) ComputeMissing(ctx context.Context, date string) (riskdto.MissingOutput, error) {
	return h.usecase.ComputeMissing(ctx, date)
}

func (h CLIHandler) Show(ctx context.Context, userID, date string) (riskdto.ScoreOutput, error) {
	return h.usecase.Get(ctx, userID, date)
}

func (h CLIHandler) List(ctx context.Context, userID, from, to string) ([]riskdto.ScoreOutput, error) {
	if from == "" && to == "" {
		return h.usecase.Recent(ctx, userID)
	}
	return h.usecase.List(ctx, riskdto.ListInput{UserID: userID, From: from, To: to})
}
