package in

import (
	"context"

	baselinedto "calmtrace/internal/modules/baseline/dto"
	baselinein "calmtrace/internal/modules/baseline/port/in"
)

type CLIHandler struct {
	usecase baselinein.Usecase
}

func NewCLIHandler(usecase baselinein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Calculate(ctx context.Context, userID string, days int) (baselinedto.BaselineOutput, error) {
	return h.usecase.Calculate(ctx, baselinedto.CalculateInput{UserID: userID, LookbackDays: days})
}

func (h CLIHandler) Update(ctx context.Context, userID string, days int) (baselinedto.BaselineOutput, error) {
	return h.usecase.Update(ctx, baselinedto.CalculateInput{UserID: userID, LookbackDays: days})
}

func (h CLIHandler) Show(ctx context.Context, userID string, version int) (baselinedto.BaselineOutput, error) {
	if version == 0 {
		return h.usecase.GetActive(ctx, userID)
	}
	return h.usecase.GetByVersion(ctx, userID, version)
}

func (h CLIHandler) History(ctx context.Context, userID string) ([]baselinedto.BaselineOutput, error) {
	return h.usecase.History(ctx, userID)
}

func (h CLIHandler) Activate(ctx context.Context, userID string, version int) (baselinedto.BaselineOutput, error) {
	return h.usecase.Activate(ctx, userID, version)
}

func (h CLIHandler) Delete(ctx context.Context, userID string, version int) error {
	return h.usecase.Delete(ctx, userID, version)
}

func (h CLIHandler) Assess(ctx context.Context, input baselinedto.AssessInput) (baselinedto.AssessOutput, error) {
	return h.usecase.Assess(ctx, input)
}

func (h CLIHandler) Classify(ctx context.Context, userID string, index float64) (baselinedto.AssessOutput, error) {
	return h.usecase.Classify(ctx, userID, index)
}
