package in

import (
	"context"
	"time"

	reliefdto "calmtrace/internal/modules/relief/dto"
	reliefin "calmtrace/internal/modules/relief/port/in"
)

type CLIHandler struct {
	usecase reliefin.Usecase
}

func NewCLIHandler(usecase reliefin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, input reliefdto.StartInput) (reliefdto.SessionOutput, error) {
	return h.usecase.Start(ctx, input)
}

func (h CLIHandler) End(ctx context.Context, input reliefdto.EndInput) (reliefdto.SessionOutput, error) {
	return h.usecase.End(ctx, input)
}

func (h CLIHandler) Show(ctx context.Context, userID, sessionID string) (reliefdto.SessionOutput, error) {
	return h.usecase.Get(ctx, userID, sessionID)
}

func (h CLIHandler) List(ctx context.Context, userID string, from, to time.Time) ([]reliefdto.SessionOutput, error) {
	return h.usecase.List(ctx, reliefdto.ListInput{UserID: userID, From: from, To: to})
}

func (h CLIHandler) Stats(ctx context.Context, userID string) (reliefdto.StatsOutput, error) {
	return h.usecase.Stats(ctx, userID)
}

func (h CLIHandler) AddIntervention(ctx context.Context, input reliefdto.InterventionInput) (reliefdto.InterventionOutput, error) {
	return h.usecase.SaveIntervention(ctx, input)
}

func (h CLIHandler) ShowIntervention(ctx context.Context, interventionID string) (reliefdto.InterventionOutput, error) {
	return h.usecase.GetIntervention(ctx, interventionID)
}

func (h CLIHandler) ListInterventions(ctx context.Context) ([]reliefdto.InterventionOutput, error) {
	return h.usecase.ListInterventions(ctx)
}
