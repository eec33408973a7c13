package usecase

import (
	"context"
	"fmt"

	"calmtrace/internal/modules/anomaly/domain"
	anomalydto "calmtrace/internal/modules/anomaly/dto"
	anomalyin "calmtrace/internal/modules/anomaly/port/in"
	anomalyout "calmtrace/internal/modules/anomaly/port/out"
	"calmtrace/internal/modules/anomaly/service"
	apperrors "calmtrace/internal/platform/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

type Interactor struct {
	svc   *service.AnomalyService
	store anomalyout.EventStore
}

func NewInteractor(svc *service.AnomalyService, store anomalyout.EventStore) anomalyin.Usecase {
	return &Interactor{svc: svc, store: store}
}

func (i *Interactor) Evaluate(ctx context.Context, input anomalydto.EvaluateInput) (anomalydto.EvaluateOutput, error) {
	event, raised, err := i.svc.Evaluate(ctx, input.UserID, input.SampleID, input.StressLevel)
	if err != nil {
		return anomalydto.EvaluateOutput{}, err
	}
	if !raised {
		return anomalydto.EvaluateOutput{}, nil
	}
	return anomalydto.EvaluateOutput{Raised: true, Event: toOutput(event)}, nil
}

func (i *Interactor) List(ctx context.Context, input anomalydto.ListInput) ([]anomalydto.EventOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if input.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must be non-negative", apperrors.ErrInvalidInput)
	}
	events, err := i.store.List(ctx, input.UserID, limit, input.Offset)
	if err != nil {
		return nil, err
	}
	return toOutputs(events), nil
}

func (i *Interactor) Get(ctx context.Context, userID string, eventID int64) (anomalydto.EventOutput, error) {
	event, err := i.svc.Owned(ctx, userID, eventID)
	if err != nil {
		return anomalydto.EventOutput{}, err
	}
	return toOutput(event), nil
}

func (i *Interactor) ListBetween(ctx context.Context, input anomalydto.RangeInput) ([]anomalydto.EventOutput, error) {
	if input.To.Before(input.From) {
		return nil, fmt.Errorf("%w: range end before start", apperrors.ErrInvalidInput)
	}
	events, err := i.store.ListBetween(ctx, input.UserID, input.From.UTC(), input.To.UTC())
	if err != nil {
		return nil, err
	}
	return toOutputs(events), nil
}

func (i *Interactor) CountBetween(ctx context.Context, input anomalydto.RangeInput) (int, error) {
	if input.To.Before(input.From) {
		return 0, fmt.Errorf("%w: range end before start", apperrors.ErrInvalidInput)
	}
	return i.store.CountBetween(ctx, input.UserID, input.From.UTC(), input.To.UTC())
}

func (i *Interactor) Delete(ctx context.Context, userID string, eventID int64) error {
	return i.svc.Delete(ctx, userID, eventID)
}

func toOutput(e domain.Event) anomalydto.EventOutput {
	return anomalydto.EventOutput{ID: e.ID, UserID: e.UserID, SampleID: e.SampleID, DetectedAt: e.DetectedAt}
}

func toOutputs(events []domain.Event) []anomalydto.EventOutput {
	out := make([]anomalydto.EventOutput, 0, len(events))
	for _, e := range events {
		out = append(out, toOutput(e))
	}
	return out
}
