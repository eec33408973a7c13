package usecase

import (
	"context"
	"fmt"

	"calmtrace/internal/modules/risk/domain"
	riskdto "calmtrace/internal/modules/risk/dto"
	riskin "calmtrace/internal/modules/risk/port/in"
	riskout "calmtrace/internal/modules/risk/port/out"
	"calmtrace/internal/modules/risk/service"
	apperrors "calmtrace/internal/platform/errors"
)

const recentLimit = 30

type Interactor struct {
	svc    *service.RiskService
	scores riskout.ScoreStore
}

func NewInteractor(svc *service.RiskService, scores riskout.ScoreStore) riskin.Usecase {
	return &Interactor{svc: svc, scores: scores}
}

func (i *Interactor) ComputeDay(ctx context.Context, input riskdto.ComputeInput) (riskdto.ScoreOutput, error) {
	score, err := i.svc.ComputeDay(ctx, input.UserID, input.Date, input.DiaryScore)
	if err != nil {
		return riskdto.ScoreOutput{}, err
	}
	return toOutput(score), nil
}

func (i *Interactor) ComputeMissing(ctx context.Context, date string) (riskdto.MissingOutput, error) {
	if date == "" {
		date = i.svc.Yesterday()
	}
	report, err := i.svc.ComputeMissing(ctx, date)
	if err != nil {
		return riskdto.MissingOutput{}, err
	}
	return riskdto.MissingOutput{Date: date, Calculated: report.Calculated, Skipped: report.Skipped, Failed: report.Failed}, nil
}

func (i *Interactor) Get(ctx context.Context, userID, date string) (riskdto.ScoreOutput, error) {
	if _, _, err := domain.DayBounds(date, i.svc.Location()); err != nil {
		return riskdto.ScoreOutput{}, err
	}
	score, err := i.scores.Get(ctx, userID, date)
	if err != nil {
		return riskdto.ScoreOutput{}, err
	}
	return toOutput(score), nil
}

func (i *Interactor) List(ctx context.Context, input riskdto.ListInput) ([]riskdto.ScoreOutput, error) {
	for _, d := range []string{input.From, input.To} {
		if _, _, err := domain.DayBounds(d, i.svc.Location()); err != nil {
			return nil, err
		}
	}
	if input.To < input.From {
		return nil, fmt.Errorf("%w: range end before start", apperrors.ErrInvalidInput)
	}
	scores, err := i.scores.List(ctx, input.UserID, input.From, input.To)
	if err != nil {
		return nil, err
	}
	return toOutputs(scores), nil
}

func (i *Interactor) Recent(ctx context.Context, userID string) ([]riskdto.ScoreOutput, error) {
	scores, err := i.scores.Recent(ctx, userID, recentLimit)
	if err != nil {
		return nil, err
	}
	return toOutputs(scores), nil
}

func toOutputs(scores []domain.Score) []riskdto.ScoreOutput {
	out := make([]riskdto.ScoreOutput, 0, len(scores))
	for _, s := range scores {
		out = append(out, toOutput(s))
	}
	return out
}

func toOutput(s domain.Score) riskdto.ScoreOutput {
	return riskdto.ScoreOutput{
		UserID:               s.UserID,
		ScoreDate:            s.ScoreDate,
		RiskScore:            s.RiskScore,
		DiaryComponent:       s.DiaryComponent,
		MeasurementComponent: s.MeasurementComponent,
		SleepComponent:       s.SleepComponent,
		MeasurementCount:     s.MeasurementCount,
		AnomalyCount:         s.AnomalyCount,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}
