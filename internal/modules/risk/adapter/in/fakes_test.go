package in_test

import (
	"context"
	"sync"

	riskdto "calmtrace/internal/modules/risk/dto"
	apperrors "calmtrace/internal/platform/errors"
)

type fakeRisk struct {
	mu        sync.Mutex
	computed  []riskdto.ComputeInput
	missing   []string
	listed    []riskdto.ListInput
	recent    int
	missingFn func(date string) (riskdto.MissingOutput, error)
}

func (f *fakeRisk) ComputeDay(_ context.Context, input riskdto.ComputeInput) (riskdto.ScoreOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.computed = append(f.computed, input)
	return riskdto.ScoreOutput{UserID: input.UserID, ScoreDate: input.Date, DiaryComponent: input.DiaryScore}, nil
}

func (f *fakeRisk) ComputeMissing(_ context.Context, date string) (riskdto.MissingOutput, error) {
	f.mu.Lock()
	f.missing = append(f.missing, date)
	fn := f.missingFn
	f.mu.Unlock()
	if fn != nil {
		return fn(date)
	}
	return riskdto.MissingOutput{Date: "2026-03-03", Calculated: 2}, nil
}

func (f *fakeRisk) Get(_ context.Context, userID, date string) (riskdto.ScoreOutput, error) {
	if date == "2026-01-01" {
		return riskdto.ScoreOutput{}, apperrors.ErrRiskScoreNotFound
	}
	return riskdto.ScoreOutput{UserID: userID, ScoreDate: date}, nil
}

func (f *fakeRisk) List(_ context.Context, input riskdto.ListInput) ([]riskdto.ScoreOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed = append(f.listed, input)
	return []riskdto.ScoreOutput{{UserID: input.UserID, ScoreDate: input.From}}, nil
}

func (f *fakeRisk) Recent(_ context.Context, userID string) ([]riskdto.ScoreOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recent++
	return []riskdto.ScoreOutput{}, nil
}
