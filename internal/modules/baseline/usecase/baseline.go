package usecase

import (
	"context"
	"fmt"
	"strings"

	"calmtrace/internal/modules/baseline/domain"
	baselinedto "calmtrace/internal/modules/baseline/dto"
	baselinein "calmtrace/internal/modules/baseline/port/in"
	baselineout "calmtrace/internal/modules/baseline/port/out"
	"calmtrace/internal/modules/baseline/service"
	apperrors "calmtrace/internal/platform/errors"
)

type Interactor struct {
	svc   *service.BaselineService
	store baselineout.BaselineStore
}

func NewInteractor(svc *service.BaselineService, store baselineout.BaselineStore) baselinein.Usecase {
	return &Interactor{svc: svc, store: store}
}

func (i *Interactor) Calculate(ctx context.Context, input baselinedto.CalculateInput) (baselinedto.BaselineOutput, error) {
	b, err := i.svc.Calculate(ctx, input.UserID, input.LookbackDays)
	if err != nil {
		return baselinedto.BaselineOutput{}, err
	}
	return toOutput(b), nil
}

func (i *Interactor) Update(ctx context.Context, input baselinedto.CalculateInput) (baselinedto.BaselineOutput, error) {
	b, err := i.svc.Update(ctx, input.UserID, input.LookbackDays)
	if err != nil {
		return baselinedto.BaselineOutput{}, err
	}
	return toOutput(b), nil
}

func (i *Interactor) GetActive(ctx context.Context, userID string) (baselinedto.BaselineOutput, error) {
	b, err := i.svc.Active(ctx, userID)
	if err != nil {
		return baselinedto.BaselineOutput{}, err
	}
	return toOutput(b), nil
}

func (i *Interactor) GetByVersion(ctx context.Context, userID string, version int) (baselinedto.BaselineOutput, error) {
	if version < 1 {
		return baselinedto.BaselineOutput{}, fmt.Errorf("%w: version must be positive", apperrors.ErrInvalidInput)
	}
	b, err := i.store.FindByVersion(ctx, userID, version)
	if err != nil {
		return baselinedto.BaselineOutput{}, err
	}
	return toOutput(b), nil
}

func (i *Interactor) History(ctx context.Context, userID string) ([]baselinedto.BaselineOutput, error) {
	items, err := i.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]baselinedto.BaselineOutput, 0, len(items))
	for _, b := range items {
		out = append(out, toOutput(b))
	}
	return out, nil
}

func (i *Interactor) Activate(ctx context.Context, userID string, version int) (baselinedto.BaselineOutput, error) {
	b, err := i.svc.Activate(ctx, userID, version)
	if err != nil {
		return baselinedto.BaselineOutput{}, err
	}
	return toOutput(b), nil
}

func (i *Interactor) Delete(ctx context.Context, userID string, version int) error {
	return i.svc.Delete(ctx, userID, version)
}

func (i *Interactor) Assess(ctx context.Context, input baselinedto.AssessInput) (baselinedto.AssessOutput, error) {
	index, level, b, err := i.svc.Assess(ctx, input.UserID, domain.Reading{
		HeartRate:         input.HeartRate,
		HRVSDNN:           input.HRVSDNN,
		HRVRMSSD:          input.HRVRMSSD,
		ObjectTemp:        input.ObjectTemp,
		MovementIntensity: input.MovementIntensity,
		ActivityState:     strings.ToUpper(strings.TrimSpace(input.ActivityState)),
	})
	if err != nil {
		return baselinedto.AssessOutput{}, err
	}
	return baselinedto.AssessOutput{StressIndex: index, StressLevel: level, BaselineVersion: b.Version}, nil
}

func (i *Interactor) Classify(ctx context.Context, userID string, stressIndex float64) (baselinedto.AssessOutput, error) {
	level, b, err := i.svc.Classify(ctx, userID, stressIndex)
	if err != nil {
		return baselinedto.AssessOutput{}, err
	}
	out := baselinedto.AssessOutput{StressIndex: stressIndex, StressLevel: level}
	if b != nil {
		out.BaselineVersion = b.Version
	}
	return out, nil
}

func toOutput(b domain.Baseline) baselinedto.BaselineOutput {
	return baselinedto.BaselineOutput{
		UserID:          b.UserID,
		Version:         b.Version,
		Active:          b.Active,
		HRVSDNN:         metric(b.HRVSDNN),
		HRVRMSSD:        metric(b.HRVRMSSD),
		HeartRate:       metric(b.HeartRate),
		Temperature:     metric(b.Temperature),
		ThresholdLow:    b.Thresholds.Low,
		ThresholdMedium: b.Thresholds.Medium,
		ThresholdHigh:   b.Thresholds.High,
		SampleCount:     b.SampleCount,
		DataStart:       b.DataStart,
		DataEnd:         b.DataEnd,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func metric(m domain.MetricStats) baselinedto.MetricOutput {
	return baselinedto.MetricOutput{Mean: m.Mean, Std: m.Std, Count: m.Count}
}
