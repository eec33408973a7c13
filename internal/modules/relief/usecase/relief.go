package usecase

import (
	"context"
	"fmt"

	"calmtrace/internal/modules/relief/domain"
	reliefdto "calmtrace/internal/modules/relief/dto"
	reliefin "calmtrace/internal/modules/relief/port/in"
	reliefout "calmtrace/internal/modules/relief/port/out"
	"calmtrace/internal/modules/relief/service"
	apperrors "calmtrace/internal/platform/errors"
)

type Interactor struct {
	svc           *service.ReliefService
	sessions      reliefout.SessionStore
	interventions reliefout.InterventionStore
}

func NewInteractor(svc *service.ReliefService, sessions reliefout.SessionStore, interventions reliefout.InterventionStore) reliefin.Usecase {
	return &Interactor{svc: svc, sessions: sessions, interventions: interventions}
}

func (i *Interactor) Start(ctx context.Context, input reliefdto.StartInput) (reliefdto.SessionOutput, error) {
	trigger, ok := domain.ParseTriggerType(input.TriggerType)
	if !ok {
		return reliefdto.SessionOutput{}, fmt.Errorf("%w: unknown trigger type %q", apperrors.ErrInvalidInput, input.TriggerType)
	}
	session, err := i.svc.Start(ctx, input.UserID, input.InterventionID, trigger, input.StartedAt, input.AnomalyID, input.GestureCode)
	if err != nil {
		return reliefdto.SessionOutput{}, err
	}
	return i.view(session), nil
}

func (i *Interactor) End(ctx context.Context, input reliefdto.EndInput) (reliefdto.SessionOutput, error) {
	session, err := i.svc.End(ctx, input.UserID, input.SessionID, input.EndedAt, input.UserRating)
	if err != nil {
		return reliefdto.SessionOutput{}, err
	}
	return i.view(session), nil
}

func (i *Interactor) OnNewSample(ctx context.Context, input reliefdto.SampleObservation) (reliefdto.BackfillOutput, error) {
	session, resolved, err := i.svc.OnNewSample(ctx, input.UserID, domain.Reading{
		SampleID:    input.SampleID,
		MeasuredAt:  input.MeasuredAt.UTC(),
		StressIndex: input.StressIndex,
	})
	if err != nil {
		return reliefdto.BackfillOutput{}, err
	}
	return reliefdto.BackfillOutput{Resolved: resolved, SessionID: session.ID}, nil
}

func (i *Interactor) Get(ctx context.Context, userID, sessionID string) (reliefdto.SessionOutput, error) {
	session, err := i.svc.Owned(ctx, userID, sessionID)
	if err != nil {
		return reliefdto.SessionOutput{}, err
	}
	return i.view(session), nil
}

func (i *Interactor) List(ctx context.Context, input reliefdto.ListInput) ([]reliefdto.SessionOutput, error) {
	if input.To.Before(input.From) {
		return nil, fmt.Errorf("%w: range end before start", apperrors.ErrInvalidInput)
	}
	sessions, err := i.sessions.List(ctx, input.UserID, input.From.UTC(), input.To.UTC())
	if err != nil {
		return nil, err
	}
	out := make([]reliefdto.SessionOutput, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, i.view(s))
	}
	return out, nil
}

func (i *Interactor) Stats(ctx context.Context, userID string) (reliefdto.StatsOutput, error) {
	stats, err := i.sessions.StatsByIntervention(ctx, userID)
	if err != nil {
		return reliefdto.StatsOutput{}, err
	}
	out := reliefdto.StatsOutput{Interventions: make([]reliefdto.InterventionStatOutput, 0, len(stats))}
	for _, st := range stats {
		out.Interventions = append(out.Interventions, reliefdto.InterventionStatOutput{
			InterventionID: st.InterventionID,
			Name:           st.Name,
			Sessions:       st.Sessions,
			Measured:       st.Measured,
			AvgChange:      st.AvgChange,
		})
	}
	used, effective := domain.Highlights(stats)
	if used != nil {
		out.MostUsed = used.InterventionID
	}
	if effective != nil {
		out.MostEffective = effective.InterventionID
	}
	return out, nil
}

func (i *Interactor) SaveIntervention(ctx context.Context, input reliefdto.InterventionInput) (reliefdto.InterventionOutput, error) {
	saved, err := i.svc.SaveIntervention(ctx, domain.Intervention{
		ID:              input.ID,
		Code:            input.Code,
		Name:            input.Name,
		Kind:            input.Kind,
		Description:     input.Description,
		DurationSeconds: input.DurationSeconds,
	})
	if err != nil {
		return reliefdto.InterventionOutput{}, err
	}
	return toInterventionOutput(saved), nil
}

func (i *Interactor) GetIntervention(ctx context.Context, interventionID string) (reliefdto.InterventionOutput, error) {
	it, err := i.interventions.Get(ctx, interventionID)
	if err != nil {
		return reliefdto.InterventionOutput{}, err
	}
	return toInterventionOutput(it), nil
}

func (i *Interactor) ListInterventions(ctx context.Context) ([]reliefdto.InterventionOutput, error) {
	items, err := i.interventions.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]reliefdto.InterventionOutput, 0, len(items))
	for _, it := range items {
		out = append(out, toInterventionOutput(it))
	}
	return out, nil
}

func (i *Interactor) view(s domain.Session) reliefdto.SessionOutput {
	return reliefdto.SessionOutput{
		ID:              s.ID,
		UserID:          s.UserID,
		InterventionID:  s.InterventionID,
		TriggerType:     string(s.TriggerType),
		AnomalyID:       s.AnomalyID,
		GestureCode:     s.GestureCode,
		BeforeStress:    s.BeforeStress,
		AfterStress:     s.AfterStress,
		StartedAt:       s.StartedAt,
		EndedAt:         s.EndedAt,
		DurationSeconds: s.DurationSeconds,
		UserRating:      s.UserRating,
		State:           string(s.State(i.svc.Now(), i.svc.Window())),
	}
}

func toInterventionOutput(it domain.Intervention) reliefdto.InterventionOutput {
	return reliefdto.InterventionOutput{
		ID:              it.ID,
		Code:            it.Code,
		Name:            it.Name,
		Kind:            it.Kind,
		Description:     it.Description,
		DurationSeconds: it.DurationSeconds,
	}
}
