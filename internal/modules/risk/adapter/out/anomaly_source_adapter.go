package out

import (
	"context"
	"time"

	anomalydto "calmtrace/internal/modules/anomaly/dto"
	anomalyin "calmtrace/internal/modules/anomaly/port/in"
	riskout "calmtrace/internal/modules/risk/port/out"
)

type AnomalySourceAdapter struct {
	anomalies anomalyin.Usecase
}

func NewAnomalySourceAdapter(anomalies anomalyin.Usecase) riskout.AnomalySource {
	return &AnomalySourceAdapter{anomalies: anomalies}
}

func (a *AnomalySourceAdapter) SampleIDsBetween(ctx context.Context, userID string, from, to time.Time) ([]int64, error) {
	events, err := a.anomalies.ListBetween(ctx, anomalydto.RangeInput{UserID: userID, From: from, To: to})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.SampleID)
	}
	return ids, nil
}
