package usecase

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"calmtrace/internal/modules/sample/domain"
	sampledto "calmtrace/internal/modules/sample/dto"
	samplein "calmtrace/internal/modules/sample/port/in"
	sampleout "calmtrace/internal/modules/sample/port/out"
	"calmtrace/internal/modules/sample/service"
)

type Interactor struct {
	*QueryInteractor
	svc       *service.SampleService
	workers   int
	log       *logrus.Entry
	observers []sampleout.Observer
}

func NewInteractor(svc *service.SampleService, query *QueryInteractor, workers int, log *logrus.Entry, observers ...sampleout.Observer) samplein.Usecase {
	if workers < 1 {
		workers = 1
	}
	return &Interactor{QueryInteractor: query, svc: svc, workers: workers, log: log, observers: observers}
}

// Ingest stores a batch and notifies observers. Users run in parallel, each
// user's samples in arrival order. A failed sample or observer is logged and
// counted without stopping the rest of the batch.
func (i *Interactor) Ingest(ctx context.Context, input sampledto.IngestInput) (sampledto.IngestOutput, error) {
	order := make([]string, 0)
	byUser := make(map[string][]sampledto.SampleInput)
	for _, s := range input.Samples {
		if _, ok := byUser[s.UserID]; !ok {
			order = append(order, s.UserID)
		}
		byUser[s.UserID] = append(byUser[s.UserID], s)
	}

	var (
		mu    sync.Mutex
		total sampledto.IngestOutput
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for _, userID := range order {
		samples := byUser[userID]
		g.Go(func() error {
			report, err := i.ingestUser(gctx, samples)
			mu.Lock()
			total.Stored += report.Stored
			total.Failed += report.Failed
			total.AnomaliesRaised += report.AnomaliesRaised
			total.SessionsResolved += report.SessionsResolved
			mu.Unlock()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return total, err
	}
	return total, nil
}

// ingestUser only returns an error when the context is done.
func (i *Interactor) ingestUser(ctx context.Context, samples []sampledto.SampleInput) (sampledto.IngestOutput, error) {
	report := sampledto.IngestOutput{}
	for _, in := range samples {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		stored, err := i.svc.Append(ctx, toDomain(in))
		if err != nil {
			report.Failed++
			i.log.WithError(err).WithField("user_id", in.UserID).Error("store sample")
			continue
		}
		report.Stored++
		for _, obs := range i.observers {
			effect, err := obs.Observe(ctx, stored)
			if err != nil {
				report.Failed++
				i.log.WithError(err).WithFields(logrus.Fields{
					"user_id":   stored.UserID,
					"sample_id": stored.ID,
					"observer":  obs.Name(),
				}).Error("observe sample")
				continue
			}
			switch effect {
			case domain.EffectAnomalyRaised:
				report.AnomaliesRaised++
			case domain.EffectSessionResolved:
				report.SessionsResolved++
			}
		}
	}
	return report, nil
}
