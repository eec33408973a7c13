package in

import (
	"context"
	"fmt"
	"time"

	rcron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	riskdto "calmtrace/internal/modules/risk/dto"
	riskin "calmtrace/internal/modules/risk/port/in"
)

// Scheduler runs the missing-score job for the previous day on a cron spec
// with a seconds field.
type Scheduler struct {
	usecase riskin.Usecase
	cron    *rcron.Cron
	log     *logrus.Entry
}

func NewScheduler(usecase riskin.Usecase, spec string, loc *time.Location, log *logrus.Entry) (*Scheduler, error) {
	s := &Scheduler{usecase: usecase, log: log}
	s.cron = rcron.New(
		rcron.WithSeconds(),
		rcron.WithLocation(loc),
		rcron.WithChain(rcron.Recover(cronLogger{log: log})),
	)
	if _, err := s.cron.AddFunc(spec, func() { _, _ = s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("register risk job %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the scheduler until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	s.log.WithField("next_run", s.cron.Entries()[0].Next).Info("risk scheduler started")
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
		s.log.Info("risk scheduler stopped")
	}()
}

// RunOnce computes yesterday's missing scores.
func (s *Scheduler) RunOnce(ctx context.Context) (riskdto.MissingOutput, error) {
	out, err := s.usecase.ComputeMissing(ctx, "")
	if err != nil {
		s.log.WithError(err).Error("risk job failed")
		return riskdto.MissingOutput{}, err
	}
	return out, nil
}

type cronLogger struct {
	log *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(kv []any) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
