package in

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	sampledto "calmtrace/internal/modules/sample/dto"
	samplein "calmtrace/internal/modules/sample/port/in"
)

const retryDelay = time.Second

// Queue is the part of *redis.Client the consumer needs.
type Queue interface {
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// RedisConsumer pops JSON sample batches pushed with LPUSH and ingests them.
type RedisConsumer struct {
	queue   Queue
	key     string
	block   time.Duration
	usecase samplein.Usecase
	log     *logrus.Entry
}

func NewRedisConsumer(queue Queue, key string, block time.Duration, usecase samplein.Usecase, log *logrus.Entry) *RedisConsumer {
	return &RedisConsumer{queue: queue, key: key, block: block, usecase: usecase, log: log.WithField("queue", key)}
}

// Run consumes until ctx is done. Queue errors are logged and retried.
func (c *RedisConsumer) Run(ctx context.Context) {
	c.log.Info("sample consumer started")
	for ctx.Err() == nil {
		if _, err := c.ProcessOnce(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			c.log.WithError(err).Error("consume samples")
			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
			}
		}
	}
	c.log.Info("sample consumer stopped")
}

// ProcessOnce waits up to the block timeout for one payload. An empty queue
// or an undecodable payload is not an error; invalid samples are dropped from
// the batch.
func (c *RedisConsumer) ProcessOnce(ctx context.Context) (sampledto.IngestOutput, error) {
	res, err := c.queue.BRPop(ctx, c.block, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return sampledto.IngestOutput{}, nil
	}
	if err != nil {
		return sampledto.IngestOutput{}, fmt.Errorf("pop %s: %w", c.key, err)
	}
	if len(res) < 2 {
		return sampledto.IngestOutput{}, nil
	}
	samples, err := decodeBatch([]byte(res[1]))
	if err != nil {
		c.log.WithError(err).Warn("dropping undecodable payload")
		return sampledto.IngestOutput{}, nil
	}
	valid := samples[:0]
	dropped := 0
	for _, s := range samples {
		if err := validate(s); err != nil {
			c.log.WithError(err).WithField("user_id", s.UserID).Warn("dropping invalid sample")
			dropped++
			continue
		}
		valid = append(valid, s)
	}
	if len(valid) == 0 {
		return sampledto.IngestOutput{Failed: dropped}, nil
	}
	out, err := c.usecase.Ingest(ctx, sampledto.IngestInput{Samples: valid})
	out.Failed += dropped
	if err != nil {
		return out, err
	}
	c.log.WithFields(logrus.Fields{
		"stored":            out.Stored,
		"failed":            out.Failed,
		"anomalies_raised":  out.AnomaliesRaised,
		"sessions_resolved": out.SessionsResolved,
	}).Info("sample batch ingested")
	return out, nil
}
