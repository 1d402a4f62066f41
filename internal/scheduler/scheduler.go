package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/adit301104/DrData/internal/logging"
	"github.com/adit301104/DrData/internal/pipeline"
)

// Sweep runs one full collection pass.
type Sweep interface {
	Run(ctx context.Context) (pipeline.SweepResult, error)
}

// Service repeats a sweep every interval until its context ends.
type Service struct {
	sweep    Sweep
	interval time.Duration
	logger   *zap.Logger
}

func NewService(sweep Sweep, interval time.Duration, logger *zap.Logger) *Service {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Service{sweep: sweep, interval: interval, logger: logging.OrNop(logger)}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		s.runCycle(ctx)
		if ctx.Err() != nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.interval):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) {
	started := time.Now()
	res, err := s.sweep.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			s.logger.Info("sweep interrupted", zap.Error(err))
			return
		}
		s.logger.Error("sweep cycle failed", zap.Error(err))
		return
	}
	s.logger.Info("sweep cycle done",
		zap.String("trace_id", res.TraceID),
		zap.Int("records", len(res.Records)),
		zap.Int("duplicates_removed", res.DuplicatesRemoved),
		zap.Int("failed_urls", res.FailedURLs),
		zap.Duration("took", time.Since(started)),
		zap.Duration("next_in", s.interval),
	)
}
