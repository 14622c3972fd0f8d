package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dataroom/internal/metrics"
	"dataroom/internal/repository"
	"dataroom/internal/storage"
)

// SweepResult summarises one sweeper pass.
type SweepResult struct {
	Deleted  int
	Errors   int
	Duration time.Duration
}

// ArtifactSweeper removes temporary watermark renditions once their retention has passed.
// The schedule lives in render_artifacts, so a restart never loses a pending deletion.
type ArtifactSweeper struct {
	artifacts repository.ArtifactRepository
	store     storage.Storage
	interval  time.Duration
	batch     int
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewArtifactSweeper(
	artifacts repository.ArtifactRepository,
	store storage.Storage,
	interval time.Duration,
	batch int,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ArtifactSweeper {
	return &ArtifactSweeper{
		artifacts: artifacts,
		store:     store,
		interval:  interval,
		batch:     batch,
		metrics:   m,
		logger:    logger.With(slog.String("component", "sweeper")),
		now:       time.Now,
	}
}

// Start runs the sweep loop in a background goroutine until Stop or ctx cancellation.
func (s *ArtifactSweeper) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)

	s.logger.Info("sweeper_started", slog.String("interval", s.interval.String()))
}

// Stop cancels the loop and waits for an in-flight pass to finish.
func (s *ArtifactSweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.logger.Info("sweeper_stopped")
}

func (s *ArtifactSweeper) run(ctx context.Context) {
	defer close(s.done)

	s.SweepOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce deletes every due artifact, one batch at a time. Failures are logged and retried on the
// next pass; they never surface to viewers.
func (s *ArtifactSweeper) SweepOnce(ctx context.Context) *SweepResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	result := &SweepResult{}

	for ctx.Err() == nil {
		due, err := s.artifacts.ListDue(ctx, s.now().UTC(), s.batch)
		if err != nil {
			s.logger.ErrorContext(ctx, "sweep_list_failed", slog.String("error_message", err.Error()))
			result.Errors++
			break
		}
		if len(due) == 0 {
			break
		}

		failed := 0
		for _, a := range due {
			if err := s.store.Delete(ctx, a.StorageKey); err != nil {
				s.logger.WarnContext(ctx, "sweep_delete_failed",
					slog.String("artifact_id", a.ID),
					slog.String("error_message", err.Error()),
				)
				failed++
				continue
			}
			if err := s.artifacts.MarkDeleted(ctx, a.ID, s.now().UTC()); err != nil && !errors.Is(err, repository.ErrNotFound) {
				s.logger.WarnContext(ctx, "sweep_mark_failed",
					slog.String("artifact_id", a.ID),
					slog.String("error_message", err.Error()),
				)
				failed++
				continue
			}
			result.Deleted++
		}
		result.Errors += failed

		// A batch where nothing progressed would be listed again unchanged.
		if failed == len(due) || len(due) < s.batch {
			break
		}
	}

	result.Duration = time.Since(start)
	s.metrics.Swept(result.Deleted)
	if result.Deleted > 0 || result.Errors > 0 {
		s.logger.InfoContext(ctx, "sweep_completed",
			slog.Int("deleted", result.Deleted),
			slog.Int("errors", result.Errors),
			slog.Duration("duration", result.Duration),
		)
	}
	return result
}
