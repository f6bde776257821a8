package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"github.com/caasmo/authrelay/config"
	"github.com/caasmo/authrelay/db"
	"github.com/caasmo/authrelay/queue/executor"
	"golang.org/x/sync/errgroup"
)

// jobTimeout bounds a single job execution. Handlers mostly send a
// single email, so this is generous.
const jobTimeout = 10 * time.Minute

// Scheduler periodically claims pending jobs from the queue and runs
// them through the executor with bounded concurrency.
type Scheduler struct {
	configProvider *config.Provider
	db             db.DbQueue
	executor       executor.JobExecutor
	logger         *slog.Logger
	ctx            context.Context
	cancel         context.CancelFunc
	shutdownDone   chan struct{}
}

func NewScheduler(provider *config.Provider, db db.DbQueue, exec executor.JobExecutor, logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		configProvider: provider,
		db:             db,
		executor:       exec,
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
		shutdownDone:   make(chan struct{}),
	}
}

func (s *Scheduler) Name() string {
	return "job scheduler"
}

// Executor exposes the executor so callers can register handlers after
// construction.
func (s *Scheduler) Executor() executor.JobExecutor {
	return s.executor
}

// Start launches the long running scheduler goroutine. Each tick claims
// a batch of jobs and processes them.
func (s *Scheduler) Start() error {
	interval := s.configProvider.Get().Scheduler.Interval.Duration
	if interval <= 0 {
		return errors.New("scheduler: interval must be positive")
	}

	go func() {
		s.logger.Info("starting job scheduler", "interval", interval)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				s.logger.Info("job scheduler received shutdown signal")
				close(s.shutdownDone)
				return
			case <-ticker.C:
				s.processJobs()
			}
		}
	}()

	return nil
}

// Stop signals the scheduler to stop and waits for it to finish, or for
// the context to be canceled, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("stopping job scheduler")
	s.cancel()

	select {
	case <-s.shutdownDone:
		s.logger.Info("job scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Info("job scheduler shutdown timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) processJobs() {
	cfg := s.configProvider.Get().Scheduler

	jobs, err := s.db.Claim(cfg.MaxJobsPerTick)
	if err != nil {
		s.logger.Error("failed to claim jobs", "err", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	s.logger.Info("claimed jobs", "count", len(jobs))

	// Parent the batch on the scheduler context so jobs see the
	// shutdown signal.
	g, ctx := errgroup.WithContext(s.ctx)
	multiplier := cfg.ConcurrencyMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}
	g.SetLimit(runtime.NumCPU() * multiplier)

	for _, job := range jobs {
		g.Go(func() error {
			jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
			defer cancel()

			err := s.executeJob(jobCtx, *job)
			s.finishJob(*job, err)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Info("job batch interrupted by scheduler shutdown")
		} else {
			s.logger.Error("error executing job batch", "err", err)
		}
	}
}

func (s *Scheduler) executeJob(ctx context.Context, job db.Job) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.Info("starting job execution",
		"job_id", job.ID,
		"job_type", job.JobType,
		"attempt", job.Attempts)

	return s.executor.Execute(ctx, job)
}

// finishJob records the outcome of one job execution.
func (s *Scheduler) finishJob(job db.Job, err error) {
	switch {
	case err == nil:
		if updateErr := s.db.MarkCompleted(job.ID); updateErr != nil {
			s.logger.Error("failed to mark job as completed", "job_id", job.ID, "err", updateErr)
		}
	case errors.Is(err, context.DeadlineExceeded):
		if updateErr := s.db.MarkFailed(job.ID, "job timeout reached: "+err.Error()); updateErr != nil {
			s.logger.Error("failed to mark job as timed out", "job_id", job.ID, "err", updateErr)
		}
	case errors.Is(err, context.Canceled):
		if updateErr := s.db.MarkFailed(job.ID, "scheduler ordered to stop: "+err.Error()); updateErr != nil {
			s.logger.Error("failed to mark job as interrupted", "job_id", job.ID, "err", updateErr)
		}
		s.logger.Info("job interrupted", "job_id", job.ID)
	default:
		if updateErr := s.db.MarkFailed(job.ID, err.Error()); updateErr != nil {
			s.logger.Error("failed to mark job as failed", "job_id", job.ID, "err", updateErr)
		}
	}
}
