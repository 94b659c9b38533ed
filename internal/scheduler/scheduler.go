package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"quotescraper/internal/quote"
	"quotescraper/internal/runctx"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

type taskFn func(ctx context.Context) error

// Scheduler runs scrape jobs on a cron or interval. A job never overlaps
// itself; a run that is still busy when the next tick fires is rescheduled.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *zap.Logger
}

func New(timezone string, logger *zap.Logger) (*Scheduler, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{scheduler: scheduler, logger: logger}, nil
}

// LoadLocation resolves an IANA zone name. Asia/Bangkok falls back to a fixed
// UTC+7 zone on hosts without tzdata.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return quote.Bangkok, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if name == quote.Bangkok.String() {
			return quote.Bangkok, nil
		}
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		s.logger.Warn("scheduler shutdown", zap.Error(err))
	}
}

func (s *Scheduler) createJob(jobDefinition gocron.JobDefinition, name string, fn taskFn, startImmediately bool) error {
	opts := []gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}

	if startImmediately {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	_, err := s.scheduler.NewJob(
		jobDefinition,
		gocron.NewTask(s.taskWithRecover(fn, name)),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("create job %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) NewIntervalJob(name string, fn taskFn, interval time.Duration, startImmediately bool) error {
	return s.createJob(gocron.DurationJob(interval), name, fn, startImmediately)
}

// Schedule registers fn on a fixed interval when every is positive, otherwise
// on crontab.
func (s *Scheduler) Schedule(name string, fn taskFn, crontab string, every time.Duration, startImmediately bool) error {
	if every > 0 {
		return s.NewIntervalJob(name, fn, every, startImmediately)
	}
	return s.NewCrontabJob(name, fn, crontab, startImmediately)
}

// NewCrontabJob registers a standard five-field crontab.
func (s *Scheduler) NewCrontabJob(name string, fn taskFn, crontab string, startImmediately bool) error {
	return s.createJob(gocron.CronJob(crontab, false), name, fn, startImmediately)
}

func (s *Scheduler) taskWithRecover(fn taskFn, jobName string) func(ctx context.Context) {
	return func(ctx context.Context) {
		ctx = runctx.New(ctx)
		log := s.logger.With(zap.String("jobName", jobName), zap.String("runID", runctx.RunID(ctx)))

		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered in scheduler job",
					zap.Any("panic", r),
					zap.String("stacktrace", string(debug.Stack())),
				)
			}
		}()

		log.Info("job start")

		start := time.Now()
		if err := fn(ctx); err != nil {
			log.Error("job failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
			return
		}
		log.Info("job completed", zap.Duration("elapsed", time.Since(start)))
	}
}
