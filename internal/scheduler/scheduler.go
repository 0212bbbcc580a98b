package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/config"
)

const jobTimeout = 2 * time.Minute

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	cfg    config.SchedulerConfig
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.SchedulerConfig, jobs *Jobs, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load scheduler timezone %q: %w", cfg.Timezone, err)
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour, dom, month, dow).
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger))
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Start registers the alert, backup and report jobs and starts the cron loop.
// Nothing runs when a schedule fails to parse.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	entries := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"alert_check", s.cfg.AlertCron, s.jobs.CheckAlerts},
		{"backup", s.cfg.BackupCron, s.jobs.Backup},
		{"daily_report", s.cfg.ReportCron, s.jobs.DailyReport},
	}

	for _, e := range entries {
		if _, err := s.cron.AddFunc(e.spec, s.wrap(e.name, e.run)); err != nil {
			for _, entry := range s.cron.Entries() {
				s.cron.Remove(entry.ID)
			}
			return fmt.Errorf("schedule %s (%q): %w", e.name, e.spec, err)
		}
		s.logger.Info("job scheduled", zap.String("job", e.name), zap.String("spec", e.spec))
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) wrap(name string, run func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		started := time.Now()
		err := run(ctx)
		if s.jobs.Metrics != nil {
			s.jobs.Metrics.ObserveJob(name, err)
		}
		if err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.logger.Info("scheduled job finished", zap.String("job", name), zap.Duration("elapsed", time.Since(started)))
	}
}
