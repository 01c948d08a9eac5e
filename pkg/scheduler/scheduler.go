package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobFunc is a periodic job body. The context is the scheduler's lifetime
// context; jobs should abandon work when it is cancelled.
type JobFunc func(ctx context.Context)

// Scheduler owns the process-wide periodic jobs. It is constructed once at
// startup and stopped explicitly, so tests can run jobs without cron firing.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
}

// New builds a scheduler with panic recovery around every job.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   c,
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Register schedules a named job. Registration failures are logged, not
// fatal: a misconfigured cron spec should not take down the other jobs.
func (s *Scheduler) Register(name, spec string, job JobFunc) {
	_, err := s.cron.AddFunc(spec, func() {
		job(s.ctx)
	})
	if err != nil {
		s.logger.Error("failed to register job",
			zap.String("job", name),
			zap.String("spec", spec),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("registered job", zap.String("job", name), zap.String("spec", spec))
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start begins firing registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels the job context and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
