package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"VixPull/internal/model"
	"VixPull/internal/notifier"
	"VixPull/internal/runstate"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ErrBusy is returned by RunNow while another pull is still running.
var ErrBusy = errors.New("a pull is already running")

// Job runs one pull and reports its summary.
type Job func(ctx context.Context) (model.RunSummary, error)

// Scheduler runs the pull job on a cron schedule and on demand.
type Scheduler struct {
	Cron     *cron.Cron
	Job      Job
	Notifier notifier.Notifier
	Ctx      context.Context
	// State, when set, persists the last run across restarts.
	State *runstate.Store

	running sync.Mutex

	mu      sync.Mutex
	last    *model.RunSummary
	lastErr error
}

// NewScheduler creates a new Scheduler. A nil notifier disables notifications.
func NewScheduler(ctx context.Context, job Job, n notifier.Notifier) *Scheduler {
	if n == nil {
		n = notifier.NoopNotifier{}
	}
	logger := cron.PrintfLogger(logrus.WithField("component", "cron"))
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.SkipIfStillRunning(logger)),
		),
		Job:      job,
		Notifier: n,
		Ctx:      ctx,
	}
}

// Register adds the pull job under a six-field cron expression.
func (s *Scheduler) Register(expr string) error {
	if _, err := s.Cron.AddFunc(expr, s.tick); err != nil {
		return fmt.Errorf("register pull task: %w", err)
	}
	logrus.WithField("cron", expr).Info("pull task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logrus.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logrus.Info("scheduler stopped")
}

// RunNow executes the pull immediately and notifies the result.
func (s *Scheduler) RunNow() (model.RunSummary, error) {
	if !s.running.TryLock() {
		return model.RunSummary{}, ErrBusy
	}
	defer s.running.Unlock()

	logrus.Info("running pull task")
	summary, err := s.Job(s.Ctx)

	s.mu.Lock()
	s.last = &summary
	s.lastErr = err
	s.mu.Unlock()
	if s.State != nil {
		s.State.Record(summary, err)
	}

	if err != nil {
		logrus.WithError(err).Error("pull task failed")
	} else {
		logrus.WithField("records", summary.Records).Info("pull task finished")
	}
	s.trySend(notifier.FormatRunSummary(summary))
	return summary, err
}

// Last returns the most recent summary and its run error. The summary is nil before
// the first run.
func (s *Scheduler) Last() (*model.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		if s.State == nil {
			return nil, nil
		}
		prev, ok := s.State.Get()
		if !ok {
			return nil, nil
		}
		var err error
		if prev.Error != "" {
			err = errors.New(prev.Error)
		}
		return &prev.Summary, err
	}
	summary := *s.last
	return &summary, s.lastErr
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/status":
		summary, _ := s.Last()
		if summary == nil {
			return "No pull has run yet."
		}
		return notifier.FormatRunSummary(*summary)
	case "/pull":
		if !s.running.TryLock() {
			return ErrBusy.Error()
		}
		s.running.Unlock()
		go s.tick()
		return "Pull started."
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) tick() {
	if _, err := s.RunNow(); errors.Is(err, ErrBusy) {
		logrus.Warn("pull skipped, previous run still active")
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		logrus.WithError(err).Error("send notification")
	}
}
