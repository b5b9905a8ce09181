package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/event"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// defaultCronSpec scans for due reminders every minute.
const defaultCronSpec = "* * * * *"

// Scheduler runs the periodic reminder scan for approved events.
type Scheduler struct {
	eventService event.Service
	cron         *cron.Cron
	spec         string
	logger       *logger.Logger

	// mu serializes scans: cron runs each activation in its own goroutine,
	// so a scan slower than the tick would otherwise race on lastRun and
	// overlap windows.
	mu      sync.Mutex
	lastRun time.Time
}

func NewScheduler(eventService event.Service, cronSpec string, logger *logger.Logger) *Scheduler {
	if cronSpec == "" {
		cronSpec = defaultCronSpec
	}
	return &Scheduler{
		eventService: eventService,
		cron:         cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		spec:         cronSpec,
		logger:       logger,
	}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	s.lastRun = time.Now().UTC()
	s.mu.Unlock()

	if _, err := s.cron.AddFunc(s.spec, s.runReminderScan); err != nil {
		return err
	}
	s.cron.Start()

	s.logger.Info("Reminder scheduler initialized",
		zap.String("cron_spec", s.spec),
		zap.Time("start_time", s.lastRun),
	)
	return nil
}

// Stop halts the cron loop and waits for an in-flight scan to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Reminder scheduler stopped")
}

// runReminderScan dispatches reminders whose reminder time fell in the
// half-open window [previous run, now). The window is anchored on lastRun so
// a slow tick never skips an event, and consecutive windows never overlap.
func (s *Scheduler) runReminderScan() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	now := time.Now().UTC()
	from := s.lastRun
	s.lastRun = now

	count, err := s.eventService.SendDueReminders(ctx, from, now)
	if err != nil {
		s.logger.Error("Reminder scan failed",
			zap.Time("window_start", from),
			zap.Time("window_end", now),
			zap.Error(err),
		)
		return
	}

	if count > 0 {
		s.logger.Info("Reminder scan completed",
			zap.Int("events_reminded", count),
			zap.Duration("duration", time.Since(now)),
		)
	}
}
