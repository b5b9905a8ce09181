package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/event"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/notification"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEventService records the reminder windows it is scanned with. A small
// delay makes each scan slower than the callers firing them, the situation
// where unserialized scans would interleave.
type stubEventService struct {
	mu      sync.Mutex
	windows [][2]time.Time
	delay   time.Duration
}

func (s *stubEventService) SendDueReminders(ctx context.Context, from, to time.Time) (int, error) {
	time.Sleep(s.delay)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows = append(s.windows, [2]time.Time{from, to})
	return 0, nil
}

func (s *stubEventService) CreateEvent(ctx context.Context, req event.CreateEventRequest, actorID uuid.UUID) (*event.Event, error) {
	return nil, nil
}

func (s *stubEventService) UpdateEvent(ctx context.Context, id uuid.UUID, req event.UpdateEventRequest, actorID uuid.UUID) (*event.Event, *notification.Report, error) {
	return nil, nil, nil
}

func (s *stubEventService) Approve(ctx context.Context, id, actorID uuid.UUID) (*event.Event, event.ApprovalKind, *notification.Report, error) {
	return nil, "", nil, nil
}

func (s *stubEventService) Decline(ctx context.Context, id, actorID uuid.UUID) (*event.Event, error) {
	return nil, nil
}

func (s *stubEventService) GetEventByID(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	return nil, nil
}

func (s *stubEventService) ListEvents(ctx context.Context, filter event.EventFilter) (*event.EventListResponse, error) {
	return nil, nil
}

func (s *stubEventService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubEventService) ListHistory(ctx context.Context, eventID uuid.UUID) ([]event.History, error) {
	return nil, nil
}

func TestConcurrentScansStayOrderedAndContiguous(t *testing.T) {
	svc := &stubEventService{delay: 10 * time.Millisecond}
	s := NewScheduler(svc, "", logger.NewLoggerWithLevel("error"))

	s.mu.Lock()
	s.lastRun = time.Now().UTC()
	s.mu.Unlock()

	// Fire scans concurrently, the way cron activations arrive when a scan
	// outlasts its tick.
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runReminderScan()
		}()
	}
	wg.Wait()

	require.Len(t, svc.windows, 5)
	for i, w := range svc.windows {
		assert.False(t, w[1].Before(w[0]), "window %d must not be inverted", i)
		if i > 0 {
			prev := svc.windows[i-1]
			assert.Equal(t, prev[1], w[0],
				"window %d must start exactly where window %d ended", i, i-1)
		}
	}
}
