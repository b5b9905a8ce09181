package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/attachment"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/directory"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/location"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/notification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeRepo keeps a single event and its ledger in memory. The ledger is a
// plain append slice, so any in-place mutation shows up in the tests.
// Writes go through a staging transaction and only land on Commit, so a
// failed transaction leaves event and history untouched.
type fakeRepo struct {
	event   *Event
	history []History
	txCount int

	recordHistoryErr error
	updateErr        error
	commitErr        error
	rollbacks        int
}

func (r *fakeRepo) BeginTransaction(ctx context.Context) Transaction {
	r.txCount++
	return &fakeTx{repo: r}
}

func (r *fakeRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	if r.event == nil || r.event.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	ev := *r.event
	return &ev, nil
}

func (r *fakeRepo) ListEvents(ctx context.Context, filter EventFilter) ([]Event, int64, error) {
	if r.event == nil {
		return nil, 0, nil
	}
	return []Event{*r.event}, 1, nil
}

func (r *fakeRepo) ListEventsWithReminderBetween(ctx context.Context, from, to time.Time) ([]Event, error) {
	if r.event == nil || r.event.ReminderTime == nil {
		return nil, nil
	}
	at := *r.event.ReminderTime
	if r.event.Status == StatusApproved && r.event.ReminderType == ReminderTypeEmail &&
		!at.Before(from) && at.Before(to) {
		return []Event{*r.event}, nil
	}
	return nil, nil
}

func (r *fakeRepo) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	r.event = nil
	return nil
}

func (r *fakeRepo) ListHistory(ctx context.Context, eventID uuid.UUID) ([]History, error) {
	var rows []History
	for _, h := range r.history {
		if h.EventID == eventID {
			rows = append(rows, h)
		}
	}
	return rows, nil
}

func (r *fakeRepo) HistorySince(ctx context.Context, eventID uuid.UUID, since time.Time) ([]History, error) {
	var rows []History
	for _, h := range r.history {
		if h.EventID == eventID && h.ChangedAt.After(since) {
			rows = append(rows, h)
		}
	}
	return rows, nil
}

func (r *fakeRepo) LastApprovalAt(ctx context.Context, eventID uuid.UUID) (*time.Time, error) {
	var last *time.Time
	for _, h := range r.history {
		if h.EventID == eventID && h.FieldName == FieldStatus && h.NewValue == string(StatusApproved) {
			at := h.ChangedAt
			if last == nil || at.After(*last) {
				last = &at
			}
		}
	}
	return last, nil
}

func (r *fakeRepo) LastContentChangeAt(ctx context.Context, eventID uuid.UUID) (*time.Time, error) {
	var last *time.Time
	for _, h := range r.history {
		if h.EventID == eventID && h.FieldName != FieldStatus {
			at := h.ChangedAt
			if last == nil || at.After(*last) {
				last = &at
			}
		}
	}
	return last, nil
}

type fakeTx struct {
	repo      *fakeRepo
	event     *Event
	rows      []History
	committed bool
}

func (t *fakeTx) Commit() error {
	if t.repo.commitErr != nil {
		return t.repo.commitErr
	}
	if t.event != nil {
		t.repo.event = t.event
	}
	t.repo.history = append(t.repo.history, t.rows...)
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	if !t.committed {
		t.repo.rollbacks++
	}
	return nil
}

func (t *fakeTx) CreateEvent(event *Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	t.event = event
	return nil
}

func (t *fakeTx) UpdateEvent(event *Event) error {
	if t.repo.updateErr != nil {
		return t.repo.updateErr
	}
	t.event = event
	return nil
}

func (t *fakeTx) RecordHistory(rows []History) error {
	if t.repo.recordHistoryErr != nil {
		return t.repo.recordHistoryErr
	}
	t.rows = append(t.rows, rows...)
	return nil
}

func (t *fakeTx) ReplaceLocations(event *Event, locations []location.Location) error {
	event.Locations = locations
	return nil
}

func (t *fakeTx) ReplacePreparers(event *Event, departments []directory.Department) error {
	event.Preparers = departments
	return nil
}

func (t *fakeTx) ReplaceAttachments(event *Event, attachments []attachment.Attachment) error {
	event.Attachments = attachments
	return nil
}

type fakeLocationStore struct {
	known map[uuid.UUID]location.Location
}

func (s *fakeLocationStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]location.Location, error) {
	var out []location.Location
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if loc, ok := s.known[id]; ok && !seen[id] {
			out = append(out, loc)
			seen[id] = true
		}
	}
	return out, nil
}

type fakeAttachmentStore struct {
	known map[uuid.UUID]attachment.Attachment
}

func (s *fakeAttachmentStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]attachment.Attachment, error) {
	var out []attachment.Attachment
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if a, ok := s.known[id]; ok && !seen[id] {
			out = append(out, a)
			seen[id] = true
		}
	}
	return out, nil
}

type fakeDirectoryStore struct {
	users       map[uuid.UUID]directory.User
	departments map[uuid.UUID]directory.Department
}

func (s *fakeDirectoryStore) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]directory.User, error) {
	var out []directory.User
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok && !seen[id] {
			out = append(out, u)
			seen[id] = true
		}
	}
	return out, nil
}

func (s *fakeDirectoryStore) GetDepartmentsByIDs(ctx context.Context, ids []uuid.UUID) ([]directory.Department, error) {
	var out []directory.Department
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if d, ok := s.departments[id]; ok && !seen[id] {
			out = append(out, d)
			seen[id] = true
		}
	}
	return out, nil
}

type dispatchCall struct {
	event    notification.EventSummary
	changes  []notification.ChangeRow
	kind     notification.Kind
	audience notification.Audience
}

type fakeNotifier struct {
	calls []dispatchCall
}

func (n *fakeNotifier) Dispatch(ctx context.Context, event notification.EventSummary, changes []notification.ChangeRow, kind notification.Kind, audience notification.Audience) notification.Report {
	n.calls = append(n.calls, dispatchCall{event: event, changes: changes, kind: kind, audience: audience})
	return notification.Report{Sent: 1}
}

type serviceFixture struct {
	service  Service
	repo     *fakeRepo
	notifier *fakeNotifier
	dir      *fakeDirectoryStore
}

func newServiceFixture() *serviceFixture {
	repo := &fakeRepo{}
	notifier := &fakeNotifier{}
	dir := &fakeDirectoryStore{
		users:       map[uuid.UUID]directory.User{},
		departments: map[uuid.UUID]directory.Department{},
	}
	locations := &fakeLocationStore{known: map[uuid.UUID]location.Location{}}
	attachments := &fakeAttachmentStore{known: map[uuid.UUID]attachment.Attachment{}}

	svc := NewService(repo, locations, attachments, dir, notifier, zap.NewNop())
	return &serviceFixture{service: svc, repo: repo, notifier: notifier, dir: dir}
}

func (f *serviceFixture) seedEvent(status Status) *Event {
	ev := &Event{
		ID:           uuid.New(),
		Title:        "Opening ceremony",
		Description:  "Main hall",
		StartTime:    time.Date(2026, 9, 5, 8, 0, 0, 0, time.UTC),
		EndTime:      time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC),
		HostID:       uuid.New(),
		CreatorID:    uuid.New(),
		Status:       status,
		ReminderType: ReminderTypeNone,
	}
	f.repo.event = ev
	return ev
}

// backdateHistory shifts every ledger row into the past so a subsequent write
// is guaranteed to postdate it regardless of clock resolution.
func (f *serviceFixture) backdateHistory(d time.Duration) {
	for i := range f.repo.history {
		f.repo.history[i].ChangedAt = f.repo.history[i].ChangedAt.Add(-d)
	}
}

func strPtr(s string) *string { return &s }

func TestUpdateEventNoChangesSkipsLedgerAndTransaction(t *testing.T) {
	f := newServiceFixture()
	ev := f.seedEvent(StatusApproved)

	updated, report, err := f.service.UpdateEvent(context.Background(), ev.ID, UpdateEventRequest{
		Title: strPtr(ev.Title),
	}, uuid.New())

	require.NoError(t, err)
	assert.Nil(t, report)
	assert.Equal(t, ev.ID, updated.ID)
	assert.Equal(t, 0, f.repo.txCount, "a no-op update must not open a transaction")
	assert.Empty(t, f.repo.history)
	assert.Empty(t, f.notifier.calls)
}

func TestUpdateApprovedEventRecordsAndNotifies(t *testing.T) {
	f := newServiceFixture()
	ev := f.seedEvent(StatusApproved)
	actor := uuid.New()

	updated, report, err := f.service.UpdateEvent(context.Background(), ev.ID, UpdateEventRequest{
		Title: strPtr("Opening ceremony (moved)"),
	}, actor)

	require.NoError(t, err)
	assert.Equal(t, "Opening ceremony (moved)", updated.Title)

	require.Len(t, f.repo.history, 1)
	row := f.repo.history[0]
	assert.Equal(t, FieldTitle, row.FieldName)
	assert.Equal(t, "Opening ceremony", row.OldValue)
	assert.Equal(t, "Opening ceremony (moved)", row.NewValue)
	assert.Equal(t, actor, row.UserID)

	require.NotNil(t, report)
	require.Len(t, f.notifier.calls, 1)
	call := f.notifier.calls[0]
	assert.Equal(t, notification.KindChanged, call.kind)
	assert.Equal(t, actor, call.audience.ActorID)
	require.Len(t, call.changes, 1)
	assert.Equal(t, FieldTitle, call.changes[0].Field)
}

func TestUpdatePendingEventIsSilent(t *testing.T) {
	f := newServiceFixture()
	ev := f.seedEvent(StatusPending)

	_, report, err := f.service.UpdateEvent(context.Background(), ev.ID, UpdateEventRequest{
		Title: strPtr("Quiet edit"),
	}, uuid.New())

	require.NoError(t, err)
	assert.Nil(t, report)
	assert.Len(t, f.repo.history, 1, "the ledger still records silent edits")
	assert.Empty(t, f.notifier.calls)
}

func TestLedgerOnlyGrows(t *testing.T) {
	f := newServiceFixture()
	ev := f.seedEvent(StatusPending)
	actor := uuid.New()

	titles := []string{"First", "Second", "Third"}
	var recordedIDs []uuid.UUID
	for _, title := range titles {
		_, _, err := f.service.UpdateEvent(context.Background(), ev.ID, UpdateEventRequest{
			Title: strPtr(title),
		}, actor)
		require.NoError(t, err)

		require.Greater(t, len(f.repo.history), len(recordedIDs), "each edit must append")
		for i, id := range recordedIDs {
			assert.Equal(t, id, f.repo.history[i].ID, "existing rows must never be rewritten")
		}
		recordedIDs = recordedIDs[:0]
		for _, h := range f.repo.history {
			recordedIDs = append(recordedIDs, h.ID)
		}
	}
	assert.Len(t, f.repo.history, 3)
}

func TestApproveFirstTime(t *testing.T) {
	f := newServiceFixture()
	ev := f.seedEvent(StatusPending)
	approver := uuid.New()

	approved, kind, report, err := f.service.Approve(context.Background(), ev.ID, approver)

	require.NoError(t, err)
	assert.Equal(t, FirstApproval, kind)
	assert.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, report)

	require.Len(t, f.repo.history, 1)
	row := f.repo.history[0]
	assert.Equal(t, FieldStatus, row.FieldName)
	assert.Equal(t, string(StatusPending), row.OldValue)
	assert.Equal(t, string(StatusApproved), row.NewValue)

	require.Len(t, f.notifier.calls, 1)
	call := f.notifier.calls[0]
	assert.Equal(t, notification.KindApproved, call.kind)
	assert.Empty(t, call.changes, "first approval mails carry no diff table")
}

func TestApproveAfterEditIsReapproval(t *testing.T) {
	f := newServiceFixture()
	ev := f.seedEvent(StatusPending)
	approver := uuid.New()
	editor := uuid.New()

	_, kind, _, err := f.service.Approve(context.Background(), ev.ID, approver)
	require.NoError(t, err)
	require.Equal(t, FirstApproval, kind)

	f.backdateHistory(time.Hour)

	_, _, err = f.service.UpdateEvent(context.Background(), ev.ID, UpdateEventRequest{
		Title: strPtr("Opening ceremony, hall B"),
	}, editor)
	require.NoError(t, err)

	_, kind, report, err := f.service.Approve(context.Background(), ev.ID, approver)
	require.NoError(t, err)
	assert.Equal(t, Reapproval, kind)
	require.NotNil(t, report)

	// Event was still approved, so no second status row was written.
	statusRows := 0
	for _, h := range f.repo.history {
		if h.FieldName == FieldStatus {
			statusRows++
		}
	}
	assert.Equal(t, 1, statusRows)

	last := f.notifier.calls[len(f.notifier.calls)-1]
	assert.Equal(t, notification.KindReapproved, last.kind)
	require.Len(t, last.changes, 1, "reapproval mail shows changes since the previous approval")
	assert.Equal(t, FieldTitle, last.changes[0].Field)
	assert.Equal(t, "Opening ceremony, hall B", last.changes[0].New)
}

func TestApproveTwiceWithoutEditsIsFirstApproval(t *testing.T) {
	f := newServiceFixture()
	ev := f.seedEvent(StatusPending)
	approver := uuid.New()

	_, kind, _, err := f.service.Approve(context.Background(), ev.ID, approver)
	require.NoError(t, err)
	require.Equal(t, FirstApproval, kind)

	f.backdateHistory(time.Hour)

	_, kind, report, err := f.service.Approve(context.Background(), ev.ID, approver)
	require.NoError(t, err)
	assert.Equal(t, FirstApproval, kind, "re-approving without edits is indistinguishable from a first approval")
	require.NotNil(t, report)
	assert.Len(t, f.repo.history, 1, "no new status row when the event is already approved")

	last := f.notifier.calls[len(f.notifier.calls)-1]
	assert.Equal(t, notification.KindApproved, last.kind)
}

func TestDeclineNeverNotifies(t *testing.T) {
	f := newServiceFixture()
	ev := f.seedEvent(StatusPending)
	approver := uuid.New()

	declined, err := f.service.Decline(context.Background(), ev.ID, approver)
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, declined.Status)
	assert.Empty(t, f.notifier.calls)

	require.Len(t, f.repo.history, 1)
	assert.Equal(t, FieldStatus, f.repo.history[0].FieldName)
	assert.Equal(t, string(StatusDeclined), f.repo.history[0].NewValue)

	// Declining an already declined event is a no-op.
	_, err = f.service.Decline(context.Background(), ev.ID, approver)
	require.NoError(t, err)
	assert.Len(t, f.repo.history, 1)
}

func TestUpdateEventRejectsInvalidTimeRange(t *testing.T) {
	f := newServiceFixture()
	ev := f.seedEvent(StatusPending)

	badEnd := ev.StartTime.Add(-time.Hour)
	_, _, err := f.service.UpdateEvent(context.Background(), ev.ID, UpdateEventRequest{
		EndTime: &badEnd,
	}, uuid.New())

	assert.ErrorIs(t, err, ErrInvalidTimeRange)
	assert.Equal(t, 0, f.repo.txCount)
	assert.Empty(t, f.repo.history)
}

func TestUpdateEventRejectsUnknownParticipant(t *testing.T) {
	f := newServiceFixture()
	ev := f.seedEvent(StatusPending)

	participants := []Participant{{Type: ParticipantUser, ID: uuid.New()}}
	_, _, err := f.service.UpdateEvent(context.Background(), ev.ID, UpdateEventRequest{
		Participants: &participants,
	}, uuid.New())

	assert.ErrorIs(t, err, ErrInvalidParticipant)
	assert.Empty(t, f.repo.history)
}

func TestMissingEventYieldsDomainSentinel(t *testing.T) {
	f := newServiceFixture()
	missing := uuid.New()

	_, err := f.service.GetEventByID(context.Background(), missing)
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, _, err = f.service.UpdateEvent(context.Background(), missing, UpdateEventRequest{
		Title: strPtr("Nobody home"),
	}, uuid.New())
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, _, _, err = f.service.Approve(context.Background(), missing, uuid.New())
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = f.service.Decline(context.Background(), missing, uuid.New())
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestUpdateEventLedgerWriteFailureAbortsTransaction(t *testing.T) {
	f := newServiceFixture()
	ev := f.seedEvent(StatusApproved)
	f.repo.recordHistoryErr = errors.New("ledger insert failed")

	_, report, err := f.service.UpdateEvent(context.Background(), ev.ID, UpdateEventRequest{
		Title: strPtr("Should not land"),
	}, uuid.New())

	require.Error(t, err)
	assert.Nil(t, report)
	assert.Equal(t, 1, f.repo.rollbacks, "a failed ledger write must roll back")
	assert.Empty(t, f.repo.history)
	assert.Equal(t, "Opening ceremony", f.repo.event.Title, "field updates must not outlive their audit trail")
	assert.Empty(t, f.notifier.calls)
}

func TestUpdateEventCommitFailureAbortsTransaction(t *testing.T) {
	f := newServiceFixture()
	ev := f.seedEvent(StatusApproved)
	f.repo.commitErr = errors.New("commit failed")

	_, report, err := f.service.UpdateEvent(context.Background(), ev.ID, UpdateEventRequest{
		Title: strPtr("Should not land"),
	}, uuid.New())

	require.Error(t, err)
	assert.Nil(t, report)
	assert.Equal(t, 1, f.repo.rollbacks)
	assert.Empty(t, f.repo.history)
	assert.Equal(t, "Opening ceremony", f.repo.event.Title)
	assert.Empty(t, f.notifier.calls)
}

func TestApproveLedgerWriteFailureAbortsTransaction(t *testing.T) {
	f := newServiceFixture()
	ev := f.seedEvent(StatusPending)
	f.repo.recordHistoryErr = errors.New("ledger insert failed")

	_, _, report, err := f.service.Approve(context.Background(), ev.ID, uuid.New())

	require.Error(t, err)
	assert.Nil(t, report)
	assert.Equal(t, 1, f.repo.rollbacks)
	assert.Empty(t, f.repo.history)
	assert.Equal(t, StatusPending, f.repo.event.Status, "a status transition must not commit without its ledger row")
	assert.Empty(t, f.notifier.calls)
}

func TestCreateEventStartsPending(t *testing.T) {
	f := newServiceFixture()
	creator := uuid.New()

	created, err := f.service.CreateEvent(context.Background(), CreateEventRequest{
		Title:     "Graduation",
		StartTime: time.Date(2026, 6, 20, 8, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC),
		HostID:    uuid.New(),
	}, creator)

	require.NoError(t, err)
	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, creator, created.CreatorID)
	assert.Empty(t, f.repo.history, "creation is not a ledger event")
	assert.Empty(t, f.notifier.calls)
}

func TestSendDueReminders(t *testing.T) {
	f := newServiceFixture()
	ev := f.seedEvent(StatusApproved)
	at := time.Now().UTC().Add(30 * time.Minute)
	ev.ReminderType = ReminderTypeEmail
	ev.ReminderTime = &at

	count, err := f.service.SendDueReminders(context.Background(), time.Now().UTC(), time.Now().UTC().Add(time.Hour))

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, f.notifier.calls, 1)
	assert.Equal(t, notification.KindReminder, f.notifier.calls[0].kind)
}
