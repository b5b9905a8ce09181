package notification

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/directory"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	users       map[uuid.UUID]directory.User
	departments map[uuid.UUID][]directory.User
	failOnUser  uuid.UUID
}

func (d *fakeDirectory) FindUser(ctx context.Context, id uuid.UUID) (*directory.User, error) {
	if id == d.failOnUser && d.failOnUser != uuid.Nil {
		return nil, errors.New("directory unavailable")
	}
	u, ok := d.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return &u, nil
}

func (d *fakeDirectory) UsersByIDs(ctx context.Context, ids []uuid.UUID) ([]directory.User, error) {
	var out []directory.User
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *fakeDirectory) UsersInDepartment(ctx context.Context, id uuid.UUID) ([]directory.User, error) {
	return d.departments[id], nil
}

type fakeTransport struct {
	mu     sync.Mutex
	sent   []string
	failTo map[string]bool
}

func (t *fakeTransport) Send(to string, variant Kind, data ViewData) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failTo[to] {
		return "", errors.New("smtp timeout")
	}
	t.sent = append(t.sent, to)
	return "msg-" + to, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func seedUser(d *fakeDirectory, email string) directory.User {
	u := directory.User{
		ID:       uuid.New(),
		FullName: email,
		Email:    email,
	}
	d.users[u.ID] = u
	return u
}

func testSummary() EventSummary {
	return EventSummary{
		ID:        uuid.New(),
		Title:     "Board meeting",
		StartTime: time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestDispatchFailureIsolation(t *testing.T) {
	dir := &fakeDirectory{users: map[uuid.UUID]directory.User{}}
	creator := seedUser(dir, "creator@example.com")
	ok1 := seedUser(dir, "ok1@example.com")
	broken := seedUser(dir, "broken@example.com")

	transport := &fakeTransport{failTo: map[string]bool{"broken@example.com": true}}
	d := NewDispatcher(dir, transport, quietLogger())

	report := d.Dispatch(context.Background(), testSummary(), nil, KindApproved, Audience{
		CreatorID: creator.ID,
		UserIDs:   []uuid.UUID{ok1.ID, broken.ID},
	})

	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Errors, "broken@example.com")
	assert.ElementsMatch(t, []string{"creator@example.com", "ok1@example.com"}, report.Delivered)
}

func TestDispatchExcludesActorOnlyForChanges(t *testing.T) {
	dir := &fakeDirectory{users: map[uuid.UUID]directory.User{}}
	creator := seedUser(dir, "creator@example.com")
	editor := seedUser(dir, "editor@example.com")

	audience := Audience{
		CreatorID: creator.ID,
		ActorID:   editor.ID,
		UserIDs:   []uuid.UUID{editor.ID},
	}

	t.Run("changed excludes the editor", func(t *testing.T) {
		transport := &fakeTransport{}
		d := NewDispatcher(dir, transport, quietLogger())

		report := d.Dispatch(context.Background(), testSummary(), nil, KindChanged, audience)
		assert.Equal(t, 1, report.Sent)
		assert.Equal(t, []string{"creator@example.com"}, report.Delivered)
	})

	t.Run("approved still reaches the approver", func(t *testing.T) {
		transport := &fakeTransport{}
		d := NewDispatcher(dir, transport, quietLogger())

		report := d.Dispatch(context.Background(), testSummary(), nil, KindApproved, audience)
		assert.Equal(t, 2, report.Sent)
		assert.ElementsMatch(t, []string{"creator@example.com", "editor@example.com"}, report.Delivered)
	})
}

func TestDispatchResolverFailureIsReported(t *testing.T) {
	dir := &fakeDirectory{users: map[uuid.UUID]directory.User{}}
	missingCreator := uuid.New()
	dir.failOnUser = missingCreator

	transport := &fakeTransport{}
	d := NewDispatcher(dir, transport, quietLogger())

	report := d.Dispatch(context.Background(), testSummary(), nil, KindApproved, Audience{
		CreatorID: missingCreator,
	})

	assert.Equal(t, 0, report.Sent)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Errors, "*")
	assert.Empty(t, transport.sent)
}

func TestResolveRecipientsDeduplicatesAcrossSources(t *testing.T) {
	dir := &fakeDirectory{
		users:       map[uuid.UUID]directory.User{},
		departments: map[uuid.UUID][]directory.User{},
	}
	creator := seedUser(dir, "creator@example.com")
	member := seedUser(dir, "member@example.com")

	deptID := uuid.New()
	// The creator also belongs to the notified department.
	dir.departments[deptID] = []directory.User{creator, member}

	recipients, err := ResolveRecipients(context.Background(), dir, Audience{
		CreatorID:     creator.ID,
		UserIDs:       []uuid.UUID{member.ID},
		DepartmentIDs: []uuid.UUID{deptID},
	})

	require.NoError(t, err)
	assert.Len(t, recipients, 2)
}

func TestResolveRecipientsDropsEmptyAddresses(t *testing.T) {
	dir := &fakeDirectory{users: map[uuid.UUID]directory.User{}}
	creator := seedUser(dir, "creator@example.com")

	noMail := directory.User{ID: uuid.New(), FullName: "No Mail"}
	dir.users[noMail.ID] = noMail

	recipients, err := ResolveRecipients(context.Background(), dir, Audience{
		CreatorID: creator.ID,
		UserIDs:   []uuid.UUID{noMail.ID},
	})

	require.NoError(t, err)
	require.Len(t, recipients, 1)
	assert.Equal(t, "creator@example.com", recipients[0].Address)
}
