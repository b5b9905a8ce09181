package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func baseSnapshot() Snapshot {
	return Snapshot{
		Title:        "Faculty meeting",
		Description:  "Quarterly review",
		StartTime:    time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		EndTime:      time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
		HostID:       uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Status:       StatusApproved,
		ReminderType: ReminderTypeNone,
	}
}

func TestDiffIdenticalSnapshots(t *testing.T) {
	a := baseSnapshot()
	b := baseSnapshot()

	changes := Diff(a, b)
	assert.Empty(t, changes, "identical snapshots must produce an empty diff")
}

func TestDiffScalarFields(t *testing.T) {
	newHost := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	tests := []struct {
		name     string
		mutate   func(*Snapshot)
		field    string
		oldValue string
		newValue string
	}{
		{
			name:     "title change",
			mutate:   func(s *Snapshot) { s.Title = "Faculty meeting (rescheduled)" },
			field:    FieldTitle,
			oldValue: "Faculty meeting",
			newValue: "Faculty meeting (rescheduled)",
		},
		{
			name:     "description change",
			mutate:   func(s *Snapshot) { s.Description = "Annual review" },
			field:    FieldDescription,
			oldValue: "Quarterly review",
			newValue: "Annual review",
		},
		{
			name:     "start time change",
			mutate:   func(s *Snapshot) { s.StartTime = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC) },
			field:    FieldStartTime,
			oldValue: "2026-03-10 09:00:00",
			newValue: "2026-03-10 10:00:00",
		},
		{
			name:     "host change",
			mutate:   func(s *Snapshot) { s.HostID = newHost },
			field:    FieldHost,
			oldValue: "11111111-1111-1111-1111-111111111111",
			newValue: "22222222-2222-2222-2222-222222222222",
		},
		{
			name:     "reminder type change",
			mutate:   func(s *Snapshot) { s.ReminderType = ReminderTypeEmail },
			field:    FieldReminderType,
			oldValue: "none",
			newValue: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := baseSnapshot()
			updated := baseSnapshot()
			tt.mutate(&updated)

			changes := Diff(old, updated)
			assert.Len(t, changes, 1)
			assert.Equal(t, tt.field, changes[0].FieldName)
			assert.Equal(t, tt.oldValue, changes[0].OldValue)
			assert.Equal(t, tt.newValue, changes[0].NewValue)
		})
	}
}

func TestDiffTimezoneEquivalentTimesDoNotDiff(t *testing.T) {
	hanoi := time.FixedZone("ICT", 7*3600)

	old := baseSnapshot()
	updated := baseSnapshot()
	// Same instant expressed in a different zone.
	updated.StartTime = time.Date(2026, 3, 10, 16, 0, 0, 0, hanoi)
	updated.EndTime = time.Date(2026, 3, 10, 18, 0, 0, 0, hanoi)

	changes := Diff(old, updated)
	assert.Empty(t, changes, "same instant in a different zone must not register as a change")
}

func TestDiffReminderTime(t *testing.T) {
	at := time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)

	t.Run("nil to set", func(t *testing.T) {
		old := baseSnapshot()
		updated := baseSnapshot()
		updated.ReminderTime = &at

		changes := Diff(old, updated)
		assert.Len(t, changes, 1)
		assert.Equal(t, FieldReminderTime, changes[0].FieldName)
		assert.Equal(t, "", changes[0].OldValue)
		assert.Equal(t, "2026-03-10 08:30:00", changes[0].NewValue)
	})

	t.Run("set to nil", func(t *testing.T) {
		old := baseSnapshot()
		old.ReminderTime = &at
		updated := baseSnapshot()

		changes := Diff(old, updated)
		assert.Len(t, changes, 1)
		assert.Equal(t, "2026-03-10 08:30:00", changes[0].OldValue)
		assert.Equal(t, "", changes[0].NewValue)
	})

	t.Run("both nil", func(t *testing.T) {
		changes := Diff(baseSnapshot(), baseSnapshot())
		assert.Empty(t, changes)
	})
}

func TestDiffParticipants(t *testing.T) {
	userID := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	deptID := uuid.MustParse("44444444-4444-4444-4444-444444444444")

	old := baseSnapshot()
	old.Participants = ParticipantList{{Type: ParticipantUser, ID: userID}}

	updated := baseSnapshot()
	updated.Participants = ParticipantList{
		{Type: ParticipantUser, ID: userID},
		{Type: ParticipantDepartment, ID: deptID},
	}

	changes := Diff(old, updated)
	assert.Len(t, changes, 1)
	assert.Equal(t, FieldParticipants, changes[0].FieldName)
	assert.Contains(t, changes[0].NewValue, deptID.String())
	assert.NotContains(t, changes[0].OldValue, deptID.String())
}

func TestDiffRelationSets(t *testing.T) {
	locA := uuid.MustParse("55555555-5555-5555-5555-555555555555")
	locB := uuid.MustParse("66666666-6666-6666-6666-666666666666")

	t.Run("reordered ids do not diff", func(t *testing.T) {
		old := baseSnapshot()
		old.LocationIDs = []uuid.UUID{locA, locB}
		updated := baseSnapshot()
		updated.LocationIDs = []uuid.UUID{locB, locA}

		assert.Empty(t, Diff(old, updated))
	})

	t.Run("added location stores full lists", func(t *testing.T) {
		old := baseSnapshot()
		old.LocationIDs = []uuid.UUID{locA}
		updated := baseSnapshot()
		updated.LocationIDs = []uuid.UUID{locA, locB}

		changes := Diff(old, updated)
		assert.Len(t, changes, 1)
		assert.Equal(t, FieldLocations, changes[0].FieldName)
		assert.Equal(t, locA.String(), changes[0].OldValue)
		assert.Equal(t, locA.String()+","+locB.String(), changes[0].NewValue)
	})

	t.Run("cleared set serializes empty", func(t *testing.T) {
		old := baseSnapshot()
		old.AttachmentIDs = []uuid.UUID{locA}
		updated := baseSnapshot()

		changes := Diff(old, updated)
		assert.Len(t, changes, 1)
		assert.Equal(t, FieldAttachments, changes[0].FieldName)
		assert.Equal(t, "", changes[0].NewValue)
	})
}

func TestDiffOrderingIsDeterministic(t *testing.T) {
	locID := uuid.New()
	deptID := uuid.New()

	old := baseSnapshot()
	updated := baseSnapshot()
	updated.Title = "Changed"
	updated.EndTime = updated.EndTime.Add(time.Hour)
	updated.LocationIDs = []uuid.UUID{locID}
	updated.PreparerIDs = []uuid.UUID{deptID}

	changes := Diff(old, updated)
	fields := make([]string, len(changes))
	for i, c := range changes {
		fields[i] = c.FieldName
	}
	assert.Equal(t, []string{FieldTitle, FieldEndTime, FieldLocations, FieldPreparers}, fields)
}

func TestDiffStatusNeverAppears(t *testing.T) {
	old := baseSnapshot()
	old.Status = StatusPending
	updated := baseSnapshot()
	updated.Status = StatusApproved

	assert.Empty(t, Diff(old, updated), "status transitions are recorded by the service, not the diff")
}
