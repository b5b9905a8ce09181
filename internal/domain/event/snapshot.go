package event

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Snapshot is an immutable point-in-time copy of an event's diffable state.
// Diffing only ever operates on snapshots, so a concurrently mutated aggregate
// cannot corrupt an in-flight comparison.
type Snapshot struct {
	Title        string
	Description  string
	StartTime    time.Time
	EndTime      time.Time
	HostID       uuid.UUID
	Status       Status
	ReminderType ReminderType
	ReminderTime *time.Time
	Participants ParticipantList

	LocationIDs   []uuid.UUID
	PreparerIDs   []uuid.UUID
	AttachmentIDs []uuid.UUID
}

// TakeSnapshot captures an event's current state, including fully materialized
// relation id lists. The input aggregate must have its relations loaded.
func TakeSnapshot(e *Event) Snapshot {
	s := Snapshot{
		Title:        e.Title,
		Description:  e.Description,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		HostID:       e.HostID,
		Status:       e.Status,
		ReminderType: e.ReminderType,
		Participants: append(ParticipantList(nil), e.Participants...),
	}
	if e.ReminderTime != nil {
		t := *e.ReminderTime
		s.ReminderTime = &t
	}
	for _, l := range e.Locations {
		s.LocationIDs = append(s.LocationIDs, l.ID)
	}
	for _, d := range e.Preparers {
		s.PreparerIDs = append(s.PreparerIDs, d.ID)
	}
	for _, a := range e.Attachments {
		s.AttachmentIDs = append(s.AttachmentIDs, a.ID)
	}
	return s
}

// serializeParticipants renders a participant list as a stable, order-preserving
// canonical string for ledger storage and comparison.
func serializeParticipants(list ParticipantList) string {
	if len(list) == 0 {
		return "[]"
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// serializeIDSet renders a relation id set as a sorted, comma-joined list.
// The full list is stored rather than a delta to match audit-log ergonomics.
func serializeIDSet(ids []uuid.UUID) string {
	if len(ids) == 0 {
		return ""
	}
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	sort.Strings(strs)
	out := strs[0]
	for _, s := range strs[1:] {
		out += "," + s
	}
	return out
}

// sameIDSet reports whether two id lists contain the same ids, ignoring order
// and duplicates.
func sameIDSet(a, b []uuid.UUID) bool {
	set := make(map[uuid.UUID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	seen := make(map[uuid.UUID]struct{}, len(b))
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
		seen[id] = struct{}{}
	}
	return len(set) == len(seen)
}
