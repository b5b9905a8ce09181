package event

import (
	"time"
)

// Synthetic field names used for relation and status changes in the ledger.
const (
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldStartTime    = "start_time"
	FieldEndTime      = "end_time"
	FieldHost         = "host_id"
	FieldReminderType = "reminder_type"
	FieldReminderTime = "reminder_time"
	FieldParticipants = "participants"
	FieldLocations    = "locations"
	FieldPreparers    = "preparers"
	FieldAttachments  = "attachments"
	FieldStatus       = "status"
)

// ledgerTimeLayout is the canonical human-readable form stored for time fields.
const ledgerTimeLayout = "2006-01-02 15:04:05"

// Change records one field-level or relation-level delta between two snapshots
type Change struct {
	FieldName string
	OldValue  string
	NewValue  string
}

// Diff computes the ordered change set between two snapshots. Scalar fields
// come first in declared order, then locations, preparers, attachments.
// Status is compared separately by the service, never here.
func Diff(old, new Snapshot) []Change {
	var changes []Change

	if old.Title != new.Title {
		changes = append(changes, Change{FieldTitle, old.Title, new.Title})
	}
	if old.Description != new.Description {
		changes = append(changes, Change{FieldDescription, old.Description, new.Description})
	}
	if !old.StartTime.Equal(new.StartTime) {
		changes = append(changes, Change{FieldStartTime, formatLedgerTime(&old.StartTime), formatLedgerTime(&new.StartTime)})
	}
	if !old.EndTime.Equal(new.EndTime) {
		changes = append(changes, Change{FieldEndTime, formatLedgerTime(&old.EndTime), formatLedgerTime(&new.EndTime)})
	}
	if old.HostID != new.HostID {
		changes = append(changes, Change{FieldHost, old.HostID.String(), new.HostID.String()})
	}
	if old.ReminderType != new.ReminderType {
		changes = append(changes, Change{FieldReminderType, string(old.ReminderType), string(new.ReminderType)})
	}
	if !sameOptionalInstant(old.ReminderTime, new.ReminderTime) {
		changes = append(changes, Change{FieldReminderTime, formatLedgerTime(old.ReminderTime), formatLedgerTime(new.ReminderTime)})
	}
	if oldP, newP := serializeParticipants(old.Participants), serializeParticipants(new.Participants); oldP != newP {
		changes = append(changes, Change{FieldParticipants, oldP, newP})
	}

	if !sameIDSet(old.LocationIDs, new.LocationIDs) {
		changes = append(changes, Change{FieldLocations, serializeIDSet(old.LocationIDs), serializeIDSet(new.LocationIDs)})
	}
	if !sameIDSet(old.PreparerIDs, new.PreparerIDs) {
		changes = append(changes, Change{FieldPreparers, serializeIDSet(old.PreparerIDs), serializeIDSet(new.PreparerIDs)})
	}
	if !sameIDSet(old.AttachmentIDs, new.AttachmentIDs) {
		changes = append(changes, Change{FieldAttachments, serializeIDSet(old.AttachmentIDs), serializeIDSet(new.AttachmentIDs)})
	}

	return changes
}

// sameOptionalInstant compares two optional time fields by absolute instant,
// so an equivalent timestamp in a different display format never diffs.
func sameOptionalInstant(a, b *time.Time) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Equal(*b)
}

func formatLedgerTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(ledgerTimeLayout)
}
