package notification

import (
	"time"

	"github.com/google/uuid"
)

// Kind selects the message variant sent for an event lifecycle change
type Kind string

const (
	// KindApproved announces a first approval; no diff table is shown.
	KindApproved Kind = "approved"
	// KindChanged announces an edit to an already-approved event and shows the
	// change table for that edit.
	KindChanged Kind = "changed"
	// KindReapproved announces an approval after edits and shows the changes
	// accumulated since the previous approval.
	KindReapproved Kind = "reapproved"
	// KindReminder announces an upcoming approved event.
	KindReminder Kind = "reminder"
)

// EventSummary carries the event fields the mail templates need. The
// dispatcher never touches the event aggregate itself.
type EventSummary struct {
	ID        uuid.UUID
	Title     string
	StartTime time.Time
	EndTime   time.Time
}

// ChangeRow is one line of the diff table shown in changed/reapproved mails
type ChangeRow struct {
	Field string
	Old   string
	New   string
}

// Audience describes who should be told about an event change. Department
// ids cover both participant departments and preparer departments; membership
// is resolved at dispatch time.
type Audience struct {
	CreatorID     uuid.UUID
	ActorID       uuid.UUID
	UserIDs       []uuid.UUID
	DepartmentIDs []uuid.UUID
}

// Recipient is one resolved mail target
type Recipient struct {
	UserID  uuid.UUID
	Name    string
	Address string
}

// Report summarizes one dispatch fan-out. It is the dispatcher's only
// side-effect-visible contract.
type Report struct {
	Sent      int               `json:"sent"`
	Failed    int               `json:"failed"`
	Delivered []string          `json:"delivered,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}
