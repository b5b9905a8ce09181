package event

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/attachment"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/directory"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/location"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status represents the approval status of an event
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// ReminderType represents how attendees are reminded before an event starts
type ReminderType string

const (
	ReminderTypeNone  ReminderType = "none"
	ReminderTypeEmail ReminderType = "email"
)

// ParticipantType distinguishes the two kinds of participant references
type ParticipantType string

const (
	ParticipantUser       ParticipantType = "user"
	ParticipantDepartment ParticipantType = "department"
)

// Participant is a tagged reference to either a user or a whole department.
// Order within an event's participant list is preserved.
type Participant struct {
	Type ParticipantType `json:"type"`
	ID   uuid.UUID       `json:"id"`
}

// ParticipantList stores participants as a JSONB column
type ParticipantList []Participant

func (p *ParticipantList) Scan(src interface{}) error {
	if src == nil {
		*p = nil
		return nil
	}
	bytes, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", src)
	}
	var result []Participant
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*p = result
	return nil
}

func (p ParticipantList) Value() (driver.Value, error) {
	if len(p) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

// Event represents a scheduled organization event and its relations
type Event struct {
	ID           uuid.UUID       `json:"id" gorm:"type:uuid;primary_key"`
	Title        string          `json:"title" gorm:"type:varchar(255);not null;index:idx_event_title"`
	Description  string          `json:"description" gorm:"type:text"`
	StartTime    time.Time       `json:"start_time" gorm:"not null;index:idx_event_start"`
	EndTime      time.Time       `json:"end_time" gorm:"not null;index:idx_event_end"`
	HostID       uuid.UUID       `json:"host_id" gorm:"type:uuid;not null;index:idx_event_host"`
	CreatorID    uuid.UUID       `json:"creator_id" gorm:"type:uuid;not null;index:idx_event_creator"`
	Status       Status          `json:"status" gorm:"type:varchar(20);not null;default:'pending';index:idx_event_status"`
	ReminderType ReminderType    `json:"reminder_type" gorm:"type:varchar(20);not null;default:'none'"`
	ReminderTime *time.Time      `json:"reminder_time,omitempty"`
	Participants ParticipantList `json:"participants" gorm:"type:jsonb"`
	CreatedAt    time.Time       `json:"created_at" gorm:"not null;default:current_timestamp"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"not null;default:current_timestamp"`
	DeletedAt    gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`

	// Relationships
	Locations   []location.Location     `json:"locations,omitempty" gorm:"many2many:event_locations;"`
	Preparers   []directory.Department  `json:"preparers,omitempty" gorm:"many2many:event_preparers;"`
	Attachments []attachment.Attachment `json:"attachments,omitempty" gorm:"many2many:event_attachments;"`
}

// History is an immutable audit row recording one field-level change to an event
type History struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	EventID   uuid.UUID `json:"event_id" gorm:"type:uuid;not null;index:idx_history_event"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	FieldName string    `json:"field_name" gorm:"type:varchar(50);not null;index:idx_history_field"`
	OldValue  string    `json:"old_value" gorm:"type:text"`
	NewValue  string    `json:"new_value" gorm:"type:text"`
	ChangedAt time.Time `json:"changed_at" gorm:"not null;index:idx_history_changed"`
}

// TableName specifies the table names for each model
func (Event) TableName() string   { return "events" }
func (History) TableName() string { return "event_histories" }

// BeforeCreate hooks for UUID generation
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (h *History) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.ChangedAt.IsZero() {
		h.ChangedAt = time.Now().UTC()
	}
	return nil
}

// Request/Response DTOs
type CreateEventRequest struct {
	Title         string        `json:"title" binding:"required"`
	Description   string        `json:"description"`
	StartTime     time.Time     `json:"start_time" binding:"required"`
	EndTime       time.Time     `json:"end_time" binding:"required"`
	HostID        uuid.UUID     `json:"host_id" binding:"required"`
	ReminderType  ReminderType  `json:"reminder_type"`
	ReminderTime  *time.Time    `json:"reminder_time,omitempty"`
	Participants  []Participant `json:"participants,omitempty"`
	LocationIDs   []uuid.UUID   `json:"location_ids,omitempty"`
	PreparerIDs   []uuid.UUID   `json:"preparer_ids,omitempty"`
	AttachmentIDs []uuid.UUID   `json:"attachment_ids,omitempty"`
}

type UpdateEventRequest struct {
	Title         *string        `json:"title,omitempty"`
	Description   *string        `json:"description,omitempty"`
	StartTime     *time.Time     `json:"start_time,omitempty"`
	EndTime       *time.Time     `json:"end_time,omitempty"`
	HostID        *uuid.UUID     `json:"host_id,omitempty"`
	ReminderType  *ReminderType  `json:"reminder_type,omitempty"`
	ReminderTime  *time.Time     `json:"reminder_time,omitempty"`
	Participants  *[]Participant `json:"participants,omitempty"`
	LocationIDs   *[]uuid.UUID   `json:"location_ids,omitempty"`
	PreparerIDs   *[]uuid.UUID   `json:"preparer_ids,omitempty"`
	AttachmentIDs *[]uuid.UUID   `json:"attachment_ids,omitempty"`
}

type EventListResponse struct {
	Events []Event `json:"events"`
	Total  int64   `json:"total"`
}

// EventFilter defines the filtering options for listing events
type EventFilter struct {
	StartTime *time.Time
	EndTime   *time.Time
	Status    *Status
	HostID    *uuid.UUID
	Search    string
	Page      int
	PageSize  int
}

// Common errors
var (
	ErrInvalidTimeRange   = NewError("end time must not be before start time")
	ErrInvalidStatus      = NewError("invalid event status")
	ErrInvalidReminder    = NewError("reminder time is required for email reminders")
	ErrInvalidParticipant = NewError("participant references a missing user or department")
	ErrEventNotFound      = NewError("event not found")
)

// Error type
type Error struct {
	message string
}

func NewError(message string) *Error {
	return &Error{message: message}
}

func (e *Error) Error() string {
	return e.message
}

// Validate checks the event's own field-level invariants
func (e *Event) Validate() error {
	if e.Title == "" {
		return NewError("title is required")
	}
	if e.EndTime.Before(e.StartTime) {
		return ErrInvalidTimeRange
	}
	if !isValidStatus(e.Status) {
		return ErrInvalidStatus
	}
	if e.ReminderType == ReminderTypeEmail && e.ReminderTime == nil {
		return ErrInvalidReminder
	}
	for _, p := range e.Participants {
		if p.Type != ParticipantUser && p.Type != ParticipantDepartment {
			return NewError("invalid participant type")
		}
		if p.ID == uuid.Nil {
			return NewError("participant id is required")
		}
	}
	return nil
}

func isValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusDeclined:
		return true
	}
	return false
}
