package event

import (
	"context"
	"errors"
	"time"

	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/attachment"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/directory"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/location"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface defines the data access methods for events and their
// change ledger
type Repository interface {
	BeginTransaction(ctx context.Context) Transaction

	// Event reads
	GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, int64, error)
	ListEventsWithReminderBetween(ctx context.Context, from, to time.Time) ([]Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error

	// Ledger reads. The ledger is append-only: no update or delete exists.
	ListHistory(ctx context.Context, eventID uuid.UUID) ([]History, error)
	HistorySince(ctx context.Context, eventID uuid.UUID, since time.Time) ([]History, error)
	LastApprovalAt(ctx context.Context, eventID uuid.UUID) (*time.Time, error)
	LastContentChangeAt(ctx context.Context, eventID uuid.UUID) (*time.Time, error)
}

// Transaction represents one atomic unit of event mutation: field updates,
// relation sync and ledger rows commit or roll back together.
type Transaction interface {
	Commit() error
	Rollback() error
	CreateEvent(event *Event) error
	UpdateEvent(event *Event) error
	RecordHistory(rows []History) error
	ReplaceLocations(event *Event, locations []location.Location) error
	ReplacePreparers(event *Event, departments []directory.Department) error
	ReplaceAttachments(event *Event, attachments []attachment.Attachment) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new event repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) BeginTransaction(ctx context.Context) Transaction {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil
	}
	return &transaction{tx: tx}
}

func (r *repository) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).
		Preload("Locations").
		Preload("Preparers").
		Preload("Attachments").
		First(&event, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) ListEvents(ctx context.Context, filter EventFilter) ([]Event, int64, error) {
	var events []Event
	var total int64

	query := r.db.WithContext(ctx).Model(&Event{})

	if filter.StartTime != nil && filter.EndTime != nil {
		query = query.Where(
			"(start_time BETWEEN ? AND ?) OR (end_time BETWEEN ? AND ?) OR (start_time <= ? AND end_time >= ?)",
			filter.StartTime, filter.EndTime,
			filter.StartTime, filter.EndTime,
			filter.StartTime, filter.EndTime,
		)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.HostID != nil {
		query = query.Where("host_id = ?", filter.HostID)
	}
	if filter.Search != "" {
		query = query.Where("title ILIKE ? OR description ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	err := query.
		Preload("Locations").
		Preload("Preparers").
		Preload("Attachments").
		Order("start_time").
		Find(&events).Error

	return events, total, err
}

func (r *repository) ListEventsWithReminderBetween(ctx context.Context, from, to time.Time) ([]Event, error) {
	var events []Event
	// Half-open window so consecutive scans never pick up a boundary event
	// twice.
	err := r.db.WithContext(ctx).
		Where("status = ? AND reminder_type = ? AND reminder_time >= ? AND reminder_time < ?",
			StatusApproved, ReminderTypeEmail, from, to).
		Find(&events).Error
	return events, err
}

func (r *repository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	// Ledger rows are kept while the event exists; soft delete leaves them
	// untouched.
	return r.db.WithContext(ctx).Delete(&Event{}, id).Error
}

func (r *repository) ListHistory(ctx context.Context, eventID uuid.UUID) ([]History, error) {
	var rows []History
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("changed_at, id").
		Find(&rows).Error
	return rows, err
}

func (r *repository) HistorySince(ctx context.Context, eventID uuid.UUID, since time.Time) ([]History, error) {
	var rows []History
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND changed_at > ?", eventID, since).
		Order("changed_at, id").
		Find(&rows).Error
	return rows, err
}

func (r *repository) LastApprovalAt(ctx context.Context, eventID uuid.UUID) (*time.Time, error) {
	var row History
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND field_name = ? AND new_value = ?", eventID, FieldStatus, string(StatusApproved)).
		Order("changed_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row.ChangedAt, nil
}

func (r *repository) LastContentChangeAt(ctx context.Context, eventID uuid.UUID) (*time.Time, error) {
	var row History
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND field_name <> ?", eventID, FieldStatus).
		Order("changed_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row.ChangedAt, nil
}

type transaction struct {
	tx *gorm.DB
}

func (t *transaction) Commit() error {
	return t.tx.Commit().Error
}

func (t *transaction) Rollback() error {
	return t.tx.Rollback().Error
}

func (t *transaction) CreateEvent(event *Event) error {
	return t.tx.Create(event).Error
}

func (t *transaction) UpdateEvent(event *Event) error {
	return t.tx.Save(event).Error
}

func (t *transaction) RecordHistory(rows []History) error {
	if len(rows) == 0 {
		return nil
	}
	return t.tx.Create(&rows).Error
}

func (t *transaction) ReplaceLocations(event *Event, locations []location.Location) error {
	return t.tx.Model(event).Association("Locations").Replace(locations)
}

func (t *transaction) ReplacePreparers(event *Event, departments []directory.Department) error {
	return t.tx.Model(event).Association("Preparers").Replace(departments)
}

func (t *transaction) ReplaceAttachments(event *Event, attachments []attachment.Attachment) error {
	return t.tx.Model(event).Association("Attachments").Replace(attachments)
}
