package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/attachment"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/directory"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/location"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/notification"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LocationStore resolves location ids to stored rows
type LocationStore interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]location.Location, error)
}

// AttachmentStore resolves attachment ids to stored rows
type AttachmentStore interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]attachment.Attachment, error)
}

// DirectoryStore resolves user and department references
type DirectoryStore interface {
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]directory.User, error)
	GetDepartmentsByIDs(ctx context.Context, ids []uuid.UUID) ([]directory.Department, error)
}

// Notifier fans out event lifecycle mails after a state change has committed
type Notifier interface {
	Dispatch(ctx context.Context, event notification.EventSummary, changes []notification.ChangeRow, kind notification.Kind, audience notification.Audience) notification.Report
}

// Service defines the business logic interface for events
type Service interface {
	CreateEvent(ctx context.Context, req CreateEventRequest, actorID uuid.UUID) (*Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest, actorID uuid.UUID) (*Event, *notification.Report, error)
	Approve(ctx context.Context, id, actorID uuid.UUID) (*Event, ApprovalKind, *notification.Report, error)
	Decline(ctx context.Context, id, actorID uuid.UUID) (*Event, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	ListEvents(ctx context.Context, filter EventFilter) (*EventListResponse, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	ListHistory(ctx context.Context, eventID uuid.UUID) ([]History, error)
	SendDueReminders(ctx context.Context, from, to time.Time) (int, error)
}

type service struct {
	repo        Repository
	locations   LocationStore
	attachments AttachmentStore
	directory   DirectoryStore
	notifier    Notifier
	logger      *zap.Logger
}

// NewService creates a new event service instance
func NewService(repo Repository, locations LocationStore, attachments AttachmentStore, dir DirectoryStore, notifier Notifier, logger *zap.Logger) Service {
	return &service{
		repo:        repo,
		locations:   locations,
		attachments: attachments,
		directory:   dir,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *service) CreateEvent(ctx context.Context, req CreateEventRequest, actorID uuid.UUID) (*Event, error) {
	event := &Event{
		Title:        req.Title,
		Description:  req.Description,
		StartTime:    req.StartTime.UTC(),
		EndTime:      req.EndTime.UTC(),
		HostID:       req.HostID,
		CreatorID:    actorID,
		Status:       StatusPending,
		ReminderType: req.ReminderType,
		ReminderTime: req.ReminderTime,
		Participants: req.Participants,
	}
	if event.ReminderType == "" {
		event.ReminderType = ReminderTypeNone
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateParticipants(ctx, event.Participants); err != nil {
		return nil, err
	}

	locations, preparers, attachments, err := s.resolveRelations(ctx, req.LocationIDs, req.PreparerIDs, req.AttachmentIDs)
	if err != nil {
		return nil, err
	}

	tx := s.repo.BeginTransaction(ctx)
	if tx == nil {
		return nil, fmt.Errorf("failed to start transaction")
	}
	defer tx.Rollback()

	if err := tx.CreateEvent(event); err != nil {
		return nil, err
	}
	if err := tx.ReplaceLocations(event, locations); err != nil {
		return nil, err
	}
	if err := tx.ReplacePreparers(event, preparers); err != nil {
		return nil, err
	}
	if err := tx.ReplaceAttachments(event, attachments); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("event created",
		zap.String("event_id", event.ID.String()),
		zap.String("creator_id", actorID.String()))

	return s.repo.GetEventByID(ctx, event.ID)
}

// UpdateEvent applies a content update. The diff, the ledger rows, the field
// updates and the relation sync commit atomically; notification dispatch runs
// only after the commit and its failures never fail the request.
func (s *service) UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest, actorID uuid.UUID) (*Event, *notification.Report, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	oldSnap := TakeSnapshot(event)

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.StartTime != nil {
		event.StartTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		event.EndTime = req.EndTime.UTC()
	}
	if req.HostID != nil {
		event.HostID = *req.HostID
	}
	if req.ReminderType != nil {
		event.ReminderType = *req.ReminderType
	}
	if req.ReminderTime != nil {
		t := req.ReminderTime.UTC()
		event.ReminderTime = &t
	}
	if req.Participants != nil {
		event.Participants = *req.Participants
	}

	if err := event.Validate(); err != nil {
		return nil, nil, err
	}
	if err := s.validateParticipants(ctx, event.Participants); err != nil {
		return nil, nil, err
	}

	locationIDs := oldSnap.LocationIDs
	if req.LocationIDs != nil {
		locationIDs = *req.LocationIDs
	}
	preparerIDs := oldSnap.PreparerIDs
	if req.PreparerIDs != nil {
		preparerIDs = *req.PreparerIDs
	}
	attachmentIDs := oldSnap.AttachmentIDs
	if req.AttachmentIDs != nil {
		attachmentIDs = *req.AttachmentIDs
	}

	locations, preparers, attachments, err := s.resolveRelations(ctx, locationIDs, preparerIDs, attachmentIDs)
	if err != nil {
		return nil, nil, err
	}

	newSnap := TakeSnapshot(event)
	newSnap.LocationIDs = locationIDs
	newSnap.PreparerIDs = preparerIDs
	newSnap.AttachmentIDs = attachmentIDs

	changes := Diff(oldSnap, newSnap)
	if len(changes) == 0 {
		return event, nil, nil
	}

	tx := s.repo.BeginTransaction(ctx)
	if tx == nil {
		return nil, nil, fmt.Errorf("failed to start transaction")
	}
	defer tx.Rollback()

	if err := tx.RecordHistory(buildHistory(event.ID, actorID, changes, time.Now().UTC())); err != nil {
		return nil, nil, err
	}
	if err := tx.UpdateEvent(event); err != nil {
		return nil, nil, err
	}
	if req.LocationIDs != nil {
		if err := tx.ReplaceLocations(event, locations); err != nil {
			return nil, nil, err
		}
	}
	if req.PreparerIDs != nil {
		if err := tx.ReplacePreparers(event, preparers); err != nil {
			return nil, nil, err
		}
	}
	if req.AttachmentIDs != nil {
		if err := tx.ReplaceAttachments(event, attachments); err != nil {
			return nil, nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	s.logger.Info("event updated",
		zap.String("event_id", event.ID.String()),
		zap.String("actor_id", actorID.String()),
		zap.Int("changes", len(changes)))

	updated, err := s.repo.GetEventByID(ctx, event.ID)
	if err != nil {
		return nil, nil, err
	}

	// Edits to an event that is already approved are announced; pending and
	// declined events change silently.
	var report *notification.Report
	if updated.Status == StatusApproved {
		r := s.notifier.Dispatch(ctx, summarize(updated), toChangeRows(changes), notification.KindChanged, s.audience(updated, actorID))
		report = &r
	}

	return updated, report, nil
}

// Approve transitions an event into the approved status. Classification
// happens against the ledger state before this transition is recorded: an
// approval following a content change that postdates the previous approval is
// a reapproval, anything else is a first approval.
func (s *service) Approve(ctx context.Context, id, actorID uuid.UUID) (*Event, ApprovalKind, *notification.Report, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, "", nil, err
	}

	lastApprovalAt, err := s.repo.LastApprovalAt(ctx, event.ID)
	if err != nil {
		return nil, "", nil, err
	}
	lastContentChangeAt, err := s.repo.LastContentChangeAt(ctx, event.ID)
	if err != nil {
		return nil, "", nil, err
	}
	kind := ClassifyApproval(lastApprovalAt, lastContentChangeAt)

	if event.Status != StatusApproved {
		statusChange := []Change{{
			FieldName: FieldStatus,
			OldValue:  string(event.Status),
			NewValue:  string(StatusApproved),
		}}
		event.Status = StatusApproved

		tx := s.repo.BeginTransaction(ctx)
		if tx == nil {
			return nil, "", nil, fmt.Errorf("failed to start transaction")
		}
		defer tx.Rollback()

		if err := tx.RecordHistory(buildHistory(event.ID, actorID, statusChange, time.Now().UTC())); err != nil {
			return nil, "", nil, err
		}
		if err := tx.UpdateEvent(event); err != nil {
			return nil, "", nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, "", nil, err
		}
	}

	s.logger.Info("event approved",
		zap.String("event_id", event.ID.String()),
		zap.String("actor_id", actorID.String()),
		zap.String("classification", string(kind)))

	variant := notification.KindApproved
	var rows []notification.ChangeRow
	if kind == Reapproval {
		variant = notification.KindReapproved
		// The diff table accumulates every content change since the previous
		// approval, not just the latest edit.
		history, err := s.repo.HistorySince(ctx, event.ID, *lastApprovalAt)
		if err != nil {
			s.logger.Error("failed to load history for reapproval mail", zap.Error(err))
		} else {
			rows = toChangeRows(historyToChanges(history))
		}
	}

	report := s.notifier.Dispatch(ctx, summarize(event), rows, variant, s.audience(event, actorID))
	return event, kind, &report, nil
}

// Decline transitions an event into the declined status. Declining never
// triggers notifications.
func (s *service) Decline(ctx context.Context, id, actorID uuid.UUID) (*Event, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Status == StatusDeclined {
		return event, nil
	}

	statusChange := []Change{{
		FieldName: FieldStatus,
		OldValue:  string(event.Status),
		NewValue:  string(StatusDeclined),
	}}
	event.Status = StatusDeclined

	tx := s.repo.BeginTransaction(ctx)
	if tx == nil {
		return nil, fmt.Errorf("failed to start transaction")
	}
	defer tx.Rollback()

	if err := tx.RecordHistory(buildHistory(event.ID, actorID, statusChange, time.Now().UTC())); err != nil {
		return nil, err
	}
	if err := tx.UpdateEvent(event); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("event declined",
		zap.String("event_id", event.ID.String()),
		zap.String("actor_id", actorID.String()))
	return event, nil
}

// getEvent translates a repository miss into ErrEventNotFound so callers
// match on the domain sentinel instead of the storage driver's error.
func (s *service) getEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	event, err := s.repo.GetEventByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	return event, err
}

func (s *service) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	return s.getEvent(ctx, id)
}

func (s *service) ListEvents(ctx context.Context, filter EventFilter) (*EventListResponse, error) {
	events, total, err := s.repo.ListEvents(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &EventListResponse{Events: events, Total: total}, nil
}

func (s *service) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteEvent(ctx, id)
}

func (s *service) ListHistory(ctx context.Context, eventID uuid.UUID) ([]History, error) {
	return s.repo.ListHistory(ctx, eventID)
}

// SendDueReminders dispatches reminder mails for approved events whose
// reminder time falls inside [from, to). Returns the number of events
// a reminder batch was dispatched for.
func (s *service) SendDueReminders(ctx context.Context, from, to time.Time) (int, error) {
	events, err := s.repo.ListEventsWithReminderBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to list due reminders: %w", err)
	}

	dispatched := 0
	for i := range events {
		ev := &events[i]
		if ev.Status != StatusApproved || ev.ReminderType != ReminderTypeEmail {
			continue
		}
		report := s.notifier.Dispatch(ctx, summarize(ev), nil, notification.KindReminder, s.audience(ev, uuid.Nil))
		s.logger.Info("Dispatched event reminder",
			zap.String("event_id", ev.ID.String()),
			zap.Int("sent", report.Sent),
			zap.Int("failed", report.Failed),
		)
		dispatched++
	}
	return dispatched, nil
}

// validateParticipants rejects participant entries referencing missing users
// or departments before any transaction begins.
func (s *service) validateParticipants(ctx context.Context, participants ParticipantList) error {
	var userIDs, departmentIDs []uuid.UUID
	for _, p := range participants {
		switch p.Type {
		case ParticipantUser:
			userIDs = append(userIDs, p.ID)
		case ParticipantDepartment:
			departmentIDs = append(departmentIDs, p.ID)
		}
	}

	if len(userIDs) > 0 {
		users, err := s.directory.GetUsersByIDs(ctx, userIDs)
		if err != nil {
			return err
		}
		if len(users) != countDistinct(userIDs) {
			return ErrInvalidParticipant
		}
	}
	if len(departmentIDs) > 0 {
		departments, err := s.directory.GetDepartmentsByIDs(ctx, departmentIDs)
		if err != nil {
			return err
		}
		if len(departments) != countDistinct(departmentIDs) {
			return ErrInvalidParticipant
		}
	}
	return nil
}

func (s *service) resolveRelations(ctx context.Context, locationIDs, preparerIDs, attachmentIDs []uuid.UUID) ([]location.Location, []directory.Department, []attachment.Attachment, error) {
	locations, err := s.locations.GetByIDs(ctx, locationIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(locations) != countDistinct(locationIDs) {
		return nil, nil, nil, NewError("location reference does not exist")
	}

	preparers, err := s.directory.GetDepartmentsByIDs(ctx, preparerIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(preparers) != countDistinct(preparerIDs) {
		return nil, nil, nil, NewError("preparer department does not exist")
	}

	attachments, err := s.attachments.GetByIDs(ctx, attachmentIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(attachments) != countDistinct(attachmentIDs) {
		return nil, nil, nil, NewError("attachment reference does not exist")
	}

	return locations, preparers, attachments, nil
}

// audience derives the notification audience: creator, participant users, and
// every referenced department (participants and preparers alike).
func (s *service) audience(event *Event, actorID uuid.UUID) notification.Audience {
	audience := notification.Audience{
		CreatorID: event.CreatorID,
		ActorID:   actorID,
	}
	for _, p := range event.Participants {
		switch p.Type {
		case ParticipantUser:
			audience.UserIDs = append(audience.UserIDs, p.ID)
		case ParticipantDepartment:
			audience.DepartmentIDs = append(audience.DepartmentIDs, p.ID)
		}
	}
	for _, d := range event.Preparers {
		audience.DepartmentIDs = append(audience.DepartmentIDs, d.ID)
	}
	return audience
}

func summarize(event *Event) notification.EventSummary {
	return notification.EventSummary{
		ID:        event.ID,
		Title:     event.Title,
		StartTime: event.StartTime,
		EndTime:   event.EndTime,
	}
}

func toChangeRows(changes []Change) []notification.ChangeRow {
	rows := make([]notification.ChangeRow, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, notification.ChangeRow{
			Field: c.FieldName,
			Old:   c.OldValue,
			New:   c.NewValue,
		})
	}
	return rows
}

func countDistinct(ids []uuid.UUID) int {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}
