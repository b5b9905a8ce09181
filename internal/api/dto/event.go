package dto

import (
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/event"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/notification"
)

// EventResponse wraps a single event
type EventResponse struct {
	Event event.Event `json:"event"`
}

// EventMutationResponse is returned by update/approve: the committed event
// plus the dispatch report when notifications were attempted.
type EventMutationResponse struct {
	Event          event.Event          `json:"event"`
	Classification string               `json:"classification,omitempty"`
	Notifications  *notification.Report `json:"notifications,omitempty"`
}

// HistoryResponse lists an event's ledger rows in call order
type HistoryResponse struct {
	History []event.History `json:"history"`
}
