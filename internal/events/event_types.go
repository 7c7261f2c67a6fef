package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated            EventType = "ticket_created"
	EventTicketStatusChanged      EventType = "ticket_status_changed"
	EventTicketPriorityChanged    EventType = "ticket_priority_changed"
	EventTicketDescriptionChanged EventType = "ticket_description_changed"
	EventTicketAssigned           EventType = "ticket_assigned"
	EventTicketUnassigned         EventType = "ticket_unassigned"
	EventTicketDeleted            EventType = "ticket_deleted"
	EventUserCreated              EventType = "user_created"
	EventUserUpdated              EventType = "user_updated"
	EventUserDeleted              EventType = "user_deleted"
)

// AllEventTypes lists every event the services publish.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketStatusChanged,
	EventTicketPriorityChanged,
	EventTicketDescriptionChanged,
	EventTicketAssigned,
	EventTicketUnassigned,
	EventTicketDeleted,
	EventUserCreated,
	EventUserUpdated,
	EventUserDeleted,
}

// Event represents a domain event emitted by services after a successful write.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id,omitempty"`
	UserID    int64       `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ReporterID int64                 `json:"reporter_id"`
	Priority   domain.TicketPriority `json:"priority"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID *int64              `json:"assignee_id,omitempty"`
	Status     domain.TicketStatus `json:"status"`
}
