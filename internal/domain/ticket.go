package domain

import (
	"fmt"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketPriority enumerates ticket urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// Valid reports whether s is one of the declared statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// Valid reports whether p is one of the declared priorities.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// ParseTicketStatus converts a case-insensitive name into a TicketStatus.
func ParseTicketStatus(s string) (TicketStatus, error) {
	if status := TicketStatus(strings.ToUpper(strings.TrimSpace(s))); status.Valid() {
		return status, nil
	}
	return "", fmt.Errorf("unknown ticket status %q: %w", s, ErrInvalidValue)
}

// ParseTicketPriority converts a case-insensitive name into a TicketPriority.
func ParseTicketPriority(s string) (TicketPriority, error) {
	if priority := TicketPriority(strings.ToUpper(strings.TrimSpace(s))); priority.Valid() {
		return priority, nil
	}
	return "", fmt.Errorf("unknown ticket priority %q: %w", s, ErrInvalidValue)
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          int64
	ReporterID  int64
	AssigneeID  *int64
	Description string
	Priority    TicketPriority
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTicket builds an unsaved OPEN ticket. An empty priority defaults to MEDIUM.
func NewTicket(reporterID int64, description string, priority TicketPriority) *Ticket {
	if priority == "" {
		priority = TicketPriorityMedium
	}
	now := time.Now()
	return &Ticket{
		ReporterID:  reporterID,
		Description: strings.TrimSpace(description),
		Priority:    priority,
		Status:      TicketStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AssignTechnician sets the assignee and moves an OPEN ticket to IN_PROGRESS.
func (t *Ticket) AssignTechnician(technicianID int64) error {
	if t.Status == TicketStatusClosed {
		return fmt.Errorf("cannot assign a technician to a closed ticket: %w", ErrInvalidTransition)
	}
	t.AssigneeID = &technicianID
	if t.Status == TicketStatusOpen {
		t.Status = TicketStatusInProgress
	}
	t.touch()
	return nil
}

// UnassignTechnician clears the assignee without touching the status.
func (t *Ticket) UnassignTechnician() {
	t.AssigneeID = nil
	t.touch()
}

// ChangeStatus sets the status. Only OPEN -> CLOSED is rejected; a ticket
// must go through IN_PROGRESS before it can be closed.
func (t *Ticket) ChangeStatus(newStatus TicketStatus) error {
	if !newStatus.Valid() {
		return fmt.Errorf("unknown ticket status %q: %w", newStatus, ErrInvalidValue)
	}
	if newStatus == TicketStatusClosed && t.Status == TicketStatusOpen {
		return fmt.Errorf("cannot close a ticket that is not in progress: %w", ErrInvalidTransition)
	}
	t.Status = newStatus
	t.touch()
	return nil
}

// ChangePriority sets the priority.
func (t *Ticket) ChangePriority(newPriority TicketPriority) error {
	if !newPriority.Valid() {
		return fmt.Errorf("unknown ticket priority %q: %w", newPriority, ErrInvalidValue)
	}
	t.Priority = newPriority
	t.touch()
	return nil
}

// UpdateDescription stores the trimmed description.
func (t *Ticket) UpdateDescription(description string) error {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return fmt.Errorf("description must not be blank: %w", ErrEmptyValue)
	}
	t.Description = trimmed
	t.touch()
	return nil
}

func (t *Ticket) touch() {
	t.UpdatedAt = time.Now()
}
