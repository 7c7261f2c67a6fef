package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	ReporterID  int64  `json:"reporter_id"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// UpdateTicketRequest payload. Omitted fields stay unchanged; technician_id 0
// removes the assignee.
type UpdateTicketRequest struct {
	Description  *string `json:"description"`
	Priority     *string `json:"priority"`
	Status       *string `json:"status"`
	TechnicianID *int64  `json:"technician_id"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	TechnicianID int64 `json:"technician_id"`
}

// TicketResponse represents a ticket.
type TicketResponse struct {
	ID          int64                 `json:"id"`
	ReporterID  int64                 `json:"reporter_id"`
	AssigneeID  *int64                `json:"assignee_id"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		ReporterID:  ticket.ReporterID,
		AssigneeID:  ticket.AssigneeID,
		Description: ticket.Description,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

// NewTicketResponses maps a ticket list, never returning nil.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}
