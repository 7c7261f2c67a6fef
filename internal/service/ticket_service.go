package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// TicketService coordinates ticket workflows. It holds no per-request state.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// TicketUpdateInput describes a partial ticket update. Nil fields are left
// untouched. TechnicianID 0 clears the assignee; any other value assigns.
type TicketUpdateInput struct {
	Description  *string
	Priority     *domain.TicketPriority
	Status       *domain.TicketStatus
	TechnicianID *int64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket files a ticket for an existing, active reporter.
func (s *TicketService) CreateTicket(ctx context.Context, reporterID int64, description string, priority domain.TicketPriority) (*domain.Ticket, error) {
	if priority != "" && !priority.Valid() {
		return nil, fmt.Errorf("unknown ticket priority %q: %w", priority, domain.ErrInvalidValue)
	}
	reporter, err := s.users.GetByID(ctx, reporterID)
	if err != nil {
		return nil, err
	}
	if !reporter.Active {
		return nil, fmt.Errorf("reporter %d is inactive: %w", reporterID, domain.ErrInvalidState)
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("description must not be blank: %w", domain.ErrEmptyValue)
	}

	ticket := domain.NewTicket(reporterID, description, priority)
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			ReporterID: ticket.ReporterID,
			Priority:   ticket.Priority,
		},
	})
	return ticket, nil
}

// GetTicket returns the ticket, or found=false when it does not exist.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, bool, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return ticket, true, nil
}

// ListTickets returns every ticket in storage order.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets.GetAll(ctx)
}

// ListByReporter returns the tickets filed by a user.
func (s *TicketService) ListByReporter(ctx context.Context, reporterID int64) ([]domain.Ticket, error) {
	return s.tickets.GetByReporter(ctx, reporterID)
}

// ListByAssignee returns the tickets assigned to a technician.
func (s *TicketService) ListByAssignee(ctx context.Context, technicianID int64) ([]domain.Ticket, error) {
	return s.tickets.GetByAssignee(ctx, technicianID)
}

// AssignTechnician assigns an active, technician-capable user to a ticket.
func (s *TicketService) AssignTechnician(ctx context.Context, ticketID, technicianID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	technician, err := s.users.GetByID(ctx, technicianID)
	if err != nil {
		return nil, err
	}
	if !technician.IsTechnicianCapable() {
		return nil, fmt.Errorf("user %d is not a technician: %w", technicianID, domain.ErrInvalidRole)
	}
	if !technician.Active {
		return nil, fmt.Errorf("technician %d is inactive: %w", technicianID, domain.ErrInvalidState)
	}
	if err := ticket.AssignTechnician(technicianID); err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Payload: events.TicketAssignedPayload{
			AssigneeID: ticket.AssigneeID,
			Status:     ticket.Status,
		},
	})
	return ticket, nil
}

// UnassignTechnician clears the ticket's assignee.
func (s *TicketService) UnassignTechnician(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ticket.UnassignTechnician()
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUnassigned,
		TicketID: ticket.ID,
		Payload:  events.TicketAssignedPayload{Status: ticket.Status},
	})
	return ticket, nil
}

// UpdateTicketStatus applies a status change subject to the ticket state machine.
func (s *TicketService) UpdateTicketStatus(ctx context.Context, ticketID int64, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	oldStatus := ticket.Status
	if err := ticket.ChangeStatus(newStatus); err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

// UpdateTicketPriority changes ticket priority.
func (s *TicketService) UpdateTicketPriority(ctx context.Context, ticketID int64, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	oldPriority := ticket.Priority
	if err := ticket.ChangePriority(newPriority); err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketPriorityChanged,
		TicketID: ticket.ID,
		Payload: events.TicketPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: ticket.Priority,
		},
	})
	return ticket, nil
}

// UpdateTicketDescription replaces the description with its trimmed form.
func (s *TicketService) UpdateTicketDescription(ctx context.Context, ticketID int64, description string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := ticket.UpdateDescription(description); err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDescriptionChanged,
		TicketID: ticket.ID,
	})
	return ticket, nil
}

// UpdateTicket applies description, priority, status and technician changes
// in that order. Each step is persisted on its own; the first failure stops
// the sequence and earlier steps stay applied.
func (s *TicketService) UpdateTicket(ctx context.Context, ticketID int64, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if input.Description != nil {
		if ticket, err = s.UpdateTicketDescription(ctx, ticketID, *input.Description); err != nil {
			return nil, err
		}
	}
	if input.Priority != nil {
		if ticket, err = s.UpdateTicketPriority(ctx, ticketID, *input.Priority); err != nil {
			return nil, err
		}
	}
	if input.Status != nil {
		if ticket, err = s.UpdateTicketStatus(ctx, ticketID, *input.Status); err != nil {
			return nil, err
		}
	}
	if input.TechnicianID != nil {
		if *input.TechnicianID == 0 {
			ticket, err = s.UnassignTechnician(ctx, ticketID)
		} else {
			ticket, err = s.AssignTechnician(ctx, ticketID, *input.TechnicianID)
		}
		if err != nil {
			return nil, err
		}
	}
	return ticket, nil
}

// ReportByPriority returns all tickets with the given priority.
func (s *TicketService) ReportByPriority(ctx context.Context, priority domain.TicketPriority) ([]domain.Ticket, error) {
	return s.tickets.GetByPriority(ctx, priority)
}

// ReportByStatus returns all tickets with the given status.
func (s *TicketService) ReportByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	return s.tickets.GetByStatus(ctx, status)
}

// DeleteTicket removes an existing ticket and reports whether storage deleted it.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID int64) (bool, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return false, err
	}
	deleted, err := s.tickets.Delete(ctx, ticketID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.publishEvent(ctx, events.Event{Type: events.EventTicketDeleted, TicketID: ticketID})
	}
	return deleted, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, event)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}
