package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.ReporterID <= 0 {
		return apperrors.NewValidationError("reporter_id required", nil)
	}
	var priority domain.TicketPriority
	if req.Priority != "" {
		parsed, err := parsePriority(req.Priority)
		if err != nil {
			return err
		}
		priority = parsed
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), req.ReporterID, req.Description, priority)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListTickets GET /api/tickets, optionally filtered by reporter_id or assignee_id.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	reporterID, byReporter, err := queryID(c, "reporter_id")
	if err != nil {
		return err
	}
	assigneeID, byAssignee, err := queryID(c, "assignee_id")
	if err != nil {
		return err
	}
	if byReporter && byAssignee {
		return apperrors.NewValidationError("reporter_id and assignee_id are mutually exclusive", nil)
	}

	var tickets []domain.Ticket
	switch {
	case byReporter:
		tickets, err = h.service.ListByReporter(c.UserContext(), reporterID)
	case byAssignee:
		tickets, err = h.service.ListByAssignee(c.UserContext(), assigneeID)
	default:
		tickets, err = h.service.ListTickets(c.UserContext())
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ticket, found, err := h.service.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdateTicket PUT /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	input := service.TicketUpdateInput{
		Description:  req.Description,
		TechnicianID: req.TechnicianID,
	}
	if req.Priority != nil {
		priority, err := parsePriority(*req.Priority)
		if err != nil {
			return err
		}
		input.Priority = &priority
	}
	if req.Status != nil {
		status, err := parseStatus(*req.Status)
		if err != nil {
			return err
		}
		input.Status = &status
	}
	if input.TechnicianID != nil && *input.TechnicianID < 0 {
		return apperrors.NewValidationError("invalid technician_id", map[string]any{"technician_id": *input.TechnicianID})
	}

	ticket, err := h.service.UpdateTicket(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// AssignTechnician POST /api/tickets/:id/assign.
func (h *TicketsHandler) AssignTechnician(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.TechnicianID <= 0 {
		return apperrors.NewValidationError("technician_id required", nil)
	}
	ticket, err := h.service.AssignTechnician(c.UserContext(), id, req.TechnicianID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// DeleteTicket DELETE /api/tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	deleted, err := h.service.DeleteTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "deleted": deleted}})
}

// ReportByPriority GET /api/tickets/report/priority/:priority.
func (h *TicketsHandler) ReportByPriority(c *fiber.Ctx) error {
	priority, err := parsePriority(c.Params("priority"))
	if err != nil {
		return err
	}
	tickets, err := h.service.ReportByPriority(c.UserContext(), priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// ReportByStatus GET /api/tickets/report/status/:status.
func (h *TicketsHandler) ReportByStatus(c *fiber.Ctx) error {
	status, err := parseStatus(c.Params("status"))
	if err != nil {
		return err
	}
	tickets, err := h.service.ReportByStatus(c.UserContext(), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

func parsePriority(raw string) (domain.TicketPriority, error) {
	priority, err := domain.ParseTicketPriority(raw)
	if err != nil {
		return "", apperrors.NewValidationError(err.Error(), map[string]any{"priority": raw})
	}
	return priority, nil
}

func parseStatus(raw string) (domain.TicketStatus, error) {
	status, err := domain.ParseTicketStatus(raw)
	if err != nil {
		return "", apperrors.NewValidationError(err.Error(), map[string]any{"status": raw})
	}
	return status, nil
}
