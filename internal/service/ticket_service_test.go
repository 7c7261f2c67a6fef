package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

func TestCreateTicket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reporter := f.user(t, "alice", domain.UserRoleUser)

	ticket, err := f.ticketSvc.CreateTicket(ctx, reporter.ID, "  printer jammed again  ", domain.TicketPriorityHigh)
	require.NoError(t, err)
	assert.NotZero(t, ticket.ID)
	assert.Equal(t, "printer jammed again", ticket.Description)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityHigh, ticket.Priority)
	assert.Nil(t, ticket.AssigneeID)

	stored, found, err := f.ticketSvc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "printer jammed again", stored.Description)

	event := f.lastEvent(t)
	assert.Equal(t, events.EventTicketCreated, event.Type)
	assert.Equal(t, ticket.ID, event.TicketID)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestCreateTicketRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reporter := f.user(t, "alice", domain.UserRoleUser)
	inactive := f.user(t, "bob", domain.UserRoleUser)
	_, err := f.userSvc.DeactivateUser(ctx, inactive.ID)
	require.NoError(t, err)

	_, err = f.ticketSvc.CreateTicket(ctx, 999, "broken", domain.TicketPriorityLow)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.ticketSvc.CreateTicket(ctx, inactive.ID, "broken", domain.TicketPriorityLow)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.ticketSvc.CreateTicket(ctx, reporter.ID, "   ", domain.TicketPriorityLow)
	assert.ErrorIs(t, err, domain.ErrEmptyValue)

	all, err := f.ticketSvc.ListTickets(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetTicketAbsent(t *testing.T) {
	f := newFixture(t)
	ticket, found, err := f.ticketSvc.GetTicket(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, ticket)
}

func TestAssignThenClose(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reporter := f.user(t, "alice", domain.UserRoleUser)
	tech := f.user(t, "tina", domain.UserRoleTechnician)

	ticket, err := f.ticketSvc.CreateTicket(ctx, reporter.ID, "printer jammed again", domain.TicketPriorityHigh)
	require.NoError(t, err)

	_, err = f.ticketSvc.UpdateTicketStatus(ctx, ticket.ID, domain.TicketStatusClosed)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assigned, err := f.ticketSvc.AssignTechnician(ctx, ticket.ID, tech.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssigneeID)
	assert.Equal(t, tech.ID, *assigned.AssigneeID)
	assert.Equal(t, domain.TicketStatusInProgress, assigned.Status)
	assert.Equal(t, events.EventTicketAssigned, f.lastEvent(t).Type)

	closed, err := f.ticketSvc.UpdateTicketStatus(ctx, ticket.ID, domain.TicketStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)

	payload, ok := f.lastEvent(t).Payload.(events.TicketStatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.TicketStatusInProgress, payload.OldStatus)
	assert.Equal(t, domain.TicketStatusClosed, payload.NewStatus)

	_, err = f.ticketSvc.AssignTechnician(ctx, ticket.ID, tech.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	byAssignee, err := f.ticketSvc.ListByAssignee(ctx, tech.ID)
	require.NoError(t, err)
	require.Len(t, byAssignee, 1)
	assert.Equal(t, domain.TicketStatusClosed, byAssignee[0].Status)
}

func TestAssignTechnicianRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reporter := f.user(t, "alice", domain.UserRoleUser)
	tech := f.user(t, "tina", domain.UserRoleTechnician)
	_, err := f.userSvc.DeactivateUser(ctx, tech.ID)
	require.NoError(t, err)

	ticket, err := f.ticketSvc.CreateTicket(ctx, reporter.ID, "vpn down", domain.TicketPriorityCritical)
	require.NoError(t, err)

	tests := []struct {
		name         string
		ticketID     int64
		technicianID int64
		want         error
	}{
		{name: "missing ticket", ticketID: 999, technicianID: tech.ID, want: domain.ErrNotFound},
		{name: "missing technician", ticketID: ticket.ID, technicianID: 999, want: domain.ErrNotFound},
		{name: "plain user", ticketID: ticket.ID, technicianID: reporter.ID, want: domain.ErrInvalidRole},
		{name: "inactive technician", ticketID: ticket.ID, technicianID: tech.ID, want: domain.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ticketSvc.AssignTechnician(ctx, tt.ticketID, tt.technicianID)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	stored, found, err := f.ticketSvc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, stored.AssigneeID)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
}

func TestAdminCanBeAssigned(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reporter := f.user(t, "alice", domain.UserRoleUser)
	admin := f.user(t, "root", domain.UserRoleAdmin)

	ticket, err := f.ticketSvc.CreateTicket(ctx, reporter.ID, "disk full", domain.TicketPriorityMedium)
	require.NoError(t, err)
	_, err = f.ticketSvc.AssignTechnician(ctx, ticket.ID, admin.ID)
	require.NoError(t, err)
}

func TestUpdatePriorityAndDescription(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reporter := f.user(t, "alice", domain.UserRoleUser)
	ticket, err := f.ticketSvc.CreateTicket(ctx, reporter.ID, "slow wifi", domain.TicketPriorityLow)
	require.NoError(t, err)

	updated, err := f.ticketSvc.UpdateTicketPriority(ctx, ticket.ID, domain.TicketPriorityCritical)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityCritical, updated.Priority)

	updated, err = f.ticketSvc.UpdateTicketDescription(ctx, ticket.ID, "  no wifi at all ")
	require.NoError(t, err)
	assert.Equal(t, "no wifi at all", updated.Description)

	_, err = f.ticketSvc.UpdateTicketDescription(ctx, ticket.ID, " ")
	assert.ErrorIs(t, err, domain.ErrEmptyValue)

	_, err = f.ticketSvc.UpdateTicketPriority(ctx, 999, domain.TicketPriorityLow)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	critical, err := f.ticketSvc.ReportByPriority(ctx, domain.TicketPriorityCritical)
	require.NoError(t, err)
	assert.Len(t, critical, 1)

	open, err := f.ticketSvc.ReportByStatus(ctx, domain.TicketStatusOpen)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestUpdateTicketComposite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reporter := f.user(t, "alice", domain.UserRoleUser)
	tech := f.user(t, "tina", domain.UserRoleTechnician)
	ticket, err := f.ticketSvc.CreateTicket(ctx, reporter.ID, "monitor flicker", domain.TicketPriorityLow)
	require.NoError(t, err)

	description := "monitor flickers at startup"
	priority := domain.TicketPriorityHigh
	techID := tech.ID
	updated, err := f.ticketSvc.UpdateTicket(ctx, ticket.ID, TicketUpdateInput{
		Description:  &description,
		Priority:     &priority,
		TechnicianID: &techID,
	})
	require.NoError(t, err)
	assert.Equal(t, description, updated.Description)
	assert.Equal(t, domain.TicketPriorityHigh, updated.Priority)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	require.NotNil(t, updated.AssigneeID)

	unassign := int64(0)
	updated, err = f.ticketSvc.UpdateTicket(ctx, ticket.ID, TicketUpdateInput{TechnicianID: &unassign})
	require.NoError(t, err)
	assert.Nil(t, updated.AssigneeID)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	assert.Equal(t, events.EventTicketUnassigned, f.lastEvent(t).Type)
}

func TestUpdateTicketStopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reporter := f.user(t, "alice", domain.UserRoleUser)
	ticket, err := f.ticketSvc.CreateTicket(ctx, reporter.ID, "keyboard", domain.TicketPriorityLow)
	require.NoError(t, err)

	priority := domain.TicketPriorityHigh
	status := domain.TicketStatusClosed
	techID := reporter.ID
	_, err = f.ticketSvc.UpdateTicket(ctx, ticket.ID, TicketUpdateInput{
		Priority:     &priority,
		Status:       &status,
		TechnicianID: &techID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored, _, err := f.ticketSvc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityHigh, stored.Priority)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	assert.Nil(t, stored.AssigneeID)

	_, err = f.ticketSvc.UpdateTicket(ctx, 999, TicketUpdateInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteTicket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reporter := f.user(t, "alice", domain.UserRoleUser)
	ticket, err := f.ticketSvc.CreateTicket(ctx, reporter.ID, "mouse", domain.TicketPriorityLow)
	require.NoError(t, err)

	_, err = f.ticketSvc.DeleteTicket(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, f.tickets.deletes)

	deleted, err := f.ticketSvc.DeleteTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 1, f.tickets.deletes)
	assert.Equal(t, events.EventTicketDeleted, f.lastEvent(t).Type)

	_, found, err := f.ticketSvc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestListByReporter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice", domain.UserRoleUser)
	bob := f.user(t, "bob", domain.UserRoleUser)

	for _, desc := range []string{"one", "two"} {
		_, err := f.ticketSvc.CreateTicket(ctx, alice.ID, desc, "")
		require.NoError(t, err)
	}
	_, err := f.ticketSvc.CreateTicket(ctx, bob.ID, "three", "")
	require.NoError(t, err)

	mine, err := f.ticketSvc.ListByReporter(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "one", mine[0].Description)
	assert.Equal(t, domain.TicketPriorityMedium, mine[0].Priority)

	all, err := f.ticketSvc.ListTickets(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTicketServiceRejectsUndeclaredEnums(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reporter := f.user(t, "alice", domain.UserRoleUser)

	_, err := f.ticketSvc.CreateTicket(ctx, reporter.ID, "x", domain.TicketPriority("URGENT"))
	assert.ErrorIs(t, err, domain.ErrInvalidValue)

	ticket, err := f.ticketSvc.CreateTicket(ctx, reporter.ID, "x", domain.TicketPriorityLow)
	require.NoError(t, err)

	_, err = f.ticketSvc.UpdateTicketStatus(ctx, ticket.ID, domain.TicketStatus("BOGUS"))
	assert.ErrorIs(t, err, domain.ErrInvalidValue)
	_, err = f.ticketSvc.UpdateTicketPriority(ctx, ticket.ID, domain.TicketPriority("URGENT"))
	assert.ErrorIs(t, err, domain.ErrInvalidValue)

	all, err := f.ticketSvc.ListTickets(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.TicketPriorityLow, all[0].Priority)
	assert.Equal(t, domain.TicketStatusOpen, all[0].Status)
}
