package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

type backend struct {
	name    string
	tickets TicketRepository
	users   UserRepository
}

func backends(t *testing.T) []backend {
	t.Helper()
	store := NewMemoryStore()

	db, err := persistence.NewSQLite(context.Background(), config.SQLiteConfig{Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return []backend{
		{name: "memory", tickets: store.Tickets(), users: store.Users()},
		{name: "sqlite", tickets: NewSQLiteTicketRepository(db.DB), users: NewSQLiteUserRepository(db.DB)},
	}
}

func mustCreateUser(t *testing.T, repo UserRepository, name string, role domain.UserRole) *domain.User {
	t.Helper()
	user := domain.NewUser(name, name+"@example.com", "secret", role)
	require.NoError(t, repo.Create(context.Background(), user))
	require.NotZero(t, user.ID)
	return user
}

func TestTicketRepositoryContract(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			reporter := mustCreateUser(t, b.users, "alice", domain.UserRoleUser)
			tech := mustCreateUser(t, b.users, "tina", domain.UserRoleTechnician)

			first := domain.NewTicket(reporter.ID, "printer jammed", domain.TicketPriorityHigh)
			require.NoError(t, b.tickets.Create(ctx, first))
			second := domain.NewTicket(reporter.ID, "no wifi", domain.TicketPriorityLow)
			require.NoError(t, b.tickets.Create(ctx, second))
			assert.Greater(t, second.ID, first.ID)

			orphan := domain.NewTicket(999, "nobody", domain.TicketPriorityLow)
			assert.ErrorIs(t, b.tickets.Create(ctx, orphan), domain.ErrNotFound)

			require.NoError(t, first.AssignTechnician(tech.ID))
			require.NoError(t, b.tickets.Update(ctx, first))

			stored, err := b.tickets.GetByID(ctx, first.ID)
			require.NoError(t, err)
			require.NotNil(t, stored.AssigneeID)
			assert.Equal(t, tech.ID, *stored.AssigneeID)
			assert.Equal(t, domain.TicketStatusInProgress, stored.Status)
			assert.Equal(t, "printer jammed", stored.Description)

			all, err := b.tickets.GetAll(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, first.ID, all[0].ID)

			byAssignee, err := b.tickets.GetByAssignee(ctx, tech.ID)
			require.NoError(t, err)
			assert.Len(t, byAssignee, 1)

			byPriority, err := b.tickets.GetByPriority(ctx, domain.TicketPriorityLow)
			require.NoError(t, err)
			require.Len(t, byPriority, 1)
			assert.Equal(t, second.ID, byPriority[0].ID)

			byStatus, err := b.tickets.GetByStatus(ctx, domain.TicketStatusOpen)
			require.NoError(t, err)
			assert.Len(t, byStatus, 1)

			byReporter, err := b.tickets.GetByReporter(ctx, reporter.ID)
			require.NoError(t, err)
			assert.Len(t, byReporter, 2)

			deleted, err := b.tickets.Delete(ctx, second.ID)
			require.NoError(t, err)
			assert.True(t, deleted)
			deleted, err = b.tickets.Delete(ctx, second.ID)
			require.NoError(t, err)
			assert.False(t, deleted)

			_, err = b.tickets.GetByID(ctx, second.ID)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestUserRepositoryContract(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			alice := mustCreateUser(t, b.users, "alice", domain.UserRoleUser)
			mustCreateUser(t, b.users, "tina", domain.UserRoleTechnician)
			mustCreateUser(t, b.users, "root", domain.UserRoleAdmin)

			dup := domain.NewUser("other", "alice@example.com", "x", domain.UserRoleUser)
			assert.ErrorIs(t, b.users.Create(ctx, dup), domain.ErrConflict)

			found, err := b.users.GetByEmail(ctx, "alice@example.com")
			require.NoError(t, err)
			assert.Equal(t, alice.ID, found.ID)
			_, err = b.users.GetByEmail(ctx, "nobody@example.com")
			assert.ErrorIs(t, err, domain.ErrNotFound)

			techs, err := b.users.GetTechnicians(ctx)
			require.NoError(t, err)
			require.Len(t, techs, 2)
			assert.Equal(t, domain.UserRoleTechnician, techs[0].Role)
			assert.Equal(t, domain.UserRoleAdmin, techs[1].Role)

			alice.Deactivate()
			alice.Email = "tina@example.com"
			assert.ErrorIs(t, b.users.Update(ctx, alice), domain.ErrConflict)
			alice.Email = "alice@example.com"
			require.NoError(t, b.users.Update(ctx, alice))

			stored, err := b.users.GetByID(ctx, alice.ID)
			require.NoError(t, err)
			assert.False(t, stored.Active)

			ghost := domain.NewUser("ghost", "ghost@example.com", "x", domain.UserRoleUser)
			ghost.ID = 999
			assert.ErrorIs(t, b.users.Update(ctx, ghost), domain.ErrNotFound)
		})
	}
}

func TestUserDeleteCascades(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			reporter := mustCreateUser(t, b.users, "alice", domain.UserRoleUser)
			other := mustCreateUser(t, b.users, "bob", domain.UserRoleUser)
			tech := mustCreateUser(t, b.users, "tina", domain.UserRoleTechnician)

			reported := domain.NewTicket(reporter.ID, "alice's", domain.TicketPriorityLow)
			require.NoError(t, b.tickets.Create(ctx, reported))
			assigned := domain.NewTicket(other.ID, "bob's", domain.TicketPriorityLow)
			require.NoError(t, b.tickets.Create(ctx, assigned))
			require.NoError(t, assigned.AssignTechnician(tech.ID))
			require.NoError(t, b.tickets.Update(ctx, assigned))

			deleted, err := b.users.Delete(ctx, reporter.ID)
			require.NoError(t, err)
			assert.True(t, deleted)
			_, err = b.tickets.GetByID(ctx, reported.ID)
			assert.ErrorIs(t, err, domain.ErrNotFound)

			_, err = b.users.Delete(ctx, tech.ID)
			require.NoError(t, err)
			stored, err := b.tickets.GetByID(ctx, assigned.ID)
			require.NoError(t, err)
			assert.Nil(t, stored.AssigneeID)

			deleted, err = b.users.Delete(ctx, 999)
			require.NoError(t, err)
			assert.False(t, deleted)
		})
	}
}

func TestRepositoriesRejectUndeclaredEnums(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			reporter := mustCreateUser(t, b.users, "alice", domain.UserRoleUser)

			bad := domain.NewTicket(reporter.ID, "x", domain.TicketPriority("URGENT"))
			assert.ErrorIs(t, b.tickets.Create(ctx, bad), domain.ErrInvalidValue)

			ticket := domain.NewTicket(reporter.ID, "x", domain.TicketPriorityLow)
			require.NoError(t, b.tickets.Create(ctx, ticket))
			ticket.Status = domain.TicketStatus("BOGUS")
			assert.ErrorIs(t, b.tickets.Update(ctx, ticket), domain.ErrInvalidValue)

			user := domain.NewUser("eve", "eve@example.com", "x", domain.UserRole("SUPERUSER"))
			assert.ErrorIs(t, b.users.Create(ctx, user), domain.ErrInvalidValue)

			all, err := b.tickets.GetAll(ctx)
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, domain.TicketStatusOpen, all[0].Status)
		})
	}
}

func TestRowMappingRejectsUnknownEnums(t *testing.T) {
	_, err := ticketRow{ID: 1, ReporterID: 1, Description: "x", Priority: "URGENT", Status: "OPEN"}.toDomain()
	assert.Error(t, err)

	_, err = ticketRow{ID: 1, ReporterID: 1, Description: "x", Priority: "high", Status: "OPEN"}.toDomain()
	assert.Error(t, err)

	_, err = userRow{ID: 1, Role: "SUPERUSER"}.toDomain()
	assert.Error(t, err)

	ticket, err := ticketRow{ID: 1, ReporterID: 1, Description: "x", Priority: "HIGH", Status: "CLOSED"}.toDomain()
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, ticket.Status)
}
