package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.userSvc.CreateUser(ctx, UserCreateInput{Name: " Alice ", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, domain.UserRoleUser, user.Role)
	assert.True(t, user.Active)
	assert.Equal(t, events.EventUserCreated, f.lastEvent(t).Type)

	_, err = f.userSvc.CreateUser(ctx, UserCreateInput{Name: "Other", Email: "alice@example.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.userSvc.CreateUser(ctx, UserCreateInput{Name: "", Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmptyValue)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice", domain.UserRoleUser)
	bob := f.user(t, "bob", domain.UserRoleUser)

	role := domain.UserRoleTechnician
	name := "Alice Smith"
	updated, err := f.userSvc.UpdateUser(ctx, alice.ID, UserUpdateInput{Name: &name, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", updated.Name)
	assert.Equal(t, domain.UserRoleTechnician, updated.Role)
	assert.Equal(t, "alice@example.com", updated.Email)

	same := alice.Email
	_, err = f.userSvc.UpdateUser(ctx, alice.ID, UserUpdateInput{Email: &same})
	require.NoError(t, err)

	taken := bob.Email
	_, err = f.userSvc.UpdateUser(ctx, alice.ID, UserUpdateInput{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.userSvc.UpdateUser(ctx, 999, UserUpdateInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	techs, err := f.userSvc.ListTechnicians(ctx)
	require.NoError(t, err)
	require.Len(t, techs, 1)
	assert.Equal(t, alice.ID, techs[0].ID)
}

func TestActivateDeactivateUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice", domain.UserRoleUser)

	user, err := f.userSvc.DeactivateUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, user.Active)

	stored, found, err := f.userSvc.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, stored.Active)

	user, err = f.userSvc.ActivateUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, user.Active)

	_, err = f.userSvc.ActivateUser(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice", domain.UserRoleUser)
	bob := f.user(t, "bob", domain.UserRoleUser)
	tech := f.user(t, "tina", domain.UserRoleTechnician)

	reported, err := f.ticketSvc.CreateTicket(ctx, alice.ID, "alice's ticket", domain.TicketPriorityLow)
	require.NoError(t, err)
	other, err := f.ticketSvc.CreateTicket(ctx, bob.ID, "bob's ticket", domain.TicketPriorityLow)
	require.NoError(t, err)
	_, err = f.ticketSvc.AssignTechnician(ctx, other.ID, tech.ID)
	require.NoError(t, err)

	deleted, err := f.userSvc.DeleteUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, found, err := f.ticketSvc.GetTicket(ctx, reported.ID)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = f.userSvc.DeleteUser(ctx, tech.ID)
	require.NoError(t, err)
	stored, found, err := f.ticketSvc.GetTicket(ctx, other.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, stored.AssigneeID)

	_, err = f.userSvc.DeleteUser(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	users, err := f.userSvc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserServiceRejectsUndeclaredRoles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.userSvc.CreateUser(ctx, UserCreateInput{Name: "eve", Email: "eve@example.com", Role: domain.UserRole("SUPERUSER")})
	assert.ErrorIs(t, err, domain.ErrInvalidValue)

	alice := f.user(t, "alice", domain.UserRoleUser)
	role := domain.UserRole("root")
	_, err = f.userSvc.UpdateUser(ctx, alice.ID, UserUpdateInput{Role: &role})
	assert.ErrorIs(t, err, domain.ErrInvalidValue)

	stored, found, err := f.userSvc.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.UserRoleUser, stored.Role)

	users, err := f.userSvc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
