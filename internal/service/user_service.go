package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// UserService manages reporters and technicians.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// UserDependencies bundles what the user service needs.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// UserCreateInput carries the fields of a new user.
type UserCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.UserRole
}

// UserUpdateInput describes a partial user update.
type UserUpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *domain.UserRole
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateUser registers a user. Email addresses are unique.
func (s *UserService) CreateUser(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" {
		return nil, fmt.Errorf("name must not be blank: %w", domain.ErrEmptyValue)
	}
	if email == "" {
		return nil, fmt.Errorf("email must not be blank: %w", domain.ErrEmptyValue)
	}
	if input.Role != "" && !input.Role.Valid() {
		return nil, fmt.Errorf("unknown user role %q: %w", input.Role, domain.ErrInvalidValue)
	}
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	user := domain.NewUser(name, email, input.Password, input.Role)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.EventUserCreated, user.ID)
	return user, nil
}

// GetUser returns the user, or found=false when it does not exist.
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, bool, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return user, true, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.GetAll(ctx)
}

// ListTechnicians returns users that may be assigned tickets.
func (s *UserService) ListTechnicians(ctx context.Context) ([]domain.User, error) {
	return s.users.GetTechnicians(ctx)
}

// UpdateUser applies the non-nil fields of input.
func (s *UserService) UpdateUser(ctx context.Context, id int64, input UserUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("name must not be blank: %w", domain.ErrEmptyValue)
		}
		user.Name = name
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			return nil, fmt.Errorf("email must not be blank: %w", domain.ErrEmptyValue)
		}
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
		}
		user.Email = email
	}
	if input.Password != nil {
		user.Password = *input.Password
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, fmt.Errorf("unknown user role %q: %w", *input.Role, domain.ErrInvalidValue)
		}
		user.Role = *input.Role
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.EventUserUpdated, user.ID)
	return user, nil
}

func (s *UserService) ActivateUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.toggle(ctx, id, (*domain.User).Activate)
}

func (s *UserService) DeactivateUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.toggle(ctx, id, (*domain.User).Deactivate)
}

// DeleteUser removes a user. Storage cascades to their reported tickets and
// clears their assignments.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (bool, error) {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return false, err
	}
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.publishEvent(ctx, events.EventUserDeleted, id)
	}
	return deleted, nil
}

func (s *UserService) toggle(ctx context.Context, id int64, apply func(*domain.User)) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(user)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.EventUserUpdated, user.ID)
	return user, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, ownerID int64) error {
	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != ownerID:
		return fmt.Errorf("email %q already registered: %w", email, domain.ErrConflict)
	}
	return nil
}

func (s *UserService) publishEvent(ctx context.Context, eventType events.EventType, userID int64) {
	publish(ctx, s.dispatcher, events.Event{Type: eventType, UserID: userID})
}
