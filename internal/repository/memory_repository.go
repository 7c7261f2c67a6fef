package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// MemoryStore keeps users and tickets in process memory. It mirrors the
// relational schema: deleting a user removes the tickets they reported and
// clears their assignments.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[int64]domain.User
	tickets      map[int64]domain.Ticket
	nextUserID   int64
	nextTicketID int64
}

// NewMemoryStore creates an empty store. Ids start at 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[int64]domain.User),
		tickets:      make(map[int64]domain.Ticket),
		nextUserID:   1,
		nextTicketID: 1,
	}
}

// Tickets returns a TicketRepository backed by the store.
func (s *MemoryStore) Tickets() TicketRepository {
	return &memoryTicketRepository{store: s}
}

// Users returns a UserRepository backed by the store.
func (s *MemoryStore) Users() UserRepository {
	return &memoryUserRepository{store: s}
}

type memoryTicketRepository struct {
	store *MemoryStore
}

func (r *memoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkTicketEnums(ticket); err != nil {
		return err
	}
	if _, ok := s.users[ticket.ReporterID]; !ok {
		return fmt.Errorf("reporter %d: %w", ticket.ReporterID, domain.ErrNotFound)
	}
	ticket.ID = s.nextTicketID
	s.nextTicketID++
	s.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *memoryTicketRepository) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return nil, fmt.Errorf("ticket %d: %w", id, domain.ErrNotFound)
	}
	cp := cloneTicket(ticket)
	return &cp, nil
}

func (r *memoryTicketRepository) GetAll(_ context.Context) ([]domain.Ticket, error) {
	return r.filter(func(domain.Ticket) bool { return true }), nil
}

func (r *memoryTicketRepository) GetByReporter(_ context.Context, reporterID int64) ([]domain.Ticket, error) {
	return r.filter(func(t domain.Ticket) bool { return t.ReporterID == reporterID }), nil
}

func (r *memoryTicketRepository) GetByAssignee(_ context.Context, assigneeID int64) ([]domain.Ticket, error) {
	return r.filter(func(t domain.Ticket) bool {
		return t.AssigneeID != nil && *t.AssigneeID == assigneeID
	}), nil
}

func (r *memoryTicketRepository) GetByPriority(_ context.Context, priority domain.TicketPriority) ([]domain.Ticket, error) {
	return r.filter(func(t domain.Ticket) bool { return t.Priority == priority }), nil
}

func (r *memoryTicketRepository) GetByStatus(_ context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	return r.filter(func(t domain.Ticket) bool { return t.Status == status }), nil
}

func (r *memoryTicketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[ticket.ID]; !ok {
		return fmt.Errorf("ticket %d: %w", ticket.ID, domain.ErrNotFound)
	}
	if err := checkTicketEnums(ticket); err != nil {
		return err
	}
	if ticket.AssigneeID != nil {
		if _, ok := s.users[*ticket.AssigneeID]; !ok {
			return fmt.Errorf("assignee %d: %w", *ticket.AssigneeID, domain.ErrNotFound)
		}
	}
	s.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *memoryTicketRepository) Delete(_ context.Context, id int64) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[id]; !ok {
		return false, nil
	}
	delete(s.tickets, id)
	return true, nil
}

func (r *memoryTicketRepository) filter(match func(domain.Ticket) bool) []domain.Ticket {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.Ticket{}
	for _, ticket := range s.tickets {
		if match(ticket) {
			result = append(result, cloneTicket(ticket))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// checkTicketEnums mirrors the CHECK constraints of the SQL schemas.
func checkTicketEnums(ticket *domain.Ticket) error {
	if !ticket.Priority.Valid() {
		return fmt.Errorf("priority %q: %w", ticket.Priority, domain.ErrInvalidValue)
	}
	if !ticket.Status.Valid() {
		return fmt.Errorf("status %q: %w", ticket.Status, domain.ErrInvalidValue)
	}
	return nil
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		t.AssigneeID = &id
	}
	return t
}

type memoryUserRepository struct {
	store *MemoryStore
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if !user.Role.Valid() {
		return fmt.Errorf("role %q: %w", user.Role, domain.ErrInvalidValue)
	}
	if s.emailTaken(user.Email, 0) {
		return fmt.Errorf("email %q: %w", user.Email, domain.ErrConflict)
	}
	user.ID = s.nextUserID
	s.nextUserID++
	s.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return &user, nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
}

func (r *memoryUserRepository) GetAll(_ context.Context) ([]domain.User, error) {
	return r.filter(func(domain.User) bool { return true }), nil
}

func (r *memoryUserRepository) GetTechnicians(_ context.Context) ([]domain.User, error) {
	return r.filter(func(u domain.User) bool { return u.IsTechnicianCapable() }), nil
}

func (r *memoryUserRepository) Update(_ context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return fmt.Errorf("user %d: %w", user.ID, domain.ErrNotFound)
	}
	if !user.Role.Valid() {
		return fmt.Errorf("role %q: %w", user.Role, domain.ErrInvalidValue)
	}
	if s.emailTaken(user.Email, user.ID) {
		return fmt.Errorf("email %q: %w", user.Email, domain.ErrConflict)
	}
	s.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) Delete(_ context.Context, id int64) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	for ticketID, ticket := range s.tickets {
		switch {
		case ticket.ReporterID == id:
			delete(s.tickets, ticketID)
		case ticket.AssigneeID != nil && *ticket.AssigneeID == id:
			ticket.AssigneeID = nil
			s.tickets[ticketID] = ticket
		}
	}
	return true, nil
}

func (r *memoryUserRepository) filter(match func(domain.User) bool) []domain.User {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.User{}
	for _, user := range s.users {
		if match(user) {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// emailTaken must be called with s.mu held.
func (s *MemoryStore) emailTaken(email string, exceptID int64) bool {
	for id, user := range s.users {
		if id != exceptID && user.Email == email {
			return true
		}
	}
	return false
}
