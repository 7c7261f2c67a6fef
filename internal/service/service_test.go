package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type fixture struct {
	store      *repository.MemoryStore
	tickets    *countingTicketRepository
	dispatcher events.Dispatcher
	published  []events.Event
	ticketSvc  *TicketService
	userSvc    *UserService
}

// countingTicketRepository records how often Delete reached storage.
type countingTicketRepository struct {
	repository.TicketRepository
	deletes int
}

func (r *countingTicketRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.deletes++
	return r.TicketRepository.Delete(ctx, id)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: repository.NewMemoryStore()}
	f.tickets = &countingTicketRepository{TicketRepository: f.store.Tickets()}
	f.dispatcher = events.NewInMemoryDispatcher()
	for _, eventType := range events.AllEventTypes {
		f.dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			f.published = append(f.published, e)
			return nil
		})
	}
	f.ticketSvc = NewTicketService(TicketDependencies{
		TicketRepo: f.tickets,
		UserRepo:   f.store.Users(),
		Dispatcher: f.dispatcher,
	})
	f.userSvc = NewUserService(UserDependencies{
		UserRepo:   f.store.Users(),
		Dispatcher: f.dispatcher,
	})
	return f
}

func (f *fixture) user(t *testing.T, name string, role domain.UserRole) *domain.User {
	t.Helper()
	user, err := f.userSvc.CreateUser(context.Background(), UserCreateInput{
		Name:     name,
		Email:    name + "@example.com",
		Password: "secret",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) lastEvent(t *testing.T) events.Event {
	t.Helper()
	require.NotEmpty(t, f.published)
	return f.published[len(f.published)-1]
}
