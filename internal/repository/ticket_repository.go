package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
//
// Listing methods return every matching ticket in storage order (ascending id
// for all bundled adapters) or fail as a whole; a row that cannot be mapped
// back to a ticket is an error, never skipped.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetAll(ctx context.Context) ([]domain.Ticket, error)
	GetByReporter(ctx context.Context, reporterID int64) ([]domain.Ticket, error)
	GetByAssignee(ctx context.Context, assigneeID int64) ([]domain.Ticket, error)
	GetByPriority(ctx context.Context, priority domain.TicketPriority) ([]domain.Ticket, error)
	GetByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id int64) (bool, error)
}

const ticketColumns = `id, reporter_id, assignee_id, description, priority, status, created_at, updated_at`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository returns a Postgres-backed implementation.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (reporter_id, assignee_id, description, priority, status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.ReporterID,
		ticket.AssigneeID,
		ticket.Description,
		string(ticket.Priority),
		string(ticket.Status),
		ticket.CreatedAt,
		ticket.UpdatedAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		return translatePgError(err)
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ticket %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) GetAll(ctx context.Context) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY id`)
}

func (r *ticketRepository) GetByReporter(ctx context.Context, reporterID int64) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE reporter_id=$1 ORDER BY id`, reporterID)
}

func (r *ticketRepository) GetByAssignee(ctx context.Context, assigneeID int64) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE assignee_id=$1 ORDER BY id`, assigneeID)
}

func (r *ticketRepository) GetByPriority(ctx context.Context, priority domain.TicketPriority) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE priority=$1 ORDER BY id`, string(priority))
}

func (r *ticketRepository) GetByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE status=$1 ORDER BY id`, string(status))
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET assignee_id=$1, description=$2, priority=$3, status=$4, updated_at=$5
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.AssigneeID,
		ticket.Description,
		string(ticket.Priority),
		string(ticket.Status),
		ticket.UpdatedAt,
		ticket.ID,
	)
	if err != nil {
		return translatePgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("ticket %d: %w", ticket.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) list(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket   domain.Ticket
		priority string
		status   string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.ReporterID,
		&ticket.AssigneeID,
		&ticket.Description,
		&priority,
		&status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := applyTicketEnums(&ticket, priority, status); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

// applyTicketEnums maps stored enum text onto the ticket. Unknown values are
// reported rather than replaced with defaults.
func applyTicketEnums(ticket *domain.Ticket, priority, status string) error {
	p, err := domain.ParseTicketPriority(priority)
	if err != nil {
		return fmt.Errorf("ticket %d: %w", ticket.ID, err)
	}
	s, err := domain.ParseTicketStatus(status)
	if err != nil {
		return fmt.Errorf("ticket %d: %w", ticket.ID, err)
	}
	if string(p) != priority || string(s) != status {
		return fmt.Errorf("ticket %d: non-canonical enum value %q/%q", ticket.ID, priority, status)
	}
	ticket.Priority = p
	ticket.Status = s
	return nil
}
