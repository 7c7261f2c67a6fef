package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type ticketRow struct {
	ID          int64         `db:"id"`
	ReporterID  int64         `db:"reporter_id"`
	AssigneeID  sql.NullInt64 `db:"assignee_id"`
	Description string        `db:"description"`
	Priority    string        `db:"priority"`
	Status      string        `db:"status"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func (row ticketRow) toDomain() (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		ID:          row.ID,
		ReporterID:  row.ReporterID,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.AssigneeID.Valid {
		id := row.AssigneeID.Int64
		ticket.AssigneeID = &id
	}
	if err := applyTicketEnums(ticket, row.Priority, row.Status); err != nil {
		return nil, err
	}
	return ticket, nil
}

type userRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Password  string    `db:"password"`
	Role      string    `db:"role"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row userRow) toDomain() (*domain.User, error) {
	user := &domain.User{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Password:  row.Password,
		Active:    row.Active,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := applyUserRole(user, row.Role); err != nil {
		return nil, err
	}
	return user, nil
}

type sqliteTicketRepository struct {
	db *sqlx.DB
}

// NewSQLiteTicketRepository returns a SQLite-backed implementation.
func NewSQLiteTicketRepository(db *sqlx.DB) TicketRepository {
	return &sqliteTicketRepository{db: db}
}

func (r *sqliteTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO tickets (reporter_id, assignee_id, description, priority, status, created_at, updated_at)
        VALUES (?,?,?,?,?,?,?)`,
		ticket.ReporterID,
		nullableID(ticket.AssigneeID),
		ticket.Description,
		string(ticket.Priority),
		string(ticket.Status),
		ticket.CreatedAt.UTC(),
		ticket.UpdatedAt.UTC(),
	)
	if err != nil {
		return translateSQLiteError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ticket.ID = id
	return nil
}

func (r *sqliteTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	var row ticketRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+ticketColumns+` FROM tickets WHERE id=?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ticket %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return row.toDomain()
}

func (r *sqliteTicketRepository) GetAll(ctx context.Context) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY id`)
}

func (r *sqliteTicketRepository) GetByReporter(ctx context.Context, reporterID int64) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE reporter_id=? ORDER BY id`, reporterID)
}

func (r *sqliteTicketRepository) GetByAssignee(ctx context.Context, assigneeID int64) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE assignee_id=? ORDER BY id`, assigneeID)
}

func (r *sqliteTicketRepository) GetByPriority(ctx context.Context, priority domain.TicketPriority) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE priority=? ORDER BY id`, string(priority))
}

func (r *sqliteTicketRepository) GetByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE status=? ORDER BY id`, string(status))
}

func (r *sqliteTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE tickets SET assignee_id=?, description=?, priority=?, status=?, updated_at=?
        WHERE id=?`,
		nullableID(ticket.AssigneeID),
		ticket.Description,
		string(ticket.Priority),
		string(ticket.Status),
		ticket.UpdatedAt.UTC(),
		ticket.ID,
	)
	if err != nil {
		return translateSQLiteError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("ticket %d: %w", ticket.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *sqliteTicketRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id=?`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *sqliteTicketRepository) list(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	var rows []ticketRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	result := make([]domain.Ticket, 0, len(rows))
	for _, row := range rows {
		ticket, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, nil
}

type sqliteUserRepository struct {
	db *sqlx.DB
}

// NewSQLiteUserRepository returns a SQLite-backed implementation.
func NewSQLiteUserRepository(db *sqlx.DB) UserRepository {
	return &sqliteUserRepository{db: db}
}

func (r *sqliteUserRepository) Create(ctx context.Context, user *domain.User) error {
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO users (name, email, password, role, active, created_at, updated_at)
        VALUES (?,?,?,?,?,?,?)`,
		user.Name,
		user.Email,
		user.Password,
		string(user.Role),
		user.Active,
		user.CreatedAt.UTC(),
		user.UpdatedAt.UTC(),
	)
	if err != nil {
		return translateSQLiteError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *sqliteUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id=?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return row.toDomain()
}

func (r *sqliteUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE email=?`, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
		}
		return nil, err
	}
	return row.toDomain()
}

func (r *sqliteUserRepository) GetAll(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
}

func (r *sqliteUserRepository) GetTechnicians(ctx context.Context) ([]domain.User, error) {
	roles := make([]string, 0, len(domain.TechnicianRoles))
	for _, role := range domain.TechnicianRoles {
		roles = append(roles, string(role))
	}
	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE role IN (?) ORDER BY id`, roles)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, r.db.Rebind(query), args...)
}

func (r *sqliteUserRepository) Update(ctx context.Context, user *domain.User) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE users SET name=?, email=?, password=?, role=?, active=?, updated_at=?
        WHERE id=?`,
		user.Name,
		user.Email,
		user.Password,
		string(user.Role),
		user.Active,
		user.UpdatedAt.UTC(),
		user.ID,
	)
	if err != nil {
		return translateSQLiteError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", user.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *sqliteUserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *sqliteUserRepository) list(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	result := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		user, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func translateSQLiteError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%v: %w", err, domain.ErrConflict)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%v: %w", err, domain.ErrNotFound)
		case sqlite3.ErrConstraintCheck:
			return fmt.Errorf("%v: %w", err, domain.ErrInvalidValue)
		}
	}
	return err
}
