package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"partyhaus/internal/domain"
)

type guestRepository struct {
	DB *sql.DB
}

func NewGuestRepository(db *sql.DB) domain.GuestRepository {
	return &guestRepository{DB: db}
}

const guestColumns = "id, event_id, name, email, is_checked_in, checked_in_at, check_in_token, created_at, updated_at"

func scanGuest(row interface{ Scan(...interface{}) error }) (*domain.Guest, error) {
	g := &domain.Guest{}
	var checkedInAt sql.NullTime
	err := row.Scan(
		&g.ID, &g.EventID, &g.Name, &g.Email, &g.IsCheckedIn, &checkedInAt,
		&g.CheckInToken, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if checkedInAt.Valid {
		g.CheckedInAt = &checkedInAt.Time
	}
	return g, nil
}

func (r *guestRepository) Create(ctx context.Context, g *domain.Guest) error {
	query := `
		INSERT INTO guests (event_id, name, email, check_in_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, g.EventID, g.Name, g.Email, g.CheckInToken, g.CreatedAt, g.UpdatedAt).Scan(&g.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *guestRepository) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	query := fmt.Sprintf(`SELECT %s FROM guests WHERE id = $1`, guestColumns)
	g, err := scanGuest(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *guestRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Guest, error) {
	query := fmt.Sprintf(`SELECT %s FROM guests WHERE event_id = $1 AND email = $2`, guestColumns)
	g, err := scanGuest(r.DB.QueryRowContext(ctx, query, eventID, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *guestRepository) GetByCheckInToken(ctx context.Context, token string) (*domain.Guest, error) {
	query := fmt.Sprintf(`SELECT %s FROM guests WHERE check_in_token = $1`, guestColumns)
	g, err := scanGuest(r.DB.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *guestRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Guest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM guests
		WHERE event_id = $1
		ORDER BY created_at ASC
	`, guestColumns)
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	guests := make([]*domain.Guest, 0)
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}

func (r *guestRepository) Update(ctx context.Context, guestID string, upd domain.GuestUpdate) (*domain.Guest, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if upd.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", n))
		args = append(args, *upd.Name)
		n++
	}
	if upd.Email != nil {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", n))
		args = append(args, *upd.Email)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, guestID)
	}
	args = append(args, guestID)
	query := fmt.Sprintf(`
		UPDATE guests SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, guestColumns)
	g, err := scanGuest(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateEmail
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *guestRepository) SetCheckedIn(ctx context.Context, guestID string, at time.Time) error {
	query := `
		UPDATE guests
		SET is_checked_in = TRUE, checked_in_at = $1, updated_at = $1
		WHERE id = $2
	`
	result, err := r.DB.ExecContext(ctx, query, at, guestID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
