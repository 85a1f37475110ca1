package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"partyhaus/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = "id, host_id, name, start_time, end_time, location, playlist_url, invite_image_url, is_public, created_at, updated_at"

func scanEvent(row interface{ Scan(...interface{}) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var playlistNull, imageNull sql.NullString
	err := row.Scan(
		&e.ID, &e.HostID, &e.Name, &e.StartTime, &e.EndTime, &e.Location,
		&playlistNull, &imageNull, &e.IsPublic, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if playlistNull.Valid {
		e.PlaylistURL = &playlistNull.String
	}
	if imageNull.Valid {
		e.InviteImageURL = &imageNull.String
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (host_id, name, start_time, end_time, location, playlist_url, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.HostID, e.Name, e.StartTime, e.EndTime, e.Location, e.PlaylistURL, e.IsPublic, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListByHostID(ctx context.Context, hostID string) ([]*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE host_id = $1
		ORDER BY start_time ASC
	`, eventColumns)
	rows, err := r.DB.QueryContext(ctx, query, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if upd.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", n))
		args = append(args, *upd.Name)
		n++
	}
	if upd.StartTime != nil {
		setClauses = append(setClauses, fmt.Sprintf("start_time = $%d", n))
		args = append(args, *upd.StartTime)
		n++
	}
	if upd.EndTime != nil {
		setClauses = append(setClauses, fmt.Sprintf("end_time = $%d", n))
		args = append(args, *upd.EndTime)
		n++
	}
	if upd.Location != nil {
		setClauses = append(setClauses, fmt.Sprintf("location = $%d", n))
		args = append(args, *upd.Location)
		n++
	}
	if upd.PlaylistURL != nil {
		setClauses = append(setClauses, fmt.Sprintf("playlist_url = $%d", n))
		args = append(args, *upd.PlaylistURL)
		n++
	}
	if upd.IsPublic != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_public = $%d", n))
		args = append(args, *upd.IsPublic)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, eventID)
	}
	args = append(args, eventID)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) SetInviteImageURL(ctx context.Context, eventID, url string) error {
	query := `
		UPDATE events
		SET invite_image_url = $1, updated_at = NOW()
		WHERE id = $2
	`
	result, err := r.DB.ExecContext(ctx, query, url, eventID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
