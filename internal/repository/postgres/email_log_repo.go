package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"partyhaus/internal/domain"
)

type emailLogRepository struct {
	DB *sql.DB
}

func NewEmailLogRepository(db *sql.DB) domain.EmailLogRepository {
	return &emailLogRepository{DB: db}
}

const emailLogColumns = "id, event_id, guest_id, message_type, status, provider_message_id, error_text, sent_at, delivered_at, opened_at, clicked_at, created_at, updated_at"

func scanEmailLog(row interface{ Scan(...interface{}) error }) (*domain.EmailLog, error) {
	l := &domain.EmailLog{}
	var providerID, errText sql.NullString
	var sentAt, deliveredAt, openedAt, clickedAt sql.NullTime
	err := row.Scan(
		&l.ID, &l.EventID, &l.GuestID, &l.MessageType, &l.Status,
		&providerID, &errText, &sentAt, &deliveredAt, &openedAt, &clickedAt,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if providerID.Valid {
		l.ProviderMessageID = &providerID.String
	}
	if errText.Valid {
		l.ErrorText = &errText.String
	}
	if sentAt.Valid {
		l.SentAt = &sentAt.Time
	}
	if deliveredAt.Valid {
		l.DeliveredAt = &deliveredAt.Time
	}
	if openedAt.Valid {
		l.OpenedAt = &openedAt.Time
	}
	if clickedAt.Valid {
		l.ClickedAt = &clickedAt.Time
	}
	return l, nil
}

func (r *emailLogRepository) Create(ctx context.Context, l *domain.EmailLog) error {
	query := `
		INSERT INTO email_logs (event_id, guest_id, message_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, l.EventID, l.GuestID, l.MessageType, l.Status, l.CreatedAt, l.UpdatedAt).Scan(&l.ID)
}

func (r *emailLogRepository) GetByID(ctx context.Context, id string) (*domain.EmailLog, error) {
	query := fmt.Sprintf(`SELECT %s FROM email_logs WHERE id = $1`, emailLogColumns)
	l, err := scanEmailLog(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *emailLogRepository) GetByProviderMessageID(ctx context.Context, providerMessageID string) (*domain.EmailLog, error) {
	query := fmt.Sprintf(`SELECT %s FROM email_logs WHERE provider_message_id = $1`, emailLogColumns)
	l, err := scanEmailLog(r.DB.QueryRowContext(ctx, query, providerMessageID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// UpdateStatus writes the new status plus the timestamp column matching it.
func (r *emailLogRepository) UpdateStatus(ctx context.Context, id string, upd domain.EmailStatusUpdate) (*domain.EmailLog, error) {
	setClauses := []string{"status = $1", "updated_at = $2"}
	args := []interface{}{upd.Status, upd.At}
	n := 3
	switch upd.Status {
	case domain.EmailStatusSent:
		setClauses = append(setClauses, fmt.Sprintf("sent_at = $%d", n))
		args = append(args, upd.At)
		n++
	case domain.EmailStatusDelivered:
		setClauses = append(setClauses, fmt.Sprintf("delivered_at = $%d", n))
		args = append(args, upd.At)
		n++
	case domain.EmailStatusOpened:
		setClauses = append(setClauses, fmt.Sprintf("opened_at = $%d", n))
		args = append(args, upd.At)
		n++
	case domain.EmailStatusClicked:
		setClauses = append(setClauses, fmt.Sprintf("clicked_at = $%d", n))
		args = append(args, upd.At)
		n++
	}
	if upd.ProviderMessageID != nil {
		setClauses = append(setClauses, fmt.Sprintf("provider_message_id = $%d", n))
		args = append(args, *upd.ProviderMessageID)
		n++
	}
	if upd.ErrorText != nil {
		setClauses = append(setClauses, fmt.Sprintf("error_text = $%d", n))
		args = append(args, *upd.ErrorText)
		n++
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE email_logs SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, emailLogColumns)
	l, err := scanEmailLog(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *emailLogRepository) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.EmailLog, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM email_logs WHERE event_id = $1`
	if err := r.DB.QueryRowContext(ctx, countQuery, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM email_logs
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, emailLogColumns)
	rows, err := r.DB.QueryContext(ctx, query, eventID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	logs := make([]*domain.EmailLog, 0)
	for rows.Next() {
		l, err := scanEmailLog(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}

func (r *emailLogRepository) LatestByGuestID(ctx context.Context, guestID string) (*domain.EmailLog, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM email_logs
		WHERE guest_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, emailLogColumns)
	l, err := scanEmailLog(r.DB.QueryRowContext(ctx, query, guestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *emailLogRepository) CountByStatus(ctx context.Context, eventID string) (map[domain.EmailStatus]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM email_logs
		WHERE event_id = $1
		GROUP BY status
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[domain.EmailStatus]int)
	for rows.Next() {
		var status domain.EmailStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
