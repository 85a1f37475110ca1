package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"partyhaus/internal/domain"
)

var emailLogCols = []string{"id", "event_id", "guest_id", "message_type", "status", "provider_message_id", "error_text", "sent_at", "delivered_at", "opened_at", "clicked_at", "created_at", "updated_at"}

func TestEmailLogRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`INSERT INTO email_logs \(event_id, guest_id, message_type, status, created_at, updated_at\)`).
			WithArgs("ev-1", "guest-1", domain.EmailTypeInvitation, domain.EmailStatusPending, created, created).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("log-uuid-1"))

		logRow := domain.NewEmailLog("ev-1", "guest-1", domain.EmailTypeInvitation, created)
		repo := NewEmailLogRepository(db)
		err = repo.Create(ctx, logRow)
		require.NoError(t, err)
		require.Equal(t, "log-uuid-1", logRow.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO email_logs`).
			WillReturnError(sql.ErrConnDone)

		repo := NewEmailLogRepository(db)
		err = repo.Create(ctx, domain.NewEmailLog("ev-1", "guest-1", domain.EmailTypeReminder, time.Now()))
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEmailLogRepository_GetByProviderMessageID(t *testing.T) {
	ctx := context.Background()
	sentAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, event_id, guest_id, message_type, status, provider_message_id`).
			WithArgs("msg-abc").
			WillReturnRows(sqlmock.NewRows(emailLogCols).
				AddRow("log-1", "ev-1", "guest-1", "invitation", "sent", "msg-abc", nil, sentAt, nil, nil, nil,
					time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), sentAt))

		repo := NewEmailLogRepository(db)
		got, err := repo.GetByProviderMessageID(ctx, "msg-abc")
		require.NoError(t, err)
		require.Equal(t, domain.EmailStatusSent, got.Status)
		require.NotNil(t, got.ProviderMessageID)
		require.Equal(t, "msg-abc", *got.ProviderMessageID)
		require.NotNil(t, got.SentAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, event_id, guest_id, message_type`).
			WithArgs("msg-missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEmailLogRepository(db)
		got, err := repo.GetByProviderMessageID(ctx, "msg-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.Nil(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEmailLogRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("sent writes provider id and sent_at", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		msgID := "msg-abc"
		mock.ExpectQuery(`UPDATE email_logs SET status = \$1, updated_at = \$2, sent_at = \$3, provider_message_id = \$4`).
			WithArgs(domain.EmailStatusSent, at, at, msgID, "log-1").
			WillReturnRows(sqlmock.NewRows(emailLogCols).
				AddRow("log-1", "ev-1", "guest-1", "invitation", "sent", msgID, nil, at, nil, nil, nil,
					time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), at))

		repo := NewEmailLogRepository(db)
		got, err := repo.UpdateStatus(ctx, "log-1", domain.EmailStatusUpdate{
			Status:            domain.EmailStatusSent,
			ProviderMessageID: &msgID,
			At:                at,
		})
		require.NoError(t, err)
		require.Equal(t, domain.EmailStatusSent, got.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed writes error text", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		errText := "smtp timeout"
		mock.ExpectQuery(`UPDATE email_logs SET status = \$1, updated_at = \$2, error_text = \$3`).
			WithArgs(domain.EmailStatusFailed, at, errText, "log-1").
			WillReturnRows(sqlmock.NewRows(emailLogCols).
				AddRow("log-1", "ev-1", "guest-1", "invitation", "failed", nil, errText, nil, nil, nil, nil,
					time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), at))

		repo := NewEmailLogRepository(db)
		got, err := repo.UpdateStatus(ctx, "log-1", domain.EmailStatusUpdate{
			Status:    domain.EmailStatusFailed,
			ErrorText: &errText,
			At:        at,
		})
		require.NoError(t, err)
		require.Equal(t, domain.EmailStatusFailed, got.Status)
		require.NotNil(t, got.ErrorText)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE email_logs SET`).
			WillReturnError(sql.ErrNoRows)

		repo := NewEmailLogRepository(db)
		got, err := repo.UpdateStatus(ctx, "log-missing", domain.EmailStatusUpdate{
			Status: domain.EmailStatusDelivered,
			At:     at,
		})
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.Nil(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEmailLogRepository_ListByEventID(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success with pagination", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM email_logs WHERE event_id = \$1`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
		mock.ExpectQuery(`SELECT id, event_id, guest_id, message_type, status, provider_message_id`).
			WithArgs("ev-1", 2, 2).
			WillReturnRows(sqlmock.NewRows(emailLogCols).
				AddRow("log-3", "ev-1", "guest-1", "invitation", "sent", "msg-3", nil, created, nil, nil, nil, created, created).
				AddRow("log-2", "ev-1", "guest-2", "reminder", "failed", nil, "smtp timeout", nil, nil, nil, nil, created, created))

		repo := NewEmailLogRepository(db)
		got, total, err := repo.ListByEventID(ctx, "ev-1", domain.PaginationParams{Page: 2, PageSize: 2})
		require.NoError(t, err)
		require.Equal(t, 5, total)
		require.Len(t, got, 2)
		require.Equal(t, "log-3", got[0].ID)
		require.Equal(t, domain.EmailStatusFailed, got[1].Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty event", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM email_logs`).
			WithArgs("ev-empty").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT id, event_id, guest_id`).
			WithArgs("ev-empty", 20, 0).
			WillReturnRows(sqlmock.NewRows(emailLogCols))

		repo := NewEmailLogRepository(db)
		got, total, err := repo.ListByEventID(ctx, "ev-empty", domain.PaginationParams{Page: 1, PageSize: 20})
		require.NoError(t, err)
		require.Zero(t, total)
		require.NotNil(t, got)
		require.Empty(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM email_logs`).
			WillReturnError(sql.ErrConnDone)

		repo := NewEmailLogRepository(db)
		_, _, err = repo.ListByEventID(ctx, "ev-1", domain.PaginationParams{Page: 1, PageSize: 20})
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEmailLogRepository_CountByStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT status, COUNT\(\*\)`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
				AddRow("sent", 3).
				AddRow("delivered", 5).
				AddRow("failed", 1))

		repo := NewEmailLogRepository(db)
		got, err := repo.CountByStatus(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, map[domain.EmailStatus]int{
			domain.EmailStatusSent:      3,
			domain.EmailStatusDelivered: 5,
			domain.EmailStatusFailed:    1,
		}, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty event", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT status, COUNT\(\*\)`).
			WithArgs("ev-empty").
			WillReturnRows(sqlmock.NewRows([]string{"status", "count"}))

		repo := NewEmailLogRepository(db)
		got, err := repo.CountByStatus(ctx, "ev-empty")
		require.NoError(t, err)
		require.Empty(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
