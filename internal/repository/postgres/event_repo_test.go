package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"partyhaus/internal/domain"
)

var eventCols = []string{"id", "host_id", "name", "start_time", "end_time", "location", "playlist_url", "invite_image_url", "is_public", "created_at", "updated_at"}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			event: &domain.Event{
				HostID:    "user-uuid-1",
				Name:      "Sophie's 30th",
				StartTime: time.Date(2026, 6, 20, 19, 0, 0, 0, time.UTC),
				EndTime:   time.Date(2026, 6, 21, 2, 0, 0, 0, time.UTC),
				Location:  "Rooftop Bar, Amsterdam",
				IsPublic:  false,
				CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
				UpdatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events \(host_id, name, start_time, end_time, location, playlist_url, is_public, created_at, updated_at\)`).
					WithArgs("user-uuid-1", "Sophie's 30th",
						time.Date(2026, 6, 20, 19, 0, 0, 0, time.UTC), time.Date(2026, 6, 21, 2, 0, 0, 0, time.UTC),
						"Rooftop Bar, Amsterdam", nil, false,
						time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-1"))
			},
			wantID:  "ev-uuid-1",
			wantErr: false,
		},
		{
			name: "db error",
			event: &domain.Event{
				HostID:    "user-1",
				Name:      "Game Night",
				StartTime: time.Now(),
				EndTime:   time.Now().Add(3 * time.Hour),
				Location:  "Home",
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantID:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	playlist := "https://open.spotify.com/playlist/abc"

	tests := []struct {
		name    string
		id      string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Event
		wantErr bool
	}{
		{
			name: "success with playlist",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, host_id, name, start_time, end_time, location, playlist_url, invite_image_url, is_public, created_at, updated_at`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows(eventCols).
						AddRow("ev-1", "user-1", "Sophie's 30th",
							time.Date(2026, 6, 20, 19, 0, 0, 0, time.UTC), time.Date(2026, 6, 21, 2, 0, 0, 0, time.UTC),
							"Rooftop Bar", playlist, nil, false,
							time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
			},
			want: &domain.Event{
				ID:          "ev-1",
				HostID:      "user-1",
				Name:        "Sophie's 30th",
				StartTime:   time.Date(2026, 6, 20, 19, 0, 0, 0, time.UTC),
				EndTime:     time.Date(2026, 6, 21, 2, 0, 0, 0, time.UTC),
				Location:    "Rooftop Bar",
				PlaylistURL: &playlist,
				CreatedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
				UpdatedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			},
			wantErr: false,
		},
		{
			name: "not found",
			id:   "ev-missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, host_id, name, start_time, end_time, location`).
					WithArgs("ev-missing").
					WillReturnError(sql.ErrNoRows)
			},
			want:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, got)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_ListByHostID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		hostID  string
		mock    func(mock sqlmock.Sqlmock)
		want    []*domain.Event
		wantErr bool
	}{
		{
			name:   "success multiple",
			hostID: "user-1",
			mock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(eventCols).
					AddRow("ev-1", "user-1", "Game Night",
						time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC), time.Date(2026, 5, 1, 23, 0, 0, 0, time.UTC),
						"Home", nil, nil, false,
						time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)).
					AddRow("ev-2", "user-1", "Summer BBQ",
						time.Date(2026, 7, 4, 14, 0, 0, 0, time.UTC), time.Date(2026, 7, 4, 22, 0, 0, 0, time.UTC),
						"Vondelpark", nil, nil, true,
						time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
				mock.ExpectQuery(`SELECT id, host_id, name, start_time, end_time, location`).
					WithArgs("user-1").
					WillReturnRows(rows)
			},
			want: []*domain.Event{
				{ID: "ev-1", HostID: "user-1", Name: "Game Night", StartTime: time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC), EndTime: time.Date(2026, 5, 1, 23, 0, 0, 0, time.UTC), Location: "Home", CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), UpdatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
				{ID: "ev-2", HostID: "user-1", Name: "Summer BBQ", StartTime: time.Date(2026, 7, 4, 14, 0, 0, 0, time.UTC), EndTime: time.Date(2026, 7, 4, 22, 0, 0, 0, time.UTC), Location: "Vondelpark", IsPublic: true, CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), UpdatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
			},
			wantErr: false,
		},
		{
			name:   "success empty",
			hostID: "user-none",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, host_id, name, start_time, end_time, location`).
					WithArgs("user-none").
					WillReturnRows(sqlmock.NewRows(eventCols))
			},
			want:    []*domain.Event{},
			wantErr: false,
		},
		{
			name:   "db error",
			hostID: "user-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, host_id, name, start_time, end_time, location`).
					WithArgs("user-1").
					WillReturnError(sql.ErrConnDone)
			},
			want:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			got, err := repo.ListByHostID(ctx, tt.hostID)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, got)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()
	newName := "Sophie's 30th (rescheduled)"
	newStart := time.Date(2026, 6, 27, 19, 0, 0, 0, time.UTC)

	t.Run("partial update builds set clause", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events SET updated_at = NOW\(\), name = \$1, start_time = \$2`).
			WithArgs(newName, newStart, "ev-1").
			WillReturnRows(sqlmock.NewRows(eventCols).
				AddRow("ev-1", "user-1", newName, newStart,
					time.Date(2026, 6, 28, 2, 0, 0, 0, time.UTC), "Rooftop Bar", nil, nil, false,
					time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))

		repo := NewEventRepository(db)
		got, err := repo.Update(ctx, "ev-1", domain.EventUpdate{Name: &newName, StartTime: &newStart})
		require.NoError(t, err)
		require.Equal(t, newName, got.Name)
		require.Equal(t, newStart, got.StartTime)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty update fetches current row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, host_id, name`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows(eventCols).
				AddRow("ev-1", "user-1", "Game Night",
					time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC), time.Date(2026, 5, 1, 23, 0, 0, 0, time.UTC),
					"Home", nil, nil, false,
					time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))

		repo := NewEventRepository(db)
		got, err := repo.Update(ctx, "ev-1", domain.EventUpdate{})
		require.NoError(t, err)
		require.Equal(t, "Game Night", got.Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events SET`).
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		got, err := repo.Update(ctx, "ev-missing", domain.EventUpdate{Name: &newName})
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.Nil(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_SetInviteImageURL(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE events`).
			WithArgs("https://cdn.partyhaus.app/user-1/ev-1/invite.png", "ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewEventRepository(db)
		err = repo.SetInviteImageURL(ctx, "ev-1", "https://cdn.partyhaus.app/user-1/ev-1/invite.png")
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE events`).
			WithArgs("https://cdn.partyhaus.app/x.png", "ev-missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewEventRepository(db)
		err = repo.SetInviteImageURL(ctx, "ev-missing", "https://cdn.partyhaus.app/x.png")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		mock       func(mock sqlmock.Sqlmock)
		wantErr    bool
		isNotFound bool
	}{
		{
			name: "success",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
					WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantErr:    false,
			isNotFound: false,
		},
		{
			name: "not found",
			id:   "ev-missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
					WithArgs("ev-missing").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr:    true,
			isNotFound: true,
		},
		{
			name: "db error",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
					WithArgs("ev-1").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr:    true,
			isNotFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Delete(ctx, tt.id)
			if tt.wantErr {
				require.Error(t, err)
				if tt.isNotFound {
					require.True(t, errors.Is(err, domain.ErrNotFound))
				}
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
