package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Postgres driver registration.
	_ "github.com/lib/pq"

	"github.com/gympulse/engage/internal/domain/model"
)

// Connection pool defaults.
const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
)

// PostgresStore implements RecordStore against a PostgreSQL database.
// See schema.sql for the expected tables.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a pooled connection and verifies it.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// ListClients returns every known client.
func (s *PostgresStore) ListClients(ctx context.Context) ([]model.Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, contact
		FROM clients
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Contact); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetClient resolves a single client.
func (s *PostgresStore) GetClient(ctx context.Context, id string) (model.Client, error) {
	var c model.Client
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, contact
		FROM clients
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Contact)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Client{}, fmt.Errorf("%w: %s", ErrClientNotFound, id)
	}
	if err != nil {
		return model.Client{}, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// ListActivityEvents returns activity events at or after since.
func (s *PostgresStore) ListActivityEvents(ctx context.Context, clientID string, since time.Time) ([]model.ActivityEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT client_id, occurred_at
		FROM activity_events
		WHERE client_id = $1 AND occurred_at >= $2
	`, clientID, since)
	if err != nil {
		return nil, fmt.Errorf("list activity events: %w", err)
	}
	defer rows.Close()

	var out []model.ActivityEvent
	for rows.Next() {
		var e model.ActivityEvent
		if err := rows.Scan(&e.ClientID, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan activity event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListSessionBookings returns all bookings for a client with their linked
// session schedule left-joined; a deleted session yields a nil ref.
func (s *PostgresStore) ListSessionBookings(ctx context.Context, clientID string) ([]model.SessionBooking, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.client_id, b.attended, b.booked_at, s.id, s.scheduled_at
		FROM session_bookings b
		LEFT JOIN sessions s ON s.id = b.session_id
		WHERE b.client_id = $1
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list session bookings: %w", err)
	}
	defer rows.Close()

	var out []model.SessionBooking
	for rows.Next() {
		var (
			b           model.SessionBooking
			sessionID   sql.NullString
			scheduledAt sql.NullTime
		)
		if err := rows.Scan(&b.ClientID, &b.Attended, &b.BookedAt, &sessionID, &scheduledAt); err != nil {
			return nil, fmt.Errorf("scan session booking: %w", err)
		}
		if sessionID.Valid && scheduledAt.Valid {
			b.Session = &model.SessionRef{ID: sessionID.String, ScheduledAt: scheduledAt.Time}
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListWorkoutCompletions returns completions at or after since.
func (s *PostgresStore) ListWorkoutCompletions(ctx context.Context, clientID string, since time.Time) ([]model.WorkoutCompletion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT client_id, completed_at
		FROM workout_completions
		WHERE client_id = $1 AND completed_at >= $2
	`, clientID, since)
	if err != nil {
		return nil, fmt.Errorf("list workout completions: %w", err)
	}
	defer rows.Close()

	var out []model.WorkoutCompletion
	for rows.Next() {
		var c model.WorkoutCompletion
		if err := rows.Scan(&c.ClientID, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan workout completion: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListContentViews returns content views last watched at or after since.
func (s *PostgresStore) ListContentViews(ctx context.Context, clientID string, since time.Time) ([]model.ContentView, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT client_id, completed, watched_seconds, last_watched_at
		FROM content_views
		WHERE client_id = $1 AND last_watched_at >= $2
	`, clientID, since)
	if err != nil {
		return nil, fmt.Errorf("list content views: %w", err)
	}
	defer rows.Close()

	var out []model.ContentView
	for rows.Next() {
		var v model.ContentView
		if err := rows.Scan(&v.ClientID, &v.Completed, &v.WatchedSeconds, &v.LastWatchedAt); err != nil {
			return nil, fmt.Errorf("scan content view: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListMilestoneUnlocks returns unlocks at or after since.
func (s *PostgresStore) ListMilestoneUnlocks(ctx context.Context, clientID string, since time.Time) ([]model.MilestoneUnlock, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT client_id, unlocked_at
		FROM milestone_unlocks
		WHERE client_id = $1 AND unlocked_at >= $2
	`, clientID, since)
	if err != nil {
		return nil, fmt.Errorf("list milestone unlocks: %w", err)
	}
	defer rows.Close()

	var out []model.MilestoneUnlock
	for rows.Next() {
		var u model.MilestoneUnlock
		if err := rows.Scan(&u.ClientID, &u.UnlockedAt); err != nil {
			return nil, fmt.Errorf("scan milestone unlock: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
