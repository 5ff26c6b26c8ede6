// Package store defines the read-only record store contract the engine
// consumes, plus its in-memory and Postgres implementations.
package store

import (
	"context"
	"time"

	"github.com/gympulse/engage/internal/domain/model"
)

// RecordStore provides read access to clients and their behavioral records.
// The engine never writes through this interface.
type RecordStore interface {
	// ListClients returns every known client.
	ListClients(ctx context.Context) ([]model.Client, error)

	// GetClient resolves a single client.
	// Returns ErrClientNotFound if the id is unknown.
	GetClient(ctx context.Context, id string) (model.Client, error)

	// ListActivityEvents returns activity events at or after since.
	ListActivityEvents(ctx context.Context, clientID string, since time.Time) ([]model.ActivityEvent, error)

	// ListSessionBookings returns all bookings for a client, unfiltered by
	// time: eligibility is decided locally against each booking's linked
	// session schedule, which differs from the booking time.
	ListSessionBookings(ctx context.Context, clientID string) ([]model.SessionBooking, error)

	// ListWorkoutCompletions returns completions at or after since.
	ListWorkoutCompletions(ctx context.Context, clientID string, since time.Time) ([]model.WorkoutCompletion, error)

	// ListContentViews returns content views last watched at or after since.
	ListContentViews(ctx context.Context, clientID string, since time.Time) ([]model.ContentView, error)

	// ListMilestoneUnlocks returns unlocks at or after since.
	ListMilestoneUnlocks(ctx context.Context, clientID string, since time.Time) ([]model.MilestoneUnlock, error)
}
