// Package demoseed generates a synthetic client fleet for demos and load
// experiments. Generation is deterministic for a given seed.
package demoseed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/gympulse/engage/internal/adapters/store"
	"github.com/gympulse/engage/internal/domain/model"
)

// Archetype shapes how much signal a synthetic client produces.
type Archetype int

const (
	// ArchetypePower trains daily, attends everything, devours content.
	ArchetypePower Archetype = iota
	// ArchetypeRegular keeps a steady two-or-three-times-a-week habit.
	ArchetypeRegular
	// ArchetypeLapsing was active until a couple of weeks ago.
	ArchetypeLapsing
	// ArchetypeGhost signed up and never came back.
	ArchetypeGhost

	archetypeCount = 4
)

// Default generator configuration constants.
const (
	defaultSeed      = 42
	defaultFleetSize = 40
	lapsedCutoffDays = 16
	lookbackSpanDays = 30
	sessionSpanHours = 20
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSeed sets the random seed.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed for reproducible demos
	}
}

// WithFleetSize sets the number of synthetic clients.
func WithFleetSize(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.fleetSize = n
		}
	}
}

// Generator seeds a MemoryStore with a synthetic fleet.
type Generator struct {
	rng       *rand.Rand
	fleetSize int
}

// New creates a Generator with default configuration.
func New(opts ...Option) *Generator {
	g := &Generator{
		rng:       rand.New(rand.NewSource(defaultSeed)), //nolint:gosec // deterministic seed for reproducible demos
		fleetSize: defaultFleetSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Seed populates the store with the synthetic fleet, relative to now.
func (g *Generator) Seed(s *store.MemoryStore, now time.Time) {
	for i := 0; i < g.fleetSize; i++ {
		archetype := Archetype(i % archetypeCount)
		id := uuid.NewString()
		s.AddClient(model.Client{
			ID:      id,
			Name:    fmt.Sprintf("Client %03d", i+1),
			Contact: fmt.Sprintf("client%03d@example.com", i+1),
		})
		g.seedClient(s, id, archetype, now)
	}
}

func (g *Generator) seedClient(s *store.MemoryStore, id string, archetype Archetype, now time.Time) {
	switch archetype {
	case ArchetypePower:
		g.seedActivity(s, id, now, 45+g.rng.Intn(20), 0)
		g.seedBookings(s, id, now, 8+g.rng.Intn(4), 0.95)
		g.seedWorkouts(s, id, now, 18+g.rng.Intn(6), 0)
		g.seedContent(s, id, now, 8+g.rng.Intn(5))
		g.seedMilestones(s, id, now, 3+g.rng.Intn(3))
	case ArchetypeRegular:
		g.seedActivity(s, id, now, 15+g.rng.Intn(15), 0)
		g.seedBookings(s, id, now, 3+g.rng.Intn(4), 0.7)
		g.seedWorkouts(s, id, now, 6+g.rng.Intn(6), 0)
		g.seedContent(s, id, now, g.rng.Intn(4))
		g.seedMilestones(s, id, now, g.rng.Intn(2))
	case ArchetypeLapsing:
		// Everything happened before the lapse cutoff.
		g.seedActivity(s, id, now, 5+g.rng.Intn(8), lapsedCutoffDays)
		g.seedBookings(s, id, now, 1+g.rng.Intn(2), 0.5)
		g.seedWorkouts(s, id, now, 1+g.rng.Intn(3), lapsedCutoffDays)
	case ArchetypeGhost:
		// No records at all.
	}
}

func (g *Generator) dayOffset(minAgeDays int) int {
	span := lookbackSpanDays - minAgeDays
	if span <= 0 {
		span = 1
	}
	return minAgeDays + g.rng.Intn(span)
}

func (g *Generator) seedActivity(s *store.MemoryStore, id string, now time.Time, n, minAgeDays int) {
	for i := 0; i < n; i++ {
		s.AddActivity(id, model.ActivityEvent{
			ClientID:   id,
			OccurredAt: now.AddDate(0, 0, -g.dayOffset(minAgeDays)).Add(-time.Duration(g.rng.Intn(sessionSpanHours)) * time.Hour),
		})
	}
}

func (g *Generator) seedBookings(s *store.MemoryStore, id string, now time.Time, n int, attendProb float64) {
	for i := 0; i < n; i++ {
		scheduled := now.AddDate(0, 0, -g.dayOffset(0))
		s.AddBooking(id, model.SessionBooking{
			ClientID: id,
			Attended: g.rng.Float64() < attendProb,
			BookedAt: scheduled.AddDate(0, 0, -1),
			Session:  &model.SessionRef{ID: uuid.NewString(), ScheduledAt: scheduled},
		})
	}
}

func (g *Generator) seedWorkouts(s *store.MemoryStore, id string, now time.Time, n, minAgeDays int) {
	for i := 0; i < n; i++ {
		s.AddWorkout(id, model.WorkoutCompletion{
			ClientID:    id,
			CompletedAt: now.AddDate(0, 0, -g.dayOffset(minAgeDays)),
		})
	}
}

func (g *Generator) seedContent(s *store.MemoryStore, id string, now time.Time, n int) {
	for i := 0; i < n; i++ {
		s.AddContentView(id, model.ContentView{
			ClientID:       id,
			Completed:      g.rng.Intn(2) == 0,
			WatchedSeconds: float64(60 + g.rng.Intn(900)),
			LastWatchedAt:  now.AddDate(0, 0, -g.dayOffset(0)),
		})
	}
}

func (g *Generator) seedMilestones(s *store.MemoryStore, id string, now time.Time, n int) {
	for i := 0; i < n; i++ {
		s.AddMilestone(id, model.MilestoneUnlock{
			ClientID:   id,
			UnlockedAt: now.AddDate(0, 0, -g.dayOffset(0)),
		})
	}
}
