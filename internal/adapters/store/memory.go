package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gympulse/engage/internal/domain/model"
)

// MemoryStore is a mutex-guarded in-memory RecordStore. It backs tests and
// the demo binary, and doubles as the seed target for synthetic fleets.
type MemoryStore struct {
	mu sync.RWMutex

	clients      []model.Client
	clientsByID  map[string]model.Client
	activity     map[string][]model.ActivityEvent
	bookings     map[string][]model.SessionBooking
	workouts     map[string][]model.WorkoutCompletion
	contentViews map[string][]model.ContentView
	milestones   map[string][]model.MilestoneUnlock

	// failures maps clientID -> operation name -> forced error.
	failures map[string]map[string]error
}

// Operation names accepted by FailWith.
const (
	OpGetClient      = "get_client"
	OpListActivity   = "list_activity"
	OpListBookings   = "list_bookings"
	OpListWorkouts   = "list_workouts"
	OpListContent    = "list_content"
	OpListMilestones = "list_milestones"
)

// NewMemoryStore creates an empty in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clientsByID:  make(map[string]model.Client),
		activity:     make(map[string][]model.ActivityEvent),
		bookings:     make(map[string][]model.SessionBooking),
		workouts:     make(map[string][]model.WorkoutCompletion),
		contentViews: make(map[string][]model.ContentView),
		milestones:   make(map[string][]model.MilestoneUnlock),
		failures:     make(map[string]map[string]error),
	}
}

// AddClient registers a client.
func (s *MemoryStore) AddClient(c model.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clientsByID[c.ID]; !ok {
		s.clients = append(s.clients, c)
	}
	s.clientsByID[c.ID] = c
}

// RemoveClient drops a client from the list but keeps its records, modeling
// the transient list/get race the batch engine must tolerate.
func (s *MemoryStore) RemoveClient(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clientsByID, id)
	filtered := s.clients[:0]
	for _, c := range s.clients {
		if c.ID != id {
			filtered = append(filtered, c)
		}
	}
	s.clients = filtered
}

// AddActivity appends activity events for a client.
func (s *MemoryStore) AddActivity(clientID string, events ...model.ActivityEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity[clientID] = append(s.activity[clientID], events...)
}

// AddBooking appends session bookings for a client.
func (s *MemoryStore) AddBooking(clientID string, bookings ...model.SessionBooking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[clientID] = append(s.bookings[clientID], bookings...)
}

// AddWorkout appends workout completions for a client.
func (s *MemoryStore) AddWorkout(clientID string, completions ...model.WorkoutCompletion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workouts[clientID] = append(s.workouts[clientID], completions...)
}

// AddContentView appends content views for a client.
func (s *MemoryStore) AddContentView(clientID string, views ...model.ContentView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contentViews[clientID] = append(s.contentViews[clientID], views...)
}

// AddMilestone appends milestone unlocks for a client.
func (s *MemoryStore) AddMilestone(clientID string, unlocks ...model.MilestoneUnlock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.milestones[clientID] = append(s.milestones[clientID], unlocks...)
}

// FailWith forces the named operation to return err for one client.
// Pass a nil error to clear the injection.
func (s *MemoryStore) FailWith(clientID, op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures[clientID], op)
		return
	}
	if s.failures[clientID] == nil {
		s.failures[clientID] = make(map[string]error)
	}
	s.failures[clientID][op] = err
}

func (s *MemoryStore) injected(clientID, op string) error {
	if ops, ok := s.failures[clientID]; ok {
		return ops[op]
	}
	return nil
}

// ListClients returns every known client.
func (s *MemoryStore) ListClients(_ context.Context) ([]model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Client, len(s.clients))
	copy(out, s.clients)
	return out, nil
}

// GetClient resolves a single client.
func (s *MemoryStore) GetClient(_ context.Context, id string) (model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.injected(id, OpGetClient); err != nil {
		return model.Client{}, err
	}
	c, ok := s.clientsByID[id]
	if !ok {
		return model.Client{}, fmt.Errorf("%w: %s", ErrClientNotFound, id)
	}
	return c, nil
}

// ListActivityEvents returns activity events at or after since.
func (s *MemoryStore) ListActivityEvents(_ context.Context, clientID string, since time.Time) ([]model.ActivityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.injected(clientID, OpListActivity); err != nil {
		return nil, err
	}
	var out []model.ActivityEvent
	for _, e := range s.activity[clientID] {
		if !e.OccurredAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListSessionBookings returns all bookings for a client, unfiltered by time.
func (s *MemoryStore) ListSessionBookings(_ context.Context, clientID string) ([]model.SessionBooking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.injected(clientID, OpListBookings); err != nil {
		return nil, err
	}
	out := make([]model.SessionBooking, len(s.bookings[clientID]))
	copy(out, s.bookings[clientID])
	return out, nil
}

// ListWorkoutCompletions returns completions at or after since.
func (s *MemoryStore) ListWorkoutCompletions(_ context.Context, clientID string, since time.Time) ([]model.WorkoutCompletion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.injected(clientID, OpListWorkouts); err != nil {
		return nil, err
	}
	var out []model.WorkoutCompletion
	for _, c := range s.workouts[clientID] {
		if !c.CompletedAt.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

// ListContentViews returns content views last watched at or after since.
func (s *MemoryStore) ListContentViews(_ context.Context, clientID string, since time.Time) ([]model.ContentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.injected(clientID, OpListContent); err != nil {
		return nil, err
	}
	var out []model.ContentView
	for _, v := range s.contentViews[clientID] {
		if !v.LastWatchedAt.Before(since) {
			out = append(out, v)
		}
	}
	return out, nil
}

// ListMilestoneUnlocks returns unlocks at or after since.
func (s *MemoryStore) ListMilestoneUnlocks(_ context.Context, clientID string, since time.Time) ([]model.MilestoneUnlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.injected(clientID, OpListMilestones); err != nil {
		return nil, err
	}
	var out []model.MilestoneUnlock
	for _, u := range s.milestones[clientID] {
		if !u.UnlockedAt.Before(since) {
			out = append(out, u)
		}
	}
	return out, nil
}
