// Package model contains domain models passed between layers.
package model

import "time"

// DaysSentinel is reported as days-since-last-activity when a client has no
// recorded signal at all.
const DaysSentinel = 999

// Client identifies a coached client. The engine reads clients from the
// record store and never mutates them.
type Client struct {
	ID      string
	Name    string
	Contact string
}

// ActivityEvent is a single login/app-activity ping.
type ActivityEvent struct {
	ClientID   string
	OccurredAt time.Time
}

// SessionRef carries the scheduled time of a booked session. A booking whose
// session was deleted has a nil ref and is excluded from session scoring.
type SessionRef struct {
	ID          string
	ScheduledAt time.Time
}

// SessionBooking records a client booking a coaching session. BookedAt is the
// time of the booking itself, which is distinct from the session's schedule.
type SessionBooking struct {
	ClientID string
	Attended bool
	BookedAt time.Time
	Session  *SessionRef
}

// WorkoutCompletion records a finished workout.
type WorkoutCompletion struct {
	ClientID    string
	CompletedAt time.Time
}

// ContentView records progress through a piece of video content.
type ContentView struct {
	ClientID       string
	Completed      bool
	WatchedSeconds float64
	LastWatchedAt  time.Time
}

// MilestoneUnlock records an achievement milestone being reached.
type MilestoneUnlock struct {
	ClientID   string
	UnlockedAt time.Time
}

// ChurnRisk is a coarse three-level disengagement classification.
type ChurnRisk string

const (
	RiskLow    ChurnRisk = "low"
	RiskMedium ChurnRisk = "medium"
	RiskHigh   ChurnRisk = "high"
)

// SubScores holds the normalized [0,100] contribution of each signal before
// weighting.
type SubScores struct {
	Activity  float64
	Session   float64
	Workout   float64
	Content   float64
	Milestone float64
}

// EngagementScore is the engine's computed view of one client, rebuilt whole
// on every batch pass.
type EngagementScore struct {
	ClientID      string
	ClientName    string
	ClientContact string

	SubScores SubScores
	Overall   float64

	ChurnRisk             ChurnRisk
	LastActivity          *time.Time // nil means no signal was found at all
	DaysSinceLastActivity int

	Insights   []string // ordered: tier, recency, then per-signal nuggets
	ComputedAt time.Time
	PassID     string
}

// CacheInfo describes the cached snapshot without exposing its contents.
type CacheInfo struct {
	Count          int
	LastComputedAt time.Time
}

// Report aggregates one completed batch pass into fleet-level numbers.
type Report struct {
	TotalClients  int
	ActiveClients int
	AtRiskClients int

	TopEngagedClients []EngagementScore
	LowEngagedClients []EngagementScore

	ChurnRiskDistribution  map[ChurnRisk]int
	AverageEngagementScore float64

	GeneratedAt time.Time
	PassID      string
}
