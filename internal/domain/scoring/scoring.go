// Package scoring computes a single client's engagement score from the five
// behavioral signals.
package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gympulse/engage/internal/domain/model"
	"github.com/gympulse/engage/internal/domain/signal"
)

// Default scoring configuration constants.
const (
	defaultLookbackDays = 30

	hoursPerDay = 24

	// Churn classification thresholds.
	lowRiskScore  = 70.0
	highRiskScore = 40.0
	lowRiskDays   = 7
	highRiskDays  = 14

	// Insight thresholds.
	activeTierMin        = 70.0
	mediumTierMin        = 40.0
	frequentAttendeeMin  = 5
	consistentWorkoutMin = 10
)

// Weights combine the five sub-scores into the overall score. They must sum
// to exactly 1.0.
type Weights struct {
	Activity  float64
	Session   float64
	Workout   float64
	Content   float64
	Milestone float64
}

// DefaultWeights returns the production weighting.
func DefaultWeights() Weights {
	return Weights{
		Activity:  0.15,
		Session:   0.30,
		Workout:   0.25,
		Content:   0.20,
		Milestone: 0.10,
	}
}

// Validate checks the sum-to-one invariant.
func (w Weights) Validate() error {
	sum := w.Activity + w.Session + w.Workout + w.Content + w.Milestone
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("%w: weights sum to %v, want 1.0", ErrInvalidWeights, sum)
	}
	return nil
}

// RecordSource abstracts the store reads the scorer needs.
type RecordSource interface {
	GetClient(ctx context.Context, id string) (model.Client, error)
	ListActivityEvents(ctx context.Context, clientID string, since time.Time) ([]model.ActivityEvent, error)
	ListSessionBookings(ctx context.Context, clientID string) ([]model.SessionBooking, error)
	ListWorkoutCompletions(ctx context.Context, clientID string, since time.Time) ([]model.WorkoutCompletion, error)
	ListContentViews(ctx context.Context, clientID string, since time.Time) ([]model.ContentView, error)
	ListMilestoneUnlocks(ctx context.Context, clientID string, since time.Time) ([]model.MilestoneUnlock, error)
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithLookbackDays sets the scoring window.
func WithLookbackDays(days int) Option {
	return func(s *Scorer) {
		if days > 0 {
			s.lookbackDays = days
		}
	}
}

// WithWeights sets the combination weights.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// Scorer computes engagement scores for individual clients.
type Scorer struct {
	source       RecordSource
	lookbackDays int
	weights      Weights
}

// New constructs a Scorer. The weight invariant is enforced here so a retuned
// configuration cannot silently skew the overall score.
func New(source RecordSource, opts ...Option) (*Scorer, error) {
	s := &Scorer{
		source:       source,
		lookbackDays: defaultLookbackDays,
		weights:      DefaultWeights(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.weights.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// records bundles one client's fetched signal sets.
type records struct {
	activity   []model.ActivityEvent
	bookings   []model.SessionBooking
	workouts   []model.WorkoutCompletion
	views      []model.ContentView
	milestones []model.MilestoneUnlock
}

// Score computes the engagement score for one client against a caller-captured
// now, so every client in a batch pass shares the same window boundary.
func (s *Scorer) Score(ctx context.Context, clientID string, now time.Time, passID string) (model.EngagementScore, error) {
	since := now.AddDate(0, 0, -s.lookbackDays)

	client, err := s.source.GetClient(ctx, clientID)
	if err != nil {
		return model.EngagementScore{}, fmt.Errorf("get client %s: %w", clientID, err)
	}

	recs, err := s.fetch(ctx, clientID, since)
	if err != nil {
		return model.EngagementScore{}, err
	}

	sub := model.SubScores{
		Activity:  signal.ActivitySubScore(recs.activity, since),
		Session:   signal.SessionSubScore(recs.bookings, since),
		Workout:   signal.WorkoutSubScore(recs.workouts, since),
		Content:   signal.ContentSubScore(recs.views),
		Milestone: signal.MilestoneSubScore(recs.milestones, since),
	}

	overall := math.Round(
		sub.Activity*s.weights.Activity +
			sub.Session*s.weights.Session +
			sub.Workout*s.weights.Workout +
			sub.Content*s.weights.Content +
			sub.Milestone*s.weights.Milestone,
	)

	lastActivity := latestSignal(recs)
	days := model.DaysSentinel
	if lastActivity != nil {
		days = int(math.Floor(now.Sub(*lastActivity).Hours() / hoursPerDay))
	}

	return model.EngagementScore{
		ClientID:              client.ID,
		ClientName:            client.Name,
		ClientContact:         client.Contact,
		SubScores:             sub,
		Overall:               overall,
		ChurnRisk:             ClassifyChurnRisk(overall, days),
		LastActivity:          lastActivity,
		DaysSinceLastActivity: days,
		Insights:              buildInsights(overall, days, recs),
		ComputedAt:            now,
		PassID:                passID,
	}, nil
}

// fetch issues the five record reads concurrently; the first failure cancels
// the siblings and fails the client.
func (s *Scorer) fetch(ctx context.Context, clientID string, since time.Time) (records, error) {
	var recs records
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if recs.activity, err = s.source.ListActivityEvents(gctx, clientID, since); err != nil {
			return fmt.Errorf("fetch activity for %s: %w", clientID, err)
		}
		return nil
	})
	g.Go(func() error {
		// Bookings are pulled unfiltered; eligibility depends on the linked
		// session's schedule, not the booking time.
		var err error
		if recs.bookings, err = s.source.ListSessionBookings(gctx, clientID); err != nil {
			return fmt.Errorf("fetch bookings for %s: %w", clientID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if recs.workouts, err = s.source.ListWorkoutCompletions(gctx, clientID, since); err != nil {
			return fmt.Errorf("fetch workouts for %s: %w", clientID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if recs.views, err = s.source.ListContentViews(gctx, clientID, since); err != nil {
			return fmt.Errorf("fetch content views for %s: %w", clientID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if recs.milestones, err = s.source.ListMilestoneUnlocks(gctx, clientID, since); err != nil {
			return fmt.Errorf("fetch milestones for %s: %w", clientID, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return records{}, err
	}
	return recs, nil
}

// latestSignal returns the most recent timestamp across activity events,
// booking times, workout completions, and content watch times. Milestones do
// not count toward recency. Nil means no signal at all.
func latestSignal(recs records) *time.Time {
	var latest *time.Time
	consider := func(t time.Time) {
		if latest == nil || t.After(*latest) {
			c := t
			latest = &c
		}
	}
	for _, e := range recs.activity {
		consider(e.OccurredAt)
	}
	for _, b := range recs.bookings {
		consider(b.BookedAt)
	}
	for _, w := range recs.workouts {
		consider(w.CompletedAt)
	}
	for _, v := range recs.views {
		consider(v.LastWatchedAt)
	}
	return latest
}

// ClassifyChurnRisk maps a score/recency pair to a risk level. Evaluated in
// order; the first match wins, so every pair yields exactly one level.
func ClassifyChurnRisk(score float64, daysSinceLastActivity int) model.ChurnRisk {
	switch {
	case score >= lowRiskScore && daysSinceLastActivity <= lowRiskDays:
		return model.RiskLow
	case score < highRiskScore || daysSinceLastActivity > highRiskDays:
		return model.RiskHigh
	default:
		return model.RiskMedium
	}
}

// buildInsights produces the ordered human-readable insight list: engagement
// tier, recency, then per-signal nuggets.
func buildInsights(overall float64, days int, recs records) []string {
	insights := make([]string, 0, 6)

	switch {
	case overall >= activeTierMin:
		insights = append(insights, "Highly engaged - excellent retention")
	case overall >= mediumTierMin:
		insights = append(insights, "Moderately engaged - could benefit from re-engagement")
	default:
		insights = append(insights, "Low engagement - at risk of churning")
	}

	switch {
	case days > highRiskDays:
		insights = append(insights, fmt.Sprintf("No activity for %d days - immediate attention needed", days))
	case days > lowRiskDays:
		insights = append(insights, fmt.Sprintf("%d days since last activity", days))
	default:
		insights = append(insights, "Recently active user")
	}

	switch {
	case len(recs.bookings) == 0:
		insights = append(insights, "Not attending sessions - recommend outreach")
	case len(recs.bookings) >= frequentAttendeeMin:
		insights = append(insights, "Frequent session attendee")
	}

	switch {
	case len(recs.workouts) == 0:
		insights = append(insights, "No workouts completed - review plan")
	case len(recs.workouts) >= consistentWorkoutMin:
		insights = append(insights, "Consistent workout completion")
	}

	if len(recs.views) > 0 {
		insights = append(insights, "Engaged with video content")
	}

	if len(recs.milestones) > 0 {
		insights = append(insights, fmt.Sprintf("Unlocked %d achievements", len(recs.milestones)))
	}

	return insights
}
