// Package report aggregates one completed batch pass into a fleet-level
// engagement report.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/gympulse/engage/internal/domain/model"
)

// Defaults for report generation.
const (
	DefaultTopN = 10

	activeWindowDays = 30
)

// Build produces a Report from the full score list of a single pass. The
// input is never mutated; rankings are value copies, stable-sorted descending
// by overall score with ties kept in input order.
func Build(scores []model.EngagementScore, now time.Time, passID string, topN int) model.Report {
	if topN <= 0 {
		topN = DefaultTopN
	}

	active := 0
	atRisk := 0
	total := 0.0
	distribution := map[model.ChurnRisk]int{
		model.RiskLow:    0,
		model.RiskMedium: 0,
		model.RiskHigh:   0,
	}

	for _, s := range scores {
		if s.DaysSinceLastActivity <= activeWindowDays {
			active++
		}
		if s.ChurnRisk == model.RiskHigh {
			atRisk++
		}
		distribution[s.ChurnRisk]++
		total += s.Overall
	}

	sorted := make([]model.EngagementScore, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Overall > sorted[j].Overall
	})

	average := 0.0
	if len(scores) > 0 {
		average = math.Round(total / float64(len(scores)))
	}

	return model.Report{
		TotalClients:           len(scores),
		ActiveClients:          active,
		AtRiskClients:          atRisk,
		TopEngagedClients:      top(sorted, topN),
		LowEngagedClients:      bottom(sorted, topN),
		ChurnRiskDistribution:  distribution,
		AverageEngagementScore: average,
		GeneratedAt:            now,
		PassID:                 passID,
	}
}

// top returns the first n of the descending-sorted list.
func top(sorted []model.EngagementScore, n int) []model.EngagementScore {
	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]model.EngagementScore, n)
	copy(out, sorted[:n])
	return out
}

// bottom returns the last n of the descending-sorted list, reversed so the
// lowest score comes first.
func bottom(sorted []model.EngagementScore, n int) []model.EngagementScore {
	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]model.EngagementScore, 0, n)
	for i := len(sorted) - 1; i >= len(sorted)-n; i-- {
		out = append(out, sorted[i])
	}
	return out
}
