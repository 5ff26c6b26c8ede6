// Package signal holds the five pure sub-score extractors. Each one maps a
// raw record set to a normalized value in [0,100] and tolerates empty input.
package signal

import (
	"math"
	"time"

	"github.com/gympulse/engage/internal/domain/model"
)

// Normalization targets: the record count (or watch time) at which a signal
// saturates at full score.
const (
	activityTarget     = 50.0 // activity events per window
	bookingTarget      = 10.0 // session bookings per window
	workoutTarget      = 20.0 // workout completions per window
	completionTarget   = 10.0 // completed content items
	watchSecondsTarget = 3600.0 // one hour of watch time
	milestoneTarget    = 5.0  // milestone unlocks per window

	maxSubScore = 100.0
)

// ActivitySubScore scores login/activity volume since the window boundary.
func ActivitySubScore(events []model.ActivityEvent, since time.Time) float64 {
	count := 0
	for _, e := range events {
		if !e.OccurredAt.Before(since) {
			count++
		}
	}
	return math.Min(float64(count)/activityTarget, 1) * maxSubScore
}

// SessionSubScore scores booking volume and attendance for sessions scheduled
// since the window boundary. Bookings whose session no longer resolves are
// dropped from both the booked and attended counts.
func SessionSubScore(bookings []model.SessionBooking, since time.Time) float64 {
	booked := 0
	attended := 0
	for _, b := range bookings {
		if b.Session == nil {
			continue
		}
		if b.Session.ScheduledAt.Before(since) {
			continue
		}
		booked++
		if b.Attended {
			attended++
		}
	}
	if booked == 0 {
		return 0
	}

	bookingScore := math.Min(float64(booked)/bookingTarget, 1) * 50
	attendanceRate := float64(attended) / float64(booked) * 100
	attendanceComponent := attendanceRate * 0.5
	return math.Min(bookingScore+attendanceComponent, maxSubScore)
}

// WorkoutSubScore scores workout completion volume since the window boundary.
func WorkoutSubScore(completions []model.WorkoutCompletion, since time.Time) float64 {
	count := 0
	for _, c := range completions {
		if !c.CompletedAt.Before(since) {
			count++
		}
	}
	return math.Min(float64(count)/workoutTarget, 1) * maxSubScore
}

// ContentSubScore scores content consumption: half for completed items, half
// for accumulated watch time. The two capped halves bound it at 100.
func ContentSubScore(views []model.ContentView) float64 {
	completed := 0
	watchedSeconds := 0.0
	for _, v := range views {
		if v.Completed {
			completed++
		}
		watchedSeconds += v.WatchedSeconds
	}

	completionComponent := math.Min(float64(completed)/completionTarget, 1) * 50
	watchTimeComponent := math.Min(watchedSeconds/watchSecondsTarget, 1) * 50
	return completionComponent + watchTimeComponent
}

// MilestoneSubScore scores milestone unlocks since the window boundary.
func MilestoneSubScore(unlocks []model.MilestoneUnlock, since time.Time) float64 {
	count := 0
	for _, u := range unlocks {
		if !u.UnlockedAt.Before(since) {
			count++
		}
	}
	return math.Min(float64(count)/milestoneTarget, 1) * maxSubScore
}
