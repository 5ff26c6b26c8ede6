package scoring_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gympulse/engage/internal/adapters/store"
	"github.com/gympulse/engage/internal/domain/model"
	"github.com/gympulse/engage/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newStoreWithClient(id, name string) *store.MemoryStore {
	s := store.NewMemoryStore()
	s.AddClient(model.Client{ID: id, Name: name, Contact: name + "@example.com"})
	return s
}

func hasInsightContaining(insights []string, substr string) bool {
	for _, in := range insights {
		if strings.Contains(in, substr) {
			return true
		}
	}
	return false
}

func TestScoreDormantClient(t *testing.T) {
	Convey("Given a client with zero records across all five signals", t, func() {
		s := newStoreWithClient("c1", "Ada")
		scorer, err := scoring.New(s)
		So(err, ShouldBeNil)

		score, err := scorer.Score(context.Background(), "c1", now, "pass-1")
		So(err, ShouldBeNil)

		Convey("Then every sub-score and the overall are zero", func() {
			So(score.SubScores.Activity, ShouldEqual, 0)
			So(score.SubScores.Session, ShouldEqual, 0)
			So(score.SubScores.Workout, ShouldEqual, 0)
			So(score.SubScores.Content, ShouldEqual, 0)
			So(score.SubScores.Milestone, ShouldEqual, 0)
			So(score.Overall, ShouldEqual, 0)
		})

		Convey("Then recency falls back to the sentinel", func() {
			So(score.LastActivity, ShouldBeNil)
			So(score.DaysSinceLastActivity, ShouldEqual, model.DaysSentinel)
		})

		Convey("Then the client is classified high risk", func() {
			So(score.ChurnRisk, ShouldEqual, model.RiskHigh)
		})

		Convey("Then the insights flag every missing signal", func() {
			So(hasInsightContaining(score.Insights, "Low engagement"), ShouldBeTrue)
			So(hasInsightContaining(score.Insights, "No activity for 999 days - immediate attention needed"), ShouldBeTrue)
			So(hasInsightContaining(score.Insights, "Not attending sessions"), ShouldBeTrue)
			So(hasInsightContaining(score.Insights, "No workouts completed"), ShouldBeTrue)
		})
	})
}

func TestScoreHighlyActiveClient(t *testing.T) {
	Convey("Given a client saturating activity, sessions, and workouts", t, func() {
		s := newStoreWithClient("c1", "Ada")
		for i := 0; i < 50; i++ {
			s.AddActivity("c1", model.ActivityEvent{ClientID: "c1", OccurredAt: now.Add(-time.Duration(i) * time.Hour)})
		}
		for i := 0; i < 10; i++ {
			s.AddBooking("c1", model.SessionBooking{
				ClientID: "c1", Attended: true,
				BookedAt: now.AddDate(0, 0, -i-1),
				Session:  &model.SessionRef{ID: "s", ScheduledAt: now.AddDate(0, 0, -i)},
			})
		}
		for i := 0; i < 20; i++ {
			s.AddWorkout("c1", model.WorkoutCompletion{ClientID: "c1", CompletedAt: now.AddDate(0, 0, -i%20)})
		}

		scorer, err := scoring.New(s)
		So(err, ShouldBeNil)
		score, err := scorer.Score(context.Background(), "c1", now, "pass-1")
		So(err, ShouldBeNil)

		Convey("Then the three covered signals max out and the rest are zero", func() {
			So(score.SubScores.Activity, ShouldEqual, 100)
			So(score.SubScores.Session, ShouldEqual, 100)
			So(score.SubScores.Workout, ShouldEqual, 100)
			So(score.SubScores.Content, ShouldEqual, 0)
			So(score.SubScores.Milestone, ShouldEqual, 0)
		})

		Convey("Then the overall is the weighted sum, 70", func() {
			So(score.Overall, ShouldEqual, 70)
		})

		Convey("Then recency within 7 days makes the risk low", func() {
			So(score.DaysSinceLastActivity, ShouldBeLessThanOrEqualTo, 7)
			So(score.ChurnRisk, ShouldEqual, model.RiskLow)
		})

		Convey("Then tier and session insights fire", func() {
			So(hasInsightContaining(score.Insights, "Highly engaged"), ShouldBeTrue)
			So(hasInsightContaining(score.Insights, "Frequent session attendee"), ShouldBeTrue)
			So(hasInsightContaining(score.Insights, "Consistent workout completion"), ShouldBeTrue)
		})
	})
}

func TestInsightOrdering(t *testing.T) {
	Convey("Given a client with content views and milestones", t, func() {
		s := newStoreWithClient("c1", "Ada")
		s.AddContentView("c1", model.ContentView{ClientID: "c1", Completed: true, WatchedSeconds: 600, LastWatchedAt: now.AddDate(0, 0, -2)})
		s.AddMilestone("c1",
			model.MilestoneUnlock{ClientID: "c1", UnlockedAt: now.AddDate(0, 0, -1)},
			model.MilestoneUnlock{ClientID: "c1", UnlockedAt: now.AddDate(0, 0, -4)},
			model.MilestoneUnlock{ClientID: "c1", UnlockedAt: now.AddDate(0, 0, -9)},
		)

		scorer, err := scoring.New(s)
		So(err, ShouldBeNil)
		score, err := scorer.Score(context.Background(), "c1", now, "pass-1")
		So(err, ShouldBeNil)

		Convey("Then tier comes first, recency second, nuggets after", func() {
			So(len(score.Insights), ShouldBeGreaterThanOrEqualTo, 5)
			So(score.Insights[0], ShouldContainSubstring, "engage")
			So(score.Insights[1], ShouldEqual, "Recently active user")
			So(score.Insights[len(score.Insights)-2], ShouldEqual, "Engaged with video content")
			So(score.Insights[len(score.Insights)-1], ShouldEqual, "Unlocked 3 achievements")
		})
	})
}

func TestLastActivityAcrossSources(t *testing.T) {
	Convey("Given signals spread across the four recency sources", t, func() {
		s := newStoreWithClient("c1", "Ada")
		s.AddActivity("c1", model.ActivityEvent{ClientID: "c1", OccurredAt: now.AddDate(0, 0, -10)})
		s.AddWorkout("c1", model.WorkoutCompletion{ClientID: "c1", CompletedAt: now.AddDate(0, 0, -6)})
		// Booking time is newer than its session schedule and newer than all else.
		bookedAt := now.AddDate(0, 0, -2)
		s.AddBooking("c1", model.SessionBooking{
			ClientID: "c1", Attended: false, BookedAt: bookedAt,
			Session: &model.SessionRef{ID: "s", ScheduledAt: now.AddDate(0, 0, -20)},
		})

		scorer, err := scoring.New(s)
		So(err, ShouldBeNil)
		score, err := scorer.Score(context.Background(), "c1", now, "pass-1")
		So(err, ShouldBeNil)

		Convey("Then the booking time wins recency", func() {
			So(score.LastActivity, ShouldNotBeNil)
			So(score.LastActivity.Equal(bookedAt), ShouldBeTrue)
			So(score.DaysSinceLastActivity, ShouldEqual, 2)
		})
	})
}

func TestScoreUnknownClient(t *testing.T) {
	Convey("Given an empty store", t, func() {
		s := store.NewMemoryStore()
		scorer, err := scoring.New(s)
		So(err, ShouldBeNil)

		Convey("Then scoring an unknown id surfaces ErrClientNotFound", func() {
			_, err := scorer.Score(context.Background(), "ghost", now, "pass-1")
			So(err, ShouldNotBeNil)
			So(errors.Is(err, store.ErrClientNotFound), ShouldBeTrue)
		})
	})
}

func TestScoreFetchFailure(t *testing.T) {
	Convey("Given a store that fails the booking fetch", t, func() {
		s := newStoreWithClient("c1", "Ada")
		boom := errors.New("connection reset")
		s.FailWith("c1", store.OpListBookings, boom)

		scorer, err := scoring.New(s)
		So(err, ShouldBeNil)

		Convey("Then the client's scoring fails with the underlying cause", func() {
			_, err := scorer.Score(context.Background(), "c1", now, "pass-1")
			So(err, ShouldNotBeNil)
			So(errors.Is(err, boom), ShouldBeTrue)
		})
	})
}

func TestClassifyChurnRisk(t *testing.T) {
	Convey("Given the churn classifier", t, func() {
		cases := []struct {
			score float64
			days  int
			want  model.ChurnRisk
		}{
			{70, 7, model.RiskLow},
			{69, 7, model.RiskMedium},
			{40, 15, model.RiskHigh},
			{39, 0, model.RiskHigh},
			{100, 0, model.RiskLow},
			{70, 8, model.RiskMedium},
			{40, 14, model.RiskMedium},
			{0, 999, model.RiskHigh},
		}

		Convey("Then every pair maps to exactly one level", func() {
			for _, c := range cases {
				So(scoring.ClassifyChurnRisk(c.score, c.days), ShouldEqual, c.want)
			}
		})

		Convey("Then the mapping is total over a dense grid", func() {
			for score := 0.0; score <= 100; score++ {
				for _, days := range []int{0, 1, 7, 8, 14, 15, 30, model.DaysSentinel} {
					risk := scoring.ClassifyChurnRisk(score, days)
					So(risk == model.RiskLow || risk == model.RiskMedium || risk == model.RiskHigh, ShouldBeTrue)
				}
			}
		})
	})
}

func TestWeights(t *testing.T) {
	Convey("Given the default weights", t, func() {
		w := scoring.DefaultWeights()

		Convey("Then they sum to exactly 1.0", func() {
			So(w.Validate(), ShouldBeNil)
			So(w.Activity+w.Session+w.Workout+w.Content+w.Milestone, ShouldEqual, 1.0)
		})
	})

	Convey("Given retuned weights that do not sum to 1.0", t, func() {
		bad := scoring.Weights{Activity: 0.5, Session: 0.5, Workout: 0.5}

		Convey("Then construction is refused", func() {
			_, err := scoring.New(store.NewMemoryStore(), scoring.WithWeights(bad))
			So(err, ShouldNotBeNil)
			So(errors.Is(err, scoring.ErrInvalidWeights), ShouldBeTrue)
		})
	})
}
