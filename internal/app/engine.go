// Package app provides the batch engine that turns raw behavioral records
// into cached engagement scores and fleet reports.
package app

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gympulse/engage/internal/adapters/repository"
	"github.com/gympulse/engage/internal/adapters/store"
	"github.com/gympulse/engage/internal/domain/model"
	"github.com/gympulse/engage/internal/domain/report"
	"github.com/gympulse/engage/internal/domain/scoring"
	"github.com/gympulse/engage/pkg/logger"
	"github.com/gympulse/engage/pkg/metrics"
)

// Default engine configuration constants.
const (
	defaultWorkerMultiplier = 2
	defaultClientTimeout    = 10 * time.Second
)

// Engine runs batch scoring passes over the full client fleet and serves the
// cached results.
type Engine struct {
	// mu serializes batch passes; the cache swap must stay single-writer.
	mu sync.Mutex

	store  store.RecordStore
	scorer *scoring.Scorer
	cache  repository.Cache

	workerCount   int
	clientTimeout time.Duration
	topN          int
	lookbackDays  int
	weights       scoring.Weights
	now           func() time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithWorkerCount bounds the number of concurrently scored clients.
func WithWorkerCount(count int) Option {
	return func(e *Engine) {
		if count > 0 {
			e.workerCount = count
		}
	}
}

// WithClientTimeout bounds a single client's scoring, fetches included. A
// slow client converts to the same log-and-skip path as a failed one.
func WithClientTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.clientTimeout = d
		}
	}
}

// WithTopN caps the report's top/bottom ranking length.
func WithTopN(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.topN = n
		}
	}
}

// WithLookbackDays sets the scoring window for all five signals.
func WithLookbackDays(days int) Option {
	return func(e *Engine) {
		if days > 0 {
			e.lookbackDays = days
		}
	}
}

// WithWeights retunes the sub-score combination weights.
func WithWeights(w scoring.Weights) Option {
	return func(e *Engine) {
		e.weights = w
	}
}

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New constructs an Engine over the given record store.
func New(recordStore store.RecordStore, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:         recordStore,
		cache:         repository.NewSnapshotCache(),
		workerCount:   runtime.NumCPU() * defaultWorkerMultiplier,
		clientTimeout: defaultClientTimeout,
		topN:          report.DefaultTopN,
		weights:       scoring.DefaultWeights(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("engine")
	}

	scorerOpts := []scoring.Option{scoring.WithWeights(e.weights)}
	if e.lookbackDays > 0 {
		scorerOpts = append(scorerOpts, scoring.WithLookbackDays(e.lookbackDays))
	}
	scorer, err := scoring.New(recordStore, scorerOpts...)
	if err != nil {
		return nil, err
	}
	e.scorer = scorer

	metrics.UpdateWorkerCount(e.workerCount)
	return e, nil
}

// RunBatch produces a fresh, complete scoring pass over every known client
// and replaces the cache wholesale. Per-client failures are logged and
// skipped; only a client-list fetch failure or caller cancellation aborts
// the pass.
func (e *Engine) RunBatch(ctx context.Context) ([]model.EngagementScore, error) {
	scores, _, err := e.runBatch(ctx)
	return scores, err
}

func (e *Engine) runBatch(ctx context.Context) ([]model.EngagementScore, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	started := time.Now()
	now := e.now()
	passID := uuid.NewString()

	clients, err := e.store.ListClients(ctx)
	if err != nil {
		metrics.RecordBatchFailure()
		return nil, "", fmt.Errorf("%w: %w", ErrClientListFetch, err)
	}

	e.logger.Info(ctx, "starting batch pass",
		logger.String("passID", passID),
		logger.Int("clients", len(clients)),
		logger.Int("workers", e.workerCount),
	)

	// Results are collected per index so the pass preserves client-list
	// order; failed slots stay nil and are compacted out.
	results := make([]*model.EngagementScore, len(clients))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)
	for i, c := range clients {
		i, c := i, c
		g.Go(func() error {
			clientCtx, cancel := context.WithTimeout(gctx, e.clientTimeout)
			defer cancel()

			scoreStart := time.Now()
			score, err := e.scorer.Score(clientCtx, c.ID, now, passID)
			if err != nil {
				// Log and skip; a single client never aborts the pass.
				metrics.RecordClientSkipped()
				e.logger.Error(ctx, "client scoring failed, skipping",
					logger.String("passID", passID),
					logger.String("clientID", c.ID),
					logger.Error(err),
				)
				return nil
			}
			metrics.RecordClientScored(time.Since(scoreStart))
			results[i] = &score
			return nil
		})
	}
	// Workers never return errors, so Wait only reflects group setup.
	_ = g.Wait()

	// A cancelled pass must not wipe the previous snapshot.
	if err := ctx.Err(); err != nil {
		metrics.RecordBatchFailure()
		return nil, "", fmt.Errorf("batch pass aborted: %w", err)
	}

	scores := make([]model.EngagementScore, 0, len(results))
	for _, r := range results {
		if r != nil {
			scores = append(scores, *r)
		}
	}

	finishedAt := e.now()
	e.cache.Replace(ctx, scores, finishedAt)

	e.observePass(scores, finishedAt, time.Since(started))
	e.logger.Info(ctx, "batch pass complete",
		logger.String("passID", passID),
		logger.Int("scored", len(scores)),
		logger.Int("skipped", len(clients)-len(scores)),
		logger.Duration("took", time.Since(started)),
	)
	return scores, passID, nil
}

func (e *Engine) observePass(scores []model.EngagementScore, finishedAt time.Time, took time.Duration) {
	metrics.RecordBatchPass(took)
	metrics.UpdateCacheSize(len(scores))
	metrics.UpdateCacheLastComputed(finishedAt)

	distribution := map[model.ChurnRisk]int{}
	total := 0.0
	for _, s := range scores {
		distribution[s.ChurnRisk]++
		total += s.Overall
	}
	for _, risk := range []model.ChurnRisk{model.RiskLow, model.RiskMedium, model.RiskHigh} {
		metrics.UpdateChurnRiskClients(string(risk), distribution[risk])
	}
	if len(scores) > 0 {
		metrics.UpdateAverageScore(total / float64(len(scores)))
	} else {
		metrics.UpdateAverageScore(0)
	}
}

// CachedScores returns all scores from the most recent pass.
func (e *Engine) CachedScores(ctx context.Context) []model.EngagementScore {
	return e.cache.ListAll(ctx)
}

// CachedScore returns the most recent score for one client.
// Returns repository.ErrScoreNotFound if the client was not in the last pass.
func (e *Engine) CachedScore(ctx context.Context, clientID string) (model.EngagementScore, error) {
	return e.cache.Get(ctx, clientID)
}

// CacheInfo reports the cached snapshot's size and computation time.
// Staleness is the caller's judgment; the engine never auto-invalidates.
func (e *Engine) CacheInfo(ctx context.Context) model.CacheInfo {
	return e.cache.Info(ctx)
}

// GenerateReport runs a fresh batch pass and aggregates it. The caller gets
// a complete report or an error, never a partial one mixed with stale cache
// data.
func (e *Engine) GenerateReport(ctx context.Context) (model.Report, error) {
	scores, passID, err := e.runBatch(ctx)
	if err != nil {
		return model.Report{}, err
	}
	r := report.Build(scores, e.now(), passID, e.topN)
	metrics.RecordReportGenerated()
	return r, nil
}

// Stats returns engine statistics for monitoring.
func (e *Engine) Stats(ctx context.Context) map[string]interface{} {
	info := e.cache.Info(ctx)
	return map[string]interface{}{
		"workerCount":    e.workerCount,
		"clientTimeout":  e.clientTimeout.String(),
		"cachedScores":   info.Count,
		"lastComputedAt": info.LastComputedAt,
	}
}
