package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/narcan-map/internal/domain"
	"github.com/couchcryptid/narcan-map/internal/observability"
)

// ErrSuperseded is returned by Load when a newer load started, or the load's
// context ended, before its result could be applied.
var ErrSuperseded = errors.New("load superseded")

// Publisher receives every map state the controller applies.
type Publisher interface {
	Publish(ctx context.Context, state *domain.MapState) error
}

// Controller owns the current map state. Each load replaces the state
// wholesale; readers never observe a partially built state.
type Controller struct {
	loader    domain.Loader
	source    string
	policy    domain.MarkerPolicy
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics

	state  atomic.Pointer[domain.MapState]
	ready  atomic.Bool
	reload chan struct{}

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

// New creates a Controller. source labels the loaded resource in state and logs.
// Pass a nil publisher to disable publishing.
func New(loader domain.Loader, source string, policy domain.MarkerPolicy, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	if policy == nil {
		policy = domain.AllCases
	}
	c := &Controller{
		loader:    loader,
		source:    source,
		policy:    policy,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		reload:    make(chan struct{}, 1),
	}
	c.state.Store(domain.EmptyMapState())
	metrics.Stations.Set(float64(domain.StationCount()))
	return c
}

// State returns the current map state. It is never nil.
func (c *Controller) State() *domain.MapState {
	return c.state.Load()
}

// CheckReadiness returns nil once a load has completed successfully.
func (c *Controller) CheckReadiness(_ context.Context) error {
	if !c.ready.Load() {
		return errors.New("case data has not been loaded yet")
	}
	return nil
}

// RequestReload asks Run to start a new load. Requests made while one is
// already pending are coalesced.
func (c *Controller) RequestReload() {
	select {
	case c.reload <- struct{}{}:
	default:
	}
}

// Run performs the initial load, then starts a new load for every reload
// request until ctx is cancelled. It waits for in-flight loads before returning.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Info("controller started", "source", c.source)

	var wg sync.WaitGroup
	start := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Load(ctx)
		}()
	}

	start()
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("controller stopping", "reason", ctx.Err())
			wg.Wait()
			return nil
		case <-c.reload:
			c.logger.Debug("reload requested")
			start()
		}
	}
}

// Load fetches, parses, and transforms the CSV, then swaps in the new state.
// Starting a load cancels any load still in flight. On failure the current
// state is kept.
func (c *Controller) Load(ctx context.Context) (*domain.MapState, error) {
	gen, loadCtx, done := c.begin(ctx)
	defer done()

	start := time.Now()
	text, err := c.loader.Load(loadCtx)
	if err != nil {
		if loadCtx.Err() != nil {
			c.metrics.Loads.WithLabelValues("cancelled").Inc()
			c.logger.Info("csv load cancelled", "generation", gen, "error", err)
			return nil, err
		}
		c.metrics.Loads.WithLabelValues("failure").Inc()
		c.logger.Error("csv load failed", "generation", gen, "source", c.source, "error", err)
		return nil, err
	}

	data, stats := domain.TransformText(text, c.policy)
	state := domain.NewMapState(data, stats, c.source, gen)

	if !c.apply(gen, loadCtx, state) {
		c.metrics.Loads.WithLabelValues("cancelled").Inc()
		c.logger.Info("stale load discarded", "generation", gen)
		return nil, ErrSuperseded
	}

	c.ready.Store(true)
	c.metrics.Loads.WithLabelValues("success").Inc()
	c.metrics.LoadDuration.Observe(time.Since(start).Seconds())
	c.metrics.RowsRead.Add(float64(stats.RowsRead))
	c.metrics.RowsSkipped.Add(float64(stats.RowsSkipped))
	c.metrics.HeatPoints.Set(float64(stats.HeatPoints))
	c.metrics.CaseMarkers.Set(float64(stats.Markers))
	c.metrics.Generation.Set(float64(gen))
	c.logger.Info("map state updated",
		"generation", gen,
		"rows_read", stats.RowsRead,
		"heat_points", stats.HeatPoints,
		"markers", stats.Markers,
	)

	c.publish(loadCtx, state)
	return state, nil
}

// begin registers a new load generation and cancels the previous one.
func (c *Controller) begin(ctx context.Context) (uint64, context.Context, func()) {
	loadCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	c.cancel = cancel
	c.mu.Unlock()

	return gen, loadCtx, func() {
		c.mu.Lock()
		if c.generation == gen {
			c.cancel = nil
		}
		c.mu.Unlock()
		cancel()
	}
}

// apply stores state if gen is still the latest load and its context is live.
func (c *Controller) apply(gen uint64, loadCtx context.Context, state *domain.MapState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || loadCtx.Err() != nil {
		return false
	}
	c.state.Store(state)
	return true
}

func (c *Controller) publish(ctx context.Context, state *domain.MapState) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, state); err != nil {
		c.metrics.PublishErrors.Inc()
		c.logger.Warn("publish map state failed", "generation", state.Generation, "error", err)
		return
	}
	c.metrics.PublishedMarkers.Add(float64(len(state.Data.Markers)))
}
