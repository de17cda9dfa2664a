package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/narcan-map/internal/adapter/source"
	"github.com/couchcryptid/narcan-map/internal/domain"
	"github.com/couchcryptid/narcan-map/internal/observability"
	"github.com/couchcryptid/narcan-map/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSource = "test:od.csv"
	testCSV    = "LAT,LON,Involves_fentanyl,COD Variant,Race,Age,Gender,Date\n" +
		"37.7749,-122.4194,TRUE,Acute Intoxication,White,34,M,2021-03-01\n" +
		"37.7599,-122.4148,FALSE,Acute Methamphetamine Intoxication,Latinx,42,F,2020-02-14\n" +
		"N/A,-122.4,TRUE,Acute Intoxication,Black,47,M,2020-05-30\n"
)

// --- mocks ---

// scriptedLoader runs a different function for each successive Load call.
type scriptedLoader struct {
	calls atomic.Int64
	steps []func(ctx context.Context) (string, error)
}

func (l *scriptedLoader) Load(ctx context.Context) (string, error) {
	i := int(l.calls.Add(1) - 1)
	if i >= len(l.steps) {
		i = len(l.steps) - 1
	}
	return l.steps[i](ctx)
}

func staticText(text string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return text, nil }
}

func failing(err error) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return "", domain.LoadError(testSource, err) }
}

// blockUntilCancelled signals started, then waits for the load context to end.
func blockUntilCancelled(started chan<- struct{}) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		return "", domain.LoadError(testSource, ctx.Err())
	}
}

// ignoreCancel signals started, then returns text once released regardless of ctx.
func ignoreCancel(started chan<- struct{}, release <-chan struct{}, text string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		close(started)
		<-release
		return text, nil
	}
}

type mockPublisher struct {
	mu     sync.Mutex
	err    error
	states []*domain.MapState
}

func (p *mockPublisher) Publish(_ context.Context, state *domain.MapState) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, state)
	return p.err
}

func (p *mockPublisher) published() []*domain.MapState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*domain.MapState(nil), p.states...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newController(loader domain.Loader, policy domain.MarkerPolicy, pub pipeline.Publisher) (*pipeline.Controller, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	return pipeline.New(loader, testSource, policy, pub, discardLogger(), metrics), metrics
}

// --- tests ---

func TestController_InitialStateEmpty(t *testing.T) {
	c, metrics := newController(&scriptedLoader{steps: nil}, nil, nil)

	state := c.State()
	require.NotNil(t, state)
	assert.Empty(t, state.Data.Heat)
	assert.Empty(t, state.Data.Markers)
	assert.Error(t, c.CheckReadiness(context.Background()))
	assert.InDelta(t, 45, testutil.ToFloat64(metrics.Stations), 0)
}

func TestController_Load_HappyPath(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2021, time.March, 1, 12, 0, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() { domain.SetClock(nil) })

	pub := &mockPublisher{}
	c, metrics := newController(&scriptedLoader{steps: []func(context.Context) (string, error){staticText(testCSV)}}, domain.AllCases, pub)

	state, err := c.Load(context.Background())
	require.NoError(t, err)

	assert.Same(t, state, c.State())
	assert.Equal(t, []domain.GeoPoint{{Lat: 37.7749, Lon: -122.4194}}, state.Data.Heat)
	require.Len(t, state.Data.Markers, 2)
	assert.Equal(t, "Acute Intoxication", state.Data.Markers[0].COD)
	assert.Equal(t, "Latinx", state.Data.Markers[1].Race)
	assert.Equal(t, uint64(1), state.Generation)
	assert.Equal(t, testSource, state.Source)
	assert.Equal(t, fakeClock.Now(), state.LoadedAt)
	assert.Equal(t, domain.TransformStats{RowsRead: 3, RowsSkipped: 1, HeatPoints: 1, Markers: 2}, state.Stats)
	assert.NoError(t, c.CheckReadiness(context.Background()))

	require.Len(t, pub.published(), 1)
	assert.Same(t, state, pub.published()[0])

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Loads.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.HeatPoints), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.CaseMarkers), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RowsSkipped), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.PublishedMarkers), 0)
}

func TestController_Load_FentanylOnlyPolicy(t *testing.T) {
	c, _ := newController(&scriptedLoader{steps: []func(context.Context) (string, error){staticText(testCSV)}}, domain.FentanylOnly, nil)

	state, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, state.Data.Markers, 1)
	assert.Len(t, state.Data.Heat, 1)
}

func TestController_Load_FailureKeepsEmptyState(t *testing.T) {
	pub := &mockPublisher{}
	c, metrics := newController(&scriptedLoader{steps: []func(context.Context) (string, error){failing(errors.New("404 not found"))}}, nil, pub)

	state, err := c.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLoadFailure)
	assert.Nil(t, state)

	assert.Empty(t, c.State().Data.Heat)
	assert.Empty(t, c.State().Data.Markers)
	assert.Error(t, c.CheckReadiness(context.Background()))
	assert.Empty(t, pub.published())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Loads.WithLabelValues("failure")), 0)
}

func TestController_Load_FailureKeepsPreviousState(t *testing.T) {
	loader := &scriptedLoader{steps: []func(context.Context) (string, error){
		staticText(testCSV),
		failing(errors.New("connection reset")),
	}}
	c, _ := newController(loader, nil, nil)

	first, err := c.Load(context.Background())
	require.NoError(t, err)

	_, err = c.Load(context.Background())
	require.Error(t, err)

	assert.Same(t, first, c.State())
	assert.NoError(t, c.CheckReadiness(context.Background()))
}

func TestController_Load_MalformedFileYieldsEmptyCollections(t *testing.T) {
	c, _ := newController(&scriptedLoader{steps: []func(context.Context) (string, error){staticText("<html>not a csv</html>")}}, nil, nil)

	state, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.Data.Heat)
	assert.Empty(t, state.Data.Markers)
}

func TestController_Load_NewLoadCancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	loader := &scriptedLoader{steps: []func(context.Context) (string, error){
		blockUntilCancelled(started),
		staticText(testCSV),
	}}
	c, metrics := newController(loader, nil, nil)

	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Load(context.Background())
		firstErr <- err
	}()
	<-started

	state, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), state.Generation)

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("first load was not cancelled")
	}

	assert.Same(t, state, c.State())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Loads.WithLabelValues("cancelled")), 0)
}

func TestController_Load_StaleResultDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	loader := &scriptedLoader{steps: []func(context.Context) (string, error){
		ignoreCancel(started, release, "LAT,LON,Involves_fentanyl\n1,2,TRUE\n"),
		staticText(testCSV),
	}}
	pub := &mockPublisher{}
	c, _ := newController(loader, nil, pub)

	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Load(context.Background())
		firstErr <- err
	}()
	<-started

	second, err := c.Load(context.Background())
	require.NoError(t, err)
	close(release)

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, pipeline.ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("first load did not return")
	}

	assert.Same(t, second, c.State())
	require.Len(t, pub.published(), 1)
	assert.Same(t, second, pub.published()[0])
}

func TestController_Load_PublishErrorDoesNotAffectState(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker unavailable")}
	c, metrics := newController(&scriptedLoader{steps: []func(context.Context) (string, error){staticText(testCSV)}}, nil, pub)

	state, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, state, c.State())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.PublishErrors), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PublishedMarkers), 0)
}

func TestController_Run_InitialLoadAndReload(t *testing.T) {
	loader := &scriptedLoader{steps: []func(context.Context) (string, error){staticText(testCSV)}}
	c, _ := newController(loader, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return c.State().Generation == 1 }, 2*time.Second, 10*time.Millisecond)

	c.RequestReload()
	require.Eventually(t, func() bool { return c.State().Generation == 2 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
	assert.Equal(t, int64(2), loader.calls.Load())
}

func TestController_Run_CancelAbortsInFlightLoad(t *testing.T) {
	started := make(chan struct{})
	c, _ := newController(&scriptedLoader{steps: []func(context.Context) (string, error){blockUntilCancelled(started)}}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	<-started
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
	assert.Empty(t, c.State().Data.Markers)
	assert.Error(t, c.CheckReadiness(context.Background()))
}

func TestController_RequestReload_Coalesces(t *testing.T) {
	c, _ := newController(&scriptedLoader{steps: []func(context.Context) (string, error){staticText(testCSV)}}, nil, nil)

	// No Run loop is draining; extra requests must not block.
	c.RequestReload()
	c.RequestReload()
	c.RequestReload()
}

func TestController_MockFixture(t *testing.T) {
	loader := source.NewFileLoader(filepath.Join("..", ".."), "data/mock/od_deaths_sample.csv")

	cases := []struct {
		name    string
		policy  domain.MarkerPolicy
		markers int
	}{
		{name: "all cases", policy: domain.AllCases, markers: 9},
		{name: "fentanyl only", policy: domain.FentanylOnly, markers: 6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newController(loader, tc.policy, nil)

			state, err := c.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 11, state.Stats.RowsRead)
			assert.Equal(t, 2, state.Stats.RowsSkipped)
			assert.Len(t, state.Data.Heat, 6)
			assert.Len(t, state.Data.Markers, tc.markers)
			assert.Equal(t, domain.GeoPoint{Lat: 37.7749, Lon: -122.4194}, state.Data.Heat[0])
		})
	}
}
