package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/memestock/internal/api/handlers"
	"github.com/wonny/memestock/internal/contracts"
	"github.com/wonny/memestock/internal/insight"
	"github.com/wonny/memestock/internal/scheduler"
	"github.com/wonny/memestock/pkg/logger"
)

var t0 = time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

type fakeSnapshots struct {
	mu   sync.Mutex
	snap *contracts.Snapshot
}

func (f *fakeSnapshots) Latest() *contracts.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeSnapshots) LastUpdateSuccess() bool {
	return f.Latest().IsSuccess()
}

type fakeRunner struct {
	ran []string
	err error
}

func (f *fakeRunner) RunJob(name string) error {
	f.ran = append(f.ran, name)
	return f.err
}

type fakeQuota struct{ status []contracts.ProviderStatus }

func (f fakeQuota) Status() []contracts.ProviderStatus { return f.status }

type fakeForums struct{}

func (fakeForums) Configured() []string    { return []string{"wallstreetbets", "stocks"} }
func (fakeForums) Dynamic() string         { return "superstonk" }
func (fakeForums) DiscoveredAt() time.Time { return t0 }
func (fakeForums) Forums() []string        { return []string{"wallstreetbets", "stocks", "superstonk"} }

type fakeJobs struct{}

func (fakeJobs) GetJobStats() map[string]scheduler.JobStats {
	return map[string]scheduler.JobStats{"refresh": {JobName: "refresh", Schedule: "@every 5m0s", TotalRuns: 4}}
}

func snapshot() *contracts.Snapshot {
	price := 27.5
	s := contracts.EmptySnapshot(contracts.StatusSuccess, t0)
	s.CycleID = "cycle-1"
	s.Aggregate.TotalMentions = 5
	s.Aggregate.Trending = []contracts.TickerCount{{Ticker: "GME", Mentions: 5}}
	s.Top = []contracts.TopEntity{{
		Rank: 1, Ticker: "GME", CompanyName: "GameStop Corp.", Mentions: 5,
		Quote: &contracts.PriceQuote{Ticker: "GME", CurrentPrice: &price, PriceChangePct: 3.1, Provider: "yahoo"},
	}}
	s.Stage = contracts.StageResult{Stage: contracts.StageRisingInterest, Reason: "growing"}
	return s
}

type env struct {
	snaps  *fakeSnapshots
	runner *fakeRunner
	hub    *Hub
	router http.Handler
}

func newEnv(runner *fakeRunner) *env {
	log := logger.Nop()
	snaps := &fakeSnapshots{snap: snapshot()}
	var jr handlers.JobRunner
	if runner != nil {
		jr = runner
	}
	hub := NewHub(snaps, log)
	quota := fakeQuota{status: []contracts.ProviderStatus{
		{Name: "yahoo", CallsUsed: 3},
		{Name: "alpha_vantage", CallsUsed: 500, DailyLimit: 500, Exhausted: true},
	}}
	router := NewRouter(Routes{
		Insight: handlers.NewInsightHandler(snaps, jr, "refresh", 3, log),
		Status:  handlers.NewStatusHandler(quota, fakeForums{}, fakeJobs{}, log),
		Hub:     hub,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("memestock_total_mentions 5\n"))
		}),
	}, log)
	return &env{snaps: snaps, runner: runner, hub: hub, router: router}
}

func (e *env) do(method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	e := newEnv(&fakeRunner{})
	rec := e.do(http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestGetSnapshot(t *testing.T) {
	e := newEnv(&fakeRunner{})
	rec := e.do(http.MethodGet, "/api/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)

	var got contracts.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "cycle-1", got.CycleID)
	assert.Equal(t, contracts.StatusSuccess, got.Status)
	require.Len(t, got.Top, 1)
	assert.Equal(t, 27.5, *got.Top[0].Quote.CurrentPrice)
}

func TestGetMetrics(t *testing.T) {
	e := newEnv(&fakeRunner{})
	rec := e.do(http.MethodGet, "/api/metrics?top=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var got handlers.MetricsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.LastUpdateSuccess)

	names := map[string]interface{}{}
	for _, m := range got.Metrics {
		names[m.Name] = m.Value
	}
	assert.Contains(t, names, insight.MemeMetricName(1))
	assert.NotContains(t, names, insight.MemeMetricName(2))
	assert.Equal(t, float64(5), names["total_mentions"])
}

func TestGetMetrics_BadTop(t *testing.T) {
	e := newEnv(&fakeRunner{})
	for _, q := range []string{"0", "11", "abc"} {
		rec := e.do(http.MethodGet, "/api/metrics?top="+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestRefresh(t *testing.T) {
	runner := &fakeRunner{}
	e := newEnv(runner)

	rec := e.do(http.MethodPost, "/api/refresh")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"refresh"}, runner.ran)

	rec = e.do(http.MethodGet, "/api/refresh")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRefresh_Errors(t *testing.T) {
	e := newEnv(&fakeRunner{err: errors.New("job refresh not found")})
	assert.Equal(t, http.StatusInternalServerError, e.do(http.MethodPost, "/api/refresh").Code)

	e = newEnv(nil)
	assert.Equal(t, http.StatusServiceUnavailable, e.do(http.MethodPost, "/api/refresh").Code)
}

func TestGetQuota(t *testing.T) {
	e := newEnv(&fakeRunner{})
	rec := e.do(http.MethodGet, "/api/quota")
	require.Equal(t, http.StatusOK, rec.Code)

	var got handlers.QuotaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Providers, 2)
	assert.Equal(t, -1, got.Providers[0].Remaining)
	assert.Equal(t, 0, got.Providers[1].Remaining)
	assert.False(t, got.AllExhausted)
}

func TestGetForums(t *testing.T) {
	e := newEnv(&fakeRunner{})
	rec := e.do(http.MethodGet, "/api/forums")
	require.Equal(t, http.StatusOK, rec.Code)

	var got handlers.ForumsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "superstonk", got.Dynamic)
	assert.Len(t, got.Active, 3)
	require.NotNil(t, got.DiscoveredAt)
	assert.True(t, got.DiscoveredAt.Equal(t0))
}

func TestGetJobs(t *testing.T) {
	e := newEnv(&fakeRunner{})
	rec := e.do(http.MethodGet, "/api/jobs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_runs":4`)
}

func TestPrometheusEndpoint(t *testing.T) {
	e := newEnv(&fakeRunner{})
	rec := e.do(http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "memestock_total_mentions")
}

func TestRecovery(t *testing.T) {
	log := logger.Nop()
	h := recoveryMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebSocket_LatestThenPublished(t *testing.T) {
	e := newEnv(&fakeRunner{})
	srv := httptest.NewServer(e.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/snapshot"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first contracts.Snapshot
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "cycle-1", first.CycleID)

	require.Eventually(t, func() bool { return e.hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	next := snapshot()
	next.CycleID = "cycle-2"
	e.hub.Publish(next)

	var second contracts.Snapshot
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, "cycle-2", second.CycleID)

	e.hub.Close()
	assert.Equal(t, 0, e.hub.ClientCount())
}
