package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/statuswatch/cache"
	"github.com/use-agent/statuswatch/cleaner"
	"github.com/use-agent/statuswatch/config"
	"github.com/use-agent/statuswatch/engine"
	"github.com/use-agent/statuswatch/models"
	"github.com/use-agent/statuswatch/notify"
	"github.com/use-agent/statuswatch/scraper"
	"github.com/use-agent/statuswatch/store"
	"github.com/use-agent/statuswatch/tracker"
)

type stubFetcher struct {
	mu    sync.Mutex
	body  string
	err   error
	calls int
}

func (f *stubFetcher) Fetch(_ context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &engine.FetchResult{Body: f.body, StatusCode: http.StatusOK, FinalURL: req.URL}, nil
}

type okSender struct{ n int }

func (s *okSender) Name() string { return "ok" }
func (s *okSender) Send(context.Context, *notify.Event) error {
	s.n++
	return nil
}

type env struct {
	router  *gin.Engine
	fetcher *stubFetcher
	sender  *okSender
}

func newEnv(t *testing.T, authEnabled bool) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := &stubFetcher{body: `<html><body><p>Result Pending</p></body></html>`}
	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: gin.TestMode},
		Auth:      config.AuthConfig{Enabled: authEnabled, APIKeys: map[string]string{"k-alice": "alice", "k-bob": "bob"}},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		Demo:      config.DemoConfig{Enabled: true},
		Fetch:     config.FetchConfig{Timeout: time.Second},
	}
	sc, err := scraper.NewFromConfig(cfg, f)
	require.NoError(t, err)

	sender := &okSender{}
	cc := cache.New(10)
	t.Cleanup(cc.Close)

	r := NewRouter(Deps{
		Config:         cfg,
		Trackers:       tracker.NewService(st, sc, notify.New(sender)),
		Scraper:        sc,
		Fetcher:        f,
		Previewer:      cleaner.NewPreviewer(),
		Cache:          cc,
		DB:             st,
		NotifyChannels: 1,
		StartTime:      time.Now(),
	})
	return &env{router: r, fetcher: f, sender: sender}
}

func (e *env) do(t *testing.T, method, path, key string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth_NoAuth(t *testing.T) {
	e := newEnv(t, true)
	w := e.do(t, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	h := decode[models.HealthResponse](t, w)
	assert.Equal(t, "healthy", h.Status)
	assert.True(t, h.DemoMode)
	assert.Equal(t, 1, h.NotifyChannels)
}

func TestAuth(t *testing.T) {
	e := newEnv(t, true)

	w := e.do(t, http.MethodGet, "/api/v1/trackers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodGet, "/api/v1/trackers", "wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, models.ErrCodeUnauthorized, decode[models.ErrorResponse](t, w).Error.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trackers", nil)
	req.Header.Set("Authorization", "Bearer k-alice")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTrackerLifecycle(t *testing.T) {
	e := newEnv(t, true)

	w := e.do(t, http.MethodPost, "/api/v1/trackers", "k-alice", models.TrackerCreate{
		Name:       "Results page",
		TargetURL:  "https://example.com/results",
		SearchTerm: "pending",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Tracker](t, w)
	assert.Equal(t, "Found: Result Pending...", created.LastStatus)

	w = e.do(t, http.MethodGet, "/api/v1/trackers", "k-alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Tracker](t, w), 1)

	w = e.do(t, http.MethodGet, "/api/v1/trackers", "k-bob", nil)
	assert.Empty(t, decode[[]models.Tracker](t, w))

	path := "/api/v1/trackers/" + jsonID(created.ID)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, path, "k-bob", nil).Code)

	w = e.do(t, http.MethodPut, "/api/v1/profile/phone", "k-alice", models.PhoneUpdate{PhoneNumber: "+919876543210"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "+919876543210", decode[models.PhoneUpdateResponse](t, w).NewPhone)

	e.fetcher.body = `<html><body><p>Result Declared</p></body></html>`
	w = e.do(t, http.MethodPost, "/api/v1/trackers/"+jsonID(created.ID)+"/refresh", "k-alice", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	// the search term "pending" is gone from the page
	refreshed := decode[models.RefreshResponse](t, w)
	assert.Equal(t, "Term 'pending' not found on page", refreshed.NewStatus)
	assert.True(t, refreshed.StatusChanged)
	assert.True(t, refreshed.NotificationSent)
	assert.Equal(t, 1, e.sender.n)

	w = e.do(t, http.MethodPut, path+"/status", "k-alice", models.StatusChange{NewStatus: "Term 'pending' not found on page"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[models.RefreshResponse](t, w).StatusChanged)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodDelete, path, "k-alice", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodDelete, path, "k-alice", nil).Code)
}

func TestCreateTracker_RejectsFault(t *testing.T) {
	e := newEnv(t, false)
	e.fetcher.err = errors.New("connection refused")

	w := e.do(t, http.MethodPost, "/api/v1/trackers", "", models.TrackerCreate{
		Name:       "x",
		TargetURL:  "https://example.com",
		SearchTerm: "abc",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	detail := decode[models.ErrorResponse](t, w).Error
	assert.Equal(t, models.ErrCodeScrapeRejected, detail.Code)
	assert.Contains(t, detail.Message, "Generic scraping error: connection refused")
}

func TestCreateTracker_Validation(t *testing.T) {
	e := newEnv(t, false)
	w := e.do(t, http.MethodPost, "/api/v1/trackers", "", map[string]string{"name": "x", "target_url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrCodeInvalidInput, decode[models.ErrorResponse](t, w).Error.Code)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/v1/trackers/abc", "", nil).Code)
}

func TestPhone_RejectsNonE164(t *testing.T) {
	e := newEnv(t, false)
	w := e.do(t, http.MethodPut, "/api/v1/profile/phone", "", map[string]string{"phone_number": "98765"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotifyTest(t *testing.T) {
	e := newEnv(t, false)
	w := e.do(t, http.MethodPost, "/api/v1/notify/test", "", models.TestNotification{PhoneNumber: "+14155550100"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.NotificationResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, e.sender.n)
}

func TestScrapeDemo(t *testing.T) {
	e := newEnv(t, false)
	w := e.do(t, http.MethodGet, "/api/v1/scrape/demo", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.ScrapeResponse](t, w)
	assert.Equal(t, scraper.FixedDemoResult, resp.Result)
	assert.Zero(t, e.fetcher.calls)
}

func TestPreview_Cached(t *testing.T) {
	e := newEnv(t, false)
	e.fetcher.body = `<html><head><title>Exam Portal</title></head><body><article><h1>Results</h1><p>Semester results are declared below for all courses.</p></article></body></html>`

	req := models.PreviewRequest{URL: "https://example.com/portal", MaxAge: 60_000}
	w := e.do(t, http.MethodPost, "/api/v1/preview", "", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[models.PreviewResponse](t, w)
	assert.Equal(t, "miss", first.CacheStatus)
	assert.Contains(t, first.Markdown, "Semester results")

	w = e.do(t, http.MethodPost, "/api/v1/preview", "", req)
	assert.Equal(t, "hit", decode[models.PreviewResponse](t, w).CacheStatus)
	assert.Equal(t, 1, e.fetcher.calls)
}

func TestPreview_FetchFailure(t *testing.T) {
	e := newEnv(t, false)
	e.fetcher.err = errors.New("http_engine: HTTP 503 Service Unavailable")

	w := e.do(t, http.MethodPost, "/api/v1/preview", "", models.PreviewRequest{URL: "https://example.com"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, models.ErrCodeFetchFailed, decode[models.ErrorResponse](t, w).Error.Code)
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
