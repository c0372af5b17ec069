package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func echoBrowser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(BrowserFromContext(r.Context())))
	})
}

func TestBrowserIdentityIssuesCookie(t *testing.T) {
	h := BrowserIdentity(false)(echoBrowser())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, BrowserCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, cookies[0].Value, rec.Body.String())
	_, err := uuid.Parse(cookies[0].Value)
	assert.NoError(t, err)
}

func TestBrowserIdentityReusesCookie(t *testing.T) {
	h := BrowserIdentity(false)(echoBrowser())
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: BrowserCookie, Value: id})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, id, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestBrowserIdentityReplacesForgedCookie(t *testing.T) {
	h := BrowserIdentity(false)(echoBrowser())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: BrowserCookie, Value: "../../etc"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEqual(t, "../../etc", rec.Body.String())
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(2, 0)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

func TestRateLimitSkipsHealthPaths(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := RateLimit(NewRateLimiter(ctx, 1, 0))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/samples", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/samples", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestEvictIdle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 1, 1)
	rl.Allow("a")
	rl.getBucket("a").lastUsed = time.Now().Add(-time.Hour)
	rl.Allow("b")

	rl.evictIdle(10 * time.Minute)

	assert.Len(t, rl.buckets, 1)
	assert.Contains(t, rl.buckets, "b")
}

func TestHealthHandler(t *testing.T) {
	ok := CheckerFunc(func(context.Context) error { return nil })
	down := CheckerFunc(func(context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	HealthHandler(Readiness{
		Backends: map[string]string{"sessions": "redis"},
		Checkers: map[string]HealthChecker{"sessions": ok},
	})(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)

	rec = httptest.NewRecorder()
	HealthHandler(Readiness{
		Backends: map[string]string{"sessions": "redis", "reports": "minio"},
		Checkers: map[string]HealthChecker{"sessions": ok, "reports": down},
	})(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestHealthHandlerReportsConfiguredBackends(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler(Readiness{
		Backends: map[string]string{"sessions": "memory", "records": "postgres"},
		Checkers: map[string]HealthChecker{"records": CheckerFunc(func(context.Context) error { return nil })},
		Started:  time.Now().Add(-time.Minute),
	})(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status   string `json:"status"`
		Uptime   string `json:"uptime"`
		Backends map[string]struct {
			Driver string `json:"driver"`
			Ready  bool   `json:"ready"`
		} `json:"backends"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.NotEmpty(t, body.Uptime)
	require.Len(t, body.Backends, 2)
	assert.Equal(t, "memory", body.Backends["sessions"].Driver)
	assert.True(t, body.Backends["sessions"].Ready)
	assert.Equal(t, "postgres", body.Backends["records"].Driver)
	assert.True(t, body.Backends["records"].Ready)
}

func TestLoggingLevels(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.EqualValues(t, http.StatusBadGateway, entries[1].ContextMap()["status"])
}

func TestValidators(t *testing.T) {
	assert.NoError(t, ValidateSampleID(uuid.NewString()))
	assert.Error(t, ValidateSampleID(""))
	assert.Error(t, ValidateSampleID("1; drop table"))

	assert.NoError(t, ValidateProfileField("age", "30"))
	assert.Error(t, ValidateProfileField("age", string(make([]byte, 64))))

	assert.Equal(t, "abc", SanitizeString(" a\x00b\x07c "))
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 100, ValidateLimit(500))
	assert.Equal(t, 1, ValidatePage(-3))
}

func TestMetricsCounters(t *testing.T) {
	before := GetMetrics()
	done := StartAnalysis()
	assert.Equal(t, before["analyses_running"].(uint64)+1, GetMetrics()["analyses_running"])
	done(true)
	after := GetMetrics()
	assert.Equal(t, before["analyses_running"], after["analyses_running"])
	assert.Equal(t, before["analyses_failed"].(uint64)+1, after["analyses_failed"])
}
