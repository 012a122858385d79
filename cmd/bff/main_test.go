package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/boombff/internal/config"
	"github.com/vyrodovalexey/boombff/internal/gateway"
	"github.com/vyrodovalexey/boombff/internal/observability"
)

func mapLookup(env map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("bff", flag.ContinueOnError)
	f, err := parseFlags(fs, []string{"-config", "bff.yaml", "-log-level", "debug", "-log-format", "console", "-version"})
	require.NoError(t, err)
	assert.Equal(t, cliFlags{configPath: "bff.yaml", logLevel: "debug", logFormat: "console", showVersion: true}, f)

	fs = flag.NewFlagSet("bff", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	_, err = parseFlags(fs, []string{"-unknown"})
	assert.Error(t, err)
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("BFF_TEST_GETENV_SET", "env-value")
	t.Setenv("BFF_TEST_GETENV_EMPTY", "")

	assert.Equal(t, "env-value", getEnvOrDefault("BFF_TEST_GETENV_SET", "default"))
	assert.Equal(t, "default", getEnvOrDefault("BFF_TEST_GETENV_EMPTY", "default"))
	assert.Equal(t, "default", getEnvOrDefault("BFF_TEST_GETENV_NOTSET", "default"))
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bff.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n  format: json\n"), 0o600))

	cfg, err := loadConfig(cliFlags{configPath: path}, mapLookup(nil))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)

	cfg, err = loadConfig(cliFlags{configPath: path, logLevel: "debug", logFormat: "console"}, mapLookup(nil))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	_, err = loadConfig(cliFlags{configPath: filepath.Join(t.TempDir(), "missing.yaml")}, mapLookup(nil))
	assert.Error(t, err)
}

func TestPrintVersion(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printVersion(&buf)
	assert.Contains(t, buf.String(), "boombff version dev")
	assert.Contains(t, buf.String(), "Git commit: unknown")
}

func testConfig(t *testing.T, env map[string]string) *config.GatewayConfig {
	t.Helper()

	cfg, err := loadConfig(cliFlags{}, mapLookup(env))
	require.NoError(t, err)
	cfg.Listen.Address = "127.0.0.1:0"
	cfg.Metrics.Address = cfg.Listen.Address
	cfg.Listen.ShutdownTimeout = config.Duration(5 * time.Second)
	require.NoError(t, cfg.Validate())
	return cfg
}

func newEchoBackend(t *testing.T) (*httptest.Server, *http.Header) {
	t.Helper()

	var seen http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"path":"`+r.URL.EscapedPath()+`"}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestNewApplication_EndToEnd(t *testing.T) {
	t.Parallel()

	types, typesSeen := newEchoBackend(t)
	objects, objectsSeen := newEchoBackend(t)

	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<html>boom</html>"), 0o600))

	cfg := testConfig(t, map[string]string{
		"OBJECTTYPES_BASE_URL": types.URL,
		"OBJECTTYPES_API_KEY":  "types-key",
		"OBJECTS_BASE_URL":     objects.URL,
		"OBJECTS_API_KEY":      "objects-key",
	})
	cfg.StaticDir = static

	app, err := newApplication(cfg, observability.NopLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, app.registry.Len())
	assert.Len(t, app.snapshots.Snapshot().Routes(), 2)

	req := httptest.NewRequest(http.MethodGet, "/objecttypes/api/v2/objecttypes", nil)
	req.Header.Set("Cookie", "a=b")
	rec := httptest.NewRecorder()
	app.gateway.Engine().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"path":"/api/v2/objecttypes"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "Token types-key", typesSeen.Get("Authorization"))
	assert.Empty(t, typesSeen.Get("Cookie"))

	req = httptest.NewRequest(http.MethodPost, "/objects/api/v2/objects", strings.NewReader(`{"a":1}`))
	rec = httptest.NewRecorder()
	app.gateway.Engine().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Token objects-key", objectsSeen.Get("Authorization"))
	assert.Equal(t, "EPSG:4326", objectsSeen.Get("Content-Crs"))
	assert.Equal(t, "application/json", objectsSeen.Get("Content-Type"))

	rec = httptest.NewRecorder()
	app.gateway.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "boom")

	rec = httptest.NewRecorder()
	app.gateway.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"routes"`)
}

func TestNewApplication_UpstreamResponsesPassUnchanged(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(backend.Close)

	cfg := testConfig(t, map[string]string{
		"OBJECTS_BASE_URL": backend.URL + "/api/v2",
		"OBJECTS_API_KEY":  "objects-key",
	})
	app, err := newApplication(cfg, observability.NopLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.gateway.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/objects/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, int32(1), calls.Load())

	rec = httptest.NewRecorder()
	app.gateway.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/objects/../healthz", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int32(1), calls.Load(), "dot segments never reach the backend")
}

func TestNewApplication_PropagatesTraceContext(t *testing.T) {
	t.Parallel()

	types, typesSeen := newEchoBackend(t)
	cfg := testConfig(t, map[string]string{
		"OBJECTTYPES_BASE_URL": types.URL,
		"OBJECTTYPES_API_KEY":  "types-key",
	})
	app, err := newApplication(cfg, observability.NopLogger())
	require.NoError(t, err)

	const traceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	req := httptest.NewRequest(http.MethodGet, "/objecttypes/api", nil)
	req.Header.Set("Traceparent", traceparent)
	rec := httptest.NewRecorder()
	app.gateway.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, traceparent, typesSeen.Get("Traceparent"))
}

func TestNewApplication_MissingIntegrationsAreSkipped(t *testing.T) {
	t.Parallel()

	objects, _ := newEchoBackend(t)
	cfg := testConfig(t, map[string]string{
		"OBJECTTYPES_BASE_URL": "https://types.example.test",
		"OBJECTS_BASE_URL":     objects.URL,
		"OBJECTS_API_KEY":      "objects-key",
	})

	app, err := newApplication(cfg, observability.NopLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, app.registry.Len())

	rec := httptest.NewRecorder()
	app.gateway.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/objecttypes/foo", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewApplication_NoIntegrationsIsDegraded(t *testing.T) {
	t.Parallel()

	app, err := newApplication(testConfig(t, nil), observability.NopLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, app.registry.Len())

	rec := httptest.NewRecorder()
	app.gateway.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}

func TestNewApplication_InvalidBaseURLIsFatal(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, map[string]string{
		"OBJECTS_BASE_URL": "not a url",
		"OBJECTS_API_KEY":  "objects-key",
	})

	_, err := newApplication(cfg, observability.NopLogger())
	assert.Error(t, err)
}

func TestNewApplication_RateLimit(t *testing.T) {
	t.Parallel()

	objects, _ := newEchoBackend(t)
	cfg := testConfig(t, map[string]string{
		"OBJECTS_BASE_URL": objects.URL,
		"OBJECTS_API_KEY":  "objects-key",
	})
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 1}

	app, err := newApplication(cfg, observability.NopLogger())
	require.NoError(t, err)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		app.gateway.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/objects/x", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	app, err := newApplication(testConfig(t, nil), observability.NopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, app, observability.NopLogger()) }()

	require.Eventually(t, app.gateway.IsRunning, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + app.gateway.Address() + "/healthz") //nolint:noctx // test
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after cancel")
	}
	assert.Equal(t, gateway.StateStopped, app.gateway.State())
}
