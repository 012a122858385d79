package dispatch

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/boombff/internal/credential"
	"github.com/vyrodovalexey/boombff/internal/observability"
	"github.com/vyrodovalexey/boombff/internal/route"
	"github.com/vyrodovalexey/boombff/internal/snapshot"
)

// failingTarget stands in for a descriptor whose credential was lost, which
// registration normally makes unreachable.
type failingTarget struct{}

func (failingTarget) Name() string { return "objects" }

func (failingTarget) Apply(*http.Request) error {
	return credential.New("").ApplyTo(http.Header{})
}

func counterValue(t *testing.T, m *observability.Metrics, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			got := make(map[string]string, len(metric.GetLabel()))
			for _, lp := range metric.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			if assert.ObjectsAreEqual(labels, got) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func transforms(cluster, outcome string) map[string]string {
	return map[string]string{"cluster": cluster, "outcome": outcome}
}

func newRegistry(t *testing.T) *route.Registry {
	t.Helper()

	r := route.NewRegistry(nil)
	types, err := route.NewTypeCatalog("objecttypes", "https://types.example.test", "types-token")
	require.NoError(t, err)
	objects, err := route.NewRecordStorage("objects", "https://api.example.test", "abc123")
	require.NoError(t, err)
	require.NoError(t, r.Register(types))
	require.NoError(t, r.Register(objects))
	return r
}

func outbound(method, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, "https://api.example.test/foo", strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, "https://api.example.test/foo", nil)
	}
	req.Header.Set("Cookie", "session=1")
	return req
}

func TestDispatcher_Apply_ResolvesByCluster(t *testing.T) {
	t.Parallel()

	d := New(newRegistry(t))

	req := outbound(http.MethodPost, `{"x":1}`)
	require.NoError(t, d.Apply("objects/{**remainder}", req))
	assert.Equal(t, "Token abc123", req.Header.Get("Authorization"))
	assert.Equal(t, "EPSG:4326", req.Header.Get("Content-Crs"))
	assert.Empty(t, req.Header.Get("Cookie"))

	req = outbound(http.MethodPost, `{"x":1}`)
	require.NoError(t, d.Apply("objecttypes/{**remainder}", req))
	assert.Equal(t, "Token types-token", req.Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("Content-Crs"))
}

func TestDispatcher_Apply_UnknownClusterPassesThrough(t *testing.T) {
	t.Parallel()

	metrics := observability.NewMetrics("test")
	d := New(newRegistry(t), WithMetrics(metrics))

	req := outbound(http.MethodGet, "")
	before := req.Header.Clone()

	require.NoError(t, d.Apply("static", req))
	require.NoError(t, d.Apply("", req))
	assert.Equal(t, before, req.Header)

	assert.Equal(t, 2.0, counterValue(t, metrics, "test_transforms_total",
		transforms(observability.UnmatchedRoute, observability.TransformPassthrough)))
}

func TestDispatcher_Apply_TransformError(t *testing.T) {
	t.Parallel()

	metrics := observability.NewMetrics("test")
	d := New(newRegistry(t), WithMetrics(metrics))
	d.resolve = func(string) (target, bool) { return failingTarget{}, true }

	req := outbound(http.MethodGet, "")
	err := d.Apply("objects/{**remainder}", req)

	require.Error(t, err)
	assert.ErrorIs(t, err, credential.ErrMisconfiguredCredential)
	assert.Equal(t, "session=1", req.Header.Get("Cookie"))
	assert.Equal(t, 1.0, counterValue(t, metrics, "test_transforms_total",
		transforms("objects/{**remainder}", observability.TransformFailed)))
}

func TestDispatcher_Apply_RecordsApplied(t *testing.T) {
	t.Parallel()

	metrics := observability.NewMetrics("test")
	d := New(newRegistry(t), WithMetrics(metrics), WithLogger(observability.NopLogger()))

	require.NoError(t, d.Apply("objects/{**remainder}", outbound(http.MethodGet, "")))
	require.NoError(t, d.Apply("objects/{**remainder}", outbound(http.MethodGet, "")))

	assert.Equal(t, 2.0, counterValue(t, metrics, "test_transforms_total",
		transforms("objects/{**remainder}", observability.TransformApplied)))
}

func TestDispatcher_Validate(t *testing.T) {
	t.Parallel()

	d := New(newRegistry(t))
	assert.NoError(t, d.ValidateRoute(snapshot.RouteConfig{RouteID: "x"}))
	assert.NoError(t, d.ValidateCluster(snapshot.ClusterConfig{ClusterID: "x"}))
}

func TestDispatcher_ConcurrentApply(t *testing.T) {
	t.Parallel()

	d := New(newRegistry(t), WithMetrics(observability.NewMetrics("test")))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			method := http.MethodGet
			body := ""
			if i%2 == 0 {
				method, body = http.MethodPost, `{"i":1}`
			}
			req := outbound(method, body)
			assert.NoError(t, d.Apply("objects/{**remainder}", req))
			assert.Equal(t, "Token abc123", req.Header.Get("Authorization"))
			assert.Equal(t, i%2 == 0, req.Header.Get("Content-Crs") == "EPSG:4326")
		}(i)
	}
	wg.Wait()
}
