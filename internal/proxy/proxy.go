package proxy

import (
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vyrodovalexey/boombff/internal/observability"
	"github.com/vyrodovalexey/boombff/internal/router"
	"github.com/vyrodovalexey/boombff/internal/snapshot"
)

// hopHeaders are headers that should not be forwarded.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Error bodies. None of them carries detail about the failure.
const (
	bodyInternalError      = `{"error":"internal server error"}`
	bodyBadGateway         = `{"error":"bad gateway"}`
	bodyServiceUnavailable = `{"error":"service unavailable"}`
	bodyNotFound           = `{"error":"not found"}`
	bodyBadRequest         = `{"error":"bad request"}`
)

// Transformer is the engine's per-request hook. Apply mutates the outbound
// request for clusterID; the Validate methods gate activation of routes and
// clusters from a new snapshot.
type Transformer interface {
	Apply(clusterID string, req *http.Request) error
	ValidateRoute(route snapshot.RouteConfig) error
	ValidateCluster(cluster snapshot.ClusterConfig) error
}

// ReverseProxy handles proxying requests to integration backends.
type ReverseProxy struct {
	source      snapshot.Source
	transformer Transformer
	logger      observability.Logger
	metrics     *observability.Metrics
	transport   http.RoundTripper
	fallback    http.Handler
	tracer      *observability.Tracer

	breakerThreshold int
	breakerTimeout   time.Duration
	breakers         *breakerSet
	flushInterval    time.Duration

	proxy    *httputil.ReverseProxy
	current  atomic.Pointer[compiledSnapshot]
	reloadMu sync.Mutex
}

// compiledSnapshot is the router and validated clusters built from one
// snapshot.
type compiledSnapshot struct {
	snap     *snapshot.Snapshot
	router   *router.Router
	clusters map[string]*url.URL
}

// ProxyOption is a functional option for configuring the proxy.
type ProxyOption func(*ReverseProxy)

// WithProxyLogger sets the logger for the proxy.
func WithProxyLogger(logger observability.Logger) ProxyOption {
	return func(p *ReverseProxy) {
		p.logger = logger
	}
}

// WithProxyMetrics sets the metrics for the proxy.
func WithProxyMetrics(metrics *observability.Metrics) ProxyOption {
	return func(p *ReverseProxy) {
		p.metrics = metrics
	}
}

// WithTransport sets the upstream transport for the proxy.
func WithTransport(transport http.RoundTripper) ProxyOption {
	return func(p *ReverseProxy) {
		p.transport = transport
	}
}

// WithTracer enables a client span per forwarded request and propagates
// its trace context to the backend.
func WithTracer(tracer *observability.Tracer) ProxyOption {
	return func(p *ReverseProxy) {
		p.tracer = tracer
	}
}

// WithFallback sets the handler for requests no route matches.
func WithFallback(handler http.Handler) ProxyOption {
	return func(p *ReverseProxy) {
		p.fallback = handler
	}
}

// WithCircuitBreaker enables a breaker per cluster that opens after
// threshold consecutive failed round trips. A threshold of zero disables it.
func WithCircuitBreaker(threshold int, timeout time.Duration) ProxyOption {
	return func(p *ReverseProxy) {
		p.breakerThreshold = threshold
		p.breakerTimeout = timeout
	}
}

// WithFlushInterval sets the flush interval for streaming responses.
func WithFlushInterval(interval time.Duration) ProxyOption {
	return func(p *ReverseProxy) {
		p.flushInterval = interval
	}
}

// NewReverseProxy creates a new reverse proxy.
func NewReverseProxy(source snapshot.Source, transformer Transformer, opts ...ProxyOption) *ReverseProxy {
	p := &ReverseProxy{
		source:        source,
		transformer:   transformer,
		logger:        observability.NopLogger(),
		flushInterval: -1, // Immediate flush
	}

	for _, opt := range opts {
		opt(p)
	}

	next := p.transport
	if next == nil {
		next = http.DefaultTransport
	}
	if p.breakerThreshold > 0 {
		p.breakers = newBreakerSet(p.breakerThreshold, p.breakerTimeout, p.logger, p.metrics)
	}

	p.proxy = &httputil.ReverseProxy{
		Director: p.director,
		Transport: &outboundTransport{
			next:        next,
			transformer: transformer,
			breakers:    p.breakers,
			tracer:      p.tracer,
		},
		FlushInterval: p.flushInterval,
		ErrorHandler:  p.handleError,
	}

	return p
}

// ServeHTTP implements http.Handler.
func (p *ReverseProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	active, err := p.active()
	if err != nil {
		p.logger.WithContext(r.Context()).Error("no routing table available",
			observability.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, bodyInternalError)
		return
	}

	path := r.URL.EscapedPath()
	// Dot segments would let a caller climb out of a destination's base
	// path with the integration's credential attached.
	if router.HasDotSegment(path) {
		p.logger.WithContext(r.Context()).Warn("rejected path with dot segments",
			observability.String("path", path),
			observability.String("method", r.Method),
		)
		writeJSON(w, http.StatusBadRequest, bodyBadRequest)
		return
	}

	result, ok := active.router.Match(path)
	if !ok {
		p.handleRouteNotFound(w, r)
		return
	}

	dest, ok := active.clusters[result.ClusterID()]
	if !ok {
		p.handleRouteNotFound(w, r)
		return
	}

	observability.SetRoute(r.Context(), result.Route.RouteID)

	f := &forward{
		clusterID: result.ClusterID(),
		target:    joinPath(dest.EscapedPath(), result.Remainder),
		host:      dest.Host,
		scheme:    dest.Scheme,
		rawQuery:  joinQuery(dest.RawQuery, r.URL.RawQuery),
	}

	p.proxy.ServeHTTP(w, r.WithContext(contextWithForward(r.Context(), f)))
}

// director modifies the outbound request before forwarding.
func (p *ReverseProxy) director(req *http.Request) {
	f, ok := forwardFromContext(req.Context())
	if !ok {
		return
	}

	req.URL.Scheme = f.scheme
	req.URL.Host = f.host
	if path, err := url.PathUnescape(f.target); err == nil {
		req.URL.Path = path
		req.URL.RawPath = f.target
	} else {
		req.URL.Path = f.target
		req.URL.RawPath = ""
	}
	req.URL.RawQuery = f.rawQuery

	// Remove hop-by-hop headers
	for _, h := range hopHeaders {
		req.Header.Del(h)
	}

	if req.TLS != nil {
		req.Header.Set("X-Forwarded-Proto", "https")
	} else {
		req.Header.Set("X-Forwarded-Proto", "http")
	}
	req.Header.Set("X-Forwarded-Host", req.Host)

	req.Host = f.host
}

// active returns the compiled form of the current snapshot, recompiling
// once the previous snapshot has been invalidated. A failed recompile keeps
// serving the previous table.
func (p *ReverseProxy) active() (*compiledSnapshot, error) {
	if c := p.current.Load(); c != nil && !invalidated(c.snap) {
		return c, nil
	}

	p.reloadMu.Lock()
	defer p.reloadMu.Unlock()

	prev := p.current.Load()
	if prev != nil && !invalidated(prev.snap) {
		return prev, nil
	}

	snap := p.source.Snapshot()
	if snap == nil {
		if prev != nil {
			return prev, nil
		}
		return nil, ErrNoSnapshot
	}

	c, err := p.compile(snap)
	if err != nil {
		if prev != nil {
			p.logger.Error("failed to compile routing snapshot, keeping previous",
				observability.Uint64("version", snap.Version()),
				observability.Error(err),
			)
			return prev, nil
		}
		return nil, err
	}

	p.current.Store(c)
	p.logger.Info("routing snapshot activated",
		observability.Uint64("version", snap.Version()),
		observability.Int("routes", c.router.Len()),
	)
	return c, nil
}

// compile validates the snapshot's clusters and routes with the transformer
// and builds a router over the accepted routes.
func (p *ReverseProxy) compile(snap *snapshot.Snapshot) (*compiledSnapshot, error) {
	clusters := make(map[string]*url.URL)
	for id, cluster := range snap.Clusters() {
		if err := p.transformer.ValidateCluster(cluster); err != nil {
			p.logger.Warn("cluster rejected",
				observability.String("cluster", id),
				observability.Error(err),
			)
			continue
		}
		clusters[id] = cluster.Destination
	}

	routes := make([]snapshot.RouteConfig, 0, len(snap.Routes()))
	for _, rc := range snap.Routes() {
		if _, ok := clusters[rc.ClusterID]; !ok {
			continue
		}
		if err := p.transformer.ValidateRoute(rc); err != nil {
			p.logger.Warn("route rejected",
				observability.String("route", rc.RouteID),
				observability.Error(err),
			)
			continue
		}
		routes = append(routes, rc)
	}

	r, err := router.Compile(routes)
	if err != nil {
		return nil, err
	}

	return &compiledSnapshot{snap: snap, router: r, clusters: clusters}, nil
}

// BreakerState returns the circuit breaker state of cluster as reported in
// metrics: 0 closed, 1 half-open, 2 open. It is 0 when breaking is disabled.
func (p *ReverseProxy) BreakerState(cluster string) int {
	if p.breakers == nil {
		return 0
	}
	return int(p.breakers.state(cluster))
}

// handleRouteNotFound serves requests no route matches.
func (p *ReverseProxy) handleRouteNotFound(w http.ResponseWriter, r *http.Request) {
	if p.fallback != nil {
		p.fallback.ServeHTTP(w, r)
		return
	}

	p.logger.Debug("route not found",
		observability.String("path", r.URL.Path),
		observability.String("method", r.Method),
	)
	writeJSON(w, http.StatusNotFound, bodyNotFound)
}

// handleError maps forwarding failures to responses. Transform failures are
// a gateway misconfiguration and must not reveal credential details.
func (p *ReverseProxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	cluster := ""
	if f, ok := forwardFromContext(r.Context()); ok {
		cluster = f.clusterID
	}

	reason := classify(r.Context(), err)
	if p.metrics != nil {
		p.metrics.RecordUpstreamError(cluster, reason)
	}

	logger := p.logger.WithContext(r.Context())
	fields := []observability.Field{
		observability.String("cluster", cluster),
		observability.String("method", r.Method),
		observability.String("reason", reason),
		observability.Error(err),
	}

	switch reason {
	case reasonTransform:
		logger.Error("outbound transform failed", fields...)
		writeJSON(w, http.StatusInternalServerError, bodyInternalError)
	case reasonCircuitOpen:
		logger.Warn("circuit breaker rejected request", fields...)
		writeJSON(w, http.StatusServiceUnavailable, bodyServiceUnavailable)
	case reasonCanceled:
		logger.Debug("client canceled request", fields...)
		writeJSON(w, http.StatusBadGateway, bodyBadGateway)
	default:
		logger.Error("proxy error", fields...)
		writeJSON(w, http.StatusBadGateway, bodyBadGateway)
	}
}

// Handler returns an http.Handler for the proxy.
func (p *ReverseProxy) Handler() http.Handler {
	return p
}

func invalidated(s *snapshot.Snapshot) bool {
	select {
	case <-s.Changed():
		return true
	default:
		return false
	}
}

// joinPath appends the escaped remainder to the escaped destination path.
func joinPath(base, remainder string) string {
	return strings.TrimSuffix(base, "/") + "/" + remainder
}

func joinQuery(base, extra string) string {
	switch {
	case base == "":
		return extra
	case extra == "":
		return base
	default:
		return base + "&" + extra
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
