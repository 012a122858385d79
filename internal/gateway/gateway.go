package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/boombff/internal/config"
	"github.com/vyrodovalexey/boombff/internal/health"
	"github.com/vyrodovalexey/boombff/internal/observability"
)

// State represents the gateway state.
type State int32

const (
	// StateStopped indicates the gateway is stopped.
	StateStopped State = iota
	// StateStarting indicates the gateway is starting.
	StateStarting
	// StateRunning indicates the gateway is running.
	StateRunning
	// StateStopping indicates the gateway is stopping.
	StateStopping
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

const (
	healthPath    = "/healthz"
	readinessPath = "/readyz"
)

var ginModeOnce sync.Once

// Gateway owns the public listener and the optional metrics listener.
type Gateway struct {
	config       *config.GatewayConfig
	logger       observability.Logger
	metrics      *observability.Metrics
	checker      *health.Checker
	routeHandler http.Handler

	engine          *gin.Engine
	listener        *Listener
	metricsListener *Listener
	state           atomic.Int32
	startTime       time.Time
}

// Option is a functional option for configuring the gateway.
type Option func(*Gateway)

// WithLogger sets the logger for the gateway.
func WithLogger(logger observability.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithRouteHandler sets the handler for every path gin does not own.
func WithRouteHandler(handler http.Handler) Option {
	return func(g *Gateway) {
		g.routeHandler = handler
	}
}

// WithHealthChecker sets the checker behind /healthz and /readyz.
func WithHealthChecker(checker *health.Checker) Option {
	return func(g *Gateway) {
		g.checker = checker
	}
}

// WithMetrics sets the metrics exposed on the metrics path.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = metrics
	}
}

// New creates a new Gateway instance.
func New(cfg *config.GatewayConfig, opts ...Option) (*Gateway, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	g := &Gateway{
		config: cfg,
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.checker == nil {
		g.checker = health.NewChecker("")
	}
	if g.routeHandler == nil {
		g.routeHandler = http.NotFoundHandler()
	}

	ginModeOnce.Do(func() { gin.SetMode(gin.ReleaseMode) })
	g.engine = g.buildEngine()
	g.state.Store(int32(StateStopped))

	return g, nil
}

// buildEngine sets up the gin routes.
func (g *Gateway) buildEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET(healthPath, gin.WrapF(g.checker.HealthHandler()))
	engine.GET(readinessPath, gin.WrapF(g.checker.ReadinessHandler()))

	if g.serveMetricsInline() {
		engine.GET(g.config.Metrics.Path, gin.WrapH(g.metrics.Handler()))
	}

	engine.NoRoute(passThrough(g.routeHandler))
	return engine
}

// passThrough serves h from NoRoute. gin pre-sets a 404 for NoRoute and
// writes its own body unless the response was committed, so the status
// starts at net/http's implicit 200 and is flushed even when h writes no
// body.
func passThrough(h http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Status(http.StatusOK)
		h.ServeHTTP(c.Writer, c.Request)
		c.Writer.WriteHeaderNow()
	}
}

func (g *Gateway) serveMetricsInline() bool {
	return g.metricsEnabled() && g.config.Metrics.Address == g.config.Listen.Address
}

func (g *Gateway) metricsEnabled() bool {
	return g.metrics != nil && g.config.Metrics.Enabled
}

// Start starts the gateway.
func (g *Gateway) Start(ctx context.Context) error {
	if !g.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		return ErrGatewayNotStopped
	}

	g.logger.Info("starting gateway",
		observability.String("address", g.config.Listen.Address),
	)

	g.listener = NewListener("http", g.config.Listen, g.engine, g.logger)
	if err := g.listener.Start(ctx); err != nil {
		g.state.Store(int32(StateStopped))
		return fmt.Errorf("failed to start listener: %w", err)
	}

	if g.metricsEnabled() && !g.serveMetricsInline() {
		mux := http.NewServeMux()
		mux.Handle(g.config.Metrics.Path, g.metrics.Handler())
		g.metricsListener = NewListener("metrics", config.ListenConfig{
			Address:      g.config.Metrics.Address,
			ReadTimeout:  g.config.Listen.ReadTimeout,
			WriteTimeout: g.config.Listen.WriteTimeout,
			IdleTimeout:  g.config.Listen.IdleTimeout,
		}, mux, g.logger)

		if err := g.metricsListener.Start(ctx); err != nil {
			_ = g.listener.Stop(ctx)
			g.state.Store(int32(StateStopped))
			return fmt.Errorf("failed to start metrics listener: %w", err)
		}
	}

	g.checker.SetDraining(false)
	g.startTime = time.Now()
	g.state.Store(int32(StateRunning))

	g.logger.Info("gateway started",
		observability.String("address", g.listener.Address()),
		observability.Bool("metrics", g.metricsEnabled()),
	)

	return nil
}

// Stop stops the gateway gracefully. Readiness turns unhealthy first so
// load balancers stop sending traffic while in-flight requests finish.
func (g *Gateway) Stop(ctx context.Context) error {
	if !g.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return ErrGatewayNotRunning
	}

	g.logger.Info("stopping gateway")
	g.checker.SetDraining(true)

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Listen.ShutdownTimeout.Duration())
		defer cancel()
	}

	var firstErr error
	for _, l := range []*Listener{g.listener, g.metricsListener} {
		if l == nil {
			continue
		}
		if err := l.Stop(ctx); err != nil {
			g.logger.Error("failed to stop listener",
				observability.String("name", l.Name()),
				observability.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	g.state.Store(int32(StateStopped))
	g.logger.Info("gateway stopped")

	return firstErr
}

// State returns the current gateway state.
func (g *Gateway) State() State {
	return State(g.state.Load())
}

// IsRunning returns true if the gateway is running.
func (g *Gateway) IsRunning() bool {
	return g.State() == StateRunning
}

// Uptime returns the gateway uptime.
func (g *Gateway) Uptime() time.Duration {
	if g.startTime.IsZero() {
		return 0
	}
	return time.Since(g.startTime)
}

// Engine returns the gin engine.
func (g *Gateway) Engine() *gin.Engine {
	return g.engine
}

// Address returns the address the public listener is bound to.
func (g *Gateway) Address() string {
	if g.listener == nil {
		return g.config.Listen.Address
	}
	return g.listener.Address()
}

// MetricsAddress returns the address of the separate metrics listener, or
// "" when metrics are served inline or disabled.
func (g *Gateway) MetricsAddress() string {
	if g.metricsListener == nil {
		return ""
	}
	return g.metricsListener.Address()
}
