package main

import (
	"fmt"
	"net/http"

	"github.com/vyrodovalexey/boombff/internal/config"
	"github.com/vyrodovalexey/boombff/internal/dispatch"
	"github.com/vyrodovalexey/boombff/internal/gateway"
	"github.com/vyrodovalexey/boombff/internal/health"
	"github.com/vyrodovalexey/boombff/internal/middleware"
	"github.com/vyrodovalexey/boombff/internal/observability"
	"github.com/vyrodovalexey/boombff/internal/proxy"
	"github.com/vyrodovalexey/boombff/internal/route"
	"github.com/vyrodovalexey/boombff/internal/snapshot"
)

// application holds all application components.
type application struct {
	config    *config.GatewayConfig
	registry  *route.Registry
	snapshots *snapshot.Provider
	metrics   *observability.Metrics
	tracer    *observability.Tracer
	checker   *health.Checker
	proxy     *proxy.ReverseProxy
	handler   http.Handler
	gateway   *gateway.Gateway
}

// newApplication wires the gateway from configuration. Integrations with a
// missing base URL or API key are skipped with a warning; any other
// registration or snapshot error is fatal.
func newApplication(cfg *config.GatewayConfig, logger observability.Logger) (*application, error) {
	metrics := observability.NewMetrics("bff")
	metrics.SetBuildInfo(version, gitCommit, buildTime)

	tracer, err := observability.NewTracer(observability.TracerConfig{
		ServiceName:  cfg.Tracing.ServiceName,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SamplingRate: cfg.Tracing.SamplingRate,
		Insecure:     cfg.Tracing.Insecure,
		Enabled:      cfg.Tracing.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	registry := route.NewRegistry(logger)
	if err := registry.RegisterIntegrations(cfg.Integrations); err != nil {
		return nil, fmt.Errorf("failed to register integrations: %w", err)
	}
	if registry.Len() == 0 {
		logger.Warn("no integrations registered, only static files will be served")
	}

	snapshots, err := snapshot.NewProvider(registry.All(),
		snapshot.WithLogger(logger),
		snapshot.WithMetrics(metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build routing snapshot: %w", err)
	}

	dispatcher := dispatch.New(registry,
		dispatch.WithLogger(logger),
		dispatch.WithMetrics(metrics),
	)

	proxyOpts := []proxy.ProxyOption{
		proxy.WithProxyLogger(logger),
		proxy.WithProxyMetrics(metrics),
		proxy.WithTracer(tracer),
		proxy.WithTransport(proxy.NewTransport(cfg.Upstream)),
		proxy.WithCircuitBreaker(cfg.Upstream.BreakerThreshold, cfg.Upstream.BreakerTimeout.Duration()),
	}
	if cfg.StaticDir != "" {
		proxyOpts = append(proxyOpts, proxy.WithFallback(http.FileServer(http.Dir(cfg.StaticDir))))
	}
	reverseProxy := proxy.NewReverseProxy(snapshots, dispatcher, proxyOpts...)

	handler := buildMiddlewareChain(reverseProxy, cfg, logger, metrics, tracer)

	checker := health.NewChecker(version)
	checker.RegisterCheck(health.RoutesCheckName, health.RoutesCheck(snapshots))

	gw, err := gateway.New(cfg,
		gateway.WithLogger(logger),
		gateway.WithRouteHandler(handler),
		gateway.WithHealthChecker(checker),
		gateway.WithMetrics(metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway: %w", err)
	}

	return &application{
		config:    cfg,
		registry:  registry,
		snapshots: snapshots,
		metrics:   metrics,
		tracer:    tracer,
		checker:   checker,
		proxy:     reverseProxy,
		handler:   handler,
		gateway:   gw,
	}, nil
}

// buildMiddlewareChain wraps the proxy, outermost first.
func buildMiddlewareChain(
	h http.Handler,
	cfg *config.GatewayConfig,
	logger observability.Logger,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
) http.Handler {
	return middleware.Chain(h,
		middleware.RequestID(),
		middleware.Tracing(tracer),
		middleware.Logging(logger),
		middleware.Metrics(metrics),
		middleware.RateLimitFromConfig(cfg.RateLimit, logger),
		middleware.Recovery(logger),
	)
}
