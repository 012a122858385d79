package proxy

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/boombff/internal/config"
	"github.com/vyrodovalexey/boombff/internal/observability"
)

const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second
	defaultTLSHandshakeTimeout = 10 * time.Second
)

// NewTransport creates the upstream transport from configuration.
func NewTransport(cfg config.UpstreamConfig) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout.Duration(),
		KeepAlive: 30 * time.Second,
	}

	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          defaultMaxIdleConns,
		MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout.Duration(),
		ExpectContinueTimeout: time.Second,
	}
}

// forwardKey carries the matched target from ServeHTTP to the director and
// the outbound transport.
type forwardKey struct{}

type forward struct {
	clusterID string
	target    string // escaped path of the destination joined with the remainder
	host      string
	scheme    string
	rawQuery  string
}

func contextWithForward(ctx context.Context, f *forward) context.Context {
	return context.WithValue(ctx, forwardKey{}, f)
}

func forwardFromContext(ctx context.Context) (*forward, bool) {
	f, ok := ctx.Value(forwardKey{}).(*forward)
	return f, ok
}

// outboundTransport applies the transform to the outbound request and runs
// the upstream round trip through the cluster's breaker.
type outboundTransport struct {
	next        http.RoundTripper
	transformer Transformer
	breakers    *breakerSet
	tracer      *observability.Tracer
}

// RoundTrip implements http.RoundTripper. req is the proxy's own outbound
// clone, so mutating its headers never touches the inbound request.
func (t *outboundTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f, ok := forwardFromContext(req.Context())
	if !ok {
		return t.next.RoundTrip(req)
	}

	if t.tracer != nil {
		ctx, span := t.tracer.StartSpan(req.Context(), "forward "+f.clusterID,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("bff.cluster", f.clusterID),
				attribute.String("http.request.method", req.Method),
				attribute.String("server.address", f.host),
				attribute.String("url.path", f.target),
			),
		)
		defer span.End()
		req = req.WithContext(ctx)

		resp, err := t.forward(f, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, classify(ctx, err))
			return nil, err
		}
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
		if resp.StatusCode >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		}
		return resp, nil
	}

	return t.forward(f, req)
}

func (t *outboundTransport) forward(f *forward, req *http.Request) (*http.Response, error) {
	if err := t.transformer.Apply(f.clusterID, req); err != nil {
		closeBody(req)
		return nil, NewTransformError(f.clusterID, err)
	}

	if t.tracer != nil {
		t.tracer.Inject(req.Context(), req.Header)
	}

	if t.breakers == nil {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, NewUpstreamError(f.clusterID, err)
		}
		return resp, nil
	}

	resp, err := t.breakers.roundTrip(f.clusterID, func() (*http.Response, error) {
		return t.next.RoundTrip(req)
	})
	if err != nil {
		if IsCircuitOpenError(err) {
			closeBody(req)
			return nil, err
		}
		return nil, NewUpstreamError(f.clusterID, err)
	}
	return resp, nil
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
