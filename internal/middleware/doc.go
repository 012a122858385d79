// Package middleware provides the HTTP middleware wrapped around the
// gateway's forwarding handler.
//
// Middleware functions follow the standard Go pattern and compose with
// Chain, outermost first:
//
//	handler := middleware.Chain(proxy,
//	    middleware.RequestID(),
//	    middleware.Tracing(tracer),
//	    middleware.Logging(logger),
//	    middleware.Metrics(metrics),
//	    middleware.Recovery(logger),
//	)
package middleware
