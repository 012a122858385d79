// Package proxy forwards matched requests to integration backends.
//
// The reverse proxy reads the active snapshot from a snapshot.Source,
// compiles it into a router and keeps using that router until the
// snapshot's change handle fires. Matched requests are forwarded to
// "<destination>/<remainder>" with method, body and query intact; the
// outbound request is handed to a Transformer right before the upstream
// round trip. Unmatched requests go to an optional fallback handler.
//
//	p := proxy.NewReverseProxy(provider, dispatcher,
//	    proxy.WithProxyLogger(logger),
//	    proxy.WithTransport(proxy.NewTransport(cfg.Upstream)),
//	    proxy.WithCircuitBreaker(5, 30*time.Second),
//	)
//	http.Handle("/", p)
package proxy
