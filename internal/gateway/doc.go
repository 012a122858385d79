// Package gateway runs the BFF's HTTP servers.
//
// A gin engine serves /healthz and /readyz and hands every other request
// to the route handler through NoRoute. Metrics are exposed either on a
// separate listener or, when the addresses match, on the main one.
//
//	gw, err := gateway.New(cfg,
//	    gateway.WithLogger(logger),
//	    gateway.WithRouteHandler(handler),
//	    gateway.WithHealthChecker(checker),
//	    gateway.WithMetrics(metrics),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := gw.Start(ctx); err != nil {
//	    return err
//	}
//	defer gw.Stop(ctx)
package gateway
