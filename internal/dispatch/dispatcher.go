// Package dispatch applies integration transforms to outbound requests.
package dispatch

import (
	"net/http"

	"github.com/vyrodovalexey/boombff/internal/observability"
	"github.com/vyrodovalexey/boombff/internal/route"
	"github.com/vyrodovalexey/boombff/internal/snapshot"
)

// DescriptorLookup resolves a route id to its descriptor.
type DescriptorLookup interface {
	Lookup(id string) (*route.Descriptor, bool)
}

// target is the part of a descriptor the dispatcher needs.
type target interface {
	Name() string
	Apply(req *http.Request) error
}

// Dispatcher is the single transform hook registered with the forwarding
// engine. It is safe for concurrent use.
type Dispatcher struct {
	resolve func(clusterID string) (target, bool)
	logger  observability.Logger
	metrics *observability.Metrics
}

// Option is a functional option for configuring the dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger for the dispatcher.
func WithLogger(logger observability.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics sets the metrics for the dispatcher.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = metrics
	}
}

// New creates a dispatcher over the given descriptors.
func New(descriptors DescriptorLookup, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		resolve: func(clusterID string) (target, bool) {
			desc, ok := descriptors.Lookup(clusterID)
			if !ok {
				return nil, false
			}
			return desc, true
		},
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Apply runs the transform of the descriptor owning clusterID on req.
// Clusters without a descriptor pass through unchanged.
func (d *Dispatcher) Apply(clusterID string, req *http.Request) error {
	desc, ok := d.resolve(clusterID)
	if !ok {
		d.logger.Debug("no integration for cluster, forwarding unchanged",
			observability.String("cluster", clusterID),
		)
		d.record(clusterID, observability.TransformPassthrough)
		return nil
	}

	if err := desc.Apply(req); err != nil {
		d.logger.WithContext(req.Context()).Error("request transform failed",
			observability.String("integration", desc.Name()),
			observability.String("cluster", clusterID),
			observability.Error(err),
		)
		d.record(clusterID, observability.TransformFailed)
		return err
	}

	d.record(clusterID, observability.TransformApplied)
	return nil
}

// ValidateRoute is called by the engine before a route is activated.
// Descriptor construction already guarantees everything worth checking.
func (d *Dispatcher) ValidateRoute(snapshot.RouteConfig) error {
	return nil
}

// ValidateCluster is called by the engine before a cluster is activated.
func (d *Dispatcher) ValidateCluster(snapshot.ClusterConfig) error {
	return nil
}

func (d *Dispatcher) record(cluster, outcome string) {
	if d.metrics == nil {
		return
	}
	if outcome == observability.TransformPassthrough {
		cluster = observability.UnmatchedRoute
	}
	d.metrics.RecordTransform(cluster, outcome)
}
