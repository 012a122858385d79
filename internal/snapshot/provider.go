package snapshot

import (
	"sync"
	"sync/atomic"

	"github.com/vyrodovalexey/boombff/internal/observability"
	"github.com/vyrodovalexey/boombff/internal/route"
)

// Source is implemented by anything that hands out the current snapshot.
type Source interface {
	Snapshot() *Snapshot
}

// Provider owns the current snapshot. Readers never block; Update is
// serialized.
type Provider struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
	mu      sync.Mutex

	logger  observability.Logger
	metrics *observability.Metrics
}

// Option is a functional option for configuring the provider.
type Option func(*Provider)

// WithLogger sets the logger for the provider.
func WithLogger(logger observability.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics for the provider.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(p *Provider) {
		p.metrics = metrics
	}
}

// NewProvider compiles descriptors into the initial snapshot.
func NewProvider(descriptors []*route.Descriptor, opts ...Option) (*Provider, error) {
	p := &Provider{
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := p.Update(descriptors); err != nil {
		return nil, err
	}
	return p, nil
}

// Snapshot returns the current snapshot.
func (p *Provider) Snapshot() *Snapshot {
	return p.current.Load()
}

// Update compiles descriptors, installs the result and signals the previous
// snapshot's invalidation handle. On error the current snapshot is kept.
func (p *Provider) Update(descriptors []*route.Descriptor) error {
	next, err := Compile(descriptors)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	next.version = p.version.Add(1)
	prev := p.current.Swap(next)
	if prev != nil {
		prev.invalidate()
	}

	if p.metrics != nil {
		p.metrics.SetSnapshot(next.version, len(next.routes))
	}
	p.logger.Info("routing snapshot installed",
		observability.Uint64("version", next.version),
		observability.Int("routes", len(next.routes)),
		observability.Int("clusters", len(next.clusters)),
	)
	return nil
}
