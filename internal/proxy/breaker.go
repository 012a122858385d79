package proxy

import (
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vyrodovalexey/boombff/internal/observability"
)

// breakerSet holds one circuit breaker per cluster, created on first use.
type breakerSet struct {
	threshold uint32
	timeout   time.Duration
	logger    observability.Logger
	metrics   *observability.Metrics

	mu        sync.Mutex
	byCluster map[string]*gobreaker.CircuitBreaker
}

func newBreakerSet(threshold int, timeout time.Duration, logger observability.Logger, metrics *observability.Metrics) *breakerSet {
	return &breakerSet{
		threshold: safeIntToUint32(threshold),
		timeout:   timeout,
		logger:    logger,
		metrics:   metrics,
		byCluster: make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (b *breakerSet) get(cluster string) *gobreaker.CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cb, ok := b.byCluster[cluster]; ok {
		return cb
	}

	threshold := b.threshold
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cluster,
		MaxRequests: 1,
		Timeout:     b.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			b.logger.Warn("circuit breaker state change",
				observability.String("cluster", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)
			if b.metrics != nil {
				b.metrics.SetCircuitBreakerState(name, int(to))
			}
		},
	})
	b.byCluster[cluster] = cb
	if b.metrics != nil {
		b.metrics.SetCircuitBreakerState(cluster, int(gobreaker.StateClosed))
	}
	return cb
}

// roundTrip runs fn through the cluster's breaker. Only transport errors
// count as failures; any HTTP status from the upstream is a success.
func (b *breakerSet) roundTrip(cluster string, fn func() (*http.Response, error)) (*http.Response, error) {
	result, err := b.get(cluster).Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	return result.(*http.Response), nil
}

// state returns the breaker state for cluster, closed when none exists yet.
func (b *breakerSet) state(cluster string) gobreaker.State {
	b.mu.Lock()
	cb, ok := b.byCluster[cluster]
	b.mu.Unlock()
	if !ok {
		return gobreaker.StateClosed
	}
	return cb.State()
}

// safeIntToUint32 safely converts int to uint32.
func safeIntToUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	if n > int(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(n) //nolint:gosec // bounds checked above
}
