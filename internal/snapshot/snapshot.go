package snapshot

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/vyrodovalexey/boombff/internal/route"
)

// ErrDuplicateRouteID indicates that two descriptors compiled to the same id.
var ErrDuplicateRouteID = route.ErrDuplicateRouteID

// RouteConfig is one entry of the routing table.
type RouteConfig struct {
	RouteID   string
	ClusterID string
	Match     string
}

// ClusterConfig is a named single destination.
type ClusterConfig struct {
	ClusterID   string
	Destination *url.URL
}

// Snapshot is a compiled, immutable routing table.
type Snapshot struct {
	version  uint64
	routes   []RouteConfig
	clusters map[string]ClusterConfig

	changed   chan struct{}
	closeOnce sync.Once
}

// Compile builds a snapshot from descriptors. Each descriptor yields one
// cluster and one route, both keyed by the descriptor's route id. Nothing is
// returned when two descriptors share an id.
func Compile(descriptors []*route.Descriptor) (*Snapshot, error) {
	s := &Snapshot{
		routes:   make([]RouteConfig, 0, len(descriptors)),
		clusters: make(map[string]ClusterConfig, len(descriptors)),
		changed:  make(chan struct{}),
	}

	for _, d := range descriptors {
		if d == nil {
			return nil, errors.New("snapshot: nil descriptor")
		}
		id := d.ID()
		if _, exists := s.clusters[id]; exists {
			return nil, fmt.Errorf("snapshot: %w: %s", ErrDuplicateRouteID, id)
		}

		s.clusters[id] = ClusterConfig{ClusterID: id, Destination: d.Destination()}
		s.routes = append(s.routes, RouteConfig{
			RouteID:   id,
			ClusterID: id,
			Match:     strings.Trim(id, "/"),
		})
	}

	return s, nil
}

// Version returns the snapshot version assigned by its Provider; zero for a
// snapshot that was compiled but never installed.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// Routes returns a copy of the route list in compile order.
func (s *Snapshot) Routes() []RouteConfig {
	out := make([]RouteConfig, len(s.routes))
	copy(out, s.routes)
	return out
}

// Clusters returns a copy of the cluster table.
func (s *Snapshot) Clusters() map[string]ClusterConfig {
	out := make(map[string]ClusterConfig, len(s.clusters))
	for id, c := range s.clusters {
		out[id] = copyCluster(c)
	}
	return out
}

// Cluster returns one cluster by id.
func (s *Snapshot) Cluster(id string) (ClusterConfig, bool) {
	c, ok := s.clusters[id]
	if !ok {
		return ClusterConfig{}, false
	}
	return copyCluster(c), true
}

// Changed returns the invalidation handle. It is closed once a newer snapshot
// replaces this one.
func (s *Snapshot) Changed() <-chan struct{} {
	return s.changed
}

// invalidate signals that the snapshot is stale. Safe to call repeatedly.
func (s *Snapshot) invalidate() {
	s.closeOnce.Do(func() { close(s.changed) })
}

func copyCluster(c ClusterConfig) ClusterConfig {
	u := *c.Destination
	c.Destination = &u
	return c
}
