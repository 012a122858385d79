package router

import (
	"fmt"
	"sort"

	"github.com/vyrodovalexey/boombff/internal/snapshot"
)

// Route priority constants. Higher priority routes are matched first.
const (
	priorityExactMatch    = 1000
	prioritySegmentMatch  = 500
	priorityCatchAllMatch = 100
)

// Router is an immutable set of compiled routes.
type Router struct {
	routes   []*CompiledRoute
	routeMap map[string]*CompiledRoute
}

// CompiledRoute is a pre-compiled route for efficient matching.
type CompiledRoute struct {
	RouteID   string
	ClusterID string
	Matcher   PathMatcher
	Priority  int
}

// MatchResult contains the result of a route match.
type MatchResult struct {
	Route      *CompiledRoute
	PathParams map[string]string

	// Remainder is the value captured by the trailing parameter, if any.
	Remainder string
}

// ClusterID returns the cluster the matched route forwards to.
func (m *MatchResult) ClusterID() string {
	return m.Route.ClusterID
}

// Compile builds a router from snapshot routes.
func Compile(routes []snapshot.RouteConfig) (*Router, error) {
	r := &Router{
		routes:   make([]*CompiledRoute, 0, len(routes)),
		routeMap: make(map[string]*CompiledRoute, len(routes)),
	}

	for _, rc := range routes {
		if _, exists := r.routeMap[rc.RouteID]; exists {
			return nil, fmt.Errorf("duplicate route id: %s", rc.RouteID)
		}

		matcher, err := NewPathMatcher(rc.Match)
		if err != nil {
			return nil, fmt.Errorf("failed to compile route %s: %w", rc.RouteID, err)
		}

		compiled := &CompiledRoute{
			RouteID:   rc.RouteID,
			ClusterID: rc.ClusterID,
			Matcher:   matcher,
			Priority:  calculatePriority(matcher),
		}
		r.routes = append(r.routes, compiled)
		r.routeMap[rc.RouteID] = compiled
	}

	// Stable so equal priorities keep snapshot order.
	sort.SliceStable(r.routes, func(i, j int) bool {
		return r.routes[i].Priority > r.routes[j].Priority
	})

	return r, nil
}

// Match finds the first route matching path. path is the escaped request
// path; a single leading slash is ignored and the remainder is returned
// exactly as it appears.
func (r *Router) Match(path string) (*MatchResult, bool) {
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}

	for _, route := range r.routes {
		matched, params := route.Matcher.Match(path)
		if !matched {
			continue
		}
		result := &MatchResult{Route: route, PathParams: params}
		for _, v := range params {
			result.Remainder = v
		}
		return result, true
	}

	return nil, false
}

// GetRoute returns a route by id.
func (r *Router) GetRoute(id string) (*CompiledRoute, bool) {
	route, exists := r.routeMap[id]
	return route, exists
}

// GetRoutes returns all routes in match order.
func (r *Router) GetRoutes() []*CompiledRoute {
	routes := make([]*CompiledRoute, len(r.routes))
	copy(routes, r.routes)
	return routes
}

// Len returns the number of compiled routes.
func (r *Router) Len() int {
	return len(r.routes)
}

// calculatePriority ranks literal paths over single segments over
// catch-alls. Longer prefixes rank higher within a shape.
func calculatePriority(m PathMatcher) int {
	switch mm := m.(type) {
	case *ExactMatcher:
		return priorityExactMatch + len(mm.path)
	case *SegmentMatcher:
		return prioritySegmentMatch + len(mm.prefix)
	case *CatchAllMatcher:
		return priorityCatchAllMatch + len(mm.prefix)
	default:
		return 0
	}
}
