package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/boombff/internal/snapshot"
)

func routes(patterns ...string) []snapshot.RouteConfig {
	out := make([]snapshot.RouteConfig, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, snapshot.RouteConfig{RouteID: p, ClusterID: p, Match: p})
	}
	return out
}

func TestCompile_MatchesByPrefix(t *testing.T) {
	t.Parallel()

	r, err := Compile(routes("objecttypes/{**remainder}", "objects/{**remainder}"))
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	tests := []struct {
		name      string
		path      string
		cluster   string
		remainder string
	}{
		{name: "types", path: "/objecttypes/api/v2/objecttypes", cluster: "objecttypes/{**remainder}", remainder: "api/v2/objecttypes"},
		{name: "objects", path: "/objects/api/v2/objects/123", cluster: "objects/{**remainder}", remainder: "api/v2/objects/123"},
		{name: "no leading slash", path: "objects/a", cluster: "objects/{**remainder}", remainder: "a"},
		{name: "trailing slash", path: "/objects/", cluster: "objects/{**remainder}", remainder: ""},
		{name: "bare prefix", path: "/objects", cluster: "objects/{**remainder}", remainder: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result, ok := r.Match(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.cluster, result.ClusterID())
			assert.Equal(t, tt.remainder, result.Remainder)
		})
	}
}

func TestCompile_NoMatch(t *testing.T) {
	t.Parallel()

	r, err := Compile(routes("objects/{**remainder}"))
	require.NoError(t, err)

	for _, p := range []string{"/", "/objectsx/foo", "/index.html", "/static/objects/x"} {
		result, ok := r.Match(p)
		assert.False(t, ok, p)
		assert.Nil(t, result)
	}
}

func TestCompile_Priority(t *testing.T) {
	t.Parallel()

	r, err := Compile(routes("{**all}", "api/{**rest}", "api/v1/{**rest}", "api/v1/{id}", "api/v1/status"))
	require.NoError(t, err)

	tests := []struct {
		path  string
		route string
	}{
		{path: "/api/v1/status", route: "api/v1/status"},
		{path: "/api/v1/42", route: "api/v1/{id}"},
		{path: "/api/v1/42/history", route: "api/v1/{**rest}"},
		{path: "/api/v2/x", route: "api/{**rest}"},
		{path: "/other", route: "{**all}"},
	}

	for _, tt := range tests {
		result, ok := r.Match(tt.path)
		require.True(t, ok, tt.path)
		assert.Equal(t, tt.route, result.Route.RouteID, tt.path)
	}
}

func TestCompile_Errors(t *testing.T) {
	t.Parallel()

	_, err := Compile(routes("objects/{**remainder}", "objects/{**remainder}"))
	assert.Error(t, err)

	_, err = Compile(routes("objects/{**"))
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestCompile_FromSnapshot(t *testing.T) {
	t.Parallel()

	snap, err := snapshot.Compile(nil)
	require.NoError(t, err)

	r, err := Compile(snap.Routes())
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.GetRoutes())

	_, ok := r.Match("/objects/foo")
	assert.False(t, ok)
}

func TestRouter_GetRoute(t *testing.T) {
	t.Parallel()

	r, err := Compile(routes("objects/{**remainder}"))
	require.NoError(t, err)

	got, ok := r.GetRoute("objects/{**remainder}")
	require.True(t, ok)
	assert.Equal(t, "catch-all", got.Matcher.Type())

	_, ok = r.GetRoute("missing")
	assert.False(t, ok)
}
