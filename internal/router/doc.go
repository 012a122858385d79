// Package router matches inbound request paths against the route patterns
// of a configuration snapshot.
//
// Patterns are slash separated literals optionally ending in a parameter
// segment:
//
//	objects/{**remainder}   catch-all, captures the rest of the path
//	objects/{id}            single segment
//	objects                 literal
//
// A router is compiled once per snapshot and is read-only afterwards, so
// it is safe for concurrent use without locking.
//
//	r, err := router.Compile(snap.Routes())
//	if err != nil {
//	    return err
//	}
//	if result, ok := r.Match(req.URL.EscapedPath()); ok {
//	    // forward to result.ClusterID with result.Remainder
//	}
package router
