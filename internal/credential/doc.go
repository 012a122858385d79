// Package credential holds the backend credentials the gateway injects into
// forwarded requests.
//
// Whether a Provider holds a credential is decided once, at construction.
// Applying a Provider that holds nothing is an error for every request on
// the route, so a route wired without a token fails loudly and
// reproducibly instead of forwarding unauthenticated traffic.
package credential
