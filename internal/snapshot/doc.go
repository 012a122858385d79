// Package snapshot compiles registered integrations into the routing table
// consumed by the forwarding engine.
//
// A Snapshot is immutable. The Provider holds the current one behind an
// atomic pointer; Update installs a replacement and then closes the previous
// snapshot's Changed channel so the engine re-fetches on its next request.
// In normal operation the gateway compiles once at startup and never updates.
package snapshot
