// Package health provides the liveness and readiness endpoints.
//
// /healthz reports the process as healthy with version and uptime.
// /readyz aggregates named checks: any unhealthy check makes the gateway
// unready (503), a degraded check is reported but still ready.
package health
