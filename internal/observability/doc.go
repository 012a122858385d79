// Package observability provides logging and metrics for the gateway.
//
// Logging is backed by zap and exposed through the Logger interface so
// packages never depend on zap directly. Metrics are collected in a private
// Prometheus registry that backs the /metrics endpoint. Tracing uses
// OpenTelemetry with W3C trace context propagation and an optional OTLP
// exporter.
package observability
