// Package tracing records OpenTelemetry spans for worker runs and outbound
// API calls. Spans are no-ops until Init or InitWithExporter installs a
// provider, so applications that do not need tracing pay nothing for it.
package tracing
