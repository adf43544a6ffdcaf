// Package idgen wraps the UUID generator used for worker task identifiers so
// that it can be stubbed in tests. Callers treat identifiers as opaque strings.
package idgen
