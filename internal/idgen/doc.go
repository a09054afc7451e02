// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// Identifiers are used for boot sessions and queued messages; callers treat
// them as opaque strings.
package idgen
