// Package tracing wraps OpenTelemetry so that kernel control operations can
// be recorded as spans without the callers importing the SDK. Until Init is
// called the global no-op provider is in effect and spans cost nothing.
package tracing
