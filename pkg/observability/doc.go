/*
Package observability turns engine lifecycle events into Prometheus metrics and audit logs.

Metrics and LoggingHooks both produce domain.LifecycleHooks, which can be merged
and passed to the engine with WithLifecycleHooks.
*/
package observability
