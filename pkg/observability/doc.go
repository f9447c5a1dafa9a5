/*
Package observability turns component hooks into logs and Prometheus metrics.

Both the animator and the mention engine report through domain.Hooks. This
package provides ready-made Hooks: LogHooks writes structured log records,
and Metrics.Hooks records counters and histograms. Combine them with
domain.ComposeHooks.
*/
package observability
