// Package monitoring provides Prometheus metrics for the privileged agent.
//
// Each Metrics value owns a private registry, so several agents (or tests)
// can coexist in one process. The router, gateway, extractor and sign-in
// coordinator report through the small Record* methods; the HTTP server
// exposes the registry at /metrics.
package monitoring
