// Package metrics records build observability data.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so callers never check for nil. The serve command installs a
// PrometheusRecorder and exposes it on /metrics via HTTPHandler.
//
// Metric families (namespace "docsite"):
//
//	stage_duration_seconds{stage}
//	build_duration_seconds
//	stage_results_total{stage,result}
//	build_outcomes_total{outcome}
//	routes_generated{locale}
//	findings_total{category}
package metrics
