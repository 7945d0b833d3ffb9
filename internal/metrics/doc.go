// Package metrics provides build metrics for pagesmith.
//
// Components receive a Recorder and default to NoopRecorder, so metrics cost
// nothing unless a PrometheusRecorder is injected:
//
//	reg := prometheus.NewRegistry()
//	builder := build.NewBuilder(bctx.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// pagesmith runs as a short-lived CLI, so instead of serving a scrape
// endpoint the registry is written in node_exporter textfile format with
// WriteTextfile at the end of an invocation.
package metrics
