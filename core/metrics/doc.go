// Package metrics defines the sink interface used to observe allocation
// runs. Implementations such as the Prometheus and InfluxDB sinks live in
// infra/metrics and register themselves with the factory so they can be
// selected from configuration. Several configured sinks are combined into a
// MultiSink.
package metrics
