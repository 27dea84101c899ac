// Package infra contains technical adapters: spreadsheet readers and
// renderers, metrics exporters, the MQTT publisher and error monitoring.
// These packages depend only on the interfaces defined in the core packages.
package infra
