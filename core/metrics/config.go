package metrics

import "github.com/kilianp07/manmonths/core/factory"

// Config lists the metrics sinks to enable.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}
