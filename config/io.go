package config

import (
	"fmt"

	"github.com/kilianp07/manmonths/core/factory"
	"github.com/kilianp07/manmonths/core/loader"
)

// InputConfig names the required columns and the worksheet to read.
type InputConfig struct {
	PeriodColumn string `json:"period_column"`
	UnitsColumn  string `json:"units_column"`
	// Sheet selects the worksheet of an XLSX input; empty reads the active one.
	Sheet string `json:"sheet"`
}

func (c *InputConfig) SetDefaults() {
	if c.PeriodColumn == "" {
		c.PeriodColumn = loader.PeriodColumn
	}
	if c.UnitsColumn == "" {
		c.UnitsColumn = loader.UnitsColumn
	}
}

func (c InputConfig) Validate() error {
	if c.PeriodColumn == c.UnitsColumn {
		return fmt.Errorf("input: period and units columns must differ")
	}
	return nil
}

// Columns returns the loader view of the column names.
func (c InputConfig) Columns() loader.Columns {
	return loader.Columns{Period: c.PeriodColumn, Units: c.UnitsColumn}
}

// OutputConfig selects the output directory and formats.
type OutputConfig struct {
	// Dir receives the output files; empty writes next to the input.
	Dir     string                 `json:"dir"`
	Formats []factory.ModuleConfig `json:"formats"`
}

func (c *OutputConfig) SetDefaults() {
	if len(c.Formats) == 0 {
		c.Formats = []factory.ModuleConfig{{Type: "xlsx"}}
	}
}

func (c OutputConfig) Validate() error {
	seen := make(map[string]bool, len(c.Formats))
	for _, f := range c.Formats {
		if f.Type == "" {
			return fmt.Errorf("output: format type is required")
		}
		if seen[f.Type] {
			return fmt.Errorf("output: duplicate format %q", f.Type)
		}
		seen[f.Type] = true
	}
	return nil
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Address string `json:"address"`
	// Token protects the runs API with a bearer token when set.
	Token string `json:"token"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}
