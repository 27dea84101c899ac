// Package scenarios runs table-driven allocation scenarios described in YAML.
package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/manmonths/core/loader"
)

// RowDef is one input row as it would appear in the sheet.
type RowDef struct {
	Period string `yaml:"period"`
	Units  string `yaml:"units"`
}

// ProjectExpect is the expected state of the project read from a sheet row.
type ProjectExpect struct {
	Allocated   int      `yaml:"allocated"`
	Unallocated int      `yaml:"unallocated"`
	Slots       []string `yaml:"slots,omitempty"`
	Reasons     []string `yaml:"reasons,omitempty"`
}

type Expected struct {
	Error       string                `yaml:"error,omitempty"`
	Allocated   int                   `yaml:"allocated"`
	Unallocated int                   `yaml:"unallocated"`
	Warnings    []int                 `yaml:"warnings,omitempty"`
	Years       map[int]int           `yaml:"years,omitempty"`
	Projects    map[int]ProjectExpect `yaml:"projects,omitempty"`
}

type Scenario struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Capacity    int      `yaml:"capacity"`
	Today       string   `yaml:"today,omitempty"`
	Rows        []RowDef `yaml:"rows"`
	Expected    Expected `yaml:"expected"`
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if _, err := sc.Clock(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	return &sc, nil
}

// LoaderRows numbers the rows as sheet rows below a header.
func (s *Scenario) LoaderRows() []loader.Row {
	rows := make([]loader.Row, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = loader.Row{Number: i + 2, Period: r.Period, Units: r.Units}
	}
	return rows
}

// Clock returns the fixed "today" of the scenario, or the wall clock when
// none is set.
func (s *Scenario) Clock() (func() time.Time, error) {
	if s.Today == "" {
		return time.Now, nil
	}
	t, err := time.Parse(time.DateOnly, s.Today)
	if err != nil {
		return nil, fmt.Errorf("today: %w", err)
	}
	return func() time.Time { return t }, nil
}
