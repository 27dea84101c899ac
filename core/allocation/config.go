package allocation

import "fmt"

// DefaultMaxYearlyCapacity is the number of units a year accepts when no
// capacity is configured.
const DefaultMaxYearlyCapacity = 11

// Config defines allocation settings.
type Config struct {
	MaxYearlyCapacity int `json:"max_yearly_capacity"`
}

// SetDefaults applies the default capacity when unset.
func (c *Config) SetDefaults() {
	if c.MaxYearlyCapacity == 0 {
		c.MaxYearlyCapacity = DefaultMaxYearlyCapacity
	}
}

// Validate checks the capacity is usable.
func (c Config) Validate() error {
	if c.MaxYearlyCapacity <= 0 {
		return fmt.Errorf("max_yearly_capacity must be positive, got %d", c.MaxYearlyCapacity)
	}
	return nil
}
