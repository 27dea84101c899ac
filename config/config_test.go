package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/manmonths/core/allocation"
	"github.com/kilianp07/manmonths/core/history"
	"github.com/kilianp07/manmonths/core/loader"
	"github.com/kilianp07/manmonths/infra/mqtt"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `allocation:
  max_yearly_capacity: 12
input:
  sheet: "Projects"
output:
  dir: "out"
  formats:
    - type: xlsx
      conf:
        analysis_sheet: "Grid"
    - type: json
history:
  backend: sqlite
  path: "runs.db"
metrics:
  sinks:
    - type: nop
server:
  token: "secret"
mqtt:
  broker: "tcp://localhost:1883"
sentry:
  dsn: ""
logging:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"capacity", cfg.Allocation.MaxYearlyCapacity, 12},
		{"sheet", cfg.Input.Sheet, "Projects"},
		{"period column default", cfg.Input.PeriodColumn, loader.PeriodColumn},
		{"output dir", cfg.Output.Dir, "out"},
		{"formats", len(cfg.Output.Formats), 2},
		{"analysis sheet", cfg.Output.Formats[0].Conf["analysis_sheet"], "Grid"},
		{"history backend", cfg.History.Backend, history.BackendSQLite},
		{"metrics sinks", len(cfg.Metrics.Sinks), 1},
		{"server address default", cfg.Server.Address, ":8080"},
		{"server token", cfg.Server.Token, "secret"},
		{"mqtt topic default", cfg.MQTT.Topic, mqtt.DefaultTopic},
		{"log level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	path := writeFile(t, "config.json", `{"allocation": {"max_yearly_capacity": 9}}`)
	t.Setenv("K_ALLOCATION__MAX_YEARLY_CAPACITY", "7")
	t.Setenv("K_INPUT__SHEET", "Φύλλο1")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Allocation.MaxYearlyCapacity)
	assert.Equal(t, "Φύλλο1", cfg.Input.Sheet)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, allocation.DefaultMaxYearlyCapacity, cfg.Allocation.MaxYearlyCapacity)
	assert.Equal(t, loader.DefaultColumns(), cfg.Input.Columns())
	assert.Equal(t, "xlsx", cfg.Output.Formats[0].Type)
	assert.Equal(t, history.BackendJSONL, cfg.History.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.MQTT.Enabled())
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"capacity": "allocation:\n  max_yearly_capacity: -1\n",
		"backend":  "history:\n  backend: postgres\n",
		"level":    "logging:\n  level: loud\n",
		"formats":  "output:\n  formats:\n    - type: csv\n    - type: csv\n",
		"columns":  "input:\n  period_column: A\n  units_column: A\n",
		"mqtt qos": "mqtt:\n  broker: tcp://x:1883\n  qos: 3\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", data))
			assert.Error(t, err)
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(writeFile(t, "config.toml", ""))
	assert.Error(t, err)
}
