package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "97153", cfg.Codes.Anchor)
	assert.Contains(t, cfg.Codes.Recurring, cfg.Codes.Anchor)
	assert.Equal(t, 45, cfg.Thresholds.ActiveDays)
	assert.Equal(t, 75, cfg.Thresholds.StaleDays)
	assert.Equal(t, 25.0, cfg.Thresholds.ChangePercent)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `codes:
  anchor: "97154"
  assessment: ["90791"]
  recurring: ["97154"]
thresholds:
  active_days: 30
  stale_days: 60
  change_percent: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "97154", cfg.Codes.Anchor)
	assert.Equal(t, []string{"90791"}, cfg.Codes.Assessment)
	assert.Equal(t, 30, cfg.Thresholds.ActiveDays)
	assert.Equal(t, 60, cfg.Thresholds.StaleDays)
	assert.Equal(t, 10.0, cfg.Thresholds.ChangePercent)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `thresholds:
  change_percent: 15
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "97153", cfg.Codes.Anchor)
	assert.Equal(t, 15.0, cfg.Thresholds.ChangePercent)
	assert.Equal(t, 45, cfg.Thresholds.ActiveDays)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			"code in both sets",
			func(c *Config) { c.Codes.Assessment = append(c.Codes.Assessment, "97153") },
			"both the assessment and recurring sets",
		},
		{
			"anchor outside recurring set",
			func(c *Config) { c.Codes.Anchor = "90791" },
			"not in the recurring set",
		},
		{
			"active window at or above stale cutoff",
			func(c *Config) { c.Thresholds.ActiveDays = 75 },
			"must be below stale_days",
		},
		{
			"missing anchor",
			func(c *Config) { c.Codes.Anchor = "" },
			"invalid config",
		},
		{
			"empty assessment set",
			func(c *Config) { c.Codes.Assessment = nil },
			"invalid config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
