package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Codes configures the billing-code taxonomy the engine operates on. The
// assessment and recurring sets must be disjoint; the anchor code must be a
// member of the recurring set.
type Codes struct {
	Anchor     string   `mapstructure:"anchor" validate:"required"`
	Assessment []string `mapstructure:"assessment" validate:"required,min=1"`
	Recurring  []string `mapstructure:"recurring" validate:"required,min=1"`
}

// Thresholds configures the temporal business rules of the funnel and the
// change detector.
type Thresholds struct {
	ActiveDays    int     `mapstructure:"active_days" validate:"min=1"`
	StaleDays     int     `mapstructure:"stale_days" validate:"min=1"`
	ChangePercent float64 `mapstructure:"change_percent" validate:"gt=0"`
}

type Config struct {
	Codes      Codes      `mapstructure:"codes"`
	Thresholds Thresholds `mapstructure:"thresholds"`
}

// Default returns the configuration matching the original billing taxonomy:
// psychological assessment codes funneling into ABA services anchored on
// 97153.
func Default() Config {
	return Config{
		Codes: Codes{
			Anchor:     "97153",
			Assessment: []string{"90791", "96130", "96131", "96136", "96137"},
			Recurring:  []string{"97153", "97155"},
		},
		Thresholds: Thresholds{
			ActiveDays:    45,
			StaleDays:     75,
			ChangePercent: 25,
		},
	}
}

// Load reads a config file (yaml, toml or json — anything viper handles)
// and validates it. Fields absent from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks structural constraints plus the cross-field rules the
// engine relies on as preconditions.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	recurring := make(map[string]struct{}, len(c.Codes.Recurring))
	for _, code := range c.Codes.Recurring {
		recurring[code] = struct{}{}
	}
	for _, code := range c.Codes.Assessment {
		if _, ok := recurring[code]; ok {
			return fmt.Errorf("invalid config: code %q is in both the assessment and recurring sets", code)
		}
	}
	if _, ok := recurring[c.Codes.Anchor]; !ok {
		return fmt.Errorf("invalid config: anchor code %q is not in the recurring set", c.Codes.Anchor)
	}
	if c.Thresholds.ActiveDays >= c.Thresholds.StaleDays {
		return fmt.Errorf("invalid config: active_days (%d) must be below stale_days (%d)",
			c.Thresholds.ActiveDays, c.Thresholds.StaleDays)
	}
	return nil
}
