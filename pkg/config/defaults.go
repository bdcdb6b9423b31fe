package config

import (
	"os"
	"strings"
	"time"

	"github.com/ccollicutt/shiftguard/pkg/parser"
	"github.com/ccollicutt/shiftguard/pkg/record"
)

// Default values for configuration.
const (
	DefaultWindowDays       = 7
	DefaultRequiredShifts   = 7
	DefaultGapMinHours      = 1.0
	DefaultGapMaxHours      = 10.0
	DefaultLongShiftHours   = 14.0
	DefaultParallelism      = 1
	DefaultWebhookTimeout   = 10 * time.Second
	MaxWebhookRetries       = 5
	DefaultParseErrorPolicy = string(parser.PolicyFail)
)

// Environment variable names.
const (
	EnvSources         = "SHIFTGUARD_SOURCES"
	EnvTimestampLayout = "SHIFTGUARD_TIMESTAMP_LAYOUT"
	EnvDatabaseDSN     = "SHIFTGUARD_DATABASE_DSN"
	EnvOnParseError    = "SHIFTGUARD_ON_PARSE_ERROR"
)

// DefaultConfig returns a configuration with the standard compliance thresholds
// and the legacy timecard column names.
func DefaultConfig() *Config {
	return &Config{
		Sources:      []string{},
		Columns:      record.DefaultColumns(),
		OnParseError: DefaultParseErrorPolicy,
		Parallelism:  DefaultParallelism,
		Rules: RulesConfig{
			ConsecutiveDays: ConsecutiveDaysRule{
				Enabled:        true,
				WindowDays:     DefaultWindowDays,
				RequiredShifts: DefaultRequiredShifts,
			},
			ShortRestGap: ShortRestGapRule{
				Enabled:  true,
				MinHours: DefaultGapMinHours,
				MaxHours: DefaultGapMaxHours,
			},
			LongShift: LongShiftRule{
				Enabled:  true,
				MaxHours: DefaultLongShiftHours,
			},
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if v := os.Getenv(EnvSources); v != "" {
		var sources []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sources = append(sources, s)
			}
		}
		c.Sources = sources
	}

	// An extra layout goes first so it wins over the configured ones.
	if layout := os.Getenv(EnvTimestampLayout); layout != "" {
		base := c.TimestampLayouts
		if len(base) == 0 {
			base = record.DefaultTimestampLayouts
		}
		c.TimestampLayouts = append([]string{layout}, base...)
	}

	if dsn := os.Getenv(EnvDatabaseDSN); dsn != "" && c.Database != nil {
		c.Database.DSN = dsn
	}

	if policy := os.Getenv(EnvOnParseError); policy != "" {
		c.OnParseError = policy
	}
}
