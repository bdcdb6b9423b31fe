// Package config provides configuration loading and validation for ShiftGuard.
package config

import (
	"time"

	"github.com/ccollicutt/shiftguard/pkg/record"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// Sources are timecard files or glob patterns (.csv, .tsv, .xlsx).
	Sources []string `yaml:"sources"`

	// Sheet selects the workbook sheet for .xlsx sources. Empty means the first sheet.
	Sheet string `yaml:"sheet,omitempty"`

	// Database is an optional SQL source read after the file sources.
	Database *DatabaseConfig `yaml:"database,omitempty"`

	// Columns maps logical fields to input header names.
	Columns record.Columns `yaml:"columns"`

	// TimestampLayouts are Go time layouts tried in order for clock-in and
	// clock-out values. Empty selects the built-in list.
	TimestampLayouts []string `yaml:"timestamp_layouts,omitempty"`

	// OnParseError is "fail" or "skip".
	OnParseError string `yaml:"on_parse_error,omitempty"`

	// Parallelism is the number of employees evaluated concurrently.
	Parallelism int `yaml:"parallelism,omitempty"`

	Rules    RulesConfig     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// DatabaseConfig describes a SQL table or query holding shift rows.
type DatabaseConfig struct {
	// Driver is sqlite or pgx (postgres is accepted as an alias).
	Driver string `yaml:"driver"`

	// DSN is the driver connection string. ${VAR} references are expanded.
	DSN string `yaml:"dsn"`

	// Query selects the shift rows. Result column names are matched against Columns.
	Query string `yaml:"query"`
}

// Rule names, as used in YAML and by --rule.
const (
	RuleConsecutiveDays = "consecutive_days"
	RuleShortRestGap    = "short_rest_gap"
	RuleLongShift       = "long_shift"
)

// RuleNames lists every rule in evaluation order.
var RuleNames = []string{RuleConsecutiveDays, RuleShortRestGap, RuleLongShift}

// RulesConfig holds the thresholds of the three compliance rules.
type RulesConfig struct {
	ConsecutiveDays ConsecutiveDaysRule `yaml:"consecutive_days"`
	ShortRestGap    ShortRestGapRule    `yaml:"short_rest_gap"`
	LongShift       LongShiftRule       `yaml:"long_shift"`
}

// ConsecutiveDaysRule flags an employee with RequiredShifts shifts starting
// inside a WindowDays calendar-day window.
type ConsecutiveDaysRule struct {
	Enabled        bool `yaml:"enabled"`
	WindowDays     int  `yaml:"window_days"`
	RequiredShifts int  `yaml:"required_shifts"`
}

// ShortRestGapRule flags a start-to-start gap strictly between MinHours and MaxHours.
type ShortRestGapRule struct {
	Enabled  bool    `yaml:"enabled"`
	MinHours float64 `yaml:"min_hours"`
	MaxHours float64 `yaml:"max_hours"`
}

// LongShiftRule flags a shift whose worked duration exceeds MaxHours.
type LongShiftRule struct {
	Enabled  bool    `yaml:"enabled"`
	MaxHours float64 `yaml:"max_hours"`
}

// Enabled reports whether the named rule is switched on.
func (r *RulesConfig) Enabled(name string) bool {
	switch name {
	case RuleConsecutiveDays:
		return r.ConsecutiveDays.Enabled
	case RuleShortRestGap:
		return r.ShortRestGap.Enabled
	case RuleLongShift:
		return r.LongShift.Enabled
	}
	return false
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnIssues fires only when findings are detected (default).
	WebhookTriggerOnIssues WebhookTrigger = "on_issues"
	// WebhookTriggerAlways fires after every analysis.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending analysis results.
type WebhookConfig struct {
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token. ${VAR} and $VAR are expanded.
	Token string `yaml:"token,omitempty"`

	// Trigger defaults to on_issues.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Retries is the number of extra attempts on a network error, 429 or 5xx.
	Retries int `yaml:"retries,omitempty"`
}
