package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/shiftguard/pkg/parser"
	"github.com/ccollicutt/shiftguard/pkg/record"
)

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and fills in defaults for
// optional values left at zero.
func Validate(cfg *Config) error {
	if len(cfg.Sources) == 0 && cfg.Database == nil {
		return errors.New("sources: at least one timecard source or a database is required")
	}

	if cfg.Database != nil {
		if err := validateDatabase(cfg.Database); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}

	if err := validateColumns(&cfg.Columns); err != nil {
		return fmt.Errorf("columns: %w", err)
	}

	for i, layout := range cfg.TimestampLayouts {
		if strings.TrimSpace(layout) == "" {
			return fmt.Errorf("timestamp_layouts[%d]: layout is empty", i)
		}
	}

	if cfg.OnParseError == "" {
		cfg.OnParseError = DefaultParseErrorPolicy
	}
	if !parser.ParseErrorPolicy(cfg.OnParseError).Valid() {
		return fmt.Errorf("on_parse_error: invalid value %q (must be fail or skip)", cfg.OnParseError)
	}

	if cfg.Parallelism < 0 {
		return fmt.Errorf("parallelism: must be >= 0, got %d", cfg.Parallelism)
	}
	if cfg.Parallelism == 0 {
		cfg.Parallelism = DefaultParallelism
	}

	if err := validateRules(&cfg.Rules); err != nil {
		return fmt.Errorf("rules.%w", err)
	}

	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateDatabase(db *DatabaseConfig) error {
	if db.Driver == "" {
		return errors.New("driver is required")
	}
	if !parser.SupportedDriver(db.Driver) {
		return fmt.Errorf("invalid driver %q (must be sqlite or pgx)", db.Driver)
	}

	db.DSN = expandEnvVar(db.DSN)
	if db.DSN == "" {
		return errors.New("dsn is required")
	}

	if strings.TrimSpace(db.Query) == "" {
		return errors.New("query is required")
	}

	return nil
}

func validateColumns(c *record.Columns) error {
	fields := []struct {
		name  string
		value string
	}{
		{record.FieldEmployee, c.Employee},
		{record.FieldClockIn, c.ClockIn},
		{record.FieldClockOut, c.ClockOut},
		{record.FieldDuration, c.Duration},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%s is required", f.name)
		}
	}
	return nil
}

func validateRules(r *RulesConfig) error {
	if !r.ConsecutiveDays.Enabled && !r.ShortRestGap.Enabled && !r.LongShift.Enabled {
		return errors.New("enabled: at least one rule must be enabled")
	}

	cd := &r.ConsecutiveDays
	if cd.WindowDays == 0 {
		cd.WindowDays = DefaultWindowDays
	}
	if cd.RequiredShifts == 0 {
		cd.RequiredShifts = DefaultRequiredShifts
	}
	if cd.WindowDays < 1 {
		return fmt.Errorf("%s: window_days must be >= 1, got %d", RuleConsecutiveDays, cd.WindowDays)
	}
	if cd.RequiredShifts < 1 {
		return fmt.Errorf("%s: required_shifts must be >= 1, got %d", RuleConsecutiveDays, cd.RequiredShifts)
	}

	gap := &r.ShortRestGap
	if gap.MaxHours == 0 {
		gap.MaxHours = DefaultGapMaxHours
	}
	if gap.MinHours < 0 {
		return fmt.Errorf("%s: min_hours must be >= 0, got %g", RuleShortRestGap, gap.MinHours)
	}
	if gap.MaxHours <= gap.MinHours {
		return fmt.Errorf("%s: max_hours (%g) must be greater than min_hours (%g)",
			RuleShortRestGap, gap.MaxHours, gap.MinHours)
	}

	long := &r.LongShift
	if long.MaxHours == 0 {
		long.MaxHours = DefaultLongShiftHours
	}
	if long.MaxHours < 0 {
		return fmt.Errorf("%s: max_hours must be > 0, got %g", RuleLongShift, long.MaxHours)
	}

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerOnIssues
	case WebhookTriggerOnIssues, WebhookTriggerAlways, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be on_issues, always, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	if wh.Retries < 0 || wh.Retries > MaxWebhookRetries {
		return fmt.Errorf("retries must be between 0 and %d, got %d", MaxWebhookRetries, wh.Retries)
	}

	return nil
}

// expandEnvVar expands a value of the form ${VAR} or $VAR. Anything else is
// returned unchanged.
func expandEnvVar(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	if strings.HasPrefix(s, "$") && !strings.ContainsAny(s[1:], "$/:@ ") && len(s) > 1 {
		return os.Getenv(s[1:])
	}

	return s
}
