package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
sources:
  - timecards/*.csv
columns:
  employee: Employee
  clock_in: Start
  clock_out: End
  duration: Hours
timestamp_layouts:
  - "01/02/2006 03:04 PM"
on_parse_error: skip
parallelism: 4
rules:
  short_rest_gap:
    min_hours: 2
    max_hours: 11
  long_shift:
    enabled: false
`
	path := writeTempFile(t, "config.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Sources) != 1 {
		t.Errorf("Sources = %d, want 1", len(cfg.Sources))
	}
	if cfg.Columns.Employee != "Employee" || cfg.Columns.Duration != "Hours" {
		t.Errorf("Columns = %+v", cfg.Columns)
	}
	if cfg.OnParseError != "skip" {
		t.Errorf("OnParseError = %q, want skip", cfg.OnParseError)
	}
	if cfg.Parallelism != 4 {
		t.Errorf("Parallelism = %d, want 4", cfg.Parallelism)
	}
	if cfg.Rules.ShortRestGap.MinHours != 2 || cfg.Rules.ShortRestGap.MaxHours != 11 {
		t.Errorf("ShortRestGap = %+v", cfg.Rules.ShortRestGap)
	}
	// Unset keys keep their defaults.
	if !cfg.Rules.ShortRestGap.Enabled {
		t.Error("ShortRestGap.Enabled = false, want default true")
	}
	if !cfg.Rules.ConsecutiveDays.Enabled || cfg.Rules.ConsecutiveDays.WindowDays != 7 {
		t.Errorf("ConsecutiveDays = %+v, want defaults", cfg.Rules.ConsecutiveDays)
	}
	if cfg.Rules.LongShift.Enabled {
		t.Error("LongShift.Enabled = true, want false")
	}
}

func TestLoad_MinimalConfigUsesLegacyColumns(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "sources: [Assignment_Timecard.xlsx]\n")
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Columns.Duration != "Timecard Hours (as Time)" {
		t.Errorf("Columns.Duration = %q", cfg.Columns.Duration)
	}
	if cfg.OnParseError != "fail" {
		t.Errorf("OnParseError = %q, want fail", cfg.OnParseError)
	}
	if cfg.Rules.LongShift.MaxHours != 14 {
		t.Errorf("LongShift.MaxHours = %g, want 14", cfg.Rules.LongShift.MaxHours)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(context.Background(), "/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTempFile(t, "invalid.yaml", `invalid: yaml: content: [`)
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvSources, "a.csv, b.xlsx")
	t.Setenv(EnvTimestampLayout, "02.01.2006 15:04")
	t.Setenv(EnvOnParseError, "skip")

	path := writeTempFile(t, "config.yaml", "sources: [ignored.csv]\n")
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Sources) != 2 || cfg.Sources[1] != "b.xlsx" {
		t.Errorf("Sources = %v, want [a.csv b.xlsx]", cfg.Sources)
	}
	if len(cfg.TimestampLayouts) < 2 || cfg.TimestampLayouts[0] != "02.01.2006 15:04" {
		t.Errorf("TimestampLayouts = %v, want env layout first then defaults", cfg.TimestampLayouts)
	}
	if cfg.OnParseError != "skip" {
		t.Errorf("OnParseError = %q, want skip", cfg.OnParseError)
	}
}

func TestLoad_Database(t *testing.T) {
	t.Setenv("SHIFT_DSN", "file:shifts.db")
	content := `
database:
  driver: sqlite
  dsn: ${SHIFT_DSN}
  query: SELECT * FROM shifts
`
	path := writeTempFile(t, "config.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.DSN != "file:shifts.db" {
		t.Errorf("DSN = %q, want expanded value", cfg.Database.DSN)
	}
}

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Sources = []string{"timecards.csv"}
	return cfg
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"no sources", func(c *Config) { c.Sources = nil }, "sources"},
		{"empty column", func(c *Config) { c.Columns.ClockOut = " " }, "columns: clock_out"},
		{"empty layout", func(c *Config) { c.TimestampLayouts = []string{""} }, "timestamp_layouts[0]"},
		{"bad policy", func(c *Config) { c.OnParseError = "retry" }, "on_parse_error"},
		{"negative parallelism", func(c *Config) { c.Parallelism = -1 }, "parallelism"},
		{"all rules disabled", func(c *Config) {
			c.Rules.ConsecutiveDays.Enabled = false
			c.Rules.ShortRestGap.Enabled = false
			c.Rules.LongShift.Enabled = false
		}, "at least one rule"},
		{"negative window", func(c *Config) { c.Rules.ConsecutiveDays.WindowDays = -1 }, "rules.consecutive_days: window_days"},
		{"negative shifts", func(c *Config) { c.Rules.ConsecutiveDays.RequiredShifts = -3 }, "required_shifts"},
		{"gap max below min", func(c *Config) { c.Rules.ShortRestGap.MinHours = 12 }, "rules.short_rest_gap: max_hours"},
		{"negative gap min", func(c *Config) { c.Rules.ShortRestGap.MinHours = -1 }, "min_hours"},
		{"negative long shift", func(c *Config) { c.Rules.LongShift.MaxHours = -2 }, "rules.long_shift"},
		{"database without driver", func(c *Config) { c.Database = &DatabaseConfig{DSN: "x", Query: "q"} }, "database: driver"},
		{"database bad driver", func(c *Config) { c.Database = &DatabaseConfig{Driver: "oracle", DSN: "x", Query: "q"} }, "invalid driver"},
		{"database without query", func(c *Config) { c.Database = &DatabaseConfig{Driver: "sqlite", DSN: "x"} }, "query is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_FillsDefaults(t *testing.T) {
	cfg := &Config{
		Sources: []string{"timecards.csv"},
		Columns: DefaultConfig().Columns,
		Rules: RulesConfig{
			LongShift: LongShiftRule{Enabled: true},
		},
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.OnParseError != DefaultParseErrorPolicy {
		t.Errorf("OnParseError = %q, want %q", cfg.OnParseError, DefaultParseErrorPolicy)
	}
	if cfg.Parallelism != DefaultParallelism {
		t.Errorf("Parallelism = %d, want %d", cfg.Parallelism, DefaultParallelism)
	}
	if cfg.Rules.LongShift.MaxHours != DefaultLongShiftHours {
		t.Errorf("LongShift.MaxHours = %g, want %g", cfg.Rules.LongShift.MaxHours, DefaultLongShiftHours)
	}
	if cfg.Rules.ConsecutiveDays.WindowDays != DefaultWindowDays {
		t.Errorf("WindowDays = %d, want %d", cfg.Rules.ConsecutiveDays.WindowDays, DefaultWindowDays)
	}
	if cfg.Rules.ShortRestGap.MaxHours != DefaultGapMaxHours {
		t.Errorf("ShortRestGap.MaxHours = %g, want %g", cfg.Rules.ShortRestGap.MaxHours, DefaultGapMaxHours)
	}
}

func TestRulesConfig_Enabled(t *testing.T) {
	r := DefaultConfig().Rules
	r.ShortRestGap.Enabled = false

	want := map[string]bool{
		RuleConsecutiveDays: true,
		RuleShortRestGap:    false,
		RuleLongShift:       true,
		"unknown":           false,
	}
	for name, w := range want {
		if got := r.Enabled(name); got != w {
			t.Errorf("Enabled(%q) = %v, want %v", name, got, w)
		}
	}
}

func TestValidate_Webhooks(t *testing.T) {
	tests := []struct {
		name    string
		webhook WebhookConfig
		wantErr bool
	}{
		{"https", WebhookConfig{URL: "https://hooks.example.com/shifts"}, false},
		{"http", WebhookConfig{URL: "http://localhost:8080/hook"}, false},
		{"missing url", WebhookConfig{Name: "ops"}, true},
		{"bad scheme", WebhookConfig{URL: "ftp://example.com"}, true},
		{"no host", WebhookConfig{URL: "https://"}, true},
		{"bad trigger", WebhookConfig{URL: "https://example.com", Trigger: "sometimes"}, true},
		{"always", WebhookConfig{URL: "https://example.com", Trigger: WebhookTriggerAlways}, false},
		{"never", WebhookConfig{URL: "https://example.com", Trigger: WebhookTriggerNever}, false},
		{"retries", WebhookConfig{URL: "https://example.com", Retries: 3}, false},
		{"negative retries", WebhookConfig{URL: "https://example.com", Retries: -1}, true},
		{"too many retries", WebhookConfig{URL: "https://example.com", Retries: MaxWebhookRetries + 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Webhooks = []WebhookConfig{tt.webhook}
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_WebhookDefaults(t *testing.T) {
	t.Setenv("HOOK_TOKEN", "s3cret")

	cfg := validConfig()
	cfg.Webhooks = []WebhookConfig{{URL: "https://example.com", Token: "${HOOK_TOKEN}"}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	wh := cfg.Webhooks[0]
	if wh.Trigger != WebhookTriggerOnIssues {
		t.Errorf("Trigger = %q, want on_issues", wh.Trigger)
	}
	if wh.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", wh.Timeout)
	}
	if wh.Token != "s3cret" {
		t.Errorf("Token = %q, want expanded value", wh.Token)
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("SG_TEST_VAR", "value")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"${SG_TEST_VAR}", "value"},
		{"$SG_TEST_VAR", "value"},
		{"${SG_UNSET_VAR}", ""},
		{"file:shifts.db", "file:shifts.db"},
		{"$", "$"},
	}
	for _, tt := range tests {
		if got := expandEnvVar(tt.in); got != tt.want {
			t.Errorf("expandEnvVar(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}
