package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/shiftguard/pkg/config"
	"github.com/ccollicutt/shiftguard/pkg/parser"
	"github.com/ccollicutt/shiftguard/pkg/record"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a ShiftGuard configuration file without running analysis.

Checks:
  - YAML syntax
  - Required fields (sources or database, column names)
  - Rule thresholds
  - Webhook settings
  - Source file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	// Load and validate config
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Report what we found
	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Sources:        %d pattern(s)\n", len(cfg.Sources))
	if cfg.Database != nil {
		fmt.Fprintf(w, "  Database:       %s\n", cfg.Database.Driver)
	}
	fmt.Fprintf(w, "  On parse error: %s\n", cfg.OnParseError)
	fmt.Fprintf(w, "  Parallelism:    %d\n", cfg.Parallelism)

	layouts := cfg.TimestampLayouts
	if len(layouts) == 0 {
		layouts = record.DefaultTimestampLayouts
	}
	fmt.Fprintf(w, "  Timestamps:     %s\n", strings.Join(layouts, " | "))

	fmt.Fprintf(w, "\nColumns:\n")
	fmt.Fprintf(w, "  employee:  %s\n", cfg.Columns.Employee)
	fmt.Fprintf(w, "  clock_in:  %s\n", cfg.Columns.ClockIn)
	fmt.Fprintf(w, "  clock_out: %s\n", cfg.Columns.ClockOut)
	fmt.Fprintf(w, "  duration:  %s\n", cfg.Columns.Duration)

	// List rules
	fmt.Fprintf(w, "\nRules:\n")
	for i, name := range config.RuleNames {
		state := "enabled"
		if !cfg.Rules.Enabled(name) {
			state = "disabled"
		}
		fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, state, name)
		fmt.Fprintf(w, "     %s\n", describeRule(name, &cfg.Rules))
	}

	if len(cfg.Webhooks) > 0 {
		fmt.Fprintf(w, "\nWebhooks: %d\n", len(cfg.Webhooks))
	}

	if len(cfg.Sources) == 0 {
		return nil
	}

	// Check if sources exist (warnings only)
	files, err := parser.ExpandGlobs(cfg.Sources)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error expanding source patterns: %v\n", err)
		return nil
	}

	var existing []string
	for _, f := range files {
		if fileExists(f) {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		fmt.Fprintf(w, "\nWarning: No files match source patterns\n")
		return nil
	}

	fmt.Fprintf(w, "\nTimecard files matched: %d\n", len(existing))
	for _, f := range existing {
		fmt.Fprintf(w, "  - %s\n", f)
	}

	return nil
}

// describeRule summarizes a rule's thresholds in one line.
func describeRule(name string, rules *config.RulesConfig) string {
	switch name {
	case config.RuleConsecutiveDays:
		r := rules.ConsecutiveDays
		return fmt.Sprintf("%d shifts starting within %d calendar days", r.RequiredShifts, r.WindowDays)
	case config.RuleShortRestGap:
		r := rules.ShortRestGap
		return fmt.Sprintf("next shift starts more than %g and less than %g hours later", r.MinHours, r.MaxHours)
	case config.RuleLongShift:
		return fmt.Sprintf("worked duration above %g hours", rules.LongShift.MaxHours)
	}
	return ""
}
