package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/shiftguard/pkg/config"
	"github.com/ccollicutt/shiftguard/pkg/detector"
	"github.com/ccollicutt/shiftguard/pkg/record"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	Sheet       string
	ShowAll     bool
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <timecard-file>",
		Short: "Detect columns and timestamp format in a timecard file",
		Long: `Analyze a timecard export to propose its column mapping and timestamp layout.

Samples rows from the file, matches the header against known column names and
tests clock-in and clock-out values against common timestamp layouts.
Reports the detected format with confidence score and provides a ready-to-use
YAML configuration snippet.

Optionally generates a starter config file with --write-config.

Supports:
  - CSV, TSV and XLSX files
  - ISO 8601 and RFC 3339 timestamps
  - US and European dates (MM/DD vs DD/MM is flagged when the sample cannot tell)
  - 12-hour clock with AM/PM
  - Excel serial dates

Example:
  shiftguard detect timecards.csv
  shiftguard detect --sample 500 --sheet "Week 1" Assignment_Timecard.xlsx
  shiftguard detect --write-config shiftguard.yaml timecards.csv
  shiftguard detect -w shiftguard.yaml timecards.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 100, "Number of rows to sample")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "Worksheet to read from XLSX files (default first sheet)")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all detected formats, not just the best match")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	file := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	// Check file exists
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return fmt.Errorf("timecard file not found: %s", file)
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize), detector.WithSheet(opts.Sheet))

	result, err := d.DetectFromFile(ctx, file)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	// Write config file if requested
	if opts.WriteConfig != "" {
		if err := writeStarterConfig(w, result, file, opts.WriteConfig); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(w, result, file, opts)
	default:
		return outputDetectText(w, result, file, opts)
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, file string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== Timecard Format Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", file)
	fmt.Fprintf(w, "Rows sampled: %d\n", result.SampledRows)
	fmt.Fprintf(w, "Header: %s\n", strings.Join(result.Headers, ", "))
	fmt.Fprintln(w)

	// Columns
	fmt.Fprintln(w, "Columns:")
	for _, c := range []struct{ field, header string }{
		{record.FieldEmployee, result.Columns.Employee},
		{record.FieldClockIn, result.Columns.ClockIn},
		{record.FieldClockOut, result.Columns.ClockOut},
		{record.FieldDuration, result.Columns.Duration},
	} {
		header := c.header
		if header == "" {
			header = "(not found)"
		}
		fmt.Fprintf(w, "  %-10s %s\n", c.field+":", header)
	}
	fmt.Fprintln(w)

	if len(result.Missing) > 0 {
		fmt.Fprintf(w, "WARNING: No column found for: %s\n", strings.Join(result.Missing, ", "))
		fmt.Fprintln(w, "Set these under 'columns:' in your config.")
		fmt.Fprintln(w)
	}

	if result.Duration.Style != "" {
		fmt.Fprintf(w, "Durations: %s style (%d/%d values parsed)\n",
			result.Duration.Style, result.Duration.Parsed, result.Duration.Sampled)
		fmt.Fprintln(w)
	}

	if !result.HasMatch() {
		fmt.Fprintln(w, "No timestamp format detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: The file may use an uncommon format.")
		fmt.Fprintln(w, "Add a Go layout for it under 'timestamp_layouts:' in your config.")
		return nil
	}

	// Show best match
	best := result.BestMatch()
	fmt.Fprintf(w, "Detected Format: %s\n", best.Format.Name)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d values matched)\n",
		best.Confidence*100, best.MatchCount, result.TimestampValues)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sample value:\n  %s\n", best.SampleValue)
	fmt.Fprintf(w, "Parsed as: %s\n", best.ParsedTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintln(w)

	if result.AmbiguityNote != "" {
		fmt.Fprintln(w, "WARNING: This format has date ordering ambiguity (MM/DD vs DD/MM).")
		fmt.Fprintf(w, "Note: %s\n", result.AmbiguityNote)
		fmt.Fprintln(w)
	}

	// YAML snippet
	snippet, err := configSnippet(result)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "--- Configuration snippet (copy to your config file) ---")
	fmt.Fprintln(w)
	fmt.Fprint(w, snippet)
	fmt.Fprintln(w)

	// Show alternatives if requested
	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- Alternative formats detected ---")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%.1f%% confidence)\n", i+2, m.Format.Name, m.Confidence*100)
			fmt.Fprintf(w, "   layout: %q\n", m.Format.Layout)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// JSONMatch represents a format match in JSON output.
type JSONMatch struct {
	Name        string  `json:"name"`
	Layout      string  `json:"layout"`
	Confidence  float64 `json:"confidence"`
	MatchCount  int     `json:"match_count"`
	SampleValue string  `json:"sample_value"`
	Ambiguous   bool    `json:"ambiguous,omitempty"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File            string         `json:"file"`
	Headers         []string       `json:"headers"`
	Columns         record.Columns `json:"columns"`
	Missing         []string       `json:"missing,omitempty"`
	DurationStyle   string         `json:"duration_style,omitempty"`
	Matches         []JSONMatch    `json:"matches"`
	SampledRows     int            `json:"sampled_rows"`
	TimestampValues int            `json:"timestamp_values"`
	ParsedValues    int            `json:"parsed_values"`
	AmbiguityNote   string         `json:"ambiguity_note,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, file string, opts *DetectOptions) error {
	out := JSONOutput{
		File:            file,
		Headers:         result.Headers,
		Columns:         result.Columns,
		Missing:         result.Missing,
		DurationStyle:   result.Duration.Style,
		SampledRows:     result.SampledRows,
		TimestampValues: result.TimestampValues,
		ParsedValues:    result.ParsedValues,
		AmbiguityNote:   result.AmbiguityNote,
		Matches:         make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1] // Only show best match
	}

	for _, m := range matches {
		out.Matches = append(out.Matches, JSONMatch{
			Name:        m.Format.Name,
			Layout:      m.Format.Layout,
			Confidence:  m.Confidence,
			MatchCount:  m.MatchCount,
			SampleValue: m.SampleValue,
			Ambiguous:   m.Format.Ambiguous,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// snippet is the part of the config the detector can fill in.
type snippet struct {
	Columns          record.Columns `yaml:"columns"`
	TimestampLayouts []string       `yaml:"timestamp_layouts,omitempty"`
}

// configSnippet renders the detected columns and layout as YAML.
// Excel serial dates need no layout.
func configSnippet(result *detector.DetectionResult) (string, error) {
	s := snippet{Columns: result.Columns}
	if best := result.BestMatch(); best != nil && best.Format.Layout != detector.ExcelSerialLayout {
		s.TimestampLayouts = []string{best.Format.Layout}
	}

	data, err := yaml.Marshal(&s)
	if err != nil {
		return "", fmt.Errorf("rendering config snippet: %w", err)
	}
	return string(data), nil
}

// writeStarterConfig generates a starter config file with the detected format.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, file, configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	// Need columns and a detected format to generate config
	if !result.Complete() {
		if !result.HasMatch() {
			return fmt.Errorf("cannot generate config: no timestamp format detected")
		}
		return fmt.Errorf("cannot generate config: no column found for %s", strings.Join(result.Missing, ", "))
	}

	content, err := generateStarterConfig(file, result)
	if err != nil {
		return err
	}

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig creates a YAML config template.
func generateStarterConfig(file string, result *detector.DetectionResult) (string, error) {
	// Get absolute path for the timecard file if possible
	absFile := file
	if abs, err := filepath.Abs(file); err == nil {
		absFile = abs
	}

	snippet, err := configSnippet(result)
	if err != nil {
		return "", err
	}

	best := result.BestMatch()

	return fmt.Sprintf(`# ShiftGuard Configuration
# Generated by: shiftguard detect
# Detected format: %s (%.0f%% confidence)

sources:
  - %s
  # Add more timecard files or use globs:
  # - timecards/*.csv

%s
# fail stops on the first malformed row; skip drops it and reports it.
on_parse_error: fail

rules:
  consecutive_days:
    enabled: true
    window_days: %d
    required_shifts: %d
  short_rest_gap:
    enabled: true
    min_hours: %g
    max_hours: %g
  long_shift:
    enabled: true
    max_hours: %g

# webhooks:
#   - name: payroll-alerts
#     url: https://hooks.example.com/shiftguard
#     token: ${SHIFTGUARD_WEBHOOK_TOKEN}
#     trigger: on_issues
`, best.Format.Name, best.Confidence*100,
		yamlQuote(absFile),
		snippet,
		config.DefaultWindowDays, config.DefaultRequiredShifts,
		config.DefaultGapMinHours, config.DefaultGapMaxHours,
		config.DefaultLongShiftHours), nil
}

// yamlQuote quotes s as a YAML scalar.
func yamlQuote(s string) string {
	data, err := yaml.Marshal(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(string(data))
}
