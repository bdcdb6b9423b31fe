package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/shiftguard/pkg/config"
	"github.com/ccollicutt/shiftguard/pkg/detector"
	"github.com/ccollicutt/shiftguard/pkg/parser"
	"github.com/ccollicutt/shiftguard/pkg/record"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose       bool
	CheckWebhooks bool
	SampleSize    int
}

// Status is the outcome of one diagnostic check.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// label is the tag printed in front of a check.
func (s Status) label() string {
	switch s {
	case StatusOK:
		return "PASS"
	case StatusWarning:
		return "WARN"
	default:
		return "FAIL"
	}
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   Status
	Message  string
	Details  []string
	Suggests []string
}

// fromIssues sets the status from collected problems. Errors win over warnings.
func (r *DiagnosticResult) fromIssues(errs, warnings []string, okMessage string) {
	switch {
	case len(errs) > 0:
		r.Status = StatusError
		r.Message = fmt.Sprintf("%d configuration issue(s)", len(errs))
		r.Details = append(errs, warnings...)
	case len(warnings) > 0:
		r.Status = StatusWarning
		r.Message = fmt.Sprintf("%d warning(s)", len(warnings))
		r.Details = warnings
	default:
		r.Status = StatusOK
		r.Message = okMessage
	}
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <config-file>",
		Short: "Diagnose common configuration issues",
		Long: `Diagnose common configuration issues.

This command checks your configuration file for common problems:
- Config file syntax and structure
- Timecard file existence and format
- Mapped columns present in each file header
- Sample timestamps and durations parse with the configured layouts
- Database query (if configured)
- Rule thresholds
- Webhook settings, and reachability with --check-webhooks

Example:
  shiftguard diagnose shiftguard.yaml
  shiftguard diagnose -v shiftguard.yaml  # verbose output`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")
	cmd.Flags().BoolVar(&opts.CheckWebhooks, "check-webhooks", false, "Send a HEAD request to each webhook")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 10, "Rows to sample from each timecard file")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, configPath string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	// 1. Check config file existence
	result := checkConfigExists(configPath)
	results = append(results, result)
	if result.Status == StatusError {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 2. Parse config file
	cfg, result := checkConfigParseable(ctx, configPath)
	results = append(results, result)
	if result.Status == StatusError {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 3. Check timecard sources
	sourceResults, files := checkSources(cfg)
	results = append(results, sourceResults...)

	// 4. Check headers, timestamps and durations against actual rows
	results = append(results, checkSampleRows(ctx, cfg, files, opts)...)

	// 5. Check database query
	if cfg.Database != nil {
		results = append(results, checkDatabase(ctx, cfg, opts))
	}

	// 6. Check rules configuration
	results = append(results, checkRules(cfg)...)

	// 7. Check webhooks configuration
	results = append(results, checkWebhooks(ctx, cfg, opts)...)

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = StatusError
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Use 'shiftguard detect <timecard-file> --write-config shiftguard.yaml' to generate a starter config",
		}
		return result
	}
	if err != nil {
		result.Status = StatusError
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = StatusError
		result.Message = "Path is a directory, not a file"
		return result
	}
	if info.Size() == 0 {
		result.Status = StatusError
		result.Message = "Config file is empty"
		result.Suggests = []string{
			"Use 'shiftguard detect <timecard-file> --write-config shiftguard.yaml' to generate a starter config",
		}
		return result
	}

	result.Status = StatusOK
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = StatusError
		result.Message = fmt.Sprintf("Failed to parse config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return nil, result
	}

	result.Status = StatusOK
	result.Message = "Config file parsed successfully"
	result.Details = []string{
		fmt.Sprintf("Sources: %d", len(cfg.Sources)),
		fmt.Sprintf("Database: %t", cfg.Database != nil),
		fmt.Sprintf("On parse error: %s", cfg.OnParseError),
	}
	return cfg, result
}

// checkSources checks each source pattern and returns the readable files.
func checkSources(cfg *config.Config) ([]DiagnosticResult, []string) {
	results := []DiagnosticResult{}
	var files []string

	if len(cfg.Sources) == 0 {
		// A database-only config is valid
		return results, nil
	}

	for _, source := range cfg.Sources {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Source: %s", source),
		}

		var candidates []string
		if strings.ContainsAny(source, "*?[") {
			matches, err := filepath.Glob(source)
			if err != nil {
				result.Status = StatusError
				result.Message = fmt.Sprintf("Invalid glob pattern: %v", err)
				results = append(results, result)
				continue
			}
			if len(matches) == 0 {
				result.Status = StatusWarning
				result.Message = "Glob pattern matches no files"
				result.Suggests = []string{
					"Check if the timecard files exist at this path",
					"Verify the glob pattern syntax",
				}
				results = append(results, result)
				continue
			}
			candidates = matches
		} else {
			info, err := os.Stat(source)
			switch {
			case os.IsNotExist(err):
				result.Status = StatusError
				result.Message = "File does not exist"
				result.Suggests = []string{"Check if the timecard file path is correct"}
			case err != nil:
				result.Status = StatusError
				result.Message = fmt.Sprintf("Cannot access file: %v", err)
				result.Suggests = []string{"Check file permissions"}
			case info.IsDir():
				result.Status = StatusError
				result.Message = "Path is a directory, not a file"
				result.Suggests = []string{
					"Use a glob pattern to match files in directory",
					"Example: timecards/*.csv",
				}
			case info.Size() == 0:
				result.Status = StatusWarning
				result.Message = "File is empty (0 bytes)"
			}
			if result.Status != "" {
				results = append(results, result)
				continue
			}
			candidates = []string{source}
		}

		var unsupported []string
		for _, f := range candidates {
			if parser.IsSupportedFile(f) {
				files = append(files, f)
			} else {
				unsupported = append(unsupported, f)
			}
		}

		switch {
		case len(unsupported) == len(candidates):
			result.Status = StatusError
			result.Message = "No supported timecard files (.csv, .tsv, .xlsx)"
			result.Details = unsupported
		case len(unsupported) > 0:
			result.Status = StatusWarning
			result.Message = fmt.Sprintf("%d file(s) have an unsupported extension", len(unsupported))
			result.Details = unsupported
		default:
			result.Status = StatusOK
			result.Message = fmt.Sprintf("Matches %d file(s)", len(candidates))
			result.Details = candidates
		}
		results = append(results, result)
	}

	if len(files) == 0 && cfg.Database == nil {
		results = append(results, DiagnosticResult{
			Check:   "Timecard Files Summary",
			Status:  StatusError,
			Message: "No readable timecard files found",
			Suggests: []string{
				"Ensure at least one timecard file exists and is readable",
			},
		})
	}

	return results, files
}

// sampleStats counts how sampled rows convert.
type sampleStats struct {
	rows        int
	ok          int
	schemaErr   *record.SchemaError
	parseErrs   []*record.ParseError
	firstRecord *record.ShiftRecord
}

// sampleSource converts up to n rows of src with the configured mapping.
func sampleSource(ctx context.Context, cfg *config.Config, src parser.RowSource, n int) (*sampleStats, error) {
	conv := newConverter(cfg)
	stats := &sampleStats{}

	for stats.rows < n {
		row, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}
		stats.rows++

		rec, err := conv.Convert(row)
		var se *record.SchemaError
		var pe *record.ParseError
		switch {
		case err == nil:
			stats.ok++
			if stats.firstRecord == nil {
				stats.firstRecord = &rec
			}
		case errors.As(err, &se):
			stats.schemaErr = se
			return stats, nil
		case errors.As(err, &pe):
			stats.parseErrs = append(stats.parseErrs, pe)
		default:
			return stats, err
		}
	}

	return stats, nil
}

func checkSampleRows(ctx context.Context, cfg *config.Config, files []string, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	n := opts.SampleSize
	if n <= 0 {
		n = 10
	}

	for _, file := range files {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Sample Rows: %s", filepath.Base(file)),
		}

		src, err := parser.OpenFiles([]string{file}, parser.OpenOptions{Sheet: cfg.Sheet})
		if err != nil {
			result.Status = StatusError
			result.Message = fmt.Sprintf("Cannot open file: %v", err)
			results = append(results, result)
			continue
		}
		stats, err := sampleSource(ctx, cfg, src, n)
		_ = src.Close()

		switch {
		case err != nil:
			result.Status = StatusError
			result.Message = fmt.Sprintf("Cannot read file: %v", err)
		case stats.rows == 0:
			result.Status = StatusWarning
			result.Message = "File has no data rows"
		case stats.schemaErr != nil:
			result.Status = StatusError
			result.Message = fmt.Sprintf("Header is missing mapped column(s): %s",
				strings.Join(stats.schemaErr.Missing, ", "))
			result.Suggests = suggestFromFile(ctx, cfg, file)
		case stats.ok == 0:
			result.Status = StatusError
			result.Message = fmt.Sprintf("No sampled rows parse (%d tried)", stats.rows)
			result.Details = describeParseErrors(stats.parseErrs)
			result.Suggests = suggestFromFile(ctx, cfg, file)
		case len(stats.parseErrs) > 0:
			result.Status = StatusWarning
			result.Message = fmt.Sprintf("%d/%d sampled rows parse", stats.ok, stats.rows)
			result.Details = describeParseErrors(stats.parseErrs)
			if cfg.OnParseError == string(parser.PolicyFail) {
				result.Suggests = []string{
					"Analysis stops at the first malformed row; set on_parse_error: skip to drop them instead",
				}
			}
		default:
			result.Status = StatusOK
			result.Message = fmt.Sprintf("%d/%d sampled rows parse", stats.ok, stats.rows)
			if opts.Verbose && stats.firstRecord != nil {
				r := stats.firstRecord
				result.Details = []string{
					fmt.Sprintf("First shift: %s %s to %s (%.2f hours)", r.EmployeeID,
						r.ClockIn.Format("2006-01-02 15:04"), r.ClockOut.Format("2006-01-02 15:04"), r.DurationHours),
				}
			}
		}

		results = append(results, result)
	}

	return results
}

func describeParseErrors(errs []*record.ParseError) []string {
	var details []string
	for i, pe := range errs {
		if i == 3 {
			details = append(details, fmt.Sprintf("... and %d more", len(errs)-i))
			break
		}
		details = append(details, truncate(pe.Error(), 100))
	}
	return details
}

// suggestFromFile runs the detector and turns its findings into hints.
func suggestFromFile(ctx context.Context, cfg *config.Config, file string) []string {
	d := detector.New(detector.WithSampleSize(20), detector.WithSheet(cfg.Sheet))
	det, err := d.DetectFromFile(ctx, file)
	if err != nil || det == nil {
		return []string{"Use 'shiftguard detect " + file + "' to inspect the file"}
	}

	suggests := []string{}
	if len(det.Headers) > 0 {
		suggests = append(suggests, "File header: "+strings.Join(det.Headers, ", "))
	}
	if len(det.Missing) < 4 {
		c := det.Columns
		suggests = append(suggests, fmt.Sprintf("Detected columns: employee=%q clock_in=%q clock_out=%q duration=%q",
			c.Employee, c.ClockIn, c.ClockOut, c.Duration))
	}
	if best := det.BestMatch(); best != nil {
		suggests = append(suggests,
			fmt.Sprintf("Detected timestamp format: %s", best.Format.Name),
			fmt.Sprintf("Suggested layout: %s", best.Format.Layout))
	}
	return suggests
}

func checkDatabase(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) DiagnosticResult {
	db := cfg.Database
	result := DiagnosticResult{
		Check: fmt.Sprintf("Database: %s", db.Driver),
	}

	src, err := parser.NewSQLSource(db.Driver, db.DSN, db.Query)
	if err != nil {
		result.Status = StatusError
		result.Message = fmt.Sprintf("Cannot open database: %v", err)
		return result
	}
	defer src.Close()

	n := opts.SampleSize
	if n <= 0 {
		n = 10
	}
	stats, err := sampleSource(ctx, cfg, src, n)
	switch {
	case err != nil:
		result.Status = StatusError
		result.Message = fmt.Sprintf("Query failed: %v", err)
		result.Suggests = []string{"Check the dsn and run the query by hand"}
	case stats.rows == 0:
		result.Status = StatusWarning
		result.Message = "Query returned no rows"
	case stats.schemaErr != nil:
		result.Status = StatusError
		result.Message = fmt.Sprintf("Query result is missing mapped column(s): %s",
			strings.Join(stats.schemaErr.Missing, ", "))
		result.Suggests = []string{"Alias the selected columns to match 'columns:' (SELECT name AS \"Employee Name\", ...)"}
	case len(stats.parseErrs) > 0:
		result.Status = StatusWarning
		result.Message = fmt.Sprintf("%d/%d sampled rows parse", stats.ok, stats.rows)
		result.Details = describeParseErrors(stats.parseErrs)
	default:
		result.Status = StatusOK
		result.Message = fmt.Sprintf("%d/%d sampled rows parse", stats.ok, stats.rows)
	}

	return result
}

func checkRules(cfg *config.Config) []DiagnosticResult {
	results := []DiagnosticResult{}

	enabled := 0
	for _, name := range config.RuleNames {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Rule: %s", name),
		}

		if !cfg.Rules.Enabled(name) {
			result.Status = StatusOK
			result.Message = "Disabled"
			results = append(results, result)
			continue
		}
		enabled++

		var warnings []string
		switch name {
		case config.RuleConsecutiveDays:
			r := cfg.Rules.ConsecutiveDays
			if r.RequiredShifts > r.WindowDays {
				warnings = append(warnings, fmt.Sprintf(
					"required_shifts (%d) exceeds window_days (%d): only employees with several shifts per day can match",
					r.RequiredShifts, r.WindowDays))
			}
		case config.RuleShortRestGap:
			r := cfg.Rules.ShortRestGap
			if r.MaxHours > 24 {
				warnings = append(warnings, fmt.Sprintf(
					"max_hours (%g) is above 24: consecutive daily shifts will be flagged", r.MaxHours))
			}
		case config.RuleLongShift:
			if cfg.Rules.LongShift.MaxHours >= 24 {
				warnings = append(warnings, fmt.Sprintf(
					"max_hours (%g) is 24 or more: the rule can only match multi-day shifts", cfg.Rules.LongShift.MaxHours))
			}
		}

		result.fromIssues(nil, warnings, describeRule(name, &cfg.Rules))
		results = append(results, result)
	}

	if enabled == 0 {
		results = append(results, DiagnosticResult{
			Check:   "Rules",
			Status:  StatusError,
			Message: "All rules are disabled",
			Suggests: []string{
				"Set enabled: true on at least one rule",
			},
		})
	}

	return results
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== ShiftGuard Configuration Diagnostics ===")
	fmt.Fprintln(w)

	counts := make(map[Status]int)
	for _, r := range results {
		counts[r.Status]++

		fmt.Fprintf(w, "[%s] %s\n", r.Status.label(), r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)
		if opts.Verbose || r.Status != StatusOK {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}
		for _, hint := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", hint)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n",
		counts[StatusOK], counts[StatusWarning], counts[StatusError])

	switch {
	case counts[StatusError] > 0:
		fmt.Fprintln(w, "\nFix the errors above before running analysis.")
	case counts[StatusWarning] > 0:
		fmt.Fprintln(w, "\nConfiguration is usable but has warnings.")
	default:
		fmt.Fprintln(w, "\nConfiguration looks good!")
	}
}

func checkWebhooks(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	if len(cfg.Webhooks) == 0 {
		if !opts.Verbose {
			return nil
		}
		return []DiagnosticResult{{
			Check:   "Webhooks",
			Status:  StatusOK,
			Message: "No webhooks configured (optional)",
		}}
	}

	var results []DiagnosticResult
	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{Check: "Webhook: " + name}
		result.fromIssues(webhookIssues(wh), webhookWarnings(wh), fmt.Sprintf("Trigger: %s", wh.Trigger))
		if result.Status == StatusOK && opts.Verbose {
			result.Details = []string{
				"URL: " + wh.URL,
				fmt.Sprintf("Timeout: %s", wh.Timeout),
				fmt.Sprintf("Retries: %d", wh.Retries),
			}
			if wh.Token != "" {
				result.Details = append(result.Details, "Token: configured")
			}
		}
		results = append(results, result)

		if opts.CheckWebhooks && wh.URL != "" {
			reach := checkWebhookConnectivity(ctx, wh)
			reach.Check = "Webhook Connectivity: " + name
			results = append(results, reach)
		}
	}

	return results
}

// webhookIssues lists problems that stop a webhook from ever being delivered.
func webhookIssues(wh config.WebhookConfig) []string {
	var issues []string

	if wh.URL == "" {
		issues = append(issues, "Missing url")
	} else if u, err := url.Parse(wh.URL); err != nil {
		issues = append(issues, fmt.Sprintf("Invalid URL: %v", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		issues = append(issues, fmt.Sprintf("URL scheme must be http or https, got %q", u.Scheme))
	} else if u.Host == "" {
		issues = append(issues, "URL must have a host")
	}

	switch wh.Trigger {
	case "", config.WebhookTriggerOnIssues, config.WebhookTriggerAlways, config.WebhookTriggerNever:
	default:
		issues = append(issues, fmt.Sprintf("Invalid trigger %q (use on_issues, always, or never)", wh.Trigger))
	}

	return issues
}

func webhookWarnings(wh config.WebhookConfig) []string {
	var warnings []string

	// An unset variable expands to "", so a literal "$" means expansion never ran.
	if strings.HasPrefix(wh.Token, "$") {
		warnings = append(warnings, fmt.Sprintf("Token appears to be an unresolved env var: %s", wh.Token))
	}
	if wh.Trigger == config.WebhookTriggerNever {
		warnings = append(warnings, "Trigger is never: this webhook is disabled")
	}

	return warnings
}

// checkWebhookConnectivity sends a HEAD request. Any HTTP answer proves the
// host is reachable; only transport errors are reported.
func checkWebhookConnectivity(ctx context.Context, wh config.WebhookConfig) DiagnosticResult {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, wh.URL, nil)
	if err != nil {
		return DiagnosticResult{
			Status:  StatusWarning,
			Message: fmt.Sprintf("Cannot create request: %v", err),
		}
	}
	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return DiagnosticResult{
			Status:  StatusWarning,
			Message: fmt.Sprintf("Cannot connect: %v", err),
			Suggests: []string{
				"Check if the webhook URL is correct",
				"Verify network connectivity",
			},
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 400 {
		return DiagnosticResult{
			Status:  StatusOK,
			Message: fmt.Sprintf("Reachable (status %d)", resp.StatusCode),
		}
	}
	return DiagnosticResult{
		Status:  StatusWarning,
		Message: fmt.Sprintf("Reachable but returned status %d", resp.StatusCode),
		Suggests: []string{
			"Many endpoints reject HEAD; the POST sent after analysis may still succeed",
			"Check authentication if using a token",
		},
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
