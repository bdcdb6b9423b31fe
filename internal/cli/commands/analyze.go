package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/shiftguard/pkg/analyzer"
	"github.com/ccollicutt/shiftguard/pkg/config"
	"github.com/ccollicutt/shiftguard/pkg/output"
	"github.com/ccollicutt/shiftguard/pkg/parser"
	"github.com/ccollicutt/shiftguard/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	Output       string
	OutFile      string
	Rules        []string
	Verbose      bool
	Quiet        bool
	OnParseError string
	Parallelism  int

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
	WebhookRetries int
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <config-file>",
		Short: "Check timecards for labor compliance issues",
		Long: `Analyze timecards according to the rules defined in the configuration file.

Detects:
  - Consecutive days (too many shifts inside a calendar-day window)
  - Short rest gaps (next shift starts too soon after the previous one)
  - Long shifts (worked duration above the maximum)

Exit codes:
  0 - No findings
  1 - Findings detected
  2 - Configuration or runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|log)")
	cmd.Flags().StringVar(&opts.OutFile, "out-file", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringSliceVar(&opts.Rules, "rule", nil, "Run specific rule(s) only (can be repeated)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show source locations and skipped rows")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().StringVar(&opts.OnParseError, "on-parse-error", "", "Malformed row policy (fail|skip), overrides config")
	cmd.Flags().IntVar(&opts.Parallelism, "parallelism", 0, "Employees evaluated concurrently, overrides config")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_issues", "When to fire webhook (on_issues|always|never)")
	cmd.Flags().IntVar(&opts.WebhookRetries, "webhook-retries", 0, "Extra delivery attempts after a failed webhook")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := applyAnalyzeOverrides(cfg, opts); err != nil {
		return err
	}

	// Fail on a bad format before reading any input
	formatter, err := createFormatter(opts)
	if err != nil {
		return err
	}

	var analyzerOpts []analyzer.AnalyzerOption
	if len(opts.Rules) > 0 {
		analyzerOpts = append(analyzerOpts, analyzer.WithRuleFilter(opts.Rules))
	}
	analyzerOpts = append(analyzerOpts,
		analyzer.WithParallelism(cfg.Parallelism),
		analyzer.WithLogger(logger))

	a, err := analyzer.NewAnalyzer(cfg, analyzerOpts...)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	load, err := loadRecords(ctx, cfg)
	if err != nil {
		return fmt.Errorf("loading timecards: %w", err)
	}

	result, err := a.Analyze(ctx, load.Records)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewReport(result, load, configPath)
	logger.Info("analysis complete",
		zap.String("run_id", report.Metadata.RunID),
		zap.Int("records", report.Summary.RecordsProcessed),
		zap.Int("findings", report.Summary.TotalFindings),
		zap.Int("skipped", report.Summary.SkippedRecords))

	if err := writeReport(ctx, cmd, formatter, report, opts.OutFile); err != nil {
		return err
	}

	// Webhook failures are logged, never fatal
	webhook.NewNotifier(nil, logger).Notify(ctx, report, collectWebhooks(cfg, opts))

	if report.HasIssues() {
		ExitCode = 1
	}

	return nil
}

// applyAnalyzeOverrides applies command-line overrides to the loaded config.
func applyAnalyzeOverrides(cfg *config.Config, opts *AnalyzeOptions) error {
	if opts.OnParseError != "" {
		if !parser.ParseErrorPolicy(opts.OnParseError).Valid() {
			return fmt.Errorf("invalid --on-parse-error %q (use fail or skip)", opts.OnParseError)
		}
		cfg.OnParseError = opts.OnParseError
	}

	if opts.Parallelism < 0 {
		return fmt.Errorf("invalid --parallelism %d (must be >= 1)", opts.Parallelism)
	}
	if opts.Parallelism > 0 {
		cfg.Parallelism = opts.Parallelism
	}

	if opts.WebhookRetries < 0 || opts.WebhookRetries > config.MaxWebhookRetries {
		return fmt.Errorf("invalid --webhook-retries %d (must be 0-%d)", opts.WebhookRetries, config.MaxWebhookRetries)
	}
	switch config.WebhookTrigger(opts.WebhookTrigger) {
	case "", config.WebhookTriggerOnIssues, config.WebhookTriggerAlways, config.WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid --webhook-trigger %q (use on_issues, always, or never)", opts.WebhookTrigger)
	}

	return nil
}

func createFormatter(opts *AnalyzeOptions) (output.Formatter, error) {
	return output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
}

// writeReport renders the report to stdout or to outFile.
func writeReport(ctx context.Context, cmd *cobra.Command, f output.Formatter, report *output.Report, outFile string) error {
	var w io.Writer = cmd.OutOrStdout()

	if outFile != "" {
		// #nosec G304 -- output path is provided by the user
		file, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer file.Close()
		w = file
	}

	if err := f.Format(ctx, report, w); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	return nil
}

// collectWebhooks merges config file webhooks with CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)

	// Add config file webhooks
	webhooks = append(webhooks, cfg.Webhooks...)

	// Add CLI webhook if specified
	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnIssues
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
			Retries: opts.WebhookRetries,
		})
	}

	return webhooks
}
