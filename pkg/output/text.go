package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ccollicutt/shiftguard/pkg/analyzer"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	s := report.Summary
	_, err := fmt.Fprintf(w, "ShiftGuard: %d findings (%d consecutive days, %d short rest gaps, %d long shifts) across %d employees\n",
		s.TotalFindings, s.ConsecutiveDays, s.ShortRestGaps, s.LongShifts, s.Employees)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	// Header
	fmt.Fprintln(w, "=== ShiftGuard Compliance Report ===")
	fmt.Fprintln(w)

	// Findings by rule, in analyzer order within each rule
	for _, rule := range report.Metadata.Rules {
		f.formatRule(analyzer.Kind(rule), report.Findings, w)
	}

	if len(report.Diagnostics) > 0 {
		fmt.Fprintf(w, "[SKIPPED] %d row(s) with malformed values\n", len(report.Diagnostics))
		if f.opts.Verbose {
			for _, d := range report.Diagnostics {
				fmt.Fprintf(w, "  - %s:%d %s %q\n", d.Source, d.LineNum, d.Field, d.Value)
			}
		}
		fmt.Fprintln(w)
	}

	// Summary
	s := report.Summary
	fmt.Fprintln(w, "---")
	_, err := fmt.Fprintf(w, "Summary: %d employees, %d shifts, %d total findings\n",
		s.Employees, s.RecordsProcessed, s.TotalFindings)
	if err != nil {
		return err
	}

	if f.opts.Verbose {
		fmt.Fprintf(w, "Run ID: %s\n", report.Metadata.RunID)
		if len(report.Metadata.Sources) > 0 {
			fmt.Fprintf(w, "Sources: %s\n", strings.Join(report.Metadata.Sources, ", "))
		}
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return nil
}

func (f *TextFormatter) formatRule(kind analyzer.Kind, findings []analyzer.Finding, w io.Writer) {
	fmt.Fprintf(w, "[%s]\n", strings.ToUpper(string(kind)))

	n := 0
	for _, finding := range findings {
		if finding.Kind != kind {
			continue
		}
		n++
		fmt.Fprintf(w, "  - %s\n", finding.Description)
		if f.opts.Verbose && finding.Details.Source != "" {
			fmt.Fprintf(w, "    Source: %s:%d\n", finding.Details.Source, finding.Details.LineNum)
		}
	}

	if n == 0 {
		fmt.Fprintln(w, "  No issues detected")
	}
	fmt.Fprintln(w)
}
