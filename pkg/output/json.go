package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// JSONFormatter writes the report as one indented JSON document.
type JSONFormatter struct {
	opts FormatOptions
}

// quietReport is the JSON shape of --quiet output.
type quietReport struct {
	RunID   string
	Summary Summary
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format renders the report. Quiet output keeps the run ID so the summary can
// still be matched to webhook deliveries.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	var doc any = report
	if f.opts.Quiet {
		doc = quietReport{RunID: report.Metadata.RunID, Summary: report.Summary}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}
