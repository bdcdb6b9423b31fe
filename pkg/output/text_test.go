package output

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ccollicutt/shiftguard/pkg/analyzer"
	"github.com/ccollicutt/shiftguard/pkg/parser"
)

func createTestReport() *Report {
	anchor := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	return &Report{
		Summary: Summary{
			Employees:        2,
			RecordsProcessed: 10,
			TotalFindings:    2,
			ShortRestGaps:    1,
			LongShifts:       1,
			SkippedRecords:   1,
		},
		Findings: []analyzer.Finding{
			{
				Kind:        analyzer.KindShortRestGap,
				EmployeeID:  "A",
				Anchor:      anchor.AddDate(0, 0, -1),
				Description: "A has worked less than 10 hours between shifts but greater than 1 hour(s) (3.00 hours) starting from 2024-03-04 09:00",
				Details: analyzer.FindingDetails{
					GapHours:    3,
					NextClockIn: anchor.AddDate(0, 0, -1).Add(3 * time.Hour),
					Source:      "timecards.csv",
					LineNum:     4,
				},
			},
			{
				Kind:        analyzer.KindLongShift,
				EmployeeID:  "B",
				Anchor:      anchor,
				Description: "B has worked for more than 14 hours in a single shift on 2024-03-05 09:00 (15.00 hours)",
				Details: analyzer.FindingDetails{
					ShiftHours: 15,
					Source:     "timecards.csv",
					LineNum:    9,
				},
			},
		},
		Diagnostics: []parser.Diagnostic{
			{Source: "timecards.csv", LineNum: 7, Field: "duration", Value: "8:00:00", Message: "bad duration"},
		},
		Metadata: Metadata{
			RunID:      "run-1234",
			ConfigFile: "shiftguard.yaml",
			Sources:    []string{"timecards.csv"},
			Rules:      []string{"consecutive_days", "short_rest_gap", "long_shift"},
			AnalyzedAt: anchor,
			Duration:   150 * time.Millisecond,
		},
	}
}

func TestNewTextFormatter(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	if f == nil {
		t.Fatal("NewTextFormatter() returned nil")
	}
	if f.Name() != "text" {
		t.Errorf("Name() = %q, want %q", f.Name(), "text")
	}
}

func TestTextFormatter_Format_Empty(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	report := &Report{
		Metadata: Metadata{Rules: []string{"long_shift"}},
	}

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "ShiftGuard Compliance Report") {
		t.Error("Output missing header")
	}
	if !strings.Contains(output, "[LONG_SHIFT]\n  No issues detected") {
		t.Errorf("Output missing empty rule section:\n%s", output)
	}
	if !strings.Contains(output, "0 total findings") {
		t.Error("Output missing summary")
	}
}

func TestTextFormatter_Format_WithFindings(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	report := createTestReport()

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()

	for _, want := range []string{
		"[CONSECUTIVE_DAYS]\n  No issues detected",
		"[SHORT_REST_GAP]\n  - A has worked less than 10 hours",
		"[LONG_SHIFT]\n  - B has worked for more than 14 hours",
		"[SKIPPED] 1 row(s)",
		"Summary: 2 employees, 10 shifts, 2 total findings",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q:\n%s", want, output)
		}
	}

	// Source locations are verbose-only.
	if strings.Contains(output, "Source: timecards.csv:9") {
		t.Error("Non-verbose output should not include source locations")
	}
}

func TestTextFormatter_Format_Verbose(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Verbose: true})
	report := createTestReport()

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"Source: timecards.csv:9",
		`timecards.csv:7 duration "8:00:00"`,
		"Run ID: run-1234",
		"Duration: 150ms",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Verbose output missing %q:\n%s", want, output)
		}
	}
}

func TestTextFormatter_Format_Quiet(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Quiet: true})
	report := createTestReport()

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	want := "ShiftGuard: 2 findings (0 consecutive days, 1 short rest gaps, 1 long shifts) across 2 employees\n"
	if output != want {
		t.Errorf("Quiet output = %q, want %q", output, want)
	}
}

func TestTextFormatter_PreservesFindingOrderWithinRule(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	report := &Report{
		Findings: []analyzer.Finding{
			{Kind: analyzer.KindLongShift, Description: "first"},
			{Kind: analyzer.KindLongShift, Description: "second"},
		},
		Metadata: Metadata{Rules: []string{"long_shift"}},
	}

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if strings.Index(output, "first") > strings.Index(output, "second") {
		t.Errorf("findings out of order:\n%s", output)
	}
}

func TestNewFormatter(t *testing.T) {
	for _, name := range Formats {
		f, err := NewFormatter(name, FormatOptions{})
		if err != nil {
			t.Errorf("NewFormatter(%q) error = %v", name, err)
			continue
		}
		if f.Name() != name {
			t.Errorf("NewFormatter(%q).Name() = %q", name, f.Name())
		}
	}

	if _, err := NewFormatter("xml", FormatOptions{}); err == nil {
		t.Error("NewFormatter(xml) should fail")
	}
}

func TestNewReport(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	result := &analyzer.AnalysisResult{
		Findings: []analyzer.Finding{
			{Kind: analyzer.KindConsecutiveDays},
			{Kind: analyzer.KindConsecutiveDays},
			{Kind: analyzer.KindLongShift},
		},
		Metadata: analyzer.AnalysisMetadata{
			RunID:           "abc",
			Rules:           []string{"consecutive_days", "long_shift"},
			Employees:       3,
			RecordsAnalyzed: 40,
			StartTime:       start,
			EndTime:         start.Add(2 * time.Second),
		},
	}
	load := &parser.LoadResult{
		Sources:     []string{"a.csv", "b.csv"},
		Diagnostics: []parser.Diagnostic{{Source: "a.csv", LineNum: 3}},
	}

	report := NewReport(result, load, "cfg.yaml")

	if report.Summary.TotalFindings != 3 {
		t.Errorf("TotalFindings = %d, want 3", report.Summary.TotalFindings)
	}
	if report.Summary.ConsecutiveDays != 2 {
		t.Errorf("ConsecutiveDays = %d, want 2", report.Summary.ConsecutiveDays)
	}
	if report.Summary.LongShifts != 1 {
		t.Errorf("LongShifts = %d, want 1", report.Summary.LongShifts)
	}
	if report.Summary.SkippedRecords != 1 {
		t.Errorf("SkippedRecords = %d, want 1", report.Summary.SkippedRecords)
	}
	if report.Metadata.RunID != "abc" {
		t.Errorf("RunID = %q, want abc", report.Metadata.RunID)
	}
	if report.Metadata.Duration != 2*time.Second {
		t.Errorf("Duration = %v, want 2s", report.Metadata.Duration)
	}
	if len(report.Metadata.Sources) != 2 {
		t.Errorf("Sources = %v, want 2 entries", report.Metadata.Sources)
	}
	if !report.HasIssues() {
		t.Error("HasIssues() = false, want true")
	}

	if r := NewReport(&analyzer.AnalysisResult{}, nil, ""); r.HasIssues() {
		t.Error("empty report HasIssues() = true, want false")
	}
}
