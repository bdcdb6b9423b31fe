package analyzer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ccollicutt/shiftguard/pkg/config"
	"github.com/ccollicutt/shiftguard/pkg/record"
)

func TestAnalyze_EndToEndScenario(t *testing.T) {
	march := func(day, hour int) time.Time {
		return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
	}

	records := withLines([]record.ShiftRecord{
		shift("A", march(1, 9), 8),
		shift("A", march(2, 9), 8),
		shift("A", march(5, 9), 15),
	})

	result, err := newTestAnalyzer(t).Analyze(context.Background(), records)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	want := []Finding{{
		Kind:        KindLongShift,
		EmployeeID:  "A",
		Anchor:      march(5, 9),
		Description: "A has worked for more than 14 hours in a single shift on 2024-03-05 09:00 (15.00 hours)",
		Details: FindingDetails{
			ShiftHours: 15,
			Source:     "test.csv",
			LineNum:    4,
		},
	}}

	if diff := cmp.Diff(want, result.Findings); diff != "" {
		t.Errorf("Findings mismatch (-want +got):\n%s", diff)
	}

	if result.Metadata.Employees != 1 {
		t.Errorf("Employees = %d, want 1", result.Metadata.Employees)
	}
	if result.Metadata.RecordsAnalyzed != 3 {
		t.Errorf("RecordsAnalyzed = %d, want 3", result.Metadata.RecordsAnalyzed)
	}
	if result.Metadata.RunID == "" {
		t.Error("RunID is empty")
	}
}

func TestAnalyze_Ordering(t *testing.T) {
	// B appears first in the input but A sorts first.
	records := []record.ShiftRecord{
		shift("B", day1, 15),
	}
	records = append(records, daily("A", day1, 7)...)
	// A second shift on day1 three hours later: gap finding on day1 plus a
	// long shift on the later one.
	records = append(records, shift("A", day1.Add(3*time.Hour), 15))

	result, err := newTestAnalyzer(t).Analyze(context.Background(), withLines(records))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	type key struct {
		Employee string
		Anchor   time.Time
		Kind     Kind
	}
	var got []key
	for _, f := range result.Findings {
		got = append(got, key{f.EmployeeID, f.Anchor, f.Kind})
	}

	// Eight shifts for A within seven days, so only the second shift of day1
	// sees exactly seven in its window.
	want := []key{
		{"A", day1, KindShortRestGap},
		{"A", day1.Add(3 * time.Hour), KindConsecutiveDays},
		{"A", day1.Add(3 * time.Hour), KindLongShift},
		{"B", day1, KindLongShift},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("finding order mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_ParallelMatchesSequential(t *testing.T) {
	var records []record.ShiftRecord
	for e := 0; e < 25; e++ {
		emp := fmt.Sprintf("emp-%02d", e)
		start := day1.Add(time.Duration(e) * time.Hour)
		records = append(records, daily(emp, start, 9+e%3)...)
		records = append(records, shift(emp, start.Add(5*time.Hour), 14.5))
	}
	records = withLines(records)

	sequential, err := newTestAnalyzer(t, WithParallelism(1)).Analyze(context.Background(), records)
	if err != nil {
		t.Fatalf("sequential Analyze() error = %v", err)
	}

	for _, n := range []int{2, 4, 16} {
		parallel, err := newTestAnalyzer(t, WithParallelism(n)).Analyze(context.Background(), records)
		if err != nil {
			t.Fatalf("parallel(%d) Analyze() error = %v", n, err)
		}
		if diff := cmp.Diff(sequential.Findings, parallel.Findings); diff != "" {
			t.Errorf("parallelism %d changed findings (-seq +par):\n%s", n, diff)
		}
	}

	if len(sequential.Findings) == 0 {
		t.Error("expected findings from generated data")
	}
}

func TestAnalyze_Empty(t *testing.T) {
	result, err := newTestAnalyzer(t).Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.HasFindings() {
		t.Errorf("HasFindings() = true, want false")
	}
	if result.Metadata.Employees != 0 {
		t.Errorf("Employees = %d, want 0", result.Metadata.Employees)
	}
}

func TestAnalyze_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestAnalyzer(t, WithParallelism(4)).Analyze(ctx, daily("A", day1, 10))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Analyze() error = %v, want context.Canceled", err)
	}
}

func TestAnalyze_CountByKind(t *testing.T) {
	records := daily("A", day1, 8)
	records = append(records, shift("C", day1, 16))

	result, err := newTestAnalyzer(t).Analyze(context.Background(), records)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	want := map[Kind]int{
		KindConsecutiveDays: 2,
		KindLongShift:       1,
	}
	if diff := cmp.Diff(want, result.CountByKind()); diff != "" {
		t.Errorf("CountByKind() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewAnalyzer_RuleFilter(t *testing.T) {
	a := newTestAnalyzer(t, WithRuleFilter([]string{config.RuleLongShift, config.RuleConsecutiveDays}))

	want := []string{config.RuleConsecutiveDays, config.RuleLongShift}
	if diff := cmp.Diff(want, a.Rules()); diff != "" {
		t.Errorf("Rules() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewAnalyzer_UnknownRule(t *testing.T) {
	_, err := NewAnalyzer(config.DefaultConfig(), WithRuleFilter([]string{"overtime"}))
	if err == nil {
		t.Fatal("expected error for unknown rule")
	}
}

func TestNewAnalyzer_NoRules(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rules.LongShift.Enabled = false

	_, err := NewAnalyzer(cfg, WithRuleFilter([]string{config.RuleLongShift}))
	if err == nil {
		t.Fatal("expected error when the filter selects only disabled rules")
	}
}

func TestNewAnalyzer_DisabledRule(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rules.ShortRestGap.Enabled = false

	a, err := NewAnalyzer(cfg)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	want := []string{config.RuleConsecutiveDays, config.RuleLongShift}
	if diff := cmp.Diff(want, a.Rules()); diff != "" {
		t.Errorf("Rules() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewAnalyzer_InvalidThresholds(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rules.ShortRestGap.MaxHours = 0.5

	if _, err := NewAnalyzer(cfg); err == nil {
		t.Fatal("expected error for max_hours below min_hours")
	}
}
