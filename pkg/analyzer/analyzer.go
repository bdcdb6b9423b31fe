package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/shiftguard/pkg/config"
	"github.com/ccollicutt/shiftguard/pkg/record"
)

// TimeLayout formats anchor timestamps in finding descriptions.
const TimeLayout = "2006-01-02 15:04"

// Analyzer orchestrates rule evaluation across employee timelines.
type Analyzer struct {
	detectors []Detector

	// Options
	ruleFilter  map[string]bool // nil means all enabled rules
	parallelism int
	logger      *zap.Logger
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithRuleFilter limits analysis to the named rules. Evaluation order does
// not depend on the order of names.
func WithRuleFilter(rules []string) AnalyzerOption {
	return func(a *Analyzer) {
		if len(rules) > 0 {
			a.ruleFilter = make(map[string]bool)
			for _, r := range rules {
				a.ruleFilter[r] = true
			}
		}
	}
}

// WithParallelism sets how many employee timelines are evaluated at once.
// Output order is the same for every value.
func WithParallelism(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.parallelism = n
		}
	}
}

// WithLogger sets the logger for run diagnostics.
func WithLogger(l *zap.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAnalyzer creates an analyzer for the enabled rules of cfg.
func NewAnalyzer(cfg *config.Config, opts ...AnalyzerOption) (*Analyzer, error) {
	a := &Analyzer{
		parallelism: cfg.Parallelism,
		logger:      zap.NewNop(),
	}
	if a.parallelism < 1 {
		a.parallelism = 1
	}

	for _, opt := range opts {
		opt(a)
	}

	for name := range a.ruleFilter {
		if !isKnownRule(name) {
			return nil, fmt.Errorf("unknown rule %q", name)
		}
	}

	// Detector order is fixed: consecutive days, short rest gap, long shift.
	for _, name := range config.RuleNames {
		if !cfg.Rules.Enabled(name) {
			continue
		}
		if a.ruleFilter != nil && !a.ruleFilter[name] {
			continue
		}

		d, err := createDetector(name, &cfg.Rules)
		if err != nil {
			return nil, fmt.Errorf("creating detector for rule %q: %w", name, err)
		}
		a.detectors = append(a.detectors, d)
	}

	if len(a.detectors) == 0 {
		return nil, fmt.Errorf("no rules to execute (check --rule filter and enabled rules)")
	}

	return a, nil
}

func isKnownRule(name string) bool {
	for _, n := range config.RuleNames {
		if n == name {
			return true
		}
	}
	return false
}

// createDetector creates the detector for a rule name.
func createDetector(name string, rules *config.RulesConfig) (Detector, error) {
	switch name {
	case config.RuleConsecutiveDays:
		return NewConsecutiveDaysDetector(rules.ConsecutiveDays)
	case config.RuleShortRestGap:
		return NewShortRestGapDetector(rules.ShortRestGap)
	case config.RuleLongShift:
		return NewLongShiftDetector(rules.LongShift)
	default:
		return nil, fmt.Errorf("unknown rule: %s", name)
	}
}

// Rules returns the names of the rules this analyzer evaluates, in order.
func (a *Analyzer) Rules() []string {
	names := make([]string, len(a.detectors))
	for i, d := range a.detectors {
		names[i] = d.Name()
	}
	return names
}

// Analyze evaluates every rule over the given records.
//
// Findings are ordered by employee (timeline order), then by shift within the
// employee's timeline, then by rule. Timelines may be evaluated concurrently;
// the order does not change.
func (a *Analyzer) Analyze(ctx context.Context, records []record.ShiftRecord) (*AnalysisResult, error) {
	result := &AnalysisResult{
		Metadata: AnalysisMetadata{
			RunID:           uuid.NewString(),
			Rules:           a.Rules(),
			RecordsAnalyzed: len(records),
			StartTime:       time.Now(),
		},
	}

	timelines := BuildTimelines(records)
	result.Metadata.Employees = len(timelines)

	perEmployee := make([][]Finding, len(timelines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.parallelism)

	for i := range timelines {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perEmployee[i] = a.evaluate(&timelines[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, findings := range perEmployee {
		result.Findings = append(result.Findings, findings...)
	}

	result.Metadata.EndTime = time.Now()

	a.logger.Debug("analysis complete",
		zap.String("run_id", result.Metadata.RunID),
		zap.Int("employees", result.Metadata.Employees),
		zap.Int("records", result.Metadata.RecordsAnalyzed),
		zap.Int("findings", len(result.Findings)),
		zap.Duration("elapsed", result.Metadata.EndTime.Sub(result.Metadata.StartTime)))

	return result, nil
}

// evaluate runs every detector over every shift of one timeline.
func (a *Analyzer) evaluate(tl *Timeline) []Finding {
	var findings []Finding
	for i := range tl.Shifts {
		for _, d := range a.detectors {
			if f, ok := d.Check(tl, i); ok {
				findings = append(findings, f)
			}
		}
	}
	return findings
}
