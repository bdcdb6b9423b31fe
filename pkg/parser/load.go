package parser

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ccollicutt/shiftguard/pkg/record"
)

// ParseErrorPolicy decides what happens to a row with a malformed value.
type ParseErrorPolicy string

const (
	// PolicyFail aborts the load on the first malformed row.
	PolicyFail ParseErrorPolicy = "fail"

	// PolicySkip drops malformed rows and records a Diagnostic for each.
	PolicySkip ParseErrorPolicy = "skip"
)

// Valid reports whether p is a known policy.
func (p ParseErrorPolicy) Valid() bool {
	return p == PolicyFail || p == PolicySkip
}

// Diagnostic describes a row dropped under PolicySkip.
type Diagnostic struct {
	Source  string
	LineNum int
	Field   string
	Value   string
	Message string
}

// LoadResult holds the records read from a source.
type LoadResult struct {
	// Records are in input order.
	Records []record.ShiftRecord

	// Diagnostics lists rows skipped under PolicySkip.
	Diagnostics []Diagnostic

	// Sources lists the files or tables rows were read from, in first-seen order.
	Sources []string

	// RowsRead counts every non-blank row, including skipped ones.
	RowsRead int
}

type loadOptions struct {
	policy ParseErrorPolicy
	logger *zap.Logger
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithPolicy sets the parse-error policy (default PolicyFail).
func WithPolicy(p ParseErrorPolicy) LoadOption {
	return func(o *loadOptions) {
		if p != "" {
			o.policy = p
		}
	}
}

// WithLogger sets the logger used for skipped-row warnings.
func WithLogger(l *zap.Logger) LoadOption {
	return func(o *loadOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Load drains src and converts every row into a ShiftRecord.
//
// A *record.SchemaError is always returned as-is with no records. A
// *record.ParseError aborts the load under PolicyFail and becomes a
// Diagnostic under PolicySkip.
func Load(ctx context.Context, src RowSource, conv *record.Converter, opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{policy: PolicyFail, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.policy.Valid() {
		return nil, fmt.Errorf("unknown parse error policy %q", o.policy)
	}

	result := &LoadResult{}
	seen := make(map[string]bool)

	for {
		row, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading timecards: %w", err)
		}

		result.RowsRead++
		if !seen[row.Source] {
			seen[row.Source] = true
			result.Sources = append(result.Sources, row.Source)
		}

		rec, err := conv.Convert(row)
		if err == nil {
			result.Records = append(result.Records, rec)
			continue
		}

		var schemaErr *record.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, err
		}

		var parseErr *record.ParseError
		if !errors.As(err, &parseErr) || o.policy == PolicyFail {
			return nil, err
		}

		o.logger.Warn("skipping malformed shift",
			zap.String("source", parseErr.Source),
			zap.Int("line", parseErr.LineNum),
			zap.String("field", parseErr.Field),
			zap.String("value", parseErr.Value),
			zap.Error(parseErr.Err))

		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Source:  parseErr.Source,
			LineNum: parseErr.LineNum,
			Field:   parseErr.Field,
			Value:   parseErr.Value,
			Message: parseErr.Error(),
		})
	}

	o.logger.Debug("timecards loaded",
		zap.Int("rows", result.RowsRead),
		zap.Int("records", len(result.Records)),
		zap.Int("skipped", len(result.Diagnostics)))

	return result, nil
}
