package output

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFormatter writes one structured log line per finding, in the style of
// a compliance log file.
type LogFormatter struct {
	opts FormatOptions
}

// NewLogFormatter creates a new log formatter with the given options.
func NewLogFormatter(opts FormatOptions) *LogFormatter {
	return &LogFormatter{opts: opts}
}

// Name returns the format name.
func (f *LogFormatter) Name() string {
	return "log"
}

// Format renders each finding as an INFO entry keyed by its anchor time.
// The wall clock is not written, so the output is reproducible.
func (f *LogFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	encCfg := zapcore.EncoderConfig{
		LevelKey:       "level",
		MessageKey:     "msg",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	ws := zapcore.AddSync(w)
	logger := zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, zapcore.InfoLevel))

	if !f.opts.Quiet {
		for _, finding := range report.Findings {
			fields := []zap.Field{
				zap.String("kind", string(finding.Kind)),
				zap.String("employee", finding.EmployeeID),
				zap.Time("anchor", finding.Anchor),
			}
			if f.opts.Verbose && finding.Details.Source != "" {
				fields = append(fields,
					zap.String("source", finding.Details.Source),
					zap.Int("line", finding.Details.LineNum))
			}
			logger.Info(finding.Description, fields...)
		}

		for _, d := range report.Diagnostics {
			logger.Warn("skipped malformed row",
				zap.String("source", d.Source),
				zap.Int("line", d.LineNum),
				zap.String("field", d.Field),
				zap.String("value", d.Value))
		}
	}

	s := report.Summary
	logger.Info("analysis complete",
		zap.String("run_id", report.Metadata.RunID),
		zap.Int("employees", s.Employees),
		zap.Int("findings", s.TotalFindings),
		zap.Int("consecutive_days", s.ConsecutiveDays),
		zap.Int("short_rest_gaps", s.ShortRestGaps),
		zap.Int("long_shifts", s.LongShifts),
		zap.Int("skipped", s.SkippedRecords))

	// Sync fails on pipes and terminals; the entries are already written.
	_ = logger.Sync()
	return nil
}
