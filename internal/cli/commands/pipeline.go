package commands

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ccollicutt/shiftguard/pkg/config"
	"github.com/ccollicutt/shiftguard/pkg/parser"
	"github.com/ccollicutt/shiftguard/pkg/record"
)

// logger is replaced by the root command once flags are parsed.
var logger = zap.NewNop()

// SetLogger sets the logger used by all commands. A nil logger discards output.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// openSources opens every configured input: file sources first, in sorted
// path order, then the database query.
func openSources(cfg *config.Config) (parser.RowSource, []string, error) {
	var files []string
	if len(cfg.Sources) > 0 {
		var err error
		files, err = parser.ExpandGlobs(cfg.Sources)
		if err != nil {
			return nil, nil, fmt.Errorf("expanding sources: %w", err)
		}
	}

	var sources []parser.RowSource
	if len(files) > 0 {
		src, err := parser.OpenFiles(files, parser.OpenOptions{Sheet: cfg.Sheet})
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, src)
	}

	if cfg.Database != nil {
		src, err := parser.NewSQLSource(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.Query)
		if err != nil {
			for _, s := range sources {
				_ = s.Close()
			}
			return nil, nil, err
		}
		sources = append(sources, src)
	}

	if len(sources) == 1 {
		return sources[0], files, nil
	}
	return parser.NewChainSource(sources...), files, nil
}

// newConverter builds the row converter for cfg.
func newConverter(cfg *config.Config) *record.Converter {
	return record.NewConverter(cfg.Columns, record.NewTimestampParser(cfg.TimestampLayouts))
}

// loadRecords reads and converts every configured input.
func loadRecords(ctx context.Context, cfg *config.Config) (*parser.LoadResult, error) {
	src, files, err := openSources(cfg)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	logger.Debug("loading timecards",
		zap.Strings("files", files),
		zap.Bool("database", cfg.Database != nil),
		zap.String("on_parse_error", cfg.OnParseError))

	return parser.Load(ctx, src, newConverter(cfg),
		parser.WithPolicy(parser.ParseErrorPolicy(cfg.OnParseError)),
		parser.WithLogger(logger))
}

// fileExists reports whether path is an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
