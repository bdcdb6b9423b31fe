package parser

import (
	"context"
	"errors"
	"io"

	"github.com/ccollicutt/shiftguard/pkg/record"
)

// ChainSource combines several RowSources into one stream, reading each
// source to exhaustion before moving to the next. Input order is what breaks
// ties between shifts with identical clock-in times, so sources are never
// interleaved.
type ChainSource struct {
	sources []RowSource
	current int
}

// NewChainSource creates a RowSource that reads the given sources in order.
func NewChainSource(sources ...RowSource) *ChainSource {
	return &ChainSource{sources: sources}
}

// Next returns the next row from the current source.
// Returns io.EOF when all sources are exhausted.
func (c *ChainSource) Next(ctx context.Context) (*record.Row, error) {
	for c.current < len(c.sources) {
		row, err := c.sources[c.current].Next(ctx)
		if errors.Is(err, io.EOF) {
			c.current++
			continue
		}
		if err != nil {
			return nil, err
		}
		return row, nil
	}
	return nil, io.EOF
}

// Close releases all source resources.
func (c *ChainSource) Close() error {
	var firstErr error
	for _, src := range c.sources {
		if err := src.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
