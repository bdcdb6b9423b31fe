package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ccollicutt/shiftguard/pkg/record"
)

// CSVSource implements RowSource for comma-separated timecard exports.
// The first record of every file is its header.
type CSVSource struct {
	files []string
	comma rune

	currentFile   *os.File
	currentReader *csv.Reader
	currentHeader []string
	currentSource string
	fileIndex     int
}

// NewCSVSource creates a RowSource that reads the given files in order.
func NewCSVSource(files []string) *CSVSource {
	return &CSVSource{
		files:     files,
		comma:     ',',
		fileIndex: -1,
	}
}

// WithComma sets the field delimiter (default ',').
func (s *CSVSource) WithComma(r rune) *CSVSource {
	s.comma = r
	return s
}

// Next returns the next non-blank row.
// Returns io.EOF when all files have been exhausted.
func (s *CSVSource) Next(ctx context.Context) (*record.Row, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if s.currentReader == nil {
			if err := s.openNextFile(); err != nil {
				return nil, err
			}
			continue
		}

		rec, err := s.currentReader.Read()
		if errors.Is(err, io.EOF) {
			if err := s.closeCurrentFile(); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.currentSource, err)
		}

		if isBlank(rec) {
			continue
		}

		line, _ := s.currentReader.FieldPos(0)
		return &record.Row{
			Header:  s.currentHeader,
			Fields:  zipRow(s.currentHeader, rec),
			Source:  s.currentSource,
			LineNum: line,
		}, nil
	}
}

// Close releases resources.
func (s *CSVSource) Close() error {
	return s.closeCurrentFile()
}

func (s *CSVSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening timecard file %s: %w", path, err)
	}

	r := csv.NewReader(f)
	r.Comma = s.comma
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		// Empty file: nothing to read, move on.
		_ = f.Close()
		return s.openNextFile()
	}
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("reading header of %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	s.currentFile = f
	s.currentReader = r
	s.currentHeader = header
	s.currentSource = path

	return nil
}

func (s *CSVSource) closeCurrentFile() error {
	if s.currentFile != nil {
		err := s.currentFile.Close()
		s.currentFile = nil
		s.currentReader = nil
		s.currentHeader = nil
		return err
	}
	return nil
}

// zipRow pairs header names with cell values. Missing trailing cells map to
// the empty string so that a short row never looks like a missing column.
func zipRow(header, cells []string) map[string]string {
	fields := make(map[string]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := fields[name]; dup {
			continue
		}
		if i < len(cells) {
			fields[name] = cells[i]
		} else {
			fields[name] = ""
		}
	}
	return fields
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
