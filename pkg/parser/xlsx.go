package parser

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ccollicutt/shiftguard/pkg/record"
)

// XLSXSource implements RowSource for Excel workbooks. Rows are read from a
// single sheet; the first non-blank row is the header. Cell values come back
// formatted the way Excel displays them, so a duration shown as "7:30" is
// read as "7:30".
type XLSXSource struct {
	files []string
	sheet string

	currentBook   *excelize.File
	currentRows   *excelize.Rows
	currentHeader []string
	currentSource string
	currentLine   int
	fileIndex     int
}

// NewXLSXSource creates a RowSource over the given workbooks. An empty sheet
// name selects the first sheet of each workbook.
func NewXLSXSource(files []string, sheet string) *XLSXSource {
	return &XLSXSource{
		files:     files,
		sheet:     sheet,
		fileIndex: -1,
	}
}

// Next returns the next non-blank row.
// Returns io.EOF when all workbooks have been exhausted.
func (s *XLSXSource) Next(ctx context.Context) (*record.Row, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if s.currentRows == nil {
			if err := s.openNextFile(); err != nil {
				return nil, err
			}
			continue
		}

		if !s.currentRows.Next() {
			if err := s.currentRows.Error(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", s.currentSource, err)
			}
			if err := s.closeCurrentFile(); err != nil {
				return nil, err
			}
			continue
		}
		s.currentLine++

		cells, err := s.currentRows.Columns()
		if err != nil {
			return nil, fmt.Errorf("reading %s row %d: %w", s.currentSource, s.currentLine, err)
		}
		if isBlank(cells) {
			continue
		}

		if s.currentHeader == nil {
			s.currentHeader = cells
			continue
		}

		return &record.Row{
			Header:  s.currentHeader,
			Fields:  zipRow(s.currentHeader, cells),
			Source:  s.currentSource,
			LineNum: s.currentLine,
		}, nil
	}
}

// Close releases resources.
func (s *XLSXSource) Close() error {
	return s.closeCurrentFile()
}

func (s *XLSXSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	book, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening workbook %s: %w", path, err)
	}

	sheet := s.sheet
	if sheet == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			_ = book.Close()
			return fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := book.Rows(sheet)
	if err != nil {
		_ = book.Close()
		return fmt.Errorf("opening sheet %q of %s: %w", sheet, path, err)
	}

	s.currentBook = book
	s.currentRows = rows
	s.currentHeader = nil
	s.currentSource = path
	s.currentLine = 0

	return nil
}

func (s *XLSXSource) closeCurrentFile() error {
	var firstErr error
	if s.currentRows != nil {
		firstErr = s.currentRows.Close()
		s.currentRows = nil
	}
	if s.currentBook != nil {
		if err := s.currentBook.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.currentBook = nil
	}
	s.currentHeader = nil
	return firstErr
}
