package parser

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OpenOptions controls how input files are opened.
type OpenOptions struct {
	// Sheet is the workbook sheet to read. Empty selects the first sheet.
	Sheet string
}

// OpenFiles builds a RowSource over the given files, choosing a reader per
// file extension. Files are read in the order given.
func OpenFiles(files []string, opts OpenOptions) (RowSource, error) {
	sources := make([]RowSource, 0, len(files))
	for _, file := range files {
		src, err := openFile(file, opts)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	if len(sources) == 1 {
		return sources[0], nil
	}
	return NewChainSource(sources...), nil
}

func openFile(path string, opts OpenOptions) (RowSource, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		return NewCSVSource([]string{path}), nil
	case ".tsv":
		return NewCSVSource([]string{path}).WithComma('\t'), nil
	case ".xlsx", ".xlsm":
		return NewXLSXSource([]string{path}, opts.Sheet), nil
	default:
		return nil, fmt.Errorf("unsupported timecard file %s (want .csv, .tsv or .xlsx)", path)
	}
}

// IsSupportedFile reports whether OpenFiles can read path.
func IsSupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv", ".xlsx", ".xlsm":
		return true
	}
	return false
}
