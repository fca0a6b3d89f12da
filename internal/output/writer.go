package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docextract/pkg/models"
)

// Format names an output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Writer persists a batch result.
type Writer interface {
	Write(result *models.BatchResult) error
}

// ParseFormat accepts "csv" or "xlsx" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// New returns the writer for format targeting path.
func New(format Format, path string) (Writer, error) {
	switch format {
	case FormatCSV:
		return &CSVWriter{Path: path}, nil
	case FormatXLSX:
		return &XLSXWriter{Path: path}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// writeAtomic creates a temp file next to path, lets fill write it and renames
// it into place. Nothing is left at path when fill fails.
func writeAtomic(path string, fill func(f *os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := fill(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("move output into place: %w", err)
	}
	return nil
}
