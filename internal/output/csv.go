package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"docextract/internal/logger"
	"docextract/pkg/models"
)

// CSVWriter writes the result as a UTF-8 CSV file with a header row.
type CSVWriter struct {
	Path string
}

// Write replaces the file at Path with the records of result.
func (w *CSVWriter) Write(result *models.BatchResult) error {
	const op = "CSVWriter.Write"
	log := logger.WithComponent("output")

	err := writeAtomic(w.Path, func(f *os.File) error {
		cw := csv.NewWriter(f)
		if err := cw.Write(Columns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for _, rec := range result.Records {
			if err := cw.Write(Row(rec)); err != nil {
				return fmt.Errorf("write row for %s: %w", rec.Filename, err)
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return NewWriteError(op, w.Path, err)
	}

	log.Info().
		Str("file", w.Path).
		Int("rows", len(result.Records)).
		Msg("Wrote CSV output")
	return nil
}
