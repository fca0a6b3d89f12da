package output

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"docextract/internal/logger"
	"docextract/pkg/models"
)

// SheetName is the worksheet the XLSX writer fills.
const SheetName = "Extracted"

// XLSXWriter writes the result as an Excel workbook with one worksheet.
type XLSXWriter struct {
	Path string
}

// Write replaces the workbook at Path with the records of result.
func (w *XLSXWriter) Write(result *models.BatchResult) error {
	const op = "XLSXWriter.Write"
	log := logger.WithComponent("output")

	f := excelize.NewFile()
	defer f.Close()

	if err := fillWorkbook(f, result); err != nil {
		return NewWriteError(op, w.Path, err)
	}

	err := writeAtomic(w.Path, func(out *os.File) error {
		if _, err := f.WriteTo(out); err != nil {
			return fmt.Errorf("xlsx write: %w", err)
		}
		return nil
	})
	if err != nil {
		return NewWriteError(op, w.Path, err)
	}

	log.Info().
		Str("file", w.Path).
		Int("rows", len(result.Records)).
		Msg("Wrote XLSX output")
	return nil
}

func fillWorkbook(f *excelize.File, result *models.BatchResult) error {
	// Rename the default sheet rather than leaving an empty "Sheet1"
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("name worksheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Columns))
	_ = f.SetCellStyle(SheetName, "A1", lastCol+"1", bold)

	for i, rec := range result.Records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := Row(rec)
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row for %s: %w", rec.Filename, err)
		}
	}

	// Widen the text columns
	_ = f.SetColWidth(SheetName, "A", "A", 28) // filename
	_ = f.SetColWidth(SheetName, "B", "B", 60) // excerpt
	_ = f.SetColWidth(SheetName, "C", "D", 14)
	_ = f.SetColWidth(SheetName, "F", "F", 40) // snippets
	_ = f.SetColWidth(SheetName, "I", "I", 40)
	_ = f.SetColWidth(SheetName, "L", "L", 40)
	_ = f.SetColWidth(SheetName, "N", "N", 30) // vendor
	_ = f.SetColWidth(SheetName, "R", "R", 48) // errors
	return nil
}
