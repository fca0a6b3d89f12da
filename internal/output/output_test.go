package output

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"docextract/internal/logger"
	"docextract/pkg/models"
)

func init() {
	logger.Silence()
}

func sampleResult() *models.BatchResult {
	total := models.Amount(123456)
	return &models.BatchResult{
		RunID: "run-1",
		Records: []models.ExtractionRecord{
			{
				Filename:    "acme.txt",
				TextExcerpt: "ACME CORP Invoice, \"quoted\"",
				DatePrimary: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
				Dates: []models.DateSlot{
					{Value: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), Label: models.LabelInvoice, Snippet: "Invoice Date: 01/15/2024"},
					{Value: time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), Label: models.LabelDue, Snippet: "Due Date: 02/15/2024"},
				},
				DateCount:      2,
				PossibleVendor: "ACME CORP",
				InvoiceNo:      "INV-1001",
				Total:          &total,
				OtherAmounts:   []models.Amount{100000, 23456, -1250},
			},
			{
				Filename: "empty.txt",
				Errors:   []string{"document: empty", "dates: boom"},
			},
		},
		Processed: 1,
		Failed:    1,
	}
}

func TestRow(t *testing.T) {
	result := sampleResult()

	got := Row(result.Records[0])
	want := []string{
		"acme.txt", "ACME CORP Invoice, \"quoted\"", "01/15/2024",
		"01/15/2024", "invoice", "Invoice Date: 01/15/2024",
		"02/15/2024", "due", "Due Date: 02/15/2024",
		"", "", "",
		"2", "ACME CORP", "INV-1001", "1234.56", "1000.00,234.56,-12.50", "",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Row() =\n%q\nwant\n%q", got, want)
	}

	failed := Row(result.Records[1])
	if len(failed) != len(Columns) {
		t.Fatalf("len = %d, want %d", len(failed), len(Columns))
	}
	if failed[12] != "0" || failed[17] != "document: empty; dates: boom" {
		t.Errorf("failed row = %q", failed)
	}
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "extracted.csv")

	if err := (&CSVWriter{Path: path}).Write(sampleResult()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if !reflect.DeepEqual(rows[0], Columns) {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "ACME CORP Invoice, \"quoted\"" {
		t.Errorf("excerpt did not round-trip: %q", rows[1][1])
	}
	if rows[2][0] != "empty.txt" {
		t.Errorf("order lost: %v", rows[2])
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestCSVWriterUnwritable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	err := (&CSVWriter{Path: filepath.Join(blocker, "out.csv")}).Write(sampleResult())

	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("Write() error = %v, want *WriteError", err)
	}
}

func TestXLSXWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extracted.xlsx")

	if err := (&XLSXWriter{Path: path}).Write(sampleResult()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "filename" || rows[1][14] != "INV-1001" || rows[2][0] != "empty.txt" {
		t.Errorf("unexpected rows: %q", rows)
	}
}

func TestFormats(t *testing.T) {
	for in, want := range map[string]Format{"csv": FormatCSV, " XLSX ": FormatXLSX} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("json"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(json) error = %v", err)
	}

	w, err := New(FormatXLSX, "x.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := w.(*XLSXWriter); !ok {
		t.Errorf("New(xlsx) = %T", w)
	}
}
