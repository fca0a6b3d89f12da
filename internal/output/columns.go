// Package output serializes batch results to CSV or XLSX files.
package output

import (
	"strconv"
	"strings"

	"docextract/pkg/models"
)

// Columns is the output schema, one row per input document.
var Columns = []string{
	"filename",
	"text_excerpt",
	"date_primary_mmddyyyy",
	"date1_mmddyyyy", "date1_label", "date1_snippet",
	"date2_mmddyyyy", "date2_label", "date2_snippet",
	"date3_mmddyyyy", "date3_label", "date3_snippet",
	"date_count",
	"possible_vendor",
	"invoice_no",
	"total",
	"other_amounts",
	"errors",
}

const (
	dateSlots       = 3
	amountSeparator = ","
	errorSeparator  = "; "
)

// Row renders rec in Columns order.
func Row(rec models.ExtractionRecord) []string {
	row := make([]string, 0, len(Columns))
	row = append(row, rec.Filename, rec.TextExcerpt, rec.DatePrimaryString())

	for i := 0; i < dateSlots; i++ {
		slot := rec.DateSlotAt(i)
		row = append(row, slot.FormattedValue(), string(slot.Label), slot.Snippet)
	}

	return append(row,
		strconv.Itoa(rec.DateCount),
		rec.PossibleVendor,
		rec.InvoiceNo,
		rec.TotalString(),
		JoinAmounts(rec.OtherAmounts),
		strings.Join(rec.Errors, errorSeparator),
	)
}

// JoinAmounts renders amounts in order, comma separated.
func JoinAmounts(amounts []models.Amount) string {
	parts := make([]string, len(amounts))
	for i, a := range amounts {
		parts[i] = a.String()
	}
	return strings.Join(parts, amountSeparator)
}
