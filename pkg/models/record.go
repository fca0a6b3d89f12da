package models

import (
	"fmt"
	"time"
)

// DateLayout is how every date column is rendered (MM/DD/YYYY).
const DateLayout = "01/02/2006"

// DateLabel classifies a date by the keyword found just before it.
type DateLabel string

const (
	LabelInvoice DateLabel = "invoice"
	LabelDue     DateLabel = "due"
	LabelOrder   DateLabel = "order"
	LabelShip    DateLabel = "ship"
	LabelUnknown DateLabel = "unknown"
)

// Priority returns the sort rank of the label; lower ranks win.
func (l DateLabel) Priority() int {
	switch l {
	case LabelInvoice:
		return 1
	case LabelDue:
		return 2
	case LabelOrder:
		return 3
	case LabelShip:
		return 4
	default:
		return 5
	}
}

// Amount is a monetary value in cents (smallest currency unit) to avoid float issues.
type Amount int64

// String renders the amount as a plain decimal with two places, e.g. "1234.56" or "-12.50".
func (a Amount) String() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// DateSlot is one of the date1..date3 output columns.
type DateSlot struct {
	Value   time.Time // Calendar date, UTC midnight
	Label   DateLabel // invoice, due, order, ship or unknown
	Snippet string    // Surrounding text, whitespace collapsed
}

// FormattedValue renders the slot date as MM/DD/YYYY, or "" for an empty slot.
func (d DateSlot) FormattedValue() string {
	if d.Value.IsZero() {
		return ""
	}
	return d.Value.Format(DateLayout)
}

type ExtractionRecord struct {
	// Always set
	Filename string

	TextExcerpt string // Whitespace-collapsed prefix of the document text

	// Dates
	DatePrimary time.Time  // Zero when no date was found
	Dates       []DateSlot // At most three, sorted by label priority then offset
	DateCount   int        // Distinct calendar dates found, before the three-slot cap

	// Parties and identifiers
	PossibleVendor string
	InvoiceNo      string

	// Amounts
	Total        *Amount  // nil when no total keyword was near an amount
	OtherAmounts []Amount // Distinct amounts in order of first appearance, total occurrence excluded

	// Field-level or file-level failures, formatted as "<field>: <message>"
	Errors []string
}

// HasErrors reports whether any field or file-level failure was recorded.
func (r *ExtractionRecord) HasErrors() bool {
	return len(r.Errors) > 0
}

// DatePrimaryString renders DatePrimary as MM/DD/YYYY, or "" when absent.
func (r *ExtractionRecord) DatePrimaryString() string {
	if r.DatePrimary.IsZero() {
		return ""
	}
	return r.DatePrimary.Format(DateLayout)
}

// DateSlotAt returns date slot i (0-based), or an empty slot when fewer dates exist.
func (r *ExtractionRecord) DateSlotAt(i int) DateSlot {
	if i < 0 || i >= len(r.Dates) {
		return DateSlot{}
	}
	return r.Dates[i]
}

// TotalString renders Total, or "" when no total was selected.
func (r *ExtractionRecord) TotalString() string {
	if r.Total == nil {
		return ""
	}
	return r.Total.String()
}

// BatchResult is the ordered output of one run: one record per input document.
type BatchResult struct {
	RunID     string
	Records   []ExtractionRecord
	Processed int // Documents decoded and extracted
	Failed    int // Documents that produced an error-only record
	Duration  time.Duration
}
