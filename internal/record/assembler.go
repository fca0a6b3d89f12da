// Package record combines the field extractors into one ExtractionRecord per document.
package record

import (
	"fmt"
	"time"
	"unicode/utf8"

	"docextract/internal/extract"
	"docextract/internal/logger"
	"docextract/pkg/models"
)

// Output field names used as the prefix of error entries.
const (
	FieldDates    = "dates"
	FieldVendor   = "possible_vendor"
	FieldInvoice  = "invoice_no"
	FieldAmounts  = "amounts"
	FieldDocument = "document"
)

// DefaultMaxExcerptLength is the excerpt size used when none is configured.
const DefaultMaxExcerptLength = 500

// Config holds the per-record settings.
type Config struct {
	MaxExcerptLength int // In characters; 0 disables the excerpt
}

// Assembler runs every extractor against decoded text.
type Assembler struct {
	extractors *extract.Set
}

// NewAssembler creates an assembler using the given extractors.
func NewAssembler(extractors *extract.Set) *Assembler {
	return &Assembler{extractors: extractors}
}

// Assemble builds the record for one document. A failing extractor leaves its
// field empty and adds an error entry; the other fields are still filled.
func (a *Assembler) Assemble(filename, text string, cfg Config) models.ExtractionRecord {
	rec := models.ExtractionRecord{
		Filename:    filename,
		TextExcerpt: Excerpt(text, cfg.MaxExcerptLength),
	}

	a.run(&rec, FieldDates, func() {
		dates := a.extractors.Dates.Extract(text)
		if primary, ok := dates.Primary(); ok {
			rec.DatePrimary = primary.Value
		}
		for _, c := range dates.Top(a.extractors.Options.Dates.MaxSlots) {
			rec.Dates = append(rec.Dates, models.DateSlot{Value: c.Value, Label: c.Label, Snippet: c.Context})
		}
		rec.DateCount = dates.TotalDistinct
	})

	a.run(&rec, FieldVendor, func() {
		if v, ok := a.extractors.Vendor.Extract(text); ok {
			rec.PossibleVendor = v.Text
		}
	})

	a.run(&rec, FieldInvoice, func() {
		if no, ok := a.extractors.Invoice.Extract(text); ok {
			rec.InvoiceNo = no
		}
	})

	a.run(&rec, FieldAmounts, func() {
		amounts := a.extractors.Currency.Extract(text)
		rec.Total = amounts.Total
		rec.OtherAmounts = amounts.OtherAmounts
	})

	return rec
}

// run calls fill and turns a panic into an error entry for field. Fields
// written before the panic are cleared.
func (a *Assembler) run(rec *models.ExtractionRecord, field string, fill func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		clearField(rec, field)
		err := extract.WrapExtractorError(field, fmt.Errorf("%w: %v", extract.ErrExtractorPanic, r))
		rec.Errors = append(rec.Errors, err.Error())

		log := logger.WithComponent("assembler")
		log.Warn().
			Str("file", rec.Filename).
			Str("field", field).
			Interface("panic", r).
			Msg("Extractor failed, field left empty")
	}()
	fill()
}

func clearField(rec *models.ExtractionRecord, field string) {
	switch field {
	case FieldDates:
		rec.DatePrimary = time.Time{}
		rec.Dates = nil
		rec.DateCount = 0
	case FieldVendor:
		rec.PossibleVendor = ""
	case FieldInvoice:
		rec.InvoiceNo = ""
	case FieldAmounts:
		rec.Total = nil
		rec.OtherAmounts = nil
	}
}

// FailedRecord is the record of a document that could not be decoded or read.
func FailedRecord(filename string, err error) models.ExtractionRecord {
	return models.ExtractionRecord{
		Filename: filename,
		Errors:   []string{extract.WrapExtractorError(FieldDocument, err).Error()},
	}
}

// Excerpt collapses whitespace in text and cuts it to at most limit characters,
// appending "..." when something was cut.
func Excerpt(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	collapsed := extract.CollapseWhitespace(text)
	if utf8.RuneCountInString(collapsed) <= limit {
		return collapsed
	}
	runes := []rune(collapsed)
	return string(runes[:limit]) + "..."
}
