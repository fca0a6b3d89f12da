package extract

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Options holds every tunable constant of the heuristics. The zero value is not
// usable; start from DefaultOptions and overlay a tuning file with LoadOptions.
type Options struct {
	Dates    DateOptions     `toml:"dates"`
	Vendor   VendorOptions   `toml:"vendor"`
	Invoice  InvoiceOptions  `toml:"invoice"`
	Currency CurrencyOptions `toml:"currency"`
}

// DateOptions tunes the date extractor.
type DateOptions struct {
	MinYear       int `toml:"min_year"`
	MaxYear       int `toml:"max_year"`
	LabelWindow   int `toml:"label_window"`   // Characters inspected before a date for a label keyword
	SnippetRadius int `toml:"snippet_radius"` // Characters kept on each side of a date in its snippet
	MaxSlots      int `toml:"max_slots"`      // date1..dateN columns filled
}

// VendorOptions tunes the vendor scorer.
type VendorOptions struct {
	MinLength      int      `toml:"min_length"`
	MaxLength      int      `toml:"max_length"`
	Threshold      int      `toml:"threshold"`
	StartWindow    int      `toml:"start_window"`   // Candidates starting before this offset get the near-start bonus
	KeywordWindow  int      `toml:"keyword_window"` // Characters after a vendor keyword searched for a name
	TitleWeight    int      `toml:"title_weight"`
	CapsWeight     int      `toml:"caps_weight"`
	SuffixWeight   int      `toml:"suffix_weight"`
	KeywordWeight  int      `toml:"keyword_weight"`
	StartWeight    int      `toml:"start_weight"`
	ExcludePenalty int      `toml:"exclude_penalty"`
	Keywords       []string `toml:"keywords"`
	Suffixes       []string `toml:"suffixes"`
	ExcludeWords   []string `toml:"exclude_words"`
}

// InvoiceOptions tunes the invoice number search.
type InvoiceOptions struct {
	WindowBefore int `toml:"window_before"`
	WindowAfter  int `toml:"window_after"`
	MinLength    int `toml:"min_length"`
	MaxLength    int `toml:"max_length"`
	MinNumeric   int `toml:"min_numeric"` // Minimum length of an all-digit token
}

// CurrencyOptions tunes the total selection.
type CurrencyOptions struct {
	TotalWindow   int      `toml:"total_window"` // Characters after a total keyword an amount may start in
	TotalKeywords []string `toml:"total_keywords"`
}

// DefaultOptions returns the built-in tuning. The year window ends one year after now.
func DefaultOptions(now time.Time) Options {
	return Options{
		Dates: DateOptions{
			MinYear:       1990,
			MaxYear:       now.Year() + 1,
			LabelWindow:   40,
			SnippetRadius: 50,
			MaxSlots:      3,
		},
		Vendor: VendorOptions{
			MinLength:      3,
			MaxLength:      50,
			Threshold:      20,
			StartWindow:    200,
			KeywordWindow:  60,
			TitleWeight:    10,
			CapsWeight:     10,
			SuffixWeight:   20,
			KeywordWeight:  25,
			StartWeight:    10,
			ExcludePenalty: 20,
			Keywords:       []string{"vendor", "supplier", "sold by", "from", "remit to", "payable to"},
			Suffixes: []string{
				"Inc", "Incorporated", "Corp", "Corporation", "LLC", "LLP", "PLLC", "Ltd", "Limited",
				"Co", "Company", "GmbH", "AG", "KG", "SA", "SARL", "BV", "PLC", "Group", "Enterprises",
				"Industries",
			},
			ExcludeWords: []string{
				"invoice", "bill", "receipt", "statement", "total", "subtotal", "amount", "payment",
				"date", "number", "account", "customer", "order", "purchase", "sale", "tax",
				"shipping", "delivery", "address", "phone", "email", "website", "terms",
				"conditions", "description", "quantity", "price", "discount", "balance", "due",
				"paid", "remit", "billing", "contact", "page", "ship", "to", "from", "qty",
				"item", "unit", "po", "no",
			},
		},
		Invoice: InvoiceOptions{
			WindowBefore: 30,
			WindowAfter:  40,
			MinLength:    3,
			MaxLength:    20,
			MinNumeric:   4,
		},
		Currency: CurrencyOptions{
			TotalWindow:   30,
			TotalKeywords: []string{"grand total", "amount due", "balance due", "total"},
		},
	}
}

// LoadOptions overlays the TOML file at path onto base. Keys missing from the
// file keep their base values.
func LoadOptions(path string, base Options) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read tuning file: %w", err)
	}
	opts := base
	if err := toml.Unmarshal(data, &opts); err != nil {
		return base, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return base, err
	}
	return opts, nil
}

// Validate rejects tunings the extractors cannot work with.
func (o Options) Validate() error {
	switch {
	case o.Dates.MinYear > o.Dates.MaxYear:
		return fmt.Errorf("dates: min_year %d is after max_year %d", o.Dates.MinYear, o.Dates.MaxYear)
	case o.Dates.LabelWindow < 0 || o.Dates.SnippetRadius < 0:
		return fmt.Errorf("dates: windows must not be negative")
	case o.Dates.MaxSlots < 1:
		return fmt.Errorf("dates: max_slots must be at least 1")
	case o.Vendor.MinLength < 1 || o.Vendor.MaxLength < o.Vendor.MinLength:
		return fmt.Errorf("vendor: invalid length bounds %d..%d", o.Vendor.MinLength, o.Vendor.MaxLength)
	case o.Invoice.MinLength < 1 || o.Invoice.MaxLength < o.Invoice.MinLength:
		return fmt.Errorf("invoice: invalid length bounds %d..%d", o.Invoice.MinLength, o.Invoice.MaxLength)
	case o.Invoice.WindowBefore < 0 || o.Invoice.WindowAfter < 0 || o.Currency.TotalWindow < 0:
		return fmt.Errorf("windows must not be negative")
	case len(o.Currency.TotalKeywords) == 0:
		return fmt.Errorf("currency: total_keywords must not be empty")
	}
	return nil
}
