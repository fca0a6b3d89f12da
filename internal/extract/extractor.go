// Package extract holds the field heuristics that turn document text into
// candidate dates, a vendor name, an invoice number and monetary amounts.
//
// Every extractor is a pure function of its input text and options; the same
// text always yields the same result.
package extract

// Set bundles the four field extractors built from one Options value.
type Set struct {
	Options  Options
	Dates    *DateExtractor
	Vendor   *VendorExtractor
	Invoice  *InvoiceNumberExtractor
	Currency *CurrencyExtractor
}

// New builds all extractors from opts.
func New(opts Options) *Set {
	dates := NewDateExtractor(opts.Dates)
	currency := NewCurrencyExtractor(opts.Currency)
	return &Set{
		Options:  opts,
		Dates:    dates,
		Vendor:   NewVendorExtractor(opts.Vendor),
		Invoice:  NewInvoiceNumberExtractor(opts.Invoice, dates, currency),
		Currency: currency,
	}
}
