package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const invoiceKeyword = "invoice"

// InvoiceNumberExtractor looks for an identifier next to the word "invoice".
type InvoiceNumberExtractor struct {
	opts     InvoiceOptions
	dates    *DateExtractor
	currency *CurrencyExtractor
}

// NewInvoiceNumberExtractor creates an invoice number extractor. Tokens that are
// dates or amounts according to dates and currency are never returned.
func NewInvoiceNumberExtractor(opts InvoiceOptions, dates *DateExtractor, currency *CurrencyExtractor) *InvoiceNumberExtractor {
	return &InvoiceNumberExtractor{opts: opts, dates: dates, currency: currency}
}

type invoiceToken struct {
	span
	value string
}

// Extract returns the invoice number, if any. Occurrences of "invoice" are tried
// in order; within one window the token closest to the keyword wins, and a token
// after the keyword beats one before it at equal distance.
func (e *InvoiceNumberExtractor) Extract(text string) (string, bool) {
	occurrences := findWordStart(lowerASCII(text), invoiceKeyword)
	if len(occurrences) == 0 {
		return "", false
	}

	var blocked []span
	if e.dates != nil {
		blocked = append(blocked, e.dates.Spans(text)...)
	}
	if e.currency != nil {
		blocked = append(blocked, e.currency.Spans(text)...)
	}

	for _, occ := range occurrences {
		kw := span{occ, occ + len(invoiceKeyword)}
		from := windowBefore(text, kw.start, e.opts.WindowBefore, 0)
		to := windowAfter(text, kw.end, e.opts.WindowAfter)

		best, bestDist, bestAfter := "", -1, false
		for _, tok := range tokenize(text, span{from, to}) {
			if tok.overlaps(kw) {
				// "Invoice#1234" is one token; keep what follows the keyword.
				if tok.end <= kw.end {
					continue
				}
				tok = invoiceToken{span{kw.end, tok.end}, text[kw.end:tok.end]}
			}
			value, ok := e.eligible(tok, blocked)
			if !ok {
				continue
			}

			after := tok.start >= kw.end
			dist := kw.start - tok.end
			if after {
				dist = tok.start - kw.end
			}
			if bestDist < 0 || dist < bestDist || (dist == bestDist && after && !bestAfter) {
				best, bestDist, bestAfter = value, dist, after
			}
		}
		if bestDist >= 0 {
			return best, true
		}
	}
	return "", false
}

// eligible strips number markers from tok and applies the identifier rules.
func (e *InvoiceNumberExtractor) eligible(tok invoiceToken, blocked []span) (string, bool) {
	for _, b := range blocked {
		if tok.overlaps(b) {
			return "", false
		}
	}

	value := stripNumberMarker(tok.value)
	value = strings.TrimRight(value, "-_/#")
	if utf8.RuneCountInString(value) < e.opts.MinLength || utf8.RuneCountInString(value) > e.opts.MaxLength {
		return "", false
	}
	if !hasDigit(value) {
		return "", false
	}
	if isAllDigits(value) && len(value) < e.opts.MinNumeric {
		return "", false
	}
	return value, true
}

// stripNumberMarker removes a leading "#" or "No#" marker. "No." never reaches
// here as one token because '.' ends a token.
func stripNumberMarker(s string) string {
	s = strings.TrimLeft(s, "#")
	if len(s) > 2 && strings.EqualFold(s[:2], "no") && s[2] == '#' {
		s = strings.TrimLeft(s[2:], "#")
	}
	return s
}

// tokenize splits the window into runs of identifier characters. Runs crossing
// the window edges are kept whole.
func tokenize(text string, window span) []invoiceToken {
	start := window.start
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if !isTokenRune(r) {
			break
		}
		start -= size
	}
	end := window.end
	for end < len(text) {
		r, size := utf8.DecodeRuneInString(text[end:])
		if !isTokenRune(r) {
			break
		}
		end += size
	}

	var out []invoiceToken
	tokStart := -1
	for i, r := range text[start:end] {
		pos := start + i
		if isTokenRune(r) {
			if tokStart < 0 {
				tokStart = pos
			}
			continue
		}
		if tokStart >= 0 {
			out = append(out, invoiceToken{span{tokStart, pos}, text[tokStart:pos]})
			tokStart = -1
		}
	}
	if tokStart >= 0 {
		out = append(out, invoiceToken{span{tokStart, end}, text[tokStart:end]})
	}
	return out
}

func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '/' || r == '#'
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
