package extract

import (
	"regexp"
	"strconv"
	"strings"

	"docextract/pkg/models"
)

// CurrencyCandidate is one monetary amount found in a document.
type CurrencyCandidate struct {
	Value         models.Amount
	RawText       string
	Offset        int
	IsTotalSignal bool // Nominated by a total keyword
	end           int
}

// CurrencyResult is the output of CurrencyExtractor.Extract.
type CurrencyResult struct {
	Total        *models.Amount
	OtherAmounts []models.Amount
	Candidates   []CurrencyCandidate // Every amount in order of appearance
}

// Symbol or ISO code prefix, well-formed thousands groups, exactly two decimals.
// Negatives: "(…)", a minus directly before or after the symbol, or a trailing
// minus. A minus separated from the symbol by a space is a separator.
var (
	amountRe = regexp.MustCompile(
		`(\(\s*)?(-)?(?:[$€£¥₹]|\b(?:USD|EUR|GBP|CAD|AUD|JPY|INR)\b)\s?(-)?(\d{1,3}(?:,\d{3})+|\d{1,12})\.(\d{2})\b(\s*\))?(-)?`,
	)
	// amountStartRe matches text that begins another amount, as in "$1.00-$2.00".
	amountStartRe = regexp.MustCompile(`^(?:[$€£¥₹(\d]|(?:USD|EUR|GBP|CAD|AUD|JPY|INR)\b)`)
)

// CurrencyExtractor finds amounts and picks the document total.
type CurrencyExtractor struct {
	opts CurrencyOptions
}

// NewCurrencyExtractor creates a currency extractor with the given tuning.
func NewCurrencyExtractor(opts CurrencyOptions) *CurrencyExtractor {
	return &CurrencyExtractor{opts: opts}
}

// Extract returns the selected total and the remaining distinct amounts.
//
// Each total keyword nominates the first amount starting within the window after
// it; the nominee with the latest offset becomes the total because documents state
// the payable amount after subtotals and taxes. OtherAmounts excludes that one
// occurrence only, so an equal amount elsewhere is still listed.
func (e *CurrencyExtractor) Extract(text string) CurrencyResult {
	candidates := e.scan(text)
	if len(candidates) == 0 {
		return CurrencyResult{}
	}

	lower := lowerASCII(text)
	totalIdx := -1
	for _, kw := range e.opts.TotalKeywords {
		kw = strings.ToLower(kw)
		for _, pos := range findWhole(lower, kw) {
			from := pos + len(kw)
			limit := windowAfter(text, from, e.opts.TotalWindow)
			for i := range candidates {
				if candidates[i].Offset < from {
					continue
				}
				if candidates[i].Offset <= limit {
					candidates[i].IsTotalSignal = true
					if totalIdx < 0 || candidates[i].Offset > candidates[totalIdx].Offset {
						totalIdx = i
					}
				}
				break
			}
		}
	}

	result := CurrencyResult{Candidates: candidates}
	if totalIdx >= 0 {
		total := candidates[totalIdx].Value
		result.Total = &total
	}

	seen := make(map[models.Amount]bool)
	for i, c := range candidates {
		if i == totalIdx || seen[c.Value] {
			continue
		}
		seen[c.Value] = true
		result.OtherAmounts = append(result.OtherAmounts, c.Value)
	}

	return result
}

// Spans returns the byte ranges of every amount in text.
func (e *CurrencyExtractor) Spans(text string) []span {
	var spans []span
	for _, c := range e.scan(text) {
		spans = append(spans, span{c.Offset, c.end})
	}
	return spans
}

func (e *CurrencyExtractor) scan(text string) []CurrencyCandidate {
	var out []CurrencyCandidate
	for _, idx := range amountRe.FindAllStringSubmatchIndex(text, -1) {
		g := groups(text, idx)
		cents, ok := parseCents(g[4], g[5])
		if !ok {
			continue
		}

		end := idx[1]
		trailing := g[7] != ""
		if trailing && amountStartRe.MatchString(text[end:]) {
			// Range dash, not a sign
			trailing = false
			end--
		}

		negative := g[2] != "" || g[3] != "" || trailing || (g[1] != "" && g[6] != "")
		if negative {
			cents = -cents
		}

		out = append(out, CurrencyCandidate{
			Value:   models.Amount(cents),
			RawText: strings.TrimSpace(text[idx[0]:end]),
			Offset:  idx[0],
			end:     end,
		})
	}
	return out
}

func parseCents(whole, frac string) (int64, bool) {
	units, err := strconv.ParseInt(strings.ReplaceAll(whole, ",", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, false
	}
	return units*100 + cents, true
}
