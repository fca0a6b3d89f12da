package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"docextract/pkg/models"
)

// DateCandidate is one distinct calendar date found in a document.
type DateCandidate struct {
	RawSnippet string           // Matched text, e.g. "Jan 5, 2024"
	Offset     int              // Byte offset of the first occurrence
	Value      time.Time        // Calendar date, UTC midnight
	Label      models.DateLabel // Highest-priority label seen for this date
	Context    string           // Text around the first occurrence, whitespace collapsed
}

// DateResult is the output of DateExtractor.Extract.
type DateResult struct {
	// Candidates are deduplicated and sorted by label priority, then offset. Uncapped.
	Candidates []DateCandidate

	// TotalDistinct is the number of distinct calendar dates found.
	TotalDistinct int
}

// Primary returns the highest-ranked date, if any.
func (r DateResult) Primary() (DateCandidate, bool) {
	if len(r.Candidates) == 0 {
		return DateCandidate{}, false
	}
	return r.Candidates[0], true
}

// Top returns at most n candidates.
func (r DateResult) Top(n int) []DateCandidate {
	if len(r.Candidates) <= n {
		return r.Candidates
	}
	return r.Candidates[:n]
}

// labelRule maps keywords found before a date to a label. Rules are checked in
// priority order and keywords match at a word start.
type labelRule struct {
	label    models.DateLabel
	keywords []string
}

var labelRules = []labelRule{
	{models.LabelInvoice, []string{"invoice", "inv date", "inv. date", "billing date"}},
	{models.LabelDue, []string{"due", "payment date"}},
	{models.LabelOrder, []string{"order", "po date", "p.o. date", "purchase date"}},
	{models.LabelShip, []string{"ship", "delivery date", "delivered"}},
}

const monthPattern = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

// Date shapes, from least to most specific.
var (
	numericDateRe    = regexp.MustCompile(`\b(\d{1,2})([-/.])(\d{1,2})([-/.])(\d{4}|\d{2})\b`)
	isoDateRe        = regexp.MustCompile(`\b(\d{4})([-/.])(\d{1,2})([-/.])(\d{1,2})\b`)
	monthFirstDateRe = regexp.MustCompile(`(?i)\b` + monthPattern + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	dayFirstDateRe   = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+` + monthPattern + `\.?,?\s+(\d{4})\b`)
)

// dateMatch is a calendar-valid match before overlap resolution.
type dateMatch struct {
	span
	value       time.Time
	specificity int
}

// DateExtractor finds, labels and ranks dates.
type DateExtractor struct {
	opts DateOptions
}

// NewDateExtractor creates a date extractor with the given tuning.
func NewDateExtractor(opts DateOptions) *DateExtractor {
	return &DateExtractor{opts: opts}
}

// Extract returns the distinct dates in text, ranked for the date columns.
func (e *DateExtractor) Extract(text string) DateResult {
	matches := e.resolveOverlaps(e.scan(text))

	lower := lowerASCII(text)
	var candidates []DateCandidate
	index := make(map[time.Time]int)
	prevEnd := 0

	for _, m := range matches {
		if m.value.Year() < e.opts.MinYear || m.value.Year() > e.opts.MaxYear {
			continue
		}

		windowStart := windowBefore(text, m.start, e.opts.LabelWindow, prevEnd)
		label := classifyLabel(lower[windowStart:m.start])
		prevEnd = m.end

		if i, seen := index[m.value]; seen {
			if label.Priority() < candidates[i].Label.Priority() {
				candidates[i].Label = label
			}
			continue
		}

		index[m.value] = len(candidates)
		candidates = append(candidates, DateCandidate{
			RawSnippet: text[m.start:m.end],
			Offset:     m.start,
			Value:      m.value,
			Label:      label,
			Context:    snippetAround(text, m.span, e.opts.SnippetRadius),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		pi, pj := candidates[i].Label.Priority(), candidates[j].Label.Priority()
		if pi != pj {
			return pi < pj
		}
		return candidates[i].Offset < candidates[j].Offset
	})

	return DateResult{Candidates: candidates, TotalDistinct: len(candidates)}
}

// Spans returns every date-shaped substring of text regardless of year window.
// The invoice number search uses it to skip date tokens.
func (e *DateExtractor) Spans(text string) []span {
	var spans []span
	for _, m := range e.resolveOverlaps(e.scan(text)) {
		spans = append(spans, m.span)
	}
	return spans
}

func (e *DateExtractor) scan(text string) []dateMatch {
	var out []dateMatch

	for _, idx := range numericDateRe.FindAllStringSubmatchIndex(text, -1) {
		g := groups(text, idx)
		if g[2] != g[4] {
			continue
		}
		first, _ := strconv.Atoi(g[1])
		second, _ := strconv.Atoi(g[3])
		year := e.expandYear(g[5])
		month, day := first, second
		if first > 12 && second <= 12 {
			month, day = second, first
		}
		if t, ok := calendarDate(year, month, day); ok {
			out = append(out, dateMatch{span{idx[0], idx[1]}, t, 1})
		}
	}

	for _, idx := range isoDateRe.FindAllStringSubmatchIndex(text, -1) {
		g := groups(text, idx)
		if g[2] != g[4] {
			continue
		}
		year, _ := strconv.Atoi(g[1])
		month, _ := strconv.Atoi(g[3])
		day, _ := strconv.Atoi(g[5])
		if t, ok := calendarDate(year, month, day); ok {
			out = append(out, dateMatch{span{idx[0], idx[1]}, t, 2})
		}
	}

	for _, idx := range monthFirstDateRe.FindAllStringSubmatchIndex(text, -1) {
		g := groups(text, idx)
		day, _ := strconv.Atoi(g[2])
		year, _ := strconv.Atoi(g[3])
		if t, ok := calendarDate(year, monthNumber(g[1]), day); ok {
			out = append(out, dateMatch{span{idx[0], idx[1]}, t, 3})
		}
	}

	for _, idx := range dayFirstDateRe.FindAllStringSubmatchIndex(text, -1) {
		g := groups(text, idx)
		day, _ := strconv.Atoi(g[1])
		year, _ := strconv.Atoi(g[3])
		if t, ok := calendarDate(year, monthNumber(g[2]), day); ok {
			out = append(out, dateMatch{span{idx[0], idx[1]}, t, 3})
		}
	}

	return out
}

// resolveOverlaps keeps, at each position, the longest and then most specific
// match, and drops anything overlapping an accepted match.
func (e *DateExtractor) resolveOverlaps(matches []dateMatch) []dateMatch {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.start != b.start {
			return a.start < b.start
		}
		if la, lb := a.end-a.start, b.end-b.start; la != lb {
			return la > lb
		}
		return a.specificity > b.specificity
	})

	var accepted []dateMatch
	lastEnd := -1
	for _, m := range matches {
		if m.start < lastEnd {
			continue
		}
		accepted = append(accepted, m)
		lastEnd = m.end
	}
	return accepted
}

// expandYear turns a two-digit year into 20yy, or 19yy when 20yy is past MaxYear.
func (e *DateExtractor) expandYear(s string) int {
	year, _ := strconv.Atoi(s)
	if len(s) != 2 {
		return year
	}
	if 2000+year > e.opts.MaxYear {
		return 1900 + year
	}
	return 2000 + year
}

func classifyLabel(window string) models.DateLabel {
	for _, rule := range labelRules {
		for _, kw := range rule.keywords {
			if len(findWordStart(window, kw)) > 0 {
				return rule.label
			}
		}
	}
	return models.LabelUnknown
}

func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func monthNumber(name string) int {
	if len(name) < 3 {
		return 0
	}
	switch strings.ToLower(name[:3]) {
	case "jan":
		return 1
	case "feb":
		return 2
	case "mar":
		return 3
	case "apr":
		return 4
	case "may":
		return 5
	case "jun":
		return 6
	case "jul":
		return 7
	case "aug":
		return 8
	case "sep":
		return 9
	case "oct":
		return 10
	case "nov":
		return 11
	case "dec":
		return 12
	}
	return 0
}

// groups converts submatch indexes into strings; unmatched groups are "".
func groups(text string, idx []int) []string {
	out := make([]string, len(idx)/2)
	for i := range out {
		if idx[2*i] >= 0 {
			out[i] = text[idx[2*i]:idx[2*i+1]]
		}
	}
	return out
}
