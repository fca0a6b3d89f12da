package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// VendorCandidate is a scored vendor-name guess.
type VendorCandidate struct {
	Text   string
	Score  int
	Offset int
}

// RE2's \b only knows ASCII letters, so names are delimited explicitly and
// captured in group 1.
const (
	nameLead  = `(?:^|[^\p{L}\p{N}_])`
	nameTrail = `(?:[^\p{L}\p{N}_]|$)`
)

var (
	titleRunRe = regexp.MustCompile(nameLead + `(\p{Lu}\p{Ll}+(?:[ \t]+(?:&[ \t]+)?\p{Lu}\p{Ll}+)*)` + nameTrail)
	capsRunRe  = regexp.MustCompile(nameLead + `(\p{Lu}[\p{Lu}&'.]*\p{Lu}(?:[ \t]+(?:&[ \t]+)?\p{Lu}[\p{Lu}&'.]*\p{Lu})+)` + nameTrail)
	nameRe     = regexp.MustCompile(`^[\s:.#-]*(\p{Lu}[\p{L}&'.-]*(?:[ \t]+(?:&[ \t]+)?\p{Lu}[\p{L}&'.-]*){0,4})`)
	titleWord  = regexp.MustCompile(`^\p{Lu}\p{Ll}+$`)
)

// VendorExtractor guesses the issuing company from independent text signals.
type VendorExtractor struct {
	opts     VendorOptions
	suffixRe *regexp.Regexp
	suffixes map[string]bool
	exclude  map[string]bool
}

// NewVendorExtractor creates a vendor extractor with the given tuning.
func NewVendorExtractor(opts VendorOptions) *VendorExtractor {
	e := &VendorExtractor{
		opts:     opts,
		suffixes: make(map[string]bool),
		exclude:  make(map[string]bool),
	}

	quoted := make([]string, 0, len(opts.Suffixes))
	for _, s := range opts.Suffixes {
		e.suffixes[strings.ToLower(s)] = true
		quoted = append(quoted, regexp.QuoteMeta(s))
	}
	// Longest suffixes first so "Corporation" is preferred over "Corp".
	sort.SliceStable(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	if len(quoted) > 0 {
		e.suffixRe = regexp.MustCompile(nameLead + `((?:\p{Lu}[\p{L}&'.-]*,?[ \t]+){1,4}(?i:` + strings.Join(quoted, "|") + `)\.?)` + nameTrail)
	}

	for _, w := range opts.ExcludeWords {
		e.exclude[strings.ToLower(w)] = true
	}
	return e
}

// Extract returns the best-scoring candidate above the threshold, if any.
// Ties go to the earliest offset, then to the longer text.
func (e *VendorExtractor) Extract(text string) (VendorCandidate, bool) {
	spans := make(map[span]bool)
	keywordWindows := e.keywordWindows(text)

	for _, loc := range findNames(titleRunRe, text) {
		for _, s := range e.splitOnExcluded(text, loc) {
			if s.words >= 2 {
				spans[e.capWords(text, s.span, 5)] = true
			}
		}
	}
	for _, loc := range findNames(capsRunRe, text) {
		for _, s := range e.splitOnExcluded(text, loc) {
			if s.words >= 2 {
				spans[s.span] = true
			}
		}
	}
	if e.suffixRe != nil {
		for _, loc := range findNames(e.suffixRe, text) {
			if s, ok := e.trimLeadingExcluded(text, loc); ok {
				spans[s] = true
			}
		}
	}
	for _, w := range keywordWindows {
		m := nameRe.FindStringSubmatchIndex(text[w.start:])
		if m == nil || m[2] < 0 || w.start+m[2] >= w.end {
			continue
		}
		if s, ok := e.trimLeadingExcluded(text, span{w.start + m[2], w.start + m[3]}); ok {
			spans[s] = true
		}
	}

	var best VendorCandidate
	found := false
	for s := range spans {
		s = e.trimTrailingPunct(text, s)
		name := text[s.start:s.end]
		if n := utf8.RuneCountInString(name); n < e.opts.MinLength || n > e.opts.MaxLength {
			continue
		}
		score := e.score(name, s, keywordWindows)
		if score < e.opts.Threshold {
			continue
		}
		c := VendorCandidate{Text: name, Score: score, Offset: s.start}
		if !found || better(c, best) {
			best, found = c, true
		}
	}
	return best, found
}

// findNames returns the group 1 spans of re. Matching resumes at the end of each
// name so a delimiter consumed by one match can still lead the next.
func findNames(re *regexp.Regexp, text string) []span {
	var out []span
	for pos := 0; pos < len(text); {
		m := re.FindStringSubmatchIndex(text[pos:])
		if m == nil {
			break
		}
		out = append(out, span{pos + m[2], pos + m[3]})
		pos += m[3]
	}
	return out
}

func better(a, b VendorCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Offset != b.Offset {
		return a.Offset < b.Offset
	}
	if len(a.Text) != len(b.Text) {
		return len(a.Text) > len(b.Text)
	}
	return a.Text < b.Text
}

// score sums the weight of every signal the candidate satisfies.
func (e *VendorExtractor) score(name string, s span, keywordWindows []span) int {
	words := nameWords(name)
	score := 0

	if len(words) >= 2 && len(words) <= 5 && allWords(words, isTitleWord) {
		score += e.opts.TitleWeight
	}
	if len(words) >= 2 && allWords(words, isCapsWord) {
		score += e.opts.CapsWeight
	}
	if len(words) >= 2 && e.suffixes[strings.ToLower(strings.Trim(words[len(words)-1], ".,"))] {
		score += e.opts.SuffixWeight
	}
	for _, w := range keywordWindows {
		if s.start >= w.start && s.start < w.end {
			score += e.opts.KeywordWeight
			break
		}
	}
	if s.start < e.opts.StartWindow {
		score += e.opts.StartWeight
	}
	for _, w := range words {
		if e.exclude[strings.ToLower(strings.Trim(w, ".,'"))] {
			score -= e.opts.ExcludePenalty
			break
		}
	}
	return score
}

// keywordWindows returns the text windows following each vendor keyword.
func (e *VendorExtractor) keywordWindows(text string) []span {
	lower := lowerASCII(text)
	var windows []span
	for _, kw := range e.opts.Keywords {
		kw = strings.ToLower(kw)
		for _, pos := range findWhole(lower, kw) {
			start := pos + len(kw)
			windows = append(windows, span{start, windowAfter(text, start, e.opts.KeywordWindow)})
		}
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].start < windows[j].start })
	return windows
}

type wordSpan struct {
	span
	words int
}

// splitOnExcluded cuts a run of words into segments separated by excluded words.
func (e *VendorExtractor) splitOnExcluded(text string, run span) []wordSpan {
	var out []wordSpan
	cur := wordSpan{span: span{-1, -1}}
	flush := func() {
		if cur.start >= 0 {
			out = append(out, cur)
		}
		cur = wordSpan{span: span{-1, -1}}
	}
	for _, w := range wordSpans(text, run) {
		word := text[w.start:w.end]
		if e.exclude[strings.ToLower(strings.Trim(word, ".,'"))] {
			flush()
			continue
		}
		if cur.start < 0 {
			cur.start = w.start
		}
		cur.end = w.end
		if word != "&" {
			cur.words++
		}
	}
	flush()
	return out
}

// capWords shortens s to its first n words.
func (e *VendorExtractor) capWords(text string, s span, n int) span {
	count := 0
	for _, w := range wordSpans(text, s) {
		if text[w.start:w.end] == "&" {
			continue
		}
		count++
		if count == n {
			return span{s.start, w.end}
		}
	}
	return s
}

// trimLeadingExcluded drops excluded words from the front of s.
func (e *VendorExtractor) trimLeadingExcluded(text string, s span) (span, bool) {
	for _, w := range wordSpans(text, s) {
		word := text[w.start:w.end]
		if !e.exclude[strings.ToLower(strings.Trim(word, ".,:'"))] && word != "&" {
			return span{w.start, s.end}, true
		}
	}
	return span{}, false
}

// trimTrailingPunct strips trailing separators, keeping the period of an abbreviated suffix.
func (e *VendorExtractor) trimTrailingPunct(text string, s span) span {
	for s.end > s.start {
		c := text[s.end-1]
		if c == ',' || c == ';' || c == ':' || c == '-' || c == '&' || c == ' ' || c == '\t' {
			s.end--
			continue
		}
		if c == '.' {
			words := nameWords(text[s.start:s.end])
			if len(words) > 0 && e.suffixes[strings.ToLower(strings.TrimRight(words[len(words)-1], "."))] {
				break
			}
			s.end--
			continue
		}
		break
	}
	return s
}

// wordSpans splits s into whitespace-separated words.
func wordSpans(text string, s span) []span {
	var out []span
	start := -1
	for i := s.start; i < s.end; i++ {
		if text[i] == ' ' || text[i] == '\t' {
			if start >= 0 {
				out = append(out, span{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, span{start, s.end})
	}
	return out
}

func nameWords(name string) []string {
	var words []string
	for _, w := range strings.Fields(name) {
		if w != "&" {
			words = append(words, w)
		}
	}
	return words
}

func allWords(words []string, pred func(string) bool) bool {
	for _, w := range words {
		if !pred(w) {
			return false
		}
	}
	return true
}

// isTitleWord accepts "Acme" and the abbreviation "Inc.".
func isTitleWord(w string) bool {
	return titleWord.MatchString(strings.TrimSuffix(w, "."))
}

func isCapsWord(w string) bool {
	hasUpper := false
	for _, r := range w {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}
