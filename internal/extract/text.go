package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// span is a half-open byte range [start, end) in the document text.
type span struct {
	start, end int
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// CollapseWhitespace replaces every run of whitespace with one space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// windowBefore returns the start of a window of n bytes ending at pos, not earlier
// than floor, moved forward onto a rune boundary.
func windowBefore(text string, pos, n, floor int) int {
	start := pos - n
	if start < floor {
		start = floor
	}
	if start < 0 {
		start = 0
	}
	for start < pos && !utf8.RuneStart(text[start]) {
		start++
	}
	return start
}

// windowAfter returns the end of a window of n bytes starting at pos, moved
// back onto a rune boundary.
func windowAfter(text string, pos, n int) int {
	end := pos + n
	if end >= len(text) {
		return len(text)
	}
	for end > pos && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}

// snippetAround returns the text within radius bytes of s, whitespace collapsed.
func snippetAround(text string, s span, radius int) string {
	start := windowBefore(text, s.start, radius, 0)
	end := windowAfter(text, s.end, radius)
	return CollapseWhitespace(text[start:end])
}

// lowerASCII lowercases A-Z only, so byte offsets stay valid against the original text.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func letterOrDigitBefore(text string, i int) bool {
	if i <= 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func letterOrDigitAt(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// findWordStart returns the byte offsets in lower where keyword starts at a word
// boundary. The keyword may run into a longer word ("ship" matches "shipped").
func findWordStart(lower, keyword string) []int {
	var hits []int
	for from := 0; from < len(lower); {
		i := strings.Index(lower[from:], keyword)
		if i < 0 {
			break
		}
		pos := from + i
		if !letterOrDigitBefore(lower, pos) {
			hits = append(hits, pos)
		}
		from = pos + len(keyword)
	}
	return hits
}

// findWhole returns the byte offsets in lower where keyword occurs as a whole word.
func findWhole(lower, keyword string) []int {
	var hits []int
	for _, pos := range findWordStart(lower, keyword) {
		if !letterOrDigitAt(lower, pos+len(keyword)) {
			hits = append(hits, pos)
		}
	}
	return hits
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
