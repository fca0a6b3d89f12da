// Package decode turns raw document bytes into Unicode text.
//
// Candidate encodings are tried in a fixed order and the first one that accepts
// the input wins:
//   - UTF-8 with byte-order mark
//   - UTF-16 (little or big endian) with byte-order mark
//   - UTF-8
//   - Windows-1252, rejecting the five bytes the code page leaves undefined
//   - Latin-1 (ISO 8859-1), which accepts every byte sequence
//
// Because Latin-1 never fails, a DecodingError only happens for degenerate
// input: empty files, binary content and files over the size limit.
package decode

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names the character set a document was decoded with.
type Encoding string

const (
	UTF8        Encoding = "utf-8"
	UTF8BOM     Encoding = "utf-8-bom"
	UTF16LE     Encoding = "utf-16le"
	UTF16BE     Encoding = "utf-16be"
	Windows1252 Encoding = "windows-1252"
	Latin1      Encoding = "iso-8859-1"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodedText is the decoded form of one document.
type DecodedText struct {
	Text         string
	EncodingUsed Encoding
}

// Decoder converts raw bytes into text. The zero value has no size limit.
type Decoder struct {
	// MaxBytes rejects larger inputs when positive.
	MaxBytes int
}

// New returns a Decoder that rejects inputs larger than maxBytes (0 disables the check).
func New(maxBytes int) *Decoder {
	return &Decoder{MaxBytes: maxBytes}
}

// Decode returns the text of data using the first encoding that accepts it.
func (d *Decoder) Decode(data []byte) (DecodedText, error) {
	const op = "Decode"

	if d.MaxBytes > 0 && len(data) > d.MaxBytes {
		return DecodedText{}, NewDecodingError(op, ErrDocumentTooLarge, len(data))
	}

	switch {
	case bytes.HasPrefix(data, bomUTF8):
		body := data[len(bomUTF8):]
		if utf8.Valid(body) {
			return d.finish(op, string(body), UTF8BOM, len(data))
		}
	case bytes.HasPrefix(data, bomUTF16LE):
		if text, ok := decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), data); ok {
			return d.finish(op, text, UTF16LE, len(data))
		}
	case bytes.HasPrefix(data, bomUTF16BE):
		if text, ok := decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), data); ok {
			return d.finish(op, text, UTF16BE, len(data))
		}
	}

	if len(data) == 0 {
		return DecodedText{}, NewDecodingError(op, ErrEmptyDocument, 0)
	}
	if bytes.IndexByte(data, 0x00) >= 0 {
		return DecodedText{}, NewDecodingError(op, ErrBinaryContent, len(data))
	}

	if utf8.Valid(data) {
		return d.finish(op, string(data), UTF8, len(data))
	}
	if !hasUndefinedWindows1252(data) {
		if text, ok := decodeWith(charmap.Windows1252, data); ok {
			return d.finish(op, text, Windows1252, len(data))
		}
	}
	if text, ok := decodeWith(charmap.ISO8859_1, data); ok {
		return d.finish(op, text, Latin1, len(data))
	}

	return DecodedText{}, NewDecodingError(op, ErrNoEncoding, len(data))
}

// finish rejects documents that decode to nothing, e.g. a lone byte-order mark.
func (d *Decoder) finish(op, text string, enc Encoding, size int) (DecodedText, error) {
	if text == "" {
		return DecodedText{}, NewDecodingError(op, ErrEmptyDocument, size)
	}
	return DecodedText{Text: text, EncodingUsed: enc}, nil
}

func decodeWith(enc encoding.Encoding, data []byte) (string, bool) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil || !utf8.Valid(out) {
		return "", false
	}
	return string(out), true
}

// hasUndefinedWindows1252 reports bytes with no assignment in the Windows-1252 code page.
func hasUndefinedWindows1252(data []byte) bool {
	for _, b := range data {
		switch b {
		case 0x81, 0x8D, 0x8F, 0x90, 0x9D:
			return true
		}
	}
	return false
}
