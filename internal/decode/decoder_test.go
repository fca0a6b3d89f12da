package decode

import (
	"errors"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantText string
		wantEnc  Encoding
	}{
		{"plain ascii", []byte("Invoice 42"), "Invoice 42", UTF8},
		{"utf-8", []byte("Café Müller GmbH"), "Café Müller GmbH", UTF8},
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "Total: $5.00"...), "Total: $5.00", UTF8BOM},
		{"utf-16le bom", []byte{0xFF, 0xFE, 'H', 0x00, 'i', 0x00}, "Hi", UTF16LE},
		{"utf-16be bom", []byte{0xFE, 0xFF, 0x00, 'H', 0x00, 'i'}, "Hi", UTF16BE},
		{"windows-1252 euro and quotes", []byte{0x80, ' ', 0x93, 'x', 0x94}, "€ “x”", Windows1252},
		{"latin-1 fallback", []byte{'a', 0x81, 0xE9}, "a\u0081é", Latin1},
	}

	d := New(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tt.wantText)
			}
			if got.EncodingUsed != tt.wantEnc {
				t.Errorf("EncodingUsed = %s, want %s", got.EncodingUsed, tt.wantEnc)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		max     int
		data    []byte
		wantErr error
	}{
		{"empty", 0, nil, ErrEmptyDocument},
		{"bom only", 0, []byte{0xEF, 0xBB, 0xBF}, ErrEmptyDocument},
		{"nul byte", 0, []byte("abc\x00def"), ErrBinaryContent},
		{"too large", 4, []byte("12345"), ErrDocumentTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.max).Decode(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
			}
			var decErr *DecodingError
			if !errors.As(err, &decErr) {
				t.Fatalf("error %T is not a *DecodingError", err)
			}
			if decErr.Size != len(tt.data) {
				t.Errorf("Size = %d, want %d", decErr.Size, len(tt.data))
			}
		})
	}
}

func TestDecodeIsDeterministic(t *testing.T) {
	data := []byte("Rechnung f\xfcr M\xfcller")
	d := New(0)
	first, err := d.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		again, _ := d.Decode(data)
		if again != first {
			t.Fatalf("run %d = %+v, want %+v", i, again, first)
		}
	}
	if !strings.Contains(first.Text, "Müller") {
		t.Errorf("Text = %q, want Müller decoded", first.Text)
	}
}
