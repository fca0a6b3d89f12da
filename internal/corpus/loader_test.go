package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"docextract/internal/decode"
	"docextract/internal/logger"
)

func init() {
	logger.Silence()
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func names(t *testing.T, dir string, opts Options) []string {
	t.Helper()
	docs, err := Load(dir, opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	var out []string
	for _, d := range docs {
		out = append(out, d.Name)
	}
	return out
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.txt":       "second",
		"a.txt":       "first",
		"C.TXT":       "upper case extension",
		"notes.md":    "skipped",
		"sub/d.txt":   "nested",
		"sub/x/e.txt": "deeper",
	})

	if got, want := names(t, dir, Options{}), []string{"C.TXT", "a.txt", "b.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("flat = %v, want %v", got, want)
	}

	got := names(t, dir, Options{Recursive: true})
	want := []string{"C.TXT", "a.txt", "b.txt", "sub/d.txt", "sub/x/e.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("recursive = %v, want %v", got, want)
	}

	if got := names(t, dir, Options{Pattern: "*.md"}); !reflect.DeepEqual(got, []string{"notes.md"}) {
		t.Errorf("pattern = %v", got)
	}
}

func TestLoadOversized(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"big.txt": "0123456789", "small.txt": "01"})

	docs, err := Load(dir, Options{MaxBytes: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("len = %d, want 2", len(docs))
	}
	if !errors.Is(docs[0].LoadErr, decode.ErrDocumentTooLarge) || docs[0].Data != nil {
		t.Errorf("big.txt = %+v, want a size error", docs[0])
	}
	if docs[1].LoadErr != nil || string(docs[1].Data) != "01" {
		t.Errorf("small.txt = %+v", docs[1])
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing"), Options{}); err == nil {
		t.Error("Load() on a missing directory succeeded")
	}

	file := filepath.Join(t.TempDir(), "file.txt")
	writeFiles(t, filepath.Dir(file), map[string]string{"file.txt": "x"})
	if _, err := Load(file, Options{}); err == nil {
		t.Error("Load() on a file succeeded")
	}

	if _, err := Load(t.TempDir(), Options{Pattern: "[z"}); err == nil {
		t.Error("Load() with a bad pattern succeeded")
	}
}
