// Package corpus collects the input documents of a run from a directory.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"docextract/internal/decode"
	"docextract/internal/logger"
	"docextract/pkg/models"
)

// Options controls which files are loaded.
type Options struct {
	Pattern   string // Glob matched against the base name, e.g. "*.txt"
	Recursive bool   // Descend into subdirectories
	MaxBytes  int64  // Files larger than this get a load error instead of data (0 disables)
}

// Load returns the documents under dir in lexical path order. Unreadable or
// oversized files are returned with LoadErr set so they still get a record.
func Load(dir string, opts Options) ([]models.SourceDocument, error) {
	log := logger.WithComponent("corpus")

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("input directory not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	pattern := opts.Pattern
	if pattern == "" {
		pattern = "*.txt"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if ok, _ := filepath.Match(strings.ToLower(pattern), strings.ToLower(d.Name())); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}
	sort.Strings(paths)

	docs := make([]models.SourceDocument, 0, len(paths))
	for _, path := range paths {
		doc := models.SourceDocument{Name: displayName(dir, path, opts.Recursive), Path: path}
		doc.Data, doc.LoadErr = readFile(path, opts.MaxBytes)
		if doc.LoadErr != nil {
			log.Warn().
				Str("file", path).
				Err(doc.LoadErr).
				Msg("Could not load document")
		}
		docs = append(docs, doc)
	}

	log.Info().
		Str("dir", dir).
		Str("pattern", pattern).
		Int("documents", len(docs)).
		Msg("Loaded input corpus")

	return docs, nil
}

func readFile(path string, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat file: %w", err)
		}
		if info.Size() > maxBytes {
			return nil, fmt.Errorf("%w (%d > %d bytes)", decode.ErrDocumentTooLarge, info.Size(), maxBytes)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// displayName is the base name, or the slash-separated relative path for
// recursive runs so that equal names in different folders stay distinct.
func displayName(dir, path string, recursive bool) string {
	if !recursive {
		return filepath.Base(path)
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}
