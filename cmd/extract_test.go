package cmd

import (
	"testing"

	"github.com/spf13/cobra"

	"docextract/internal/batch"
	"docextract/internal/config"
)

func newExtractFlags(t *testing.T) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "extract"}
	c.Flags().StringP("output", "o", "", "")
	c.Flags().String("format", "", "")
	c.Flags().String("pattern", "", "")
	c.Flags().Bool("recursive", false, "")
	c.Flags().Int("workers", 0, "")
	c.Flags().Int("excerpt", 0, "")
	c.Flags().Int("min-year", 0, "")
	c.Flags().Int("max-year", 0, "")
	c.Flags().String("tuning", "", "")
	c.Flags().String("sheet-url", "", "")
	c.Flags().String("sheet-worksheet", "", "")
	return c
}

func TestApplyExtractFlags(t *testing.T) {
	c := newExtractFlags(t)
	if err := c.Flags().Parse([]string{"-o", "out.xlsx", "--workers", "3", "--recursive"}); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		InputDir:         "data/input",
		OutputFile:       "data/output/extracted_data.csv",
		FilePattern:      "*.txt",
		BatchWorkers:     8,
		MaxExcerptLength: 500,
		MinYear:          1990,
		MaxYear:          2025,
	}
	applyExtractFlags(c, []string{"scans"}, cfg)

	if cfg.InputDir != "scans" || cfg.OutputFile != "out.xlsx" {
		t.Errorf("paths = %s, %s", cfg.InputDir, cfg.OutputFile)
	}
	if cfg.BatchWorkers != 3 || !cfg.Recursive {
		t.Errorf("workers = %d, recursive = %v", cfg.BatchWorkers, cfg.Recursive)
	}
	// Unset flags keep the environment values
	if cfg.MaxExcerptLength != 500 || cfg.MinYear != 1990 || cfg.FilePattern != "*.txt" {
		t.Errorf("unset flags overrode config: %+v", cfg)
	}
	if f, _ := cfg.Format(); f != "xlsx" {
		t.Errorf("Format() = %s, want xlsx", f)
	}
}

func Example_printProgress() {
	printProgress(batch.Progress{Done: 1, Total: 3, Filename: "a.txt"})
	printProgress(batch.Progress{Done: 2, Total: 3, Filename: "b.txt", Err: "dates: none"})
	printProgress(batch.Progress{Done: 3, Total: 3, Filename: "c.txt", Failed: true, Err: "document: empty"})
	// Output:
	// [1/3] a.txt - ✅
	// [2/3] b.txt - ⚠️ (dates: none)
	// [3/3] c.txt - ❌ (document: empty)
}
