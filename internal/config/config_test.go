package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"docextract/internal/output"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	return &Config{
		InputDir:         dir,
		FilePattern:      "*.txt",
		OutputFile:       filepath.Join(dir, "out", "extracted.csv"),
		MaxExcerptLength: 500,
		MinYear:          1990,
		MaxYear:          2025,
		BatchWorkers:     4,
		MaxFileSizeMB:    10,
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"INPUT_DIR", "OUTPUT_FILE", "MAX_EXCERPT_LENGTH", "MIN_YEAR", "MAX_YEAR", "BATCH_WORKERS", "MAX_FILE_SIZE_MB"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.InputDir != "data/input" || cfg.OutputFile != "data/output/extracted_data.csv" {
		t.Errorf("paths = %q, %q", cfg.InputDir, cfg.OutputFile)
	}
	if cfg.MaxExcerptLength != 500 || cfg.MinYear != 1990 || cfg.MaxYear != time.Now().Year()+1 {
		t.Errorf("numbers = %d %d %d", cfg.MaxExcerptLength, cfg.MinYear, cfg.MaxYear)
	}
	if cfg.BatchWorkers < 1 {
		t.Errorf("BatchWorkers = %d", cfg.BatchWorkers)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("BATCH_WORKERS", "many")

	_, err := Load()

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "BATCH_WORKERS" {
		t.Fatalf("Load() error = %v, want BATCH_WORKERS ConfigurationError", err)
	}
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Error("error does not match ErrInvalidConfiguration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantKey string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero excerpt", func(c *Config) { c.MaxExcerptLength = 0 }, "MAX_EXCERPT_LENGTH"},
		{"zero workers", func(c *Config) { c.BatchWorkers = 0 }, "BATCH_WORKERS"},
		{"year window", func(c *Config) { c.MinYear = 2030 }, "MIN_YEAR"},
		{"format", func(c *Config) { c.OutputFormat = "pdf" }, "OUTPUT_FORMAT"},
		{"pattern", func(c *Config) { c.FilePattern = "[" }, "FILE_PATTERN"},
		{"missing input", func(c *Config) { c.InputDir = filepath.Join(c.InputDir, "nope") }, "INPUT_DIR"},
		{"unwritable output", func(c *Config) {
			blocker := filepath.Join(c.InputDir, "blocker")
			_ = os.WriteFile(blocker, nil, 0o644)
			c.OutputFile = filepath.Join(blocker, "out.csv")
		}, "OUTPUT_FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantKey == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error = %v, want *ConfigurationError", err)
			}
			if cfgErr.Key != tt.wantKey {
				t.Errorf("Key = %s, want %s", cfgErr.Key, tt.wantKey)
			}
		})
	}
}

func TestValidateCreatesNothing(t *testing.T) {
	cfg := validConfig(t)
	outDir := filepath.Join(cfg.InputDir, "new", "nested")
	cfg.OutputFile = filepath.Join(outDir, "extracted.csv")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.InputDir, "new")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Validate() created the output directory: %v", err)
	}
	entries, err := os.ReadDir(cfg.InputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Validate() left %d entries behind", len(entries))
	}
}

func TestValidateExtraction(t *testing.T) {
	cfg := &Config{MaxExcerptLength: -1, MinYear: 1990, MaxYear: 2025, InputDir: "does-not-matter"}

	var cfgErr *ConfigurationError
	if err := cfg.ValidateExtraction(); !errors.As(err, &cfgErr) || cfgErr.Key != "MAX_EXCERPT_LENGTH" {
		t.Errorf("ValidateExtraction() error = %v, want MAX_EXCERPT_LENGTH", err)
	}

	cfg.MaxExcerptLength = 10
	if err := cfg.ValidateExtraction(); err != nil {
		t.Errorf("ValidateExtraction() error = %v", err)
	}
}

func TestFormat(t *testing.T) {
	cfg := &Config{OutputFile: "report.XLSX"}
	if f, _ := cfg.Format(); f != output.FormatXLSX {
		t.Errorf("Format() = %s, want xlsx from extension", f)
	}
	cfg.OutputFormat = "csv"
	if f, _ := cfg.Format(); f != output.FormatCSV {
		t.Errorf("Format() = %s, want explicit csv", f)
	}
}

func TestExtractOptions(t *testing.T) {
	cfg := validConfig(t)
	cfg.MinYear, cfg.MaxYear = 2000, 2010
	tuning := filepath.Join(cfg.InputDir, "tuning.toml")
	if err := os.WriteFile(tuning, []byte("[invoice]\nwindow_after = 60\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.TuningFile = tuning

	opts, err := cfg.ExtractOptions(time.Now())
	if err != nil {
		t.Fatalf("ExtractOptions() error = %v", err)
	}
	if opts.Dates.MinYear != 2000 || opts.Dates.MaxYear != 2010 {
		t.Errorf("year window = %d..%d", opts.Dates.MinYear, opts.Dates.MaxYear)
	}
	if opts.Invoice.WindowAfter != 60 {
		t.Errorf("WindowAfter = %d, want 60", opts.Invoice.WindowAfter)
	}

	cfg.TuningFile = filepath.Join(cfg.InputDir, "missing.toml")
	if _, err := cfg.ExtractOptions(time.Now()); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("missing tuning file error = %v", err)
	}
}
