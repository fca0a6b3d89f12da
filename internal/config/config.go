package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"docextract/internal/extract"
	"docextract/internal/logger"
	"docextract/internal/output"
)

// ErrInvalidConfiguration is matched by every ConfigurationError.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ConfigurationError reports a setting that prevents the run from starting.
type ConfigurationError struct {
	// Key is the environment variable or flag at fault.
	Key string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is matches ErrInvalidConfiguration as well as the wrapped error.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration || errors.Is(e.Err, target)
}

// WrapConfigurationError wraps err for key unless it already is a ConfigurationError.
func WrapConfigurationError(key string, err error) error {
	if err == nil {
		return nil
	}
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return err
	}
	return &ConfigurationError{Key: key, Err: err}
}

type Config struct {
	// Input corpus
	InputDir      string
	FilePattern   string
	Recursive     bool
	MaxFileSizeMB int

	// Output
	OutputFile   string
	OutputFormat string

	// Extraction
	MaxExcerptLength int
	MinYear          int
	MaxYear          int
	BatchWorkers     int
	TuningFile       string

	// Google Sheets Configuration
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads the configuration from the environment. Only malformed numbers
// fail here; Validate checks the values once flags have been applied.
func Load() (*Config, error) {
	config := &Config{
		InputDir:             getEnv("INPUT_DIR", "data/input"),
		FilePattern:          getEnv("FILE_PATTERN", "*.txt"),
		OutputFile:           getEnv("OUTPUT_FILE", "data/output/extracted_data.csv"),
		OutputFormat:         getEnv("OUTPUT_FORMAT", ""),
		TuningFile:           getEnv("EXTRACT_TUNING_FILE", ""),
		GoogleSheetURL:       getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet: getEnv("GOOGLE_SHEET_WORKSHEET", "Extracted"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:        getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:            getEnv("LOG_OUTPUT", "stderr"),
	}

	ints := []struct {
		key    string
		def    int
		target *int
	}{
		{"MAX_EXCERPT_LENGTH", 500, &config.MaxExcerptLength},
		{"MIN_YEAR", 1990, &config.MinYear},
		{"MAX_YEAR", time.Now().Year() + 1, &config.MaxYear},
		{"BATCH_WORKERS", runtime.NumCPU(), &config.BatchWorkers},
		{"MAX_FILE_SIZE_MB", 10, &config.MaxFileSizeMB},
	}
	for _, v := range ints {
		n, err := getEnvInt(v.key, v.def)
		if err != nil {
			return nil, err
		}
		*v.target = n
	}

	return config, nil
}

// ValidateExtraction checks the settings that shape a single record.
func (c *Config) ValidateExtraction() error {
	if c.MaxExcerptLength < 1 {
		return &ConfigurationError{Key: "MAX_EXCERPT_LENGTH", Err: fmt.Errorf("must be positive, got %d", c.MaxExcerptLength)}
	}
	if c.MinYear > c.MaxYear {
		return &ConfigurationError{Key: "MIN_YEAR", Err: fmt.Errorf("%d is after MAX_YEAR %d", c.MinYear, c.MaxYear)}
	}
	return nil
}

// Validate rejects settings a batch run cannot start with. Every error is a
// ConfigurationError. It creates nothing on disk; a missing output directory
// is checked through its nearest existing parent.
func (c *Config) Validate() error {
	if err := c.ValidateExtraction(); err != nil {
		return err
	}
	if c.BatchWorkers < 1 {
		return &ConfigurationError{Key: "BATCH_WORKERS", Err: fmt.Errorf("must be positive, got %d", c.BatchWorkers)}
	}
	if c.MaxFileSizeMB < 0 {
		return &ConfigurationError{Key: "MAX_FILE_SIZE_MB", Err: fmt.Errorf("must not be negative, got %d", c.MaxFileSizeMB)}
	}
	if _, err := c.Format(); err != nil {
		return &ConfigurationError{Key: "OUTPUT_FORMAT", Err: err}
	}
	if _, err := filepath.Match(c.FilePattern, ""); err != nil {
		return &ConfigurationError{Key: "FILE_PATTERN", Err: err}
	}

	info, err := os.Stat(c.InputDir)
	if err != nil {
		return &ConfigurationError{Key: "INPUT_DIR", Err: err}
	}
	if !info.IsDir() {
		return &ConfigurationError{Key: "INPUT_DIR", Err: fmt.Errorf("%s is not a directory", c.InputDir)}
	}

	if c.OutputFile == "" {
		return &ConfigurationError{Key: "OUTPUT_FILE", Err: errors.New("must not be empty")}
	}
	if err := checkWritableDir(filepath.Dir(c.OutputFile)); err != nil {
		return &ConfigurationError{Key: "OUTPUT_FILE", Err: err}
	}

	return nil
}

// Format returns the output format, inferred from the output file extension
// when OutputFormat is empty.
func (c *Config) Format() (output.Format, error) {
	if c.OutputFormat != "" {
		return output.ParseFormat(c.OutputFormat)
	}
	if strings.EqualFold(filepath.Ext(c.OutputFile), ".xlsx") {
		return output.FormatXLSX, nil
	}
	return output.FormatCSV, nil
}

// ExtractOptions returns the extraction tuning: built-in defaults, overlaid by
// the tuning file when set, with the year window from this configuration.
func (c *Config) ExtractOptions(now time.Time) (extract.Options, error) {
	opts := extract.DefaultOptions(now)
	if c.TuningFile != "" {
		var err error
		opts, err = extract.LoadOptions(c.TuningFile, opts)
		if err != nil {
			return opts, &ConfigurationError{Key: "EXTRACT_TUNING_FILE", Err: err}
		}
	}
	opts.Dates.MinYear = c.MinYear
	opts.Dates.MaxYear = c.MaxYear
	if err := opts.Validate(); err != nil {
		return opts, &ConfigurationError{Key: "EXTRACT_TUNING_FILE", Err: err}
	}
	return opts, nil
}

// MaxFileBytes is the per-file size limit in bytes; 0 means unlimited.
func (c *Config) MaxFileBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// checkWritableDir probes the nearest existing ancestor of dir with a temp file.
func checkWritableDir(dir string) error {
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}
			break
		}
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("cannot access output directory: %w", err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return fmt.Errorf("no existing parent directory: %w", err)
		}
		dir = parent
	}

	probe, err := os.CreateTemp(dir, ".docextract-probe-*")
	if err != nil {
		return fmt.Errorf("output directory is not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &ConfigurationError{Key: key, Err: fmt.Errorf("not an integer: %q", value)}
	}
	return n, nil
}
