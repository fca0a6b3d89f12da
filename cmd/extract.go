package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"docextract/internal/batch"
	"docextract/internal/config"
	"docextract/internal/corpus"
	"docextract/internal/logger"
	"docextract/internal/output"
	"docextract/internal/sheets"
	"docextract/pkg/models"
)

var extractCmd = &cobra.Command{
	Use:   "extract [input-dir]",
	Short: "Extract structured records from every text document in a folder",
	Long: `Process all text documents in a folder and write one row per document
to a CSV or XLSX file, optionally also appending the rows to a Google Sheet.

Documents are processed in parallel; the output keeps the sorted input order.
A document that cannot be read or decoded still produces a row whose errors
column explains why. Ctrl-C stops submitting new documents, lets the running
ones finish, writes the output and exits nonzero.

Environment variables (flags take precedence):
  INPUT_DIR            - Input folder (default: data/input)
  OUTPUT_FILE          - Output file (default: data/output/extracted_data.csv)
  OUTPUT_FORMAT        - csv or xlsx (default: from the output file extension)
  FILE_PATTERN         - Glob for input files (default: *.txt)
  MAX_EXCERPT_LENGTH   - Excerpt length in characters (default: 500)
  MIN_YEAR, MAX_YEAR   - Plausible year window for dates (default: 1990..next year)
  BATCH_WORKERS        - Number of parallel workers (default: CPU count)
  MAX_FILE_SIZE_MB     - Larger files get an error row (default: 10)
  EXTRACT_TUNING_FILE  - TOML file overriding heuristic windows, weights and keywords
  GOOGLE_SHEET_URL     - Also append rows to this Google Sheet
  GOOGLE_SHEET_WORKSHEET - Worksheet name (default: Extracted)`,
	Example: `  # Process data/input into data/output/extracted_data.csv
  docextract extract

  # Process a folder tree into an Excel workbook
  docextract extract ./scans --recursive -o results.xlsx

  # Limit workers and widen the excerpt
  docextract extract ./docs --workers 4 --excerpt 1000

  # Also append rows to a Google Sheet
  docextract extract ./docs --sheet-url https://docs.google.com/spreadsheets/d/<id>/edit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "Output file path")
	extractCmd.Flags().String("format", "", "Output format: csv or xlsx")
	extractCmd.Flags().String("pattern", "", "Glob matched against file names")
	extractCmd.Flags().Bool("recursive", false, "Include subdirectories")
	extractCmd.Flags().Int("workers", 0, "Number of parallel workers")
	extractCmd.Flags().Int("excerpt", 0, "Maximum excerpt length in characters")
	extractCmd.Flags().Int("min-year", 0, "Earliest plausible year for dates")
	extractCmd.Flags().Int("max-year", 0, "Latest plausible year for dates")
	extractCmd.Flags().String("tuning", "", "TOML file with extraction tuning")
	extractCmd.Flags().String("sheet-url", "", "Google Sheet to append the rows to")
	extractCmd.Flags().String("sheet-worksheet", "", "Worksheet for --sheet-url")
	extractCmd.Flags().BoolP("quiet", "q", false, "Only print the summary")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyExtractFlags(cmd, args, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	format, _ := cfg.Format()
	quiet, _ := cmd.Flags().GetBool("quiet")

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	writer, err := output.New(format, cfg.OutputFile)
	if err != nil {
		return config.WrapConfigurationError("OUTPUT_FORMAT", err)
	}

	log.Info().
		Str("input", cfg.InputDir).
		Str("output", cfg.OutputFile).
		Str("format", string(format)).
		Int("workers", cfg.BatchWorkers).
		Bool("recursive", cfg.Recursive).
		Msg("Starting extraction")

	docs, err := corpus.Load(cfg.InputDir, corpus.Options{
		Pattern:   cfg.FilePattern,
		Recursive: cfg.Recursive,
		MaxBytes:  cfg.MaxFileBytes(),
	})
	if err != nil {
		return config.WrapConfigurationError("INPUT_DIR", err)
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("                         DOCUMENT EXTRACTION")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Input:  %s\n", cfg.InputDir)
	fmt.Printf("Output: %s (%s)\n", cfg.OutputFile, format)
	fmt.Printf("Processing %d documents with %d parallel workers...\n", len(docs), cfg.BatchWorkers)
	fmt.Println()

	ctx, cancel := createRunContext(log)
	defer cancel()

	var progress batch.ProgressFunc
	if !quiet {
		progress = printProgress
	}

	result, runErr := p.runner.Run(ctx, docs, progress)
	if runErr != nil && !errors.Is(runErr, batch.ErrInterrupted) {
		return runErr
	}

	if err := writer.Write(result); err != nil {
		return err
	}
	if cfg.GoogleSheetURL != "" {
		if err := writeSheet(ctx, cfg, result, log); err != nil {
			return err
		}
	}

	printSummary(result, cfg.OutputFile)

	log.Info().
		Str("run_id", result.RunID).
		Int("total", len(result.Records)).
		Int("processed", result.Processed).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("Extraction completed")

	return runErr
}

// applyExtractFlags overrides environment settings with explicitly set flags.
func applyExtractFlags(cmd *cobra.Command, args []string, cfg *config.Config) {
	if len(args) == 1 {
		cfg.InputDir = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.OutputFile, _ = flags.GetString("output")
	}
	if flags.Changed("format") {
		cfg.OutputFormat, _ = flags.GetString("format")
	}
	if flags.Changed("pattern") {
		cfg.FilePattern, _ = flags.GetString("pattern")
	}
	if flags.Changed("recursive") {
		cfg.Recursive, _ = flags.GetBool("recursive")
	}
	if flags.Changed("workers") {
		cfg.BatchWorkers, _ = flags.GetInt("workers")
	}
	if flags.Changed("excerpt") {
		cfg.MaxExcerptLength, _ = flags.GetInt("excerpt")
	}
	if flags.Changed("min-year") {
		cfg.MinYear, _ = flags.GetInt("min-year")
	}
	if flags.Changed("max-year") {
		cfg.MaxYear, _ = flags.GetInt("max-year")
	}
	if flags.Changed("tuning") {
		cfg.TuningFile, _ = flags.GetString("tuning")
	}
	if flags.Changed("sheet-url") {
		cfg.GoogleSheetURL, _ = flags.GetString("sheet-url")
	}
	if flags.Changed("sheet-worksheet") {
		cfg.GoogleSheetWorksheet, _ = flags.GetString("sheet-worksheet")
	}
}

// printProgress prints "[n/total] file - status".
func printProgress(pr batch.Progress) {
	status := "✅"
	if pr.Failed {
		status = "❌"
	} else if pr.Err != "" {
		status = "⚠️"
	}
	fmt.Printf("[%d/%d] %s - %s", pr.Done, pr.Total, pr.Filename, status)
	if pr.Err != "" {
		fmt.Printf(" (%s)", pr.Err)
	}
	fmt.Println()
}

func writeSheet(ctx context.Context, cfg *config.Config, result *models.BatchResult, log zerolog.Logger) error {
	fmt.Println("Writing rows to Google Sheet...")

	// A cancelled run still publishes what it has
	ctx = context.WithoutCancel(ctx)

	svc, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
	if err != nil {
		return output.NewWriteError("sheets.NewSheetsService", cfg.GoogleSheetURL, err)
	}
	if err := svc.WriteRecords(ctx, result, cfg.GoogleSheetWorksheet); err != nil {
		return err
	}

	log.Info().
		Str("sheet", cfg.GoogleSheetWorksheet).
		Int("rows", len(result.Records)).
		Msg("Rows appended to Google Sheet")
	fmt.Printf("Sheet: %s\n", cfg.GoogleSheetWorksheet)
	fmt.Printf("URL: %s\n", cfg.GoogleSheetURL)
	return nil
}

func printSummary(result *models.BatchResult, outputFile string) {
	withFieldErrors := 0
	for i := range result.Records {
		if result.Records[i].HasErrors() {
			withFieldErrors++
		}
	}
	withFieldErrors -= result.Failed

	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("                 SUMMARY")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Processed: %d\n", result.Processed)
	if withFieldErrors > 0 {
		fmt.Printf("With field errors: %d\n", withFieldErrors)
	}
	if result.Failed > 0 {
		fmt.Printf("Failed: %d\n", result.Failed)
	}
	fmt.Printf("Duration: %s\n", result.Duration.Round(time.Millisecond))
	fmt.Printf("Output: %s\n", outputFile)
	fmt.Println(strings.Repeat("=", 80))
}
