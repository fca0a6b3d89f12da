package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"docextract/internal/config"
	"docextract/internal/logger"
	"docextract/internal/output"
	"docextract/internal/record"
	"docextract/pkg/models"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [text-file]",
	Short: "Show every candidate the extractors find in one document",
	Long: `Run the extraction pipeline on a single file and print the result as JSON.

Besides the output row, the JSON lists every date candidate with its label,
the vendor score and every amount with its total flag. Use it to check how
a tuning file changes the heuristics before running a whole batch.`,
	Example: `  # Inspect one document
  docextract inspect data/input/invoice-0042.txt

  # Inspect with a tuning file and save the JSON
  docextract inspect invoice.txt --tuning tuning.toml -o invoice.json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

// InspectOutput represents the JSON output structure of the inspect command
type InspectOutput struct {
	// Row is the record as it would appear in the output file, keyed by column
	Row map[string]string `json:"row"`

	// Candidates lists what each extractor considered
	Candidates CandidateData `json:"candidates"`

	// Metadata contains processing information
	Metadata InspectMetadata `json:"metadata"`
}

// CandidateData holds the unfiltered extractor results
type CandidateData struct {
	Dates   []DateData   `json:"dates"`
	Vendor  *VendorData  `json:"vendor,omitempty"`
	Amounts []AmountData `json:"amounts"`
}

type DateData struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Raw     string `json:"raw"`
	Offset  int    `json:"offset"`
	Context string `json:"context"`
}

type VendorData struct {
	Text   string `json:"text"`
	Score  int    `json:"score"`
	Offset int    `json:"offset"`
}

type AmountData struct {
	Value         string `json:"value"`
	Raw           string `json:"raw"`
	Offset        int    `json:"offset"`
	IsTotalSignal bool   `json:"is_total_signal"`
}

// InspectMetadata contains information about the inspected file
type InspectMetadata struct {
	FileName           string        `json:"file_name"`
	FileSize           int64         `json:"file_size_bytes"`
	Encoding           string        `json:"encoding,omitempty"`
	ProcessedAt        time.Time     `json:"processed_at"`
	ProcessingDuration time.Duration `json:"processing_duration"`
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	inspectCmd.Flags().String("tuning", "", "TOML file with extraction tuning")
	inspectCmd.Flags().Int("excerpt", 0, "Maximum excerpt length in characters")
}

func runInspect(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("inspect")

	path := args[0]
	outputPath, _ := cmd.Flags().GetString("output")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("tuning") {
		cfg.TuningFile, _ = cmd.Flags().GetString("tuning")
	}
	if cmd.Flags().Changed("excerpt") {
		cfg.MaxExcerptLength, _ = cmd.Flags().GetInt("excerpt")
	}
	if err := cfg.ValidateExtraction(); err != nil {
		return err
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot inspect %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	log.Info().
		Str("file", path).
		Int64("size", info.Size()).
		Msg("Inspecting document")

	started := time.Now()
	name := filepath.Base(path)
	out := InspectOutput{
		Candidates: CandidateData{Dates: []DateData{}, Amounts: []AmountData{}},
		Metadata: InspectMetadata{
			FileName: name,
			FileSize: info.Size(),
		},
	}

	var rec models.ExtractionRecord
	decoded, err := p.decoder.Decode(data)
	if err != nil {
		rec = record.FailedRecord(name, err)
	} else {
		out.Metadata.Encoding = string(decoded.EncodingUsed)
		rec = p.assembler.Assemble(name, decoded.Text, record.Config{MaxExcerptLength: cfg.MaxExcerptLength})
		out.Candidates = collectCandidates(p, decoded.Text)
	}

	out.Row = rowMap(rec)
	out.Metadata.ProcessedAt = time.Now()
	out.Metadata.ProcessingDuration = time.Since(started)

	return writeInspectOutput(out, outputPath, log)
}

// collectCandidates reruns the extractors to expose their intermediate results.
func collectCandidates(p *pipeline, text string) CandidateData {
	data := CandidateData{Dates: []DateData{}, Amounts: []AmountData{}}

	for _, c := range p.extractors.Dates.Extract(text).Candidates {
		data.Dates = append(data.Dates, DateData{
			Value:   c.Value.Format(models.DateLayout),
			Label:   string(c.Label),
			Raw:     c.RawSnippet,
			Offset:  c.Offset,
			Context: c.Context,
		})
	}

	if v, ok := p.extractors.Vendor.Extract(text); ok {
		data.Vendor = &VendorData{Text: v.Text, Score: v.Score, Offset: v.Offset}
	}

	for _, c := range p.extractors.Currency.Extract(text).Candidates {
		data.Amounts = append(data.Amounts, AmountData{
			Value:         c.Value.String(),
			Raw:           c.RawText,
			Offset:        c.Offset,
			IsTotalSignal: c.IsTotalSignal,
		})
	}

	return data
}

func rowMap(rec models.ExtractionRecord) map[string]string {
	row := output.Row(rec)
	m := make(map[string]string, len(row))
	for i, col := range output.Columns {
		m[col] = row[i]
	}
	return m
}

// writeInspectOutput writes the JSON to outputPath, or stdout when empty
func writeInspectOutput(out InspectOutput, outputPath string, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal inspection to JSON")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0o644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return output.NewWriteError("inspect", outputPath, err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Inspection written to file")
		return nil
	}

	if _, err := os.Stdout.Write(jsonData); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Println()
	return nil
}
