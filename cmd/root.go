package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docextract/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "docextract",
	Short: "Extract dates, vendors, invoice numbers and totals from plain-text documents",
	Long: `docextract turns large batches of unstructured plain-text documents
(invoices, purchase orders, shipping notices) into one structured row per file:
a primary date, up to three labeled dates, a vendor guess, an invoice number,
the document total and the other amounts found, plus a text excerpt.

Extraction is heuristic and deterministic: the same text always produces the
same row. A document that cannot be read or decoded still gets a row with the
reason in the errors column.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits nonzero on failure.
func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
