package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"docextract/internal/batch"
	"docextract/internal/config"
	"docextract/internal/decode"
	"docextract/internal/extract"
	"docextract/internal/record"
)

// pipeline is everything needed to turn documents into records.
type pipeline struct {
	extractors *extract.Set
	assembler  *record.Assembler
	decoder    *decode.Decoder
	runner     *batch.Runner
}

// newPipeline wires decoder, extractors, assembler and runner from cfg.
func newPipeline(cfg *config.Config) (*pipeline, error) {
	opts, err := cfg.ExtractOptions(time.Now())
	if err != nil {
		return nil, err
	}

	extractors := extract.New(opts)
	assembler := record.NewAssembler(extractors)
	decoder := decode.New(int(cfg.MaxFileBytes()))
	runner := batch.NewRunner(decoder, assembler, batch.Config{
		Workers: cfg.BatchWorkers,
		Record:  record.Config{MaxExcerptLength: cfg.MaxExcerptLength},
	})

	return &pipeline{
		extractors: extractors,
		assembler:  assembler,
		decoder:    decoder,
		runner:     runner,
	}, nil
}

// createRunContext returns a context cancelled on SIGINT or SIGTERM. The
// runner stops submitting documents once it is cancelled.
func createRunContext(log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, finishing in-flight documents")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}
