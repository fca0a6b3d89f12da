// Package batch runs decoding and extraction over a document corpus with a
// bounded worker pool, keeping output records in input order.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docextract/internal/decode"
	"docextract/internal/logger"
	"docextract/internal/record"
	"docextract/pkg/models"
)

var (
	// ErrInterrupted is returned when the run context was cancelled before every
	// document was submitted.
	ErrInterrupted = errors.New("batch interrupted")

	// ErrDocumentPanic marks a document whose processing panicked.
	ErrDocumentPanic = errors.New("document processing panicked")
)

// Config holds the batch settings.
type Config struct {
	Workers int           // Concurrent documents; defaults to the number of CPUs
	Record  record.Config // Passed to the assembler for every document
}

// Progress describes one completed document.
type Progress struct {
	Done     int // Documents completed so far, monotonically increasing
	Total    int
	Filename string
	Failed   bool
	Err      string // First error entry of the record, if any
}

// ProgressFunc receives a call after every completed document. Calls are
// serialized; Done never decreases.
type ProgressFunc func(Progress)

// Runner decodes and extracts a list of documents.
type Runner struct {
	decoder   *decode.Decoder
	assembler *record.Assembler
	cfg       Config
}

// NewRunner creates a runner. Workers below 1 fall back to the CPU count.
func NewRunner(decoder *decode.Decoder, assembler *record.Assembler, cfg Config) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Runner{decoder: decoder, assembler: assembler, cfg: cfg}
}

// Run processes docs and returns one record per document in input order.
//
// No document failure stops the run. When ctx is cancelled, documents already
// being processed finish, the rest get an error-only record, and the returned
// error wraps ErrInterrupted. The result is complete in both cases.
func (r *Runner) Run(ctx context.Context, docs []models.SourceDocument, progress ProgressFunc) (*models.BatchResult, error) {
	started := time.Now()
	runID := uuid.NewString()
	log := logger.WithRunID(logger.WithComponent("batch"), runID)

	log.Info().
		Int("documents", len(docs)).
		Int("workers", r.cfg.Workers).
		Msg("Starting batch")

	records := make([]models.ExtractionRecord, len(docs))
	failed := make([]bool, len(docs))

	// Progress tracking
	var mu sync.Mutex
	var done int

	g := new(errgroup.Group)
	g.SetLimit(r.cfg.Workers)

	submitted := 0
	for i := range docs {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			rec, isFailed := r.process(docs[i])

			// Store result in correct position
			records[i] = rec
			failed[i] = isFailed

			mu.Lock()
			done++
			report(progress, Progress{
				Done:     done,
				Total:    len(docs),
				Filename: rec.Filename,
				Failed:   isFailed,
				Err:      firstError(rec),
			})
			mu.Unlock()

			if isFailed {
				fileLog := logger.WithFile(log, rec.Filename)
				fileLog.Warn().
					Str("error", firstError(rec)).
					Msg("Document failed")
			}
			return nil
		})
		submitted++
	}
	_ = g.Wait()

	var runErr error
	if submitted < len(docs) {
		cause := context.Cause(ctx)
		for i := submitted; i < len(docs); i++ {
			records[i] = record.FailedRecord(docs[i].Name, fmt.Errorf("%w: %v", ErrInterrupted, cause))
			failed[i] = true
		}
		runErr = fmt.Errorf("%w after %d of %d documents: %v", ErrInterrupted, submitted, len(docs), cause)
	}

	result := &models.BatchResult{
		RunID:    runID,
		Records:  records,
		Duration: time.Since(started),
	}
	for _, f := range failed {
		if f {
			result.Failed++
		} else {
			result.Processed++
		}
	}

	log.Info().
		Int("processed", result.Processed).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Bool("interrupted", runErr != nil).
		Msg("Batch completed")

	return result, runErr
}

// process turns one document into its record. The bool reports a file-level
// failure, where only the filename and the error are set.
func (r *Runner) process(doc models.SourceDocument) (rec models.ExtractionRecord, isFailed bool) {
	defer func() {
		if p := recover(); p != nil {
			rec = record.FailedRecord(doc.Name, fmt.Errorf("%w: %v", ErrDocumentPanic, p))
			isFailed = true
		}
	}()

	if doc.LoadErr != nil {
		return record.FailedRecord(doc.Name, doc.LoadErr), true
	}

	decoded, err := r.decoder.Decode(doc.Data)
	if err != nil {
		return record.FailedRecord(doc.Name, err), true
	}

	batchLog := logger.WithComponent("batch")
	batchLog.Debug().
		Str("file", doc.Name).
		Str("encoding", string(decoded.EncodingUsed)).
		Msg("Decoded document")

	return r.assembler.Assemble(doc.Name, decoded.Text, r.cfg.Record), false
}

func report(progress ProgressFunc, p Progress) {
	if progress != nil {
		progress(p)
	}
}

func firstError(rec models.ExtractionRecord) string {
	if len(rec.Errors) == 0 {
		return ""
	}
	return rec.Errors[0]
}
