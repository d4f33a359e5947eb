package tasks

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/desertthunder/squash/internal/codec"
	"github.com/desertthunder/squash/internal/models"
	"github.com/desertthunder/squash/internal/shared"
)

// ResultAppender receives each batch's converted results in submission order.
type ResultAppender interface {
	AppendBatch(ctx context.Context, results []*models.ConversionResult) error
}

// BatchOpts tunes a [BatchConverter].
type BatchOpts struct {
	Workers      int         // Max concurrent conversions per batch; 0 or less is unbounded
	DispatchRate float64     // Conversions started per second; 0 disables throttling
	Logger       *log.Logger // Defaults to [shared.NewLogger] on stderr
}

// SkippedFile is an accepted input that failed to convert.
type SkippedFile struct {
	Name string
	Err  error
}

// BatchResult summarizes one [BatchConverter.ProcessFiles] call.
type BatchResult struct {
	ID        string
	Submitted int
	Rejected  []string                   // Names dropped for an unsupported MIME type
	Converted []*models.ConversionResult // Submission order
	Skipped   []SkippedFile              // Submission order
	Duration  time.Duration
}

// SavedBytes totals [models.ConversionResult.SavedBytes] across the converted files.
func (r *BatchResult) SavedBytes() int64 {
	var total int64
	for _, c := range r.Converted {
		total += c.SavedBytes()
	}
	return total
}

// BatchConverter fans a batch of inputs out to a [codec.Codec] and appends the results in input order.
type BatchConverter struct {
	codec   codec.Codec
	store   ResultAppender
	workers int
	limiter *rate.Limiter
	logger  *log.Logger
	pending atomic.Int64
}

// NewBatchConverter creates a converter that appends into store.
func NewBatchConverter(c codec.Codec, store ResultAppender, opts BatchOpts) *BatchConverter {
	b := &BatchConverter{
		codec:   c,
		store:   store,
		workers: opts.Workers,
		logger:  opts.Logger,
	}
	if b.logger == nil {
		b.logger = shared.NewLogger(nil)
	}
	if opts.DispatchRate > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(opts.DispatchRate), 1)
	}
	return b
}

// SetLogger replaces the logger used for subsequent batches.
func (b *BatchConverter) SetLogger(l *log.Logger) {
	if l != nil {
		b.logger = l
	}
}

// Converting reports whether any batch is still in flight.
func (b *BatchConverter) Converting() bool {
	return b.pending.Load() > 0
}

type outcome struct {
	result *models.ConversionResult
	err    error
}

// ProcessFiles converts a batch and appends the successes to the store as one contiguous block.
//
// Unsupported inputs are dropped and failed conversions are skipped; neither is returned as an error.
// The only error is a failure to append, in which case the returned [BatchResult] still describes the conversions.
func (b *BatchConverter) ProcessFiles(ctx context.Context, files []models.InputFile, progress chan<- ProgressUpdate) (*BatchResult, error) {
	b.pending.Add(1)
	defer b.pending.Add(-1)

	start := time.Now()
	result := &BatchResult{ID: shared.GenerateID()[:8], Submitted: len(files)}
	logger := shared.WithLogger(b.logger, "batch", result.ID)

	accepted := make([]models.InputFile, 0, len(files))
	for _, f := range files {
		if !codec.Accepts(f.MIMEType) {
			logger.Debug("dropped unsupported file", "name", f.Name, "type", f.MIMEType)
			result.Rejected = append(result.Rejected, f.Name)
			continue
		}
		accepted = append(accepted, f)
	}
	sendProgress(progress, filterUpdate(len(accepted), len(files)))

	if len(accepted) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	logger.Info("converting batch", "files", len(accepted), "rejected", len(result.Rejected))

	outcomes := b.convertAll(ctx, accepted, progress)

	for i, o := range outcomes {
		if o.err != nil {
			logger.Warn("skipped file", "name", accepted[i].Name, "error", o.err)
			result.Skipped = append(result.Skipped, SkippedFile{Name: accepted[i].Name, Err: o.err})
			continue
		}
		result.Converted = append(result.Converted, o.result)
	}

	if len(result.Converted) > 0 && b.store != nil {
		if err := b.store.AppendBatch(ctx, result.Converted); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("failed to append batch: %w", err)
		}
	}
	sendProgress(progress, appendUpdate(len(result.Converted), len(accepted)))

	result.Duration = time.Since(start)
	logger.Info("batch settled",
		"converted", len(result.Converted),
		"skipped", len(result.Skipped),
		"saved", shared.FormatSavedBytes(result.SavedBytes()),
		"duration", result.Duration)
	return result, nil
}

// convertAll returns one outcome per input, indexed by submission position.
func (b *BatchConverter) convertAll(ctx context.Context, files []models.InputFile, progress chan<- ProgressUpdate) []outcome {
	outcomes := make([]outcome, len(files))
	total := len(files)
	var done atomic.Int64

	// A failed file must not cancel its siblings, so the group carries no shared context.
	var g errgroup.Group
	if b.workers > 0 {
		g.SetLimit(b.workers)
	}

	for i, f := range files {
		if b.limiter != nil {
			if err := b.limiter.Wait(ctx); err != nil {
				for j := i; j < total; j++ {
					outcomes[j].err = fmt.Errorf("%s: dispatch cancelled: %w", files[j].Name, err)
				}
				break
			}
		}

		g.Go(func() error {
			res, err := ConvertFile(ctx, b.codec, f)
			outcomes[i] = outcome{result: res, err: err}

			step := int(done.Add(1))
			if err != nil {
				sendProgress(progress, skippedUpdate(step, total, f.Name, err))
			} else {
				sendProgress(progress, convertedUpdate(step, total, f.Name, res))
			}
			return nil
		})
	}

	// Workers record failures in outcomes and never return an error.
	_ = g.Wait()
	return outcomes
}
