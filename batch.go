package ligatag

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"crosswarped.com/ligatag/internal"
)

// ErrCancelled is returned by ProcessBatch when its context is cancelled before the batch
// completes. It is not a failure: hosts should not report it as one.
var ErrCancelled = errors.New("batch cancelled")

// IsCancelled reports whether err is the cancellation outcome of a batch.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// BatchState is the lifecycle of a single batch.
type BatchState int

const (
	BatchIdle BatchState = iota
	BatchRunning
	BatchCompleted
	BatchCancelled
)

func (s BatchState) String() string {
	switch s {
	case BatchIdle:
		return "idle"
	case BatchRunning:
		return "running"
	case BatchCompleted:
		return "completed"
	case BatchCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("BatchState(%d)", int(s))
	}
}

// ProgressFunc receives the share of words processed so far, in percent.
type ProgressFunc func(percent int)

type BatchParams struct {
	// ChunkSize is the number of words between two yield points. Defaults to 10,000.
	ChunkSize int
	// MaxCodepoints is the longest candidate kept. Defaults to MaxCharsInTag.
	MaxCodepoints int
	// Workers enumerates the words of a chunk concurrently when greater than one.
	Workers int
}

// Job is one invocation of the batch processor.
type Job struct {
	Words      []string
	Rules      Rules
	Mode       CaseMode
	OnProgress ProgressFunc
	Params     BatchParams
}

type batch struct {
	job    Job
	params internal.BatchParams
	state  BatchState

	// processed counts words whose candidates are complete.
	processed atomic.Int64

	// One aggregator per worker; casers cannot be shared.
	aggs []*aggregator
}

func newBatch(job Job) *batch {
	params := internal.ResolveBatchParams(internal.BatchParams(job.Params))

	aggs := make([]*aggregator, params.Workers)
	for i := range aggs {
		aggs[i] = newAggregator(job.Mode)
	}
	return &batch{job: job, params: params, aggs: aggs}
}

// ProcessBatch enumerates every word of job.Words, keeps the candidates of at most
// MaxCodepoints codepoints, and returns them concatenated in word order. Candidates of one word
// are sorted; duplicates across words are kept.
//
// Every ChunkSize words the batch reports progress, yields the processor, and checks ctx. It
// also checks ctx before each word and once more after the last one. Once cancellation is
// observed the partial output is dropped and the returned error satisfies IsCancelled as well as
// errors.Is with the context's cause.
// On success OnProgress is finally called with 100.
//
// Words are expected to be non-empty; blank lines are the caller's to remove.
func ProcessBatch(ctx context.Context, job Job) ([]string, error) {
	if err := job.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("ProcessBatch: %w", err)
	}
	return newBatch(job).run(ctx)
}

func (b *batch) run(ctx context.Context) ([]string, error) {
	b.state = BatchRunning
	total := len(b.job.Words)
	started := time.Now()
	Logger().Debug("batch started",
		"words", total,
		"rules", len(b.job.Rules),
		"mode", b.job.Mode,
		"chunk_size", b.params.ChunkSize,
		"workers", b.params.Workers)

	out := make([]string, 0, total)
	for start := 0; start < total; start += b.params.ChunkSize {
		if start > 0 {
			b.report(percentOf(start, total))
			runtime.Gosched()
			if ctx.Err() != nil {
				return nil, b.cancelled(ctx)
			}
			Logger().Debug("batch chunk", "processed", start, "of", total)
		}

		end := min(start+b.params.ChunkSize, total)
		var err error
		if b.params.Workers > 1 {
			out, err = b.processParallel(ctx, b.job.Words[start:end], out)
		} else {
			out, err = b.processSerial(ctx, b.job.Words[start:end], out)
		}
		if err != nil {
			return nil, b.cancelled(ctx)
		}
	}

	// The last word may have finished after the token fired.
	if ctx.Err() != nil {
		return nil, b.cancelled(ctx)
	}

	b.state = BatchCompleted
	b.report(100)
	Logger().Debug("batch completed",
		"words", total,
		"results", len(out),
		"elapsed", time.Since(started))
	return out, nil
}

func (b *batch) processSerial(ctx context.Context, words []string, out []string) ([]string, error) {
	agg := b.aggs[0]
	for _, word := range words {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, b.candidates(agg, word)...)
		b.processed.Add(1)
	}
	return out, nil
}

// processParallel spreads the words of a chunk over the workers and stitches the results back
// in word order.
func (b *batch) processParallel(ctx context.Context, words []string, out []string) ([]string, error) {
	perWord := make([][]string, len(words))

	g, gctx := errgroup.WithContext(ctx)
	for w, agg := range b.aggs {
		g.Go(func() error {
			for i := w; i < len(words); i += len(b.aggs) {
				if err := gctx.Err(); err != nil {
					return err
				}
				perWord[i] = b.candidates(agg, words[i])
				b.processed.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, c := range perWord {
		out = append(out, c...)
	}
	return out, nil
}

func (b *batch) candidates(agg *aggregator, word string) []string {
	return FilterByLength(agg.enumerate(word, b.job.Rules), b.params.MaxCodepoints).Sorted()
}

func (b *batch) report(percent int) {
	if b.job.OnProgress != nil {
		b.job.OnProgress(percent)
	}
}

func (b *batch) cancelled(ctx context.Context) error {
	b.state = BatchCancelled
	cause := context.Cause(ctx)
	Logger().Info("batch cancelled",
		"processed", b.processed.Load(),
		"of", len(b.job.Words),
		"cause", cause)
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

func percentOf(done, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
