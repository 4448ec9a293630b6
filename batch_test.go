package ligatag

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"crosswarped.com/ligatag/pkg/primitives"
)

func repeatWords(word string, n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = word
	}
	return words
}

func TestProcessBatch_Progress(t *testing.T) {
	var progress []int
	results, err := ProcessBatch(t.Context(), Job{
		Words:      repeatWords("chill", 25_000),
		Rules:      chillRules,
		Mode:       CaseAll,
		OnProgress: func(p int) { progress = append(progress, p) },
	})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}

	if diff := cmp.Diff([]int{40, 80, 100}, progress); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}

	// "chill" and "CHILL" are five codepoints long and filtered out.
	if got, want := len(results), 3*25_000; got != want {
		t.Errorf("got %d results, want %d", got, want)
	}
	if diff := cmp.Diff([]string{"chiⱠ", "Ȼill", "ȻiⱠ"}, results[:3]); diff != "" {
		t.Errorf("first word's results mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessBatch_WordOrder(t *testing.T) {
	rules := append(append(Rules{}, overlapRules...), chillRules...)
	results, err := ProcessBatch(t.Context(), Job{
		Words: []string{"chill", "abc", "nothing", "abc"},
		Rules: rules,
		Mode:  CaseExact,
	})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}

	want := []string{
		"chiⱠ", "Ȼill", "ȻiⱠ",
		"Xc", "aY", "abc",
		"Xc", "aY", "abc",
	}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("ProcessBatch() mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessBatch_Empty(t *testing.T) {
	var progress []int
	results, err := ProcessBatch(t.Context(), Job{
		Rules:      chillRules,
		OnProgress: func(p int) { progress = append(progress, p) },
	})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %v, want no results", results)
	}
	if diff := cmp.Diff([]int{100}, progress); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessBatch_MaxCodepoints(t *testing.T) {
	results, err := ProcessBatch(t.Context(), Job{
		Words:  []string{"chill"},
		Rules:  chillRules,
		Params: BatchParams{MaxCodepoints: 3},
	})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if diff := cmp.Diff([]string{"ȻiⱠ"}, results); diff != "" {
		t.Errorf("ProcessBatch() mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessBatch_CancelAfterFirstChunk(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	var progress []int
	results, err := ProcessBatch(ctx, Job{
		Words: repeatWords("chill", 25_000),
		Rules: chillRules,
		Mode:  CaseAll,
		OnProgress: func(p int) {
			progress = append(progress, p)
			cancel()
		},
	})

	if !IsCancelled(err) {
		t.Fatalf("ProcessBatch() error = %v, want cancellation", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ProcessBatch() error = %v, want it to wrap context.Canceled", err)
	}
	if results != nil {
		t.Errorf("got %d partial results, want none", len(results))
	}
	if diff := cmp.Diff([]int{40}, progress); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
}

// expiringContext reports cancellation once Err has been asked more than checks times.
type expiringContext struct {
	context.Context
	checks int64
	calls  atomic.Int64
}

func (c *expiringContext) Err() error {
	if c.calls.Add(1) > c.checks {
		return context.Canceled
	}
	return nil
}

func TestProcessBatch_CancelledDuringLastWord(t *testing.T) {
	// Two words pass their per-word checks; the token fires before completion is reported.
	ctx := &expiringContext{Context: context.Background(), checks: 2}

	var progress []int
	results, err := ProcessBatch(ctx, Job{
		Words:      []string{"chill", "abc"},
		Rules:      chillRules,
		OnProgress: func(p int) { progress = append(progress, p) },
	})
	if !IsCancelled(err) || !errors.Is(err, context.Canceled) {
		t.Fatalf("ProcessBatch() error = %v, want cancellation", err)
	}
	if results != nil {
		t.Errorf("got %d results from a cancelled batch, want none", len(results))
	}
	if len(progress) != 0 {
		t.Errorf("progress = %v, want no reports", progress)
	}
}

func TestProcessBatch_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	called := false
	_, err := ProcessBatch(ctx, Job{
		Words:      []string{"chill"},
		Rules:      chillRules,
		OnProgress: func(int) { called = true },
	})
	if !IsCancelled(err) {
		t.Fatalf("ProcessBatch() error = %v, want cancellation", err)
	}
	if called {
		t.Error("OnProgress was called for a cancelled batch")
	}
}

func TestProcessBatch_Deadline(t *testing.T) {
	ctx, cancel := context.WithDeadline(t.Context(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := ProcessBatch(ctx, Job{Words: []string{"chill"}, Rules: chillRules})
	if !IsCancelled(err) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("ProcessBatch() error = %v, want cancellation by deadline", err)
	}
}

func TestProcessBatch_InvalidRules(t *testing.T) {
	_, err := ProcessBatch(t.Context(), Job{
		Words: []string{"chill"},
		Rules: Rules{{Glyph: "X", Sequence: ""}},
	})
	if !errors.Is(err, primitives.ErrInvalidRule) {
		t.Errorf("ProcessBatch() error = %v, want ErrInvalidRule", err)
	}
	if IsCancelled(err) {
		t.Errorf("invalid input reported as cancellation: %v", err)
	}
}

func TestProcessBatch_Workers(t *testing.T) {
	rules := append(append(Rules{}, overlapRules...), chillRules...)
	var words []string
	for i := range 1_000 {
		words = append(words, []string{"chill", "abc", "Chabc", "ll", fmt.Sprintf("w%d", i)}[i%5])
	}

	serial, err := ProcessBatch(t.Context(), Job{
		Words:  words,
		Rules:  rules,
		Mode:   CaseAll,
		Params: BatchParams{ChunkSize: 7},
	})
	if err != nil {
		t.Fatalf("serial ProcessBatch() error = %v", err)
	}

	var progress []int
	parallel, err := ProcessBatch(t.Context(), Job{
		Words:      words,
		Rules:      rules,
		Mode:       CaseAll,
		OnProgress: func(p int) { progress = append(progress, p) },
		Params:     BatchParams{ChunkSize: 7, Workers: 4},
	})
	if err != nil {
		t.Fatalf("parallel ProcessBatch() error = %v", err)
	}

	if diff := cmp.Diff(serial, parallel); diff != "" {
		t.Errorf("parallel results differ from serial (-serial +parallel):\n%s", diff)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Fatalf("progress decreased: %v", progress)
		}
	}
	if progress[len(progress)-1] != 100 {
		t.Errorf("last progress = %d, want 100", progress[len(progress)-1])
	}
}

func TestProcessBatch_WorkersCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	_, err := ProcessBatch(ctx, Job{
		Words:      repeatWords("chill", 100),
		Rules:      chillRules,
		OnProgress: func(int) { cancel() },
		Params:     BatchParams{ChunkSize: 10, Workers: 3},
	})
	if !IsCancelled(err) {
		t.Errorf("ProcessBatch() error = %v, want cancellation", err)
	}
}

func TestBatchState_String(t *testing.T) {
	for state, want := range map[BatchState]string{
		BatchIdle:      "idle",
		BatchRunning:   "running",
		BatchCompleted: "completed",
		BatchCancelled: "cancelled",
		BatchState(9):  "BatchState(9)",
	} {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(state), got, want)
		}
	}
}

func BenchmarkProcessBatch(b *testing.B) {
	rules := append(append(Rules{}, overlapRules...), chillRules...)
	words := make([]string, 0, 50_000)
	for i := range cap(words) {
		words = append(words, []string{"chill", "abcll", "chabc", "zebra", "allochcb"}[i%5])
	}
	b.ReportAllocs()

	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			for b.Loop() {
				results, err := ProcessBatch(b.Context(), Job{
					Words:  words,
					Rules:  rules,
					Mode:   CaseAll,
					Params: BatchParams{Workers: workers},
				})
				if err != nil {
					b.Fatal(err)
				}
				b.ReportMetric(float64(len(results)), "results")
			}
		})
	}
}
