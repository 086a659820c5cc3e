package risk

import (
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/victorgreggio/capalloc/internal/domain"
)

// Batch is the output of one parallel evaluation run. Results preserve
// input order; records whose evaluation failed are absent.
type Batch struct {
	RunID   string                   `json:"run_id"`
	Results []domain.EvaluatedResult `json:"results"`
	Dropped int                      `json:"dropped"`
	Elapsed time.Duration            `json:"elapsed"`
}

// TimingSummary aggregates per-record calculation times, diagnostic only.
type TimingSummary struct {
	Count     int           `json:"count"`
	Total     time.Duration `json:"total"`
	MeanPerOp float64       `json:"mean_ms"`
	MaxPerOp  float64       `json:"max_ms"`
}

// Timing summarizes the batch's per-record calculation times in
// milliseconds.
func (b Batch) Timing() TimingSummary {
	if len(b.Results) == 0 {
		return TimingSummary{Total: b.Elapsed}
	}

	times := make([]float64, len(b.Results))
	for i, r := range b.Results {
		times[i] = float64(r.CalculationTime.Microseconds()) / 1000.0
	}

	return TimingSummary{
		Count:     len(b.Results),
		Total:     b.Elapsed,
		MeanPerOp: stat.Mean(times, nil),
		MaxPerOp:  floats.Max(times),
	}
}

// Runner fans the evaluator out over a batch of alternatives. Records
// are independent: each worker writes a disjoint result slot and no
// evaluation state is shared between goroutines.
type Runner struct {
	evaluator *Evaluator
	workers   int
	log       zerolog.Logger
}

// NewRunner creates a batch runner. workers <= 0 means one worker per
// available CPU.
func NewRunner(evaluator *Evaluator, workers int, log zerolog.Logger) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{
		evaluator: evaluator,
		workers:   workers,
		log:       log.With().Str("module", "risk").Logger(),
	}
}

// EvaluateAll evaluates every alternative concurrently and gathers the
// results. A record whose evaluation fails is dropped from the batch;
// a failure is never fatal to the batch as a whole. The batch completes
// only when every dispatched record has completed.
func (r *Runner) EvaluateAll(alternatives []domain.Alternative) Batch {
	start := time.Now()
	runID := uuid.New().String()

	slots := make([]domain.EvaluatedResult, len(alternatives))
	ok := make([]bool, len(alternatives))

	indexes := make(chan int)
	var wg sync.WaitGroup

	workers := r.workers
	if workers > len(alternatives) {
		workers = len(alternatives)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				result, err := r.evaluator.Evaluate(alternatives[i])
				if err != nil {
					r.log.Debug().
						Err(err).
						Str("asset_id", alternatives[i].AssetID).
						Str("alternative_id", alternatives[i].AlternativeID).
						Msg("Dropping alternative from batch")
					continue
				}
				slots[i] = result
				ok[i] = true
			}
		}()
	}

	for i := range alternatives {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	results := make([]domain.EvaluatedResult, 0, len(alternatives))
	for i := range slots {
		if ok[i] {
			results = append(results, slots[i])
		}
	}

	batch := Batch{
		RunID:   runID,
		Results: results,
		Dropped: len(alternatives) - len(results),
		Elapsed: time.Since(start),
	}

	r.log.Info().
		Str("run_id", runID).
		Int("evaluated", len(results)).
		Int("dropped", batch.Dropped).
		Dur("elapsed", batch.Elapsed).
		Msg("Batch evaluation complete")

	return batch
}
