// Package application orchestrates the capital allocation workflow:
// load records, evaluate the metric batch, and run the selector once
// per objective variant.
package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/victorgreggio/capalloc/internal/domain"
	"github.com/victorgreggio/capalloc/internal/modules/portfolio"
	"github.com/victorgreggio/capalloc/internal/modules/risk"
)

// App wires the record source, the batch runner and the selector.
type App struct {
	source   domain.AlternativeSource
	runner   *risk.Runner
	selector *portfolio.Selector
	log      zerolog.Logger

	mu        sync.RWMutex
	lastBatch *risk.Batch
}

// New creates the application service.
func New(source domain.AlternativeSource, runner *risk.Runner, selector *portfolio.Selector, log zerolog.Logger) *App {
	return &App{
		source:   source,
		runner:   runner,
		selector: selector,
		log:      log.With().Str("module", "application").Logger(),
	}
}

// LoadAlternatives reads all records from the configured source.
func (a *App) LoadAlternatives() ([]domain.Alternative, error) {
	alternatives, err := a.source.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load alternatives: %w", err)
	}
	return alternatives, nil
}

// EvaluateAll loads the source and evaluates the whole batch in
// parallel, retaining it as the current batch.
func (a *App) EvaluateAll() (risk.Batch, error) {
	alternatives, err := a.LoadAlternatives()
	if err != nil {
		return risk.Batch{}, err
	}

	batch := a.runner.EvaluateAll(alternatives)

	a.mu.Lock()
	a.lastBatch = &batch
	a.mu.Unlock()

	return batch, nil
}

// LastBatch returns the most recently evaluated batch, if any.
func (a *App) LastBatch() (risk.Batch, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.lastBatch == nil {
		return risk.Batch{}, false
	}
	return *a.lastBatch, true
}

// VariantResult carries one objective variant's outcome, or the reason
// it produced none.
type VariantResult struct {
	Outcome *portfolio.Outcome `json:"outcome,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// Failed reports whether the variant produced no outcome.
func (v VariantResult) Failed() bool {
	return v.Outcome == nil
}

// SelectionReport bundles the three independent objective variants run
// against one batch and budget.
type SelectionReport struct {
	Budget        float64           `json:"budget"`
	Weights       portfolio.Weights `json:"weights"`
	RiskReduction VariantResult     `json:"risk_reduction"`
	Priority      VariantResult     `json:"priority"`
	Combined      VariantResult     `json:"combined"`
}

// RunSelections executes the three objective variants concurrently over
// the same read-only batch. A failing variant is reported in its slot
// and never aborts the others.
func (a *App) RunSelections(ctx context.Context, results []domain.EvaluatedResult, budget float64, weights portfolio.Weights) SelectionReport {
	report := SelectionReport{Budget: budget, Weights: weights}

	var wg sync.WaitGroup
	run := func(slot *VariantResult, solve func() (portfolio.Outcome, error)) {
		defer wg.Done()
		outcome, err := solve()
		if err != nil {
			slot.Error = err.Error()
			return
		}
		slot.Outcome = &outcome
	}

	wg.Add(3)
	go run(&report.RiskReduction, func() (portfolio.Outcome, error) {
		return a.selector.Select(ctx, results, budget, portfolio.ObjectiveRiskReduction)
	})
	go run(&report.Priority, func() (portfolio.Outcome, error) {
		return a.selector.Select(ctx, results, budget, portfolio.ObjectivePriority)
	})
	go run(&report.Combined, func() (portfolio.Outcome, error) {
		return a.selector.SelectCombined(ctx, results, budget, weights)
	})
	wg.Wait()

	for _, v := range []struct {
		name   string
		result VariantResult
	}{
		{"risk_reduction", report.RiskReduction},
		{"priority", report.Priority},
		{"combined", report.Combined},
	} {
		if v.result.Failed() {
			a.log.Warn().
				Str("objective", v.name).
				Str("reason", v.result.Error).
				Msg("No solution for this strategy")
		}
	}

	return report
}
