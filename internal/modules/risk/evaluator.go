// Package risk evaluates the metric formula graph for alternatives,
// one at a time or fanned out in parallel over a whole batch.
package risk

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/victorgreggio/capalloc/internal/domain"
	"github.com/victorgreggio/capalloc/internal/modules/formulas"
)

// Evaluator computes the thirteen derived metrics for one alternative.
// It is stateless between calls: every Evaluate builds a fresh
// evaluation context, so a single Evaluator is safe to share across
// goroutines.
type Evaluator struct {
	graph *formulas.Graph
	log   zerolog.Logger
}

// NewEvaluator validates the graph topology once and returns an
// evaluator bound to it.
func NewEvaluator(graph *formulas.Graph, log zerolog.Logger) (*Evaluator, error) {
	if err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("invalid formula graph: %w", err)
	}
	return &Evaluator{
		graph: graph,
		log:   log.With().Str("module", "risk").Logger(),
	}, nil
}

// Evaluate computes all metrics for a single alternative. Raw attributes
// are not validated; out-of-range values propagate arithmetically.
func (e *Evaluator) Evaluate(alt domain.Alternative) (domain.EvaluatedResult, error) {
	start := time.Now()

	ctx := formulas.Context{
		Cost:          alt.Cost,
		PoFPostAction: alt.ProbabilityPostAction,
		CoFTotal:      alt.ConsequenceTotal,
		IsCritical:    alt.IsCritical(),
		IsHighRisk:    alt.IsHighRisk(),
	}

	values, err := e.graph.Evaluate(ctx)
	if err != nil {
		return domain.EvaluatedResult{}, fmt.Errorf("evaluate %s: %w", alt.Key(), err)
	}

	result := domain.EvaluatedResult{Alternative: alt}
	result.BaselineRisk = mustGet(values, formulas.NodeBaselineRisk)
	result.SafetyMultiplier = mustGet(values, formulas.NodeSafetyMultiplier)
	result.CriticalityScore = mustGet(values, formulas.NodeCriticalityScore)
	result.DegradationFactor = mustGet(values, formulas.NodeDegradationFactor)
	result.PostActionRisk = mustGet(values, formulas.NodePostActionRisk)
	result.RiskReduction = mustGet(values, formulas.NodeRiskReduction)
	result.ImplementationComplexity = mustGet(values, formulas.NodeImplementationComplexity)
	result.TimeValueAdjustment = mustGet(values, formulas.NodeTimeValueAdjustment)
	result.AdjustedCost = mustGet(values, formulas.NodeAdjustedCost)
	result.ROI = mustGet(values, formulas.NodeROI)
	result.CostEffectiveness = mustGet(values, formulas.NodeCostEffectiveness)
	result.PriorityScore = mustGet(values, formulas.NodePriorityScore)
	result.PaybackPeriod = mustGet(values, formulas.NodePaybackPeriod)
	result.CalculationTime = time.Since(start)

	return result, nil
}

// mustGet reads a node output after a successful graph evaluation, at
// which point every node is resolved.
func mustGet(v *formulas.Values, n formulas.Node) float64 {
	x, _ := v.Get(n)
	return x
}
