package application

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorgreggio/capalloc/internal/domain"
	"github.com/victorgreggio/capalloc/internal/modules/formulas"
	"github.com/victorgreggio/capalloc/internal/modules/portfolio"
	"github.com/victorgreggio/capalloc/internal/modules/risk"
)

type sliceSource []domain.Alternative

func (s sliceSource) LoadAll() ([]domain.Alternative, error) {
	return s, nil
}

type failingSource struct{}

func (failingSource) LoadAll() ([]domain.Alternative, error) {
	return nil, assert.AnError
}

func newTestApp(t *testing.T, source domain.AlternativeSource) *App {
	t.Helper()
	evaluator, err := risk.NewEvaluator(formulas.DefaultGraph(), zerolog.Nop())
	require.NoError(t, err)
	return New(
		source,
		risk.NewRunner(evaluator, 2, zerolog.Nop()),
		portfolio.NewSelector(zerolog.Nop()),
		zerolog.Nop(),
	)
}

func sampleAlternatives() sliceSource {
	return sliceSource{
		{AssetID: "PUMP_001", AlternativeID: "Do_Nothing", Cost: 0, ProbabilityPostAction: 0.25, ConsequenceTotal: 500000, SafetyRiskLevel: domain.SafetyMedium},
		{AssetID: "PUMP_001", AlternativeID: "Refurbish", Cost: 45000, ProbabilityPostAction: 0.05, ConsequenceTotal: 500000, SafetyRiskLevel: domain.SafetyLow},
		{AssetID: "VALVE_002", AlternativeID: "Repair", Cost: 15000, ProbabilityPostAction: 0.08, ConsequenceTotal: 250000, SafetyRiskLevel: domain.SafetyHigh},
	}
}

func TestApp_EvaluateAllRetainsBatch(t *testing.T) {
	app := newTestApp(t, sampleAlternatives())

	_, ok := app.LastBatch()
	assert.False(t, ok)

	batch, err := app.EvaluateAll()
	require.NoError(t, err)
	assert.Len(t, batch.Results, 3)
	assert.Zero(t, batch.Dropped)

	retained, ok := app.LastBatch()
	require.True(t, ok)
	assert.Equal(t, batch.RunID, retained.RunID)
}

func TestApp_EvaluateAllSourceFailure(t *testing.T) {
	app := newTestApp(t, failingSource{})

	_, err := app.EvaluateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load alternatives")

	_, ok := app.LastBatch()
	assert.False(t, ok)
}

func TestApp_RunSelections(t *testing.T) {
	app := newTestApp(t, sampleAlternatives())
	batch, err := app.EvaluateAll()
	require.NoError(t, err)

	report := app.RunSelections(context.Background(), batch.Results, 60000, portfolio.DefaultWeights)

	require.NotNil(t, report.RiskReduction.Outcome)
	require.NotNil(t, report.Priority.Outcome)
	require.NotNil(t, report.Combined.Outcome)

	for _, result := range []VariantResult{report.RiskReduction, report.Priority, report.Combined} {
		assert.False(t, result.Failed())
		assert.LessOrEqual(t, result.Outcome.TotalCost, 60000.0)
	}
}

func TestApp_RunSelectionsVariantFailureIsIndependent(t *testing.T) {
	app := newTestApp(t, sampleAlternatives())
	batch, err := app.EvaluateAll()
	require.NoError(t, err)

	// A negative budget is infeasible for every variant; each slot
	// reports its own failure instead of aborting the report.
	report := app.RunSelections(context.Background(), batch.Results, -1, portfolio.DefaultWeights)

	assert.True(t, report.RiskReduction.Failed())
	assert.True(t, report.Priority.Failed())
	assert.True(t, report.Combined.Failed())
	assert.NotEmpty(t, report.RiskReduction.Error)
}
