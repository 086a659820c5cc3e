package scheduler

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorgreggio/capalloc/internal/application"
	"github.com/victorgreggio/capalloc/internal/domain"
	"github.com/victorgreggio/capalloc/internal/modules/formulas"
	"github.com/victorgreggio/capalloc/internal/modules/portfolio"
	"github.com/victorgreggio/capalloc/internal/modules/risk"
)

type memorySource struct {
	alternatives []domain.Alternative
	err          error
}

func (m *memorySource) LoadAll() ([]domain.Alternative, error) {
	return m.alternatives, m.err
}

func testApp(t *testing.T, source domain.AlternativeSource) *application.App {
	t.Helper()
	evaluator, err := risk.NewEvaluator(formulas.DefaultGraph(), zerolog.Nop())
	require.NoError(t, err)
	return application.New(
		source,
		risk.NewRunner(evaluator, 2, zerolog.Nop()),
		portfolio.NewSelector(zerolog.Nop()),
		zerolog.Nop(),
	)
}

func TestRefreshJob_Run(t *testing.T) {
	source := &memorySource{alternatives: []domain.Alternative{
		{AssetID: "PUMP_001", AlternativeID: "Repair", Cost: 20000, ProbabilityPostAction: 0.06, ConsequenceTotal: 400000, SafetyRiskLevel: domain.SafetyLow},
	}}
	app := testApp(t, source)

	job := NewRefreshJob(app, zerolog.Nop())
	assert.Equal(t, "batch_refresh", job.Name())
	require.NoError(t, job.Run())

	batch, ok := app.LastBatch()
	require.True(t, ok)
	assert.Len(t, batch.Results, 1)

	// A second run picks up changed source data.
	source.alternatives = append(source.alternatives, domain.Alternative{
		AssetID: "VALVE_002", AlternativeID: "Replace", Cost: 60000,
		ProbabilityPostAction: 0.01, ConsequenceTotal: 900000,
		SafetyRiskLevel: domain.SafetyNegligible,
	})
	require.NoError(t, job.Run())

	batch, ok = app.LastBatch()
	require.True(t, ok)
	assert.Len(t, batch.Results, 2)
}

func TestRefreshJob_SourceError(t *testing.T) {
	job := NewRefreshJob(testApp(t, &memorySource{err: assert.AnError}), zerolog.Nop())
	assert.Error(t, job.Run())
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())
	job := NewRefreshJob(testApp(t, &memorySource{}), zerolog.Nop())

	require.NoError(t, s.AddJob("@every 1h", job))
	assert.Error(t, s.AddJob("not-a-schedule", job))

	s.Start()
	s.Stop()
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := NewRefreshJob(testApp(t, &memorySource{}), zerolog.Nop())
	assert.NoError(t, s.RunNow(job))
}
