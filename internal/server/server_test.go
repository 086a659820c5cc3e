package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorgreggio/capalloc/internal/application"
	"github.com/victorgreggio/capalloc/internal/config"
	"github.com/victorgreggio/capalloc/internal/domain"
	"github.com/victorgreggio/capalloc/internal/modules/formulas"
	"github.com/victorgreggio/capalloc/internal/modules/portfolio"
	"github.com/victorgreggio/capalloc/internal/modules/risk"
)

type stubSource struct {
	alternatives []domain.Alternative
	err          error
}

func (s stubSource) LoadAll() ([]domain.Alternative, error) {
	return s.alternatives, s.err
}

func testAlternatives() []domain.Alternative {
	return []domain.Alternative{
		{AssetID: "PUMP_001", AlternativeID: "Do_Nothing", Cost: 0, ProbabilityPostAction: 0.25, ConsequenceTotal: 500000, SafetyRiskLevel: domain.SafetyMedium},
		{AssetID: "PUMP_001", AlternativeID: "Refurbish", Cost: 45000, ProbabilityPostAction: 0.05, ConsequenceTotal: 500000, SafetyRiskLevel: domain.SafetyLow},
		{AssetID: "VALVE_002", AlternativeID: "Repair", Cost: 15000, ProbabilityPostAction: 0.08, ConsequenceTotal: 250000, SafetyRiskLevel: domain.SafetyHigh},
	}
}

func testServer(t *testing.T, source domain.AlternativeSource) *Server {
	t.Helper()

	evaluator, err := risk.NewEvaluator(formulas.DefaultGraph(), zerolog.Nop())
	require.NoError(t, err)

	app := application.New(
		source,
		risk.NewRunner(evaluator, 2, zerolog.Nop()),
		portfolio.NewSelector(zerolog.Nop()),
		zerolog.Nop(),
	)

	return New(Config{
		Log: zerolog.Nop(),
		App: app,
		Config: &config.Config{
			RiskWeight:     0.6,
			PriorityWeight: 0.4,
		},
		Port:    0,
		DevMode: true,
	})
}

func doRequest(s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t, stubSource{alternatives: testAlternatives()})

	rec := doRequest(s, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "capalloc", resp["service"])
	assert.Equal(t, false, resp["has_evaluation"])
}

func TestHandleEvaluate(t *testing.T) {
	s := testServer(t, stubSource{alternatives: testAlternatives()})

	rec := doRequest(s, http.MethodPost, "/api/evaluate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp evaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 3, resp.Evaluated)
	assert.Zero(t, resp.Dropped)
}

func TestHandleEvaluate_SourceError(t *testing.T) {
	s := testServer(t, stubSource{err: assert.AnError})

	rec := doRequest(s, http.MethodPost, "/api/evaluate", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleResults_BeforeAndAfterRun(t *testing.T) {
	s := testServer(t, stubSource{alternatives: testAlternatives()})

	rec := doRequest(s, http.MethodGet, "/api/results", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusOK, doRequest(s, http.MethodPost, "/api/evaluate", nil).Code)

	rec = doRequest(s, http.MethodGet, "/api/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var batch risk.Batch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batch))
	require.Len(t, batch.Results, 3)
	assert.Equal(t, "PUMP_001", batch.Results[0].AssetID)
	assert.InDelta(t, 500000.0, batch.Results[0].BaselineRisk, 1e-9)
}

func TestHandleOptimize(t *testing.T) {
	s := testServer(t, stubSource{alternatives: testAlternatives()})

	body := []byte(`{"budget": 60000}`)
	rec := doRequest(s, http.MethodPost, "/api/optimize", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var report application.SelectionReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	assert.Equal(t, 60000.0, report.Budget)
	assert.Equal(t, 0.6, report.Weights.Risk)

	require.NotNil(t, report.RiskReduction.Outcome)
	require.NotNil(t, report.Priority.Outcome)
	require.NotNil(t, report.Combined.Outcome)

	assert.LessOrEqual(t, report.RiskReduction.Outcome.TotalCost, 60000.0)
	assert.True(t, report.RiskReduction.Outcome.Optimal)
}

func TestHandleOptimize_CustomWeights(t *testing.T) {
	s := testServer(t, stubSource{alternatives: testAlternatives()})

	body := []byte(`{"budget": 60000, "risk_weight": 0.9, "priority_weight": 0.1}`)
	rec := doRequest(s, http.MethodPost, "/api/optimize", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var report application.SelectionReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 0.9, report.Weights.Risk)
	assert.Equal(t, 0.1, report.Weights.Priority)
}

func TestHandleOptimize_NegativeBudget(t *testing.T) {
	s := testServer(t, stubSource{alternatives: testAlternatives()})

	rec := doRequest(s, http.MethodPost, "/api/optimize", []byte(`{"budget": -1}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleOptimize_InvalidBody(t *testing.T) {
	s := testServer(t, stubSource{alternatives: testAlternatives()})

	rec := doRequest(s, http.MethodPost, "/api/optimize", []byte(`{not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
