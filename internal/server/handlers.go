package server

import (
	"encoding/json"
	"net/http"

	"github.com/victorgreggio/capalloc/internal/modules/portfolio"
)

// evaluateResponse summarizes one batch run. The full per-record
// results are served by /api/results.
type evaluateResponse struct {
	RunID     string  `json:"run_id"`
	Evaluated int     `json:"evaluated"`
	Dropped   int     `json:"dropped"`
	ElapsedMs float64 `json:"elapsed_ms"`
	MeanMs    float64 `json:"mean_ms"`
	MaxMs     float64 `json:"max_ms"`
}

// handleEvaluate re-reads the record source and evaluates the whole
// batch.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	batch, err := s.app.EvaluateAll()
	if err != nil {
		s.log.Error().Err(err).Msg("Batch evaluation failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	timing := batch.Timing()
	s.writeJSON(w, http.StatusOK, evaluateResponse{
		RunID:     batch.RunID,
		Evaluated: len(batch.Results),
		Dropped:   batch.Dropped,
		ElapsedMs: float64(batch.Elapsed.Microseconds()) / 1000.0,
		MeanMs:    timing.MeanPerOp,
		MaxMs:     timing.MaxPerOp,
	})
}

type optimizeRequest struct {
	Budget         float64  `json:"budget"`
	RiskWeight     *float64 `json:"risk_weight,omitempty"`
	PriorityWeight *float64 `json:"priority_weight,omitempty"`
}

// handleOptimize runs the three objective variants against the current
// batch, evaluating one first if none exists yet.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Budget < 0 {
		s.writeError(w, http.StatusBadRequest, "budget must be non-negative")
		return
	}

	weights := portfolio.Weights{
		Risk:     s.cfg.RiskWeight,
		Priority: s.cfg.PriorityWeight,
	}
	if req.RiskWeight != nil {
		weights.Risk = *req.RiskWeight
	}
	if req.PriorityWeight != nil {
		weights.Priority = *req.PriorityWeight
	}

	batch, ok := s.app.LastBatch()
	if !ok {
		fresh, err := s.app.EvaluateAll()
		if err != nil {
			s.log.Error().Err(err).Msg("Batch evaluation failed")
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		batch = fresh
	}

	report := s.app.RunSelections(r.Context(), batch.Results, req.Budget, weights)
	s.writeJSON(w, http.StatusOK, report)
}

// handleResults serves the most recent batch in full.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	batch, ok := s.app.LastBatch()
	if !ok {
		s.writeError(w, http.StatusNotFound, "no evaluation run yet")
		return
	}
	s.writeJSON(w, http.StatusOK, batch)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
