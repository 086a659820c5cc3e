// Package domain contains the core business entities for the capital
// allocation engine. The domain layer is pure: no infrastructure
// dependencies, no I/O.
package domain

import "time"

// SafetyRiskLevel classifies the safety exposure of an asset alternative.
type SafetyRiskLevel string

const (
	SafetyNegligible SafetyRiskLevel = "Negligible"
	SafetyLow        SafetyRiskLevel = "Low"
	SafetyMedium     SafetyRiskLevel = "Medium"
	SafetyHigh       SafetyRiskLevel = "High"
	SafetyCritical   SafetyRiskLevel = "Critical"
)

// Alternative is one candidate course of action for an asset (repair,
// replace, defer, ...) with its cost and resulting risk profile.
// AlternativeID is unique within its asset group, not globally.
type Alternative struct {
	AssetID               string          `json:"asset_id"`
	AlternativeID         string          `json:"alternative_id"`
	Cost                  float64         `json:"cost_usd"`
	ProbabilityPostAction float64         `json:"pof_post_action"`
	ConsequenceTotal      float64         `json:"cof_total_usd"`
	SafetyRiskLevel       SafetyRiskLevel `json:"safety_risk_level"`
}

// IsHighRisk reports whether the alternative's safety level is High or
// Critical.
func (a Alternative) IsHighRisk() bool {
	return a.SafetyRiskLevel == SafetyHigh || a.SafetyRiskLevel == SafetyCritical
}

// IsCritical reports whether the alternative's safety level is Critical.
func (a Alternative) IsCritical() bool {
	return a.SafetyRiskLevel == SafetyCritical
}

// Key returns the asset+alternative identity pair, unique within a batch.
func (a Alternative) Key() Identity {
	return Identity{AssetID: a.AssetID, AlternativeID: a.AlternativeID}
}

// Identity names one alternative of one asset.
type Identity struct {
	AssetID       string `json:"asset_id"`
	AlternativeID string `json:"alternative_id"`
}

func (id Identity) String() string {
	return id.AssetID + " (" + id.AlternativeID + ")"
}

// EvaluatedResult is an alternative plus the thirteen derived metrics.
// Immutable once produced by the batch runner; downstream components
// treat it as read-only.
type EvaluatedResult struct {
	Alternative

	BaselineRisk             float64 `json:"baseline_risk"`
	SafetyMultiplier         float64 `json:"safety_multiplier"`
	CriticalityScore         float64 `json:"criticality_score"`
	DegradationFactor        float64 `json:"degradation_factor"`
	PostActionRisk           float64 `json:"post_action_risk"`
	RiskReduction            float64 `json:"risk_reduction"`
	ImplementationComplexity float64 `json:"implementation_complexity"`
	TimeValueAdjustment      float64 `json:"time_value_adjustment"`
	AdjustedCost             float64 `json:"adjusted_cost"`
	ROI                      float64 `json:"roi"`
	CostEffectiveness        float64 `json:"cost_effectiveness"`
	PriorityScore            float64 `json:"priority_score"`
	PaybackPeriod            float64 `json:"payback_period"`

	// CalculationTime is the wall time spent evaluating this record.
	// Diagnostic only, never consumed by downstream logic.
	CalculationTime time.Duration `json:"calculation_time"`
}

// CostBenefitRatio is risk reduction per dollar of raw cost.
func (r EvaluatedResult) CostBenefitRatio() float64 {
	if r.Cost > 0 {
		return r.RiskReduction / r.Cost
	}
	return 0
}
