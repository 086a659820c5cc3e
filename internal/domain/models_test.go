package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testAlternative() Alternative {
	return Alternative{
		AssetID:               "IT_SYSTEM_001",
		AlternativeID:         "Pilot_Program",
		Cost:                  45000,
		ProbabilityPostAction: 0.05,
		ConsequenceTotal:      500000,
		SafetyRiskLevel:       SafetyLow,
	}
}

func TestAlternative_IsHighRisk(t *testing.T) {
	alt := testAlternative()
	assert.False(t, alt.IsHighRisk())

	alt.SafetyRiskLevel = SafetyHigh
	assert.True(t, alt.IsHighRisk())

	alt.SafetyRiskLevel = SafetyCritical
	assert.True(t, alt.IsHighRisk())
}

func TestAlternative_IsCritical(t *testing.T) {
	alt := testAlternative()
	assert.False(t, alt.IsCritical())

	alt.SafetyRiskLevel = SafetyHigh
	assert.False(t, alt.IsCritical())

	alt.SafetyRiskLevel = SafetyCritical
	assert.True(t, alt.IsCritical())
}

func TestIdentity_String(t *testing.T) {
	id := testAlternative().Key()
	assert.Equal(t, "IT_SYSTEM_001 (Pilot_Program)", id.String())
}

func TestEvaluatedResult_CostBenefitRatio(t *testing.T) {
	r := EvaluatedResult{Alternative: testAlternative(), RiskReduction: 225000}
	assert.InDelta(t, 5.0, r.CostBenefitRatio(), 1e-9)

	r.Cost = 0
	assert.Zero(t, r.CostBenefitRatio())
}
