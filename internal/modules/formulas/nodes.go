package formulas

import "math"

// Tunable constants shared by the node rules. Monetary outputs are
// rounded to 2 decimals, dimensionless scores typically to 4.
const (
	// High-consequence assets get exponential scaling on baseline risk
	HighConsequenceThreshold = 1_000_000.0
	HighConsequenceScale     = 0.5 // baseline risk multiplied by e^0.5

	// Safety multiplier parameters
	CriticalMultiplierBase  = 1.5
	CriticalMultiplierSlope = 0.2
	HighRiskMultiplierBase  = 1.25
	HighRiskMultiplierSlope = 0.15
	HighRiskPoFFloor        = 0.1

	// Criticality weighting
	CriticalityPoFScale = 10.0
	CriticalityCoFScale = 500_000.0
	CriticalScoreFactor = 1.5
	HighRiskScoreFactor = 1.25

	// Degradation caps at 95% and post-action risk never discounts
	// below half
	DegradationCap       = 0.95
	DegradationRiskFloor = 0.5
	DegradationPoFScale  = 2.0

	// Implementation complexity
	ComplexityCostScale      = 100_000.0
	ComplexityMax            = 10.0
	CriticalComplexityFactor = 2.0
	HighRiskComplexityFactor = 1.5

	// Time value of money: monthly discount rate, period count derived
	// from complexity
	MonthlyDiscountRate   = 0.006666667
	ComplexityPeriodScale = 2.0

	// Adjusted cost complexity premium per complexity point
	ComplexityCostPremium = 0.05

	// ROI sentinel for zero adjusted cost, and caps used downstream
	ROISentinel       = 999.9999
	ROIEffectivityCap = 20.0
	ROIPriorityCap    = 10.0

	// Cost effectiveness: weighted blend of ROI and criticality on a
	// 0-100 scale
	EffectivenessROIWeight         = 3.5
	EffectivenessCriticalityWeight = 3.0
	EffectivenessCriticalityCap    = 10.0
	EffectivenessMax               = 100.0

	// Priority score weights (risk reduction / ROI / criticality)
	PriorityRiskWeight        = 0.4
	PriorityROIWeight         = 0.35
	PriorityCriticalityWeight = 0.25
	PriorityRiskScale         = 1_000_000.0
	PriorityCriticalBoost     = 1.3

	// Payback sentinel (months) when there is no risk reduction
	PaybackSentinel = 999.9
	MonthsPerYear   = 12.0
)

// DefaultGraph declares the thirteen metric nodes in their fixed
// topological order. A node's rule may only read nodes declared before
// it; Validate enforces this once at startup.
func DefaultGraph() *Graph {
	return &Graph{defs: []Definition{
		{
			// Baseline risk assumes the worst case (PoF = 1.0 for
			// do-nothing), with exponential scaling for high
			// consequence assets.
			Node: NodeBaselineRisk,
			Rule: func(ctx Context, _ *Values) float64 {
				if ctx.CoFTotal > HighConsequenceThreshold {
					return round(math.Exp(HighConsequenceScale)*ctx.CoFTotal, 2)
				}
				return round(ctx.CoFTotal, 2)
			},
		},
		{
			// Critical assets carry a higher consequence weight.
			Node: NodeSafetyMultiplier,
			Rule: func(ctx Context, _ *Values) float64 {
				switch {
				case ctx.IsCritical:
					return CriticalMultiplierBase + ctx.PoFPostAction*CriticalMultiplierSlope
				case ctx.IsHighRisk:
					return HighRiskMultiplierBase + math.Max(0, ctx.PoFPostAction-HighRiskPoFFloor)*HighRiskMultiplierSlope
				default:
					return 1.0
				}
			},
		},
		{
			// Asset criticality from PoF, CoF and safety classification.
			Node: NodeCriticalityScore,
			Rule: func(ctx Context, _ *Values) float64 {
				base := ctx.PoFPostAction*CriticalityPoFScale + ctx.CoFTotal/CriticalityCoFScale
				switch {
				case ctx.IsCritical:
					return round(base*CriticalScoreFactor, 2)
				case ctx.IsHighRisk:
					return round(base*HighRiskScoreFactor, 2)
				default:
					return round(base, 2)
				}
			},
		},
		{
			// Higher PoF indicates more degradation.
			Node: NodeDegradationFactor,
			Rule: func(ctx Context, _ *Values) float64 {
				return round(1.0-math.Min(ctx.PoFPostAction*DegradationPoFScale, DegradationCap), 4)
			},
		},
		{
			// Risk = probability x consequence x safety multiplier x
			// degradation (floored).
			Node:   NodePostActionRisk,
			Inputs: []Node{NodeSafetyMultiplier, NodeDegradationFactor},
			Rule: func(ctx Context, v *Values) float64 {
				mult, _ := v.Get(NodeSafetyMultiplier)
				deg, _ := v.Get(NodeDegradationFactor)
				return round(ctx.PoFPostAction*ctx.CoFTotal*mult*math.Max(deg, DegradationRiskFloor), 2)
			},
		},
		{
			Node:   NodeRiskReduction,
			Inputs: []Node{NodeBaselineRisk, NodePostActionRisk},
			Rule: func(_ Context, v *Values) float64 {
				baseline, _ := v.Get(NodeBaselineRisk)
				post, _ := v.Get(NodePostActionRisk)
				return round(math.Max(baseline-post, 0), 2)
			},
		},
		{
			// Higher cost and critical assets mean higher
			// implementation difficulty, capped at 10.
			Node: NodeImplementationComplexity,
			Rule: func(ctx Context, _ *Values) float64 {
				base := math.Min(ctx.Cost/ComplexityCostScale, ComplexityMax)
				switch {
				case ctx.IsCritical:
					return round(math.Min(base*CriticalComplexityFactor, ComplexityMax), 2)
				case ctx.IsHighRisk:
					return round(math.Min(base*HighRiskComplexityFactor, ComplexityMax), 2)
				default:
					return round(base, 2)
				}
			},
		},
		{
			// Present value discount 1/(1+r)^n over a period count
			// derived from complexity.
			Node:   NodeTimeValueAdjustment,
			Inputs: []Node{NodeImplementationComplexity},
			Rule: func(_ Context, v *Values) float64 {
				complexity, _ := v.Get(NodeImplementationComplexity)
				periods := math.Ceil(complexity * ComplexityPeriodScale)
				return round(1.0/math.Pow(1.0+MonthlyDiscountRate, periods), 4)
			},
		},
		{
			Node:   NodeAdjustedCost,
			Inputs: []Node{NodeImplementationComplexity, NodeTimeValueAdjustment},
			Rule: func(ctx Context, v *Values) float64 {
				complexity, _ := v.Get(NodeImplementationComplexity)
				tva, _ := v.Get(NodeTimeValueAdjustment)
				return round(ctx.Cost*(1+complexity*ComplexityCostPremium)*tva, 2)
			},
		},
		{
			Node:   NodeROI,
			Inputs: []Node{NodeRiskReduction, NodeAdjustedCost},
			Rule: func(_ Context, v *Values) float64 {
				reduction, _ := v.Get(NodeRiskReduction)
				cost, _ := v.Get(NodeAdjustedCost)
				if cost > 0 {
					return round(reduction/cost, 4)
				}
				return ROISentinel
			},
		},
		{
			// Normalized 0-100 score blending ROI and criticality.
			Node:   NodeCostEffectiveness,
			Inputs: []Node{NodeROI, NodeCriticalityScore},
			Rule: func(_ Context, v *Values) float64 {
				roi, _ := v.Get(NodeROI)
				criticality, _ := v.Get(NodeCriticalityScore)
				score := math.Min(roi, ROIEffectivityCap)*EffectivenessROIWeight +
					math.Min(criticality, EffectivenessCriticalityCap)*EffectivenessCriticalityWeight
				return round(math.Min(score, EffectivenessMax), 2)
			},
		},
		{
			Node:   NodePriorityScore,
			Inputs: []Node{NodeRiskReduction, NodeROI, NodeCriticalityScore},
			Rule: func(ctx Context, v *Values) float64 {
				reduction, _ := v.Get(NodeRiskReduction)
				roi, _ := v.Get(NodeROI)
				criticality, _ := v.Get(NodeCriticalityScore)
				base := (reduction/PriorityRiskScale)*PriorityRiskWeight +
					(math.Min(roi, ROIPriorityCap)/ROIPriorityCap)*PriorityROIWeight +
					(criticality/EffectivenessCriticalityCap)*PriorityCriticalityWeight
				if ctx.IsCritical {
					return round(base*PriorityCriticalBoost, 4)
				}
				return round(base, 4)
			},
		},
		{
			// Payback period in months, treating risk reduction as the
			// annual savings.
			Node:   NodePaybackPeriod,
			Inputs: []Node{NodeAdjustedCost, NodeRiskReduction},
			Rule: func(_ Context, v *Values) float64 {
				cost, _ := v.Get(NodeAdjustedCost)
				reduction, _ := v.Get(NodeRiskReduction)
				if reduction > 0 {
					return round((cost/reduction)*MonthsPerYear, 1)
				}
				return PaybackSentinel
			},
		},
	}}
}
