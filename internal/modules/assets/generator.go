package assets

import (
	"fmt"

	"github.com/victorgreggio/capalloc/internal/domain"
)

// Generator produces a deterministic synthetic dataset for benchmarks
// and for seeding a record source. It reproduces the reference
// generator: a fixed-seed LCG, eighteen asset types, five alternatives
// per asset with cost and PoF ranges per action, and safety levels that
// improve with more aggressive actions.
type Generator struct {
	seed uint64
}

// DefaultSeed matches the reference dataset.
const DefaultSeed = 42

var assetTypes = []string{
	"PUMP", "VALVE", "COMPRESSOR", "TANK", "PIPELINE", "HEAT_EXCHANGER",
	"TURBINE", "BOILER", "REACTOR", "SEPARATOR", "CONDENSER", "FURNACE",
	"MOTOR", "GENERATOR", "TRANSFORMER", "SWITCH", "VESSEL", "EXCHANGER",
}

var alternativeNames = []string{"Do_Nothing", "Inspect", "Repair", "Refurbish", "Replace"}

var safetyLevels = []domain.SafetyRiskLevel{
	domain.SafetyNegligible, domain.SafetyLow, domain.SafetyMedium,
	domain.SafetyHigh, domain.SafetyCritical,
}

// NewGenerator creates a generator with the given seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{seed: seed}
}

// next advances the LCG and returns the new state.
func (g *Generator) next() uint64 {
	g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
	return g.seed
}

// Generate produces numAssets assets with one record per alternative
// action.
func (g *Generator) Generate(numAssets int) []domain.Alternative {
	alternatives := make([]domain.Alternative, 0, numAssets*len(alternativeNames))

	for assetNum := 0; assetNum < numAssets; assetNum++ {
		assetType := assetTypes[assetNum%len(assetTypes)]
		assetID := fmt.Sprintf("%s_%04d", assetType, assetNum+1)

		baseCoF := 100000.0 + float64(g.next()%5000000)
		baseSafetyIdx := int(g.next() % 5)

		for altIdx, name := range alternativeNames {
			var cost float64
			switch altIdx {
			case 0: // Do_Nothing
				cost = 0
			case 1: // Inspect
				cost = 5000.0 + float64(g.next()%15000)
			case 2: // Repair
				cost = 20000.0 + float64(g.next()%80000)
			case 3: // Refurbish
				cost = 100000.0 + float64(g.next()%400000)
			default: // Replace
				cost = 0
			}

			var pof float64
			switch altIdx {
			case 0:
				pof = 0.15 + float64(g.next()%30)/100.0
			case 1:
				pof = 0.10 + float64(g.next()%20)/100.0
			case 2:
				pof = 0.04 + float64(g.next()%12)/100.0
			case 3:
				pof = 0.01 + float64(g.next()%5)/100.0
			default:
				pof = 0.5
			}

			// More aggressive actions bring the safety level down.
			safetyIdx := baseSafetyIdx
			if altIdx > 0 {
				safetyIdx = baseSafetyIdx - altIdx
				if safetyIdx < 0 {
					safetyIdx = 0
				}
			}

			alternatives = append(alternatives, domain.Alternative{
				AssetID:               assetID,
				AlternativeID:         name,
				Cost:                  cost,
				ProbabilityPostAction: pof,
				ConsequenceTotal:      baseCoF,
				SafetyRiskLevel:       safetyLevels[safetyIdx],
			})
		}
	}

	return alternatives
}
