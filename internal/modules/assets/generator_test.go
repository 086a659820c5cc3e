package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorgreggio/capalloc/internal/domain"
)

func TestGenerator_Generate(t *testing.T) {
	g := NewGenerator(DefaultSeed)
	alternatives := g.Generate(10)

	require.Len(t, alternatives, 50) // five actions per asset

	byAsset := make(map[string][]domain.Alternative)
	for _, alt := range alternatives {
		byAsset[alt.AssetID] = append(byAsset[alt.AssetID], alt)

		assert.GreaterOrEqual(t, alt.Cost, 0.0)
		assert.GreaterOrEqual(t, alt.ProbabilityPostAction, 0.0)
		assert.LessOrEqual(t, alt.ProbabilityPostAction, 1.0)
		assert.GreaterOrEqual(t, alt.ConsequenceTotal, 100000.0)
	}
	assert.Len(t, byAsset, 10)

	for assetID, group := range byAsset {
		require.Len(t, group, 5, assetID)
		assert.Equal(t, "Do_Nothing", group[0].AlternativeID)
		assert.Zero(t, group[0].Cost)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	first := NewGenerator(DefaultSeed).Generate(25)
	second := NewGenerator(DefaultSeed).Generate(25)
	assert.Equal(t, first, second)
}

func TestGenerator_SeedChangesOutput(t *testing.T) {
	a := NewGenerator(DefaultSeed).Generate(5)
	b := NewGenerator(1234).Generate(5)
	assert.NotEqual(t, a, b)
}

func TestGenerator_UniqueIdentities(t *testing.T) {
	alternatives := NewGenerator(DefaultSeed).Generate(100)

	seen := make(map[domain.Identity]bool)
	for _, alt := range alternatives {
		key := alt.Key()
		assert.False(t, seen[key], "duplicate identity %s", key)
		seen[key] = true
	}
}
