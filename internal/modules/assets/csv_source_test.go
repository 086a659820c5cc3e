package assets

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorgreggio/capalloc/internal/domain"
)

const sampleCSV = `Asset_ID,Alternative_ID,Cost_USD,PoF_Post_Action,CoF_Total_USD,Safety_Risk_Level
PUMP_001,Refurbish,45000.00,0.0500,500000.00,Low
PUMP_001,Replace,120000.00,0.0100,500000.00,Negligible
VALVE_002,Repair,15000.00,0.0800,250000.00,High
`

func TestCSVSource_LoadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	source := NewCSVSource(path)
	alternatives, err := source.LoadAll()
	require.NoError(t, err)
	require.Len(t, alternatives, 3)

	first := alternatives[0]
	assert.Equal(t, "PUMP_001", first.AssetID)
	assert.Equal(t, "Refurbish", first.AlternativeID)
	assert.Equal(t, 45000.0, first.Cost)
	assert.Equal(t, 0.05, first.ProbabilityPostAction)
	assert.Equal(t, 500000.0, first.ConsequenceTotal)
	assert.Equal(t, domain.SafetyLow, first.SafetyRiskLevel)

	assert.True(t, alternatives[2].IsHighRisk())
}

func TestCSVSource_MissingFile(t *testing.T) {
	source := NewCSVSource(filepath.Join(t.TempDir(), "absent.csv"))
	_, err := source.LoadAll()
	assert.Error(t, err)
}

func TestParseCSV_ShuffledColumns(t *testing.T) {
	shuffled := `Safety_Risk_Level,Asset_ID,Cost_USD,Alternative_ID,CoF_Total_USD,PoF_Post_Action
Critical,TANK_003,200000.00,Replace,2000000.00,0.0200
`
	alternatives, err := parseCSV(strings.NewReader(shuffled))
	require.NoError(t, err)
	require.Len(t, alternatives, 1)

	assert.Equal(t, "TANK_003", alternatives[0].AssetID)
	assert.Equal(t, "Replace", alternatives[0].AlternativeID)
	assert.True(t, alternatives[0].IsCritical())
}

func TestParseCSV_MissingColumn(t *testing.T) {
	_, err := parseCSV(strings.NewReader("Asset_ID,Alternative_ID\nA,B\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cost_USD")
}

func TestParseCSV_BadNumber(t *testing.T) {
	bad := `Asset_ID,Alternative_ID,Cost_USD,PoF_Post_Action,CoF_Total_USD,Safety_Risk_Level
PUMP_001,Repair,not-a-number,0.05,500000,Low
`
	_, err := parseCSV(strings.NewReader(bad))
	assert.Error(t, err)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	original := []domain.Alternative{
		{
			AssetID:               "PUMP_001",
			AlternativeID:         "Refurbish",
			Cost:                  45000,
			ProbabilityPostAction: 0.05,
			ConsequenceTotal:      500000,
			SafetyRiskLevel:       domain.SafetyLow,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, original))

	parsed, err := parseCSV(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, original[0], parsed[0])
}
