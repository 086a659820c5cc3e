// Package assets provides the record sources feeding the engine: CSV
// files, a SQLite table, and a synthetic dataset generator. All sources
// yield the same six-field alternative records.
package assets

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/victorgreggio/capalloc/internal/domain"
)

// Column names of the tabular record format.
const (
	ColAssetID         = "Asset_ID"
	ColAlternativeID   = "Alternative_ID"
	ColCost            = "Cost_USD"
	ColPoFPostAction   = "PoF_Post_Action"
	ColCoFTotal        = "CoF_Total_USD"
	ColSafetyRiskLevel = "Safety_Risk_Level"
)

var requiredColumns = []string{
	ColAssetID, ColAlternativeID, ColCost, ColPoFPostAction, ColCoFTotal, ColSafetyRiskLevel,
}

// CSVSource loads alternative records from a CSV file with the six
// reference columns. Column order is taken from the header row.
type CSVSource struct {
	path string
}

// NewCSVSource creates a CSV-backed record source.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// LoadAll reads and parses every record in the file.
func (s *CSVSource) LoadAll() ([]domain.Alternative, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	return parseCSV(f)
}

func parseCSV(r io.Reader) ([]domain.Alternative, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("CSV header missing required column %q", name)
		}
	}

	var alternatives []domain.Alternative
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV line %d: %w", line, err)
		}

		alt, err := parseRecord(record, columns)
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: %w", line, err)
		}
		alternatives = append(alternatives, alt)
	}

	return alternatives, nil
}

func parseRecord(record []string, columns map[string]int) (domain.Alternative, error) {
	cost, err := strconv.ParseFloat(record[columns[ColCost]], 64)
	if err != nil {
		return domain.Alternative{}, fmt.Errorf("parse %s: %w", ColCost, err)
	}
	pof, err := strconv.ParseFloat(record[columns[ColPoFPostAction]], 64)
	if err != nil {
		return domain.Alternative{}, fmt.Errorf("parse %s: %w", ColPoFPostAction, err)
	}
	cof, err := strconv.ParseFloat(record[columns[ColCoFTotal]], 64)
	if err != nil {
		return domain.Alternative{}, fmt.Errorf("parse %s: %w", ColCoFTotal, err)
	}

	return domain.Alternative{
		AssetID:               record[columns[ColAssetID]],
		AlternativeID:         record[columns[ColAlternativeID]],
		Cost:                  cost,
		ProbabilityPostAction: pof,
		ConsequenceTotal:      cof,
		SafetyRiskLevel:       domain.SafetyRiskLevel(record[columns[ColSafetyRiskLevel]]),
	}, nil
}

// WriteCSV writes alternatives in the reference CSV format.
func WriteCSV(w io.Writer, alternatives []domain.Alternative) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(requiredColumns); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, alt := range alternatives {
		record := []string{
			alt.AssetID,
			alt.AlternativeID,
			strconv.FormatFloat(alt.Cost, 'f', 2, 64),
			strconv.FormatFloat(alt.ProbabilityPostAction, 'f', 4, 64),
			strconv.FormatFloat(alt.ConsequenceTotal, 'f', 2, 64),
			string(alt.SafetyRiskLevel),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
