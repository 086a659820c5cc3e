package assets

import (
	"fmt"

	"github.com/victorgreggio/capalloc/internal/database"
	"github.com/victorgreggio/capalloc/internal/domain"
)

// SQLiteSource loads alternative records from the alternatives table.
type SQLiteSource struct {
	db *database.DB
}

// NewSQLiteSource creates a SQLite-backed record source and ensures the
// schema exists.
func NewSQLiteSource(db *database.DB) (*SQLiteSource, error) {
	s := &SQLiteSource{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSource) ensureSchema() error {
	_, err := s.db.Conn().Exec(`
		CREATE TABLE IF NOT EXISTS alternatives (
			asset_id          TEXT NOT NULL,
			alternative_id    TEXT NOT NULL,
			cost_usd          REAL NOT NULL,
			pof_post_action   REAL NOT NULL,
			cof_total_usd     REAL NOT NULL,
			safety_risk_level TEXT NOT NULL,
			PRIMARY KEY (asset_id, alternative_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("create alternatives table: %w", err)
	}
	return nil
}

// LoadAll reads every alternative record, ordered by asset then
// alternative for stable batch output.
func (s *SQLiteSource) LoadAll() ([]domain.Alternative, error) {
	rows, err := s.db.Conn().Query(`
		SELECT asset_id, alternative_id, cost_usd, pof_post_action, cof_total_usd, safety_risk_level
		FROM alternatives
		ORDER BY asset_id, alternative_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query alternatives: %w", err)
	}
	defer rows.Close()

	var alternatives []domain.Alternative
	for rows.Next() {
		var alt domain.Alternative
		var level string
		if err := rows.Scan(&alt.AssetID, &alt.AlternativeID, &alt.Cost,
			&alt.ProbabilityPostAction, &alt.ConsequenceTotal, &level); err != nil {
			return nil, fmt.Errorf("scan alternative: %w", err)
		}
		alt.SafetyRiskLevel = domain.SafetyRiskLevel(level)
		alternatives = append(alternatives, alt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alternatives: %w", err)
	}

	return alternatives, nil
}

// ReplaceAll replaces the table contents with the given records in one
// transaction. Used to seed the source from a generator or a CSV import.
func (s *SQLiteSource) ReplaceAll(alternatives []domain.Alternative) error {
	tx, err := s.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM alternatives`); err != nil {
		return fmt.Errorf("clear alternatives: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO alternatives (asset_id, alternative_id, cost_usd, pof_post_action, cof_total_usd, safety_risk_level)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, alt := range alternatives {
		if _, err := stmt.Exec(alt.AssetID, alt.AlternativeID, alt.Cost,
			alt.ProbabilityPostAction, alt.ConsequenceTotal, string(alt.SafetyRiskLevel)); err != nil {
			return fmt.Errorf("insert alternative %s: %w", alt.Key(), err)
		}
	}

	return tx.Commit()
}

// Count returns the number of stored alternative records.
func (s *SQLiteSource) Count() (int, error) {
	var n int
	if err := s.db.Conn().QueryRow(`SELECT COUNT(*) FROM alternatives`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count alternatives: %w", err)
	}
	return n, nil
}
