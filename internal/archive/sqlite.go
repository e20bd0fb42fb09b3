// Package archive persists completed analysis results so repeat requests
// for the same (station, date) pair are served without recomputation. A
// result is immutable once its source data is loaded, which makes this a
// straight read-through cache: misses are normal, never errors.
package archive

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/idrees-mahmood/mcbmap/internal/metrics"
	"github.com/idrees-mahmood/mcbmap/internal/models"
)

type Archive struct {
	db *sql.DB
}

// New wraps an open database handle. Callers run Migrate before first use.
func New(db *sql.DB) *Archive {
	return &Archive{db: db}
}

// Put stores a result, replacing any earlier one for the same station and
// date. The full result is kept as JSON; the headline columns exist so the
// archive can be queried without deserializing.
func (a *Archive) Put(r *models.AnalysisResult) error {
	blob, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding analysis result: %w", err)
	}
	_, err = a.db.Exec(`
		INSERT INTO analyses (station, date, impact_category, z_score, adjusted_z_score, p_value, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(station, date) DO UPDATE SET
			impact_category = excluded.impact_category,
			z_score = excluded.z_score,
			adjusted_z_score = excluded.adjusted_z_score,
			p_value = excluded.p_value,
			result_json = excluded.result_json
	`, r.Station, r.Date.Format("2006-01-02"), string(r.ImpactCategory),
		nullFloat(r.ZScore), nullFloat(r.AdjustedZScore), nullFloat(r.PValue), string(blob))
	return err
}

// Get returns the stored result for the station and date, or nil when none
// has been archived.
func (a *Archive) Get(station string, date time.Time) (*models.AnalysisResult, error) {
	var blob string
	err := a.db.QueryRow(
		`SELECT result_json FROM analyses WHERE station = ? AND date = ?`,
		station, date.Format("2006-01-02"),
	).Scan(&blob)
	if err == sql.ErrNoRows {
		metrics.ArchiveRequestsTotal.WithLabelValues("miss").Inc()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	metrics.ArchiveRequestsTotal.WithLabelValues("hit").Inc()

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(blob), &result); err != nil {
		return nil, fmt.Errorf("decoding archived result: %w", err)
	}
	return &result, nil
}

// CategoryCounts reports how many archived analyses fell into each impact
// category, for operational summaries.
func (a *Archive) CategoryCounts() (map[models.ImpactCategory]int, error) {
	rows, err := a.db.Query(`SELECT impact_category, COUNT(*) FROM analyses GROUP BY impact_category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.ImpactCategory]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[models.ImpactCategory(category)] = n
	}
	return counts, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
