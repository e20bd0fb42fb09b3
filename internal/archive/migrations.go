package archive

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations are append-only and version-ordered, so the runner only needs
// the highest applied version, not the full applied set.
var migrations = []migration{
	{
		Version:     1,
		Description: "Initial schema",
		SQL: `
CREATE TABLE IF NOT EXISTS analyses (
    station TEXT NOT NULL,
    date DATE NOT NULL,
    impact_category TEXT NOT NULL,
    z_score REAL,
    adjusted_z_score REAL,
    p_value REAL,
    result_json TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (station, date)
);

CREATE INDEX IF NOT EXISTS idx_analyses_date ON analyses(date);
CREATE INDEX IF NOT EXISTS idx_analyses_category ON analyses(impact_category);
`,
	},
}

// Migrate brings the database up to the latest schema version. Safe to run
// on every startup; already-applied versions are skipped.
func (a *Archive) Migrate() error {
	if _, err := a.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME
		)
	`); err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}

	current, err := a.MigrationVersion()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := a.applyMigration(m); err != nil {
			return err
		}
		log.Printf("archive: schema at version %d (%s)", m.Version, m.Description)
	}
	return nil
}

func (a *Archive) applyMigration(m migration) error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return fmt.Errorf("execute migration %d: %w", m.Version, err)
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
		m.Version, m.Description, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("record migration %d: %w", m.Version, err)
	}
	return tx.Commit()
}

// MigrationVersion reports the highest applied schema version, 0 for a
// fresh database.
func (a *Archive) MigrationVersion() (int, error) {
	var version sql.NullInt64
	err := a.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}
