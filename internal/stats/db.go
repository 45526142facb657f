package stats

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS solves (
	run_id     TEXT PRIMARY KEY,
	solver     TEXT NOT NULL,
	safe       INTEGER NOT NULL,
	failed     INTEGER NOT NULL,
	iterations INTEGER NOT NULL,
	ticks      INTEGER NOT NULL,
	brackets   INTEGER NOT NULL,
	sat        INTEGER NOT NULL,
	unsat      INTEGER NOT NULL,
	unknown    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS ranks (
	run_id TEXT NOT NULL,
	rank   INTEGER NOT NULL,
	count  INTEGER NOT NULL,
	PRIMARY KEY (run_id, rank)
);`

// Save persists the report to the sqlite database at path, creating the
// schema on first use.
func (r *Report) Save(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening stats db: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating stats schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting stats transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT OR REPLACE INTO solves
		 (run_id, solver, safe, failed, iterations, ticks, brackets, sat, unsat, unknown)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Solver, boolInt(r.Safe), r.Failed,
		r.Counters.Iterations, r.Counters.Ticks, r.Counters.Brackets,
		r.Counters.SatQueries, r.Counters.UnsatQueries, r.Counters.UnknownQueries,
	)
	if err != nil {
		return fmt.Errorf("saving solve row: %w", err)
	}
	for rank, count := range r.ConstraintsPerRank {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO ranks (run_id, rank, count) VALUES (?, ?, ?)`,
			r.RunID, rank, count,
		); err != nil {
			return fmt.Errorf("saving rank row: %w", err)
		}
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
