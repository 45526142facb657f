package stats

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/horn/internal/session"
)

func sampleReport() *Report {
	c := Counters{Iterations: 3, Ticks: 9, Brackets: 5}
	c.CountQuery(session.Sat)
	c.CountQuery(session.Unsat)
	c.CountQuery(session.Unsat)
	c.CountQuery(session.Unknown)
	return &Report{
		RunID:              "run-1",
		Solver:             "z3",
		Safe:               true,
		Counters:           c,
		ConstraintsPerRank: map[int]int{0: 2, 1: 1},
	}
}

func TestRender(t *testing.T) {
	var b strings.Builder
	sampleReport().Render(&b)
	out := b.String()
	for _, want := range []string{
		"run-1",
		"iterations  3",
		"queries     4 (sat 1, unsat 2, unknown 1)",
		"rank 0",
		"rank 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("ANSI codes leaked into a non-terminal writer")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")
	r := sampleReport()
	if err := r.Save(path); err != nil {
		t.Fatal(err)
	}
	// Saving again must replace, not duplicate.
	if err := r.Save(path); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var solves int
	if err := db.QueryRow(`SELECT COUNT(*) FROM solves`).Scan(&solves); err != nil {
		t.Fatal(err)
	}
	if solves != 1 {
		t.Errorf("solves rows = %d, want 1", solves)
	}

	var unsat int
	if err := db.QueryRow(`SELECT unsat FROM solves WHERE run_id = ?`, "run-1").Scan(&unsat); err != nil {
		t.Fatal(err)
	}
	if unsat != 2 {
		t.Errorf("unsat = %d, want 2", unsat)
	}

	var ranks int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ranks WHERE run_id = ?`, "run-1").Scan(&ranks); err != nil {
		t.Fatal(err)
	}
	if ranks != 2 {
		t.Errorf("rank rows = %d, want 2", ranks)
	}
}
