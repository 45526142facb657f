// Package stats collects and reports fixpoint run statistics: worklist
// activity, SMT query counts and per-rank constraint tables. The summary
// renders to any writer, with colour when that writer is a terminal, and
// can be persisted to a sqlite database.
package stats

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/horn/internal/session"
)

// Counters accumulate during a solve.
type Counters struct {
	// Iterations counts new-SCC pops reported by the worklist.
	Iterations int
	// Ticks counts every worklist pop.
	Ticks int
	// Brackets counts oracle filter brackets.
	Brackets int

	SatQueries     int
	UnsatQueries   int
	UnknownQueries int
}

// CountQuery tallies one check-sat verdict.
func (c *Counters) CountQuery(r session.CheckResult) {
	switch r {
	case session.Sat:
		c.SatQueries++
	case session.Unsat:
		c.UnsatQueries++
	default:
		c.UnknownQueries++
	}
}

// Queries is the total number of check-sat calls.
func (c *Counters) Queries() int {
	return c.SatQueries + c.UnsatQueries + c.UnknownQueries
}

// Report is the finished summary of one solve.
type Report struct {
	RunID    string
	Solver   string
	Safe     bool
	Failed   int
	Counters Counters

	// ConstraintsPerRank maps SCC rank to constraint count.
	ConstraintsPerRank map[int]int
}

const (
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Render writes the summary tables. Headings are bold only when w is a
// terminal.
func (r *Report) Render(w io.Writer) {
	bold, reset := "", ""
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		bold, reset = ansiBold, ansiReset
	}

	fmt.Fprintf(w, "%ssolver stats%s (run %s, %s)\n", bold, reset, r.RunID, r.Solver)
	fmt.Fprintf(w, "  iterations  %d\n", r.Counters.Iterations)
	fmt.Fprintf(w, "  ticks       %d\n", r.Counters.Ticks)
	fmt.Fprintf(w, "  brackets    %d\n", r.Counters.Brackets)
	fmt.Fprintf(w, "  queries     %d (sat %d, unsat %d, unknown %d)\n",
		r.Counters.Queries(), r.Counters.SatQueries, r.Counters.UnsatQueries, r.Counters.UnknownQueries)

	if len(r.ConstraintsPerRank) > 0 {
		fmt.Fprintf(w, "%sconstraints by rank%s\n", bold, reset)
		ranks := make([]int, 0, len(r.ConstraintsPerRank))
		for rank := range r.ConstraintsPerRank {
			ranks = append(ranks, rank)
		}
		sort.Ints(ranks)
		for _, rank := range ranks {
			fmt.Fprintf(w, "  rank %-4d %d\n", rank, r.ConstraintsPerRank[rank])
		}
	}
}
