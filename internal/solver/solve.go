// Package solver runs the predicate-abstraction fixpoint: it drives the
// worklist over the constraint graph, refines the solution through the
// SMT oracle, and builds the final verdict.
package solver

import (
	"fmt"
	"os"
	"sort"

	"github.com/funvibe/horn/internal/config"
	"github.com/funvibe/horn/internal/constraint"
	"github.com/funvibe/horn/internal/session"
	"github.com/funvibe/horn/internal/solution"
	"github.com/funvibe/horn/internal/stats"
	"github.com/funvibe/horn/internal/syntax"
	"github.com/funvibe/horn/internal/worklist"
)

// Eliminator is the kappa-elimination pre-processor hook; it rewrites the
// solver input into an equivalent, smaller one.
type Eliminator interface {
	Eliminate(*constraint.SolverInfo) (*constraint.SolverInfo, error)
}

// GradualSolver replaces the whole fixpoint when cfg.Gradual is set.
type GradualSolver interface {
	Solve(*config.Config, *constraint.SolverInfo) (*Result, error)
}

// Hooks are the optional external collaborators of a solve.
type Hooks struct {
	Eliminator Eliminator
	Gradual    GradualSolver
}

// Solve runs the full pipeline: pre-processing, session startup, the
// fixpoint loop, and result construction. The session is torn down on
// every path; fatal errors (protocol desync, solver errors, bad config)
// surface as the returned error with a Crash result.
func Solve(cfg *config.Config, fi *constraint.SolverInfo, hooks Hooks) (*Result, error) {
	if cfg.Gradual {
		if hooks.Gradual == nil {
			return &Result{Status: Crash}, &config.Error{Option: "gradual", Reason: "no gradual solver registered"}
		}
		return hooks.Gradual.Solve(cfg, fi)
	}

	if err := fi.Finalize(); err != nil {
		return &Result{Status: Crash}, err
	}
	if cfg.UseElim && hooks.Eliminator != nil {
		smaller, err := hooks.Eliminator.Eliminate(fi)
		if err != nil {
			return &Result{Status: Crash}, fmt.Errorf("eliminating kappas: %w", err)
		}
		fi = smaller
		if err := fi.Finalize(); err != nil {
			return &Result{Status: Crash}, err
		}
	}

	sess, err := session.New(cfg)
	if err != nil {
		return &Result{Status: Crash}, err
	}
	defer func() {
		if _, cerr := sess.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "horn: %v\n", cerr)
		}
	}()

	if err := declareAll(sess, fi); err != nil {
		return &Result{Status: Crash}, err
	}

	counters := &stats.Counters{}
	oracle := &SMTOracle{Sess: sess, Stats: counters}
	res, err := run(cfg, fi, oracle, counters)
	if err != nil {
		return &Result{Status: Crash}, err
	}

	res.Stats = report(cfg, fi, sess.RunID, res, counters)
	if cfg.SolverStats {
		res.Stats.Render(os.Stderr)
	}
	if cfg.StatsDB != "" {
		if err := res.Stats.Save(cfg.StatsDB); err != nil {
			res.Warnings = append(res.Warnings, err.Error())
			fmt.Fprintf(os.Stderr, "horn: %v\n", err)
		}
	}
	return res, nil
}

// run is the oracle-parameterised core: the fixpoint loop followed by
// result construction. Tests drive it with a fake oracle.
func run(cfg *config.Config, fi *constraint.SolverInfo, o Oracle, counters *stats.Counters) (*Result, error) {
	sol := solution.Init(fi.KArgs, fi.Quals)
	w := worklist.Init(fi)

	// The tick budget is a safety net over the monotonicity argument; a
	// well-formed run never comes close.
	limit := 32 * (w.WRanks() + 1) * max(1, len(fi.Cs))

	byID := make(map[int]*constraint.SimpC, len(fi.Cs))
	for _, c := range fi.Cs {
		byID[c.ID] = c
	}

	for {
		c, newSCC, _, ok := w.Pop()
		if !ok {
			break
		}
		counters.Ticks++
		if counters.Ticks > limit {
			return nil, &BudgetError{Ticks: counters.Ticks, Limit: limit}
		}
		if newSCC {
			counters.Iterations++
		}

		changed, next, err := RefineC(fi, sol, c, o)
		if err != nil {
			return nil, err
		}
		sol = next
		if changed {
			for _, dep := range fi.Deps.Succs(c.ID) {
				d := byID[dep]
				if d != nil && !d.IsTarget {
					w.Push(d)
				}
			}
		}
	}

	return buildResult(resultConfig{minimal: cfg.MinimalSol}, fi, sol, w, o)
}

// declareAll declares every symbol any assertion can mention: the
// environment bindings, the kappa formals, the uninterpreted applications
// and any remaining free variable (defaulted to Int, the front-end's
// encoding sort).
func declareAll(sess *session.Session, fi *constraint.SolverInfo) error {
	sorts := make(map[syntax.Symbol]syntax.Sort)
	for id := 0; id < fi.Env.Len(); id++ {
		b := fi.Env.Lookup(constraint.BindID(id))
		sorts[b.Sym] = b.Sort
	}
	for _, formals := range fi.KArgs {
		for _, f := range formals {
			sorts[f.Sym] = f.Sort
		}
	}

	apps := make(map[syntax.Symbol]int)
	addFree := func(p syntax.Expr) {
		if p == nil {
			return
		}
		for _, v := range p.FreeVars() {
			if _, ok := sorts[v]; !ok {
				sorts[v] = syntax.IntSort{}
			}
		}
		collectApps(p, apps)
	}
	for id := 0; id < fi.Env.Len(); id++ {
		addFree(fi.Env.Lookup(constraint.BindID(id)).Pred)
	}
	for _, c := range fi.Cs {
		addFree(c.LHS)
		addFree(c.RHS)
	}
	for _, q := range fi.Quals {
		collectApps(q.Body, apps)
	}

	syms := make([]syntax.Symbol, 0, len(sorts))
	for s := range sorts {
		syms = append(syms, s)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	for _, s := range syms {
		if err := sess.DeclareSorted(syntax.SortedVar{Sym: s, Sort: sorts[s]}); err != nil {
			return err
		}
	}

	fns := make([]syntax.Symbol, 0, len(apps))
	for f := range apps {
		if _, declared := sorts[f]; !declared {
			fns = append(fns, f)
		}
	}
	sort.Slice(fns, func(i, j int) bool { return fns[i] < fns[j] })
	for _, f := range fns {
		args := make([]syntax.Sort, apps[f])
		for i := range args {
			args[i] = syntax.IntSort{}
		}
		if err := sess.Declare(f, args, syntax.IntSort{}); err != nil {
			return err
		}
	}
	return nil
}

// collectApps records the arity of every uninterpreted application in p.
func collectApps(p syntax.Expr, apps map[syntax.Symbol]int) {
	switch p := p.(type) {
	case syntax.EApp:
		apps[p.Fn] = len(p.Args)
		for _, a := range p.Args {
			collectApps(a, apps)
		}
	case syntax.ENeg:
		collectApps(p.E, apps)
	case syntax.EBin:
		collectApps(p.L, apps)
		collectApps(p.R, apps)
	case syntax.EAtom:
		collectApps(p.L, apps)
		collectApps(p.R, apps)
	case syntax.PAnd:
		for _, q := range p.Ps {
			collectApps(q, apps)
		}
	case syntax.POr:
		for _, q := range p.Ps {
			collectApps(q, apps)
		}
	case syntax.PNot:
		collectApps(p.P, apps)
	case syntax.PImp:
		collectApps(p.L, apps)
		collectApps(p.R, apps)
	case syntax.PIff:
		collectApps(p.L, apps)
		collectApps(p.R, apps)
	case syntax.PAll:
		collectApps(p.Body, apps)
	case syntax.PExists:
		collectApps(p.Body, apps)
	case syntax.PKVar:
		for _, k := range p.Su.Keys() {
			collectApps(p.Su[k], apps)
		}
	}
}

func report(cfg *config.Config, fi *constraint.SolverInfo, runID string, res *Result, counters *stats.Counters) *stats.Report {
	perRank := make(map[int]int)
	for _, c := range fi.Cs {
		perRank[fi.Deps.Rank(c.ID)]++
	}
	return &stats.Report{
		RunID:              runID,
		Solver:             string(cfg.Solver),
		Safe:               res.Status == Safe,
		Failed:             len(res.Failed),
		Counters:           *counters,
		ConstraintsPerRank: perRank,
	}
}
