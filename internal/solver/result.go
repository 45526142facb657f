package solver

import (
	"fmt"

	"github.com/funvibe/horn/internal/constraint"
	"github.com/funvibe/horn/internal/solution"
	"github.com/funvibe/horn/internal/stats"
	"github.com/funvibe/horn/internal/syntax"
	"github.com/funvibe/horn/internal/worklist"
)

// Status is the overall verdict of a solve.
type Status int

const (
	Safe Status = iota
	Unsafe
	Crash
)

func (s Status) String() string {
	switch s {
	case Safe:
		return "safe"
	case Unsafe:
		return "unsafe"
	}
	return "crash"
}

// FailedConstraint identifies one refuted target with its user tag.
type FailedConstraint struct {
	ID  int
	Tag string
}

// Result is what a solve returns: the verdict, the refuted targets, and
// the inferred predicate for every kappa.
type Result struct {
	Status   Status
	Failed   []FailedConstraint
	Solution map[syntax.KVar]syntax.Expr
	Warnings []string
	Stats    *stats.Report
}

// buildResult classifies the residual targets and materialises the
// solution. It must run while the oracle is still live: both the
// classification and the minimisation pass query it.
func buildResult(cfg resultConfig, fi *constraint.SolverInfo, s *solution.Solution, w *worklist.Worklist, o Oracle) (*Result, error) {
	res := &Result{Solution: make(map[syntax.KVar]syntax.Expr)}

	for _, c := range w.UnsatCandidates() {
		if !c.IsTarget {
			return nil, &MalformedConstraintError{ID: c.ID, Reason: "non-target constraint in unsat candidates"}
		}
		lp := LHSPred(fi, s, c)
		rp := Elaborate(s, c.RHS)
		ok, err := o.Valid(lp, rp)
		if err != nil {
			return nil, err
		}
		if !ok {
			res.Failed = append(res.Failed, FailedConstraint{ID: c.ID, Tag: c.Tag})
		}
	}
	if len(res.Failed) == 0 {
		res.Status = Safe
	} else {
		res.Status = Unsafe
	}

	for _, k := range s.Kappas() {
		conj := s.Get(k).Pred(nil)
		if cfg.minimal {
			min, err := MinimizeConj(o, conj)
			if err != nil {
				return nil, fmt.Errorf("minimising %s: %w", k, err)
			}
			conj = min
		}
		res.Solution[k] = rename(fi, k, conj)
	}
	return res, nil
}

type resultConfig struct {
	minimal bool
}

// rename maps a kappa's internal formals back to the names declared by
// its well-formedness constraint, then tidies any remaining internal
// symbols.
func rename(fi *constraint.SolverInfo, k syntax.KVar, p syntax.Expr) syntax.Expr {
	if ren, ok := fi.Originals[k]; ok && len(ren) > 0 {
		p = p.Apply(ren)
	}
	tidy := make(syntax.Subst)
	for _, v := range p.FreeVars() {
		if t := syntax.Tidy(v); t != v {
			tidy[v] = syntax.ESym{Name: t}
		}
	}
	if len(tidy) == 0 {
		return p
	}
	return p.Apply(tidy)
}

// MinimizeConj drops every conjunct implied by the remaining ones. The
// first conjunct of a mutually-implying pair survives, so the result is
// stable under re-minimisation.
func MinimizeConj(o Oracle, p syntax.Expr) (syntax.Expr, error) {
	rest := syntax.Conjuncts(p)
	if len(rest) <= 1 {
		return p, nil
	}
	// Conjuncts are tried from the last to the first, so of two
	// mutually-implying conjuncts the later one is dropped.
	var keep []syntax.Expr
	for len(rest) > 0 {
		cur := rest[len(rest)-1]
		rest = rest[:len(rest)-1]
		others := make([]syntax.Expr, 0, len(keep)+len(rest))
		others = append(others, rest...)
		others = append(others, keep...)
		implied, err := o.Valid(syntax.PAndOf(others...), cur)
		if err != nil {
			return nil, err
		}
		if !implied {
			keep = append([]syntax.Expr{cur}, keep...)
		}
	}
	return syntax.PAndOf(keep...), nil
}
