package solver

import (
	"fmt"

	"github.com/funvibe/horn/internal/constraint"
	"github.com/funvibe/horn/internal/solution"
	"github.com/funvibe/horn/internal/syntax"
)

// LHSPred assembles the antecedent of a constraint under the current
// solution: the environment refinements, then the constraint's own LHS,
// with every kappa application expanded to its bind's conjunction. The
// conjunct order follows the environment index list and is deterministic.
func LHSPred(fi *constraint.SolverInfo, s *solution.Solution, c *constraint.SimpC) syntax.Expr {
	ps := make([]syntax.Expr, 0, len(c.Env)+1)
	for _, id := range c.Env {
		b := fi.Env.Lookup(id)
		if b.Pred == nil {
			continue
		}
		ps = append(ps, Elaborate(s, b.Pred))
	}
	ps = append(ps, Elaborate(s, c.LHS))
	return syntax.PAndOf(ps...)
}

// Elaborate replaces every kappa application in p with the conjunction of
// its current bind under the application's substitution. The result is
// kappa-free and ready for the wire.
func Elaborate(s *solution.Solution, p syntax.Expr) syntax.Expr {
	if p == nil {
		return syntax.PTrue
	}
	switch p := p.(type) {
	case syntax.PKVar:
		if !s.Has(p.K) {
			panic(fmt.Sprintf("solver: kappa %s not in solution", p.K))
		}
		return s.Get(p.K).Pred(p.Su)
	case syntax.PAnd:
		return syntax.PAnd{Ps: elaborateAll(s, p.Ps)}
	case syntax.POr:
		return syntax.POr{Ps: elaborateAll(s, p.Ps)}
	case syntax.PNot:
		return syntax.PNot{P: Elaborate(s, p.P)}
	case syntax.PImp:
		return syntax.PImp{L: Elaborate(s, p.L), R: Elaborate(s, p.R)}
	case syntax.PIff:
		return syntax.PIff{L: Elaborate(s, p.L), R: Elaborate(s, p.R)}
	case syntax.PAll:
		return syntax.PAll{Vars: p.Vars, Body: Elaborate(s, p.Body)}
	case syntax.PExists:
		return syntax.PExists{Vars: p.Vars, Body: Elaborate(s, p.Body)}
	}
	return p
}

func elaborateAll(s *solution.Solution, ps []syntax.Expr) []syntax.Expr {
	out := make([]syntax.Expr, len(ps))
	for i, p := range ps {
		out[i] = Elaborate(s, p)
	}
	return out
}
