package constraint

import (
	"fmt"

	"github.com/funvibe/horn/internal/syntax"
)

// SolverInfo is everything a fixpoint run needs: the constraints, the
// shared environment, each kappa's formal parameters (with the original
// names declared by the well-formedness constraints), and the qualifier
// pool. Front-ends build it; the solver only reads it.
type SolverInfo struct {
	Cs    []*SimpC
	Env   *BindEnv
	Quals []syntax.Qualifier

	// KArgs gives each kappa's formal parameters. The internal formal
	// names are kVarArg$N; Originals carries the user-facing names used
	// when the solution is reported.
	KArgs map[syntax.KVar][]syntax.SortedVar

	// Originals maps each kappa's internal formals back to the names the
	// well-formedness constraint declared. Optional; missing entries are
	// tidied instead of renamed.
	Originals map[syntax.KVar]syntax.Subst

	// Deps is the ranked dependency graph. Finalize builds it when a
	// front-end leaves it nil.
	Deps *Deps
}

// Finalize validates the info and fills in the dependency graph.
func (fi *SolverInfo) Finalize() error {
	if fi.Env == nil {
		fi.Env = NewBindEnv()
	}
	seen := make(map[int]bool, len(fi.Cs))
	for _, c := range fi.Cs {
		if seen[c.ID] {
			return fmt.Errorf("duplicate constraint id %d", c.ID)
		}
		seen[c.ID] = true
		for _, kv := range c.RHSKVars() {
			if _, ok := fi.KArgs[kv.K]; !ok {
				return fmt.Errorf("constraint %d assigns to undeclared kappa %s", c.ID, kv.K)
			}
		}
		if c.IsTarget && len(c.RHSKVars()) > 0 {
			return fmt.Errorf("constraint %d is marked target but assigns to kappas", c.ID)
		}
	}
	if fi.Deps == nil {
		fi.Deps = BuildDeps(fi.Cs, fi.Env)
	}
	return nil
}

// Targets returns the target constraints in input order.
func (fi *SolverInfo) Targets() []*SimpC {
	var out []*SimpC
	for _, c := range fi.Cs {
		if c.IsTarget {
			out = append(out, c)
		}
	}
	return out
}
