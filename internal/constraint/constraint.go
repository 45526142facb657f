// Package constraint defines the Horn constraints the solver works on: the
// shared binding environment, the simplified constraint record, and the
// dependency graph grouping constraints into ranked SCCs.
package constraint

import (
	"fmt"

	"github.com/funvibe/horn/internal/syntax"
)

// BindID indexes into the shared binding environment.
type BindID int

// EnvBind is one (symbol, sort, refinement) entry of the environment.
type EnvBind struct {
	Sym  syntax.Symbol
	Sort syntax.Sort
	Pred syntax.Expr
}

// BindEnv is the persistent table of environment bindings shared by all
// constraints; constraints carry only index lists into it.
type BindEnv struct {
	binds []EnvBind
}

// NewBindEnv returns an empty environment.
func NewBindEnv() *BindEnv {
	return &BindEnv{}
}

// Add appends a binding and returns its id.
func (e *BindEnv) Add(sym syntax.Symbol, sort syntax.Sort, pred syntax.Expr) BindID {
	e.binds = append(e.binds, EnvBind{Sym: sym, Sort: sort, Pred: pred})
	return BindID(len(e.binds) - 1)
}

// Lookup returns the binding for id.
func (e *BindEnv) Lookup(id BindID) EnvBind {
	if int(id) < 0 || int(id) >= len(e.binds) {
		panic(fmt.Sprintf("constraint: bind id %d out of range", id))
	}
	return e.binds[id]
}

// Len is the number of bindings in the table.
func (e *BindEnv) Len() int { return len(e.binds) }

// SimpC is one simplified Horn constraint: under the environment bindings
// Env, LHS implies RHS. The RHS is either a conjunction of kappa
// applications (a refining constraint) or a concrete proposition (a
// target whose refutation is a user-visible error).
type SimpC struct {
	ID  int
	Env []BindID
	LHS syntax.Expr
	RHS syntax.Expr

	// Tag is the user tag reported when a target fails.
	Tag string

	// IsTarget marks a leaf constraint with a concrete RHS.
	IsTarget bool
}

func (c *SimpC) String() string {
	return fmt.Sprintf("constraint %d: %s => %s", c.ID, c.LHS, c.RHS)
}

// RHSKVars lists the kappas this constraint assigns to: every kappa
// application in the top-level conjunction of the RHS.
func (c *SimpC) RHSKVars() []syntax.PKVar {
	var ks []syntax.PKVar
	for _, p := range syntax.Conjuncts(c.RHS) {
		if kv, ok := p.(syntax.PKVar); ok {
			ks = append(ks, kv)
		}
	}
	return ks
}

// LHSKVars lists the kappas read on the LHS and in environment
// refinements, in deterministic order.
func (c *SimpC) LHSKVars(env *BindEnv) []syntax.KVar {
	var ks []syntax.KVar
	seen := make(map[syntax.KVar]bool)
	add := func(p syntax.Expr) {
		for _, kv := range kvarsOf(p) {
			if !seen[kv] {
				seen[kv] = true
				ks = append(ks, kv)
			}
		}
	}
	for _, id := range c.Env {
		add(env.Lookup(id).Pred)
	}
	add(c.LHS)
	return ks
}

// kvarsOf walks p collecting kappa applications.
func kvarsOf(p syntax.Expr) []syntax.KVar {
	if p == nil {
		return nil
	}
	switch p := p.(type) {
	case syntax.PKVar:
		return []syntax.KVar{p.K}
	case syntax.PAnd:
		return kvarsOfAll(p.Ps)
	case syntax.POr:
		return kvarsOfAll(p.Ps)
	case syntax.PNot:
		return kvarsOf(p.P)
	case syntax.PImp:
		return append(kvarsOf(p.L), kvarsOf(p.R)...)
	case syntax.PIff:
		return append(kvarsOf(p.L), kvarsOf(p.R)...)
	case syntax.PAll:
		return kvarsOf(p.Body)
	case syntax.PExists:
		return kvarsOf(p.Body)
	}
	return nil
}

func kvarsOfAll(ps []syntax.Expr) []syntax.KVar {
	var out []syntax.KVar
	for _, p := range ps {
		out = append(out, kvarsOf(p)...)
	}
	return out
}
