// Package solution holds the candidate solution of a fixpoint run: the
// mapping from each kappa to its current qualifier bind. Solutions are
// values; refinement produces a new one and never grows a bind, which is
// what makes the fixpoint terminate.
package solution

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/horn/internal/syntax"
)

// Bind is the ordered sequence of qualifier instances currently believed
// to hold for one kappa. Its conjunction is the kappa's predicate; the
// empty bind is true.
type Bind []syntax.EQual

// Pred is the bind's predicate under su, the substitution of a particular
// kappa application site.
func (b Bind) Pred(su syntax.Subst) syntax.Expr {
	ps := make([]syntax.Expr, 0, len(b))
	for _, eq := range b {
		ps = append(ps, eq.Pred().Apply(su))
	}
	return syntax.PAndOf(ps...)
}

// Solution maps every kappa of the problem to its bind. The key set is
// fixed at Init time and never changes afterwards.
type Solution struct {
	binds map[syntax.KVar]Bind
}

// Init seeds the solution: every kappa starts with each qualifier of the
// pool that instantiates against its formal parameters.
func Init(kargs map[syntax.KVar][]syntax.SortedVar, quals []syntax.Qualifier) *Solution {
	s := &Solution{binds: make(map[syntax.KVar]Bind, len(kargs))}
	for k, formals := range kargs {
		var bind Bind
		for _, q := range quals {
			if eq, ok := syntax.Instantiate(q, formals); ok {
				bind = append(bind, eq)
			}
		}
		s.binds[k] = bind
	}
	return s
}

// Get returns the bind for k. Asking for an unknown kappa is a programmer
// error: the key set is fixed up front.
func (s *Solution) Get(k syntax.KVar) Bind {
	b, ok := s.binds[k]
	if !ok {
		panic(fmt.Sprintf("solution: unknown kappa %s", k))
	}
	return b
}

// Has reports whether k is part of the problem.
func (s *Solution) Has(k syntax.KVar) bool {
	_, ok := s.binds[k]
	return ok
}

// Set replaces the bind for k, returning a new solution value.
func (s *Solution) Set(k syntax.KVar, b Bind) *Solution {
	out := s.clone()
	out.binds[k] = b
	return out
}

// Update restricts each kappa in ks to exactly the qualifiers appearing
// for it in kqs, returning the new solution and whether any bind shrank.
// Update is contracting: a qualifier not already in the bind cannot be
// introduced by it.
func (s *Solution) Update(ks []syntax.KVar, kqs []KQual) (*Solution, bool) {
	kept := make(map[syntax.KVar]map[string]bool, len(ks))
	for _, kq := range kqs {
		m, ok := kept[kq.K]
		if !ok {
			m = make(map[string]bool)
			kept[kq.K] = m
		}
		m[bindKey(kq.Q)] = true
	}

	out := s.clone()
	changed := false
	for _, k := range ks {
		old := s.Get(k)
		next := make(Bind, 0, len(old))
		for _, eq := range old {
			if kept[k][bindKey(eq)] {
				next = append(next, eq)
			}
		}
		if len(next) != len(old) {
			changed = true
		}
		out.binds[k] = next
	}
	return out, changed
}

// KQual marks one qualifier instance as surviving for one kappa.
type KQual struct {
	K syntax.KVar
	Q syntax.EQual
}

// bindKey identifies a qualifier instance within a bind.
func bindKey(eq syntax.EQual) string {
	return eq.Qual.Name + "|" + eq.Pred().String()
}

// Kappas returns the key set in sorted order.
func (s *Solution) Kappas() []syntax.KVar {
	ks := make([]syntax.KVar, 0, len(s.binds))
	for k := range s.binds {
		ks = append(ks, k)
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i] < ks[j] })
	return ks
}

func (s *Solution) clone() *Solution {
	binds := make(map[syntax.KVar]Bind, len(s.binds))
	for k, b := range s.binds {
		binds[k] = b
	}
	return &Solution{binds: binds}
}

func (s *Solution) String() string {
	var b strings.Builder
	for _, k := range s.Kappas() {
		fmt.Fprintf(&b, "%s |-> %s\n", k, s.Get(k).Pred(nil))
	}
	return b.String()
}
