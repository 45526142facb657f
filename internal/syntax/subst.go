package syntax

import (
	"fmt"
	"sort"
	"strings"
)

// Subst is a finite mapping from symbols to expressions, applied by
// capture-avoiding substitution. The nil and empty maps are both the
// identity.
type Subst map[Symbol]Expr

// Keys returns the domain in sorted order.
func (s Subst) Keys() []Symbol {
	ks := make([]Symbol, 0, len(s))
	for k := range s {
		ks = append(ks, k)
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i] < ks[j] })
	return ks
}

func (s Subst) String() string {
	parts := make([]string, 0, len(s))
	for _, k := range s.Keys() {
		parts = append(parts, fmt.Sprintf("%s:=%s", k, s[k]))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Compose returns the substitution equivalent to applying s first and t
// second: e.Apply(s.Compose(t)) == e.Apply(s).Apply(t). Composition is
// associative and the identity substitution is its unit.
func (s Subst) Compose(t Subst) Subst {
	if len(s) == 0 {
		return t
	}
	if len(t) == 0 {
		return s
	}
	out := make(Subst, len(s)+len(t))
	for k, e := range s {
		out[k] = e.Apply(t)
	}
	for k, e := range t {
		if _, shadowed := s[k]; !shadowed {
			out[k] = e
		}
	}
	return out
}

// rangeFreeVars collects the free variables of the substitution range.
func (s Subst) rangeFreeVars() map[Symbol]bool {
	vs := make(map[Symbol]bool)
	for _, e := range s {
		for _, v := range e.FreeVars() {
			vs[v] = true
		}
	}
	return vs
}

func (e ESym) Apply(s Subst) Expr {
	if r, ok := s[e.Name]; ok {
		return r
	}
	return e
}

func (e EInt) Apply(Subst) Expr  { return e }
func (e EBool) Apply(Subst) Expr { return e }

func (e ENeg) Apply(s Subst) Expr { return ENeg{E: e.E.Apply(s)} }

func (e EBin) Apply(s Subst) Expr {
	return EBin{Op: e.Op, L: e.L.Apply(s), R: e.R.Apply(s)}
}

func (e EAtom) Apply(s Subst) Expr {
	return EAtom{Op: e.Op, L: e.L.Apply(s), R: e.R.Apply(s)}
}

func (e EApp) Apply(s Subst) Expr {
	args := make([]Expr, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.Apply(s)
	}
	return EApp{Fn: e.Fn, Args: args}
}

func applyAll(ps []Expr, s Subst) []Expr {
	out := make([]Expr, len(ps))
	for i, p := range ps {
		out[i] = p.Apply(s)
	}
	return out
}

func (p PAnd) Apply(s Subst) Expr { return PAnd{Ps: applyAll(p.Ps, s)} }
func (p POr) Apply(s Subst) Expr  { return POr{Ps: applyAll(p.Ps, s)} }
func (p PNot) Apply(s Subst) Expr { return PNot{P: p.P.Apply(s)} }
func (p PImp) Apply(s Subst) Expr { return PImp{L: p.L.Apply(s), R: p.R.Apply(s)} }
func (p PIff) Apply(s Subst) Expr { return PIff{L: p.L.Apply(s), R: p.R.Apply(s)} }

// Apply on a kappa application distributes into the carried substitution.
func (p PKVar) Apply(s Subst) Expr {
	return PKVar{K: p.K, Su: p.Su.Compose(s)}
}

func (p PAll) Apply(s Subst) Expr {
	vars, body := applyBinder(p.Vars, p.Body, s)
	return PAll{Vars: vars, Body: body}
}

func (p PExists) Apply(s Subst) Expr {
	vars, body := applyBinder(p.Vars, p.Body, s)
	return PExists{Vars: vars, Body: body}
}

// applyBinder substitutes under a quantifier. Bound variables shadow the
// substitution; binders that would capture a free variable of the range
// are renamed first.
func applyBinder(vars []SortedVar, body Expr, s Subst) ([]SortedVar, Expr) {
	inner := make(Subst, len(s))
	bound := make(map[Symbol]bool, len(vars))
	for _, v := range vars {
		bound[v.Sym] = true
	}
	for k, e := range s {
		if !bound[k] {
			inner[k] = e
		}
	}
	if len(inner) == 0 {
		return vars, body
	}

	clash := inner.rangeFreeVars()
	avoid := func(sym Symbol) bool {
		if clash[sym] {
			return true
		}
		_, inDom := inner[sym]
		return inDom
	}

	newVars := vars
	renamed := false
	var rename Subst
	for i, v := range vars {
		if !avoid(v.Sym) {
			continue
		}
		if !renamed {
			newVars = make([]SortedVar, len(vars))
			copy(newVars, vars)
			rename = make(Subst)
			renamed = true
		}
		fresh := freshName(v.Sym, func(sym Symbol) bool {
			if avoid(sym) || bound[sym] {
				return false
			}
			for _, b := range body.FreeVars() {
				if b == sym {
					return false
				}
			}
			return true
		})
		newVars[i] = SortedVar{Sym: fresh, Sort: v.Sort}
		rename[v.Sym] = ESym{Name: fresh}
	}
	if renamed {
		body = body.Apply(rename)
	}
	return newVars, body.Apply(inner)
}

// freshName derives the first sym#N acceptable to ok, so renaming is
// deterministic across runs.
func freshName(base Symbol, ok func(Symbol) bool) Symbol {
	for n := 0; ; n++ {
		cand := Symbol(fmt.Sprintf("%s#%d", base, n))
		if ok(cand) {
			return cand
		}
	}
}
