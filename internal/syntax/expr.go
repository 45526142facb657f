package syntax

import (
	"fmt"
	"sort"
	"strings"
)

// Expr is the interface for all expressions and predicates.
type Expr interface {
	String() string
	Apply(Subst) Expr
	FreeVars() []Symbol
}

// ESym is a variable occurrence.
type ESym struct {
	Name Symbol
}

// EInt is an integer literal.
type EInt struct {
	Value int64
}

// EBool is a boolean literal; PTrue and PFalse are the shared instances.
type EBool struct {
	Value bool
}

var (
	PTrue  Expr = EBool{Value: true}
	PFalse Expr = EBool{Value: false}
)

// ArithOp is a binary arithmetic operator.
type ArithOp string

const (
	Plus  ArithOp = "+"
	Minus ArithOp = "-"
	Times ArithOp = "*"
	Div   ArithOp = "/"
	Mod   ArithOp = "mod"
)

// EBin is a binary arithmetic expression.
type EBin struct {
	Op   ArithOp
	L, R Expr
}

// ENeg is unary arithmetic negation.
type ENeg struct {
	E Expr
}

// RelOp is a comparison operator.
type RelOp string

const (
	Eq RelOp = "="
	Ne RelOp = "!="
	Lt RelOp = "<"
	Le RelOp = "<="
	Gt RelOp = ">"
	Ge RelOp = ">="
)

// EAtom is an atomic comparison between two expressions.
type EAtom struct {
	Op   RelOp
	L, R Expr
}

// EApp is an uninterpreted function application.
type EApp struct {
	Fn   Symbol
	Args []Expr
}

// PAnd is n-ary conjunction. Conjunction is always represented this way;
// Conjuncts flattens nesting.
type PAnd struct {
	Ps []Expr
}

// POr is n-ary disjunction.
type POr struct {
	Ps []Expr
}

// PNot is negation.
type PNot struct {
	P Expr
}

// PImp is implication.
type PImp struct {
	L, R Expr
}

// PIff is bi-implication.
type PIff struct {
	L, R Expr
}

// PKVar is an application of the unknown predicate K under the
// substitution Su mapping K's formals to argument expressions.
type PKVar struct {
	K  KVar
	Su Subst
}

// PAll is universal quantification.
type PAll struct {
	Vars []SortedVar
	Body Expr
}

// PExists is existential quantification.
type PExists struct {
	Vars []SortedVar
	Body Expr
}

func (e ESym) String() string  { return string(e.Name) }
func (e EInt) String() string  { return fmt.Sprintf("%d", e.Value) }
func (e EBool) String() string { return fmt.Sprintf("%t", e.Value) }
func (e ENeg) String() string  { return fmt.Sprintf("(- %s)", e.E) }
func (e EBin) String() string  { return fmt.Sprintf("(%s %s %s)", e.L, e.Op, e.R) }
func (e EAtom) String() string { return fmt.Sprintf("(%s %s %s)", e.L, e.Op, e.R) }

func (e EApp) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Fn, strings.Join(args, ", "))
}

func joinPreds(ps []Expr, op string) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")"
}

func (p PAnd) String() string {
	if len(p.Ps) == 0 {
		return "true"
	}
	return joinPreds(p.Ps, "&&")
}

func (p POr) String() string {
	if len(p.Ps) == 0 {
		return "false"
	}
	return joinPreds(p.Ps, "||")
}

func (p PNot) String() string { return fmt.Sprintf("(~ %s)", p.P) }
func (p PImp) String() string { return fmt.Sprintf("(%s => %s)", p.L, p.R) }
func (p PIff) String() string { return fmt.Sprintf("(%s <=> %s)", p.L, p.R) }

func (p PKVar) String() string { return fmt.Sprintf("$%s%s", p.K, p.Su) }

func quantString(kw string, vars []SortedVar, body Expr) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = fmt.Sprintf("%s:%s", v.Sym, v.Sort)
	}
	return fmt.Sprintf("(%s %s. %s)", kw, strings.Join(parts, " "), body)
}

func (p PAll) String() string    { return quantString("forall", p.Vars, p.Body) }
func (p PExists) String() string { return quantString("exists", p.Vars, p.Body) }

// PAndOf builds a flat conjunction: nested PAnds are spliced in, literal
// trues dropped, and the empty and singleton cases collapse.
func PAndOf(ps ...Expr) Expr {
	flat := make([]Expr, 0, len(ps))
	for _, p := range ps {
		for _, c := range Conjuncts(p) {
			if c == nil || isTrue(c) {
				continue
			}
			flat = append(flat, c)
		}
	}
	switch len(flat) {
	case 0:
		return PTrue
	case 1:
		return flat[0]
	}
	return PAnd{Ps: flat}
}

// Conjuncts flattens nested conjunctions into a single list.
func Conjuncts(p Expr) []Expr {
	if p == nil {
		return nil
	}
	and, ok := p.(PAnd)
	if !ok {
		return []Expr{p}
	}
	var out []Expr
	for _, c := range and.Ps {
		out = append(out, Conjuncts(c)...)
	}
	return out
}

func isTrue(p Expr) bool {
	b, ok := p.(EBool)
	return ok && b.Value
}

func (e ESym) FreeVars() []Symbol  { return []Symbol{e.Name} }
func (e EInt) FreeVars() []Symbol  { return nil }
func (e EBool) FreeVars() []Symbol { return nil }
func (e ENeg) FreeVars() []Symbol  { return e.E.FreeVars() }
func (e EBin) FreeVars() []Symbol  { return unionVars(e.L.FreeVars(), e.R.FreeVars()) }
func (e EAtom) FreeVars() []Symbol { return unionVars(e.L.FreeVars(), e.R.FreeVars()) }

func (e EApp) FreeVars() []Symbol {
	var vs []Symbol
	for _, a := range e.Args {
		vs = unionVars(vs, a.FreeVars())
	}
	return vs
}

func (p PAnd) FreeVars() []Symbol { return unionAll(p.Ps) }
func (p POr) FreeVars() []Symbol  { return unionAll(p.Ps) }
func (p PNot) FreeVars() []Symbol { return p.P.FreeVars() }
func (p PImp) FreeVars() []Symbol { return unionVars(p.L.FreeVars(), p.R.FreeVars()) }
func (p PIff) FreeVars() []Symbol { return unionVars(p.L.FreeVars(), p.R.FreeVars()) }

// FreeVars of a kappa application are the free vars of the substitution
// range; the kappa's own formals are bound by the eventual bind expansion.
func (p PKVar) FreeVars() []Symbol {
	var vs []Symbol
	for _, sym := range p.Su.Keys() {
		vs = unionVars(vs, p.Su[sym].FreeVars())
	}
	return vs
}

func (p PAll) FreeVars() []Symbol    { return boundFreeVars(p.Vars, p.Body) }
func (p PExists) FreeVars() []Symbol { return boundFreeVars(p.Vars, p.Body) }

func boundFreeVars(vars []SortedVar, body Expr) []Symbol {
	bound := make(map[Symbol]bool, len(vars))
	for _, v := range vars {
		bound[v.Sym] = true
	}
	var out []Symbol
	for _, s := range body.FreeVars() {
		if !bound[s] {
			out = append(out, s)
		}
	}
	return sortVars(out)
}

func unionAll(ps []Expr) []Symbol {
	var vs []Symbol
	for _, p := range ps {
		vs = unionVars(vs, p.FreeVars())
	}
	return vs
}

// unionVars merges two sorted-unique symbol lists, keeping the result
// sorted and unique so every FreeVars answer is deterministic.
func unionVars(a, b []Symbol) []Symbol {
	if len(a) == 0 {
		return sortVars(b)
	}
	if len(b) == 0 {
		return sortVars(a)
	}
	seen := make(map[Symbol]bool, len(a)+len(b))
	var out []Symbol
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return sortVars(out)
}

func sortVars(vs []Symbol) []Symbol {
	sort.Slice(vs, func(i, j int) bool { return vs[i] < vs[j] })
	out := vs[:0]
	var prev Symbol
	for i, s := range vs {
		if i > 0 && s == prev {
			continue
		}
		out = append(out, s)
		prev = s
	}
	return out
}
