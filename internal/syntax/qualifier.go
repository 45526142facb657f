package syntax

import (
	"fmt"
	"reflect"
	"strings"
)

// Qualifier is a closed, parameterised predicate template. Instantiating
// Params over a kappa's formals yields a concrete candidate predicate.
type Qualifier struct {
	Name   string
	Params []SortedVar
	Body   Expr
}

func (q Qualifier) String() string {
	parts := make([]string, len(q.Params))
	for i, p := range q.Params {
		parts[i] = fmt.Sprintf("%s:%s", p.Sym, p.Sort)
	}
	return fmt.Sprintf("qualif %s(%s): %s", q.Name, strings.Join(parts, ", "), q.Body)
}

// EQual is a qualifier instantiated for a particular kappa: Su maps the
// qualifier's params onto the kappa's formal parameters.
type EQual struct {
	Qual Qualifier
	Su   Subst
}

// Pred is the instantiated predicate, phrased over the kappa's formals.
func (eq EQual) Pred() Expr {
	return eq.Qual.Body.Apply(eq.Su)
}

func (eq EQual) String() string {
	return eq.Pred().String()
}

// Instantiate maps a qualifier positionally onto a kappa's formal
// parameters. The first qualifier param binds to the first formal and so
// on; sorts must agree pointwise. Returns false when arities or sorts do
// not line up.
func Instantiate(q Qualifier, formals []SortedVar) (EQual, bool) {
	if len(q.Params) > len(formals) {
		return EQual{}, false
	}
	su := make(Subst, len(q.Params))
	for i, p := range q.Params {
		if !reflect.DeepEqual(p.Sort, formals[i].Sort) {
			return EQual{}, false
		}
		su[p.Sym] = ESym{Name: formals[i].Sym}
	}
	return EQual{Qual: q, Su: su}, true
}
