package smtlib

import (
	"fmt"
	"strings"

	"github.com/funvibe/horn/internal/syntax"
)

// ExprString renders an expression as an SMT-LIB2 term. Kappa
// applications must have been expanded away by the solution before a
// predicate reaches the wire; hitting one here is a programmer error.
func ExprString(e syntax.Expr) string {
	switch e := e.(type) {
	case syntax.ESym:
		return string(e.Name)
	case syntax.EInt:
		if e.Value < 0 {
			return fmt.Sprintf("(- %d)", -e.Value)
		}
		return fmt.Sprintf("%d", e.Value)
	case syntax.EBool:
		if e.Value {
			return "true"
		}
		return "false"
	case syntax.ENeg:
		return fmt.Sprintf("(- %s)", ExprString(e.E))
	case syntax.EBin:
		return fmt.Sprintf("(%s %s %s)", e.Op, ExprString(e.L), ExprString(e.R))
	case syntax.EAtom:
		if e.Op == syntax.Ne {
			return fmt.Sprintf("(not (= %s %s))", ExprString(e.L), ExprString(e.R))
		}
		return fmt.Sprintf("(%s %s %s)", e.Op, ExprString(e.L), ExprString(e.R))
	case syntax.EApp:
		if len(e.Args) == 0 {
			return string(e.Fn)
		}
		return fmt.Sprintf("(%s %s)", e.Fn, exprList(e.Args))
	case syntax.PAnd:
		if len(e.Ps) == 0 {
			return "true"
		}
		if len(e.Ps) == 1 {
			return ExprString(e.Ps[0])
		}
		return fmt.Sprintf("(and %s)", exprList(e.Ps))
	case syntax.POr:
		if len(e.Ps) == 0 {
			return "false"
		}
		if len(e.Ps) == 1 {
			return ExprString(e.Ps[0])
		}
		return fmt.Sprintf("(or %s)", exprList(e.Ps))
	case syntax.PNot:
		return fmt.Sprintf("(not %s)", ExprString(e.P))
	case syntax.PImp:
		return fmt.Sprintf("(=> %s %s)", ExprString(e.L), ExprString(e.R))
	case syntax.PIff:
		return fmt.Sprintf("(= %s %s)", ExprString(e.L), ExprString(e.R))
	case syntax.PAll:
		return quantString("forall", e.Vars, e.Body)
	case syntax.PExists:
		return quantString("exists", e.Vars, e.Body)
	case syntax.PKVar:
		panic(fmt.Sprintf("smtlib: unexpanded kappa %s reached serialisation", e.K))
	}
	panic(fmt.Sprintf("smtlib: unhandled expression %T", e))
}

func exprList(es []syntax.Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = ExprString(e)
	}
	return strings.Join(parts, " ")
}

func quantString(kw string, vars []syntax.SortedVar, body syntax.Expr) string {
	binds := make([]string, len(vars))
	for i, v := range vars {
		binds[i] = fmt.Sprintf("(%s %s)", v.Sym, SortString(v.Sort))
	}
	return fmt.Sprintf("(%s (%s) %s)", kw, strings.Join(binds, " "), ExprString(body))
}
