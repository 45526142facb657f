// Package smtlib serialises solver commands to SMT-LIB2 and parses the
// solver's responses. The serialiser is a pure function of the command so
// the session's hot validity loop involves no dispatch state.
package smtlib

import (
	"fmt"
	"strings"

	"github.com/funvibe/horn/internal/syntax"
)

// Command is one outbound SMT-LIB2 command.
type Command interface {
	cmdNode()
}

type (
	// Push opens one assertion scope.
	Push struct{}
	// Pop discards the innermost assertion scope.
	Pop struct{}
	// CheckSat asks for satisfiability of the current assertions.
	CheckSat struct{}
	// Exit terminates the solver.
	Exit struct{}

	// Declare introduces an uninterpreted function symbol; a zero-arity
	// declaration is a constant.
	Declare struct {
		Name syntax.Symbol
		Args []syntax.Sort
		Ret  syntax.Sort
	}

	// Assert adds a predicate to the current scope.
	Assert struct {
		P syntax.Expr
	}

	// AssertTrigger adds a predicate annotated with instantiation patterns.
	AssertTrigger struct {
		P        syntax.Expr
		Triggers []syntax.Expr
	}

	// Distinct asserts pairwise disequality of the given expressions.
	Distinct struct {
		Es []syntax.Expr
	}

	// GetValue queries model values for the given symbols.
	GetValue struct {
		Syms []syntax.Symbol
	}

	// SetOption sets a solver option, e.g. (set-option :model true).
	SetOption struct {
		Name  string
		Value string
	}

	// GetInfo queries a solver info flag, e.g. (get-info :version).
	GetInfo struct {
		Flag string
	}
)

func (Push) cmdNode()          {}
func (Pop) cmdNode()           {}
func (CheckSat) cmdNode()      {}
func (Exit) cmdNode()          {}
func (Declare) cmdNode()       {}
func (Assert) cmdNode()        {}
func (AssertTrigger) cmdNode() {}
func (Distinct) cmdNode()      {}
func (GetValue) cmdNode()      {}
func (SetOption) cmdNode()     {}
func (GetInfo) cmdNode()       {}

// CommandString renders a command as one SMT-LIB2 line, without the
// trailing line feed.
func CommandString(c Command) string {
	switch c := c.(type) {
	case Push:
		return "(push 1)"
	case Pop:
		return "(pop 1)"
	case CheckSat:
		return "(check-sat)"
	case Exit:
		return "(exit)"
	case Declare:
		args := make([]string, len(c.Args))
		for i, s := range c.Args {
			args[i] = SortString(s)
		}
		return fmt.Sprintf("(declare-fun %s (%s) %s)", c.Name, strings.Join(args, " "), SortString(c.Ret))
	case Assert:
		return fmt.Sprintf("(assert %s)", ExprString(c.P))
	case AssertTrigger:
		pats := make([]string, len(c.Triggers))
		for i, tr := range c.Triggers {
			pats[i] = ExprString(tr)
		}
		return fmt.Sprintf("(assert (! %s :pattern (%s)))", ExprString(c.P), strings.Join(pats, " "))
	case Distinct:
		es := make([]string, len(c.Es))
		for i, e := range c.Es {
			es[i] = ExprString(e)
		}
		return fmt.Sprintf("(assert (distinct %s))", strings.Join(es, " "))
	case GetValue:
		syms := make([]string, len(c.Syms))
		for i, s := range c.Syms {
			syms[i] = string(s)
		}
		return fmt.Sprintf("(get-value (%s))", strings.Join(syms, " "))
	case SetOption:
		return fmt.Sprintf("(set-option :%s %s)", c.Name, c.Value)
	case GetInfo:
		return fmt.Sprintf("(get-info :%s)", c.Flag)
	}
	panic(fmt.Sprintf("smtlib: unhandled command %T", c))
}

// SortString renders a sort. Functional sorts never reach the wire whole;
// they are split into argument and return sorts at declaration time.
func SortString(s syntax.Sort) string {
	switch s := s.(type) {
	case syntax.IntSort:
		return "Int"
	case syntax.BoolSort:
		return "Bool"
	case syntax.RealSort:
		return "Real"
	case syntax.UninterpSort:
		return s.Name
	case syntax.FuncSort:
		panic("smtlib: functional sort must be decomposed before serialisation")
	}
	panic(fmt.Sprintf("smtlib: unhandled sort %T", s))
}
