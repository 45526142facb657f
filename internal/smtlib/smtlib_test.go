package smtlib

import (
	"errors"
	"testing"

	"github.com/funvibe/horn/internal/syntax"
)

func TestCommandString(t *testing.T) {
	x := syntax.ESym{Name: "x"}
	zero := syntax.EInt{}
	ten := syntax.EInt{Value: 10}

	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{name: "push", cmd: Push{}, want: "(push 1)"},
		{name: "pop", cmd: Pop{}, want: "(pop 1)"},
		{name: "check-sat", cmd: CheckSat{}, want: "(check-sat)"},
		{
			name: "declare constant",
			cmd:  Declare{Name: "x", Ret: syntax.IntSort{}},
			want: "(declare-fun x () Int)",
		},
		{
			name: "declare function",
			cmd:  Declare{Name: "f", Args: []syntax.Sort{syntax.IntSort{}, syntax.BoolSort{}}, Ret: syntax.IntSort{}},
			want: "(declare-fun f (Int Bool) Int)",
		},
		{
			name: "assert conjunction",
			cmd: Assert{P: syntax.PAnd{Ps: []syntax.Expr{
				syntax.EAtom{Op: syntax.Ge, L: x, R: zero},
				syntax.EAtom{Op: syntax.Le, L: x, R: ten},
			}}},
			want: "(assert (and (>= x 0) (<= x 10)))",
		},
		{
			name: "assert negation",
			cmd:  Assert{P: syntax.PNot{P: syntax.EAtom{Op: syntax.Ge, L: x, R: zero}}},
			want: "(assert (not (>= x 0)))",
		},
		{
			name: "assert with trigger",
			cmd: AssertTrigger{
				P:        syntax.EAtom{Op: syntax.Ge, L: syntax.EApp{Fn: "len", Args: []syntax.Expr{x}}, R: zero},
				Triggers: []syntax.Expr{syntax.EApp{Fn: "len", Args: []syntax.Expr{x}}},
			},
			want: "(assert (! (>= (len x) 0) :pattern ((len x))))",
		},
		{
			name: "distinct",
			cmd:  Distinct{Es: []syntax.Expr{x, zero}},
			want: "(assert (distinct x 0))",
		},
		{
			name: "get-value",
			cmd:  GetValue{Syms: []syntax.Symbol{"x", "y"}},
			want: "(get-value (x y))",
		},
		{
			name: "set-option",
			cmd:  SetOption{Name: "model", Value: "true"},
			want: "(set-option :model true)",
		},
		{name: "get-info", cmd: GetInfo{Flag: "version"}, want: "(get-info :version)"},
	}
	for _, tt := range tests {
		if got := CommandString(tt.cmd); got != tt.want {
			t.Errorf("%s: CommandString = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestExprString(t *testing.T) {
	x := syntax.ESym{Name: "x"}
	tests := []struct {
		name string
		e    syntax.Expr
		want string
	}{
		{name: "negative literal", e: syntax.EInt{Value: -3}, want: "(- 3)"},
		{name: "disequality expands", e: syntax.EAtom{Op: syntax.Ne, L: x, R: syntax.EInt{}}, want: "(not (= x 0))"},
		{name: "implication", e: syntax.PImp{L: syntax.PTrue, R: syntax.PFalse}, want: "(=> true false)"},
		{name: "iff is equality", e: syntax.PIff{L: syntax.PTrue, R: syntax.PFalse}, want: "(= true false)"},
		{name: "mod", e: syntax.EBin{Op: syntax.Mod, L: x, R: syntax.EInt{Value: 2}}, want: "(mod x 2)"},
		{name: "application", e: syntax.EApp{Fn: "len", Args: []syntax.Expr{x}}, want: "(len x)"},
		{name: "empty and", e: syntax.PAnd{}, want: "true"},
		{
			name: "forall",
			e: syntax.PAll{
				Vars: []syntax.SortedVar{{Sym: "v", Sort: syntax.IntSort{}}},
				Body: syntax.EAtom{Op: syntax.Ge, L: syntax.ESym{Name: "v"}, R: syntax.EInt{}},
			},
			want: "(forall ((v Int)) (>= v 0))",
		},
	}
	for _, tt := range tests {
		if got := ExprString(tt.e); got != tt.want {
			t.Errorf("%s: ExprString = %s, want %s", tt.name, got, tt.want)
		}
	}
}

// TestResponseRoundTrip parses each response and re-serialises it; the
// result must reproduce the input.
func TestResponseRoundTrip(t *testing.T) {
	inputs := []string{
		"sat",
		"unsat",
		"unknown",
		`(error "x")`,
		"((a 1) (b (- 2)))",
	}
	for _, in := range inputs {
		resp, err := ParseResponse(in, nil)
		if err != nil {
			t.Errorf("ParseResponse(%q): %v", in, err)
			continue
		}
		if got := resp.String(); got != in {
			t.Errorf("round trip %q -> %q", in, got)
		}
	}
}

func TestParseModel(t *testing.T) {
	resp, err := ParseResponse(`((x 3) (flag true) (n (- 12)))`, nil)
	if err != nil {
		t.Fatal(err)
	}
	vals, ok := resp.(Values)
	if !ok {
		t.Fatalf("got %T, want Values", resp)
	}
	want := []ValuePair{{Sym: "x", Val: "3"}, {Sym: "flag", Val: "true"}, {Sym: "n", Val: "(- 12)"}}
	if len(vals.Pairs) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(vals.Pairs), len(want))
	}
	for i, p := range vals.Pairs {
		if p != want[i] {
			t.Errorf("pair %d = %v, want %v", i, p, want[i])
		}
	}
}

// TestParseMultiLine feeds a response split across lines; the parser must
// pull continuations through the reader.
func TestParseMultiLine(t *testing.T) {
	lines := []string{`(b (- 2)))`}
	more := func() (string, error) {
		if len(lines) == 0 {
			return "", errors.New("exhausted")
		}
		l := lines[0]
		lines = lines[1:]
		return l, nil
	}
	resp, err := ParseResponse("((a 1)", more)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.String(); got != "((a 1)\n(b (- 2)))" && got != "((a 1) (b (- 2)))" {
		t.Errorf("multi-line parse = %q", got)
	}
}

func TestParseErrorResponse(t *testing.T) {
	resp, err := ParseResponse(`(error "line 5: unknown constant")`, nil)
	if err != nil {
		t.Fatal(err)
	}
	e, ok := resp.(Error)
	if !ok {
		t.Fatalf("got %T, want Error", resp)
	}
	if e.Msg != "line 5: unknown constant" {
		t.Errorf("Msg = %q", e.Msg)
	}
}

func TestParseGarbageFails(t *testing.T) {
	if _, err := ParseResponse("model!!", nil); err == nil {
		t.Error("expected parse error on garbage input")
	}
	var pe *ParseError
	_, err := ParseResponse("definitely-not-a-response", nil)
	if !errors.As(err, &pe) {
		t.Errorf("want *ParseError, got %v", err)
	}
}
