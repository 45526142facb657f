package solver

import (
	"math"

	"github.com/funvibe/horn/internal/syntax"
)

// boundsOracle decides implications between conjunctions of single
// variable integer bounds (x op c). It gives the fixpoint tests a
// deterministic oracle with no solver subprocess behind it.
type boundsOracle struct{}

func (boundsOracle) FilterValid(lhs syntax.Expr, cands []Candidate) ([]Candidate, error) {
	var valid []Candidate
	for _, c := range cands {
		ok, err := boundsOracle{}.Valid(lhs, c.Pred)
		if err != nil {
			return nil, err
		}
		if ok {
			valid = append(valid, c)
		}
	}
	return valid, nil
}

type interval struct {
	lo, hi int64
}

func (boundsOracle) Valid(p, q syntax.Expr) (bool, error) {
	env, feasible := intervalsOf(p)
	if !feasible {
		return true, nil // vacuous
	}
	for _, atom := range syntax.Conjuncts(q) {
		if !atomHolds(env, atom) {
			return false, nil
		}
	}
	return true, nil
}

// intervalsOf folds the conjuncts of p into per-variable intervals.
// feasible is false when some interval is empty.
func intervalsOf(p syntax.Expr) (map[syntax.Symbol]interval, bool) {
	env := make(map[syntax.Symbol]interval)
	for _, c := range syntax.Conjuncts(p) {
		if b, ok := c.(syntax.EBool); ok {
			if !b.Value {
				return nil, false
			}
			continue
		}
		sym, op, n, ok := boundAtom(c)
		if !ok {
			continue
		}
		iv, seen := env[sym]
		if !seen {
			iv = interval{lo: math.MinInt64, hi: math.MaxInt64}
		}
		switch op {
		case syntax.Eq:
			iv.lo = max64(iv.lo, n)
			iv.hi = min64(iv.hi, n)
		case syntax.Ge:
			iv.lo = max64(iv.lo, n)
		case syntax.Gt:
			iv.lo = max64(iv.lo, n+1)
		case syntax.Le:
			iv.hi = min64(iv.hi, n)
		case syntax.Lt:
			iv.hi = min64(iv.hi, n-1)
		}
		env[sym] = iv
	}
	for _, iv := range env {
		if iv.lo > iv.hi {
			return nil, false
		}
	}
	return env, true
}

func atomHolds(env map[syntax.Symbol]interval, atom syntax.Expr) bool {
	if b, ok := atom.(syntax.EBool); ok {
		return b.Value
	}
	sym, op, n, ok := boundAtom(atom)
	if !ok {
		return false
	}
	iv, seen := env[sym]
	if !seen {
		iv = interval{lo: math.MinInt64, hi: math.MaxInt64}
	}
	switch op {
	case syntax.Eq:
		return iv.lo == n && iv.hi == n
	case syntax.Ne:
		return n < iv.lo || n > iv.hi
	case syntax.Ge:
		return iv.lo >= n
	case syntax.Gt:
		return iv.lo > n
	case syntax.Le:
		return iv.hi <= n
	case syntax.Lt:
		return iv.hi < n
	}
	return false
}

func boundAtom(p syntax.Expr) (syntax.Symbol, syntax.RelOp, int64, bool) {
	a, ok := p.(syntax.EAtom)
	if !ok {
		return "", "", 0, false
	}
	sym, ok := a.L.(syntax.ESym)
	if !ok {
		return "", "", 0, false
	}
	n, ok := a.R.(syntax.EInt)
	if !ok {
		return "", "", 0, false
	}
	return sym.Name, a.Op, n.Value, true
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
