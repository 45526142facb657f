package solver

import (
	"fmt"

	"github.com/funvibe/horn/internal/constraint"
	"github.com/funvibe/horn/internal/session"
	"github.com/funvibe/horn/internal/solution"
	"github.com/funvibe/horn/internal/stats"
	"github.com/funvibe/horn/internal/syntax"
)

// Candidate pairs a concrete predicate with the (kappa, qualifier) tag
// that produced it. The classifier passes an untagged candidate.
type Candidate struct {
	Pred syntax.Expr
	K    syntax.KVar
	Q    syntax.EQual
}

// Oracle is the narrow validity interface between the fixpoint logic and
// the SMT session. FilterValid keeps the candidates q with p => q valid;
// Valid is the single-query facade over it.
type Oracle interface {
	FilterValid(lhs syntax.Expr, cands []Candidate) ([]Candidate, error)
	Valid(p, q syntax.Expr) (bool, error)
}

// SMTOracle drives a live session. Each FilterValid call is one bracket:
// the LHS is asserted once, then every candidate is tested as
// lhs /\ not q under its own inner scope, so nothing leaks across calls.
type SMTOracle struct {
	Sess  *session.Session
	Stats *stats.Counters
}

func (o *SMTOracle) FilterValid(lhs syntax.Expr, cands []Candidate) ([]Candidate, error) {
	var valid []Candidate
	o.Stats.Brackets++
	err := o.Sess.Bracket("filter-valid", func() error {
		if err := o.Sess.Assert(lhs); err != nil {
			return err
		}
		for _, cand := range cands {
			cand := cand
			err := o.Sess.Bracket("candidate", func() error {
				if err := o.Sess.Assert(syntax.PNot{P: cand.Pred}); err != nil {
					return err
				}
				res, err := o.Sess.CheckSat()
				if err != nil {
					return err
				}
				o.Stats.CountQuery(res)
				if res == session.Unsat {
					valid = append(valid, cand)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("filtering candidates: %w", err)
	}
	return valid, nil
}

func (o *SMTOracle) Valid(p, q syntax.Expr) (bool, error) {
	kept, err := o.FilterValid(p, []Candidate{{Pred: q}})
	if err != nil {
		return false, err
	}
	return len(kept) > 0, nil
}

// RHSCands enumerates the candidates a constraint offers: for every kappa
// application in the RHS conjunction, each qualifier of the current bind
// instantiated under the application's substitution. touched lists the
// kappas whose bind this constraint can shrink.
func RHSCands(s *solution.Solution, c *constraint.SimpC) (touched []syntax.KVar, cands []Candidate) {
	for _, kv := range c.RHSKVars() {
		touched = append(touched, kv.K)
		for _, eq := range s.Get(kv.K) {
			cands = append(cands, Candidate{
				Pred: eq.Pred().Apply(kv.Su),
				K:    kv.K,
				Q:    eq,
			})
		}
	}
	return touched, cands
}
