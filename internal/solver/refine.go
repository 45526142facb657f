package solver

import (
	"github.com/funvibe/horn/internal/constraint"
	"github.com/funvibe/horn/internal/solution"
)

// RefineC performs one refinement step on c: the RHS candidates are
// filtered through the oracle against the assembled LHS and each touched
// kappa is restricted to its survivors. The bind of a touched kappa can
// only shrink, so iterating RefineC terminates.
func RefineC(fi *constraint.SolverInfo, s *solution.Solution, c *constraint.SimpC, o Oracle) (bool, *solution.Solution, error) {
	ks, cands := RHSCands(s, c)
	if len(cands) == 0 {
		return false, s, nil
	}

	lhs := LHSPred(fi, s, c)
	valid, err := o.FilterValid(lhs, cands)
	if err != nil {
		return false, s, err
	}

	kqs := make([]solution.KQual, 0, len(valid))
	for _, cand := range valid {
		kqs = append(kqs, solution.KQual{K: cand.K, Q: cand.Q})
	}
	next, changed := s.Update(ks, kqs)
	return changed, next, nil
}
