package solver

import "fmt"

// MalformedConstraintError reports a constraint that violates the shape
// the fixpoint relies on, e.g. a kappa-assigning constraint reaching the
// target classifier. Well-formed front-end input never triggers it.
type MalformedConstraintError struct {
	ID     int
	Reason string
}

func (e *MalformedConstraintError) Error() string {
	return fmt.Sprintf("malformed constraint %d: %s", e.ID, e.Reason)
}

// BudgetError reports that the worklist exceeded its tick budget, which
// can only happen if refinement stopped being monotone.
type BudgetError struct {
	Ticks int
	Limit int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("worklist exceeded %d ticks (limit %d): refinement is not converging", e.Ticks, e.Limit)
}
