package session

import "fmt"

// SolverError is a solver-reported error on a reading command. The
// conversation cannot be trusted afterwards, so it is fatal to the solve.
type SolverError struct {
	Cmd string
	Msg string
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("solver error on %s: %s", e.Cmd, e.Msg)
}

// StartupError reports a failure to bring the solver subprocess up.
type StartupError struct {
	Solver string
	Reason string
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("starting %s: %s", e.Solver, e.Reason)
}
