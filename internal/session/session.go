// Package session owns the SMT solver subprocess: it serialises commands,
// reads the matching responses and keeps the push/pop discipline. One
// session is single-owner; reading and writing must never interleave
// across goroutines.
package session

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/funvibe/horn/internal/config"
	"github.com/funvibe/horn/internal/smtlib"
	"github.com/funvibe/horn/internal/syntax"
)

// CheckResult is the check-sat verdict.
type CheckResult int

const (
	Sat CheckResult = iota
	Unsat
	Unknown
)

func (r CheckResult) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	}
	return "unknown"
}

// Session is one live solver conversation.
type Session struct {
	cfg    *config.Config
	proc   *exec.Cmd
	stdin  *bufio.Writer
	closer io.Closer
	out    *bufio.Reader
	log    *os.File

	// RunID identifies this solve in the transcript header.
	RunID string
	// Version is the solver-reported version (Z3 only; empty otherwise).
	Version string
}

// Z3 changed its option names in 4.3.2 and grew the string theory in
// 4.4.2.
const (
	z3NewOptions   = "4.3.2"
	z3StringTheory = "4.4.2"
)

// New spawns the configured solver, queries its version, and writes the
// option preamble. The returned session must be closed on every path.
func New(cfg *config.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	argv := cfg.Solver.Command()
	if cfg.Binary != "" {
		argv[0] = cfg.Binary
	}
	bin, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, &StartupError{Solver: string(cfg.Solver), Reason: err.Error()}
	}

	proc := exec.Command(bin, argv[1:]...)
	stdinPipe, err := proc.StdinPipe()
	if err != nil {
		return nil, &StartupError{Solver: string(cfg.Solver), Reason: err.Error()}
	}
	stdoutPipe, err := proc.StdoutPipe()
	if err != nil {
		return nil, &StartupError{Solver: string(cfg.Solver), Reason: err.Error()}
	}
	proc.Stderr = os.Stderr
	if err := proc.Start(); err != nil {
		return nil, &StartupError{Solver: string(cfg.Solver), Reason: err.Error()}
	}

	s := &Session{
		cfg:    cfg,
		proc:   proc,
		stdin:  bufio.NewWriter(stdinPipe),
		closer: stdinPipe,
		out:    bufio.NewReader(stdoutPipe),
		RunID:  uuid.NewString(),
	}
	if err := s.openLog(); err != nil {
		s.abort()
		return nil, err
	}
	if err := s.initSolver(); err != nil {
		s.abort()
		return nil, err
	}
	return s, nil
}

// openLog creates the <target>.smt2 sidecar when logging is on.
func (s *Session) openLog() error {
	if !s.cfg.SMTLog {
		return nil
	}
	target := s.cfg.Target
	if target == "" {
		target = "horn"
	}
	path := target + ".smt2"
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating smt log: %w", err)
	}
	s.log = f
	fmt.Fprintf(f, "; solver %s run %s\n", s.cfg.Solver, s.RunID)
	return nil
}

// initSolver queries the version and writes the option preamble.
func (s *Session) initSolver() error {
	if s.cfg.Solver == config.Z3 {
		if err := s.write(smtlib.GetInfo{Flag: "version"}); err != nil {
			return err
		}
		line, err := s.readLine()
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		s.Version = extractVersion(line)
		s.logf("; SMT Says: %s", line)
	}

	if s.cfg.StringTheory {
		if s.cfg.Solver != config.Z3 || !versionAtLeast(s.Version, z3StringTheory) {
			return &config.Error{
				Option: "stringTheory",
				Reason: fmt.Sprintf("requires Z3 >= %s, have %s %s", z3StringTheory, s.cfg.Solver, s.Version),
			}
		}
	}

	for _, c := range s.preamble() {
		if err := s.write(c); err != nil {
			return err
		}
	}
	return s.stdin.Flush()
}

// preamble is the per-solver option block. Z3's option names changed in
// 4.3.2, so the spelling depends on the reported version.
func (s *Session) preamble() []smtlib.Command {
	switch s.cfg.Solver {
	case config.Z3:
		var cmds []smtlib.Command
		if versionAtLeast(s.Version, z3NewOptions) {
			cmds = []smtlib.Command{
				smtlib.SetOption{Name: "auto-config", Value: "false"},
				smtlib.SetOption{Name: "model", Value: "true"},
				smtlib.SetOption{Name: "model.partial", Value: "false"},
			}
			if !s.cfg.Extensionality {
				cmds = append(cmds, smtlib.SetOption{Name: "smt.mbqi", Value: "false"})
			}
		} else {
			cmds = []smtlib.Command{
				smtlib.SetOption{Name: "auto-config", Value: "false"},
				smtlib.SetOption{Name: "model", Value: "true"},
				smtlib.SetOption{Name: "model-partial", Value: "false"},
			}
			if !s.cfg.Extensionality {
				cmds = append(cmds, smtlib.SetOption{Name: "mbqi", Value: "false"})
			}
		}
		return cmds
	case config.CVC4:
		return []smtlib.Command{smtlib.SetOption{Name: "produce-models", Value: "true"}}
	}
	return nil
}

// Config exposes the session's configuration for downstream consumers
// (normalisation toggles and friends).
func (s *Session) Config() *config.Config { return s.cfg }

// write serialises one command, terminates it with a line feed, flushes,
// and mirrors it to the log.
func (s *Session) write(c smtlib.Command) error {
	line := smtlib.CommandString(c)
	if _, err := s.stdin.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("writing to solver: %w", err)
	}
	if err := s.stdin.Flush(); err != nil {
		return fmt.Errorf("flushing to solver: %w", err)
	}
	s.logf("%s", line)
	return nil
}

func (s *Session) readLine() (string, error) {
	line, err := s.out.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading from solver: %w", err)
	}
	return line, nil
}

// read parses exactly one response, pulling extra lines as the parser
// requires. A parse failure means the conversation desynchronised and is
// fatal.
func (s *Session) read() (smtlib.Response, error) {
	first, err := s.readLine()
	if err != nil {
		return nil, err
	}
	resp, err := smtlib.ParseResponse(first, s.readLine)
	if err != nil {
		return nil, err
	}
	s.logf("; SMT Says: %s", resp)
	return resp, nil
}

func (s *Session) logf(format string, args ...any) {
	if s.log == nil {
		return
	}
	fmt.Fprintf(s.log, format+"\n", args...)
}

// Raw sends a pre-serialised SMT-LIB2 line without expecting a reply.
// Used by the script passthrough; the fixpoint core never calls it.
func (s *Session) Raw(line string) error {
	if _, err := s.stdin.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("writing to solver: %w", err)
	}
	if err := s.stdin.Flush(); err != nil {
		return fmt.Errorf("flushing to solver: %w", err)
	}
	s.logf("%s", line)
	return nil
}

// Declare introduces sym with the given argument and return sorts.
func (s *Session) Declare(sym syntax.Symbol, args []syntax.Sort, ret syntax.Sort) error {
	return s.write(smtlib.Declare{Name: sym, Args: args, Ret: ret})
}

// DeclareSorted declares a variable, decomposing a functional sort into
// argument and return parts.
func (s *Session) DeclareSorted(v syntax.SortedVar) error {
	if fs, ok := v.Sort.(syntax.FuncSort); ok {
		return s.Declare(v.Sym, fs.Args, fs.Ret)
	}
	return s.Declare(v.Sym, nil, v.Sort)
}

// Assert adds p to the current scope.
func (s *Session) Assert(p syntax.Expr) error {
	return s.write(smtlib.Assert{P: p})
}

// AssertWithTrigger adds p annotated with instantiation patterns.
func (s *Session) AssertWithTrigger(p syntax.Expr, triggers []syntax.Expr) error {
	return s.write(smtlib.AssertTrigger{P: p, Triggers: triggers})
}

// Distinct asserts pairwise disequality.
func (s *Session) Distinct(es []syntax.Expr) error {
	return s.write(smtlib.Distinct{Es: es})
}

// Push opens a scope.
func (s *Session) Push() error { return s.write(smtlib.Push{}) }

// Pop discards the innermost scope.
func (s *Session) Pop() error { return s.write(smtlib.Pop{}) }

// Bracket runs body between a push and a pop; the pop happens on every
// exit path so a failing body cannot leak assertions into the outer scope.
func (s *Session) Bracket(label string, body func() error) error {
	s.logf("; begin %s", label)
	if err := s.Push(); err != nil {
		return err
	}
	defer func() {
		if err := s.Pop(); err != nil {
			fmt.Fprintf(os.Stderr, "horn: pop after %s: %v\n", label, err)
		}
		s.logf("; end %s", label)
	}()
	return body()
}

// CheckSat asks the solver for a verdict on the current assertions.
func (s *Session) CheckSat() (CheckResult, error) {
	if err := s.write(smtlib.CheckSat{}); err != nil {
		return Unknown, err
	}
	resp, err := s.read()
	if err != nil {
		return Unknown, err
	}
	switch r := resp.(type) {
	case smtlib.Sat:
		return Sat, nil
	case smtlib.Unsat:
		return Unsat, nil
	case smtlib.Unknown:
		return Unknown, nil
	case smtlib.Error:
		return Unknown, &SolverError{Cmd: "check-sat", Msg: r.Msg}
	}
	return Unknown, &smtlib.ParseError{Input: resp.String()}
}

// CheckUnsat reports whether the current assertions are unsatisfiable.
func (s *Session) CheckUnsat() (bool, error) {
	r, err := s.CheckSat()
	return r == Unsat, err
}

// CheckSatIsSat reports whether the current assertions are satisfiable.
// Unknown counts as not-sat.
func (s *Session) CheckSatIsSat() (bool, error) {
	r, err := s.CheckSat()
	return r == Sat, err
}

// GetValue queries model values for the given symbols.
func (s *Session) GetValue(syms []syntax.Symbol) ([]smtlib.ValuePair, error) {
	if err := s.write(smtlib.GetValue{Syms: syms}); err != nil {
		return nil, err
	}
	resp, err := s.read()
	if err != nil {
		return nil, err
	}
	switch r := resp.(type) {
	case smtlib.Values:
		return r.Pairs, nil
	case smtlib.Error:
		return nil, &SolverError{Cmd: "get-value", Msg: r.Msg}
	}
	return nil, &smtlib.ParseError{Input: resp.String()}
}

// abort tears the subprocess down after a failed startup.
func (s *Session) abort() {
	_ = s.closer.Close()
	_ = s.proc.Process.Kill()
	_, _ = s.proc.Process.Wait()
	if s.log != nil {
		_ = s.log.Close()
	}
}

// Close sends (exit), releases the handles and waits for the subprocess.
// IO errors while closing handles are reported on stderr but do not mask
// the exit code.
func (s *Session) Close() (int, error) {
	_ = s.write(smtlib.Exit{})
	if err := s.closer.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "horn: closing solver stdin: %v\n", err)
	}
	if s.log != nil {
		if err := s.log.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "horn: closing smt log: %v\n", err)
		}
	}
	err := s.proc.Wait()
	code := s.proc.ProcessState.ExitCode()
	if err != nil && code < 0 {
		return code, fmt.Errorf("waiting for solver: %w", err)
	}
	return code, nil
}
