// Package config holds the solver configuration.
//
// A Config can be built programmatically by a front-end or loaded from a
// horn.yaml file. Every toggle consumed by the fixpoint core lives here;
// options that only steer upstream normalisation (AlphaEquivalence,
// BetaEquivalence, NormalForm) are carried through so downstream consumers
// can read them off the session.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SolverKind selects the SMT solver subprocess.
type SolverKind string

const (
	Z3      SolverKind = "z3"
	MathSAT SolverKind = "mathsat"
	CVC4    SolverKind = "cvc4"
)

// Command returns the argv used to spawn the solver.
func (k SolverKind) Command() []string {
	switch k {
	case Z3:
		return []string{"z3", "-smt2", "-in"}
	case MathSAT:
		return []string{"mathsat", "-input=smt2"}
	case CVC4:
		return []string{"cvc4", "--incremental", "-L", "smtlib2"}
	}
	return nil
}

func (k SolverKind) valid() bool {
	switch k {
	case Z3, MathSAT, CVC4:
		return true
	}
	return false
}

// UnmarshalYAML validates the solver name while decoding.
func (k *SolverKind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	kind := SolverKind(s)
	if !kind.valid() {
		return fmt.Errorf("unknown solver %q (want z3, mathsat or cvc4)", s)
	}
	*k = kind
	return nil
}

// Config is the full set of solver options.
type Config struct {
	// Solver is the SMT backend to spawn.
	Solver SolverKind `yaml:"solver"`

	// Binary overrides the solver executable. The default command line for
	// Solver is kept, with its argv[0] replaced. Mainly used by tests and by
	// installations with a non-PATH solver.
	Binary string `yaml:"binary,omitempty"`

	// Extensionality, when false, disables model-based quantifier
	// instantiation on Z3 (:smt.mbqi false).
	Extensionality bool `yaml:"extensionality"`

	// AlphaEquivalence, BetaEquivalence and NormalForm steer expression
	// normalisation upstream; the core only surfaces them on the session.
	AlphaEquivalence bool `yaml:"alphaEquivalence"`
	BetaEquivalence  bool `yaml:"betaEquivalence"`
	NormalForm       bool `yaml:"normalForm"`

	// StringTheory requires Z3 >= 4.4.2; initialisation fails otherwise.
	StringTheory bool `yaml:"stringTheory"`

	// UseElim applies the kappa-elimination pre-processor to the solver
	// input before the fixpoint runs.
	UseElim bool `yaml:"useElim"`

	// MinimalSol drops conjuncts implied by the rest of their bind when
	// the solution is materialised.
	MinimalSol bool `yaml:"minimalSol"`

	// SolverStats emits a worklist/constraint summary after solving.
	SolverStats bool `yaml:"solverStats"`

	// Gradual delegates the whole solve to an external gradual solver.
	Gradual bool `yaml:"gradual"`

	// SMTLog mirrors the SMT conversation to <Target>.smt2.
	SMTLog bool `yaml:"smtLog"`

	// Target is the constraint file name; it anchors the SMT log path and
	// appears in diagnostics. Optional.
	Target string `yaml:"target,omitempty"`

	// StatsDB, when set, persists solve summaries to this sqlite database.
	StatsDB string `yaml:"statsDB,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given:
// Z3, minimisation on, everything else off.
func DefaultConfig() *Config {
	return &Config{
		Solver:     Z3,
		MinimalSol: true,
	}
}

// Load reads and validates a yaml config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks option consistency that does not need a live solver.
// Version-dependent checks (StringTheory) happen at session startup.
func (c *Config) Validate() error {
	if !c.Solver.valid() {
		return &Error{Option: "solver", Reason: fmt.Sprintf("unknown solver %q", c.Solver)}
	}
	if c.StringTheory && c.Solver != Z3 {
		return &Error{Option: "stringTheory", Reason: fmt.Sprintf("not supported by %s", c.Solver)}
	}
	return nil
}

// Error reports an unusable configuration.
type Error struct {
	Option string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config option %s: %s", e.Option, e.Reason)
}
