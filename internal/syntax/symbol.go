package syntax

import (
	"fmt"
	"strings"
)

// Symbol is a textual identifier. Symbols compare by value and are usable
// as map keys throughout the solver.
type Symbol string

// KVar identifies an unknown refinement predicate variable.
type KVar string

// Internal name prefixes. Front-ends introduce kVarArg$N formals when they
// build well-formedness constraints and lq_tmp$N temporaries during ANF
// conversion; both are renamed away before a solution is reported.
const (
	kvarArgPrefix = "kVarArg$"
	tmpPrefix     = "lq_tmp$"
)

// KArg returns the i-th internal kappa formal parameter name (1-based).
func KArg(i int) Symbol {
	return Symbol(fmt.Sprintf("%s%d", kvarArgPrefix, i))
}

// IsKArg reports whether s is an internal kappa formal.
func IsKArg(s Symbol) bool {
	return strings.HasPrefix(string(s), kvarArgPrefix)
}

// Tidy normalises a symbol for external reporting: internal temporaries
// lose their mangling prefix and any $N suffix introduced for uniqueness
// is stripped. Symbols without internal decoration pass through unchanged.
func Tidy(s Symbol) Symbol {
	name := string(s)
	if rest, ok := strings.CutPrefix(name, tmpPrefix); ok {
		name = rest
	}
	if i := strings.LastIndex(name, "$"); i > 0 && allDigits(name[i+1:]) {
		name = name[:i]
	}
	if name == "" {
		return s
	}
	return Symbol(name)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
