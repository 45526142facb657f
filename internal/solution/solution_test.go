package solution

import (
	"testing"

	"github.com/funvibe/horn/internal/syntax"
)

func intQual(name string, op syntax.RelOp, n int64) syntax.Qualifier {
	return syntax.Qualifier{
		Name:   name,
		Params: []syntax.SortedVar{{Sym: "v", Sort: syntax.IntSort{}}},
		Body:   syntax.EAtom{Op: op, L: syntax.ESym{Name: "v"}, R: syntax.EInt{Value: n}},
	}
}

func oneKappa() map[syntax.KVar][]syntax.SortedVar {
	return map[syntax.KVar][]syntax.SortedVar{
		"k1": {{Sym: syntax.KArg(1), Sort: syntax.IntSort{}}},
	}
}

func TestInitSeedsAllQualifiers(t *testing.T) {
	quals := []syntax.Qualifier{
		intQual("NonNeg", syntax.Ge, 0),
		intQual("AtMostTen", syntax.Le, 10),
	}
	s := Init(oneKappa(), quals)
	if got := len(s.Get("k1")); got != 2 {
		t.Fatalf("bind size = %d, want 2", got)
	}
}

func TestInitSkipsMismatchedSorts(t *testing.T) {
	boolQual := syntax.Qualifier{
		Name:   "IsTrue",
		Params: []syntax.SortedVar{{Sym: "b", Sort: syntax.BoolSort{}}},
		Body:   syntax.ESym{Name: "b"},
	}
	s := Init(oneKappa(), []syntax.Qualifier{boolQual, intQual("NonNeg", syntax.Ge, 0)})
	if got := len(s.Get("k1")); got != 1 {
		t.Errorf("bind size = %d, want 1 (bool qualifier must not fit an int kappa)", got)
	}
}

// TestUpdateContracts verifies that Update only removes qualifiers, flags
// the change, and leaves the original solution value untouched.
func TestUpdateContracts(t *testing.T) {
	quals := []syntax.Qualifier{
		intQual("NonNeg", syntax.Ge, 0),
		intQual("AtLeastFive", syntax.Ge, 5),
	}
	s := Init(oneKappa(), quals)
	bind := s.Get("k1")

	// Only NonNeg survives.
	s2, changed := s.Update([]syntax.KVar{"k1"}, []KQual{{K: "k1", Q: bind[0]}})
	if !changed {
		t.Error("Update did not report a shrinking bind")
	}
	if got := len(s2.Get("k1")); got != 1 {
		t.Fatalf("bind size after update = %d, want 1", got)
	}
	if s2.Get("k1")[0].Qual.Name != "NonNeg" {
		t.Errorf("survivor = %s, want NonNeg", s2.Get("k1")[0].Qual.Name)
	}
	if got := len(s.Get("k1")); got != 2 {
		t.Errorf("original solution mutated: bind size = %d", got)
	}
}

func TestUpdateNoChange(t *testing.T) {
	quals := []syntax.Qualifier{intQual("NonNeg", syntax.Ge, 0)}
	s := Init(oneKappa(), quals)
	bind := s.Get("k1")

	s2, changed := s.Update([]syntax.KVar{"k1"}, []KQual{{K: "k1", Q: bind[0]}})
	if changed {
		t.Error("Update reported change when every qualifier survived")
	}
	if got := len(s2.Get("k1")); got != 1 {
		t.Errorf("bind size = %d, want 1", got)
	}
}

// TestUpdateCannotGrow: a qualifier that is not already in the bind must
// not be introduced by Update.
func TestUpdateCannotGrow(t *testing.T) {
	s := Init(oneKappa(), []syntax.Qualifier{intQual("NonNeg", syntax.Ge, 0)})

	alien, ok := syntax.Instantiate(intQual("Alien", syntax.Le, 99), []syntax.SortedVar{{Sym: syntax.KArg(1), Sort: syntax.IntSort{}}})
	if !ok {
		t.Fatal("instantiate")
	}
	s2, changed := s.Update([]syntax.KVar{"k1"}, []KQual{{K: "k1", Q: alien}})
	if got := len(s2.Get("k1")); got != 0 {
		t.Errorf("bind grew to %d entries", got)
	}
	if !changed {
		t.Error("dropping the only qualifier must count as change")
	}
}

func TestEmptyBindIsTrue(t *testing.T) {
	s := Init(oneKappa(), nil)
	if got := s.Get("k1").Pred(nil).String(); got != "true" {
		t.Errorf("empty bind pred = %s, want true", got)
	}
}

func TestBindPredAppliesSubst(t *testing.T) {
	s := Init(oneKappa(), []syntax.Qualifier{intQual("NonNeg", syntax.Ge, 0)})
	su := syntax.Subst{syntax.KArg(1): syntax.ESym{Name: "x"}}
	if got := s.Get("k1").Pred(su).String(); got != "(x >= 0)" {
		t.Errorf("Pred = %s, want (x >= 0)", got)
	}
}
