package worklist

import (
	"testing"

	"github.com/funvibe/horn/internal/constraint"
	"github.com/funvibe/horn/internal/syntax"
)

func kapp(k syntax.KVar, arg syntax.Symbol) syntax.Expr {
	return syntax.PKVar{K: k, Su: syntax.Subst{syntax.KArg(1): syntax.ESym{Name: arg}}}
}

func chainInfo() *constraint.SolverInfo {
	fi := &constraint.SolverInfo{
		Env: constraint.NewBindEnv(),
		Cs: []*constraint.SimpC{
			{ID: 1, LHS: syntax.PTrue, RHS: kapp("k1", "x")},
			{ID: 2, LHS: kapp("k1", "x"), RHS: kapp("k2", "x")},
			{ID: 3, LHS: kapp("k2", "x"), RHS: syntax.EAtom{Op: syntax.Ge, L: syntax.ESym{Name: "x"}, R: syntax.EInt{}}, IsTarget: true},
		},
		KArgs: map[syntax.KVar][]syntax.SortedVar{
			"k1": {{Sym: syntax.KArg(1), Sort: syntax.IntSort{}}},
			"k2": {{Sym: syntax.KArg(1), Sort: syntax.IntSort{}}},
		},
	}
	if err := fi.Finalize(); err != nil {
		panic(err)
	}
	return fi
}

func TestPopRankOrder(t *testing.T) {
	w := Init(chainInfo())

	c, newSCC, _, ok := w.Pop()
	if !ok || c.ID != 1 {
		t.Fatalf("first pop = %v, want constraint 1", c)
	}
	if !newSCC {
		t.Error("first pop must open a new SCC")
	}
	c, newSCC, _, ok = w.Pop()
	if !ok || c.ID != 2 {
		t.Fatalf("second pop = %v, want constraint 2", c)
	}
	if !newSCC {
		t.Error("constraint 2 is in a different SCC")
	}
	if _, _, _, ok := w.Pop(); ok {
		t.Error("target constraint leaked into the queue")
	}
}

// TestFixpointAfterRequeue drains the queue, requeues one constraint, and
// checks the queue yields exactly that constraint before draining again.
func TestFixpointAfterRequeue(t *testing.T) {
	fi := chainInfo()
	w := Init(fi)
	for {
		if _, _, _, ok := w.Pop(); !ok {
			break
		}
	}

	w.Push(fi.Cs[1]) // constraint 2
	c, _, _, ok := w.Pop()
	if !ok || c.ID != 2 {
		t.Fatalf("pop after push = %v", c)
	}
	if _, _, _, ok := w.Pop(); ok {
		t.Error("queue not empty at fixpoint")
	}
}

func TestDoublePushIsNoop(t *testing.T) {
	fi := chainInfo()
	w := Init(fi)
	for {
		if _, _, _, ok := w.Pop(); !ok {
			break
		}
	}
	w.Push(fi.Cs[0])
	w.Push(fi.Cs[0])
	if _, _, _, ok := w.Pop(); !ok {
		t.Fatal("expected one queued constraint")
	}
	if _, _, _, ok := w.Pop(); ok {
		t.Error("double push queued the constraint twice")
	}
}

// TestRequeueGoesBehindPeers: a re-pushed constraint must come off after
// same-rank constraints that were queued earlier.
func TestRequeueGoesBehindPeers(t *testing.T) {
	// Two kappas in one cycle: both constraints share rank and SCC.
	fi := &constraint.SolverInfo{
		Env: constraint.NewBindEnv(),
		Cs: []*constraint.SimpC{
			{ID: 1, LHS: kapp("k1", "x"), RHS: kapp("k2", "x")},
			{ID: 2, LHS: kapp("k2", "x"), RHS: kapp("k1", "x")},
		},
		KArgs: map[syntax.KVar][]syntax.SortedVar{
			"k1": {{Sym: syntax.KArg(1), Sort: syntax.IntSort{}}},
			"k2": {{Sym: syntax.KArg(1), Sort: syntax.IntSort{}}},
		},
	}
	if err := fi.Finalize(); err != nil {
		t.Fatal(err)
	}
	w := Init(fi)

	c, _, _, _ := w.Pop()
	first := c.ID
	w.Push(c) // requeue the popped one; its peer is still queued

	c, _, _, _ = w.Pop()
	if c.ID == first {
		t.Errorf("requeued constraint %d jumped its peer", first)
	}
}

func TestUnsatCandidatesAndWRanks(t *testing.T) {
	w := Init(chainInfo())
	ts := w.UnsatCandidates()
	if len(ts) != 1 || ts[0].ID != 3 {
		t.Errorf("UnsatCandidates = %v", ts)
	}
	if w.WRanks() != 3 {
		t.Errorf("WRanks = %d, want 3", w.WRanks())
	}
}
