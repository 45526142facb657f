// Package worklist schedules constraints for refinement. Constraints come
// off in SCC rank order so dependencies are refined before dependants, and
// a constraint pushed back after a change requeues behind its SCC peers, bounding re-visits
// per round. An empty queue is the fixpoint.
package worklist

import (
	"container/heap"

	"github.com/funvibe/horn/internal/constraint"
)

type item struct {
	c    *constraint.SimpC
	rank int
	gen  int
}

type workHeap []*item

func (h workHeap) Len() int { return len(h) }

func (h workHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	if a.gen != b.gen {
		return a.gen < b.gen
	}
	return a.c.ID < b.c.ID
}

func (h workHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *workHeap) Push(x any) { *h = append(*h, x.(*item)) }

func (h *workHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// Worklist is the scheduling state of one fixpoint run.
type Worklist struct {
	deps    *constraint.Deps
	heap    workHeap
	queued  map[int]bool
	targets []*constraint.SimpC
	gen     int
	lastSCC int
}

// Init seeds the worklist with every refining constraint of fi. Targets
// never enter the queue; they surface through UnsatCandidates once the
// queue drains.
func Init(fi *constraint.SolverInfo) *Worklist {
	w := &Worklist{
		deps:    fi.Deps,
		queued:  make(map[int]bool),
		lastSCC: -1,
	}
	for _, c := range fi.Cs {
		if c.IsTarget || len(c.RHSKVars()) == 0 {
			if c.IsTarget {
				w.targets = append(w.targets, c)
			}
			continue
		}
		w.insert(c)
	}
	return w
}

func (w *Worklist) insert(c *constraint.SimpC) {
	if w.queued[c.ID] {
		return
	}
	w.queued[c.ID] = true
	heap.Push(&w.heap, &item{c: c, rank: w.deps.Rank(c.ID), gen: w.gen})
}

// Pop removes the next constraint in (rank, generation, id) order. newSCC
// is true when the constraint opens a component different from the last
// popped one; the driver bumps its iteration counter on it. The false
// return is the fixpoint: every queued constraint has been popped since
// its last push.
func (w *Worklist) Pop() (c *constraint.SimpC, newSCC bool, rank int, ok bool) {
	if len(w.heap) == 0 {
		return nil, false, 0, false
	}
	it := heap.Pop(&w.heap).(*item)
	delete(w.queued, it.c.ID)
	scc := w.deps.SCC(it.c.ID)
	newSCC = scc != w.lastSCC
	w.lastSCC = scc
	return it.c, newSCC, it.rank, true
}

// Push requeues a constraint, behind its SCC peers already in the queue.
// Pushing a constraint that is already queued is a no-op.
func (w *Worklist) Push(c *constraint.SimpC) {
	w.gen++
	w.insert(c)
}

// UnsatCandidates returns the target constraints, in input order. With the
// queue drained, every ancestor has converged.
func (w *Worklist) UnsatCandidates() []*constraint.SimpC {
	return w.targets
}

// WRanks is the number of distinct SCC ranks; the driver uses it as an
// iteration budget hint.
func (w *Worklist) WRanks() int {
	return w.deps.NumRanks()
}
