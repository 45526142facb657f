package constraint

import (
	"sort"

	"github.com/funvibe/horn/internal/syntax"
)

// Deps is the constraint dependency graph. Edges run from a constraint
// that assigns to a kappa towards each constraint reading that kappa on
// its LHS. Constraints are grouped into strongly connected components and
// every constraint carries the topological rank of its component;
// dependencies always have ranks no larger than their dependants.
type Deps struct {
	succs map[int][]int
	rank  map[int]int
	scc   map[int]int
}

// Succs returns the dependants of constraint id in ascending order.
func (d *Deps) Succs(id int) []int { return d.succs[id] }

// Rank returns the SCC rank of constraint id.
func (d *Deps) Rank(id int) int { return d.rank[id] }

// SCC returns the component index of constraint id.
func (d *Deps) SCC(id int) int { return d.scc[id] }

// NumRanks is the number of distinct SCC ranks.
func (d *Deps) NumRanks() int {
	seen := make(map[int]bool)
	for _, r := range d.rank {
		seen[r] = true
	}
	return len(seen)
}

// BuildDeps constructs the dependency graph of cs: writer -> reader edges
// over shared kappas, Tarjan components, and topological ranks.
func BuildDeps(cs []*SimpC, env *BindEnv) *Deps {
	writers := make(map[syntax.KVar][]int)
	for _, c := range cs {
		for _, kv := range c.RHSKVars() {
			writers[kv.K] = append(writers[kv.K], c.ID)
		}
	}

	succs := make(map[int][]int, len(cs))
	for _, c := range cs {
		succs[c.ID] = nil
	}
	for _, c := range cs {
		for _, k := range c.LHSKVars(env) {
			for _, w := range writers[k] {
				succs[w] = append(succs[w], c.ID)
			}
		}
	}
	for id := range succs {
		succs[id] = dedupSorted(succs[id])
	}

	ids := make([]int, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.ID)
	}
	sort.Ints(ids)

	scc := tarjan(ids, succs)
	rank := rankSCCs(ids, succs, scc)
	return &Deps{succs: succs, rank: rank, scc: scc}
}

func dedupSorted(xs []int) []int {
	if len(xs) == 0 {
		return xs
	}
	sort.Ints(xs)
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

// tarjan assigns each node an SCC index in completion order. Components
// complete in reverse topological order, so an edge u -> v across
// components always has scc[v] < scc[u].
func tarjan(ids []int, succs map[int][]int) map[int]int {
	index := make(map[int]int, len(ids))
	low := make(map[int]int, len(ids))
	onStack := make(map[int]bool, len(ids))
	scc := make(map[int]int, len(ids))
	var stack []int
	next := 0
	nSCC := 0

	var strongconnect func(v int)
	strongconnect = func(v int) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range succs[v] {
			if _, seen := index[w]; !seen {
				strongconnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] && index[w] < low[v] {
				low[v] = index[w]
			}
		}

		if low[v] == index[v] {
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc[w] = nSCC
				if w == v {
					break
				}
			}
			nSCC++
		}
	}

	for _, id := range ids {
		if _, seen := index[id]; !seen {
			strongconnect(id)
		}
	}
	return scc
}

// rankSCCs computes the longest-path rank of every component: a component
// with no cross-component predecessors has rank 0, and each edge bumps
// the dependant past its dependency.
func rankSCCs(ids []int, succs map[int][]int, scc map[int]int) map[int]int {
	sccRank := make(map[int]int)
	type edge struct{ from, to int }
	var edges []edge
	for _, u := range ids {
		for _, v := range succs[u] {
			if scc[u] != scc[v] {
				edges = append(edges, edge{from: scc[u], to: scc[v]})
			}
		}
	}
	// Tarjan indices reverse-topologically order the condensation:
	// dependants finish first. Walk components from the highest index
	// (sources) down, relaxing outgoing edges.
	maxSCC := -1
	for _, c := range scc {
		if c > maxSCC {
			maxSCC = c
		}
	}
	for c := maxSCC; c >= 0; c-- {
		if _, ok := sccRank[c]; !ok {
			sccRank[c] = 0
		}
		for _, e := range edges {
			if e.from == c && sccRank[e.to] < sccRank[c]+1 {
				sccRank[e.to] = sccRank[c] + 1
			}
		}
	}

	rank := make(map[int]int, len(ids))
	for _, id := range ids {
		rank[id] = sccRank[scc[id]]
	}
	return rank
}
