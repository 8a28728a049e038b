package fst

import (
	"container/heap"
)

// Optimize removes epsilon:epsilon arcs, merges duplicate parallel arcs,
// drops states that are not on an accepting path and renumbers the states
// breadth-first from the start. The weighted relation is unchanged and
// Optimize(Optimize(a)) is structurally equal to Optimize(a).
func Optimize(a *Automaton) *Automaton {
	if a.IsEmpty() {
		return Empty()
	}
	return connect(dedupe(removeEpsilons(a)))
}

type closureEntry struct {
	state StateID
	cost  Cost
}

// epsilonClosure returns the states reachable from s over epsilon:epsilon
// arcs with their shortest distance, in the order they were settled.
func epsilonClosure(a *Automaton, s StateID) []closureEntry {
	dist := map[StateID]Cost{s: {}}
	done := map[StateID]bool{}
	pq := &costQueue{}
	heap.Push(pq, &queueItem{node: int(s)})
	var seq int
	var out []closureEntry
	for pq.Len() > 0 {
		it := heap.Pop(pq).(*queueItem)
		u := StateID(it.node)
		if done[u] {
			continue
		}
		done[u] = true
		out = append(out, closureEntry{state: u, cost: it.cost})
		for _, arc := range a.states[u].arcs {
			if !arc.isEpsilon() || done[arc.Next] {
				continue
			}
			nc := it.cost.Plus(arc.Cost)
			if old, ok := dist[arc.Next]; ok && !nc.Less(old) {
				continue
			}
			dist[arc.Next] = nc
			seq++
			heap.Push(pq, &queueItem{node: int(arc.Next), cost: nc, seq: seq})
		}
	}
	return out
}

func removeEpsilons(a *Automaton) *Automaton {
	b := &builder{}
	for range a.states {
		b.addState()
	}
	for s := range a.states {
		id := StateID(s)
		closure := epsilonClosure(a, id)
		for _, e := range closure {
			st := &a.states[e.state]
			if st.final {
				fc := e.cost.Plus(st.finalCost)
				if !b.states[id].final || fc.Less(b.states[id].finalCost) {
					b.setFinal(id, fc)
				}
			}
			for _, arc := range st.arcs {
				if arc.isEpsilon() {
					continue
				}
				arc.Cost = e.cost.Plus(arc.Cost)
				b.addArc(id, arc)
			}
		}
	}
	return b.build(a.start)
}

type arcKey struct {
	inKind, outKind LabelKind
	inRune, outRune rune
	inSet           *RuneSet
	next            StateID
}

func dedupe(a *Automaton) *Automaton {
	b := &builder{}
	for range a.states {
		b.addState()
	}
	for s, st := range a.states {
		id := StateID(s)
		seen := map[arcKey]int{}
		for _, arc := range st.arcs {
			k := arcKey{arc.In.Kind, arc.Out.Kind, arc.In.Rune, arc.Out.Rune, arc.In.Set, arc.Next}
			if i, ok := seen[k]; ok {
				if arc.Cost.Less(b.states[id].arcs[i].Cost) {
					b.states[id].arcs[i].Cost = arc.Cost
				}
				continue
			}
			seen[k] = len(b.states[id].arcs)
			b.states[id].arcs = append(b.states[id].arcs, arc)
		}
		if st.final {
			b.setFinal(id, st.finalCost)
		}
	}
	return b.build(a.start)
}

// connect keeps the states that are both accessible and co-accessible and
// renumbers them breadth-first.
func connect(a *Automaton) *Automaton {
	if a.start == NoState {
		return Empty()
	}
	n := len(a.states)
	reverse := make([][]StateID, n)
	for s := range a.states {
		for _, arc := range a.states[s].arcs {
			reverse[arc.Next] = append(reverse[arc.Next], StateID(s))
		}
	}
	coacc := make([]bool, n)
	var stack []StateID
	for s := range a.states {
		if a.states[s].final {
			coacc[s] = true
			stack = append(stack, StateID(s))
		}
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range reverse[s] {
			if !coacc[p] {
				coacc[p] = true
				stack = append(stack, p)
			}
		}
	}
	if !coacc[a.start] {
		return Empty()
	}

	renum := make([]StateID, n)
	for i := range renum {
		renum[i] = NoState
	}
	order := []StateID{a.start}
	renum[a.start] = 0
	for i := 0; i < len(order); i++ {
		for _, arc := range a.states[order[i]].arcs {
			if coacc[arc.Next] && renum[arc.Next] == NoState {
				renum[arc.Next] = StateID(len(order))
				order = append(order, arc.Next)
			}
		}
	}

	b := &builder{states: make([]state, len(order))}
	for i, old := range order {
		st := &a.states[old]
		arcs := make([]Arc, 0, len(st.arcs))
		for _, arc := range st.arcs {
			if renum[arc.Next] == NoState {
				continue
			}
			arc.Next = renum[arc.Next]
			arcs = append(arcs, arc)
		}
		b.states[i] = state{arcs: arcs, final: st.final, finalCost: st.finalCost}
	}
	return b.build(0)
}
