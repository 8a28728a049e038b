package fst

import (
	"fmt"
	"math"
	"strings"
)

type StateID int32

const NoState StateID = -1

const weightTolerance = 1e-9

// Cost is a path cost: Weight is the additive tropical weight, Rank an
// additive tie-break priority compared only when weights are equal.
type Cost struct {
	Weight float64
	Rank   int32
}

func (c Cost) Plus(o Cost) Cost {
	return Cost{Weight: c.Weight + o.Weight, Rank: c.Rank + o.Rank}
}

func (c Cost) Compare(o Cost) int {
	if d := c.Weight - o.Weight; math.Abs(d) > weightTolerance {
		if d < 0 {
			return -1
		}
		return 1
	}
	switch {
	case c.Rank < o.Rank:
		return -1
	case c.Rank > o.Rank:
		return 1
	}
	return 0
}

func (c Cost) Less(o Cost) bool {
	return c.Compare(o) < 0
}

func (c Cost) String() string {
	if c.Rank == 0 {
		return fmt.Sprintf("%g", c.Weight)
	}
	return fmt.Sprintf("%g/%d", c.Weight, c.Rank)
}

type Arc struct {
	In   Label
	Out  Label
	Cost Cost
	Next StateID
}

func (a Arc) isEpsilon() bool {
	return a.In.Kind == EpsilonKind && a.Out.Kind == EpsilonKind
}

type state struct {
	arcs      []Arc
	final     bool
	finalCost Cost
}

// Automaton is a weighted transducer. It is never modified after
// construction, so it can be shared between goroutines.
type Automaton struct {
	states []state
	start  StateID
}

func (a *Automaton) Start() StateID {
	return a.start
}

func (a *Automaton) NumStates() int {
	return len(a.states)
}

// Arcs returns the outgoing arcs of s. The slice must not be modified.
func (a *Automaton) Arcs(s StateID) []Arc {
	return a.states[s].arcs
}

func (a *Automaton) Final(s StateID) (Cost, bool) {
	st := &a.states[s]
	return st.finalCost, st.final
}

// IsEmpty reports whether no final state is reachable from the start.
func (a *Automaton) IsEmpty() bool {
	if a.start == NoState {
		return true
	}
	seen := make([]bool, len(a.states))
	stack := []StateID{a.start}
	seen[a.start] = true
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if a.states[s].final {
			return false
		}
		for _, arc := range a.states[s].arcs {
			if !seen[arc.Next] {
				seen[arc.Next] = true
				stack = append(stack, arc.Next)
			}
		}
	}
	return true
}

type Stats struct {
	States int
	Arcs   int
	Finals int
}

func (a *Automaton) Stats() Stats {
	st := Stats{States: len(a.states)}
	for i := range a.states {
		st.Arcs += len(a.states[i].arcs)
		if a.states[i].final {
			st.Finals++
		}
	}
	return st
}

func (a *Automaton) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "start %d\n", a.start)
	for i, st := range a.states {
		for _, arc := range st.arcs {
			fmt.Fprintf(&sb, "%d -> %d %s:%s %s\n", i, arc.Next, arc.In, arc.Out, arc.Cost)
		}
		if st.final {
			fmt.Fprintf(&sb, "%d final %s\n", i, st.finalCost)
		}
	}
	return sb.String()
}

// Equal reports whether a and b have identical structure: same numbering,
// same arcs in the same order, same final costs.
func Equal(a, b *Automaton) bool {
	if a.start != b.start || len(a.states) != len(b.states) {
		return false
	}
	for i := range a.states {
		sa, sb := &a.states[i], &b.states[i]
		if sa.final != sb.final || (sa.final && sa.finalCost.Compare(sb.finalCost) != 0) {
			return false
		}
		if len(sa.arcs) != len(sb.arcs) {
			return false
		}
		for j := range sa.arcs {
			x, y := sa.arcs[j], sb.arcs[j]
			if x.Next != y.Next || !x.In.sameAs(y.In) || !x.Out.sameAs(y.Out) || x.Cost.Compare(y.Cost) != 0 {
				return false
			}
		}
	}
	return true
}

type builder struct {
	states []state
}

func (b *builder) addState() StateID {
	b.states = append(b.states, state{})
	return StateID(len(b.states) - 1)
}

func (b *builder) setFinal(s StateID, c Cost) {
	b.states[s].final = true
	b.states[s].finalCost = c
}

// addArc normalizes the labels of arc before storing it. Arcs over an empty
// rune set are dropped.
func (b *builder) addArc(s StateID, arc Arc) {
	if arc.In.Kind == Class {
		if arc.In.Set.IsEmpty() {
			return
		}
		if rs := arc.In.Set.ranges; len(rs) == 1 && rs[0].Lo == rs[0].Hi {
			arc.In = Sym(rs[0].Lo)
		}
	}
	if arc.Out.Kind == Copy && arc.In.Kind == Symbol {
		arc.Out = Sym(arc.In.Rune)
	}
	b.states[s].arcs = append(b.states[s].arcs, arc)
}

// embed copies all states of a into b and returns the id offset.
func (b *builder) embed(a *Automaton) StateID {
	offset := StateID(len(b.states))
	for _, st := range a.states {
		arcs := make([]Arc, len(st.arcs))
		for i, arc := range st.arcs {
			arc.Next += offset
			arcs[i] = arc
		}
		b.states = append(b.states, state{arcs: arcs, final: st.final, finalCost: st.finalCost})
	}
	return offset
}

func (b *builder) build(start StateID) *Automaton {
	return &Automaton{states: b.states, start: start}
}
