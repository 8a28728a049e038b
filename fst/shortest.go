package fst

import (
	"container/heap"
	"strings"
)

const (
	NoInput  = -1
	NoOutput = rune(-1)
)

// Step is one arc of a path resolved against the input: Input is the
// consumed input offset or NoInput, Output the emitted rune or NoOutput.
type Step struct {
	Input  int
	Output rune
	Cost   Cost
}

type Path struct {
	Steps []Step
	Cost  Cost
}

func (p Path) Output() string {
	var sb strings.Builder
	for _, st := range p.Steps {
		if st.Output != NoOutput {
			sb.WriteRune(st.Output)
		}
	}
	return sb.String()
}

type queueItem struct {
	node int
	cost Cost
	seq  int
}

type costQueue []*queueItem

func (q costQueue) Len() int { return len(q) }

func (q costQueue) Less(i, j int) bool {
	if c := q[i].cost.Compare(q[j].cost); c != 0 {
		return c < 0
	}
	return q[i].seq < q[j].seq
}

func (q costQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *costQueue) Push(x interface{}) { *q = append(*q, x.(*queueItem)) }

func (q *costQueue) Pop() interface{} {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

type searchNode struct {
	state StateID
	pos   int
	cost  Cost
	prev  int
	step  Step
	done  bool
}

type searcher struct {
	a        *Automaton
	input    []rune
	nodes    []searchNode
	index    map[uint64]int
	pq       costQueue
	seq      int
	sink     int
	furthest int
}

// ShortestPath returns the cheapest accepting path of a whose input side is
// exactly input. Among paths of equal cost the one found first in arc order
// wins, so the result is deterministic.
func ShortestPath(a *Automaton, input []rune) (Path, error) {
	if a.IsEmpty() {
		return Path{}, &NoPathError{Offset: 0}
	}
	s := &searcher{a: a, input: input, index: map[uint64]int{}, sink: -1}
	s.relax(-1, a.start, 0, Cost{}, Step{Input: NoInput, Output: NoOutput})
	for s.pq.Len() > 0 {
		it := heap.Pop(&s.pq).(*queueItem)
		if it.node == s.sink {
			return s.path(), nil
		}
		n := &s.nodes[it.node]
		if n.done || n.cost.Less(it.cost) {
			continue
		}
		n.done = true
		if n.pos > s.furthest {
			s.furthest = n.pos
		}
		s.expand(it.node)
	}
	return Path{}, &NoPathError{Offset: s.furthest}
}

func (s *searcher) expand(id int) {
	n := s.nodes[id]
	st := &s.a.states[n.state]
	if n.pos == len(s.input) && st.final {
		s.relaxSink(id, n.cost.Plus(st.finalCost), st.finalCost)
	}
	for _, arc := range st.arcs {
		cost := n.cost.Plus(arc.Cost)
		if arc.In.Kind == EpsilonKind {
			out := NoOutput
			if arc.Out.Kind == Symbol {
				out = arc.Out.Rune
			}
			s.relax(id, arc.Next, n.pos, cost, Step{Input: NoInput, Output: out, Cost: arc.Cost})
			continue
		}
		if n.pos >= len(s.input) {
			continue
		}
		r := s.input[n.pos]
		if !arc.In.Matches(r) {
			continue
		}
		out := NoOutput
		switch arc.Out.Kind {
		case Symbol:
			out = arc.Out.Rune
		case Copy:
			out = r
		}
		s.relax(id, arc.Next, n.pos+1, cost, Step{Input: n.pos, Output: out, Cost: arc.Cost})
	}
}

func (s *searcher) relax(prev int, state StateID, pos int, cost Cost, step Step) {
	key := uint64(uint32(state))<<32 | uint64(uint32(pos))
	id, ok := s.index[key]
	if ok {
		n := &s.nodes[id]
		if n.done || !cost.Less(n.cost) {
			return
		}
		n.cost, n.prev, n.step = cost, prev, step
	} else {
		id = len(s.nodes)
		s.index[key] = id
		s.nodes = append(s.nodes, searchNode{state: state, pos: pos, cost: cost, prev: prev, step: step})
	}
	s.push(id, cost)
}

func (s *searcher) relaxSink(prev int, cost, final Cost) {
	step := Step{Input: NoInput, Output: NoOutput, Cost: final}
	if s.sink < 0 {
		s.sink = len(s.nodes)
		s.nodes = append(s.nodes, searchNode{state: NoState, pos: len(s.input), cost: cost, prev: prev, step: step})
	} else {
		n := &s.nodes[s.sink]
		if !cost.Less(n.cost) {
			return
		}
		n.cost, n.prev, n.step = cost, prev, step
	}
	s.push(s.sink, cost)
}

func (s *searcher) push(id int, cost Cost) {
	s.seq++
	heap.Push(&s.pq, &queueItem{node: id, cost: cost, seq: s.seq})
}

func (s *searcher) path() Path {
	sink := s.nodes[s.sink]
	var steps []Step
	for id := s.sink; id >= 0; id = s.nodes[id].prev {
		n := s.nodes[id]
		if n.prev < 0 {
			break
		}
		steps = append(steps, n.step)
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return Path{Steps: steps, Cost: sink.cost}
}
