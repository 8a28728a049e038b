package fst

import (
	"math"
)

// Concat accepts a string of every operand in sequence. Any empty operand
// makes the result empty.
func Concat(parts ...*Automaton) *Automaton {
	if len(parts) == 0 {
		return Epsilon()
	}
	for _, p := range parts {
		if p.IsEmpty() {
			return Empty()
		}
	}
	b := &builder{}
	var start StateID
	var prevFinals []StateID
	for i, p := range parts {
		offset := b.embed(p)
		pStart := p.start + offset
		if i == 0 {
			start = pStart
		}
		for _, f := range prevFinals {
			st := &b.states[f]
			st.final = false
			b.addArc(f, Arc{In: Eps, Out: Eps, Cost: st.finalCost, Next: pStart})
			st.finalCost = Cost{}
		}
		prevFinals = prevFinals[:0]
		for s := range p.states {
			if p.states[s].final {
				prevFinals = append(prevFinals, StateID(s)+offset)
			}
		}
	}
	return b.build(start)
}

// Union accepts a string of any operand. Alternatives keep argument order.
func Union(alts ...*Automaton) *Automaton {
	var live []*Automaton
	for _, a := range alts {
		if !a.IsEmpty() {
			live = append(live, a)
		}
	}
	if len(live) == 0 {
		return Empty()
	}
	b := &builder{}
	start := b.addState()
	for _, a := range live {
		offset := b.embed(a)
		b.addArc(start, Arc{In: Eps, Out: Eps, Next: a.start + offset})
	}
	return b.build(start)
}

func WeightedUnion(a, bb *Automaton, wa, wb float64) (*Automaton, error) {
	sa, err := Shift(a, wa)
	if err != nil {
		return nil, err
	}
	sb, err := Shift(bb, wb)
	if err != nil {
		return nil, err
	}
	return Union(sa, sb), nil
}

// Star is the Kleene closure of a.
func Star(a *Automaton) *Automaton {
	if a.IsEmpty() {
		return Epsilon()
	}
	b := &builder{}
	start := b.addState()
	b.setFinal(start, Cost{})
	offset := b.embed(a)
	b.addArc(start, Arc{In: Eps, Out: Eps, Next: a.start + offset})
	for s := range a.states {
		if !a.states[s].final {
			continue
		}
		id := StateID(s) + offset
		st := &b.states[id]
		st.final = false
		b.addArc(id, Arc{In: Eps, Out: Eps, Cost: st.finalCost, Next: start})
		st.finalCost = Cost{}
	}
	return b.build(start)
}

// Plus accepts one or more repetitions of a.
func Plus(a *Automaton) *Automaton {
	if a.IsEmpty() {
		return Empty()
	}
	b := &builder{}
	offset := b.embed(a)
	for s := range a.states {
		if a.states[s].final {
			id := StateID(s) + offset
			b.addArc(id, Arc{In: Eps, Out: Eps, Cost: a.states[s].finalCost, Next: a.start + offset})
		}
	}
	return b.build(a.start + offset)
}

func Optional(a *Automaton) *Automaton {
	return Union(a, Epsilon())
}

func validWeight(w float64) bool {
	return w >= 0 && !math.IsNaN(w) && !math.IsInf(w, 0)
}

// Shift adds w to the cost of every path of a.
func Shift(a *Automaton, w float64) (*Automaton, error) {
	if !validWeight(w) {
		return nil, constructionErr("shift", ErrInvalidWeight)
	}
	return addFinal(a, Cost{Weight: w}), nil
}

// MustShift is Shift for constant weights; it panics on an invalid weight.
func MustShift(a *Automaton, w float64) *Automaton {
	res, err := Shift(a, w)
	if err != nil {
		panic(err)
	}
	return res
}

// Rank adds r to the tie-break rank of every path of a.
func Rank(a *Automaton, r int32) (*Automaton, error) {
	if r < 0 {
		return nil, constructionErr("rank", ErrInvalidRank)
	}
	return addFinal(a, Cost{Rank: r}), nil
}

func addFinal(a *Automaton, c Cost) *Automaton {
	if a.IsEmpty() {
		return Empty()
	}
	b := &builder{}
	offset := b.embed(a)
	for i := range b.states {
		if b.states[i].final {
			b.states[i].finalCost = b.states[i].finalCost.Plus(c)
		}
	}
	return b.build(a.start + offset)
}

// Invert swaps the input and output side of every arc. Arcs that consume a
// rune class without echoing it cannot be inverted.
func Invert(a *Automaton) (*Automaton, error) {
	if a.IsEmpty() {
		return Empty(), nil
	}
	b := &builder{}
	for range a.states {
		b.addState()
	}
	for s, st := range a.states {
		for _, arc := range st.arcs {
			switch {
			case arc.In.Kind == Class && arc.Out.Kind == Copy:
			case arc.In.Kind == Class:
				return nil, constructionErr("invert", ErrNotInvertible)
			default:
				arc.In, arc.Out = arc.Out, arc.In
			}
			b.addArc(StateID(s), arc)
		}
		if st.final {
			b.setFinal(StateID(s), st.finalCost)
		}
	}
	return b.build(a.start), nil
}
