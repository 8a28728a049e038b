package fst

// Compose feeds the output side of a into the input side of b. Pairs of
// states are explored breadth-first from the pair of start states; no
// epsilon filter is applied, redundant epsilon interleavings only add paths
// of identical cost.
func Compose(a, b *Automaton) *Automaton {
	if a.IsEmpty() || b.IsEmpty() {
		return Empty()
	}
	type pair struct {
		p, q StateID
	}
	bld := &builder{}
	ids := map[pair]StateID{}
	var queue []pair
	lookup := func(p pair) StateID {
		if id, ok := ids[p]; ok {
			return id
		}
		id := bld.addState()
		ids[p] = id
		queue = append(queue, p)
		return id
	}
	start := lookup(pair{a.start, b.start})
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		src := ids[cur]
		sa, sb := &a.states[cur.p], &b.states[cur.q]
		if sa.final && sb.final {
			bld.setFinal(src, sa.finalCost.Plus(sb.finalCost))
		}
		for _, x := range sa.arcs {
			if x.Out.Kind == EpsilonKind {
				next := lookup(pair{x.Next, cur.q})
				bld.addArc(src, Arc{In: x.In, Out: Eps, Cost: x.Cost, Next: next})
			}
		}
		for _, y := range sb.arcs {
			if y.In.Kind == EpsilonKind {
				next := lookup(pair{cur.p, y.Next})
				bld.addArc(src, Arc{In: Eps, Out: y.Out, Cost: y.Cost, Next: next})
			}
		}
		for _, x := range sa.arcs {
			if x.Out.Kind == EpsilonKind {
				continue
			}
			for _, y := range sb.arcs {
				if y.In.Kind == EpsilonKind {
					continue
				}
				in, out, ok := matchArcs(x, y)
				if !ok {
					continue
				}
				next := lookup(pair{x.Next, y.Next})
				bld.addArc(src, Arc{In: in, Out: out, Cost: x.Cost.Plus(y.Cost), Next: next})
			}
		}
	}
	return connect(bld.build(start))
}

// matchArcs unifies the output of x with the input of y.
func matchArcs(x, y Arc) (Label, Label, bool) {
	switch x.Out.Kind {
	case Symbol:
		r := x.Out.Rune
		if !y.In.Matches(r) {
			return Label{}, Label{}, false
		}
		out := y.Out
		if out.Kind == Copy {
			out = Sym(r)
		}
		return x.In, out, true
	case Copy:
		// x.In is a class here; its consumed rune flows through.
		switch y.In.Kind {
		case Symbol:
			if !x.In.Matches(y.In.Rune) {
				return Label{}, Label{}, false
			}
			return y.In, y.Out, true
		case Class:
			set := x.In.Set.Intersect(y.In.Set)
			if set.IsEmpty() {
				return Label{}, Label{}, false
			}
			return ClassOf(set), y.Out, true
		}
	}
	return Label{}, Label{}, false
}
