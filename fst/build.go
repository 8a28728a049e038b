package fst

import (
	"unicode/utf8"
)

// Empty returns the automaton of the empty language.
func Empty() *Automaton {
	return &Automaton{start: NoState}
}

// Epsilon accepts only the empty string.
func Epsilon() *Automaton {
	b := &builder{}
	s := b.addState()
	b.setFinal(s, Cost{})
	return b.build(s)
}

func Accept(s string) *Automaton {
	return Cross(s, s)
}

// Cross maps in to out rune by rune. The shorter side is padded with
// epsilons.
func Cross(in, out string) *Automaton {
	ir, or := []rune(in), []rune(out)
	n := len(ir)
	if len(or) > n {
		n = len(or)
	}
	b := &builder{}
	start := b.addState()
	cur := start
	for i := 0; i < n; i++ {
		arc := Arc{In: Eps, Out: Eps}
		if i < len(ir) {
			arc.In = Sym(ir[i])
		}
		if i < len(or) {
			arc.Out = Sym(or[i])
		}
		next := b.addState()
		arc.Next = next
		b.addArc(cur, arc)
		cur = next
	}
	b.setFinal(cur, Cost{})
	return b.build(start)
}

func Insert(s string) *Automaton {
	return Cross("", s)
}

func Delete(s string) *Automaton {
	return Cross(s, "")
}

// AcceptSet accepts exactly one rune of set and echoes it.
func AcceptSet(set *RuneSet) *Automaton {
	return oneRune(set, CopyOut)
}

// Identity accepts any string over set and echoes it.
func Identity(set *RuneSet) *Automaton {
	return Star(AcceptSet(set))
}

// DeleteSet consumes exactly one rune of set and outputs nothing.
func DeleteSet(set *RuneSet) *Automaton {
	return oneRune(set, Eps)
}

func oneRune(set *RuneSet, out Label) *Automaton {
	if set.IsEmpty() {
		return Empty()
	}
	b := &builder{}
	start := b.addState()
	end := b.addState()
	b.addArc(start, Arc{In: ClassOf(set), Out: out, Next: end})
	b.setFinal(end, Cost{})
	return b.build(start)
}

type Pair struct {
	In  string
	Out string
}

// StringMap builds a transducer mapping every Pair.In to its Pair.Out. The
// inputs share a prefix trie and each output is emitted after its key has
// been read.
func StringMap(pairs []Pair) (*Automaton, error) {
	if len(pairs) == 0 {
		return Empty(), nil
	}
	b := &builder{}
	root := b.addState()
	children := map[StateID]map[rune]StateID{}
	for _, p := range pairs {
		if p.In == "" {
			return nil, constructionErr("string map", ErrEmptyKey)
		}
		if !utf8.ValidString(p.In) || !utf8.ValidString(p.Out) {
			return nil, constructionErr("string map", ErrMalformedTable)
		}
		node := root
		for _, r := range p.In {
			next, ok := children[node][r]
			if !ok {
				next = b.addState()
				if children[node] == nil {
					children[node] = map[rune]StateID{}
				}
				children[node][r] = next
				b.addArc(node, Arc{In: Sym(r), Out: Eps, Next: next})
			}
			node = next
		}
		cur := node
		for _, r := range p.Out {
			next := b.addState()
			b.addArc(cur, Arc{In: Eps, Out: Sym(r), Next: next})
			cur = next
		}
		b.setFinal(cur, Cost{})
	}
	return b.build(root), nil
}
