package fst

import (
	"encoding/gob"
	"fmt"
	"io"
)

type archive struct {
	Start  int32
	Sets   [][]RuneRange
	States []archiveState
}

type archiveState struct {
	Final     bool
	FinalCost Cost
	Arcs      []archiveArc
}

type archiveLabel struct {
	Kind LabelKind
	Rune rune
	Set  int32
}

type archiveArc struct {
	In   archiveLabel
	Out  archiveLabel
	Cost Cost
	Next int32
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// WriteTo serializes a as a flat gob archive. Rune sets shared between arcs
// are stored once.
func (a *Automaton) WriteTo(w io.Writer) (int64, error) {
	ar := archive{Start: int32(a.start), States: make([]archiveState, len(a.states))}
	setIDs := map[string]int32{}
	encodeLabel := func(l Label) archiveLabel {
		al := archiveLabel{Kind: l.Kind, Rune: l.Rune, Set: -1}
		if l.Kind == Class {
			key := l.Set.String()
			id, ok := setIDs[key]
			if !ok {
				id = int32(len(ar.Sets))
				setIDs[key] = id
				ar.Sets = append(ar.Sets, l.Set.Ranges())
			}
			al.Set = id
		}
		return al
	}
	for i, st := range a.states {
		as := archiveState{Final: st.final, FinalCost: st.finalCost, Arcs: make([]archiveArc, len(st.arcs))}
		for j, arc := range st.arcs {
			as.Arcs[j] = archiveArc{In: encodeLabel(arc.In), Out: encodeLabel(arc.Out), Cost: arc.Cost, Next: int32(arc.Next)}
		}
		ar.States[i] = as
	}
	cw := &countingWriter{w: w}
	err := gob.NewEncoder(cw).Encode(&ar)
	return cw.n, err
}

// ReadFrom decodes an automaton written by WriteTo and validates every
// state reference.
func ReadFrom(r io.Reader) (*Automaton, error) {
	var ar archive
	if err := gob.NewDecoder(r).Decode(&ar); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	n := int32(len(ar.States))
	if n == 0 {
		if ar.Start != int32(NoState) {
			return nil, fmt.Errorf("%w: start %d without states", ErrMalformedArchive, ar.Start)
		}
		return Empty(), nil
	}
	if ar.Start < 0 || ar.Start >= n {
		return nil, fmt.Errorf("%w: start %d out of range", ErrMalformedArchive, ar.Start)
	}
	sets := make([]*RuneSet, len(ar.Sets))
	for i, rs := range ar.Sets {
		sets[i] = NewRuneSet(rs...)
	}
	decodeLabel := func(al archiveLabel) (Label, error) {
		switch al.Kind {
		case EpsilonKind, Copy:
			return Label{Kind: al.Kind}, nil
		case Symbol:
			return Sym(al.Rune), nil
		case Class:
			if al.Set < 0 || int(al.Set) >= len(sets) {
				return Label{}, fmt.Errorf("%w: set %d out of range", ErrMalformedArchive, al.Set)
			}
			return ClassOf(sets[al.Set]), nil
		}
		return Label{}, fmt.Errorf("%w: label kind %d", ErrMalformedArchive, al.Kind)
	}
	states := make([]state, n)
	for i, as := range ar.States {
		arcs := make([]Arc, len(as.Arcs))
		for j, aa := range as.Arcs {
			if aa.Next < 0 || aa.Next >= n {
				return nil, fmt.Errorf("%w: arc target %d out of range", ErrMalformedArchive, aa.Next)
			}
			in, err := decodeLabel(aa.In)
			if err != nil {
				return nil, err
			}
			out, err := decodeLabel(aa.Out)
			if err != nil {
				return nil, err
			}
			arcs[j] = Arc{In: in, Out: out, Cost: aa.Cost, Next: StateID(aa.Next)}
		}
		states[i] = state{arcs: arcs, final: as.Final, finalCost: as.FinalCost}
	}
	return &Automaton{states: states, start: StateID(ar.Start)}, nil
}
