package fst

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

const maxRune = unicode.MaxRune

type RuneRange struct {
	Lo rune
	Hi rune
}

// RuneSet is an immutable set of runes kept as sorted, non-overlapping,
// non-adjacent ranges.
type RuneSet struct {
	ranges []RuneRange
}

func NewRuneSet(ranges ...RuneRange) *RuneSet {
	rs := make([]RuneRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Lo > r.Hi {
			r.Lo, r.Hi = r.Hi, r.Lo
		}
		rs = append(rs, r)
	}
	return &RuneSet{ranges: normalizeRanges(rs)}
}

// SetOf returns the set of runes occurring in s.
func SetOf(s string) *RuneSet {
	rs := make([]RuneRange, 0, len(s))
	for _, r := range s {
		rs = append(rs, RuneRange{r, r})
	}
	return &RuneSet{ranges: normalizeRanges(rs)}
}

func RangeSet(lo, hi rune) *RuneSet {
	return NewRuneSet(RuneRange{lo, hi})
}

// TableSet converts unicode range tables into a RuneSet.
func TableSet(tables ...*unicode.RangeTable) *RuneSet {
	var rs []RuneRange
	for _, t := range tables {
		for _, r16 := range t.R16 {
			rs = appendStride(rs, rune(r16.Lo), rune(r16.Hi), rune(r16.Stride))
		}
		for _, r32 := range t.R32 {
			rs = appendStride(rs, rune(r32.Lo), rune(r32.Hi), rune(r32.Stride))
		}
	}
	return &RuneSet{ranges: normalizeRanges(rs)}
}

func appendStride(rs []RuneRange, lo, hi, stride rune) []RuneRange {
	if stride == 1 {
		return append(rs, RuneRange{lo, hi})
	}
	for r := lo; r <= hi; r += stride {
		rs = append(rs, RuneRange{r, r})
	}
	return rs
}

func normalizeRanges(rs []RuneRange) []RuneRange {
	if len(rs) == 0 {
		return nil
	}
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Lo == rs[j].Lo {
			return rs[i].Hi < rs[j].Hi
		}
		return rs[i].Lo < rs[j].Lo
	})
	out := []RuneRange{rs[0]}
	for _, r := range rs[1:] {
		last := &out[len(out)-1]
		if r.Lo <= last.Hi+1 {
			if r.Hi > last.Hi {
				last.Hi = r.Hi
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *RuneSet) Contains(r rune) bool {
	i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].Hi >= r })
	return i < len(s.ranges) && s.ranges[i].Lo <= r
}

func (s *RuneSet) IsEmpty() bool {
	return len(s.ranges) == 0
}

func (s *RuneSet) Ranges() []RuneRange {
	out := make([]RuneRange, len(s.ranges))
	copy(out, s.ranges)
	return out
}

func (s *RuneSet) Union(other *RuneSet) *RuneSet {
	rs := make([]RuneRange, 0, len(s.ranges)+len(other.ranges))
	rs = append(rs, s.ranges...)
	rs = append(rs, other.ranges...)
	return &RuneSet{ranges: normalizeRanges(rs)}
}

func (s *RuneSet) Intersect(other *RuneSet) *RuneSet {
	var out []RuneRange
	i, j := 0, 0
	for i < len(s.ranges) && j < len(other.ranges) {
		a, b := s.ranges[i], other.ranges[j]
		lo, hi := a.Lo, a.Hi
		if b.Lo > lo {
			lo = b.Lo
		}
		if b.Hi < hi {
			hi = b.Hi
		}
		if lo <= hi {
			out = append(out, RuneRange{lo, hi})
		}
		if a.Hi < b.Hi {
			i++
		} else {
			j++
		}
	}
	return &RuneSet{ranges: out}
}

func (s *RuneSet) Complement() *RuneSet {
	var out []RuneRange
	next := rune(0)
	for _, r := range s.ranges {
		if r.Lo > next {
			out = append(out, RuneRange{next, r.Lo - 1})
		}
		next = r.Hi + 1
	}
	if next <= maxRune {
		out = append(out, RuneRange{next, maxRune})
	}
	return &RuneSet{ranges: out}
}

func (s *RuneSet) Minus(other *RuneSet) *RuneSet {
	return s.Intersect(other.Complement())
}

func (s *RuneSet) Equal(other *RuneSet) bool {
	if s == other {
		return true
	}
	if len(s.ranges) != len(other.ranges) {
		return false
	}
	for i := range s.ranges {
		if s.ranges[i] != other.ranges[i] {
			return false
		}
	}
	return true
}

func (s *RuneSet) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, r := range s.ranges {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if r.Lo == r.Hi {
			fmt.Fprintf(&sb, "%U", r.Lo)
		} else {
			fmt.Fprintf(&sb, "%U-%U", r.Lo, r.Hi)
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

type LabelKind uint8

const (
	// EpsilonKind consumes or produces nothing.
	EpsilonKind LabelKind = iota
	// Symbol is a single rune.
	Symbol
	// Class matches any rune of a set. Input side only.
	Class
	// Copy echoes the rune consumed on the input side. Output side only.
	Copy
)

type Label struct {
	Kind LabelKind
	Rune rune
	Set  *RuneSet
}

var (
	Eps     = Label{Kind: EpsilonKind}
	CopyOut = Label{Kind: Copy}
)

func Sym(r rune) Label {
	return Label{Kind: Symbol, Rune: r}
}

func ClassOf(set *RuneSet) Label {
	return Label{Kind: Class, Set: set}
}

func (l Label) IsEpsilon() bool {
	return l.Kind == EpsilonKind
}

// Matches reports whether an input label accepts rune r.
func (l Label) Matches(r rune) bool {
	switch l.Kind {
	case Symbol:
		return l.Rune == r
	case Class:
		return l.Set.Contains(r)
	}
	return false
}

func (l Label) sameAs(other Label) bool {
	if l.Kind != other.Kind {
		return false
	}
	switch l.Kind {
	case Symbol:
		return l.Rune == other.Rune
	case Class:
		return l.Set.Equal(other.Set)
	}
	return true
}

func (l Label) String() string {
	switch l.Kind {
	case EpsilonKind:
		return "ε"
	case Symbol:
		return fmt.Sprintf("%q", l.Rune)
	case Class:
		return l.Set.String()
	case Copy:
		return "<copy>"
	}
	return "?"
}
