package fst

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
)

func transduce(t *testing.T, a *Automaton, in string) string {
	t.Helper()
	p, err := ShortestPath(a, []rune(in))
	require.NoError(t, err, "input %q", in)
	return p.Output()
}

func rejects(t *testing.T, a *Automaton, in string) {
	t.Helper()
	_, err := ShortestPath(a, []rune(in))
	var npe *NoPathError
	require.True(t, errors.As(err, &npe), "input %q should be rejected, got %v", in, err)
}

func mustMap(t *testing.T, pairs ...Pair) *Automaton {
	t.Helper()
	a, err := StringMap(pairs)
	require.NoError(t, err)
	return a
}

func TestRuneSet(t *testing.T) {
	s := SetOf("cab")
	require.Equal(t, []RuneRange{{'a', 'c'}}, s.Ranges())
	require.True(t, s.Contains('b'))
	require.False(t, s.Contains('d'))

	c := s.Complement()
	require.True(t, c.Contains('d'))
	require.True(t, c.Contains(0))
	require.False(t, c.Contains('a'))
	require.True(t, c.Complement().Equal(s))

	require.Equal(t, []RuneRange{{'h', 'm'}}, RangeSet('a', 'm').Intersect(RangeSet('h', 'z')).Ranges())
	require.Equal(t, []RuneRange{{'a', 'z'}}, RangeSet('a', 'm').Union(RangeSet('n', 'z')).Ranges())
	require.True(t, RangeSet('a', 'c').Minus(SetOf("b")).Equal(SetOf("ac")))

	ws := TableSet(unicode.White_Space)
	require.True(t, ws.Contains(' '))
	require.True(t, ws.Contains('\u00a0'))
	require.False(t, ws.Contains('x'))
}

func TestCost(t *testing.T) {
	require.True(t, Cost{Weight: 1}.Less(Cost{Weight: 2}))
	require.True(t, Cost{Weight: 1, Rank: 1}.Less(Cost{Weight: 1, Rank: 2}))
	require.Equal(t, 0, Cost{Weight: 0.3}.Compare(Cost{Weight: 0.1 + 0.2}))
	require.True(t, Cost{Weight: 1, Rank: 9}.Less(Cost{Weight: 1.5}))
}

func TestLabels(t *testing.T) {
	require.True(t, Eps.IsEpsilon())
	require.Equal(t, "ε", Eps.String())
	require.False(t, Sym('a').IsEpsilon())
	require.True(t, Sym('a').Matches('a'))
	require.True(t, ClassOf(SetOf("xy")).Matches('y'))
	require.False(t, CopyOut.Matches('a'))

	eps := Epsilon()
	require.Equal(t, "", transduce(t, eps, ""))
	rejects(t, eps, "a")
	for s := StateID(0); int(s) < eps.NumStates(); s++ {
		for _, arc := range eps.Arcs(s) {
			require.Equal(t, EpsilonKind, arc.In.Kind)
		}
	}
}

func TestConstructors(t *testing.T) {
	t.Run("cross", func(t *testing.T) {
		require.Equal(t, "xyz", transduce(t, Cross("ab", "xyz"), "ab"))
		require.Equal(t, "x", transduce(t, Cross("abc", "x"), "abc"))
		rejects(t, Cross("ab", "x"), "a")
	})

	t.Run("insert and delete", func(t *testing.T) {
		g := Concat(Insert("<"), Accept("a"), Delete("b"), Insert(">"))
		require.Equal(t, "<a>", transduce(t, g, "ab"))
	})

	t.Run("sets", func(t *testing.T) {
		digits := RangeSet('0', '9')
		require.Equal(t, "7", transduce(t, AcceptSet(digits), "7"))
		require.Equal(t, "2021", transduce(t, Identity(digits), "2021"))
		require.Equal(t, "", transduce(t, Identity(digits), ""))
		require.Equal(t, "", transduce(t, DeleteSet(digits), "3"))
		rejects(t, AcceptSet(digits), "x")
		require.True(t, AcceptSet(NewRuneSet()).IsEmpty())
	})

	t.Run("string map", func(t *testing.T) {
		g := mustMap(t, Pair{"one", "1"}, Pair{"two", "2"}, Pair{"twelve", "12"})
		require.Equal(t, "12", transduce(t, g, "twelve"))
		require.Equal(t, "2", transduce(t, g, "two"))
		require.Equal(t, "1", transduce(t, g, "one"))

		_, err := ShortestPath(g, []rune("tw"))
		var npe *NoPathError
		require.True(t, errors.As(err, &npe))
		require.Equal(t, 2, npe.Offset)

		p, err := ShortestPath(g, []rune("two"))
		require.NoError(t, err)
		var consumed []int
		for _, st := range p.Steps {
			if st.Input != NoInput {
				consumed = append(consumed, st.Input)
			}
		}
		require.Equal(t, []int{0, 1, 2}, consumed)
	})

	t.Run("empty string map", func(t *testing.T) {
		g, err := StringMap(nil)
		require.NoError(t, err)
		require.True(t, g.IsEmpty())
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := StringMap([]Pair{{"", "x"}})
		var ce *ConstructionError
		require.True(t, errors.As(err, &ce))
		require.True(t, errors.Is(err, ErrEmptyKey))
	})
}

func TestEmptyLanguage(t *testing.T) {
	a := Accept("a")
	require.True(t, Empty().IsEmpty())
	require.True(t, Concat(a, Empty()).IsEmpty())
	require.True(t, Concat(Empty(), a).IsEmpty())
	require.True(t, Compose(a, Empty()).IsEmpty())
	require.True(t, Compose(Empty(), a).IsEmpty())
	require.True(t, Plus(Empty()).IsEmpty())
	require.Equal(t, "a", transduce(t, Union(Empty(), a, Empty()), "a"))
	require.True(t, Union(Empty(), Empty()).IsEmpty())
	require.Equal(t, "", transduce(t, Star(Empty()), ""))
	require.True(t, Optimize(Empty()).IsEmpty())
	rejects(t, Empty(), "")
}

func TestClosures(t *testing.T) {
	ab := Accept("ab")
	require.Equal(t, "", transduce(t, Star(ab), ""))
	require.Equal(t, "abab", transduce(t, Star(ab), "abab"))
	rejects(t, Star(ab), "aba")

	require.Equal(t, "ab", transduce(t, Plus(ab), "ab"))
	require.Equal(t, "ababab", transduce(t, Plus(ab), "ababab"))
	rejects(t, Plus(ab), "")

	require.Equal(t, "", transduce(t, Optional(ab), ""))
	require.Equal(t, "ab", transduce(t, Optional(ab), "ab"))
}

func TestWeights(t *testing.T) {
	t.Run("cheaper path wins", func(t *testing.T) {
		g := Union(MustShift(Cross("a", "x"), 2), MustShift(Cross("a", "y"), 1))
		p, err := ShortestPath(g, []rune("a"))
		require.NoError(t, err)
		require.Equal(t, "y", p.Output())
		require.InDelta(t, 1.0, p.Cost.Weight, 1e-9)
	})

	t.Run("weighted union", func(t *testing.T) {
		g, err := WeightedUnion(Cross("a", "x"), Cross("a", "y"), 0.5, 0.2)
		require.NoError(t, err)
		require.Equal(t, "y", transduce(t, g, "a"))
	})

	t.Run("rank breaks ties", func(t *testing.T) {
		x, err := Rank(Cross("a", "x"), 2)
		require.NoError(t, err)
		y, err := Rank(Cross("a", "y"), 1)
		require.NoError(t, err)
		require.Equal(t, "y", transduce(t, Union(x, y), "a"))
		require.Equal(t, "y", transduce(t, Optimize(Union(x, y)), "a"))
	})

	t.Run("argument order breaks remaining ties", func(t *testing.T) {
		require.Equal(t, "x", transduce(t, Union(Cross("a", "x"), Cross("a", "y")), "a"))
		require.Equal(t, "y", transduce(t, Union(Cross("a", "y"), Cross("a", "x")), "a"))
	})

	t.Run("invalid weights", func(t *testing.T) {
		for _, w := range []float64{-1, math.NaN(), math.Inf(1)} {
			_, err := Shift(Accept("a"), w)
			require.True(t, errors.Is(err, ErrInvalidWeight), "weight %v", w)
		}
		_, err := Rank(Accept("a"), -1)
		require.True(t, errors.Is(err, ErrInvalidRank))
	})
}

func TestCompose(t *testing.T) {
	t.Run("symbols", func(t *testing.T) {
		g := Compose(Cross("ab", "xy"), Cross("xy", "12"))
		require.Equal(t, "12", transduce(t, g, "ab"))
		rejects(t, g, "xy")
	})

	t.Run("classes", func(t *testing.T) {
		letters := RangeSet('a', 'z')
		g := Compose(Identity(letters), mustMap(t, Pair{"cat", "dog"}))
		require.Equal(t, "dog", transduce(t, g, "cat"))

		digits := Compose(Identity(RangeSet('0', '9')), Identity(RangeSet('5', 'z')))
		require.Equal(t, "567", transduce(t, digits, "567"))
		rejects(t, digits, "4")
	})

	t.Run("weights add", func(t *testing.T) {
		g := Compose(MustShift(Accept("a"), 0.5), MustShift(Cross("a", "b"), 0.25))
		p, err := ShortestPath(g, []rune("a"))
		require.NoError(t, err)
		require.Equal(t, "b", p.Output())
		require.InDelta(t, 0.75, p.Cost.Weight, 1e-9)
	})

	t.Run("filter", func(t *testing.T) {
		numbers := mustMap(t, Pair{"one", "1"}, Pair{"twenty", "20"}, Pair{"thirty", "30"})
		small := Identity(SetOf("12"))
		g := Compose(numbers, small)
		require.Equal(t, "1", transduce(t, g, "one"))
		rejects(t, g, "twenty")
	})
}

func TestInvert(t *testing.T) {
	g, err := Invert(mustMap(t, Pair{"one", "1"}, Pair{"eleven", "11"}))
	require.NoError(t, err)
	require.Equal(t, "eleven", transduce(t, g, "11"))
	require.Equal(t, "one", transduce(t, g, "1"))

	id, err := Invert(Identity(RangeSet('a', 'z')))
	require.NoError(t, err)
	require.Equal(t, "abc", transduce(t, id, "abc"))

	_, err = Invert(DeleteSet(RangeSet('a', 'z')))
	require.True(t, errors.Is(err, ErrNotInvertible))
}

func TestOptimize(t *testing.T) {
	g := Concat(
		Insert("<"),
		Star(Union(Accept("a"), MustShift(Cross("b", "c"), 0.5), Cross("b", "d"))),
		Optional(Delete(" ")),
		Insert(">"),
	)
	o := Optimize(g)
	require.True(t, Equal(o, Optimize(o)), "optimize must be idempotent")
	require.LessOrEqual(t, o.NumStates(), g.NumStates())

	for s := StateID(0); int(s) < o.NumStates(); s++ {
		for _, arc := range o.Arcs(s) {
			require.False(t, arc.isEpsilon(), "epsilon arc left in state %d", s)
		}
	}

	for _, in := range []string{"", "a", "ab", "bba ", "b"} {
		pg, err := ShortestPath(g, []rune(in))
		require.NoError(t, err)
		po, err := ShortestPath(o, []rune(in))
		require.NoError(t, err)
		require.Equal(t, pg.Output(), po.Output(), "input %q", in)
		require.Equal(t, 0, pg.Cost.Compare(po.Cost), "input %q", in)
	}
	require.Equal(t, "<d>", transduce(t, o, "b"))
	rejects(t, o, "c")

	t.Run("dead states", func(t *testing.T) {
		dead := Union(Accept("a"), Concat(Accept("b"), Empty()))
		require.Equal(t, 2, Optimize(dead).NumStates())
	})
}

func TestSerialization(t *testing.T) {
	g := Optimize(Concat(
		Insert("name: \""),
		Plus(AcceptSet(RangeSet('a', 'z'))),
		Optional(Cross("!", "?")),
		MustShift(Insert("\""), 1.5),
	))

	var buf bytes.Buffer
	n, err := g.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	back, err := ReadFrom(&buf)
	require.NoError(t, err)
	require.True(t, Equal(g, back))
	require.Equal(t, g.Stats(), back.Stats())
	require.Equal(t, transduce(t, g, "hey!"), transduce(t, back, "hey!"))

	buf.Reset()
	_, err = Empty().WriteTo(&buf)
	require.NoError(t, err)
	empty, err := ReadFrom(&buf)
	require.NoError(t, err)
	require.True(t, empty.IsEmpty())

	_, err = ReadFrom(bytes.NewReader([]byte("not an archive")))
	require.True(t, errors.Is(err, ErrMalformedArchive))
}
