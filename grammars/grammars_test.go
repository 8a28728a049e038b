package grammars

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"text2phenotype.com/itn/fst"
)

func output(t *testing.T, a *fst.Automaton, in string) string {
	t.Helper()
	p, err := fst.ShortestPath(a, []rune(in))
	require.NoError(t, err, "input %q", in)
	return p.Output()
}

func TestClassTables(t *testing.T) {
	require.Len(t, AllClasses, 12)
	for _, c := range AllClasses {
		_, ok := DefaultWeights[c]
		require.True(t, ok, "no default weight for %s", c)
		back, ok := ClassOfRank(Rank(c))
		require.True(t, ok)
		require.Equal(t, c, back)
	}
	for _, c := range AllClasses {
		if c != Word {
			require.Less(t, DefaultWeights[c], DefaultWeights[Word])
		}
		if c != Whitelist {
			require.Less(t, DefaultWeights[Whitelist], DefaultWeights[c])
		}
	}
	require.Equal(t, int32(1), Rank(Whitelist))
	require.Equal(t, int32(12), Rank(Punctuation))
	require.Equal(t, int32(0), Rank(Class("emoji")))

	c, err := ParseClass(" Cardinal ")
	require.NoError(t, err)
	require.Equal(t, Cardinal, c)
	_, err = ParseClass("emoji")
	require.Error(t, err)

	d, err := ParseDirection("forward")
	require.NoError(t, err)
	require.Equal(t, TN, d)
	d, err = ParseDirection("")
	require.NoError(t, err)
	require.Equal(t, ITN, d)
	_, err = ParseDirection("sideways")
	require.Error(t, err)
}

func TestCharacterSets(t *testing.T) {
	for _, r := range "aZ9éж€" {
		require.True(t, WordChars.Contains(r), "%q", r)
	}
	for _, r := range ".,!?\"'$%+<=>|~-" {
		require.True(t, Punct.Contains(r), "%q", r)
		require.False(t, WordChars.Contains(r), "%q", r)
	}
	for _, r := range " \t\n " {
		require.True(t, Whitespace.Contains(r), "%q", r)
		require.False(t, WordChars.Contains(r), "%q", r)
	}
}

func TestTagging(t *testing.T) {
	g := Tag(Cardinal, Field("integer", fst.Cross("twelve", "12")))
	require.Equal(t, `cardinal { integer: "12" }`, output(t, g, "twelve"))

	sentence := fst.Concat(DeleteSpace(), fst.Accept("a"), DeleteExtraSpace(), fst.Accept("b"), DeleteSpace())
	require.Equal(t, "a b", output(t, sentence, "  a \t  b "))
}

func TestReadTable(t *testing.T) {
	pairs, err := ReadTable(strings.NewReader("# comment\ndoctor|Dr.\n\nmister|Mr.\r\n"))
	require.NoError(t, err)
	require.Equal(t, []fst.Pair{{In: "doctor", Out: "Dr."}, {In: "mister", Out: "Mr."}}, pairs)

	_, err = ReadTable(strings.NewReader("doctor|Dr.\nbroken line\n"))
	var ce *fst.ConstructionError
	require.True(t, errors.As(err, &ce))
	require.True(t, errors.Is(err, fst.ErrMalformedTable))
	require.Contains(t, err.Error(), "line 2")

	swapped := Swap([]fst.Pair{{In: "kilograms", Out: "kg"}, {In: "kilogram", Out: "kg"}, {In: "grams", Out: "g"}})
	require.Equal(t, []fst.Pair{{In: "kg", Out: "kilograms"}, {In: "g", Out: "grams"}}, swapped)
}

func TestPlan(t *testing.T) {
	t.Run("order and results", func(t *testing.T) {
		var concurrent int32
		leaf := func(name string) Component {
			return Component{Name: name, Build: func(Results) (interface{}, error) {
				atomic.AddInt32(&concurrent, 1)
				return name, nil
			}}
		}
		plan, err := NewPlan(
			Component{Name: "date", Needs: []string{"ordinal"}, Build: func(r Results) (interface{}, error) {
				return "date(" + Get[string](r, "ordinal") + ")", nil
			}},
			Component{Name: "ordinal", Needs: []string{"cardinal"}, Build: func(r Results) (interface{}, error) {
				return "ordinal(" + Get[string](r, "cardinal") + ")", nil
			}},
			leaf("cardinal"),
			leaf("word"),
		)
		require.NoError(t, err)
		require.Equal(t, []string{"cardinal", "word", "ordinal", "date"}, plan.Order())

		res, err := plan.Run()
		require.NoError(t, err)
		require.Equal(t, "date(ordinal(cardinal))", res["date"])
		require.Equal(t, int32(2), atomic.LoadInt32(&concurrent))
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := NewPlan(
			Component{Name: "a", Needs: []string{"b"}},
			Component{Name: "b", Needs: []string{"a"}},
		)
		require.True(t, errors.Is(err, ErrDependencyCycle))
		var ce *fst.ConstructionError
		require.True(t, errors.As(err, &ce))
	})

	t.Run("missing dependency", func(t *testing.T) {
		_, err := NewPlan(Component{Name: "a", Needs: []string{"nope"}})
		require.True(t, errors.Is(err, ErrMissingDependency))
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := NewPlan(Component{Name: "a"}, Component{Name: "a"})
		require.True(t, errors.Is(err, ErrDuplicateName))
	})

	t.Run("build errors abort", func(t *testing.T) {
		plan, err := NewPlan(
			Component{Name: "bad", Build: func(Results) (interface{}, error) {
				return fst.MustShift(fst.Accept("a"), -1), nil
			}},
			Component{Name: "after", Needs: []string{"bad"}, Build: func(Results) (interface{}, error) {
				t.Fatal("dependent of a failed component must not be built")
				return nil, nil
			}},
		)
		require.NoError(t, err)
		_, err = plan.Run()
		require.True(t, errors.Is(err, fst.ErrInvalidWeight))
		require.Contains(t, err.Error(), "build bad")
	})
}

func TestDigestTables(t *testing.T) {
	tables := fstest.MapFS{
		"data/units.txt":    {Data: []byte("kilogram|kg\n")},
		"data/currency.txt": {Data: []byte("dollar|$\n")},
	}
	digest, err := DigestTables(tables)
	require.NoError(t, err)
	require.Len(t, digest, 16)

	again, err := DigestTables(tables)
	require.NoError(t, err)
	require.Equal(t, digest, again)

	tables["data/units.txt"] = &fstest.MapFile{Data: []byte("kilogram|kgs\n")}
	edited, err := DigestTables(tables)
	require.NoError(t, err)
	require.NotEqual(t, digest, edited)

	tables["data/tld.txt"] = &fstest.MapFile{Data: []byte("com\n")}
	added, err := DigestTables(tables)
	require.NoError(t, err)
	require.NotEqual(t, edited, added)

	require.Empty(t, TableDigest("xx"))
}
