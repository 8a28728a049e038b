package classify

import (
	"fmt"

	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/grammars"
)

const (
	tokenOpen  = "tokens { "
	tokenClose = " }"
)

// weighted shifts g by the weight of c and ranks it by the position of c in
// the tagging order.
func weighted(g *fst.Automaton, c grammars.Class, w Weights) (*fst.Automaton, error) {
	if g == nil {
		return fst.Empty(), nil
	}
	g, err := fst.Shift(g, w[c])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c, err)
	}
	return fst.Rank(g, grammars.Rank(c))
}

// BuildGraph composes the class grammars of set into the sentence grammar:
// every maximal whitespace-delimited chunk becomes one token optionally
// surrounded by punctuation tokens, each wrapped as `tokens { ... }` and
// joined by single spaces.
func BuildGraph(set grammars.Set, ex ExclusionSet, w Weights, extraSpaceWeight float64) (*fst.Automaton, error) {
	set = ApplyExclusions(set, ex)

	alts := make([]*fst.Automaton, 0, len(grammars.TaggingOrder))
	for _, c := range grammars.TaggingOrder {
		g, err := weighted(set[c], c, w)
		if err != nil {
			return nil, err
		}
		alts = append(alts, g)
	}
	token := fst.Concat(fst.Insert(tokenOpen), fst.Union(alts...), fst.Insert(tokenClose))

	punctGraph, err := weighted(set[grammars.Punctuation], grammars.Punctuation, w)
	if err != nil {
		return nil, err
	}
	punct := fst.Concat(fst.Insert(tokenOpen), punctGraph, fst.Insert(tokenClose))
	space := grammars.InsertSpace()
	trailing := fst.Star(fst.Concat(space, punct))

	tokenPlusPunct := fst.Union(
		fst.Concat(fst.Star(fst.Concat(punct, space)), token, trailing),
		// a chunk made only of punctuation
		fst.Concat(punct, trailing),
	)

	extraSpace := grammars.DeleteExtraSpace()
	if extraSpaceWeight != 0 {
		if extraSpace, err = fst.Shift(extraSpace, extraSpaceWeight); err != nil {
			return nil, fmt.Errorf("extra space: %w", err)
		}
	}

	sentence := fst.Concat(
		grammars.DeleteSpace(),
		tokenPlusPunct,
		fst.Star(fst.Concat(extraSpace, tokenPlusPunct)),
		grammars.DeleteSpace(),
	)
	return fst.Optimize(sentence), nil
}
