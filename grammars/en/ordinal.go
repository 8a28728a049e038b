package en

import (
	"strings"

	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/grammars"
)

func ordinalWords() []fst.Pair {
	pairs := []fst.Pair{
		{In: "zero", Out: "zeroth"}, {In: "one", Out: "first"}, {In: "two", Out: "second"},
		{In: "three", Out: "third"}, {In: "four", Out: "fourth"}, {In: "five", Out: "fifth"},
		{In: "six", Out: "sixth"}, {In: "seven", Out: "seventh"}, {In: "eight", Out: "eighth"},
		{In: "nine", Out: "ninth"}, {In: "ten", Out: "tenth"}, {In: "eleven", Out: "eleventh"},
		{In: "twelve", Out: "twelfth"},
	}
	for _, p := range teenWords[3:] {
		pairs = append(pairs, fst.Pair{In: p.Out, Out: p.Out + "th"})
	}
	for _, p := range tiesWords {
		pairs = append(pairs, fst.Pair{In: p.Out, Out: strings.TrimSuffix(p.Out, "y") + "ieth"})
	}
	pairs = append(pairs, fst.Pair{In: "hundred", Out: "hundredth"})
	for _, s := range scaleWords {
		pairs = append(pairs, fst.Pair{In: s, Out: s + "th"})
	}
	return pairs
}

// Ordinal rewrites the last word of a spelled cardinal into its ordinal
// form, so "21" spells as "twenty first".
type Ordinal struct {
	base
	Cardinal *Cardinal

	Spelled *fst.Automaton
	Numeral *fst.Automaton
	// Suffix deletes the written ordinal suffix (st, nd, rd, th).
	Suffix *fst.Automaton
}

func NewOrdinal(card *Cardinal) (*Ordinal, error) {
	word := fst.Plus(fst.AcceptSet(grammars.Lower))
	lastWord := fst.Concat(fst.Star(fst.Concat(word, fst.Accept(" "))), mapping(ordinalWords()))

	o := &Ordinal{
		Cardinal: card,
		Spelled:  fst.Optimize(fst.Compose(card.Spelled, lastWord)),
		Suffix:   fst.Union(fst.Delete("st"), fst.Delete("nd"), fst.Delete("rd"), fst.Delete("th")),
	}
	numeral, err := fst.Invert(o.Spelled)
	if err != nil {
		return nil, err
	}
	o.Numeral = numeral

	if card.Direction == grammars.ITN {
		o.Body = grammars.Field("integer", o.Numeral)
	} else {
		o.Body = grammars.Field("integer", fst.Concat(o.Spelled, o.Suffix))
	}
	o.finish(grammars.Ordinal)
	return o, nil
}
