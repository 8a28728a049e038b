package en

import (
	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/grammars"
)

// Whitelist, word and punctuation tokens carry a bare name field.

// escapedPunct is one punctuation rune with quote and backslash escaped for
// use inside a field value.
func escapedPunct() *fst.Automaton {
	return fst.Union(
		fst.AcceptSet(grammars.Punct.Minus(fst.SetOf(`"\`))),
		fst.Cross(`"`, `\"`),
		fst.Cross(`\`, `\\`),
	)
}

type Whitelist struct {
	base
}

func NewWhitelist(dir grammars.Direction, table []fst.Pair) (*Whitelist, error) {
	if dir == grammars.TN {
		table = grammars.Swap(table)
	}
	words, err := fst.StringMap(escapeOutputs(table))
	if err != nil {
		return nil, err
	}
	w := &Whitelist{}
	w.Body = grammars.Field("name", words)
	w.Graph = fst.Optimize(w.Body)
	return w, nil
}

type Word struct {
	base
}

// NewWord accepts a run of word characters that may carry punctuation
// inside it ("x-y", "don't") but never at either end.
func NewWord() *Word {
	chars := fst.Plus(fst.AcceptSet(grammars.WordChars))
	w := &Word{}
	w.Body = grammars.Field("name", fst.Concat(
		chars,
		fst.Star(fst.Concat(fst.Plus(escapedPunct()), chars)),
	))
	w.Graph = fst.Optimize(w.Body)
	return w
}

type Punctuation struct {
	base
}

func NewPunctuation() *Punctuation {
	p := &Punctuation{}
	p.Body = grammars.Field("name", escapedPunct())
	p.Graph = fst.Optimize(p.Body)
	return p
}
