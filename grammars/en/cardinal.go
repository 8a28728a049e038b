package en

import (
	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/grammars"
)

var (
	digitWords = []fst.Pair{
		{In: "1", Out: "one"}, {In: "2", Out: "two"}, {In: "3", Out: "three"},
		{In: "4", Out: "four"}, {In: "5", Out: "five"}, {In: "6", Out: "six"},
		{In: "7", Out: "seven"}, {In: "8", Out: "eight"}, {In: "9", Out: "nine"},
	}
	teenWords = []fst.Pair{
		{In: "10", Out: "ten"}, {In: "11", Out: "eleven"}, {In: "12", Out: "twelve"},
		{In: "13", Out: "thirteen"}, {In: "14", Out: "fourteen"}, {In: "15", Out: "fifteen"},
		{In: "16", Out: "sixteen"}, {In: "17", Out: "seventeen"}, {In: "18", Out: "eighteen"},
		{In: "19", Out: "nineteen"},
	}
	tiesWords = []fst.Pair{
		{In: "2", Out: "twenty"}, {In: "3", Out: "thirty"}, {In: "4", Out: "forty"},
		{In: "5", Out: "fifty"}, {In: "6", Out: "sixty"}, {In: "7", Out: "seventy"},
		{In: "8", Out: "eighty"}, {In: "9", Out: "ninety"},
	}
	scaleWords = []string{"thousand", "million", "billion"}
)

type base struct {
	// Body is the field list of the class without its class braces.
	Body  *fst.Automaton
	Graph *fst.Automaton
}

func (b *base) Tagged() *fst.Automaton {
	return b.Graph
}

func (b *base) finish(class grammars.Class) {
	b.Body = fst.Optimize(b.Body)
	b.Graph = fst.Optimize(grammars.Tag(class, b.Body))
}

// Cardinal holds the spelled-out number cores shared by every numeric class.
// Spelled maps digit strings without leading zeros to words; the inverse
// grammar reuses it through Numeral.
type Cardinal struct {
	base
	Direction grammars.Direction

	// Digit spells one digit 0-9.
	Digit *fst.Automaton
	// DigitNonZero spells one digit 1-9.
	DigitNonZero *fst.Automaton
	// Teens spells 10-19.
	Teens *fst.Automaton
	// TwoDigits spells 10-99.
	TwoDigits *fst.Automaton
	// Padded spells 01-99 from exactly two digits.
	Padded  *fst.Automaton
	Spelled *fst.Automaton
	Numeral *fst.Automaton
}

func NewCardinal(dir grammars.Direction) (*Cardinal, error) {
	space := grammars.InsertSpace()
	digit := mapping(digitWords)
	teens := mapping(teenWords)
	ties := fst.Concat(mapping(tiesWords), fst.Union(fst.Delete("0"), fst.Concat(space, digit)))
	twoDigits := fst.Union(teens, ties)
	padded := fst.Union(fst.Concat(fst.Delete("0"), digit), twoDigits)
	hundreds := fst.Concat(digit, fst.Insert(" hundred"), fst.Union(fst.Delete("00"), fst.Concat(space, padded)))
	upTo999 := fst.Union(digit, twoDigits, hundreds)
	group := fst.Union(hundreds, fst.Concat(fst.Delete("0"), padded))

	alts := []*fst.Automaton{fst.Cross("0", "zero"), upTo999}
	rest := fst.Union(fst.Delete("000"), fst.Concat(space, group))
	for k, scale := range scaleWords {
		alts = append(alts, fst.Concat(upTo999, fst.Insert(" "+scale), rest))
		if k+1 < len(scaleWords) {
			rest = fst.Union(
				fst.Concat(fst.Delete("000"), rest),
				fst.Concat(space, group, fst.Insert(" "+scale), rest),
			)
		}
	}

	c := &Cardinal{
		Direction:    dir,
		Digit:        fst.Optimize(fst.Union(fst.Cross("0", "zero"), digit)),
		DigitNonZero: fst.Optimize(digit),
		Teens:        fst.Optimize(teens),
		TwoDigits:    fst.Optimize(twoDigits),
		Padded:       fst.Optimize(padded),
		Spelled:      fst.Optimize(fst.Union(alts...)),
	}
	numeral, err := fst.Invert(c.Spelled)
	if err != nil {
		return nil, err
	}
	c.Numeral = numeral

	if dir == grammars.ITN {
		c.Body = fst.Concat(
			fst.Optional(fst.Concat(fst.Delete("minus "), fst.Insert(`negative: "-" `))),
			grammars.Field("integer", c.Numeral),
		)
	} else {
		c.Body = fst.Concat(
			fst.Optional(fst.Concat(fst.Delete("-"), fst.Insert(`negative: "-" `))),
			grammars.Field("integer", c.Spelled),
		)
	}
	c.finish(grammars.Cardinal)
	return c, nil
}

// Value is the number transducer of the build direction.
func (c *Cardinal) Value() *fst.Automaton {
	if c.Direction == grammars.ITN {
		return c.Numeral
	}
	return c.Spelled
}

// Restrict limits a digits-to-words transducer to the digit strings
// accepted by digits, oriented for the build direction.
func Restrict(dir grammars.Direction, spelled, digits *fst.Automaton) (*fst.Automaton, error) {
	if dir == grammars.TN {
		return fst.Optimize(fst.Compose(digits, spelled)), nil
	}
	numeral, err := fst.Invert(spelled)
	if err != nil {
		return nil, err
	}
	return fst.Optimize(fst.Compose(numeral, digits)), nil
}

// digitRange accepts one digit between lo and hi.
func digitRange(lo, hi rune) *fst.Automaton {
	return fst.AcceptSet(fst.RangeSet(lo, hi))
}
