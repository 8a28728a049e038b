package en

import (
	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/grammars"
)

type Telephone struct {
	base
}

// digitRun repeats digit n times with sep between repetitions.
func digitRun(digit, sep *fst.Automaton, n int) *fst.Automaton {
	parts := []*fst.Automaton{digit}
	for i := 1; i < n; i++ {
		parts = append(parts, sep, digit)
	}
	return fst.Concat(parts...)
}

func NewTelephone(card *Cardinal) (*Telephone, error) {
	t := &Telephone{}
	if card.Direction == grammars.ITN {
		digit, err := spokenDigit(card)
		if err != nil {
			return nil, err
		}
		sep := fst.Delete(" ")
		group := fst.Concat(sep, fst.Insert("-"))
		number := fst.Concat(digitRun(digit, sep, 3), group, digitRun(digit, sep, 3), group, digitRun(digit, sep, 4))
		code := fst.Union(digitRun(digit, sep, 1), digitRun(digit, sep, 2), digitRun(digit, sep, 3))
		t.Body = fst.Concat(
			fst.Optional(fst.Concat(
				fst.Delete("plus "),
				grammars.Field("country_code", fst.Concat(fst.Insert("+"), code)),
				fst.Accept(" "),
			)),
			grammars.Field("number_part", number),
		)
	} else {
		sep := grammars.InsertSpace()
		group := fst.Union(fst.Cross("-", " "), fst.Cross(".", " "), fst.Accept(" "))
		number := fst.Concat(digitRun(card.Digit, sep, 3), group, digitRun(card.Digit, sep, 3), group, digitRun(card.Digit, sep, 4))
		code := fst.Union(digitRun(card.Digit, sep, 1), digitRun(card.Digit, sep, 2), digitRun(card.Digit, sep, 3))
		t.Body = fst.Concat(
			fst.Optional(fst.Concat(
				fst.Delete("+"),
				grammars.Field("country_code", fst.Concat(fst.Insert("plus "), code)),
				fst.Union(fst.Delete("-"), fst.Delete(" ")),
				grammars.InsertSpace(),
			)),
			grammars.Field("number_part", number),
		)
	}
	t.finish(grammars.Telephone)
	return t, nil
}
