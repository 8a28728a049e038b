package en

import (
	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/grammars"
)

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

type Date struct {
	base
}

// dayDigits accepts 1-31.
func dayDigits() *fst.Automaton {
	return fst.Union(
		digitRange('1', '9'),
		fst.Concat(digitRange('1', '2'), digitRange('0', '9')),
		fst.Concat(fst.Accept("3"), digitRange('0', '1')),
	)
}

func yearDigits() *fst.Automaton {
	return fst.Concat(digitRange('1', '9'), digitRange('0', '9'), digitRange('0', '9'), digitRange('0', '9'))
}

// spelledYear reads a four digit year in pairs: 1990 as "nineteen
// ninety", 2005 as "twenty oh five", 1900 as "nineteen hundred".
func spelledYear(card *Cardinal) *fst.Automaton {
	space := grammars.InsertSpace()
	return fst.Optimize(fst.Union(
		fst.Concat(card.TwoDigits, space, card.TwoDigits),
		fst.Concat(card.TwoDigits, space, fst.Cross("0", "oh"), space, card.DigitNonZero),
		fst.Concat(card.Teens, space, fst.Cross("00", "hundred")),
	))
}

func NewDate(ord *Ordinal) (*Date, error) {
	card := ord.Cardinal
	dir := card.Direction
	month := grammars.Field("month", oneOf(monthNames...))

	pairs := spelledYear(card)
	fullYear, err := Restrict(dir, card.Spelled, yearDigits())
	if err != nil {
		return nil, err
	}
	ordinalDay, err := Restrict(dir, ord.Spelled, dayDigits())
	if err != nil {
		return nil, err
	}

	var day, year *fst.Automaton
	if dir == grammars.ITN {
		cardinalDay, err := Restrict(dir, card.Spelled, dayDigits())
		if err != nil {
			return nil, err
		}
		pairYear, err := fst.Invert(pairs)
		if err != nil {
			return nil, err
		}
		day = grammars.Field("day", fst.Union(ordinalDay, fst.MustShift(cardinalDay, 0.01)))
		year = grammars.Field("year", fst.Union(pairYear, fullYear))
	} else {
		day = grammars.Field("day", fst.Concat(ordinalDay, fst.Optional(ord.Suffix)))
		year = grammars.Field("year", fst.Union(pairs, fst.MustShift(fullYear, 0.01)))
	}

	sp := fst.Accept(" ")
	var monthDay, dayMonth *fst.Automaton
	if dir == grammars.ITN {
		monthDay = fst.Concat(month, sp, day, fst.Optional(fst.Concat(sp, year)))
		dayMonth = fst.Concat(fst.Optional(fst.Delete("the ")), day, fst.Delete(" of"), sp, month, fst.Optional(fst.Concat(sp, year)))
	} else {
		monthDay = fst.Concat(month, sp, day, fst.Optional(fst.Concat(fst.Optional(fst.Delete(",")), sp, year)))
		dayMonth = fst.Concat(day, sp, month, fst.Optional(fst.Concat(sp, year)))
	}

	d := &Date{}
	d.Body = fst.Union(monthDay, dayMonth, fst.Concat(month, sp, year))
	d.finish(grammars.Date)
	return d, nil
}
