package en

import (
	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/grammars"
)

type Time struct {
	base
}

// hourDigits accepts 1-12.
func hourDigits() *fst.Automaton {
	return fst.Union(digitRange('1', '9'), fst.Concat(fst.Accept("1"), digitRange('0', '2')))
}

// minuteDigits accepts 10-59.
func minuteDigits() *fst.Automaton {
	return fst.Concat(digitRange('1', '5'), digitRange('0', '9'))
}

func NewTime(card *Cardinal) (*Time, error) {
	dir := card.Direction
	hours, err := Restrict(dir, card.Spelled, hourDigits())
	if err != nil {
		return nil, err
	}
	minutes, err := Restrict(dir, card.Spelled, minuteDigits())
	if err != nil {
		return nil, err
	}
	hoursField := grammars.Field("hours", hours)
	sp := fst.Accept(" ")

	t := &Time{}
	if dir == grammars.ITN {
		single, err := fst.Invert(card.DigitNonZero)
		if err != nil {
			return nil, err
		}
		minutesField := grammars.Field("minutes", fst.Union(
			minutes,
			fst.Concat(fst.Delete("oh "), fst.Insert("0"), single),
		))
		suffix := fst.Concat(sp, grammars.Field("suffix", fst.Union(
			fst.Cross("a m", "a.m."),
			fst.Cross("p m", "p.m."),
			fst.Cross("am", "a.m."),
			fst.Cross("pm", "p.m."),
		)))
		t.Body = fst.Union(
			fst.Concat(hoursField, sp, minutesField, fst.Optional(suffix)),
			fst.Concat(hoursField, fst.Delete(" o'clock"), fst.Insert(` minutes: "00"`), fst.Optional(suffix)),
			fst.Concat(hoursField, suffix),
		)
	} else {
		minutesField := grammars.Field("minutes", fst.Union(
			minutes,
			fst.Concat(fst.Cross("0", "oh"), grammars.InsertSpace(), card.DigitNonZero),
		))
		suffix := fst.Concat(fst.Optional(fst.Delete(" ")), grammars.InsertSpace(), grammars.Field("suffix", fst.Union(
			fst.Cross("am", "a m"),
			fst.Cross("pm", "p m"),
			fst.Cross("a.m.", "a m"),
			fst.Cross("p.m.", "p m"),
		)))
		clock := fst.Union(
			fst.Concat(fst.Delete(":"), grammars.InsertSpace(), minutesField),
			fst.Delete(":00"),
		)
		t.Body = fst.Union(
			fst.Concat(hoursField, clock, fst.Optional(suffix)),
			fst.Concat(hoursField, suffix),
		)
	}
	t.finish(grammars.Time)
	return t, nil
}
