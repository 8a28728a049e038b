package en

import (
	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/grammars"
)

type Decimal struct {
	base
	Cardinal *Cardinal
}

func quantity() *fst.Automaton {
	return oneOf(scaleWords...)
}

// spokenDigit reads one spelled digit, "oh" included.
func spokenDigit(card *Cardinal) (*fst.Automaton, error) {
	digit, err := fst.Invert(card.Digit)
	if err != nil {
		return nil, err
	}
	return fst.Union(digit, fst.Cross("oh", "0")), nil
}

func NewDecimal(card *Cardinal) (*Decimal, error) {
	d := &Decimal{Cardinal: card}
	quantityField := fst.Optional(fst.Concat(fst.Accept(" "), grammars.Field("quantity", quantity())))

	if card.Direction == grammars.ITN {
		digit, err := spokenDigit(card)
		if err != nil {
			return nil, err
		}
		fraction := fst.Concat(digit, fst.Star(fst.Concat(fst.Delete(" "), digit)))
		d.Body = fst.Concat(
			fst.Optional(fst.Concat(fst.Delete("minus "), fst.Insert(`negative: "-" `))),
			fst.Optional(fst.Concat(grammars.Field("integer_part", card.Numeral), fst.Accept(" "))),
			fst.Delete("point "),
			grammars.Field("fractional_part", fraction),
			quantityField,
		)
	} else {
		fraction := fst.Concat(card.Digit, fst.Star(fst.Concat(grammars.InsertSpace(), card.Digit)))
		d.Body = fst.Concat(
			fst.Optional(fst.Concat(fst.Delete("-"), fst.Insert(`negative: "-" `))),
			fst.Optional(fst.Concat(grammars.Field("integer_part", card.Spelled), grammars.InsertSpace())),
			fst.Delete("."),
			grammars.Field("fractional_part", fraction),
			quantityField,
		)
	}
	d.finish(grammars.Decimal)
	return d, nil
}
