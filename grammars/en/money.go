package en

import (
	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/grammars"
)

type Money struct {
	base
}

func NewMoney(card *Cardinal, dec *Decimal) (*Money, error) {
	m := &Money{}
	if card.Direction == grammars.ITN {
		currency, err := fst.StringMap(escapeOutputs(currencyPairs))
		if err != nil {
			return nil, err
		}
		twoDigits := fst.Union(
			fst.Concat(fst.Insert("0"), digitRange('1', '9')),
			fst.Concat(digitRange('1', '9'), digitRange('0', '9')),
		)
		cents := fst.Concat(
			fst.Optional(fst.Delete("and ")),
			grammars.Field("fractional_part", fst.Compose(card.Numeral, twoDigits)),
			fst.Delete(" cent"),
			fst.Optional(fst.Delete("s")),
		)
		major := grammars.Field("currency", currency)
		m.Body = fst.Union(
			fst.Concat(
				grammars.Field("integer_part", card.Numeral),
				fst.Accept(" "),
				major,
				fst.Optional(fst.Concat(fst.Accept(" "), cents)),
			),
			fst.Concat(dec.Body, fst.Accept(" "), major),
		)
	} else {
		currency, err := fst.StringMap(escapeOutputs(grammars.Swap(currencyPairs)))
		if err != nil {
			return nil, err
		}
		m.Body = fst.Concat(
			grammars.Field("currency", currency),
			grammars.InsertSpace(),
			grammars.Field("integer_part", card.Spelled),
			fst.Optional(fst.Union(
				fst.Delete(".00"),
				fst.Concat(fst.Delete("."), grammars.InsertSpace(), grammars.Field("fractional_part", card.Padded)),
			)),
		)
	}
	m.finish(grammars.Money)
	return m, nil
}
