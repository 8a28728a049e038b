package en

import (
	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/grammars"
)

type Measure struct {
	base
}

func NewMeasure(card *Cardinal, dec *Decimal) (*Measure, error) {
	amount := fst.Union(
		grammars.Tag(grammars.Cardinal, card.Body),
		grammars.Tag(grammars.Decimal, dec.Body),
	)

	m := &Measure{}
	if card.Direction == grammars.ITN {
		units, err := fst.StringMap(escapeOutputs(unitPairs))
		if err != nil {
			return nil, err
		}
		m.Body = fst.Concat(amount, fst.Accept(" "), grammars.Field("units", units))
	} else {
		units, err := fst.StringMap(escapeOutputs(grammars.Swap(unitPairs)))
		if err != nil {
			return nil, err
		}
		m.Body = fst.Concat(amount, fst.Optional(fst.Delete(" ")), grammars.InsertSpace(), grammars.Field("units", units))
	}
	m.finish(grammars.Measure)
	return m, nil
}
