package en

import (
	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/grammars"
)

type Electronic struct {
	base
}

func NewElectronic(dir grammars.Direction) (*Electronic, error) {
	tld := oneOf(topLevelDomains...)
	var name, domain, at *fst.Automaton
	if dir == grammars.ITN {
		chars := fst.Plus(fst.AcceptSet(grammars.Lower.Union(grammars.Digits)))
		dot := fst.Cross(" dot ", ".")
		name = fst.Concat(chars, fst.Star(fst.Concat(dot, chars)))
		domain = fst.Concat(chars, fst.Star(fst.Concat(dot, chars)), dot, tld)
		at = fst.Delete(" at ")
	} else {
		chars := fst.Plus(fst.AcceptSet(grammars.AlphaNum.Union(fst.SetOf("_-"))))
		dot := fst.Accept(".")
		name = fst.Concat(chars, fst.Star(fst.Concat(dot, chars)))
		domain = fst.Concat(chars, fst.Star(fst.Concat(dot, chars)), dot, tld)
		at = fst.Delete("@")
	}

	e := &Electronic{}
	e.Body = fst.Union(
		fst.Concat(grammars.Field("username", name), at, grammars.InsertSpace(), grammars.Field("domain", domain)),
		grammars.Field("domain", domain),
	)
	e.finish(grammars.Electronic)
	return e, nil
}
