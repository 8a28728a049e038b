package en

import (
	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/grammars"
)

const Language = "en"

func init() {
	grammars.Register(Language, Build, dataFS)
}

type tagged interface {
	Tagged() *fst.Automaton
}

func component(c grammars.Class, needs []grammars.Class, build func(grammars.Results) (tagged, error)) grammars.Component {
	names := make([]string, len(needs))
	for i, n := range needs {
		names[i] = string(n)
	}
	return grammars.Component{
		Name:  string(c),
		Needs: names,
		Build: func(deps grammars.Results) (interface{}, error) {
			return build(deps)
		},
	}
}

// Build builds every English class grammar for opts.Direction.
func Build(opts grammars.Options) (grammars.Set, error) {
	dir := opts.Direction
	whitelist := opts.Whitelist
	if whitelist == nil {
		whitelist = DefaultWhitelist
	}

	plan, err := grammars.NewPlan(
		component(grammars.Cardinal, nil, func(grammars.Results) (tagged, error) {
			return NewCardinal(dir)
		}),
		component(grammars.Ordinal, []grammars.Class{grammars.Cardinal}, func(r grammars.Results) (tagged, error) {
			return NewOrdinal(grammars.Get[*Cardinal](r, string(grammars.Cardinal)))
		}),
		component(grammars.Decimal, []grammars.Class{grammars.Cardinal}, func(r grammars.Results) (tagged, error) {
			return NewDecimal(grammars.Get[*Cardinal](r, string(grammars.Cardinal)))
		}),
		component(grammars.Measure, []grammars.Class{grammars.Cardinal, grammars.Decimal}, func(r grammars.Results) (tagged, error) {
			return NewMeasure(
				grammars.Get[*Cardinal](r, string(grammars.Cardinal)),
				grammars.Get[*Decimal](r, string(grammars.Decimal)),
			)
		}),
		component(grammars.Money, []grammars.Class{grammars.Cardinal, grammars.Decimal}, func(r grammars.Results) (tagged, error) {
			return NewMoney(
				grammars.Get[*Cardinal](r, string(grammars.Cardinal)),
				grammars.Get[*Decimal](r, string(grammars.Decimal)),
			)
		}),
		component(grammars.Date, []grammars.Class{grammars.Ordinal}, func(r grammars.Results) (tagged, error) {
			return NewDate(grammars.Get[*Ordinal](r, string(grammars.Ordinal)))
		}),
		component(grammars.Time, []grammars.Class{grammars.Cardinal}, func(r grammars.Results) (tagged, error) {
			return NewTime(grammars.Get[*Cardinal](r, string(grammars.Cardinal)))
		}),
		component(grammars.Telephone, []grammars.Class{grammars.Cardinal}, func(r grammars.Results) (tagged, error) {
			return NewTelephone(grammars.Get[*Cardinal](r, string(grammars.Cardinal)))
		}),
		component(grammars.Electronic, nil, func(grammars.Results) (tagged, error) {
			return NewElectronic(dir)
		}),
		component(grammars.Whitelist, nil, func(grammars.Results) (tagged, error) {
			return NewWhitelist(dir, whitelist)
		}),
		component(grammars.Word, nil, func(grammars.Results) (tagged, error) {
			return NewWord(), nil
		}),
		component(grammars.Punctuation, nil, func(grammars.Results) (tagged, error) {
			return NewPunctuation(), nil
		}),
	)
	if err != nil {
		return nil, err
	}

	results, err := plan.Run()
	if err != nil {
		return nil, err
	}
	set := make(grammars.Set, len(results))
	for _, c := range grammars.AllClasses {
		set[c] = results[string(c)].(tagged).Tagged()
	}
	return set, nil
}
