package en

import (
	"bytes"
	"embed"
	"strings"

	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/grammars"
	"text2phenotype.com/itn/utils"
)

//go:embed data/*.txt
var dataFS embed.FS

var (
	DefaultWhitelist = mustTable("whitelist.txt")
	unitPairs        = mustTable("units.txt")
	currencyPairs    = mustTable("currency.txt")
	topLevelDomains  = mustList("tld.txt")
)

func mustRead(name string) []byte {
	data, err := dataFS.ReadFile("data/" + name)
	if err != nil {
		panic(err)
	}
	return data
}

func mustTable(name string) []fst.Pair {
	pairs, err := grammars.ReadTable(bytes.NewReader(mustRead(name)))
	if err != nil {
		panic(err)
	}
	return pairs
}

func mustList(name string) []string {
	rows, err := utils.ReadRows(bytes.NewReader(mustRead(name)), "|")
	if err != nil {
		panic(err)
	}
	list := make([]string, 0, len(rows))
	for _, row := range rows {
		list = append(list, strings.TrimSpace(row.Fields[0]))
	}
	return list
}

// mapping builds a string map from a constant table.
func mapping(pairs []fst.Pair) *fst.Automaton {
	a, err := fst.StringMap(pairs)
	if err != nil {
		panic(err)
	}
	return a
}

func oneOf(words ...string) *fst.Automaton {
	alts := make([]*fst.Automaton, len(words))
	for i, w := range words {
		alts[i] = fst.Accept(w)
	}
	return fst.Union(alts...)
}

var valueEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeOutputs(pairs []fst.Pair) []fst.Pair {
	out := make([]fst.Pair, len(pairs))
	for i, p := range pairs {
		out[i] = fst.Pair{In: p.In, Out: valueEscaper.Replace(p.Out)}
	}
	return out
}
