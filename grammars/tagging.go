package grammars

import (
	"fmt"
	"io"
	"os"
	"unicode"

	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/utils"
)

var (
	Whitespace = fst.TableSet(unicode.White_Space)
	// Punct also holds the ASCII symbols that unicode files under Symbol.
	Punct     = fst.TableSet(unicode.Punct).Union(fst.SetOf("$+<=>^`|~"))
	WordChars = Whitespace.Union(Punct).Complement()
	Digits    = fst.RangeSet('0', '9')
	NonZero   = fst.RangeSet('1', '9')
	Lower     = fst.RangeSet('a', 'z')
	Alpha     = Lower.Union(fst.RangeSet('A', 'Z'))
	AlphaNum  = Alpha.Union(Digits)
)

// Field wraps the output of g as `name: "<g>"`.
func Field(name string, g *fst.Automaton) *fst.Automaton {
	return fst.Concat(fst.Insert(name+`: "`), g, fst.Insert(`"`))
}

// Tag wraps the output of g as `class { <g> }`.
func Tag(class Class, g *fst.Automaton) *fst.Automaton {
	return fst.Concat(fst.Insert(string(class)+" { "), g, fst.Insert(" }"))
}

func InsertSpace() *fst.Automaton {
	return fst.Insert(" ")
}

// DeleteSpace consumes any run of whitespace, including none.
func DeleteSpace() *fst.Automaton {
	return fst.Star(fst.DeleteSet(Whitespace))
}

// DeleteExtraSpace collapses a non-empty whitespace run into one space.
func DeleteExtraSpace() *fst.Automaton {
	return fst.Concat(fst.Plus(fst.DeleteSet(Whitespace)), InsertSpace())
}

// ReadTable reads `spoken|written` pairs, one per line.
func ReadTable(r io.Reader) ([]fst.Pair, error) {
	rows, err := utils.ReadRows(r, "|")
	if err != nil {
		return nil, err
	}
	pairs := make([]fst.Pair, 0, len(rows))
	for _, row := range rows {
		if len(row.Fields) != 2 || row.Fields[0] == "" {
			return nil, &fst.ConstructionError{
				Op:  "read table",
				Err: fmt.Errorf("%w: line %d: %q", fst.ErrMalformedTable, row.Line, row.Text),
			}
		}
		pairs = append(pairs, fst.Pair{In: row.Fields[0], Out: row.Fields[1]})
	}
	return pairs, nil
}

func LoadTable(path string) ([]fst.Pair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadTable(file)
}

// Swap turns spoken|written pairs into written|spoken ones. When several
// pairs share an output only the first is kept.
func Swap(pairs []fst.Pair) []fst.Pair {
	seen := map[string]bool{}
	out := make([]fst.Pair, 0, len(pairs))
	for _, p := range pairs {
		if seen[p.Out] || p.Out == "" {
			continue
		}
		seen[p.Out] = true
		out = append(out, fst.Pair{In: p.Out, Out: p.In})
	}
	return out
}
