package classify

import (
	"errors"
	"fmt"
	"unicode"

	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/grammars"
	"text2phenotype.com/itn/types"
)

// NoPathError names the first input rune no class grammar could cover.
// Char is 0 when the input ended too early.
type NoPathError struct {
	Offset int
	Char   rune
	// Text is the whitespace-delimited chunk containing Offset.
	Text string
}

func (e *NoPathError) Error() string {
	if e.Char == 0 {
		return fmt.Sprintf("classify: no tagging for %q, input ended unexpectedly at offset %d", e.Text, e.Offset)
	}
	return fmt.Sprintf("classify: no tagging for %q, cannot cover %q at offset %d", e.Text, e.Char, e.Offset)
}

func newNoPathError(input []rune, offset int) *NoPathError {
	e := &NoPathError{Offset: offset}
	if offset < len(input) {
		e.Char = input[offset]
	}
	begin, end := offset, offset
	if begin >= len(input) {
		begin = len(input) - 1
		end = len(input)
	}
	for begin > 0 && !unicode.IsSpace(input[begin-1]) {
		begin--
	}
	for end < len(input) && !unicode.IsSpace(input[end]) {
		end++
	}
	if begin >= 0 && begin <= end {
		e.Text = string(input[begin:end])
	}
	return e
}

func blank(input []rune) bool {
	for _, r := range input {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// Classify tags text into a sequence of tokens. Whitespace-only text yields
// no tokens.
func (g *Grammar) Classify(text string) ([]types.Token, error) {
	input := []rune(text)
	if blank(input) {
		return []types.Token{}, nil
	}
	path, err := fst.ShortestPath(g.automaton, input)
	if err != nil {
		var npe *fst.NoPathError
		if errors.As(err, &npe) {
			return nil, newNoPathError(input, npe.Offset)
		}
		return nil, err
	}
	return splitTokens(input, path.Steps)
}

// splitTokens cuts the path into top-level `tokens { ... }` blocks. Braces
// inside quoted field values do not count.
func splitTokens(input []rune, steps []fst.Step) ([]types.Token, error) {
	var (
		tokens  []types.Token
		out     []rune
		depth   int
		quoted  bool
		escaped bool
		open    bool
		rank    int32
		begin   = -1
		end     = -1
	)
	for _, st := range steps {
		if open {
			rank += st.Cost.Rank
			if st.Input != fst.NoInput {
				if begin < 0 {
					begin = st.Input
				}
				end = st.Input + 1
			}
		}
		if st.Output == fst.NoOutput {
			continue
		}
		r := st.Output
		if !open {
			if r == ' ' {
				continue
			}
			open = true
			rank = st.Cost.Rank
		}
		out = append(out, r)
		switch {
		case escaped:
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '{':
			depth++
		case r == '}':
			depth--
			if depth == 0 {
				tok, err := newToken(input, out, rank, begin, end)
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, tok)
				out, open, rank, begin, end = out[:0], false, 0, -1, -1
			}
		}
	}
	if open {
		return nil, fmt.Errorf("classify: unterminated token %q", string(out))
	}
	return tokens, nil
}

func newToken(input []rune, out []rune, rank int32, begin, end int) (types.Token, error) {
	tagged := string(out)
	class, ok := grammars.ClassOfRank(rank)
	if !ok {
		return types.Token{}, fmt.Errorf("classify: token %q carries unknown class rank %d", tagged, rank)
	}
	if begin < 0 {
		return types.Token{}, fmt.Errorf("classify: token %q consumed no input", tagged)
	}
	return types.Token{
		Span:   types.Span{Begin: int32(begin), End: int32(end)},
		Class:  string(class),
		Text:   string(input[begin:end]),
		Tagged: tagged,
	}, nil
}
