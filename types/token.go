package types

import (
	"strings"

	"text2phenotype.com/itn/tagged"
)

// Token is one classified span. Tagged is the full `tokens { ... }` block.
type Token struct {
	Span
	Class  string `json:"class"`
	Text   string `json:"text"`
	Tagged string `json:"tagged"`
}

func (token *Token) GetSpan() *Span {
	return &token.Span
}

// Fields parses the tagged block of the token.
func (token *Token) Fields() (*tagged.Block, error) {
	return tagged.ParseBlock(token.Tagged)
}

// JoinTagged renders tokens in the space-joined form verbalizers read.
func JoinTagged(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Tagged
	}
	return strings.Join(parts, " ")
}

// Surface joins the surface text of tokens with single spaces.
func Surface(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}
