package types

type Sentence struct {
	Span
	Text   string  `json:"text"`
	Tokens []Token `json:"tokens"`
	Tagged string  `json:"tagged"`
	Error  string  `json:"error,omitempty"`
}

func (sent *Sentence) GetSpan() *Span {
	return &sent.Span
}
