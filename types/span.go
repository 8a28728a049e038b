package types

type HasSpan interface {
	GetSpan() *Span
}

// Span is a half-open range of rune offsets.
type Span struct {
	Begin int32 `json:"begin"`
	End   int32 `json:"end"`
}

func CheckSpansOverlap(covered *Span, covering *Span) bool {
	return covering.Begin <= covered.Begin && covering.End >= covered.End
}

func (span Span) Len() int32 {
	return span.End - span.Begin
}

func (span Span) Shift(offset int32) Span {
	return Span{Begin: span.Begin + offset, End: span.End + offset}
}

// TextOf returns the covered part of runes, or false when the span does not
// fit.
func (span Span) TextOf(runes []rune) (string, bool) {
	if span.Begin < 0 || span.End > int32(len(runes)) || span.Begin > span.End {
		return "", false
	}
	return string(runes[span.Begin:span.End]), true
}

type Spans []HasSpan

func (spans Spans) Len() int {
	return len(spans)
}

func (spans Spans) Less(i int, j int) bool {
	return SpanSortFunction(spans[i].GetSpan(), spans[j].GetSpan())
}

func (spans Spans) Swap(i int, j int) {
	spans[i], spans[j] = spans[j], spans[i]
}

func SpanSortFunction(spanA *Span, spanB *Span) bool {
	if spanA.Begin == spanB.Begin {
		return spanA.End < spanB.End
	}
	return spanA.Begin < spanB.Begin
}
