package pipeline

import (
	"strings"
	"unicode/utf8"

	"text2phenotype.com/itn/types"
)

type SentenceSplitter func(in <-chan string) <-chan types.Sentence

// NewLineSplitter emits one sentence per non-blank line. Spans are rune
// offsets into the document.
func NewLineSplitter() SentenceSplitter {
	return func(in <-chan string) <-chan types.Sentence {
		out := make(chan types.Sentence)
		go func() {
			defer close(out)
			for text := range in {
				var offset int32
				for _, line := range strings.SplitAfter(text, "\n") {
					length := int32(utf8.RuneCountInString(line))
					body := strings.TrimRight(line, "\r\n")
					if strings.TrimSpace(body) != "" {
						out <- types.Sentence{
							Span: types.Span{Begin: offset, End: offset + int32(utf8.RuneCountInString(body))},
							Text: body,
						}
					}
					offset += length
				}
			}
		}()
		return out
	}
}
