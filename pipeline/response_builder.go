package pipeline

import (
	"sort"

	"text2phenotype.com/itn/types"
)

type ResponseBuilder func(in <-chan types.Sentence, request Request) <-chan types.TaggingResponse

func NewResponseBuilder(base types.BaseResponse) ResponseBuilder {
	return func(in <-chan types.Sentence, request Request) <-chan types.TaggingResponse {
		out := make(chan types.TaggingResponse)
		go func() {
			defer close(out)
			response := types.TaggingResponse{BaseResponse: base, Sentences: []types.Sentence{}}
			response.DocId = request.Tid
			for sent := range in {
				if sent.Tokens == nil {
					sent.Tokens = []types.Token{}
				}
				response.Sentences = append(response.Sentences, sent)
			}
			sort.Slice(response.Sentences, func(i, j int) bool {
				return types.SpanSortFunction(&response.Sentences[i].Span, &response.Sentences[j].Span)
			})
			out <- response
		}()
		return out
	}
}
