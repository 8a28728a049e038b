package pipeline

import (
	"encoding/json"

	"text2phenotype.com/itn/classify"
	"text2phenotype.com/itn/logger"
	"text2phenotype.com/itn/types"
)

// New builds the document pipeline around a compiled grammar.
func New(grammar *classify.Grammar) Pipeline {
	return newPipeline(grammar, types.BaseResponse{
		Language:  grammar.Language,
		Direction: string(grammar.Direction),
	})
}

func newPipeline(classifier Classifier, base types.BaseResponse) Pipeline {
	itnLogger := logger.NewLogger("Tagging pipeline").With().
		Str("language", base.Language).
		Str("direction", base.Direction).
		Logger()
	splitter := NewLineSplitter()
	responseBuilder := NewResponseBuilder(base)

	return func(request Request) <-chan string {
		responseChan := make(chan string)
		pplnLog := itnLogger.With().Str("tid", request.Tid).Logger()
		errLogger := pplnLog.With().Caller().Logger()
		tagger := NewTagger(classifier, pplnLog)
		pplnLog.Info().Msg("Started tagging pipeline")

		go func() {
			defer close(responseChan)
			in := make(chan string, 1)
			in <- request.Text
			close(in)

			response := <-responseBuilder(tagger(splitter(in)), request)

			buf, err := json.Marshal(response)
			if err != nil {
				errLogger.Err(err).Msg("Failed to marshall response")
			}
			pplnLog.Info().Int("sentences", len(response.Sentences)).Msg("Finished tagging pipeline")
			responseChan <- string(buf)
		}()

		return responseChan
	}
}
