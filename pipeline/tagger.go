package pipeline

import (
	"sync"

	"github.com/rs/zerolog"

	"text2phenotype.com/itn/types"
	"text2phenotype.com/itn/utils"
)

// Classifier is the part of a compiled grammar the pipeline needs.
type Classifier interface {
	Classify(text string) ([]types.Token, error)
}

type Tagger func(in <-chan types.Sentence) <-chan types.Sentence

// NewTagger classifies sentences concurrently. A sentence that cannot be
// classified keeps its text and carries the error message.
func NewTagger(classifier Classifier, log zerolog.Logger) Tagger {
	return func(in <-chan types.Sentence) <-chan types.Sentence {
		out := make(chan types.Sentence)
		go func() {
			defer close(out)
			var wg sync.WaitGroup
			for sent := range in {
				wg.Add(1)
				go func(sent types.Sentence) {
					defer wg.Done()
					if err := tagSentence(classifier, &sent); err != nil {
						log.Warn().Err(err).
							Int32("begin", sent.Begin).
							Int32("end", sent.End).
							Msg("Could not classify sentence")
						sent.Error = err.Error()
					}
					out <- sent
				}(sent)
			}
			wg.Wait()
		}()
		return out
	}
}

func tagSentence(classifier Classifier, sent *types.Sentence) (err error) {
	defer utils.RecoverWithError(&err)
	tokens, err := classifier.Classify(sent.Text)
	if err != nil {
		return err
	}
	for i := range tokens {
		tokens[i].Span = tokens[i].Shift(sent.Begin)
	}
	sent.Tokens = tokens
	sent.Tagged = types.JoinTagged(tokens)
	return nil
}
