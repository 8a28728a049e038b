package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"text2phenotype.com/itn/classify"
	"text2phenotype.com/itn/grammars"
	_ "text2phenotype.com/itn/grammars/en"
	"text2phenotype.com/itn/types"
)

type fakeClassifier struct{}

func (fakeClassifier) Classify(text string) ([]types.Token, error) {
	switch text {
	case "bad":
		return nil, errors.New("boom")
	case "panic":
		panic("kaboom")
	}
	return []types.Token{{
		Span:   types.Span{Begin: 0, End: int32(len([]rune(text)))},
		Class:  "word",
		Text:   text,
		Tagged: `tokens { name: "` + text + `" }`,
	}}, nil
}

func requireJSONEqual(t *testing.T, expected, actual string) {
	t.Helper()
	require.True(t, jsonpatch.Equal([]byte(expected), []byte(actual)), "expected %s\ngot %s", expected, actual)
}

func TestPipeline(t *testing.T) {
	ppln := newPipeline(fakeClassifier{}, types.BaseResponse{Language: "en", Direction: "itn"})

	res := <-ppln(Request{Tid: "doc-1", Text: "hello\r\nbad\n\npanic\nók"})
	requireJSONEqual(t, `{
		"docId": "doc-1",
		"language": "en",
		"direction": "itn",
		"sentences": [
			{"begin": 0, "end": 5, "text": "hello", "tagged": "tokens { name: \"hello\" }",
			 "tokens": [{"begin": 0, "end": 5, "class": "word", "text": "hello", "tagged": "tokens { name: \"hello\" }"}]},
			{"begin": 7, "end": 10, "text": "bad", "tagged": "", "tokens": [], "error": "boom"},
			{"begin": 12, "end": 17, "text": "panic", "tagged": "", "tokens": [], "error": "got panic: kaboom"},
			{"begin": 18, "end": 20, "text": "ók", "tagged": "tokens { name: \"ók\" }",
			 "tokens": [{"begin": 18, "end": 20, "class": "word", "text": "ók", "tagged": "tokens { name: \"ók\" }"}]}
		]
	}`, res)

	t.Run("empty document", func(t *testing.T) {
		res := <-ppln(Request{Tid: "empty", Text: "\n  \n"})
		requireJSONEqual(t, `{"docId": "empty", "language": "en", "direction": "itn", "sentences": []}`, res)
	})

	t.Run("concurrent requests", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				var resp types.TaggingResponse
				if assert.NoError(t, json.Unmarshal([]byte(<-ppln(Request{Tid: "c", Text: "a\nb\nc"})), &resp)) &&
					assert.Len(t, resp.Sentences, 3) {
					assert.Equal(t, "a", resp.Sentences[0].Text)
					assert.Equal(t, "c", resp.Sentences[2].Text)
				}
			}()
		}
		wg.Wait()
	})
}

func TestPipelineWithGrammar(t *testing.T) {
	g, err := classify.NewGrammar(context.Background(), classify.Options{Language: "en", Direction: grammars.ITN})
	require.NoError(t, err)

	res := <-New(g)(Request{Tid: "doc-2", Text: "buy twelve  apples\nfive dollars"})
	requireJSONEqual(t, `{
		"docId": "doc-2",
		"language": "en",
		"direction": "itn",
		"sentences": [
			{"begin": 0, "end": 18, "text": "buy twelve  apples",
			 "tagged": "tokens { name: \"buy\" } tokens { cardinal { integer: \"12\" } } tokens { name: \"apples\" }",
			 "tokens": [
				{"begin": 0, "end": 3, "class": "word", "text": "buy", "tagged": "tokens { name: \"buy\" }"},
				{"begin": 4, "end": 10, "class": "cardinal", "text": "twelve", "tagged": "tokens { cardinal { integer: \"12\" } }"},
				{"begin": 12, "end": 18, "class": "word", "text": "apples", "tagged": "tokens { name: \"apples\" }"}
			 ]},
			{"begin": 19, "end": 31, "text": "five dollars",
			 "tagged": "tokens { money { integer_part: \"5\" currency: \"$\" } }",
			 "tokens": [
				{"begin": 19, "end": 31, "class": "money", "text": "five dollars", "tagged": "tokens { money { integer_part: \"5\" currency: \"$\" } }"}
			 ]}
		]
	}`, res)
}
