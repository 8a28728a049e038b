package pipeline

import (
	"fmt"
	"sort"

	"text2phenotype.com/itn/classify"
	"text2phenotype.com/itn/grammars"
	"text2phenotype.com/itn/types"
)

// Key names the grammar a document is tagged with.
type Key struct {
	Language  string
	Direction grammars.Direction
}

func (k Key) String() string {
	return k.Language + "/" + string(k.Direction)
}

// ParseKey applies the grammar defaults to an optional language and
// direction.
func ParseKey(language, direction string) (Key, error) {
	if language == "" {
		language = types.DefaultLanguage
	}
	dir, err := grammars.ParseDirection(direction)
	if err != nil {
		return Key{}, err
	}
	return Key{Language: language, Direction: dir}, nil
}

// UnsupportedError reports a request for a grammar that is not loaded.
type UnsupportedError struct {
	Language  string
	Direction string
	Err       error
}

func (e *UnsupportedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unsupported grammar %q/%q: %v", e.Language, e.Direction, e.Err)
	}
	return fmt.Sprintf("no grammar loaded for %q/%q", e.Language, e.Direction)
}

func (e *UnsupportedError) Unwrap() error {
	return e.Err
}

// Router holds one pipeline per loaded grammar.
type Router struct {
	pipelines map[Key]Pipeline
}

func NewRouter() *Router {
	return &Router{pipelines: map[Key]Pipeline{}}
}

func (r *Router) Add(key Key, ppln Pipeline) error {
	if _, ok := r.pipelines[key]; ok {
		return fmt.Errorf("grammar %s loaded twice", key)
	}
	r.pipelines[key] = ppln
	return nil
}

// AddGrammar wraps grammar in a pipeline and routes its language and
// direction to it.
func (r *Router) AddGrammar(grammar *classify.Grammar) error {
	return r.Add(Key{Language: grammar.Language, Direction: grammar.Direction}, New(grammar))
}

// Route returns the pipeline of the requested grammar. Empty values select
// the defaults.
func (r *Router) Route(language, direction string) (Pipeline, Key, error) {
	key, err := ParseKey(language, direction)
	if err != nil {
		return nil, Key{}, &UnsupportedError{Language: language, Direction: direction, Err: err}
	}
	ppln, ok := r.pipelines[key]
	if !ok {
		return nil, key, &UnsupportedError{Language: key.Language, Direction: string(key.Direction)}
	}
	return ppln, key, nil
}

func (r *Router) Keys() []Key {
	keys := make([]Key, 0, len(r.pipelines))
	for k := range r.pipelines {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}
