package fst

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidWeight    = errors.New("weight must be finite and non-negative")
	ErrInvalidRank      = errors.New("rank must be non-negative")
	ErrEmptyKey         = errors.New("empty input key")
	ErrMalformedTable   = errors.New("malformed string table")
	ErrNotInvertible    = errors.New("arc cannot be inverted")
	ErrMalformedArchive = errors.New("malformed automaton archive")
)

// ConstructionError aborts a grammar build.
type ConstructionError struct {
	Op  string
	Err error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("fst: %s: %v", e.Op, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

func constructionErr(op string, err error) error {
	return &ConstructionError{Op: op, Err: err}
}

// NoPathError is returned when no accepting path consumes the whole input.
// Offset is the furthest input position any partial path reached.
type NoPathError struct {
	Offset int
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("fst: no accepting path, input covered up to offset %d", e.Offset)
}
