package grammars

import (
	"fmt"
	"strings"
)

type Class string

const (
	Cardinal    Class = "cardinal"
	Ordinal     Class = "ordinal"
	Decimal     Class = "decimal"
	Measure     Class = "measure"
	Date        Class = "date"
	Time        Class = "time"
	Money       Class = "money"
	Electronic  Class = "electronic"
	Telephone   Class = "telephone"
	Whitelist   Class = "whitelist"
	Word        Class = "word"
	Punctuation Class = "punctuation"
)

// TaggingOrder is the order of the top-level alternation. A class listed
// earlier wins a tie against a later one.
var TaggingOrder = []Class{
	Whitelist,
	Time,
	Date,
	Decimal,
	Measure,
	Cardinal,
	Ordinal,
	Money,
	Telephone,
	Electronic,
	Word,
}

// AllClasses lists every class, punctuation last.
var AllClasses = append(append([]Class{}, TaggingOrder...), Punctuation)

var DefaultWeights = map[Class]float64{
	Cardinal:    1.1,
	Ordinal:     1.1,
	Decimal:     1.1,
	Measure:     1.1,
	Date:        1.09,
	Time:        1.1,
	Money:       1.1,
	Electronic:  1.1,
	Telephone:   1.1,
	Whitelist:   1.01,
	Word:        100,
	Punctuation: 1.1,
}

// Rank is the 1-based tie-break priority of c. Punctuation ranks after
// every class of TaggingOrder.
func Rank(c Class) int32 {
	for i, tc := range TaggingOrder {
		if tc == c {
			return int32(i + 1)
		}
	}
	if c == Punctuation {
		return int32(len(TaggingOrder) + 1)
	}
	return 0
}

// ClassOfRank is the inverse of Rank.
func ClassOfRank(r int32) (Class, bool) {
	for _, c := range AllClasses {
		if Rank(c) == r {
			return c, true
		}
	}
	return "", false
}

func ParseClass(name string) (Class, error) {
	c := Class(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := DefaultWeights[c]; !ok {
		return "", fmt.Errorf("unknown semiotic class %q", name)
	}
	return c, nil
}

func (c Class) String() string {
	return string(c)
}

type Direction string

const (
	// ITN maps spoken form to written form.
	ITN Direction = "itn"
	// TN maps written form to spoken form.
	TN Direction = "tn"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(s)) {
	case ITN, "inverse", "":
		return ITN, nil
	case TN, "forward":
		return TN, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}
