package classify

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"text2phenotype.com/itn/cache"
	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/grammars"
	"text2phenotype.com/itn/types"
)

// ExclusionSet marks classes whose grammar is replaced by the empty language.
type ExclusionSet map[grammars.Class]bool

// Weights holds the cost added to every path of a class.
type Weights map[grammars.Class]float64

// Options configure NewGrammar.
type Options struct {
	Language         string
	Direction        grammars.Direction
	CacheDir         string
	OverwriteCache   bool
	ExcludedClasses  map[string]bool
	ClassWeights     map[string]float64
	ExtraSpaceWeight float64
	// WhitelistFile replaces the language's built-in whitelist.
	WhitelistFile string
	// Locker guards builds against other processes sharing CacheDir.
	// Nil means no locking.
	Locker cache.Locker
}

func OptionsFromConfig(cfg types.Configuration) (Options, error) {
	dir, err := grammars.ParseDirection(cfg.Direction)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Language:         cfg.Language,
		Direction:        dir,
		CacheDir:         cfg.CacheDir,
		OverwriteCache:   cfg.OverwriteCache,
		ExcludedClasses:  cfg.ExcludedClasses,
		ClassWeights:     cfg.ClassWeights,
		ExtraSpaceWeight: cfg.ExtraSpaceWeight,
		WhitelistFile:    cfg.WhitelistFile,
	}, nil
}

// ParseExclusions keeps the known classes of raw. Unknown names are logged
// and dropped.
func ParseExclusions(raw map[string]bool, log zerolog.Logger) ExclusionSet {
	ex := ExclusionSet{}
	for _, name := range sortedKeys(raw) {
		c, err := grammars.ParseClass(name)
		if err != nil {
			log.Warn().Str("class", name).Msg("Ignoring exclusion of unknown class")
			continue
		}
		if raw[name] {
			ex[c] = true
		}
	}
	return ex
}

// ParseWeights resolves raw over the default weight table. Unknown names are
// logged and dropped; a negative, NaN or infinite weight is a construction
// error.
func ParseWeights(raw map[string]float64, log zerolog.Logger) (Weights, error) {
	w := Weights{}
	for c, v := range grammars.DefaultWeights {
		w[c] = v
	}
	for _, name := range sortedKeys(raw) {
		c, err := grammars.ParseClass(name)
		if err != nil {
			log.Warn().Str("class", name).Msg("Ignoring weight of unknown class")
			continue
		}
		v := raw[name]
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &fst.ConstructionError{
				Op:  "class weights",
				Err: fmt.Errorf("%w: %s=%v", fst.ErrInvalidWeight, name, v),
			}
		}
		w[c] = v
	}
	return w, nil
}

// ApplyExclusions returns a copy of set with every excluded class replaced by
// the empty language.
func ApplyExclusions(set grammars.Set, ex ExclusionSet) grammars.Set {
	out := make(grammars.Set, len(set))
	for c, g := range set {
		if ex[c] {
			g = fst.Empty()
		}
		out[c] = g
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// canonical renders the resolved configuration for fingerprinting.
func (ex ExclusionSet) canonical() string {
	var names []string
	for c, on := range ex {
		if on {
			names = append(names, string(c))
		}
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func (w Weights) canonical() string {
	parts := make([]string, 0, len(grammars.AllClasses))
	for _, c := range grammars.AllClasses {
		parts = append(parts, string(c)+"="+strconv.FormatFloat(w[c], 'g', -1, 64))
	}
	return strings.Join(parts, ",")
}

func pairsCanonical(pairs []fst.Pair) string {
	if pairs == nil {
		return "default"
	}
	var sb strings.Builder
	for _, p := range pairs {
		sb.WriteString(p.In)
		sb.WriteByte('|')
		sb.WriteString(p.Out)
		sb.WriteByte('\n')
	}
	return sb.String()
}
