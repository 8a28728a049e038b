package classify

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/rs/zerolog"

	"text2phenotype.com/itn/cache"
	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/grammars"
	"text2phenotype.com/itn/logger"
)

// Grammar is a compiled sentence grammar. It is immutable and safe for
// concurrent use.
type Grammar struct {
	Language    string
	Direction   grammars.Direction
	Fingerprint uint64
	// FromCache reports whether the automaton was loaded from the cache.
	FromCache bool

	automaton *fst.Automaton
	log       zerolog.Logger
}

func (g *Grammar) Automaton() *fst.Automaton {
	return g.automaton
}

// NewGrammar builds the grammar described by opts, or loads it from
// opts.CacheDir when a cached artifact with the same fingerprint exists.
func NewGrammar(ctx context.Context, opts Options) (*Grammar, error) {
	log := logger.NewLogger("Classify grammar")
	if opts.Language == "" {
		opts.Language = "en"
	}
	if opts.Direction == "" {
		opts.Direction = grammars.ITN
	}

	build, err := grammars.Lookup(opts.Language)
	if err != nil {
		return nil, err
	}
	ex := ParseExclusions(opts.ExcludedClasses, log)
	weights, err := ParseWeights(opts.ClassWeights, log)
	if err != nil {
		return nil, err
	}
	if opts.ExtraSpaceWeight < 0 || math.IsNaN(opts.ExtraSpaceWeight) || math.IsInf(opts.ExtraSpaceWeight, 0) {
		return nil, &fst.ConstructionError{
			Op:  "extra space weight",
			Err: fmt.Errorf("%w: %v", fst.ErrInvalidWeight, opts.ExtraSpaceWeight),
		}
	}
	var whitelist []fst.Pair
	if opts.WhitelistFile != "" {
		if whitelist, err = grammars.LoadTable(opts.WhitelistFile); err != nil {
			return nil, err
		}
	}

	fp := fingerprint(opts, ex, weights, whitelist, grammars.TableDigest(opts.Language))
	g := &Grammar{
		Language:    opts.Language,
		Direction:   opts.Direction,
		Fingerprint: fp,
	}
	g.log = log.With().
		Str("language", g.Language).
		Str("direction", string(g.Direction)).
		Str("fingerprint", fmt.Sprintf("%016x", fp)).
		Logger()

	var store *cache.Store
	if opts.CacheDir != "" {
		store = cache.NewStore(opts.CacheDir)
		if !opts.OverwriteCache {
			if a, ok := store.Load(g.Language, string(g.Direction), fp); ok {
				g.automaton, g.FromCache = a, true
				return g, nil
			}
		}

		locker := opts.Locker
		if locker == nil {
			locker = cache.NopLocker{}
		}
		release, err := locker.Lock(ctx, cache.LockKey(store.Path(g.Language, string(g.Direction)), fp))
		if err != nil {
			g.log.Warn().Caller().Err(err).Msg("Could not obtain build lock, building without it")
		} else {
			defer func() {
				if err := release(); err != nil {
					g.log.Warn().Caller().Err(err).Msg("Could not release build lock")
				}
			}()
			// another process may have stored it while we waited
			if !opts.OverwriteCache {
				if a, ok := store.Load(g.Language, string(g.Direction), fp); ok {
					g.automaton, g.FromCache = a, true
					return g, nil
				}
			}
		}
	}

	g.log.Info().Msg("Building grammar")
	set, err := build(grammars.Options{Direction: g.Direction, Whitelist: whitelist})
	if err != nil {
		return nil, err
	}
	a, err := BuildGraph(set, ex, weights, opts.ExtraSpaceWeight)
	if err != nil {
		return nil, err
	}
	g.automaton = a
	st := a.Stats()
	g.log.Info().Int("states", st.States).Int("arcs", st.Arcs).Msg("Grammar built")

	if store != nil {
		if err := store.Save(g.Language, string(g.Direction), fp, a); err != nil {
			g.log.Error().Caller().Err(err).Msg("Could not store grammar in cache")
		}
	}
	return g, nil
}

// fingerprint covers the selection, the weights, the whitelist override and
// the language's own data tables.
func fingerprint(opts Options, ex ExclusionSet, weights Weights, whitelist []fst.Pair, tables string) uint64 {
	return cache.Fingerprint(
		opts.Language,
		string(opts.Direction),
		ex.canonical(),
		weights.canonical(),
		strconv.FormatFloat(opts.ExtraSpaceWeight, 'g', -1, 64),
		pairsCanonical(whitelist),
		tables,
	)
}
