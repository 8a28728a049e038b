package grammars

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/utils"
)

// Options are the build inputs of a language besides the class selection.
type Options struct {
	Direction Direction
	// Whitelist replaces the language's embedded spoken|written table
	// when non-nil.
	Whitelist []fst.Pair
}

// Set maps every class to its tagged automaton.
type Set map[Class]*fst.Automaton

// Builder builds all class grammars of one language.
type Builder func(opts Options) (Set, error)

type language struct {
	build Builder
	// tables is the digest of the data files the builder reads.
	tables string
}

var (
	registryMu sync.RWMutex
	registry   = map[string]language{}
)

// Register makes a language available by name. tables holds the data files
// its builder reads, if any. It panics on a duplicate or unreadable tables.
func Register(name string, b Builder, tables fs.FS) {
	digest := ""
	if tables != nil {
		var err error
		if digest, err = DigestTables(tables); err != nil {
			panic(fmt.Sprintf("grammars: language %q: %v", name, err))
		}
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[name]; ok {
		panic(fmt.Sprintf("grammars: language %q registered twice", name))
	}
	registry[name] = language{build: b, tables: digest}
}

func Lookup(name string) (Builder, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	l, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q", name)
	}
	return l.build, nil
}

// TableDigest returns the digest of the data files registered with a
// language, or "" when there are none.
func TableDigest(name string) string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[name].tables
}

// DigestTables hashes the path and content of every regular file of tables.
func DigestTables(tables fs.FS) (string, error) {
	var sb strings.Builder
	err := fs.WalkDir(tables, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return err
		}
		data, err := fs.ReadFile(tables, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(&sb, "%s|%d:%s|", path, len(data), data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", utils.HashString(sb.String())), nil
}

func Languages() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
