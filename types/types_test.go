package types

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSpan(t *testing.T) {
	runes := []rune("héllo world")
	s := Span{Begin: 6, End: 11}
	text, ok := s.TextOf(runes)
	require.True(t, ok)
	require.Equal(t, "world", text)
	require.Equal(t, int32(5), s.Len())
	require.Equal(t, Span{Begin: 8, End: 13}, s.Shift(2))

	_, ok = Span{Begin: 3, End: 20}.TextOf(runes)
	require.False(t, ok)

	require.True(t, CheckSpansOverlap(&Span{Begin: 1, End: 2}, &Span{Begin: 0, End: 5}))
	require.False(t, CheckSpansOverlap(&Span{Begin: 0, End: 5}, &Span{Begin: 1, End: 2}))

	tokens := Spans{
		&Token{Span: Span{Begin: 4, End: 6}},
		&Token{Span: Span{Begin: 0, End: 3}},
		&Token{Span: Span{Begin: 0, End: 1}},
	}
	sort.Sort(tokens)
	require.Equal(t, Span{Begin: 0, End: 1}, *tokens[0].GetSpan())
	require.Equal(t, Span{Begin: 4, End: 6}, *tokens[2].GetSpan())
}

func TestTokens(t *testing.T) {
	tokens := []Token{
		{Span: Span{Begin: 0, End: 6}, Class: "cardinal", Text: "twelve", Tagged: `tokens { cardinal { integer: "12" } }`},
		{Span: Span{Begin: 7, End: 13}, Class: "word", Text: "apples", Tagged: `tokens { name: "apples" }`},
	}
	require.Equal(t, `tokens { cardinal { integer: "12" } } tokens { name: "apples" }`, JoinTagged(tokens))
	require.Equal(t, "twelve apples", Surface(tokens))

	b, err := tokens[0].Fields()
	require.NoError(t, err)
	v, ok := b.Get("cardinal", "integer")
	require.True(t, ok)
	require.Equal(t, "12", v)
}

func TestLoadConfigurations(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("default.yaml", "language: en\ndirection: itn\n")
	write("tuned.yaml", `
direction: tn
cache_dir: /tmp/itn
overwrite_cache: true
excluded_classes:
  telephone: true
class_weights:
  word: 50
extra_space_weight: 0.5
whitelist_file: whitelist.txt
`)
	write("broken.yaml", "class_weights: [1, 2\n")
	write("notes.txt", "ignored")

	cfgs, err := LoadConfigurations(dir)
	require.NoError(t, err)
	require.Len(t, cfgs, 2)

	expected := Configuration{
		Name:             "tuned",
		FilePath:         filepath.Join(dir, "tuned.yaml"),
		Language:         DefaultLanguage,
		Direction:        "tn",
		CacheDir:         "/tmp/itn",
		OverwriteCache:   true,
		ExcludedClasses:  map[string]bool{"telephone": true},
		ClassWeights:     map[string]float64{"word": 50},
		ExtraSpaceWeight: 0.5,
		WhitelistFile:    filepath.Join(dir, "whitelist.txt"),
	}
	if diff := cmp.Diff(expected, cfgs[1]); diff != "" {
		t.Errorf("configuration mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "default", cfgs[0].Name)
	require.Equal(t, "itn", cfgs[0].Direction)

	_, err = LoadConfiguration(filepath.Join(dir, "broken.yaml"))
	require.Error(t, err)
}
