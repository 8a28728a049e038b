package tagged

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseBlock(t *testing.T) {
	src := `tokens { measure { cardinal { negative: "-" integer: "5" } units: "kg" } }`
	b, err := ParseBlock(src)
	require.NoError(t, err)
	require.Equal(t, "measure", b.Class())
	require.Equal(t, src, b.String())

	v, ok := b.Get("measure", "cardinal", "integer")
	require.True(t, ok)
	require.Equal(t, "5", v)
	_, ok = b.Get("measure", "cardinal")
	require.False(t, ok)
	_, ok = b.Get("money")
	require.False(t, ok)

	expected := map[string]string{
		"measure.cardinal.negative": "-",
		"measure.cardinal.integer":  "5",
		"measure.units":             "kg",
	}
	if diff := cmp.Diff(expected, b.Fields()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestNameTokens(t *testing.T) {
	b, err := ParseBlock(`tokens { name: "\"" }`)
	require.NoError(t, err)
	require.Equal(t, "", b.Class())
	v, ok := b.Get("name")
	require.True(t, ok)
	require.Equal(t, `"`, v)
	require.Equal(t, `tokens { name: "\"" }`, b.String())

	b, err = ParseBlock(`tokens { name: "€5" }`)
	require.NoError(t, err)
	v, _ = b.Get("name")
	require.Equal(t, "€5", v)
}

func TestParseSequence(t *testing.T) {
	blocks, err := ParseSequence(`tokens { name: "hello" } tokens { cardinal { integer: "12" } } tokens { name: "," }`)
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	require.Equal(t, "cardinal", blocks[1].Class())

	empty, err := ParseSequence("")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestMalformed(t *testing.T) {
	for _, src := range []string{
		`tokens { name: "x" `,
		`token { name: "x" }`,
		`tokens { name "x" }`,
		`tokens { name: "unterminated }`,
	} {
		_, err := ParseBlock(src)
		require.Error(t, err, src)
	}
}
