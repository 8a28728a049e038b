package cache

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"text2phenotype.com/itn/fst"
)

func sample(t *testing.T) *fst.Automaton {
	m, err := fst.StringMap([]fst.Pair{{In: "twelve", Out: "12"}, {In: "one", Out: "1"}})
	require.NoError(t, err)
	return fst.Optimize(fst.Union(m, fst.Plus(fst.AcceptSet(fst.RangeSet('a', 'z')))))
}

func TestFingerprint(t *testing.T) {
	require.Equal(t, Fingerprint("en", "itn"), Fingerprint("en", "itn"))
	require.NotEqual(t, Fingerprint("en", "itn"), Fingerprint("en", "tn"))
	require.NotEqual(t, Fingerprint("ab", "c"), Fingerprint("a", "bc"))
}

func TestStore(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		store := NewStore(t.TempDir())
		a := sample(t)
		fp := Fingerprint("en", "itn")
		require.NoError(t, store.Save("en", "itn", fp, a))

		loaded, ok := store.Load("en", "itn", fp)
		require.True(t, ok)
		require.True(t, fst.Equal(a, loaded))

		entries, err := os.ReadDir(store.Dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, "_en_itn.far", entries[0].Name())
	})

	t.Run("missing", func(t *testing.T) {
		store := NewStore(t.TempDir())
		_, ok := store.Load("en", "itn", 1)
		require.False(t, ok)
	})

	t.Run("fingerprint mismatch", func(t *testing.T) {
		store := NewStore(t.TempDir())
		require.NoError(t, store.Save("en", "itn", 1, sample(t)))
		_, ok := store.Load("en", "itn", 2)
		require.False(t, ok)

		_, err := readArtifact(store.Path("en", "itn"), 2)
		require.ErrorIs(t, err, ErrFingerprintMismatch)
	})

	t.Run("overwrite", func(t *testing.T) {
		store := NewStore(t.TempDir())
		require.NoError(t, store.Save("en", "itn", 1, sample(t)))
		require.NoError(t, store.Save("en", "itn", 2, fst.Accept("x")))
		a, ok := store.Load("en", "itn", 2)
		require.True(t, ok)
		require.True(t, fst.Equal(fst.Accept("x"), a))
	})

	corruptions := map[string]func([]byte) []byte{
		"truncated": func(b []byte) []byte { return b[:len(b)-3] },
		"flipped payload byte": func(b []byte) []byte {
			b[len(b)-1] ^= 0xff
			return b
		},
		"bad magic": func(b []byte) []byte {
			b[0] = 'X'
			return b
		},
		"bad version": func(b []byte) []byte {
			b[4] = 0xee
			return b
		},
		"garbage": func([]byte) []byte { return []byte("not a grammar") },
	}
	for name, corrupt := range corruptions {
		t.Run(name, func(t *testing.T) {
			store := NewStore(t.TempDir())
			require.NoError(t, store.Save("en", "itn", 7, sample(t)))
			path := store.Path("en", "itn")
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(path, corrupt(data), 0o644))

			_, ok := store.Load("en", "itn", 7)
			require.False(t, ok)

			_, err = readArtifact(path, 7)
			var corruptErr *CorruptError
			require.ErrorAs(t, err, &corruptErr)
			require.Equal(t, path, corruptErr.Path)
		})
	}
}

func TestNopLocker(t *testing.T) {
	release, err := NopLocker{}.Lock(context.Background(), LockKey("x", 1))
	require.NoError(t, err)
	require.NoError(t, release())
}

func TestLockerFromEnv(t *testing.T) {
	t.Setenv("ITN_REDIS_HOST", "")
	l, err := LockerFromEnv()
	require.NoError(t, err)
	require.IsType(t, NopLocker{}, l)
}
