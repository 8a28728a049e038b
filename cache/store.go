package cache

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/logger"
)

var magic = [4]byte{'I', 'F', 'A', 'R'}

type header struct {
	Magic       [4]byte
	Version     uint16
	Fingerprint uint64
	Checksum    [32]byte
	Length      uint64
}

// Store keeps one compiled grammar per (language, direction) in Dir.
type Store struct {
	Dir string
	log zerolog.Logger
}

func NewStore(dir string) *Store {
	return &Store{
		Dir: dir,
		log: logger.NewLogger("Grammar cache").With().Str("cache_dir", dir).Logger(),
	}
}

func (s *Store) Path(language, direction string) string {
	return filepath.Join(s.Dir, fmt.Sprintf("_%s_%s.far", language, direction))
}

// Load returns the stored automaton when the artifact exists, is intact and
// was built for fingerprint. Every failure is a miss.
func (s *Store) Load(language, direction string, fingerprint uint64) (*fst.Automaton, bool) {
	path := s.Path(language, direction)
	a, err := readArtifact(path, fingerprint)
	switch {
	case err == nil:
		st := a.Stats()
		s.log.Info().
			Str("path", path).
			Int("states", st.States).
			Int("arcs", st.Arcs).
			Msg("Loaded grammar from cache")
		return a, true
	case errors.Is(err, fs.ErrNotExist):
		s.log.Debug().Str("path", path).Msg("No cached grammar")
	case errors.Is(err, ErrFingerprintMismatch):
		s.log.Info().Str("path", path).Msg("Cached grammar was built with a different configuration")
	default:
		s.log.Warn().Caller().Err(err).Msg("Ignoring unusable cached grammar")
	}
	return nil, false
}

// Save writes the artifact to a temporary file next to its final path and
// renames it into place.
func (s *Store) Save(language, direction string, fingerprint uint64, a *fst.Automaton) error {
	var payload bytes.Buffer
	xw, err := xz.NewWriter(&payload)
	if err != nil {
		return err
	}
	if _, err = a.WriteTo(xw); err != nil {
		return err
	}
	if err = xw.Close(); err != nil {
		return err
	}

	h := header{
		Magic:       magic,
		Version:     FormatVersion,
		Fingerprint: fingerprint,
		Checksum:    blake3.Sum256(payload.Bytes()),
		Length:      uint64(payload.Len()),
	}

	if err = os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	path := s.Path(language, direction)
	tmp, err := os.CreateTemp(s.Dir, ".far-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	if err = binary.Write(w, binary.LittleEndian, &h); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err = w.Write(payload.Bytes()); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = w.Flush(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmpName, path); err != nil {
		return err
	}

	s.log.Info().
		Str("path", path).
		Str("size", humanize.Bytes(uint64(binary.Size(h))+h.Length)).
		Msg("Stored grammar in cache")
	return nil
}

func readArtifact(path string, fingerprint uint64) (*fst.Automaton, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var h header
	if err = binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	if h.Magic != magic {
		return nil, &CorruptError{Path: path, Err: errBadMagic}
	}
	if h.Version != FormatVersion {
		return nil, &CorruptError{Path: path, Err: fmt.Errorf("%w: %d", errBadVersion, h.Version)}
	}
	if h.Fingerprint != fingerprint {
		return nil, ErrFingerprintMismatch
	}

	payload, err := io.ReadAll(io.LimitReader(r, int64(h.Length)+1))
	if err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	if uint64(len(payload)) != h.Length {
		return nil, &CorruptError{Path: path, Err: fmt.Errorf("payload is %d bytes, header says %d", len(payload), h.Length)}
	}
	if blake3.Sum256(payload) != h.Checksum {
		return nil, &CorruptError{Path: path, Err: errChecksum}
	}

	xr, err := xz.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	a, err := fst.ReadFrom(xr)
	if err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	return a, nil
}
