package cache

import (
	"errors"
	"fmt"
)

var (
	errBadMagic            = errors.New("bad magic")
	errBadVersion          = errors.New("unsupported format version")
	errChecksum            = errors.New("checksum mismatch")
	ErrFingerprintMismatch = errors.New("fingerprint mismatch")
)

// CorruptError reports a cache artifact that exists but cannot be used.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("cache: corrupt artifact %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}
