package cache

import (
	"fmt"
	"strings"

	"text2phenotype.com/itn/utils"
)

// FormatVersion changes whenever grammar construction changes in a way that
// makes previously stored automata stale.
const FormatVersion uint16 = 1

// Fingerprint hashes the canonical rendering of everything a compiled
// grammar depends on. Callers pass parts in a fixed order.
func Fingerprint(parts ...string) uint64 {
	var sb strings.Builder
	fmt.Fprintf(&sb, "v%d", FormatVersion)
	for _, p := range parts {
		// length prefix keeps ("ab","c") and ("a","bc") apart
		fmt.Fprintf(&sb, "|%d:%s", len(p), p)
	}
	return utils.HashString(sb.String())
}
