// Package opcode generates human-readable codes for stock opname sessions.
//
// Codes have the form PREFIX-YYYYMMDD-HHMMSS-XXXX where XXXX is a random
// uppercase alphanumeric suffix. Unlike sequential document numbers, a random
// suffix needs no database round-trip and stays collision-free in practice:
// two sessions would have to be created in the same second at the same branch
// and draw the same 4 characters out of 36^4.
package opcode

import (
	"crypto/rand"
	"fmt"
	"time"
)

// DefaultPrefix is the prefix used for stock opname sessions.
const DefaultPrefix = "SO"

// alphabet excludes nothing: uppercase letters and digits, 36 symbols.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const suffixLen = 4

// Generator produces session codes. The zero value uses DefaultPrefix.
type Generator struct {
	Prefix string
}

// New creates a Generator with the given prefix.
func New(prefix string) *Generator {
	return &Generator{Prefix: prefix}
}

// Generate returns a new code for the given timestamp,
// e.g. "SO-20250115-133005-7GQ2".
func (g *Generator) Generate(now time.Time) string {
	prefix := g.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s-%s-%s-%s",
		prefix,
		now.Format("20060102"),
		now.Format("150405"),
		randomSuffix(),
	)
}

// Generate returns a new session code with the default prefix.
func Generate(now time.Time) string {
	return (&Generator{}).Generate(now)
}

func randomSuffix() string {
	buf := make([]byte, suffixLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// time-derived suffix rather than panicking in a request path.
		ns := time.Now().UnixNano()
		for i := range buf {
			buf[i] = alphabet[ns%int64(len(alphabet))]
			ns /= int64(len(alphabet))
		}
		return string(buf)
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}
