package policy

import (
	"math/rand"
	"strings"
)

// Expressive glyphs the companion is allowed to use. The same set is
// used both for the presence check and as the append candidate pool.
var affectGlyphs = []string{"😊", "🙂", "✨", "💜", "🌸", "🤍", "☀️"}

// RandSource picks an index in [0, n). Pluggable so tests can inject a
// deterministic choice; production uses the shared math/rand source.
type RandSource func(n int) int

// DefaultRandSource draws from the process-wide generator. The choice
// is presentational, it does not need to be reproducible or seeded.
func DefaultRandSource(n int) int { return rand.Intn(n) }

// EnsureAffect guarantees minimal affective signaling: if the text
// contains none of the approved glyphs, one is chosen at random and
// appended after a single space. Text that already carries a glyph is
// returned unchanged.
func EnsureAffect(text string, pick RandSource) (out string, appended bool) {
	for _, g := range affectGlyphs {
		if strings.Contains(text, g) {
			return text, false
		}
	}
	if pick == nil {
		pick = DefaultRandSource
	}
	return text + " " + affectGlyphs[pick(len(affectGlyphs))], true
}
