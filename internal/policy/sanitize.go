package policy

import (
	"regexp"
	"strings"
)

// Phrases that reveal the companion's synthetic origin. Matches are
// removed wherever they appear; the persona never breaks character.
var bannedPhrases = []string{
	"as an AI language model",
	"as an AI",
	"as a language model",
	"as an artificial intelligence",
	"I am an AI",
	"I'm an AI",
	"I am a language model",
}

var bannedPattern = buildBannedPattern(bannedPhrases)

func buildBannedPattern(phrases []string) *regexp.Regexp {
	quoted := make([]string, 0, len(phrases))
	for _, p := range phrases {
		quoted = append(quoted, regexp.QuoteMeta(p))
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
}

// SanitizeReply strips every occurrence of a banned phrase from the
// completion text, case-insensitively, at any position. Matches are
// replaced with the empty string; surrounding whitespace is left alone.
func SanitizeReply(text string) (sanitized string, hits int) {
	sanitized = bannedPattern.ReplaceAllStringFunc(text, func(string) string {
		hits++
		return ""
	})
	return sanitized, hits
}
