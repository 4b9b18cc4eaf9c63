package policy

import (
	"strings"
	"testing"
)

func TestSanitizeRemovesBannedPhrases(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		hits int
	}{
		{
			name: "exact phrase",
			in:   "As an AI, I cannot say.",
			want: ", I cannot say.",
			hits: 1,
		},
		{
			name: "mixed case mid-sentence",
			in:   "Well, aS An ai I would say yes.",
			want: "Well,  I would say yes.",
			hits: 1,
		},
		{
			name: "multiple occurrences",
			in:   "As an AI I try. as a language model I fail. AS AN AI again.",
			want: " I try.  I fail.  again.",
			hits: 3,
		},
		{
			name: "longer phrase removed whole",
			in:   "as an AI language model I must decline",
			want: " I must decline",
			hits: 1,
		},
		{
			name: "clean text untouched",
			in:   "Let's plan your week together.",
			want: "Let's plan your week together.",
			hits: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, hits := SanitizeReply(tc.in)
			if got != tc.want {
				t.Fatalf("SanitizeReply(%q) = %q, want %q", tc.in, got, tc.want)
			}
			if hits != tc.hits {
				t.Fatalf("hits = %d, want %d", hits, tc.hits)
			}
			if strings.Contains(strings.ToLower(got), "as an ai") {
				t.Fatalf("sanitized text still reveals origin: %q", got)
			}
		})
	}
}

func TestEnsureAffectAppendsWhenMissing(t *testing.T) {
	pick := func(n int) int { return 0 }

	out, appended := EnsureAffect("I missed you today.", pick)
	if !appended {
		t.Fatalf("appended = false, want true")
	}
	want := "I missed you today. " + affectGlyphs[0]
	if out != want {
		t.Fatalf("EnsureAffect = %q, want %q", out, want)
	}
}

func TestEnsureAffectLeavesExistingGlyph(t *testing.T) {
	in := "I missed you today ✨ truly."
	out, appended := EnsureAffect(in, func(int) int { return 3 })
	if appended {
		t.Fatalf("appended = true, want false")
	}
	if out != in {
		t.Fatalf("EnsureAffect changed text with glyph: %q", out)
	}
}

func TestEnsureAffectUsesInjectedSource(t *testing.T) {
	for i := range affectGlyphs {
		out, _ := EnsureAffect("hello", func(int) int { return i })
		if !strings.HasSuffix(out, " "+affectGlyphs[i]) {
			t.Fatalf("pick %d: out = %q, want suffix %q", i, out, affectGlyphs[i])
		}
	}
}

func TestEnsureAffectDefaultSourceInRange(t *testing.T) {
	out, appended := EnsureAffect("hello", nil)
	if !appended {
		t.Fatalf("appended = false, want true")
	}
	found := false
	for _, g := range affectGlyphs {
		if strings.HasSuffix(out, " "+g) {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("appended glyph not in candidate set: %q", out)
	}
}
