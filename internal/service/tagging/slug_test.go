// internal/service/tagging/slug_test.go
package tagging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTagSlug(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"punctuation stripped", "Epic Drums Vol. 1!", "epic-drums-vol-1"},
		{"lowercased", "MIXING Masterclass", "mixing-masterclass"},
		{"collapses whitespace", "Lo-Fi   Chill    Pack", "lo-fi-chill-pack"},
		{"collapses hyphen runs", "Trap --- Essentials", "trap-essentials"},
		{"unicode dropped", "Café Beats™", "caf-beats"},
		{"already clean", "deep-house-toolkit", "deep-house-toolkit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateTagSlug(tt.title))
		})
	}
}

func TestGenerateTagSlugProperties(t *testing.T) {
	titles := []string{
		"Epic Drums Vol. 1!",
		"!!!???",
		"-- leading and trailing --",
		strings.Repeat("very long product title ", 10),
		"808 Bass & FX (Deluxe Edition)",
	}

	for _, title := range titles {
		slug := GenerateTagSlug(title)

		assert.LessOrEqual(t, len(slug), 50, "slug too long for %q", title)
		assert.False(t, strings.HasPrefix(slug, "-"), "leading hyphen for %q", title)
		assert.False(t, strings.HasSuffix(slug, "-"), "trailing hyphen for %q", title)
		for _, r := range slug {
			ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
			assert.True(t, ok, "unexpected rune %q in slug for %q", r, title)
		}

		// Deterministic.
		assert.Equal(t, slug, GenerateTagSlug(title))
	}
}
