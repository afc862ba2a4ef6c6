// internal/service/tagging/slug.go
package tagging

import (
	"regexp"
	"strings"
)

var (
	slugStripRe    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRe    = regexp.MustCompile(`\s+`)
	slugHyphenRe   = regexp.MustCompile(`-+`)
	slugTrimEndsRe = regexp.MustCompile(`^-|-$`)
)

// GenerateTagSlug derives a URL-safe slug from a product or course title.
// The result contains only [a-z0-9-], is at most 50 characters, and has no
// leading or trailing hyphen. The same title always yields the same slug.
func GenerateTagSlug(title string) string {
	s := strings.ToLower(title)
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(s, "-")
	s = slugHyphenRe.ReplaceAllString(s, "-")
	if len(s) > 50 {
		s = s[:50]
	}
	return slugTrimEndsRe.ReplaceAllString(s, "")
}
