// internal/service/tagging/keywords.go
package tagging

import "strings"

// genreEntry keeps the keyword table ordered; matched genres are emitted in
// table order so repeated classifications are reproducible.
type genreEntry struct {
	Genre    string
	Keywords []string
}

var genreKeywords = []genreEntry{
	{"techno", []string{"techno", "tech house", "minimal", "industrial"}},
	{"house", []string{"house", "deep house", "progressive house", "tech house"}},
	{"hip-hop", []string{"hip hop", "hip-hop", "rap", "trap", "boom bap", "drill"}},
	{"trap", []string{"trap", "808", "drill"}},
	{"rnb", []string{"rnb", "r&b", "soul", "neo soul"}},
	{"pop", []string{"pop", "dance pop", "electro pop"}},
	{"edm", []string{"edm", "electronic", "dance", "festival"}},
	{"lo-fi", []string{"lofi", "lo-fi", "chillhop", "chill"}},
	{"ambient", []string{"ambient", "atmospheric", "soundscape"}},
	{"drum-and-bass", []string{"drum and bass", "dnb", "jungle"}},
	{"dubstep", []string{"dubstep", "bass music", "riddim"}},
	{"reggaeton", []string{"reggaeton", "latin", "dembow"}},
	{"afrobeat", []string{"afrobeat", "afro", "amapiano"}},
}

type skillEntry struct {
	Level    string
	Keywords []string
}

// Ordered; the first matching level wins.
var skillKeywords = []skillEntry{
	{"beginner", []string{"beginner", "basic", "intro", "starter", "first", "learn", "101"}},
	{"intermediate", []string{"intermediate", "mid-level", "improving"}},
	{"advanced", []string{"advanced", "pro", "master", "expert", "professional"}},
}

var productTypeTags = map[string]string{
	"sample-pack":  "interest:samples",
	"preset-pack":  "interest:presets",
	"midi-pack":    "interest:midi",
	"beat-lease":   "interest:beats",
	"effect-chain": "interest:mixing",
	"coaching":     "interest:coaching",
	"course":       "interest:learning",
	"pdf":          "interest:guides",
	"service":      "interest:services",
}

// InferGenresFromText returns a "genre:<g>" tag name for every genre whose
// keywords appear as a substring of the input.
func InferGenresFromText(text string) []string {
	lower := strings.ToLower(text)
	matched := []string{}

	for _, entry := range genreKeywords {
		for _, keyword := range entry.Keywords {
			if strings.Contains(lower, keyword) {
				matched = append(matched, "genre:"+entry.Genre)
				break
			}
		}
	}

	return matched
}

// InferSkillLevelFromText returns the first matching skill level, or ""
// when no level keyword appears.
func InferSkillLevelFromText(text string) string {
	lower := strings.ToLower(text)

	for _, entry := range skillKeywords {
		for _, keyword := range entry.Keywords {
			if strings.Contains(lower, keyword) {
				return entry.Level
			}
		}
	}

	return ""
}

// ProductTypeTag maps a product type (or category) to its interest tag.
func ProductTypeTag(productType string) (string, bool) {
	t, ok := productTypeTags[productType]
	return t, ok
}
