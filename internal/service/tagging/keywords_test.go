// internal/service/tagging/keywords_test.go
package tagging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferGenresFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single genre",
			text: "Dark Techno Essentials",
			want: []string{"genre:techno"},
		},
		{
			name: "multiple genres in table order",
			text: "banging techno and house set",
			want: []string{"genre:techno", "genre:house"},
		},
		{
			name: "keyword matched for several genres",
			text: "trap drill kit",
			want: []string{"genre:hip-hop", "genre:trap"},
		},
		{
			name: "case insensitive",
			text: "LOFI chill beats",
			want: []string{"genre:lo-fi"},
		},
		{
			name: "no match",
			text: "invoice template bundle",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferGenresFromText(tt.text))
		})
	}
}

func TestInferGenresDeterministic(t *testing.T) {
	text := "progressive house with ambient pads and 808s"
	first := InferGenresFromText(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, InferGenresFromText(text))
	}
}

func TestInferSkillLevelFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"beginner keyword", "Intro to Beatmaking", "beginner"},
		{"advanced keyword", "Pro Mixing Techniques", "advanced"},
		{"intermediate keyword", "Improving your arrangements", "intermediate"},
		{"earlier level wins", "learn advanced sound design", "beginner"},
		{"no level", "Sample Pack Vol 3", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferSkillLevelFromText(tt.text))
		})
	}
}

func TestProductTypeTag(t *testing.T) {
	tag, ok := ProductTypeTag("sample-pack")
	assert.True(t, ok)
	assert.Equal(t, "interest:samples", tag)

	tag, ok = ProductTypeTag("course")
	assert.True(t, ok)
	assert.Equal(t, "interest:learning", tag)

	_, ok = ProductTypeTag("merch")
	assert.False(t, ok)
}
