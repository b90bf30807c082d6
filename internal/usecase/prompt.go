package usecase

import (
	"strings"

	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
)

var qualitySuffixes = map[domain.Quality]string{
	domain.QualityHigh:   "highly detailed, sharp focus, professional lighting, 8k resolution",
	domain.QualityMedium: "detailed, high quality",
	domain.QualityFast:   "",
}

// EnhancePrompt appends quality-tier style keywords to the user prompt.
// The raw prompt is kept in the metadata so the caller always sees what
// they actually asked for.
func EnhancePrompt(prompt string, quality domain.Quality) string {
	suffix := qualitySuffixes[quality]
	if suffix == "" {
		return prompt
	}

	trimmed := strings.TrimRight(strings.TrimSpace(prompt), ",.")
	return trimmed + ", " + suffix
}
