package dto

import (
	"time"

	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
)

type GenerateRequest struct {
	Prompt  string `json:"prompt" validate:"required"`
	Quality string `json:"quality" validate:"omitempty,oneof=high medium fast low"`
	Width   int    `json:"width" validate:"omitempty,gte=0"`
	Height  int    `json:"height" validate:"omitempty,gte=0"`
}

type BatchGenerateRequest struct {
	Prompts []string `json:"prompts" validate:"required,min=1"`
}

type EvaluateRequest struct {
	Generated []string `json:"generated" validate:"required,min=1"`
	Reference []string `json:"reference" validate:"required,min=1"`
}

type GenerationMetadata struct {
	ID             string  `json:"id"`
	Prompt         string  `json:"prompt"`
	EnhancedPrompt string  `json:"enhanced_prompt"`
	Quality        string  `json:"quality"`
	Steps          int     `json:"steps"`
	GuidanceScale  float64 `json:"guidance_scale"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Seed           int64   `json:"seed"`
	Backend        string  `json:"backend"`
	FilePath       string  `json:"file_path"`
	DurationMs     int64   `json:"duration_ms"`
	CreatedAt      string  `json:"created_at"`
}

type GenerateResponse struct {
	Image    string             `json:"image"`
	Metadata GenerationMetadata `json:"metadata"`
}

type BatchItemResponse struct {
	Prompt   string              `json:"prompt"`
	Image    string              `json:"image,omitempty"`
	Metadata *GenerationMetadata `json:"metadata,omitempty"`
	Error    *HttpError          `json:"error,omitempty"`
}

type BatchGenerateResponse struct {
	Results []BatchItemResponse `json:"results"`
}

type EvaluateResponse struct {
	InceptionScore float64 `json:"inception_score"`
	FID            float64 `json:"fid"`
	GeneratedCount int     `json:"generated_count"`
	ReferenceCount int     `json:"reference_count"`
}

type HistoryResponse struct {
	Generations []GenerationMetadata `json:"generations"`
}

func FromMetadata(m domain.GenerationMetadata) GenerationMetadata {
	return GenerationMetadata{
		ID:             m.ID,
		Prompt:         m.Prompt,
		EnhancedPrompt: m.EnhancedPrompt,
		Quality:        string(m.Quality),
		Steps:          m.Steps,
		GuidanceScale:  m.GuidanceScale,
		Width:          m.Width,
		Height:         m.Height,
		Seed:           m.Seed,
		Backend:        m.Backend,
		FilePath:       m.FilePath,
		DurationMs:     m.Duration.Milliseconds(),
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
}
