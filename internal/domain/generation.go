package domain

import (
	"context"
	"image"
	"time"
)

type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityFast   Quality = "fast"
)

// SupportedSizes are the only resolutions the diffusion backend is asked
// to render. Anything else risks tiling artifacts or CUDA OOM.
var SupportedSizes = []int{512, 768, 1024}

type QualityTier struct {
	Steps         int
	GuidanceScale float64
}

type GenerationRequest struct {
	Prompt  string  `json:"prompt"`
	Quality Quality `json:"quality"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
}

type GenerationParams struct {
	Prompt         string
	NegativePrompt string
	Steps          int
	GuidanceScale  float64
	Width          int
	Height         int
	Seed           int64
}

type GenerationMetadata struct {
	ID             string        `json:"id"`
	Prompt         string        `json:"prompt"`
	EnhancedPrompt string        `json:"enhanced_prompt"`
	Quality        Quality       `json:"quality"`
	Steps          int           `json:"steps"`
	GuidanceScale  float64       `json:"guidance_scale"`
	Width          int           `json:"width"`
	Height         int           `json:"height"`
	Seed           int64         `json:"seed"`
	Backend        string        `json:"backend"`
	FilePath       string        `json:"file_path"`
	Duration       time.Duration `json:"duration_ns"`
	CreatedAt      time.Time     `json:"created_at"`
}

type GenerationResult struct {
	ImagePNG []byte
	Metadata GenerationMetadata
}

type BatchRequest struct {
	Prompts []string `json:"prompts"`
}

// BatchItem holds the outcome for one prompt of a batch. Failed items keep
// their slot so the response always lines up with the submitted prompts.
type BatchItem struct {
	Prompt string
	Result *GenerationResult
	Err    error
}

type ImageGenerator interface {
	Name() string
	Generate(ctx context.Context, params GenerationParams) (image.Image, error)
}

type GenerationStore interface {
	SaveGeneration(ctx context.Context, m *GenerationMetadata) error
	ListRecent(ctx context.Context, limit int) ([]GenerationMetadata, error)
}

type HistoryCache interface {
	PushRecent(ctx context.Context, m *GenerationMetadata) error
	Recent(ctx context.Context, limit int) ([]GenerationMetadata, error)
}

func IsSupportedSize(v int) bool {
	for _, s := range SupportedSizes {
		if v == s {
			return true
		}
	}
	return false
}

// NormalizeQuality maps the wire value to a canonical quality level.
// "low" is accepted as a legacy alias of "fast" and an empty value
// defaults to "medium".
func NormalizeQuality(q string) (Quality, error) {
	switch q {
	case "":
		return QualityMedium, nil
	case "high":
		return QualityHigh, nil
	case "medium":
		return QualityMedium, nil
	case "fast", "low":
		return QualityFast, nil
	default:
		return "", ErrUnknownQuality
	}
}

func (r *GenerationRequest) Validate() error {
	if r.Prompt == "" {
		return ErrEmptyPrompt
	}
	if !IsSupportedSize(r.Width) || !IsSupportedSize(r.Height) {
		return ErrUnsupportedSize
	}
	q, err := NormalizeQuality(string(r.Quality))
	if err != nil {
		return err
	}
	r.Quality = q
	return nil
}
