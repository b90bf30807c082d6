package domain

import (
	"context"
)

// ImageFeatures is what the feature-extractor service returns for a single
// image: the classifier softmax over its label set and a pooled embedding.
type ImageFeatures struct {
	Probs     []float64 `json:"probs"`
	Embedding []float64 `json:"embedding"`
}

type EvaluationReport struct {
	InceptionScore float64 `json:"inception_score"`
	FID            float64 `json:"fid"`
	GeneratedCount int     `json:"generated_count"`
	ReferenceCount int     `json:"reference_count"`
}

type FeatureExtractor interface {
	Extract(ctx context.Context, imagePNG []byte) (*ImageFeatures, error)
}

var ErrEvaluationSetTooSmall = &DomainError{Code: ErrCodeValidation, Message: "not enough images to compute a meaningful score", Cause: nil}
