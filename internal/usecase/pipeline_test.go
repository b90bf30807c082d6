package usecase

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/infrastructure/imaging"
)

func TestRunProducesExactResolutionForAllPresets(t *testing.T) {
	// the fake backend renders everything at 64x64, the pipeline must
	// still hand back exactly the requested preset
	gen := &fakeGenerator{renderWidth: 64, renderHeight: 64}
	pipeline, _, _ := testPipeline(t.TempDir(), gen)

	for _, w := range domain.SupportedSizes {
		for _, h := range domain.SupportedSizes {
			result, err := pipeline.Run(context.Background(), domain.GenerationRequest{
				Prompt:  "a lighthouse at dusk",
				Quality: domain.QualityFast,
				Width:   w,
				Height:  h,
			})
			require.NoError(t, err)

			img, err := imaging.Decode(result.ImagePNG)
			require.NoError(t, err)
			assert.Equal(t, w, img.Bounds().Dx())
			assert.Equal(t, h, img.Bounds().Dy())
		}
	}
}

func TestRunQualityTiers(t *testing.T) {
	gen := &fakeGenerator{}
	pipeline, _, _ := testPipeline(t.TempDir(), gen)

	high, err := pipeline.Run(context.Background(), domain.GenerationRequest{Prompt: "a cat", Quality: domain.QualityHigh, Width: 512, Height: 512})
	require.NoError(t, err)
	fast, err := pipeline.Run(context.Background(), domain.GenerationRequest{Prompt: "a cat", Quality: domain.QualityFast, Width: 512, Height: 512})
	require.NoError(t, err)

	assert.LessOrEqual(t, fast.Metadata.Steps, high.Metadata.Steps)
	assert.Equal(t, 50, high.Metadata.Steps)
	assert.Equal(t, 20, fast.Metadata.Steps)
}

func TestRunDefaultsAndValidation(t *testing.T) {
	gen := &fakeGenerator{}
	pipeline, _, _ := testPipeline(t.TempDir(), gen)

	result, err := pipeline.Run(context.Background(), domain.GenerationRequest{Prompt: "a cat"})
	require.NoError(t, err)
	assert.Equal(t, 512, result.Metadata.Width)
	assert.Equal(t, 512, result.Metadata.Height)
	assert.Equal(t, domain.QualityMedium, result.Metadata.Quality)

	_, err = pipeline.Run(context.Background(), domain.GenerationRequest{Prompt: ""})
	assert.ErrorIs(t, err, domain.ErrEmptyPrompt)

	_, err = pipeline.Run(context.Background(), domain.GenerationRequest{Prompt: "a cat", Width: 640, Height: 512})
	assert.ErrorIs(t, err, domain.ErrUnsupportedSize)
}

func TestRunPersistsArtifactAndMetadata(t *testing.T) {
	dir := t.TempDir()
	gen := &fakeGenerator{}
	pipeline, store, history := testPipeline(dir, gen)

	result, err := pipeline.Run(context.Background(), domain.GenerationRequest{Prompt: "a red barn", Quality: domain.QualityMedium, Width: 512, Height: 512})
	require.NoError(t, err)

	info, err := os.Stat(result.Metadata.FilePath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	require.Len(t, store.saved, 1)
	saved := store.saved[0]
	assert.Equal(t, "a red barn", saved.Prompt)
	assert.Equal(t, result.Metadata.ID, saved.ID)
	assert.Equal(t, "fake", saved.Backend)
	assert.NotEqual(t, saved.Prompt, saved.EnhancedPrompt)

	require.Len(t, history.pushed, 1)
	assert.Equal(t, saved.ID, history.pushed[0].ID)
}

func TestRunSurfacesBackendFailure(t *testing.T) {
	oom := domain.NewDomainError(domain.ErrCodeResourceExhausted, "out of device memory", nil)
	gen := &fakeGenerator{failOn: func(domain.GenerationParams) error { return oom }}
	pipeline, store, _ := testPipeline(t.TempDir(), gen)

	_, err := pipeline.Run(context.Background(), domain.GenerationRequest{Prompt: "a cat", Width: 1024, Height: 1024})
	require.Error(t, err)

	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrCodeResourceExhausted, de.Code)
	assert.Empty(t, store.saved)
}

func TestRunToleratesHistoryCacheFailure(t *testing.T) {
	gen := &fakeGenerator{}
	pipeline, store, history := testPipeline(t.TempDir(), gen)
	history.err = domain.NewDomainError(domain.ErrCodeExternal, "redis down", nil)

	_, err := pipeline.Run(context.Background(), domain.GenerationRequest{Prompt: "a cat"})
	require.NoError(t, err)
	assert.Len(t, store.saved, 1)
}

func TestListRecentFallsBackToStore(t *testing.T) {
	gen := &fakeGenerator{}
	pipeline, _, history := testPipeline(t.TempDir(), gen)

	_, err := pipeline.Run(context.Background(), domain.GenerationRequest{Prompt: "first"})
	require.NoError(t, err)
	_, err = pipeline.Run(context.Background(), domain.GenerationRequest{Prompt: "second"})
	require.NoError(t, err)

	history.err = domain.NewDomainError(domain.ErrCodeExternal, "redis down", nil)

	recent, err := pipeline.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "second", recent[0].Prompt)
	assert.Equal(t, "first", recent[1].Prompt)
}
