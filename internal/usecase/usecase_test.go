package usecase

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/config"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/pkg/logger"
)

// shared fakes for the pipeline, batch and evaluator tests

type fakeGenerator struct {
	mu     sync.Mutex
	calls  []domain.GenerationParams
	failOn func(params domain.GenerationParams) error
	// the backend may render at its own block size, the pipeline must
	// normalize output to the requested resolution
	renderWidth  int
	renderHeight int
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(ctx context.Context, params domain.GenerationParams) (image.Image, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	f.mu.Unlock()

	if f.failOn != nil {
		if err := f.failOn(params); err != nil {
			return nil, err
		}
	}

	w, h := params.Width, params.Height
	if f.renderWidth > 0 {
		w, h = f.renderWidth, f.renderHeight
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 255})
		}
	}
	return img, nil
}

type memoryStore struct {
	mu    sync.Mutex
	saved []domain.GenerationMetadata
	err   error
}

func (m *memoryStore) SaveGeneration(ctx context.Context, meta *domain.GenerationMetadata) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, *meta)
	return nil
}

func (m *memoryStore) ListRecent(ctx context.Context, limit int) ([]domain.GenerationMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.saved) {
		limit = len(m.saved)
	}
	out := make([]domain.GenerationMetadata, limit)
	for i := 0; i < limit; i++ {
		out[i] = m.saved[len(m.saved)-1-i]
	}
	return out, nil
}

type memoryHistory struct {
	mu     sync.Mutex
	pushed []domain.GenerationMetadata
	err    error
}

func (m *memoryHistory) PushRecent(ctx context.Context, meta *domain.GenerationMetadata) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushed = append(m.pushed, *meta)
	return nil
}

func (m *memoryHistory) Recent(ctx context.Context, limit int) ([]domain.GenerationMetadata, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.pushed) {
		limit = len(m.pushed)
	}
	out := make([]domain.GenerationMetadata, limit)
	for i := 0; i < limit; i++ {
		out[i] = m.pushed[len(m.pushed)-1-i]
	}
	return out, nil
}

func testConfig(outputDir string) *config.Config {
	return &config.Config{
		Backend:              "diffusion",
		OutputDir:            outputDir,
		DefaultWidth:         512,
		DefaultHeight:        512,
		DefaultGuidanceScale: 7.5,
		HighQualitySteps:     50,
		MediumQualitySteps:   30,
		FastQualitySteps:     20,
		MaxBatchPrompts:      5,
		MaxConcurrentGen:     1,
		MinEvaluationImages:  2,
		HistoryLimit:         10,
	}
}

func testPipeline(outputDir string, gen domain.ImageGenerator) (*GenerationPipeline, *memoryStore, *memoryHistory) {
	store := &memoryStore{}
	history := &memoryHistory{}
	log := logger.NewLogger("stdout")
	return NewGenerationPipeline(testConfig(outputDir), gen, store, history, log), store, history
}
