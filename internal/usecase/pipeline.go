package usecase

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/config"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/infrastructure/imaging"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/infrastructure/metrics"
)

// GenerationPipeline sequences one request end to end: validation, prompt
// enhancement, the backend call, post-processing, and persistence. The
// device gate serializes backend calls because a single accelerator cannot
// survive concurrent sampling runs without OOM.
type GenerationPipeline struct {
	Cfg       *config.Config
	Generator domain.ImageGenerator
	Store     domain.GenerationStore
	History   domain.HistoryCache
	Logger    domain.LoggingRepository
	gate      *semaphore.Weighted
}

func NewGenerationPipeline(
	cfg *config.Config,
	generator domain.ImageGenerator,
	store domain.GenerationStore,
	history domain.HistoryCache,
	logger domain.LoggingRepository,
) *GenerationPipeline {
	return &GenerationPipeline{
		Cfg:       cfg,
		Generator: generator,
		Store:     store,
		History:   history,
		Logger:    logger,
		gate:      semaphore.NewWeighted(int64(cfg.MaxConcurrentGen)),
	}
}

func (p *GenerationPipeline) resolveTier(quality domain.Quality) domain.QualityTier {
	return domain.QualityTier{
		Steps:         p.Cfg.QualitySteps(string(quality)),
		GuidanceScale: p.Cfg.DefaultGuidanceScale,
	}
}

func (p *GenerationPipeline) Run(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	if req.Width == 0 {
		req.Width = p.Cfg.DefaultWidth
	}
	if req.Height == 0 {
		req.Height = p.Cfg.DefaultHeight
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	log := p.Logger.With(
		"service", "generation_pipeline",
		"generation_id", id,
		"backend", p.Generator.Name(),
		"quality", string(req.Quality))

	tier := p.resolveTier(req.Quality)
	enhanced := EnhancePrompt(req.Prompt, req.Quality)

	params := domain.GenerationParams{
		Prompt:         enhanced,
		NegativePrompt: p.Cfg.NegativePrompt,
		Steps:          tier.Steps,
		GuidanceScale:  tier.GuidanceScale,
		Width:          req.Width,
		Height:         req.Height,
		Seed:           rand.Int63(),
	}

	if err := p.gate.Acquire(ctx, 1); err != nil {
		log.Error("generation_canceled_waiting_for_device", "reason", err.Error())
		return nil, domain.NewDomainError(domain.ErrCodeInternal, "request canceled while waiting for the device", err)
	}

	start := time.Now()
	img, err := p.Generator.Generate(ctx, params)
	duration := time.Since(start)
	p.gate.Release(1)

	if err != nil {
		metrics.GenerationTotal.WithLabelValues(p.Generator.Name(), string(req.Quality), "failed").Inc()
		log.Error("generation_failed", "reason", err.Error(), "duration_ms", duration.Milliseconds())
		return nil, err
	}

	metrics.GenerationTotal.WithLabelValues(p.Generator.Name(), string(req.Quality), "success").Inc()
	metrics.GenerationDuration.WithLabelValues(p.Generator.Name(), string(req.Quality)).Observe(duration.Seconds())

	img = imaging.Resize(img, req.Width, req.Height)

	encoded, err := imaging.EncodePNG(img)
	if err != nil {
		log.Error("generation_failed_encode_png", "reason", err.Error())
		return nil, domain.NewDomainError(domain.ErrCodeInternal, "failed to encode generated image", err)
	}

	path, err := imaging.SavePNG(p.Cfg.OutputDir, id, encoded)
	if err != nil {
		log.Error("generation_failed_persist_artifact", "reason", err.Error())
		return nil, domain.NewDomainError(domain.ErrCodePersisting, "failed to persist generated image", err)
	}

	meta := domain.GenerationMetadata{
		ID:             id,
		Prompt:         req.Prompt,
		EnhancedPrompt: enhanced,
		Quality:        req.Quality,
		Steps:          params.Steps,
		GuidanceScale:  params.GuidanceScale,
		Width:          req.Width,
		Height:         req.Height,
		Seed:           params.Seed,
		Backend:        p.Generator.Name(),
		FilePath:       path,
		Duration:       duration,
		CreatedAt:      time.Now().UTC(),
	}

	if err := p.Store.SaveGeneration(ctx, &meta); err != nil {
		log.Error("generation_failed_save_metadata", "reason", err.Error())
		return nil, err
	}

	// history cache is best effort, the row in postgres is authoritative
	if err := p.History.PushRecent(ctx, &meta); err != nil {
		log.Warn("generation_history_cache_failed", "reason", err.Error())
	}

	log.Info("generation_completed", "duration_ms", duration.Milliseconds(), "file_path", path)

	return &domain.GenerationResult{ImagePNG: encoded, Metadata: meta}, nil
}

// ListRecent serves the generation history, redis first with postgres as
// the fallback when the cache is cold or unavailable.
func (p *GenerationPipeline) ListRecent(ctx context.Context, limit int) ([]domain.GenerationMetadata, error) {
	if limit <= 0 || limit > p.Cfg.HistoryLimit {
		limit = p.Cfg.HistoryLimit
	}

	cached, err := p.History.Recent(ctx, limit)
	if err == nil && len(cached) > 0 {
		return cached, nil
	}
	if err != nil {
		p.Logger.Warn("history_cache_read_failed", "reason", err.Error())
	}

	return p.Store.ListRecent(ctx, limit)
}
