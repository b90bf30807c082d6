package usecase

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/infrastructure/metrics"
)

// RunBatch processes every prompt independently. A failed prompt keeps its
// slot with the error attached, so the response always carries exactly as
// many items as prompts were submitted, in submission order. Items run at
// the fast tier with default dimensions to keep batches affordable.
func (p *GenerationPipeline) RunBatch(ctx context.Context, req domain.BatchRequest) ([]domain.BatchItem, error) {
	if len(req.Prompts) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "prompts list must not be empty", nil)
	}
	if len(req.Prompts) > p.Cfg.MaxBatchPrompts {
		return nil, domain.NewDomainError(domain.ErrCodeValidation,
			fmt.Sprintf("maximum %d prompts allowed per batch", p.Cfg.MaxBatchPrompts), nil)
	}

	metrics.BatchSize.Observe(float64(len(req.Prompts)))

	log := p.Logger.With("service", "generation_pipeline", "batch_size", len(req.Prompts))
	log.Info("batch_generation_started")

	items := make([]domain.BatchItem, len(req.Prompts))

	// the device gate inside Run still serializes the actual backend
	// calls, the group only bounds how many requests wait on it
	g := new(errgroup.Group)
	g.SetLimit(p.Cfg.MaxConcurrentGen)

	for i, prompt := range req.Prompts {
		i, prompt := i, prompt
		g.Go(func() error {
			items[i].Prompt = prompt

			if strings.TrimSpace(prompt) == "" {
				items[i].Err = domain.ErrEmptyPrompt
				return nil
			}

			result, err := p.Run(ctx, domain.GenerationRequest{
				Prompt:  prompt,
				Quality: domain.QualityFast,
				Width:   p.Cfg.DefaultWidth,
				Height:  p.Cfg.DefaultHeight,
			})
			if err != nil {
				items[i].Err = err
				return nil
			}

			items[i].Result = result
			return nil
		})
	}

	// goroutines never return errors, failures live in their item slot
	_ = g.Wait()

	failed := 0
	for _, item := range items {
		if item.Err != nil {
			failed++
		}
	}
	log.Info("batch_generation_completed", "failed_items", failed)

	return items, nil
}
