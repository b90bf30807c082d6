package handler

import (
	"encoding/base64"
	"net/http"
	"runtime"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/adapters/http/dto"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/usecase"
)

type GenerationHandler struct {
	Pipeline  *usecase.GenerationPipeline
	Evaluator *usecase.Evaluator
	Logger    domain.LoggingRepository
	Backend   string
}

func NewGenerationHandler(
	pipeline *usecase.GenerationPipeline,
	evaluator *usecase.Evaluator,
	logger domain.LoggingRepository,
	backend string,
) *GenerationHandler {
	return &GenerationHandler{Pipeline: pipeline, Evaluator: evaluator, Logger: logger, Backend: backend}
}

func (h *GenerationHandler) GenerateHandler(c *gin.Context) {
	req := c.MustGet("payload").(dto.GenerateRequest)

	result, err := h.Pipeline.Run(c.Request.Context(), domain.GenerationRequest{
		Prompt:  req.Prompt,
		Quality: domain.Quality(req.Quality),
		Width:   req.Width,
		Height:  req.Height,
	})
	if err != nil {
		httpErr := dto.MapErr(err)
		c.JSON(httpErr.StatusCode, httpErr)
		return
	}

	h.Logger.Info("http_request_end", "request_id", c.GetString("RequestID"), "status", http.StatusOK)
	c.JSON(http.StatusOK, dto.GenerateResponse{
		Image:    base64.StdEncoding.EncodeToString(result.ImagePNG),
		Metadata: dto.FromMetadata(result.Metadata),
	})
}

func (h *GenerationHandler) BatchGenerateHandler(c *gin.Context) {
	req := c.MustGet("payload").(dto.BatchGenerateRequest)

	items, err := h.Pipeline.RunBatch(c.Request.Context(), domain.BatchRequest{Prompts: req.Prompts})
	if err != nil {
		httpErr := dto.MapErr(err)
		c.JSON(httpErr.StatusCode, httpErr)
		return
	}

	results := make([]dto.BatchItemResponse, 0, len(items))
	for _, item := range items {
		resp := dto.BatchItemResponse{Prompt: item.Prompt}
		if item.Err != nil {
			mapped := dto.MapErr(item.Err)
			resp.Error = &mapped
		} else {
			meta := dto.FromMetadata(item.Result.Metadata)
			resp.Image = base64.StdEncoding.EncodeToString(item.Result.ImagePNG)
			resp.Metadata = &meta
		}
		results = append(results, resp)
	}

	h.Logger.Info("http_request_end", "request_id", c.GetString("RequestID"), "status", http.StatusOK)
	c.JSON(http.StatusOK, dto.BatchGenerateResponse{Results: results})
}

func (h *GenerationHandler) EvaluateHandler(c *gin.Context) {
	req := c.MustGet("payload").(dto.EvaluateRequest)

	generated, err := decodeImageSet(req.Generated)
	if err != nil {
		httpErr := dto.MapErr(err)
		c.JSON(httpErr.StatusCode, httpErr)
		return
	}
	reference, err := decodeImageSet(req.Reference)
	if err != nil {
		httpErr := dto.MapErr(err)
		c.JSON(httpErr.StatusCode, httpErr)
		return
	}

	report, err := h.Evaluator.Evaluate(c.Request.Context(), generated, reference)
	if err != nil {
		httpErr := dto.MapErr(err)
		c.JSON(httpErr.StatusCode, httpErr)
		return
	}

	h.Logger.Info("http_request_end", "request_id", c.GetString("RequestID"), "status", http.StatusOK)
	c.JSON(http.StatusOK, dto.EvaluateResponse{
		InceptionScore: report.InceptionScore,
		FID:            report.FID,
		GeneratedCount: report.GeneratedCount,
		ReferenceCount: report.ReferenceCount,
	})
}

func (h *GenerationHandler) HistoryHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	generations, err := h.Pipeline.ListRecent(c.Request.Context(), limit)
	if err != nil {
		httpErr := dto.MapErr(err)
		c.JSON(httpErr.StatusCode, httpErr)
		return
	}

	results := make([]dto.GenerationMetadata, 0, len(generations))
	for _, m := range generations {
		results = append(results, dto.FromMetadata(m))
	}

	c.JSON(http.StatusOK, dto.HistoryResponse{Generations: results})
}

// HealthHandler reports process liveness only. It deliberately does not
// probe the diffusion backend, a dead backend must not take /health down
// with it.
func (h *GenerationHandler) HealthHandler(c *gin.Context) {
	var memStat runtime.MemStats
	runtime.ReadMemStats(&memStat)

	resp := dto.HealthResponse{Status: "ok", Service: "text-to-image-generator", Backend: h.Backend}
	resp.Memory.AllocMB = memStat.Alloc / 1024 / 1024
	resp.Memory.TotalAllocMB = memStat.TotalAlloc / 1024 / 1024
	resp.Memory.SysMB = memStat.Sys / 1024 / 1024
	resp.Memory.NumGC = memStat.NumGC
	resp.Memory.NumGoroutine = runtime.NumGoroutine()

	c.JSON(http.StatusOK, resp)
}

func decodeImageSet(encoded []string) ([][]byte, error) {
	images := make([][]byte, 0, len(encoded))
	for _, e := range encoded {
		data, err := base64.StdEncoding.DecodeString(e)
		if err != nil {
			return nil, domain.NewDomainError(domain.ErrCodeValidation, "images must be base64 encoded", err)
		}
		images = append(images, data)
	}
	return images, nil
}
