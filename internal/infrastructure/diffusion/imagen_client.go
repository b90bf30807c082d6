package diffusion

import (
	"context"
	"image"

	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/infrastructure/imaging"
	"google.golang.org/genai"
)

// ImagenClient is the alternative generation backend using Google's Imagen
// models. Imagen takes an aspect ratio instead of explicit dimensions and
// ignores the step count, so the orchestrator resizes its output to the
// requested resolution afterwards.
type ImagenClient struct {
	Client *genai.Client
	Model  string
}

func NewImagenClient(ctx context.Context, apikey, model string) (*ImagenClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeInternal, "failed to create imagen client", err)
	}
	return &ImagenClient{Client: client, Model: model}, nil
}

func (g *ImagenClient) Name() string {
	return "imagen"
}

func (g *ImagenClient) Generate(ctx context.Context, params domain.GenerationParams) (image.Image, error) {
	resp, err := g.Client.Models.GenerateImages(
		ctx,
		g.Model,
		params.Prompt,
		&genai.GenerateImagesConfig{
			NumberOfImages: 1,
			AspectRatio:    aspectRatio(params.Width, params.Height),
			NegativePrompt: params.NegativePrompt,
			GuidanceScale:  genai.Ptr(float32(params.GuidanceScale)),
		})
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "failed to generate image from imagen", err)
	}

	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "imagen returned no images", nil)
	}

	img, err := imaging.Decode(resp.GeneratedImages[0].Image.ImageBytes)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "imagen returned undecodable image", err)
	}

	return img, nil
}

func aspectRatio(width, height int) string {
	switch {
	case width == height:
		return "1:1"
	case width > height:
		return "4:3"
	default:
		return "3:4"
	}
}
