package diffusion

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/infrastructure/imaging"
)

// Client talks to a Stable Diffusion WebUI compatible backend over its
// txt2img JSON endpoint. The sampling loop, the UNet and the attention
// implementation all live behind this boundary.
type Client struct {
	BaseURL    string
	Model      string
	HttpClient *http.Client
}

type txt2imgRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Steps          int     `json:"steps"`
	CfgScale       float64 `json:"cfg_scale"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Seed           int64   `json:"seed"`
	SamplerName    string  `json:"sampler_name"`
	BatchSize      int     `json:"batch_size"`
	OverrideModel  string  `json:"override_settings_model,omitempty"`
}

type txt2imgResponse struct {
	Images []string `json:"images"`
	Detail string   `json:"detail"`
	Error  string   `json:"error"`
}

func NewClient(baseURL, model string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
		HttpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string {
	return "diffusion"
}

func (c *Client) Generate(ctx context.Context, params domain.GenerationParams) (image.Image, error) {
	payload := txt2imgRequest{
		Prompt:         params.Prompt,
		NegativePrompt: params.NegativePrompt,
		Steps:          params.Steps,
		CfgScale:       params.GuidanceScale,
		Width:          params.Width,
		Height:         params.Height,
		Seed:           params.Seed,
		SamplerName:    "DPM++ 2M",
		BatchSize:      1,
		OverrideModel:  c.Model,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeInternal, "failed to encode txt2img request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/sdapi/v1/txt2img", bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeInternal, "failed to build txt2img request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "diffusion backend is not responding", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "failed to read txt2img response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyBackendError(resp.StatusCode, raw)
	}

	var decoded txt2imgResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "failed to decode txt2img response", err)
	}
	if len(decoded.Images) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "diffusion backend returned no images", nil)
	}

	imgBytes, err := base64.StdEncoding.DecodeString(decoded.Images[0])
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "diffusion backend returned invalid base64 image", err)
	}

	img, err := imaging.Decode(imgBytes)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "diffusion backend returned undecodable image", err)
	}

	return img, nil
}

// classifyBackendError separates CUDA OOM and model-load failures from
// generic backend errors so the handler can answer with a useful status.
func classifyBackendError(status int, body []byte) error {
	msg := string(body)
	lower := strings.ToLower(msg)

	if strings.Contains(lower, "out of memory") || strings.Contains(lower, "outofmemoryerror") {
		return domain.NewDomainError(domain.ErrCodeResourceExhausted,
			"diffusion backend ran out of device memory, retry with a smaller size or lower quality",
			fmt.Errorf("backend status %d: %s", status, msg))
	}
	if strings.Contains(lower, "model") && (strings.Contains(lower, "load") || strings.Contains(lower, "not found")) {
		return domain.NewDomainError(domain.ErrCodeModelUnavailable,
			"diffusion model is not loaded",
			fmt.Errorf("backend status %d: %s", status, msg))
	}

	return domain.NewDomainError(domain.ErrCodeExternal,
		"diffusion backend rejected the request",
		fmt.Errorf("backend status %d: %s", status, msg))
}
