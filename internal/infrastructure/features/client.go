package features

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
)

// Client calls the feature-extractor sidecar, an Inception-v3 style
// classifier exposed over HTTP. It returns the softmax distribution and
// the pooled embedding the evaluator needs for IS and FID.
type Client struct {
	BaseURL    string
	HttpClient *http.Client
}

type extractRequest struct {
	Image string `json:"image"`
}

type extractResponse struct {
	Probs     []float64 `json:"probs"`
	Embedding []float64 `json:"embedding"`
	Error     string    `json:"error"`
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Extract(ctx context.Context, imagePNG []byte) (*domain.ImageFeatures, error) {
	payload := extractRequest{Image: base64.StdEncoding.EncodeToString(imagePNG)}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeInternal, "failed to encode feature request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/features", bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeInternal, "failed to build feature request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "feature extractor is not responding", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "failed to read feature response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewDomainError(domain.ErrCodeExternal,
			"feature extractor rejected the request",
			fmt.Errorf("extractor status %d: %s", resp.StatusCode, string(raw)))
	}

	var decoded extractResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "failed to decode feature response", err)
	}
	if len(decoded.Probs) == 0 || len(decoded.Embedding) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "feature extractor returned empty features", nil)
	}

	return &domain.ImageFeatures{Probs: decoded.Probs, Embedding: decoded.Embedding}, nil
}
