package diffusion

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/infrastructure/imaging"
)

func pngBase64(t *testing.T, w, h int) string {
	t.Helper()
	data, err := imaging.EncodePNG(image.NewRGBA(image.Rect(0, 0, w, h)))
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(data)
}

func TestGenerateSendsParamsAndDecodesImage(t *testing.T) {
	var received txt2imgRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sdapi/v1/txt2img", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		resp := txt2imgResponse{Images: []string{pngBase64(t, 512, 512)}}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL, "sd-v1-5", 5*time.Second)
	img, err := client.Generate(context.Background(), domain.GenerationParams{
		Prompt:         "a boat",
		NegativePrompt: "blurry",
		Steps:          30,
		GuidanceScale:  7.5,
		Width:          512,
		Height:         512,
		Seed:           42,
	})
	require.NoError(t, err)

	assert.Equal(t, 512, img.Bounds().Dx())
	assert.Equal(t, "a boat", received.Prompt)
	assert.Equal(t, "blurry", received.NegativePrompt)
	assert.Equal(t, 30, received.Steps)
	assert.Equal(t, 7.5, received.CfgScale)
	assert.Equal(t, int64(42), received.Seed)
	assert.Equal(t, "sd-v1-5", received.OverrideModel)
}

func TestGenerateClassifiesOOM(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "torch.cuda.OutOfMemoryError: CUDA out of memory"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sd-v1-5", 5*time.Second)
	_, err := client.Generate(context.Background(), domain.GenerationParams{Prompt: "a boat", Width: 1024, Height: 1024})

	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrCodeResourceExhausted, de.Code)
}

func TestGenerateClassifiesModelNotLoaded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "model sd-v9 not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sd-v9", 5*time.Second)
	_, err := client.Generate(context.Background(), domain.GenerationParams{Prompt: "a boat", Width: 512, Height: 512})

	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrCodeModelUnavailable, de.Code)
}

func TestGenerateRejectsEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(txt2imgResponse{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sd-v1-5", 5*time.Second)
	_, err := client.Generate(context.Background(), domain.GenerationParams{Prompt: "a boat", Width: 512, Height: 512})

	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrCodeExternal, de.Code)
}

func TestGenerateBackendUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "sd-v1-5", time.Second)
	_, err := client.Generate(context.Background(), domain.GenerationParams{Prompt: "a boat", Width: 512, Height: 512})

	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrCodeExternal, de.Code)
}
