// Package openai provides an embedding service adapter using OpenAI API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/lexica/internal/core/domain"
	"github.com/custodia-labs/lexica/internal/core/ports/driven"
	"github.com/custodia-labs/lexica/internal/logger"
	"github.com/custodia-labs/lexica/internal/textproc"
	"github.com/custodia-labs/lexica/internal/vectormath"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	// DefaultRateLimit bounds provider calls per second during batch
	// indexing.
	DefaultRateLimit = 5

	// MaxInputLength is the provider input budget in characters.
	// Longer texts are chunked and their vectors averaged.
	MaxInputLength = 32000
)

// Model dimensions for OpenAI embedding models.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-3-small).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// RateLimit is the maximum provider requests per second
	// (default: 5). Zero uses the default; negative disables limiting.
	RateLimit float64

	// MaxChunkSize and OverlapSize control chunking of over-budget
	// texts. Zero values use the textproc defaults (6000/500).
	MaxChunkSize int
	OverlapSize  int
}

// EmbeddingService generates embeddings using OpenAI API.
type EmbeddingService struct {
	client     *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	chunkSize  int
	overlap    int
}

// embeddingRequest is the OpenAI API request format.
type embeddingRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	EncodingFormat string `json:"encoding_format"`
}

// embeddingResponse is the OpenAI API response format.
type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewEmbeddingService creates a new OpenAI embedding service.
// A missing API key is a fatal configuration error.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required: %w", domain.ErrEmbeddingUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = textproc.DefaultMaxChunkSize
	}
	if cfg.OverlapSize <= 0 {
		cfg.OverlapSize = textproc.DefaultOverlapSize
	}

	var limiter *rate.Limiter
	switch {
	case cfg.RateLimit == 0:
		limiter = rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit)
	case cfg.RateLimit > 0:
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), int(cfg.RateLimit)+1)
	}

	dimensions, ok := modelDimensions[cfg.Model]
	if !ok {
		dimensions = 1536 // Default fallback
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    limiter,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: dimensions,
		chunkSize:  cfg.MaxChunkSize,
		overlap:    cfg.OverlapSize,
	}, nil
}

// Embed generates a unit-normalised vector embedding for the given text.
// Texts over MaxInputLength characters are chunked; each chunk is
// embedded independently, failed chunks are skipped and logged, and the
// element-wise mean of the surviving vectors is renormalised. The call
// fails only when no chunk succeeds.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	text = textproc.Normalize(text)

	if len(text) <= MaxInputLength {
		return s.embedOne(ctx, text)
	}

	chunks := textproc.Split(text, s.chunkSize, s.overlap)
	vectors := make([][]float32, 0, len(chunks))
	for i, chunk := range chunks {
		v, err := s.embedOne(ctx, chunk)
		if err != nil {
			logger.Warn("Embedding chunk %d/%d failed, skipping: %v", i+1, len(chunks), err)
			continue
		}
		vectors = append(vectors, v)
	}

	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: all %d chunks failed", domain.ErrEmbeddingFailed, len(chunks))
	}

	logger.Debug("Averaged %d/%d chunk embeddings", len(vectors), len(chunks))
	return vectormath.Mean(vectors)
}

// embedOne requests a single embedding from the provider.
func (s *EmbeddingService) embedOne(ctx context.Context, text string) ([]float32, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	reqBody := embeddingRequest{
		Model:          s.model,
		Input:          text,
		EncodingFormat: "float",
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/embeddings",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var embedResp embeddingResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if embedResp.Error != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmbeddingFailed, embedResp.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrEmbeddingFailed, resp.StatusCode, string(body))
	}

	if len(embedResp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", domain.ErrEmbeddingFailed)
	}

	// Convert float64 to float32 and normalise. Provider vectors are
	// normally unit length already; normalising keeps the invariant.
	raw := embedResp.Data[0].Embedding
	embedding := make([]float32, len(raw))
	for i, v := range raw {
		embedding[i] = float32(v)
	}
	return vectormath.Normalize(embedding), nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("openai: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("openai: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
