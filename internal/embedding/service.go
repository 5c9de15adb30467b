package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultServiceURL is the default embedding service endpoint.
	DefaultServiceURL = "http://localhost:11434"

	// DefaultServiceModel is the default embedding model.
	DefaultServiceModel = "all-minilm:l6-v2"

	// DefaultServiceDimensions is the output dimension for all-minilm.
	DefaultServiceDimensions = 384

	// DefaultServiceTimeout is the timeout for embedding requests.
	DefaultServiceTimeout = 30 * time.Second

	// defaultRequestsPerSecond limits how hard index builds hit the service.
	defaultRequestsPerSecond = 10

	apiPathTags       = "/api/tags"
	apiPathEmbeddings = "/api/embeddings"
)

// ServiceProvider generates embeddings through an Ollama-compatible HTTP
// embeddings API, rate limited so bulk index builds stay polite.
type ServiceProvider struct {
	baseURL    string
	model      string
	dimensions int
	apiKey     string
	client     *http.Client
	limiter    *rate.Limiter
}

// ServiceOption configures a ServiceProvider.
type ServiceOption func(*ServiceProvider)

// WithBaseURL sets the service base URL.
func WithBaseURL(url string) ServiceOption {
	return func(p *ServiceProvider) {
		p.baseURL = url
	}
}

// WithModel sets the embedding model.
func WithModel(model string) ServiceOption {
	return func(p *ServiceProvider) {
		p.model = model
	}
}

// WithDimensions sets the expected vector dimensions.
func WithDimensions(dims int) ServiceOption {
	return func(p *ServiceProvider) {
		p.dimensions = dims
	}
}

// WithAPIKey sets a bearer token for hosted embedding services.
func WithAPIKey(key string) ServiceOption {
	return func(p *ServiceProvider) {
		p.apiKey = key
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ServiceOption {
	return func(p *ServiceProvider) {
		p.client.Timeout = timeout
	}
}

// WithRateLimit sets the request rate limit in requests per second.
func WithRateLimit(rps float64) ServiceOption {
	return func(p *ServiceProvider) {
		p.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewServiceProvider creates a new HTTP embedding provider.
func NewServiceProvider(opts ...ServiceOption) *ServiceProvider {
	p := &ServiceProvider{
		baseURL:    DefaultServiceURL,
		model:      DefaultServiceModel,
		dimensions: DefaultServiceDimensions,
		client:     &http.Client{Timeout: DefaultServiceTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type serviceEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type serviceEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// IsAvailable checks whether the embedding service is reachable.
func (p *ServiceProvider) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+apiPathTags, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	p.setAuth(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("embedding service returned status %d", resp.StatusCode)
	}
	return nil
}

// Embed generates a vector for the given text.
func (p *ServiceProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(serviceEmbedRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+apiPathEmbeddings, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	p.setAuth(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding service returned status %d: %s",
			resp.StatusCode, formatErrorBody(resp.Body))
	}

	var result serviceEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Embedding) != p.dimensions {
		return nil, fmt.Errorf("%w: service returned %d, want %d",
			ErrDimensionMismatch, len(result.Embedding), p.dimensions)
	}

	return result.Embedding, nil
}

// ModelName returns the name of the embedding model.
func (p *ServiceProvider) ModelName() string {
	return p.model
}

// Dimensions returns the expected vector dimensions.
func (p *ServiceProvider) Dimensions() int {
	return p.dimensions
}

func (p *ServiceProvider) setAuth(req *http.Request) {
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
}

// formatErrorBody reads and formats the response body for error messages.
func formatErrorBody(body io.Reader) string {
	respBody, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("(failed to read response body: %v)", err)
	}
	return string(respBody)
}
