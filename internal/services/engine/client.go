// Package engine provides the client for the external document-processing
// service. The engine owns all PDF parsing and OCR; lector uploads raw PDFs
// and fetches back per-page positioned text lines. Auth is OAuth2 client
// credentials when a token endpoint is configured.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/ternarybob/lector/internal/common"
	"github.com/ternarybob/lector/internal/interfaces"
	"github.com/ternarybob/lector/internal/models"
)

const (
	// DefaultTimeout is the default HTTP timeout for engine calls.
	DefaultTimeout = 60 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5
)

// Client talks to the document-processing engine API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// Compile-time interface assertion
var _ interfaces.DocumentEngine = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client (replaces the OAuth2 transport).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new engine client from configuration. When a token URL
// and client ID are configured, requests carry OAuth2 client-credentials
// tokens; otherwise the client talks to the engine unauthenticated (local
// development).
func NewClient(cfg *common.EngineConfig, logger arbor.ILogger, opts ...ClientOption) *Client {
	timeout := DefaultTimeout
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
			timeout = d
		}
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.TokenURL != "" && cfg.ClientID != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = cc.Client(ctx)
		httpClient.Timeout = timeout
	}

	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}

	c := &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an error response from the engine API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("engine API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

type uploadResponse struct {
	ID string `json:"id"`
}

type layoutResponse struct {
	Pages []models.PageLayout `json:"pages"`
}

// UploadDocument registers PDF bytes with the engine and returns its asset ID.
func (c *Client) UploadDocument(ctx context.Context, filename string, content []byte) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit exceeded: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create multipart form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("failed to write multipart content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	endpoint := c.baseURL + "/v1/documents"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("engine upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", c.apiError(resp, endpoint)
	}

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if result.ID == "" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "upload response missing asset id", Endpoint: endpoint}
	}

	c.logger.Debug().
		Str("filename", filename).
		Str("engine_id", result.ID).
		Int("size", len(content)).
		Dur("duration", time.Since(start)).
		Msg("Document uploaded to engine")

	return result.ID, nil
}

// FetchLayout returns the ordered per-page text lines for an uploaded
// document. Callers treat any failure here as fatal to the extraction
// request; there is no retry.
func (c *Client) FetchLayout(ctx context.Context, engineID string) ([]models.PageLayout, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/documents/%s/layout", c.baseURL, engineID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create layout request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("engine layout fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp, endpoint)
	}

	var result layoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode layout response: %w", err)
	}

	c.logger.Debug().
		Str("engine_id", engineID).
		Int("pages", len(result.Pages)).
		Msg("Fetched document layout from engine")

	return result.Pages, nil
}

// DeleteDocument removes the asset from the engine.
func (c *Client) DeleteDocument(ctx context.Context, engineID string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/documents/%s", c.baseURL, engineID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("engine delete failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return c.apiError(resp, endpoint)
	}

	return nil
}

func (c *Client) apiError(resp *http.Response, endpoint string) error {
	message := resp.Status
	if body, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil && len(body) > 0 {
		message = string(body)
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Endpoint:   endpoint,
	}
}
