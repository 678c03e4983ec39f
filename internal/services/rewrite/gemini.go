package rewrite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/lector/internal/common"
	"github.com/ternarybob/lector/internal/interfaces"
)

// GeminiRewriter rewrites page text using the Google Gemini API.
type GeminiRewriter struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	timeout time.Duration
}

// Compile-time interface assertion
var _ interfaces.TextRewriter = (*GeminiRewriter)(nil)

// NewGeminiRewriter creates a Gemini-backed rewriter. The API key is resolved
// environment-first, then KV store, then config.
func NewGeminiRewriter(geminiConfig *common.GeminiConfig, storageManager interfaces.StorageManager, logger arbor.ILogger) (*GeminiRewriter, error) {
	ctx := context.Background()
	var kv interfaces.KeyValueStorage
	if storageManager != nil {
		kv = storageManager.KeyValueStorage()
	}
	apiKey, err := common.ResolveAPIKey(ctx, kv, "gemini_api_key", geminiConfig.APIKey)
	if err != nil {
		return nil, fmt.Errorf("Google API key is required for the gemini rewriter (set via GEMINI_API_KEY or gemini.api_key in config): %w", err)
	}

	if geminiConfig.Model == "" {
		geminiConfig.Model = "gemini-2.0-flash"
	}

	timeout := 60 * time.Second
	if geminiConfig.Timeout != "" {
		timeout, err = time.ParseDuration(geminiConfig.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout duration '%s': %w", geminiConfig.Timeout, err)
		}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	rewriter := &GeminiRewriter{
		config:  geminiConfig,
		logger:  logger,
		client:  client,
		timeout: timeout,
	}

	logger.Debug().
		Str("model", geminiConfig.Model).
		Dur("timeout", timeout).
		Msg("Gemini rewriter initialized")

	return rewriter, nil
}

// Provider returns the provider name.
func (r *GeminiRewriter) Provider() string {
	return "gemini"
}

// Rewrite sends the page text to Gemini and returns the cleaned version.
func (r *GeminiRewriter) Rewrite(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("text cannot be empty for rewrite")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{genai.NewPartFromText(text)},
		},
	}
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(r.config.Temperature),
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	start := time.Now()
	resp, err := r.client.Models.GenerateContent(timeoutCtx, r.config.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	var response strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}
	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Gemini API")
	}

	r.logger.Debug().
		Int("input_length", len(text)).
		Int("output_length", response.Len()).
		Dur("duration", time.Since(start)).
		Msg("Gemini rewrite completed")

	return response.String(), nil
}
