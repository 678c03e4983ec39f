// Package rewrite contains the text-cleanup providers. A rewriter takes one
// page of reconstructed plain text and returns a cleaned-up version; the
// safety guards (minimum length, length-ratio discard, error fallback) live
// in the extraction service, not here.
package rewrite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lector/internal/common"
	"github.com/ternarybob/lector/internal/interfaces"
)

// systemPrompt instructs the model to clean extraction artifacts without
// adding or removing information. Output must be the rewritten text only.
const systemPrompt = `You clean up text extracted from PDF documents. Fix broken hyphenation, stray line-break artifacts, and garbled spacing. Preserve the original wording, meaning, and paragraph order exactly. Do not summarize, expand, or comment. Respond with only the cleaned text.`

// ClaudeRewriter rewrites page text using the Anthropic Claude API.
type ClaudeRewriter struct {
	config    *common.ClaudeConfig
	logger    arbor.ILogger
	client    anthropic.Client
	timeout   time.Duration
	maxTokens int
}

// Compile-time interface assertion
var _ interfaces.TextRewriter = (*ClaudeRewriter)(nil)

// NewClaudeRewriter creates a Claude-backed rewriter. The API key is resolved
// environment-first, then KV store, then config.
func NewClaudeRewriter(claudeConfig *common.ClaudeConfig, storageManager interfaces.StorageManager, logger arbor.ILogger) (*ClaudeRewriter, error) {
	ctx := context.Background()
	var kv interfaces.KeyValueStorage
	if storageManager != nil {
		kv = storageManager.KeyValueStorage()
	}
	apiKey, err := common.ResolveAPIKey(ctx, kv, "anthropic_api_key", claudeConfig.APIKey)
	if err != nil {
		return nil, fmt.Errorf("Anthropic API key is required for the claude rewriter (set via ANTHROPIC_API_KEY or claude.api_key in config): %w", err)
	}

	if claudeConfig.Model == "" {
		claudeConfig.Model = "claude-3-5-haiku-20241022"
	}

	timeout := 60 * time.Second
	if claudeConfig.Timeout != "" {
		timeout, err = time.ParseDuration(claudeConfig.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout duration '%s': %w", claudeConfig.Timeout, err)
		}
	}

	maxTokens := claudeConfig.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	rewriter := &ClaudeRewriter{
		config:    claudeConfig,
		logger:    logger,
		client:    client,
		timeout:   timeout,
		maxTokens: maxTokens,
	}

	logger.Debug().
		Str("model", claudeConfig.Model).
		Dur("timeout", timeout).
		Int("max_tokens", maxTokens).
		Msg("Claude rewriter initialized")

	return rewriter, nil
}

// Provider returns the provider name.
func (r *ClaudeRewriter) Provider() string {
	return "claude"
}

// Rewrite sends the page text to Claude and returns the cleaned version.
func (r *ClaudeRewriter) Rewrite(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("text cannot be empty for rewrite")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(r.config.Model),
		MaxTokens: int64(r.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	}
	if r.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(r.config.Temperature))
	}

	start := time.Now()
	resp, err := r.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}
	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Claude API")
	}

	r.logger.Debug().
		Int("input_length", len(text)).
		Int("output_length", response.Len()).
		Dur("duration", time.Since(start)).
		Msg("Claude rewrite completed")

	return response.String(), nil
}
