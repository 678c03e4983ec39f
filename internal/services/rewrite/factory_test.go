package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lector/internal/common"
)

func TestNewRewriterDisabledReturnsNil(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Rewrite.Enabled = false

	rewriter, err := NewRewriter(cfg, nil, arbor.NewLogger())
	require.NoError(t, err)
	assert.Nil(t, rewriter)
}

func TestNewRewriterUnsupportedProvider(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Rewrite.Enabled = true
	cfg.Rewrite.Provider = "gpt"

	_, err := NewRewriter(cfg, nil, arbor.NewLogger())
	assert.Error(t, err)
}

func TestClaudeRewriterDefaultModelMatchesConfigDefault(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	claudeConfig := &common.ClaudeConfig{}
	rewriter, err := NewClaudeRewriter(claudeConfig, nil, arbor.NewLogger())
	require.NoError(t, err)

	// The constructor fallback and the config default must name the same
	// model, or a default config would call a model nobody configured.
	assert.Equal(t, common.NewDefaultConfig().Claude.Model, claudeConfig.Model)
	assert.Equal(t, "claude", rewriter.Provider())
}

func TestClaudeRewriterRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("LECTOR_CLAUDE_API_KEY", "")

	_, err := NewClaudeRewriter(&common.ClaudeConfig{}, nil, arbor.NewLogger())
	assert.Error(t, err)
}
