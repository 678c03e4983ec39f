package rewrite

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lector/internal/common"
	"github.com/ternarybob/lector/internal/interfaces"
)

// NewRewriter creates the configured rewrite provider. Returns nil (no
// rewriter, no error) when rewriting is disabled.
func NewRewriter(cfg *common.Config, storageManager interfaces.StorageManager, logger arbor.ILogger) (interfaces.TextRewriter, error) {
	if !cfg.Rewrite.Enabled {
		logger.Debug().Msg("Text rewrite disabled")
		return nil, nil
	}

	logger.Info().Str("provider", cfg.Rewrite.Provider).Msg("Initializing text rewriter")

	switch cfg.Rewrite.Provider {
	case "claude":
		return NewClaudeRewriter(&cfg.Claude, storageManager, logger)
	case "gemini":
		return NewGeminiRewriter(&cfg.Gemini, storageManager, logger)
	default:
		return nil, fmt.Errorf("unsupported rewrite provider '%s': must be 'claude' or 'gemini'", cfg.Rewrite.Provider)
	}
}
