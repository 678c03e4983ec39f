package common

import (
	"context"
	"fmt"
	"os"

	"github.com/ternarybob/lector/internal/interfaces"
)

// keyToEnvMapping maps KV store key names to the environment variables that
// override them. Environment variables have highest priority.
var keyToEnvMapping = map[string][]string{
	"anthropic_api_key": {"ANTHROPIC_API_KEY", "LECTOR_CLAUDE_API_KEY"},
	"gemini_api_key":    {"GEMINI_API_KEY", "LECTOR_GEMINI_API_KEY"},
}

// ResolveAPIKey resolves an API key by name with the priority order:
// environment variable, KV store, config fallback.
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if kvStorage != nil {
		apiKey, err := kvStorage.Get(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment, KV store, or config", name)
}
