package badger

import (
	"bufio"
	"context"
	"os"
	"strings"
)

// LoadEnvFile reads KEY=value pairs from a .env file into the KV store so
// secrets such as rewrite API keys can live outside the TOML config. Missing
// files and malformed lines are skipped; loading is never fatal.
func (m *Manager) LoadEnvFile(ctx context.Context, filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		m.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to open .env file")
		return nil
	}
	defer file.Close()

	loaded := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}
		if key == "" || value == "" {
			continue
		}

		if err := m.kv.Set(ctx, key, value, "loaded from .env"); err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("Failed to store variable from .env")
			continue
		}
		loaded++
	}

	if err := scanner.Err(); err != nil {
		m.logger.Warn().Err(err).Str("file", filePath).Msg("Error reading .env file")
	}
	if loaded > 0 {
		m.logger.Info().Str("file", filePath).Int("loaded", loaded).Msg("Loaded variables from .env file")
	}
	return nil
}
