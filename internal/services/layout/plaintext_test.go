package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybob/lector/internal/models"
)

func textOnly(contents ...string) []models.TextLine {
	lines := make([]models.TextLine, len(contents))
	for i, c := range contents {
		lines[i] = models.TextLine{Content: c}
	}
	return lines
}

func TestReconstructPlainText(t *testing.T) {
	tests := []struct {
		name     string
		contents []string
		want     string
	}{
		{
			name:     "joins without separator",
			contents: []string{"Hello ", "world"},
			want:     "Hello world",
		},
		{
			name:     "keeps single line breaks",
			contents: []string{"first\n", "second\n"},
			want:     "first\nsecond",
		},
		{
			name:     "collapses blank line runs to one blank line",
			contents: []string{"before\n", "\n", "\n", "\n", "\n", "after\n"},
			want:     "before\n\nafter",
		},
		{
			name:     "preserves a single blank line",
			contents: []string{"before\n", "\n", "after"},
			want:     "before\n\nafter",
		},
		{
			name:     "trims surrounding whitespace",
			contents: []string{"\n\n", "  content  ", "\n\n"},
			want:     "content",
		},
		{
			name:     "empty input",
			contents: nil,
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReconstructPlainText(textOnly(tt.contents...)))
		})
	}
}
