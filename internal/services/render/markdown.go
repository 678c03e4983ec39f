// Package render turns extraction results into downloadable formats:
// markdown, and a PDF rendition of that markdown.
package render

import (
	"strings"

	"github.com/ternarybob/lector/internal/models"
)

// Markdown renders the extraction result as a markdown document. Headings
// carry their classified level; paragraphs are separated by blank lines.
func Markdown(result *models.ExtractionResult) string {
	var b strings.Builder

	for _, page := range result.Pages {
		for _, para := range page.Paragraphs {
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			if para.Kind == models.KindHeading {
				b.WriteString(strings.Repeat("#", para.Level))
				b.WriteString(" ")
			}
			b.WriteString(para.Text)
		}
	}

	if b.Len() == 0 {
		return ""
	}
	return b.String() + "\n"
}
