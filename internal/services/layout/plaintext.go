package layout

import (
	"regexp"
	"strings"

	"github.com/ternarybob/lector/internal/models"
)

var newlineRuns = regexp.MustCompile(`\n{3,}`)

// ReconstructPlainText rebuilds a page's full text from the unfiltered line
// sequence. Contents are concatenated with no inserted separator — the
// engine's line contents carry their own trailing newlines where the source
// emitted one. Runs of three or more newlines collapse to exactly two, and
// the result is trimmed.
//
// This is independent of paragraph segmentation and runs on the lines before
// the empty-line filter.
func ReconstructPlainText(lines []models.TextLine) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Content)
	}
	return strings.TrimSpace(newlineRuns.ReplaceAllString(b.String(), "\n\n"))
}
