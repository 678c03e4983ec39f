package layout

import (
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/lector/internal/common"
	"github.com/ternarybob/lector/internal/models"
)

// HeadingClassifier relabels short, unpunctuated paragraphs as headings.
// A paragraph qualifies only when all limits hold: trimmed length under
// MaxChars, word count under MaxWords, no terminal punctuation, and at most
// MaxLines source lines.
type HeadingClassifier struct {
	cfg common.HeadingConfig
}

// NewHeadingClassifier creates a classifier with the given limits.
func NewHeadingClassifier(cfg common.HeadingConfig) *HeadingClassifier {
	return &HeadingClassifier{cfg: cfg}
}

// Classify annotates paragraphs in place with kind and heading level.
func (c *HeadingClassifier) Classify(paragraphs []models.Paragraph) {
	for i := range paragraphs {
		p := &paragraphs[i]
		text := strings.TrimSpace(p.Text)
		words := len(strings.Fields(text))

		if utf8.RuneCountInString(text) < c.cfg.MaxChars &&
			words < c.cfg.MaxWords &&
			!endsWithTerminal(text) &&
			p.LineCount <= c.cfg.MaxLines {
			p.Kind = models.KindHeading
			p.Level = headingLevel(words)
		} else {
			p.Kind = models.KindParagraph
			p.Level = 0
		}
	}
}

// headingLevel maps word count to a level 1-4. Shorter is more prominent.
func headingLevel(words int) int {
	switch {
	case words <= 5:
		return 1
	case words <= 8:
		return 2
	case words <= 12:
		return 3
	default:
		return 4
	}
}
