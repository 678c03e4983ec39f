// Package layout implements the geometric post-processing of engine output:
// paragraph segmentation, heading classification, and plain-text
// reconstruction. Everything here is pure computation over one page's lines;
// no I/O, no shared state.
package layout

import (
	"math"
	"strings"

	"github.com/ternarybob/lector/internal/common"
	"github.com/ternarybob/lector/internal/models"
)

// Segmenter partitions a page's positioned text lines into paragraphs using
// vertical gaps, line-height changes, indentation shifts, and trailing
// punctuation. It is a two-pass scan: page-wide averages first, then a
// single forward pass comparing each line to its immediate predecessor.
//
// Input lines must be in reading order (Top non-decreasing) with empty lines
// already filtered out; see FilterLines.
type Segmenter struct {
	cfg common.SegmenterConfig
}

// NewSegmenter creates a segmenter with the given thresholds.
func NewSegmenter(cfg common.SegmenterConfig) *Segmenter {
	return &Segmenter{cfg: cfg}
}

// FilterLines drops empty and whitespace-only lines. The geometric scan only
// works on lines that actually render text; the raw sequence is kept by the
// caller for plain-text reconstruction.
func FilterLines(lines []models.TextLine) []models.TextLine {
	filtered := make([]models.TextLine, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l.Content) != "" {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

// Segment produces an ordered sequence of paragraphs covering every input
// line exactly once. Empty input yields an empty result, not an error.
//
// Degenerate geometry (all lines at one position, avgGap <= 0) is not
// corrected: the gap ratio blows up and the page over-splits, which is
// accepted heuristic behavior.
func (s *Segmenter) Segment(lines []models.TextLine) []models.Paragraph {
	if len(lines) == 0 {
		return []models.Paragraph{}
	}

	avgHeight, avgGap := pageAverages(lines)

	paragraphs := make([]models.Paragraph, 0, len(lines)/3+1)
	current := newBuilder(lines[0])

	for i := 1; i < len(lines); i++ {
		prev := lines[i-1]
		line := lines[i]

		gap := line.Top - prev.Bottom()
		gapRatio := gap / avgGap
		heightChange := math.Abs(line.Height-prev.Height) / avgHeight
		indentChange := math.Abs(line.Left - prev.Left)

		isBreak := gapRatio > s.cfg.GapRatioBreak ||
			heightChange > s.cfg.HeightChangeBreak ||
			indentChange > s.cfg.IndentBreak ||
			(gapRatio > s.cfg.PunctuatedGapRatio && endsWithTerminal(prev.Content)) ||
			gap > avgHeight*s.cfg.LargeGapHeightFactor

		if isBreak {
			paragraphs = append(paragraphs, current.close())
			current = newBuilder(line)
			continue
		}

		current.append(prev, line)
	}

	return append(paragraphs, current.close())
}

// pageAverages computes the page-wide mean line height and the mean vertical
// gap between adjacent lines. Gaps of overlapping boxes are negative and are
// deliberately not clamped. A single-line page has no gaps; avgGap stays 0
// and the gap comparisons in the scan never run.
func pageAverages(lines []models.TextLine) (avgHeight, avgGap float64) {
	for _, l := range lines {
		avgHeight += l.Height
	}
	avgHeight /= float64(len(lines))

	if len(lines) < 2 {
		return avgHeight, 0
	}

	for i := 1; i < len(lines); i++ {
		avgGap += lines[i].Top - lines[i-1].Bottom()
	}
	avgGap /= float64(len(lines) - 1)

	return avgHeight, avgGap
}

// endsWithTerminal reports whether the trimmed text ends a sentence.
func endsWithTerminal(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasSuffix(t, ".") || strings.HasSuffix(t, "!") || strings.HasSuffix(t, "?")
}

// builder accumulates one paragraph in progress.
type builder struct {
	text      string
	left      float64
	right     float64
	top       float64
	bottom    float64
	lineCount int
}

func newBuilder(line models.TextLine) builder {
	return builder{
		text:      line.Content,
		left:      line.Left,
		right:     line.Right(),
		top:       line.Top,
		bottom:    line.Bottom(),
		lineCount: 1,
	}
}

// append merges line into the paragraph. Text joins with a single space,
// except after a hyphenated line break, where the trailing hyphen is dropped
// and the fragments fuse directly ("exam-" + "ple" -> "example"). This is a
// simple hyphenation heuristic, not dictionary-aware. The box grows to the
// union of left/width and down to the new line's bottom edge.
func (b *builder) append(prev, line models.TextLine) {
	if strings.HasSuffix(strings.TrimSpace(prev.Content), "-") {
		b.text = strings.TrimSuffix(strings.TrimSpace(b.text), "-") + strings.TrimSpace(line.Content)
	} else {
		b.text += " " + line.Content
	}

	b.left = math.Min(b.left, line.Left)
	b.right = math.Max(b.right, line.Right())
	b.bottom = line.Bottom()
	b.lineCount++
}

func (b builder) close() models.Paragraph {
	return models.Paragraph{
		Text: strings.TrimSpace(b.text),
		BBox: models.BBox{
			Left:   b.left,
			Top:    b.top,
			Width:  b.right - b.left,
			Height: b.bottom - b.top,
		},
		LineCount: b.lineCount,
		Kind:      models.KindParagraph,
	}
}
