package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybob/lector/internal/common"
	"github.com/ternarybob/lector/internal/models"
)

func classify(t *testing.T, text string, lineCount int) models.Paragraph {
	t.Helper()
	paras := []models.Paragraph{{Text: text, LineCount: lineCount, Kind: models.KindParagraph}}
	NewHeadingClassifier(common.NewDefaultConfig().Heading).Classify(paras)
	return paras[0]
}

func TestHeadingLevelsByWordCount(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		level int
	}{
		{"one word", "Introduction", 1},
		{"five words", "A Survey of Prior Work", 1},
		{"six words", "A Longer Survey of Prior Work", 2},
		{"eight words", "A Much Longer Survey of All Prior Work", 2},
		{"nine words", "An Even Much Longer Survey of All Prior Work", 3},
		{"twelve words", "one two three four five six seven eight nine ten eleven twelve", 3},
		{"thirteen words", "one two three four five six seven eight nine ten eleven twelve thirteen", 4},
		{"fourteen words", "a b c d e f g h i j k l m n", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := classify(t, tt.text, 1)
			assert.Equal(t, models.KindHeading, p.Kind)
			assert.Equal(t, tt.level, p.Level)
		})
	}
}

func TestHeadingDisqualifiers(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		lineCount int
	}{
		{"terminal period", "Short but ends here.", 1},
		{"terminal bang", "Act now!", 1},
		{"terminal question", "Why Go?", 1},
		{"too many words", "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen", 1},
		{"too many lines", "Spread over three source lines", 3},
		{"too long", strings.Repeat("x", 120), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := classify(t, tt.text, tt.lineCount)
			assert.Equal(t, models.KindParagraph, p.Kind)
			assert.Zero(t, p.Level)
		})
	}
}

func TestHeadingBoundaryFiveVsSixWords(t *testing.T) {
	five := classify(t, "Results of the Main Experiment", 1)
	assert.Equal(t, models.KindHeading, five.Kind)
	assert.Equal(t, 1, five.Level)

	six := classify(t, "Results of the Second Main Experiment", 1)
	assert.Equal(t, models.KindHeading, six.Kind)
	assert.Equal(t, 2, six.Level)
}

func TestHeadingTwoLinesStillQualifies(t *testing.T) {
	p := classify(t, "A Title Wrapped Onto Two Lines", 2)
	assert.Equal(t, models.KindHeading, p.Kind)
}

func TestNonHeadingParagraphKeepsParagraphKind(t *testing.T) {
	body := "This is an ordinary body paragraph that carries on at some length and finishes with a period."
	p := classify(t, body, 4)
	assert.Equal(t, models.KindParagraph, p.Kind)
	assert.Zero(t, p.Level)
}
