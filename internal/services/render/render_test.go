package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lector/internal/models"
)

func sampleResult() *models.ExtractionResult {
	return &models.ExtractionResult{
		DocumentID: "doc_test",
		PageCount:  2,
		Pages: []models.PageResult{
			{
				PageIndex: 0,
				Paragraphs: []models.Paragraph{
					{Text: "Annual Report", Kind: models.KindHeading, Level: 1, LineCount: 1},
					{Text: "Revenue grew steadily across all regions during the year.", Kind: models.KindParagraph, LineCount: 2},
				},
			},
			{
				PageIndex: 1,
				Paragraphs: []models.Paragraph{
					{Text: "Outlook and Risks", Kind: models.KindHeading, Level: 3, LineCount: 1},
					{Text: "Management expects continued growth next year.", Kind: models.KindParagraph, LineCount: 1},
				},
			},
		},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleResult())

	assert.Contains(t, md, "# Annual Report\n\n")
	assert.Contains(t, md, "### Outlook and Risks")
	assert.Contains(t, md, "Revenue grew steadily")
	assert.True(t, strings.HasSuffix(md, "\n"))

	// Paragraphs are separated by exactly one blank line.
	blocks := strings.Split(strings.TrimSpace(md), "\n\n")
	assert.Len(t, blocks, 4)
}

func TestMarkdownEmptyResult(t *testing.T) {
	md := Markdown(&models.ExtractionResult{DocumentID: "doc_empty"})
	assert.Equal(t, "", md)
}

func TestConvertMarkdownToPDF(t *testing.T) {
	svc := NewPDFService(arbor.NewLogger())

	md := Markdown(sampleResult())
	pdfBytes, err := svc.ConvertMarkdownToPDF(md, "Annual Report")
	require.NoError(t, err)
	require.NotEmpty(t, pdfBytes)
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF-")))
}
