package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// PDFService renders extraction markdown into a PDF rendition for download.
type PDFService struct {
	logger arbor.ILogger
}

// NewPDFService creates a PDF rendition service.
func NewPDFService(logger arbor.ILogger) *PDFService {
	return &PDFService{logger: logger}
}

// ConvertMarkdownToPDF renders markdown as an A4 PDF. The extraction output
// only produces headings and paragraphs, so the renderer handles exactly
// those node kinds.
func (s *PDFService) ConvertMarkdownToPDF(markdown, title string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(title, true)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 10)

	md := goldmark.New()
	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	renderer := &pdfRenderer{pdf: pdf, source: source}
	if err := renderer.render(doc); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().
		Int("markdown_len", len(markdown)).
		Int("pdf_size", buf.Len()).
		Msg("Rendered extraction PDF")

	return buf.Bytes(), nil
}

type pdfRenderer struct {
	pdf    *fpdf.Fpdf
	source []byte
}

func (r *pdfRenderer) render(node ast.Node) error {
	return ast.Walk(node, r.walk)
}

func (r *pdfRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindHeading:
		return r.handleHeading(n.(*ast.Heading), entering)
	case ast.KindParagraph:
		if !entering {
			r.pdf.Ln(8)
		}
	case ast.KindText:
		if entering {
			r.pdf.Write(5, string(n.Text(r.source)))
		}
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) handleHeading(n *ast.Heading, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.pdf.Ln(4)
		size := 10.0
		switch n.Level {
		case 1:
			size = 16
		case 2:
			size = 14
		case 3:
			size = 12
		default:
			size = 11
		}
		r.pdf.SetFont("Arial", "B", size)
	} else {
		r.pdf.Ln(8)
		r.pdf.SetFont("Arial", "", 10)
	}
	return ast.WalkContinue, nil
}
