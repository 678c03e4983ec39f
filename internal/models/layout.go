package models

// TextLine is one physical line of text on a page as reported by the
// document-processing engine. The bounding box is in page coordinate units;
// all lines of a page share the same unit. Lines arrive in reading order,
// Top values non-decreasing. The layout core assumes this order and never
// re-sorts.
type TextLine struct {
	Content string  `json:"content"`
	Left    float64 `json:"left"`
	Top     float64 `json:"top"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// Bottom returns the y coordinate of the line's lower edge.
func (l TextLine) Bottom() float64 {
	return l.Top + l.Height
}

// Right returns the x coordinate of the line's right edge.
func (l TextLine) Right() float64 {
	return l.Left + l.Width
}

// BBox is a minimal enclosing rectangle in page coordinate units.
type BBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ParagraphKind classifies a segmented paragraph.
type ParagraphKind string

const (
	KindParagraph ParagraphKind = "paragraph"
	KindHeading   ParagraphKind = "heading"
)

// Paragraph is a run of TextLines merged by the segmenter into one logical
// block. Level is 1-4 for headings and 0 otherwise.
type Paragraph struct {
	Text      string        `json:"text"`
	BBox      BBox          `json:"bbox"`
	LineCount int           `json:"lineCount"`
	Kind      ParagraphKind `json:"kind"`
	Level     int           `json:"level,omitempty"`
}

// PageLayout is the engine's raw output for one page.
type PageLayout struct {
	PageIndex int        `json:"pageIndex"`
	TextLines []TextLine `json:"textLines"`
}

// PageResult is the processed rendition of one page.
type PageResult struct {
	PageIndex  int         `json:"pageIndex"`
	PlainText  string      `json:"plainText"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

// ExtractionResult is the full response for one extraction request. It is
// recomputed on every call; nothing derived is persisted.
type ExtractionResult struct {
	DocumentID     string       `json:"documentId"`
	PageCount      int          `json:"pageCount"`
	RewriteApplied bool         `json:"rewriteApplied"`
	Pages          []PageResult `json:"pages"`
}
