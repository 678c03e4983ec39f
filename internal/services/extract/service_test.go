package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lector/internal/common"
	"github.com/ternarybob/lector/internal/interfaces"
	"github.com/ternarybob/lector/internal/models"
	"github.com/ternarybob/lector/internal/services/metrics"
)

type stubEngine struct {
	pages []models.PageLayout
	err   error
}

func (e *stubEngine) UploadDocument(context.Context, string, []byte) (string, error) {
	return "", errors.New("not implemented")
}

func (e *stubEngine) FetchLayout(context.Context, string) ([]models.PageLayout, error) {
	return e.pages, e.err
}

func (e *stubEngine) DeleteDocument(context.Context, string) error {
	return nil
}

type stubRewriter struct {
	fn    func(string) (string, error)
	calls int
}

func (r *stubRewriter) Rewrite(_ context.Context, text string) (string, error) {
	r.calls++
	return r.fn(text)
}

func (r *stubRewriter) Provider() string { return "stub" }

// longLine is comfortably over the 100-character rewrite threshold.
var longLine = strings.Repeat("The quarterly figures improved across every region. ", 3)

func pageWith(contents ...string) models.PageLayout {
	lines := make([]models.TextLine, len(contents))
	top := 100.0
	for i, content := range contents {
		lines[i] = models.TextLine{Content: content, Left: 72, Top: top, Width: 400, Height: 10}
		top += 12
	}
	return models.PageLayout{PageIndex: 0, TextLines: lines}
}

func newService(engine interfaces.DocumentEngine, rewriter interfaces.TextRewriter) (*Service, *metrics.Recorder) {
	cfg := common.NewDefaultConfig()
	usage := metrics.NewRecorder(nil, arbor.NewLogger())
	return NewService(cfg, engine, rewriter, usage, arbor.NewLogger()), usage
}

func testDoc() *models.Document {
	return &models.Document{ID: "doc_test", EngineID: "asset-1"}
}

func TestExtractLayoutFetchFailureIsFatal(t *testing.T) {
	svc, _ := newService(&stubEngine{err: errors.New("engine unreachable")}, nil)

	_, err := svc.Extract(context.Background(), testDoc(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layout fetch failed")
}

func TestExtractPreservesPageOrder(t *testing.T) {
	pages := []models.PageLayout{
		{PageIndex: 0, TextLines: pageWith("First page text.").TextLines},
		{PageIndex: 1, TextLines: pageWith("Second page text.").TextLines},
		{PageIndex: 2, TextLines: nil},
	}
	svc, _ := newService(&stubEngine{pages: pages}, nil)

	result, err := svc.Extract(context.Background(), testDoc(), true)
	require.NoError(t, err)
	assert.Equal(t, "doc_test", result.DocumentID)
	assert.Equal(t, 3, result.PageCount)
	assert.False(t, result.RewriteApplied)
	require.Len(t, result.Pages, 3)
	assert.Equal(t, "First page text.", result.Pages[0].PlainText)
	assert.Equal(t, "Second page text.", result.Pages[1].PlainText)
	assert.Equal(t, 2, result.Pages[2].PageIndex)
	assert.Empty(t, result.Pages[2].PlainText)
	assert.Empty(t, result.Pages[2].Paragraphs)
}

func TestExtractSkipsRewriteForShortPages(t *testing.T) {
	rewriter := &stubRewriter{fn: func(text string) (string, error) {
		return "cleaned", nil
	}}
	svc, usage := newService(&stubEngine{pages: []models.PageLayout{pageWith("Short note.")}}, rewriter)

	result, err := svc.Extract(context.Background(), testDoc(), true)
	require.NoError(t, err)
	assert.False(t, result.RewriteApplied)
	assert.Equal(t, "Short note.", result.Pages[0].PlainText)
	assert.Zero(t, rewriter.calls)
	assert.Zero(t, usage.Snapshot()[interfaces.MetricRewriteCalls])
}

func TestExtractAcceptsRewrite(t *testing.T) {
	rewriter := &stubRewriter{fn: func(text string) (string, error) {
		return strings.ToUpper(text), nil
	}}
	svc, usage := newService(&stubEngine{pages: []models.PageLayout{pageWith(longLine)}}, rewriter)

	result, err := svc.Extract(context.Background(), testDoc(), true)
	require.NoError(t, err)
	assert.True(t, result.RewriteApplied)
	assert.Equal(t, strings.ToUpper(strings.TrimSpace(longLine)), result.Pages[0].PlainText)
	assert.Equal(t, 1, rewriter.calls)

	snapshot := usage.Snapshot()
	assert.EqualValues(t, 1, snapshot[interfaces.MetricRewriteCalls])
	assert.EqualValues(t, 1, snapshot[interfaces.MetricRewriteAccepted])

	// Paragraphs are always built from the original line geometry.
	require.NotEmpty(t, result.Pages[0].Paragraphs)
	assert.Equal(t, strings.TrimSpace(longLine), result.Pages[0].Paragraphs[0].Text)
}

func TestExtractRewriteErrorFallsBackToOriginal(t *testing.T) {
	rewriter := &stubRewriter{fn: func(string) (string, error) {
		return "", errors.New("provider overloaded")
	}}
	svc, usage := newService(&stubEngine{pages: []models.PageLayout{pageWith(longLine)}}, rewriter)

	result, err := svc.Extract(context.Background(), testDoc(), true)
	require.NoError(t, err)
	assert.False(t, result.RewriteApplied)
	assert.Equal(t, strings.TrimSpace(longLine), result.Pages[0].PlainText)
	assert.EqualValues(t, 1, usage.Snapshot()[interfaces.MetricRewriteFallbacks])
}

func TestExtractDiscardsOverlongRewrite(t *testing.T) {
	rewriter := &stubRewriter{fn: func(text string) (string, error) {
		return text + text + text, nil
	}}
	svc, usage := newService(&stubEngine{pages: []models.PageLayout{pageWith(longLine)}}, rewriter)

	result, err := svc.Extract(context.Background(), testDoc(), true)
	require.NoError(t, err)
	assert.False(t, result.RewriteApplied)
	assert.Equal(t, strings.TrimSpace(longLine), result.Pages[0].PlainText)

	snapshot := usage.Snapshot()
	assert.EqualValues(t, 1, snapshot[interfaces.MetricRewriteCalls])
	assert.EqualValues(t, 1, snapshot[interfaces.MetricRewriteFallbacks])
	assert.Zero(t, snapshot[interfaces.MetricRewriteAccepted])
}

func TestExtractRewriteDisabledPerRequest(t *testing.T) {
	rewriter := &stubRewriter{fn: func(text string) (string, error) {
		return "cleaned", nil
	}}
	svc, _ := newService(&stubEngine{pages: []models.PageLayout{pageWith(longLine)}}, rewriter)

	result, err := svc.Extract(context.Background(), testDoc(), false)
	require.NoError(t, err)
	assert.False(t, result.RewriteApplied)
	assert.Zero(t, rewriter.calls)
}

func TestExtractRecordsPagesProcessed(t *testing.T) {
	pages := []models.PageLayout{pageWith("One."), pageWith("Two."), pageWith("Three.")}
	svc, usage := newService(&stubEngine{pages: pages}, nil)

	_, err := svc.Extract(context.Background(), testDoc(), true)
	require.NoError(t, err)

	snapshot := usage.Snapshot()
	assert.EqualValues(t, 3, snapshot[interfaces.MetricPagesProcessed])
	assert.EqualValues(t, 1, snapshot[interfaces.MetricExtractRequests])
}
