// Package extract orchestrates the per-page pipeline: fetch layout from the
// engine, reconstruct plain text, apply the rewrite policy, then segment and
// classify paragraphs. Nothing derived here is persisted; every call
// recomputes from the engine layout.
package extract

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lector/internal/common"
	"github.com/ternarybob/lector/internal/interfaces"
	"github.com/ternarybob/lector/internal/models"
	"github.com/ternarybob/lector/internal/services/layout"
)

// Service runs extractions.
type Service struct {
	config     *common.Config
	logger     arbor.ILogger
	engine     interfaces.DocumentEngine
	rewriter   interfaces.TextRewriter // nil when rewriting is disabled
	usage      interfaces.UsageRecorder
	segmenter  *layout.Segmenter
	classifier *layout.HeadingClassifier
}

// NewService creates the extraction service. rewriter may be nil.
func NewService(cfg *common.Config, engine interfaces.DocumentEngine, rewriter interfaces.TextRewriter, usage interfaces.UsageRecorder, logger arbor.ILogger) *Service {
	return &Service{
		config:     cfg,
		logger:     logger,
		engine:     engine,
		rewriter:   rewriter,
		usage:      usage,
		segmenter:  layout.NewSegmenter(cfg.Segmenter),
		classifier: layout.NewHeadingClassifier(cfg.Heading),
	}
}

// Extract fetches the document layout and processes every page. A layout
// fetch failure is fatal to the request; per-page rewrite failures are not.
// Setting withRewrite false skips the rewrite collaborator for this call.
func (s *Service) Extract(ctx context.Context, doc *models.Document, withRewrite bool) (*models.ExtractionResult, error) {
	s.usage.Incr(interfaces.MetricExtractRequests)

	pages, err := s.engine.FetchLayout(ctx, doc.EngineID)
	if err != nil {
		return nil, fmt.Errorf("layout fetch failed for %s: %w", doc.ID, err)
	}

	rewriter := s.rewriter
	if !withRewrite {
		rewriter = nil
	}

	results := make([]models.PageResult, len(pages))
	accepted := make([]bool, len(pages))

	var wg sync.WaitGroup
	for i, page := range pages {
		wg.Add(1)
		go func(i int, page models.PageLayout) {
			defer wg.Done()
			results[i], accepted[i] = s.processPage(ctx, rewriter, page)
		}(i, page)
	}
	wg.Wait()

	s.usage.Add(interfaces.MetricPagesProcessed, int64(len(pages)))

	rewriteApplied := false
	for _, ok := range accepted {
		if ok {
			rewriteApplied = true
			break
		}
	}

	s.logger.Info().
		Str("document_id", doc.ID).
		Int("pages", len(pages)).
		Bool("rewrite_applied", rewriteApplied).
		Msg("Extraction completed")

	return &models.ExtractionResult{
		DocumentID:     doc.ID,
		PageCount:      len(pages),
		RewriteApplied: rewriteApplied,
		Pages:          results,
	}, nil
}

// processPage runs the pipeline for one page and reports whether a rewrite
// was accepted.
func (s *Service) processPage(ctx context.Context, rewriter interfaces.TextRewriter, page models.PageLayout) (models.PageResult, bool) {
	plainText := layout.ReconstructPlainText(page.TextLines)
	plainText, accepted := s.applyRewrite(ctx, rewriter, page.PageIndex, plainText)

	filtered := layout.FilterLines(page.TextLines)
	paragraphs := s.segmenter.Segment(filtered)
	s.classifier.Classify(paragraphs)

	return models.PageResult{
		PageIndex:  page.PageIndex,
		PlainText:  plainText,
		Paragraphs: paragraphs,
	}, accepted
}

// applyRewrite wraps the rewriter with the safety guards: short pages are
// skipped, one attempt only, errors fall back to the original text, and a
// rewrite longer than MaxLengthRatio times the original is discarded.
func (s *Service) applyRewrite(ctx context.Context, rewriter interfaces.TextRewriter, pageIndex int, original string) (string, bool) {
	if rewriter == nil {
		return original, false
	}
	if len(strings.TrimSpace(original)) < s.config.Rewrite.MinLength {
		return original, false
	}

	s.usage.Incr(interfaces.MetricRewriteCalls)

	rewritten, err := rewriter.Rewrite(ctx, original)
	if err != nil {
		s.usage.Incr(interfaces.MetricRewriteFallbacks)
		s.logger.Warn().
			Err(err).
			Int("page", pageIndex).
			Str("provider", rewriter.Provider()).
			Msg("Rewrite failed, keeping original text")
		return original, false
	}

	if float64(len(rewritten))/float64(len(original)) > s.config.Rewrite.MaxLengthRatio {
		s.usage.Incr(interfaces.MetricRewriteFallbacks)
		s.logger.Warn().
			Int("page", pageIndex).
			Int("original_length", len(original)).
			Int("rewritten_length", len(rewritten)).
			Msg("Rewrite discarded, output too long")
		return original, false
	}

	s.usage.Incr(interfaces.MetricRewriteAccepted)
	return rewritten, true
}
