package teardown

import (
	"context"
	"fmt"
	"image"
	"strings"

	"go.uber.org/zap"

	"github.com/redpenlabs/teardown/internal/config"
	"github.com/redpenlabs/teardown/internal/editorial"
	"github.com/redpenlabs/teardown/internal/evidence"
	"github.com/redpenlabs/teardown/internal/imaging"
	"github.com/redpenlabs/teardown/internal/llm"
	"github.com/redpenlabs/teardown/internal/ocr"
	"github.com/redpenlabs/teardown/internal/regions"
	"github.com/redpenlabs/teardown/internal/render"
)

// Item is one piece of content to tear down.
type Item struct {
	// ID identifies the item inside a batch; the CLI uses the image
	// file's base name.
	ID string `json:"id"`

	// ImagePath points at the page screenshot.
	ImagePath string `json:"image_path"`

	// SourceText is the scraped page text. When empty, the engine
	// extracts text from the screenshot via the vision model before
	// diagnosing.
	SourceText string `json:"-"`

	// ContentType is "profile" or "post"; it shapes the prompts only.
	ContentType string `json:"content_type"`

	// ExtraContext is optional free-form context for the diagnosis.
	ExtraContext string `json:"-"`
}

// ItemResult is the full outcome of one item's pipeline run.
type ItemResult struct {
	ItemID   string              `json:"item_id"`
	Verdict  *editorial.Verdict  `json:"verdict,omitempty"`
	Playbook *editorial.Playbook `json:"playbook,omitempty"`
	Evidence []evidence.Evidence `json:"evidence,omitempty"`
	Quality  *QualityReport      `json:"quality,omitempty"`

	// AnnotatedPNG is the rendered annotation; the CLI writes it next
	// to the source image rather than into the JSON summary.
	AnnotatedPNG []byte `json:"-"`

	// Error is the failure message for items that did not complete.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the item's pipeline run ended in an error.
func (r *ItemResult) Failed() bool { return r.Error != "" }

// regionExtractor is the OCR surface the engine needs; satisfied by
// *ocr.Extractor and by test fakes that avoid a Tesseract dependency.
type regionExtractor interface {
	Extract(imagePath string) ([]ocr.TextRegion, error)
}

// annotationRenderer is satisfied by *render.Renderer.
type annotationRenderer interface {
	Render(img image.Image, items []evidence.Evidence, headline string) ([]byte, error)
}

// Engine wires the pipeline components and runs items through them.
type Engine struct {
	cfg config.Config
	log *zap.SugaredLogger

	pages     *imaging.PageCache
	extractor regionExtractor
	grouper   *regions.Grouper
	diagnosis *editorial.DiagnosisEngine
	playbook  *editorial.PlaybookEngine
	selector  evidence.Selector
	renderer  annotationRenderer
	client    llm.Client
}

// NewEngine constructs the pipeline from configuration. The client
// serves both generation and, when configured, evidence selection.
func NewEngine(cfg config.Config, client llm.Client, log *zap.SugaredLogger) (*Engine, error) {
	selector, err := evidence.NewSelector(cfg.Evidence, client)
	if err != nil {
		return nil, err
	}
	renderer, err := render.NewRenderer(cfg.Render)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       cfg,
		log:       log,
		pages:     imaging.NewPageCache(),
		extractor: ocr.NewExtractor(cfg.OCR),
		grouper:   regions.NewGrouper(cfg.Regions),
		diagnosis: editorial.NewDiagnosisEngine(client, cfg.Generation),
		playbook:  editorial.NewPlaybookEngine(client, cfg.Generation),
		selector:  selector,
		renderer:  renderer,
		client:    client,
	}, nil
}

// RunItem executes the full pipeline for one item. The returned error
// keeps its originating stage's type; the ItemResult mirrors it in the
// Error field so batch summaries need no error unwrapping.
func (e *Engine) RunItem(ctx context.Context, item Item) (*ItemResult, error) {
	result := &ItemResult{ItemID: item.ID}

	fail := func(stage string, err error) (*ItemResult, error) {
		e.log.Warnw("item failed", "item", item.ID, "stage", stage, "error", err)
		result.Error = fmt.Sprintf("%s: %v", stage, err)
		return result, err
	}

	img, err := e.pages.Load(item.ImagePath)
	if err != nil {
		return fail("load", &ocr.InputError{Path: item.ImagePath, Err: err})
	}
	defer e.pages.Evict(item.ImagePath)

	textRegions, err := e.extractor.Extract(item.ImagePath)
	if err != nil {
		return fail("ocr", err)
	}
	lines := e.grouper.Lines(textRegions)
	e.log.Debugw("regions grouped", "item", item.ID,
		"words", len(textRegions), "lines", len(lines))

	sourceText := item.SourceText
	if strings.TrimSpace(sourceText) == "" {
		sourceText, err = e.extractTextFallback(ctx, img)
		if err != nil {
			return fail("vision", err)
		}
	}

	verdict, err := e.diagnosis.Diagnose(ctx, sourceText, item.ContentType, item.ExtraContext)
	if err != nil {
		return fail("diagnosis", err)
	}
	result.Verdict = verdict

	selected, err := e.selector.Select(ctx, verdict, lines)
	if err != nil {
		return fail("evidence", err)
	}
	result.Evidence = selected

	annotated, err := e.renderer.Render(img, selected, verdict.OneSentenceVerdict)
	if err != nil {
		return fail("render", err)
	}
	result.AnnotatedPNG = annotated

	captions := make([]string, 0, len(selected))
	for _, ev := range selected {
		captions = append(captions, ev.EditorialCaption)
	}
	playbook, err := e.playbook.Generate(ctx, verdict, sourceText, captions, item.ContentType)
	if err != nil {
		return fail("playbook", err)
	}
	result.Playbook = playbook

	result.Quality = e.assessQuality(verdict, playbook)
	e.log.Infow("item complete", "item", item.ID,
		"evidence", len(selected), "quality", result.Quality.Score)
	return result, nil
}

// extractTextFallback reads page text out of the screenshot via the
// vision model for items with no scraped source text.
func (e *Engine) extractTextFallback(ctx context.Context, img image.Image) (string, error) {
	pngData, err := imaging.EncodePNG(img)
	if err != nil {
		return "", err
	}
	return editorial.ExtractPageText(ctx, e.client, pngData)
}
