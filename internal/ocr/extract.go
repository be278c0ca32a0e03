package ocr

import (
	"fmt"
	"os"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/redpenlabs/teardown/internal/config"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner, (X2, Y2) the bottom-right corner,
// with X1 < X2 and Y1 < Y2 for every region the extractor returns.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Width returns the horizontal extent of the box in pixels.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height returns the vertical extent of the box in pixels.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// Area returns the box area in square pixels.
func (b Bounds) Area() int { return b.Width() * b.Height() }

// Union returns the minimal box covering both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		X1: min(b.X1, other.X1),
		Y1: min(b.Y1, other.Y1),
		X2: max(b.X2, other.X2),
		Y2: max(b.Y2, other.Y2),
	}
}

// TextRegion is one recognized word with its location and confidence.
//
// Regions are immutable once created. Duplicate text across regions is
// allowed; the set carries no uniqueness constraint.
type TextRegion struct {
	// Text is the recognized content, whitespace-trimmed, never empty.
	Text string `json:"text"`

	// Confidence is the OCR confidence score, 0-100.
	Confidence float64 `json:"confidence"`

	// Bounds is the word's bounding box in image pixel space.
	Bounds Bounds `json:"bounds"`
}

// InputError reports an image the recognition engine cannot process.
// It is fatal for the pipeline run of that image.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("unusable input image %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// Extractor runs Tesseract word-level OCR over screenshot files.
type Extractor struct {
	cfg config.OCRConfig
}

// NewExtractor creates an extractor with the given OCR settings.
func NewExtractor(cfg config.OCRConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract performs OCR on an image file and returns every detected word
// with its bounding box, in the engine's native order.
//
// Contract: every returned region has Confidence in [0,100], a non-empty
// trimmed Text and a positive-area box. There is no region limit.
func (e *Extractor) Extract(imagePath string) ([]TextRegion, error) {
	if _, err := os.Stat(imagePath); err != nil {
		return nil, &InputError{Path: imagePath, Err: err}
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.cfg.Language); err != nil {
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return nil, &InputError{Path: imagePath, Err: err}
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, &InputError{Path: imagePath, Err: fmt.Errorf("OCR failed: %w", err)}
	}

	return regionsFromBoxes(boxes, e.cfg.MinConfidence), nil
}

// regionsFromBoxes converts Tesseract word boxes into TextRegions,
// dropping empty words, zero-area boxes and low-confidence results.
func regionsFromBoxes(boxes []gosseract.BoundingBox, minConfidence float64) []TextRegion {
	regions := make([]TextRegion, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		b := Bounds{
			X1: box.Box.Min.X,
			Y1: box.Box.Min.Y,
			X2: box.Box.Max.X,
			Y2: box.Box.Max.Y,
		}
		if b.Area() <= 0 {
			continue
		}
		if box.Confidence < minConfidence {
			continue
		}
		regions = append(regions, TextRegion{
			Text:       text,
			Confidence: box.Confidence,
			Bounds:     b,
		})
	}
	return regions
}
