package ocr

import (
	"errors"
	"image"
	"testing"

	"github.com/otiai10/gosseract/v2"

	"github.com/redpenlabs/teardown/internal/config"
)

func box(word string, x1, y1, x2, y2 int, conf float64) gosseract.BoundingBox {
	return gosseract.BoundingBox{
		Box:        image.Rect(x1, y1, x2, y2),
		Word:       word,
		Confidence: conf,
	}
}

func TestRegionsFromBoxes(t *testing.T) {
	boxes := []gosseract.BoundingBox{
		box("Mesa", 100, 40, 160, 70, 95),
		box("School", 170, 40, 300, 70, 93),
		box("", 10, 10, 50, 30, 80),           // empty word
		box("   ", 10, 10, 50, 30, 80),        // whitespace only
		box("ghost", 200, 200, 200, 230, 90),  // zero-width box
		box("ghost2", 200, 200, 260, 200, 90), // zero-height box
	}

	regions := regionsFromBoxes(boxes, 0)

	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}
	if regions[0].Text != "Mesa" || regions[1].Text != "School" {
		t.Errorf("unexpected texts: %q, %q", regions[0].Text, regions[1].Text)
	}
	for _, r := range regions {
		if r.Bounds.Area() <= 0 {
			t.Errorf("region %q has non-positive area", r.Text)
		}
		if r.Confidence < 0 || r.Confidence > 100 {
			t.Errorf("region %q confidence %f outside [0,100]", r.Text, r.Confidence)
		}
	}
}

func TestRegionsFromBoxes_MinConfidence(t *testing.T) {
	boxes := []gosseract.BoundingBox{
		box("keep", 0, 0, 50, 20, 90),
		box("drop", 0, 30, 50, 50, 35),
	}

	regions := regionsFromBoxes(boxes, 50)

	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	if regions[0].Text != "keep" {
		t.Errorf("expected %q to survive, got %q", "keep", regions[0].Text)
	}
}

func TestRegionsFromBoxes_TrimsText(t *testing.T) {
	regions := regionsFromBoxes([]gosseract.BoundingBox{
		box(" padded ", 0, 0, 50, 20, 90),
	}, 0)

	if len(regions) != 1 || regions[0].Text != "padded" {
		t.Fatalf("expected trimmed %q, got %+v", "padded", regions)
	}
}

func TestExtract_MissingFile(t *testing.T) {
	e := NewExtractor(config.Default().OCR)

	_, err := e.Extract("/nonexistent/screenshot.png")
	if err == nil {
		t.Fatal("expected error for missing image")
	}

	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected *InputError, got %T: %v", err, err)
	}
}

func TestBoundsUnion(t *testing.T) {
	a := Bounds{X1: 100, Y1: 40, X2: 160, Y2: 70}
	b := Bounds{X1: 170, Y1: 38, X2: 300, Y2: 72}

	u := a.Union(b)

	want := Bounds{X1: 100, Y1: 38, X2: 300, Y2: 72}
	if u != want {
		t.Errorf("Union: got %+v, want %+v", u, want)
	}
}
