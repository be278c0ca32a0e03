package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"
	"testing"
)

// writeTestPage writes a solid-color PNG under t.TempDir and returns
// its path.
func writeTestPage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	f, err := os.CreateTemp(t.TempDir(), "page-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode page: %v", err)
	}
	return f.Name()
}

func TestPageCache_Load(t *testing.T) {
	cache := NewPageCache()
	path := writeTestPage(t, 100, 100, color.RGBA{R: 255, A: 255})

	img1, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", bounds.Dx(), bounds.Dy())
	}

	img2, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return the cached page")
	}
}

func TestPageCache_Load_NonExistent(t *testing.T) {
	cache := NewPageCache()
	if _, err := cache.Load("/nonexistent/page.png"); err == nil {
		t.Error("Load should fail for a non-existent file")
	}
}

func TestPageCache_Load_InvalidImage(t *testing.T) {
	cache := NewPageCache()

	f, err := os.CreateTemp(t.TempDir(), "invalid-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	f.WriteString("not an image")
	f.Close()

	if _, err := cache.Load(f.Name()); err == nil {
		t.Error("Load should fail for invalid image data")
	}
}

func TestPageCache_Evict(t *testing.T) {
	cache := NewPageCache()
	path := writeTestPage(t, 50, 50, color.RGBA{B: 255, A: 255})

	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cache.Evict(path)

	cache.mu.RLock()
	_, exists := cache.pages[path]
	cache.mu.RUnlock()
	if exists {
		t.Error("Evict did not remove the page from the cache")
	}

	// Unknown paths must not panic.
	cache.Evict("/nonexistent/page.png")
}

func TestPageCache_Clear(t *testing.T) {
	cache := NewPageCache()
	path := writeTestPage(t, 50, 50, color.RGBA{G: 255, A: 255})

	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cache.Clear()

	cache.mu.RLock()
	count := len(cache.pages)
	cache.mu.RUnlock()
	if count != 0 {
		t.Errorf("Clear did not empty the cache: %d pages remain", count)
	}
}

func TestPageCache_ConcurrentAccess(t *testing.T) {
	cache := NewPageCache()
	path := writeTestPage(t, 50, 50, color.RGBA{R: 128, G: 128, B: 128, A: 255})

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestEncodePNG_RoundTrip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x * 12), G: uint8(y * 25), A: 255})
		}
	}

	data, err := EncodePNG(src)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("EncodePNG produced undecodable bytes: %v", err)
	}
	if decoded.Bounds().Dx() != 20 || decoded.Bounds().Dy() != 10 {
		t.Errorf("round trip changed dimensions: got %dx%d", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestDimensions(t *testing.T) {
	cache := NewPageCache()
	path := writeTestPage(t, 300, 200, color.RGBA{R: 100, G: 100, B: 100, A: 255})

	w, h, err := cache.Dimensions(path)
	if err != nil {
		t.Fatalf("Dimensions failed: %v", err)
	}
	if w != 300 || h != 200 {
		t.Errorf("got %dx%d, want 300x200", w, h)
	}

	if _, _, err := cache.Dimensions("/nonexistent/page.png"); err == nil {
		t.Error("Dimensions should fail for a non-existent file")
	}
}
