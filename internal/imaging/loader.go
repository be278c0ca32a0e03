package imaging

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/disintegration/imaging"
)

// PageCache provides thread-safe caching of decoded page screenshots.
//
// A teardown item reads the same page twice, once for OCR and once for
// rendering; the cache makes the second read free. Images are keyed by
// the exact path string passed to Load.
//
// Cached pages remain in memory until Evict or Clear. A batch run over
// many large screenshots should evict each page once its item finishes.
type PageCache struct {
	mu    sync.RWMutex
	pages map[string]image.Image
}

// NewPageCache creates an empty cache ready for concurrent use.
func NewPageCache() *PageCache {
	return &PageCache{pages: make(map[string]image.Image)}
}

// Load returns the decoded page at path, reading from disk on the first
// call and from the cache afterwards. PNG, JPEG and GIF are accepted.
func (c *PageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.pages[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}

	c.mu.Lock()
	c.pages[path] = img
	c.mu.Unlock()

	return img, nil
}

// Evict removes a single page from the cache. Unknown paths are a no-op.
func (c *PageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.pages, path)
	c.mu.Unlock()
}

// Clear drops every cached page.
func (c *PageCache) Clear() {
	c.mu.Lock()
	c.pages = make(map[string]image.Image)
	c.mu.Unlock()
}

// EncodePNG re-encodes a decoded page as PNG bytes, the wire format the
// vision text-extraction call expects regardless of the source format.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode page: %w", err)
	}
	return buf.Bytes(), nil
}

// Dimensions returns the width and height of the page at path, loading
// it through the cache.
func (c *PageCache) Dimensions(path string) (int, int, error) {
	img, err := c.Load(path)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}
