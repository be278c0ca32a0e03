// Package imaging loads page screenshots for the annotation pipeline.
//
// It provides a thread-safe decoded-image cache so that a page read for
// OCR is not decoded again for rendering, plus PNG re-encoding for the
// vision text-extraction path.
//
// # Coordinate System
//
// All pixel coordinates downstream of this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// # Thread Safety
//
// PageCache is safe for concurrent use; batch items sharing one cache
// may load pages from multiple goroutines.
package imaging
