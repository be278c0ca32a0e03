// Package ocr extracts text regions with pixel coordinates from page
// screenshots using Tesseract (via gosseract/v2).
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// The extractor returns word-level regions in the engine's native order.
// Region order is not meaningful; the regions package turns the raw set
// into filtered top-to-bottom lines.
//
// # Error Handling
//
// A missing, corrupt or undecodable image is reported as *InputError.
// This is fatal for the pipeline run of that image and is never retried;
// the caller must supply a different image.
package ocr
