// Package llm provides the text-completion and vision clients the
// generation stages call. The pipeline depends only on the Client
// interface; tests substitute a scripted fake.
package llm

import "context"

// Client is the minimal interface the generation stages use to call a
// language model.
type Client interface {
	// Complete sends a system + user prompt pair and returns the raw
	// model text. The model may be asked for JSON via the prompt; the
	// caller owns parsing and validation.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// DescribeImage sends a prompt together with PNG image bytes to a
	// vision-capable model and returns the raw text response. Used for
	// the OCR-fallback path when no scraped source text exists.
	DescribeImage(ctx context.Context, prompt string, pngData []byte) (string, error)
}
