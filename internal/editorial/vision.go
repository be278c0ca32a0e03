package editorial

import (
	"context"
	"strings"

	"github.com/redpenlabs/teardown/internal/llm"
)

const pageTextPrompt = `Extract ALL visible text from this page screenshot.

Return the text exactly as it appears, preserving structure:
- Separate sections with blank lines
- Preserve hierarchy (headings vs body text)
- Include all visible text: names, titles, descriptions, dates, numbers

Return ONLY the extracted text, nothing else.`

// ExtractPageText reads the visible text out of a screenshot via the
// vision model. This is the OCR-fallback path used when no scraped
// source text is available for an item.
func ExtractPageText(ctx context.Context, client llm.Client, pngData []byte) (string, error) {
	text, err := client.DescribeImage(ctx, pageTextPrompt, pngData)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
