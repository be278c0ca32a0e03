// Package evidence selects the filtered lines that best substantiate a
// verdict and returns them with their original pixel coordinates.
//
// Selection is a capability interface with one implementation per
// backend; callers pick an implementation by configuration.
package evidence

import (
	"context"
	"fmt"

	"github.com/redpenlabs/teardown/internal/config"
	"github.com/redpenlabs/teardown/internal/editorial"
	"github.com/redpenlabs/teardown/internal/llm"
	"github.com/redpenlabs/teardown/internal/ocr"
	"github.com/redpenlabs/teardown/internal/regions"
)

// Evidence is one selected region asserted to prove the verdict. The
// bounding box is copied verbatim from the matched filtered line.
type Evidence struct {
	ID               int        `json:"id"`
	EditorialCaption string     `json:"editorial_caption"`
	Bounds           ocr.Bounds `json:"bounding_box"`
}

// MatchError reports a failed or unusable evidence selection. There is
// no retry at this layer.
type MatchError struct {
	Err error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("evidence matching failed: %v", e.Err)
}

func (e *MatchError) Unwrap() error { return e.Err }

// Selector chooses up to k lines that substantiate the verdict.
//
// Contract: never more than the configured cap; min(k, |lines|) items
// whenever at least one line exists; an empty line list yields an empty
// result, not an error.
type Selector interface {
	Select(ctx context.Context, verdict *editorial.Verdict, lines []regions.FilteredLine) ([]Evidence, error)
}

// NewSelector builds the backend named by the configuration.
func NewSelector(cfg config.EvidenceConfig, client llm.Client) (Selector, error) {
	switch cfg.Backend {
	case "llm":
		return NewLLMSelector(cfg, client), nil
	case "positional":
		return NewPositionalSelector(cfg), nil
	default:
		return nil, fmt.Errorf("unknown evidence backend %q", cfg.Backend)
	}
}

// caption derives the short on-image caption from the verdict headline.
func caption(verdict *editorial.Verdict) string {
	text := verdict.OneSentenceVerdict
	if text == "" {
		return "Issue here"
	}
	const maxLen = 35
	if len(text) > maxLen {
		return text[:maxLen] + "..."
	}
	return text
}

// build assembles the final evidence list from selected line indices,
// copying each line's box verbatim and numbering in selection order.
func build(verdict *editorial.Verdict, lines []regions.FilteredLine, selected []int) []Evidence {
	items := make([]Evidence, 0, len(selected))
	for i, idx := range selected {
		items = append(items, Evidence{
			ID:               i + 1,
			EditorialCaption: caption(verdict),
			Bounds:           lines[idx].Bounds,
		})
	}
	return items
}
