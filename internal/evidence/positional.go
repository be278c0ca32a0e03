package evidence

import (
	"context"

	"github.com/redpenlabs/teardown/internal/config"
	"github.com/redpenlabs/teardown/internal/editorial"
	"github.com/redpenlabs/teardown/internal/regions"
)

// minUsefulWidth skips narrow fragments when wider lines exist.
const minUsefulWidth = 50

// PositionalSelector is the deterministic backend: it takes the first k
// sufficiently wide lines in reading order. No model call, no network.
type PositionalSelector struct {
	cfg config.EvidenceConfig
}

// NewPositionalSelector creates the deterministic selector.
func NewPositionalSelector(cfg config.EvidenceConfig) *PositionalSelector {
	return &PositionalSelector{cfg: cfg}
}

// Select returns the first min(k, |lines|) lines, preferring lines at
// least minUsefulWidth wide when enough of them exist.
func (s *PositionalSelector) Select(_ context.Context, verdict *editorial.Verdict, lines []regions.FilteredLine) ([]Evidence, error) {
	if len(lines) == 0 {
		return []Evidence{}, nil
	}

	k := s.cfg.MaxEvidence
	if k > len(lines) {
		k = len(lines)
	}

	selected := make([]int, 0, k)
	for idx, line := range lines {
		if len(selected) == k {
			break
		}
		if line.Bounds.Width() >= minUsefulWidth {
			selected = append(selected, idx)
		}
	}
	for idx := 0; len(selected) < k && idx < len(lines); idx++ {
		if lines[idx].Bounds.Width() >= minUsefulWidth {
			continue
		}
		selected = append(selected, idx)
	}

	return build(verdict, lines, selected), nil
}
