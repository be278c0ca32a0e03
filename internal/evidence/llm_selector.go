package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redpenlabs/teardown/internal/config"
	"github.com/redpenlabs/teardown/internal/editorial"
	"github.com/redpenlabs/teardown/internal/llm"
	"github.com/redpenlabs/teardown/internal/regions"
)

// LLMSelector asks the language model which numbered lines best prove
// the verdict, then repairs the returned indices deterministically.
type LLMSelector struct {
	cfg    config.EvidenceConfig
	client llm.Client
}

// NewLLMSelector creates the model-backed selector.
func NewLLMSelector(cfg config.EvidenceConfig, client llm.Client) *LLMSelector {
	return &LLMSelector{cfg: cfg, client: client}
}

// Select presents the lines to the model and returns the matched
// evidence. A transport or parse failure is a *MatchError; an empty
// line list is an empty result.
func (s *LLMSelector) Select(ctx context.Context, verdict *editorial.Verdict, lines []regions.FilteredLine) ([]Evidence, error) {
	if len(lines) == 0 {
		return []Evidence{}, nil
	}

	candidates := lines
	if len(candidates) > s.cfg.MaxCandidates {
		candidates = candidates[:s.cfg.MaxCandidates]
	}

	k := s.cfg.MaxEvidence
	if k > len(candidates) {
		k = len(candidates)
	}

	raw, err := s.client.Complete(ctx,
		"You select text elements that prove editorial verdicts. Return only JSON.",
		s.buildPrompt(verdict, candidates, k))
	if err != nil {
		return nil, &MatchError{Err: err}
	}

	proposed, err := parseSelection(raw)
	if err != nil {
		return nil, &MatchError{Err: err}
	}

	selected := repairIndices(proposed, len(candidates), k)
	return build(verdict, candidates, selected), nil
}

func (s *LLMSelector) buildPrompt(verdict *editorial.Verdict, candidates []regions.FilteredLine, k int) string {
	var list strings.Builder
	for i, line := range candidates {
		fmt.Fprintf(&list, "%d. %q (y=%d)\n", i+1, line.Text, line.Bounds.Y1)
	}

	return fmt.Sprintf(`You are selecting which text elements prove an editorial verdict.

VERDICT: %q
CORE GAP: %s

Here are the text elements found in the image (with their vertical position):
%s
Select exactly %d text elements that BEST PROVE the verdict.
Choose elements that demonstrate the problem - headlines, key phrases, or sections that show why the verdict is correct.

Return ONLY valid JSON:
{"selected": [1, 5]}

Where the numbers are the element IDs from the list above.
Return raw JSON only, no explanation.`,
		verdict.OneSentenceVerdict, verdict.CoreGap, list.String(), k)
}

// parseSelection decodes the model's {"selected": [...]} response,
// tolerating markdown fences.
func parseSelection(raw string) ([]int, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimPrefix(text, "json")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
		text = strings.TrimSpace(text)
	}

	var result struct {
		Selected []int `json:"selected"`
	}
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("unparseable selection response: %w", err)
	}
	return result.Selected, nil
}

// repairIndices converts 1-based proposals into valid unique 0-based
// indices. Out-of-range proposals are dropped; if fewer than k survive,
// the next unselected lines in top-to-bottom order fill the gap, so the
// result is never empty while lines exist.
func repairIndices(proposed []int, lineCount, k int) []int {
	taken := make(map[int]bool, k)
	selected := make([]int, 0, k)

	for _, p := range proposed {
		if len(selected) == k {
			break
		}
		idx := p - 1
		if idx < 0 || idx >= lineCount || taken[idx] {
			continue
		}
		taken[idx] = true
		selected = append(selected, idx)
	}

	for idx := 0; len(selected) < k && idx < lineCount; idx++ {
		if taken[idx] {
			continue
		}
		taken[idx] = true
		selected = append(selected, idx)
	}

	return selected
}
