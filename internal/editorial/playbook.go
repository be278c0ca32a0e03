package editorial

import (
	"context"
	"fmt"
	"strings"

	"github.com/redpenlabs/teardown/internal/config"
	"github.com/redpenlabs/teardown/internal/llm"
)

// Rewrite is one before/after pair in a playbook.
type Rewrite struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// Playbook is the "why it fails / fix / before-after" record generated
// from an accepted verdict.
type Playbook struct {
	EditorialVerdict  string             `json:"editorial_verdict"`
	WhyItFails        []string           `json:"why_it_fails"`
	TheFix            string             `json:"the_fix"`
	BeforeAfter       map[string]Rewrite `json:"before_after"`
	ReusablePrinciple string             `json:"reusable_principle"`
}

// PlaybookEngine generates playbooks under the same quality-gate
// discipline as the verdict generator.
type PlaybookEngine struct {
	client llm.Client
	cfg    config.GenerationConfig
}

// NewPlaybookEngine creates a playbook generator.
func NewPlaybookEngine(client llm.Client, cfg config.GenerationConfig) *PlaybookEngine {
	return &PlaybookEngine{client: client, cfg: cfg}
}

// Generate produces a playbook from the accepted verdict, the source
// text (for rewrites) and the selected evidence captions (for context).
func (e *PlaybookEngine) Generate(ctx context.Context, verdict *Verdict, sourceText string,
	evidenceCaptions []string, contentType string) (*Playbook, error) {

	system := "You are a senior editor who gives blunt, actionable feedback. No hedging. No pleasantries."
	user := e.buildPrompt(verdict, sourceText, evidenceCaptions, contentType)

	playbook, err := generate[Playbook](ctx, e.client, "playbook", e.cfg.MaxAttempts, system, user,
		func(p *Playbook) []string {
			// The model sometimes omits the locked verdict; restore it
			// before validation rather than rejecting for it.
			if p.EditorialVerdict == "" {
				p.EditorialVerdict = verdict.OneSentenceVerdict
			}
			return e.validate(p)
		})
	if err != nil {
		return nil, err
	}
	return playbook, nil
}

// validate is the deterministic quality gate for playbook candidates.
func (e *PlaybookEngine) validate(p *Playbook) []string {
	var issues []string

	fields := []string{p.EditorialVerdict, p.TheFix, p.ReusablePrinciple}
	fields = append(fields, p.WhyItFails...)
	for _, rw := range p.BeforeAfter {
		fields = append(fields, rw.Before, rw.After)
	}
	for _, phrase := range containsDenylisted(e.cfg.Denylist, fields...) {
		issues = append(issues, fmt.Sprintf("contains denylisted phrase: %q", phrase))
	}

	switch n := len(p.WhyItFails); {
	case n == 0:
		issues = append(issues, "why_it_fails is empty")
	case n > 3:
		issues = append(issues, fmt.Sprintf("why_it_fails has %d bullets, max 3", n))
	}

	if strings.TrimSpace(p.TheFix) == "" {
		issues = append(issues, "the_fix is empty")
	}
	if strings.TrimSpace(p.ReusablePrinciple) == "" {
		issues = append(issues, "reusable_principle is empty")
	}

	return issues
}

func (e *PlaybookEngine) buildPrompt(verdict *Verdict, sourceText string,
	evidenceCaptions []string, contentType string) string {

	const maxSourceChars = 2000
	if len(sourceText) > maxSourceChars {
		sourceText = sourceText[:maxSourceChars]
	}

	var markers strings.Builder
	for _, caption := range evidenceCaptions {
		fmt.Fprintf(&markers, "- %s\n", caption)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are writing an editorial playbook for a %s.\n\n", contentType)
	fmt.Fprintf(&b, "LOCKED VERDICT: %q\n\n", verdict.OneSentenceVerdict)
	fmt.Fprintf(&b, `DIAGNOSIS:
- What they're trying to say: %s
- What it actually signals: %s
- Core gap: %s
- Consequence: %s

EVIDENCE MARKERS:
%s
ORIGINAL CONTENT (for rewrites):
---
%s
---

Generate a playbook with EXACTLY these sections:

A. EDITORIAL VERDICT (copy the locked verdict exactly)
B. WHY THIS FAILS (exactly 3 bullets, one sentence each, specific to this content)
C. THE FIX (ONE direction, not tips; format: "Shift from [current state] to [desired state].")
D. BEFORE -> AFTER (two rewrites using actual text: the headline and one key paragraph)
E. REUSABLE PRINCIPLE (one sentence applicable to all their content)

RULES:
- No generic advice
- Every bullet must be specific to THIS content
- The fix must be ONE direction, not a list
- Rewrites must use actual text from the original

Return as JSON:
{
    "editorial_verdict": "...",
    "why_it_fails": ["bullet1", "bullet2", "bullet3"],
    "the_fix": "...",
    "before_after": {
        "headline": {"before": "...", "after": "..."},
        "paragraph": {"before": "...", "after": "..."}
    },
    "reusable_principle": "..."
}

Return raw JSON only, no markdown.`,
		verdict.PrimaryStory, verdict.ActualSignal, verdict.CoreGap, verdict.Consequence,
		markers.String(), sourceText)
	return b.String()
}
