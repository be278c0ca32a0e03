// Package editorial forms the structured verdict and playbook records
// that drive evidence selection and rendering. Both generators share one
// quality-gated loop: model output is parsed, validated against
// deterministic phrasing/length/content rules, and regenerated up to a
// fixed attempt budget before failing hard.
package editorial

import (
	"context"
	"fmt"
	"strings"

	"github.com/redpenlabs/teardown/internal/config"
	"github.com/redpenlabs/teardown/internal/llm"
)

// Verdict is the structured editorial judgment on one piece of content.
// It is never mutated after acceptance.
type Verdict struct {
	PrimaryStory       string `json:"primary_story"`
	ActualSignal       string `json:"actual_signal"`
	CoreGap            string `json:"core_gap"`
	Consequence        string `json:"consequence"`
	OneSentenceVerdict string `json:"one_sentence_verdict"`
}

// DiagnosisEngine generates verdicts from extracted page text.
type DiagnosisEngine struct {
	client llm.Client
	cfg    config.GenerationConfig
}

// NewDiagnosisEngine creates a verdict generator.
func NewDiagnosisEngine(client llm.Client, cfg config.GenerationConfig) *DiagnosisEngine {
	return &DiagnosisEngine{client: client, cfg: cfg}
}

// Diagnose generates a verdict for the given source text.
//
// contentType is "profile" or "post"; it only shapes the prompt's
// reader perspective. Empty source text fails fast with *InputError.
// A candidate that never passes the validator within the attempt budget
// fails with *QualityError.
func (e *DiagnosisEngine) Diagnose(ctx context.Context, sourceText, contentType, extraContext string) (*Verdict, error) {
	if strings.TrimSpace(sourceText) == "" {
		return nil, &InputError{Reason: "empty source text"}
	}

	system := "You are a brutally honest editorial reviewer. No pleasantries. No hedging. Just truth."
	user := e.buildPrompt(sourceText, contentType, extraContext)

	return generate[Verdict](ctx, e.client, "verdict", e.cfg.MaxAttempts, system, user, e.validate)
}

// validate is the deterministic quality gate for verdict candidates.
// It is total: defined for every syntactically valid candidate.
func (e *DiagnosisEngine) validate(v *Verdict) []string {
	var issues []string

	for _, phrase := range containsDenylisted(e.cfg.Denylist,
		v.PrimaryStory, v.ActualSignal, v.CoreGap, v.Consequence, v.OneSentenceVerdict) {
		issues = append(issues, fmt.Sprintf("contains denylisted phrase: %q", phrase))
	}

	if n := wordCount(v.OneSentenceVerdict); n > e.cfg.MaxVerdictWords {
		issues = append(issues, fmt.Sprintf("verdict too long (%d words, max %d)", n, e.cfg.MaxVerdictWords))
	}

	verdictLower := strings.ToLower(v.OneSentenceVerdict)
	for _, weak := range e.cfg.WeakOpeners {
		if strings.HasPrefix(verdictLower, weak) {
			issues = append(issues, fmt.Sprintf("verdict starts weak: %q", weak))
		}
	}

	gapLower := strings.ToLower(v.CoreGap)
	for _, generic := range e.cfg.GenericGaps {
		if strings.Contains(gapLower, generic) {
			issues = append(issues, fmt.Sprintf("core gap is generic: %q", generic))
		}
	}

	consequenceLower := strings.ToLower(v.Consequence)
	hasCost := false
	for _, word := range e.cfg.CostWords {
		if strings.Contains(consequenceLower, word) {
			hasCost = true
			break
		}
	}
	if !hasCost {
		issues = append(issues, "consequence does not name a real cost")
	}

	return issues
}

func (e *DiagnosisEngine) buildPrompt(sourceText, contentType, extraContext string) string {
	contextDesc := "a professional profile page"
	perspective := "a recruiter, potential client, or industry peer seeing this for the first time"
	if contentType == "post" {
		contextDesc = "a social post"
		perspective = "someone scrolling their feed who has 2 seconds to decide if this is worth their time"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are diagnosing why %s fails to connect.\n\n", contextDesc)
	fmt.Fprintf(&b, "Here is the extracted text from the content:\n\n---\n%s\n---\n\n", sourceText)
	if extraContext != "" {
		fmt.Fprintf(&b, "Additional context: %s\n\n", extraContext)
	}
	fmt.Fprintf(&b, `Your task:
1. Identify what STORY this content is trying to tell
2. Identify what SIGNAL it actually sends to %s
3. Find the SINGLE BIGGEST GAP between intent and perception
4. Name the REAL COST of this gap (what does the reader's indifference cost?)
5. Deliver a ONE SENTENCE VERDICT that stings a little

RULES:
- ONE core gap only. If you see multiple issues, pick the most damaging one.
- No advice. No tips. Just diagnosis.
- No politeness. Be direct. Be blunt.
- Use specific details from the content, not generic observations.

Return ONLY valid JSON:
{
    "primary_story": "What this content is trying to say (be specific)",
    "actual_signal": "What it actually signals to a stranger (be honest)",
    "core_gap": "The single biggest mismatch (one clear statement)",
    "consequence": "What this costs - use action words like 'miss', 'lose', 'skip'",
    "one_sentence_verdict": "Blunt verdict under 20 words"
}

Return raw JSON only, no markdown.`, perspective)
	return b.String()
}
