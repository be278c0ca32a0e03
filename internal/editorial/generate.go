package editorial

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redpenlabs/teardown/internal/llm"
)

// InputError reports source material the generators cannot work with,
// such as empty source text. Fatal for the item, never retried.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("unusable generation input: %s", e.Reason)
}

// QualityError reports that no candidate passed validation within the
// retry budget. It carries the last rejected candidate and the rules it
// violated so callers can see exactly what the gate refused.
type QualityError struct {
	Stage         string
	Attempts      int
	LastCandidate string
	Violations    []string
}

func (e *QualityError) Error() string {
	return fmt.Sprintf("%s generation failed quality gate after %d attempts: %s",
		e.Stage, e.Attempts, strings.Join(e.Violations, "; "))
}

// generate runs the quality-gated generation loop shared by the verdict
// and playbook engines: call the model, parse, validate, retry up to
// maxAttempts. A parse failure counts as a rejected attempt. Transport
// errors propagate immediately; retry exists only for rejected output.
func generate[T any](ctx context.Context, client llm.Client, stage string,
	maxAttempts int, systemPrompt, userPrompt string, validate func(*T) []string) (*T, error) {

	var lastRaw string
	var lastViolations []string

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := client.Complete(ctx, systemPrompt, userPrompt)
		if err != nil {
			return nil, fmt.Errorf("%s generation call failed: %w", stage, err)
		}

		candidate := new(T)
		if err := parseModelJSON(raw, candidate); err != nil {
			lastRaw = raw
			lastViolations = []string{fmt.Sprintf("response is not valid JSON: %v", err)}
			continue
		}

		if issues := validate(candidate); len(issues) > 0 {
			lastRaw = raw
			lastViolations = issues
			continue
		}

		return candidate, nil
	}

	return nil, &QualityError{
		Stage:         stage,
		Attempts:      maxAttempts,
		LastCandidate: lastRaw,
		Violations:    lastViolations,
	}
}

// parseModelJSON decodes a model response into v, tolerating markdown
// code fences and prose around the JSON object.
func parseModelJSON(raw string, v any) error {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimPrefix(text, "json")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
		text = strings.TrimSpace(text)
	}

	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	// Fall back to the outermost brace pair.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object found")
	}
	return json.Unmarshal([]byte(text[start:end+1]), v)
}

// containsDenylisted returns the denylisted phrases appearing in any of
// the given strings, case-insensitive substring match.
func containsDenylisted(denylist []string, fields ...string) []string {
	joined := strings.ToLower(strings.Join(fields, " "))
	var found []string
	for _, phrase := range denylist {
		if strings.Contains(joined, strings.ToLower(phrase)) {
			found = append(found, phrase)
		}
	}
	return found
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
