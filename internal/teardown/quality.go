package teardown

import (
	"strings"

	"github.com/redpenlabs/teardown/internal/editorial"
)

// QualityReport is the advisory post-generation check. It never
// triggers regeneration; a failing score is recorded, not retried.
type QualityReport struct {
	// Checks maps each rule name to whether it passed.
	Checks map[string]bool `json:"checks"`

	// Score is the percentage of rules that passed.
	Score float64 `json:"score"`

	// Passed is true when Score reaches the passing threshold.
	Passed bool `json:"passed"`
}

// passingScore is the advisory threshold, in percent.
const passingScore = 70.0

// assessQuality scores an accepted verdict/playbook pair against the
// advisory rules: headline within the word cap, no denylisted phrase
// anywhere, and a fix phrased as a direction ("shift from X to Y").
func (e *Engine) assessQuality(verdict *editorial.Verdict, playbook *editorial.Playbook) *QualityReport {
	checks := map[string]bool{
		"verdict_within_word_cap": wordCount(verdict.OneSentenceVerdict) <= e.cfg.Generation.MaxVerdictWords,
		"no_denylisted_phrases":   !anyDenylisted(e.cfg.Generation.Denylist, verdict, playbook),
		"fix_is_directional":      strings.Contains(strings.ToLower(playbook.TheFix), " to "),
	}

	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	score := float64(passed) / float64(len(checks)) * 100

	return &QualityReport{
		Checks: checks,
		Score:  score,
		Passed: score >= passingScore,
	}
}

func anyDenylisted(denylist []string, verdict *editorial.Verdict, playbook *editorial.Playbook) bool {
	fields := []string{
		verdict.PrimaryStory, verdict.ActualSignal, verdict.CoreGap,
		verdict.Consequence, verdict.OneSentenceVerdict,
		playbook.EditorialVerdict, playbook.TheFix, playbook.ReusablePrinciple,
	}
	fields = append(fields, playbook.WhyItFails...)
	for _, rw := range playbook.BeforeAfter {
		fields = append(fields, rw.Before, rw.After)
	}

	for _, field := range fields {
		lower := strings.ToLower(field)
		for _, phrase := range denylist {
			if strings.Contains(lower, phrase) {
				return true
			}
		}
	}
	return false
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
