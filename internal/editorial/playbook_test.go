package editorial

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redpenlabs/teardown/internal/config"
)

func sampleVerdict() *Verdict {
	return &Verdict{
		PrimaryStory:       "A builder with real shipped work",
		ActualSignal:       "An undifferentiated title list",
		CoreGap:            "Proof exists but the story is missing",
		Consequence:        "Readers scroll past without registering a single project",
		OneSentenceVerdict: "Tells me what you did, not why it matters.",
	}
}

const cleanPlaybookJSON = `{
	"editorial_verdict": "Tells me what you did, not why it matters.",
	"why_it_fails": [
		"The headline repeats the job title already visible above it.",
		"Every experience entry lists duties instead of outcomes.",
		"Nothing on the page says who this work is for."
	],
	"the_fix": "Shift from listing roles to narrating one outcome per role.",
	"before_after": {
		"headline": {"before": "Operations Manager", "after": "I cut fulfillment time in half for 40 stores"},
		"paragraph": {"before": "Responsible for logistics.", "after": "Rebuilt the delivery routing that saved 6 hours a day."}
	},
	"reusable_principle": "If someone reads one line, they should leave with one number."
}`

func TestPlaybookGenerate_Valid(t *testing.T) {
	client := &fakeClient{responses: []string{cleanPlaybookJSON}}
	engine := NewPlaybookEngine(client, config.Default().Generation)

	p, err := engine.Generate(context.Background(), sampleVerdict(), "Operations Manager. Responsible for logistics.",
		[]string{"Matches: Tells me what you did"}, "profile")

	require.NoError(t, err)
	assert.Len(t, p.WhyItFails, 3)
	assert.Contains(t, p.TheFix, "Shift from")
	assert.Equal(t, 1, client.calls)
}

func TestPlaybookGenerate_RestoresLockedVerdict(t *testing.T) {
	missing := `{
		"why_it_fails": ["The headline says nothing concrete."],
		"the_fix": "Shift from titles to outcomes.",
		"before_after": {"headline": {"before": "a", "after": "b"}},
		"reusable_principle": "Lead with the number."
	}`
	client := &fakeClient{responses: []string{missing}}
	engine := NewPlaybookEngine(client, config.Default().Generation)

	p, err := engine.Generate(context.Background(), sampleVerdict(), "text", nil, "post")

	require.NoError(t, err)
	assert.Equal(t, sampleVerdict().OneSentenceVerdict, p.EditorialVerdict)
}

func TestPlaybookGenerate_QualityFailure(t *testing.T) {
	jargon := `{
		"editorial_verdict": "Fine.",
		"why_it_fails": ["You should lean into your value proposition more."],
		"the_fix": "Consider adding more keywords.",
		"before_after": {},
		"reusable_principle": "Follow best practice."
	}`
	client := &fakeClient{responses: []string{jargon}}
	engine := NewPlaybookEngine(client, config.Default().Generation)

	p, err := engine.Generate(context.Background(), sampleVerdict(), "text", nil, "profile")

	require.Nil(t, p)
	var qe *QualityError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "playbook", qe.Stage)
	assert.Equal(t, 3, client.calls)
}

func TestValidatePlaybook_BulletBudget(t *testing.T) {
	engine := NewPlaybookEngine(nil, config.Default().Generation)

	p := Playbook{
		EditorialVerdict:  "v",
		WhyItFails:        []string{"one", "two", "three", "four"},
		TheFix:            "Shift from a to b.",
		ReusablePrinciple: "p",
	}
	issues := engine.validate(&p)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "max 3")

	p.WhyItFails = nil
	issues = engine.validate(&p)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "empty")
}
