package evidence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redpenlabs/teardown/internal/config"
	"github.com/redpenlabs/teardown/internal/editorial"
	"github.com/redpenlabs/teardown/internal/ocr"
	"github.com/redpenlabs/teardown/internal/regions"
)

type fakeClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeClient) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeClient) DescribeImage(_ context.Context, _ string, _ []byte) (string, error) {
	return "", errors.New("not used")
}

func line(text string, x1, y1, x2, y2 int) regions.FilteredLine {
	return regions.FilteredLine{
		Text:   text,
		Bounds: ocr.Bounds{X1: x1, Y1: y1, X2: x2, Y2: y2},
	}
}

func testVerdict() *editorial.Verdict {
	return &editorial.Verdict{
		CoreGap:            "Lists achievements but no story",
		OneSentenceVerdict: "All credentials, no personality",
	}
}

func testLines() []regions.FilteredLine {
	return []regions.FilteredLine{
		line("Mesa School", 100, 40, 300, 70),
		line("Young entrepreneur", 100, 180, 500, 210),
		line("10 years of operations", 100, 260, 420, 290),
	}
}

func llmSelector(client *fakeClient) *LLMSelector {
	return NewLLMSelector(config.Default().Evidence, client)
}

func TestLLMSelect_CopiesBoxesVerbatim(t *testing.T) {
	client := &fakeClient{response: `{"selected": [1, 2]}`}
	lines := testLines()

	items, err := llmSelector(client).Select(context.Background(), testVerdict(), lines)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, lines[0].Bounds, items[0].Bounds)
	assert.Equal(t, lines[1].Bounds, items[1].Bounds)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, 2, items[1].ID)
}

func TestLLMSelect_RepairsOutOfRange(t *testing.T) {
	client := &fakeClient{response: `{"selected": [7, 2]}`}
	lines := testLines()

	items, err := llmSelector(client).Select(context.Background(), testVerdict(), lines)

	require.NoError(t, err)
	require.Len(t, items, 2, "dropping an invalid index must be backfilled")
	// Index 7 dropped; line 2 kept; filler is the first unselected line.
	assert.Equal(t, lines[1].Bounds, items[0].Bounds)
	assert.Equal(t, lines[0].Bounds, items[1].Bounds)
}

func TestLLMSelect_TruncatesExcess(t *testing.T) {
	client := &fakeClient{response: `{"selected": [3, 1, 2]}`}
	lines := testLines()

	items, err := llmSelector(client).Select(context.Background(), testVerdict(), lines)

	require.NoError(t, err)
	assert.Len(t, items, 2, "excess selections must be truncated, not sampled")
	assert.Equal(t, lines[2].Bounds, items[0].Bounds)
	assert.Equal(t, lines[0].Bounds, items[1].Bounds)
}

func TestLLMSelect_FewerLinesThanK(t *testing.T) {
	client := &fakeClient{response: `{"selected": [1]}`}
	lines := testLines()[:1]

	items, err := llmSelector(client).Select(context.Background(), testVerdict(), lines)

	require.NoError(t, err)
	assert.Len(t, items, 1, "never request more evidence than exists")
}

func TestLLMSelect_EmptyLines(t *testing.T) {
	client := &fakeClient{response: `{"selected": [1]}`}

	items, err := llmSelector(client).Select(context.Background(), testVerdict(), nil)

	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, client.calls, "no lines means no model call")
}

func TestLLMSelect_TransportError(t *testing.T) {
	transportErr := errors.New("dial tcp: timeout")
	client := &fakeClient{err: transportErr}

	_, err := llmSelector(client).Select(context.Background(), testVerdict(), testLines())

	var me *MatchError
	require.ErrorAs(t, err, &me)
	assert.ErrorIs(t, err, transportErr)
	assert.Equal(t, 1, client.calls, "no retry at this layer")
}

func TestLLMSelect_UnparseableResponse(t *testing.T) {
	client := &fakeClient{response: "I'd pick the headline, probably."}

	_, err := llmSelector(client).Select(context.Background(), testVerdict(), testLines())

	var me *MatchError
	require.ErrorAs(t, err, &me)
}

func TestLLMSelect_FencedResponse(t *testing.T) {
	client := &fakeClient{response: "```json\n{\"selected\": [2]}\n```"}
	cfg := config.Default().Evidence
	cfg.MaxEvidence = 1
	s := NewLLMSelector(cfg, client)

	items, err := s.Select(context.Background(), testVerdict(), testLines())

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, testLines()[1].Bounds, items[0].Bounds)
}

func TestLLMSelect_DuplicateProposalsDeduplicated(t *testing.T) {
	client := &fakeClient{response: `{"selected": [2, 2]}`}
	lines := testLines()

	items, err := llmSelector(client).Select(context.Background(), testVerdict(), lines)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.NotEqual(t, items[0].Bounds, items[1].Bounds)
}

func TestCaption_Truncation(t *testing.T) {
	v := &editorial.Verdict{OneSentenceVerdict: "This verdict is deliberately much longer than thirty-five characters."}
	got := caption(v)
	assert.Equal(t, 38, len(got))
	assert.True(t, len(got) <= 38)

	assert.Equal(t, "Issue here", caption(&editorial.Verdict{}))
}

func TestPositionalSelect(t *testing.T) {
	s := NewPositionalSelector(config.Default().Evidence)
	lines := []regions.FilteredLine{
		line("ok", 100, 40, 130, 70), // narrow, skipped while wide lines remain
		line("A real headline", 100, 180, 500, 210),
		line("A real paragraph", 100, 260, 420, 290),
	}

	items, err := s.Select(context.Background(), testVerdict(), lines)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, lines[1].Bounds, items[0].Bounds)
	assert.Equal(t, lines[2].Bounds, items[1].Bounds)
}

func TestPositionalSelect_AllNarrow(t *testing.T) {
	s := NewPositionalSelector(config.Default().Evidence)
	lines := []regions.FilteredLine{
		line("a", 100, 40, 130, 70),
		line("b", 100, 100, 130, 130),
	}

	items, err := s.Select(context.Background(), testVerdict(), lines)

	require.NoError(t, err)
	assert.Len(t, items, 2, "narrow lines still count when nothing else exists")
}

func TestNewSelector_Backends(t *testing.T) {
	cfg := config.Default().Evidence

	s, err := NewSelector(cfg, &fakeClient{})
	require.NoError(t, err)
	assert.IsType(t, &LLMSelector{}, s)

	cfg.Backend = "positional"
	s, err = NewSelector(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &PositionalSelector{}, s)

	cfg.Backend = "vision"
	_, err = NewSelector(cfg, nil)
	assert.Error(t, err)
}
