package explain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FlowAdvisor/internal/domain"
)

type fakeCompleter struct {
	text string
	err  error
	last domain.CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	f.last = req
	return domain.Completion{Text: f.text}, f.err
}

func TestExplain(t *testing.T) {
	t.Parallel()

	hours := 0.5
	hr := 95.0
	task := domain.NewTask("<b>Reply</b> to email", nil, &hours, "simple")
	fake := &fakeCompleter{text: "  Small win first. Open your inbox for 10 minutes.  "}

	text, err := New(fake, Options{}).Explain(context.Background(), task, domain.UserState{Emotion: "anxious", HeartRateBPM: &hr})
	require.NoError(t, err)
	assert.Equal(t, "Small win first. Open your inbox for 10 minutes.", text)

	assert.Equal(t, DefaultModel, fake.last.Model)
	assert.Equal(t, DefaultTemperature, fake.last.Temperature)
	require.NotNil(t, fake.last.MaxTokens)
	assert.Equal(t, DefaultMaxTokens, *fake.last.MaxTokens)
	assert.Nil(t, fake.last.Seed)

	require.Len(t, fake.last.Messages, 2)
	assert.Contains(t, fake.last.Messages[0].Content, "1-3 sentences")
	user := fake.last.Messages[1].Content
	assert.Contains(t, user, "CurrentEmotion: anxious")
	assert.Contains(t, user, "HeartRateBPM: 95")
	assert.Contains(t, user, `"name": "Reply to email"`)
	assert.Contains(t, user, `"deadline": "none"`)
	assert.Contains(t, user, `"difficulty": "easy"`)
}

func TestExplainErrors(t *testing.T) {
	t.Parallel()

	task := domain.NewTask("x", nil, nil, "")

	_, err := New(&fakeCompleter{text: "   "}, Options{}).Explain(context.Background(), task, domain.UserState{})
	assert.ErrorIs(t, err, domain.ErrEmptyCompletion)

	boom := errors.New("boom")
	_, err = New(&fakeCompleter{err: boom}, Options{}).Explain(context.Background(), task, domain.UserState{})
	assert.ErrorIs(t, err, boom)

	_, err = New(nil, Options{}).Explain(context.Background(), task, domain.UserState{})
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}
