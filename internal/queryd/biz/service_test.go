package biz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel1441/ai-rag-project-sub000/internal/model"
	"github.com/ariel1441/ai-rag-project-sub000/pkg/llm"
	searchopts "github.com/ariel1441/ai-rag-project-sub000/pkg/options/search"
	"github.com/ariel1441/ai-rag-project-sub000/pkg/pool"
)

// blockingChat pretends to be a slow generative backend: it honors
// context cancellation and otherwise answers after delay.
type blockingChat struct {
	delay time.Duration
}

func (c *blockingChat) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return "", nil
}

func (c *blockingChat) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	select {
	case <-time.After(c.delay):
		return prompt + " תשובה מסונתזת לבדיקה", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *blockingChat) Name() string { return "blocking" }

func newTestService(t *testing.T, chat llm.ChatProvider, synthesisTimeout time.Duration) *Service {
	t.Helper()

	s := seedRetrievalStore(t)
	retriever := NewRetriever(s, &stubEmbedder{fallback: []float32{1, 0, 0}}, searchopts.NewOptions())

	var synthesizer *Synthesizer
	var synthesisPool *pool.Pool
	if chat != nil {
		synthesizer = NewSynthesizer(chat, nil)
		var err error
		synthesisPool, err = pool.NewPool("synthesis-test", pool.SynthesisPool, pool.SynthesisPoolConfig())
		require.NoError(t, err)
		t.Cleanup(synthesisPool.Release)
	}

	cfg := DefaultServiceConfig()
	cfg.SynthesisTimeout = synthesisTimeout
	return NewService(NewParser(nil), retriever, synthesizer, nil, s, synthesisPool, cfg)
}

func TestService_SearchOnlySkipsSynthesis(t *testing.T) {
	svc := newTestService(t, &blockingChat{delay: time.Millisecond}, time.Second)

	resp, err := svc.Query(context.Background(), "הבקשות של דוד", ModeSearchOnly, 10)
	require.NoError(t, err)
	assert.Nil(t, resp.Answer)
	assert.False(t, resp.Degraded)
	assert.NotEmpty(t, resp.Matches)
	assert.Equal(t, model.IntentPerson, resp.Intent)
}

func TestService_RetrievalOnlyAlias(t *testing.T) {
	svc := newTestService(t, &blockingChat{delay: time.Millisecond}, time.Second)

	resp, err := svc.Query(context.Background(), "הבקשות של דוד", ModeRetrievalOnly, 10)
	require.NoError(t, err)
	assert.Nil(t, resp.Answer)
	assert.NotEmpty(t, resp.Matches)
}

func TestService_FullAnswer(t *testing.T) {
	svc := newTestService(t, &blockingChat{delay: time.Millisecond}, 5*time.Second)

	resp, err := svc.Query(context.Background(), "הבקשות של דוד", ModeFullAnswer, 10)
	require.NoError(t, err)
	require.NotNil(t, resp.Answer)
	assert.Contains(t, *resp.Answer, "תשובה מסונתזת")
	assert.False(t, resp.Degraded)
	assert.NotEmpty(t, resp.Matches)
	assert.GreaterOrEqual(t, resp.TotalCount, len(resp.Matches))
}

func TestService_SynthesisTimeoutDegrades(t *testing.T) {
	svc := newTestService(t, &blockingChat{delay: 10 * time.Second}, 50*time.Millisecond)

	resp, err := svc.Query(context.Background(), "הבקשות של דוד", ModeFullAnswer, 10)
	require.NoError(t, err, "synthesis timeout must not surface as an error")
	assert.Nil(t, resp.Answer)
	assert.True(t, resp.Degraded)
	assert.NotEmpty(t, resp.Matches, "matches stay populated on degrade")
}

func TestService_NoSynthesizerConfigured(t *testing.T) {
	svc := newTestService(t, nil, time.Second)

	resp, err := svc.Query(context.Background(), "הבקשות של דוד", ModeFullAnswer, 10)
	require.NoError(t, err)
	assert.Nil(t, resp.Answer)
	assert.False(t, resp.Degraded)
}

func TestService_AnswerIntentSynthesizesInDefaultMode(t *testing.T) {
	svc := newTestService(t, &blockingChat{delay: time.Millisecond}, 5*time.Second)

	resp, err := svc.Query(context.Background(), "למה הבקשה של דוד מעוכבת", "", 10)
	require.NoError(t, err)
	assert.Equal(t, model.IntentAnswerRetrieval, resp.Intent)
	require.NotNil(t, resp.Answer)
}

func TestService_RetrievalFailurePropagates(t *testing.T) {
	retriever := NewRetriever(failingStore{}, &stubEmbedder{fallback: []float32{1, 0, 0}}, searchopts.NewOptions())
	svc := NewService(NewParser(nil), retriever, nil, nil, failingStore{}, nil, nil)

	_, err := svc.Query(context.Background(), "הבקשות של דוד", ModeSearchOnly, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetrievalUnavailable)
}

func TestService_Stats(t *testing.T) {
	svc := newTestService(t, &blockingChat{delay: time.Millisecond}, time.Second)

	_, err := svc.Query(context.Background(), "הבקשות של דוד", ModeSearchOnly, 10)
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Contains(t, stats, "metrics")
	assert.Contains(t, stats, "index")
	index := stats["index"].(map[string]any)
	assert.Equal(t, int64(4), index["chunk_count"])
}

func TestMode_Valid(t *testing.T) {
	assert.True(t, Mode("").Valid())
	assert.True(t, ModeSearchOnly.Valid())
	assert.True(t, ModeRetrievalOnly.Valid())
	assert.True(t, ModeFullAnswer.Valid())
	assert.False(t, Mode("everything").Valid())
}
