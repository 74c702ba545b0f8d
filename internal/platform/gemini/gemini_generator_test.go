package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/vocab-review/internal/config"
	"github.com/phrazzld/vocab-review/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type scriptedReply struct {
	resp *genai.GenerateContentResponse
	err  error
}

// fakeModels replays replies in order and records the prompts it received.
type fakeModels struct {
	mu      sync.Mutex
	replies []scriptedReply
	prompts []string
	models  []string
}

func (f *fakeModels) GenerateContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.models = append(f.models, model)
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompts = append(f.prompts, contents[0].Parts[0].Text)
	}
	if cfg == nil || cfg.ResponseMIMEType != "application/json" {
		return nil, errors.New("expected JSON response config")
	}
	if len(f.replies) == 0 {
		return nil, errors.New("no scripted reply")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply.resp, reply.err
}

func (f *fakeModels) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.models)
}

func textReply(text string) scriptedReply {
	return scriptedReply{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}}
}

func testConfig() config.LLMConfig {
	return config.LLMConfig{
		Enabled:           true,
		GeminiAPIKey:      "test-key",
		ModelName:         "gemini-test",
		MaxRetries:        2,
		RetryDelaySeconds: 1,
		RequestsPerMinute: 60000,
		ExamplesPerWord:   2,
	}
}

func newTestGenerator(t *testing.T, cfg config.LLMConfig, replies ...scriptedReply) (*GeminiGenerator, *fakeModels) {
	t.Helper()
	fake := &fakeModels{replies: replies}
	g := newGenerator(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, fake)
	g.baseDelay = time.Millisecond
	return g, fake
}

func TestGenerateExamples_Success(t *testing.T) {
	t.Parallel()

	g, fake := newTestGenerator(t, testConfig(),
		textReply(`{"examples": ["  The meal was ephemeral. ", "", "Fame is ephemeral.", "Third one."]}`))

	examples, err := g.GenerateExamples(context.Background(), "ephemeral", "lasting a very short time")
	require.NoError(t, err)

	assert.Equal(t, []string{"The meal was ephemeral.", "Fame is ephemeral."}, examples)
	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], `"ephemeral"`)
	assert.Contains(t, fake.prompts[0], "lasting a very short time")
	assert.Contains(t, fake.prompts[0], "Write 2 short")
	assert.Equal(t, []string{"gemini-test"}, fake.models)
}

func TestGenerateExamples_JoinsTextParts(t *testing.T) {
	t.Parallel()

	reply := scriptedReply{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: `{"examples": `},
				nil,
				{Text: `["One."]}`},
			}},
		}},
	}}
	g, _ := newTestGenerator(t, testConfig(), reply)

	examples, err := g.GenerateExamples(context.Background(), "word", "meaning")
	require.NoError(t, err)
	assert.Equal(t, []string{"One."}, examples)
}

func TestGenerateExamples_EmptyTerm(t *testing.T) {
	t.Parallel()

	g, fake := newTestGenerator(t, testConfig())

	_, err := g.GenerateExamples(context.Background(), "   ", "meaning")
	assert.ErrorIs(t, err, generation.ErrEmptyTerm)
	assert.Zero(t, fake.calls())
}

func TestGenerateExamples_RetriesTransientErrors(t *testing.T) {
	t.Parallel()

	g, fake := newTestGenerator(t, testConfig(),
		scriptedReply{err: errors.New("503 unavailable")},
		scriptedReply{err: errors.New("503 unavailable")},
		textReply(`{"examples": ["Recovered."]}`))

	examples, err := g.GenerateExamples(context.Background(), "word", "meaning")
	require.NoError(t, err)
	assert.Equal(t, []string{"Recovered."}, examples)
	assert.Equal(t, 3, fake.calls())
}

func TestGenerateExamples_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	g, fake := newTestGenerator(t, testConfig(),
		scriptedReply{err: errors.New("boom")},
		scriptedReply{err: errors.New("boom")},
		scriptedReply{err: errors.New("boom")},
		textReply(`{"examples": ["never reached"]}`))

	_, err := g.GenerateExamples(context.Background(), "word", "meaning")
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
	assert.Equal(t, 3, fake.calls())
}

func TestGenerateExamples_PermanentErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		reply   scriptedReply
		wantErr error
	}{
		{
			name:    "nil response",
			reply:   scriptedReply{},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "no candidates",
			reply:   scriptedReply{resp: &genai.GenerateContentResponse{}},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name: "safety block",
			reply: scriptedReply{resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
			}},
			wantErr: generation.ErrContentBlocked,
		},
		{
			name: "missing content",
			reply: scriptedReply{resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{}},
			}},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "malformed json",
			reply:   textReply("Sure! Here are some examples"),
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "no usable examples",
			reply:   textReply(`{"examples": ["", "  "]}`),
			wantErr: generation.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g, fake := newTestGenerator(t, testConfig(), tt.reply, textReply(`{"examples": ["x"]}`))

			_, err := g.GenerateExamples(context.Background(), "word", "meaning")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, fake.calls(), "permanent errors must not be retried")
		})
	}
}

func TestGenerateExamples_ContextCancelled(t *testing.T) {
	t.Parallel()

	g, fake := newTestGenerator(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.GenerateExamples(ctx, "word", "meaning")
	assert.Error(t, err)
	assert.Zero(t, fake.calls())
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("missing api key", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.GeminiAPIKey = ""
		_, err := validateConfig(context.Background(), logger, cfg)
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("missing model", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.ModelName = ""
		_, err := validateConfig(context.Background(), logger, cfg)
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("defaults applied", func(t *testing.T) {
		t.Parallel()
		cfg := config.LLMConfig{
			GeminiAPIKey:      "key",
			ModelName:         "model",
			MaxRetries:        -1,
			RetryDelaySeconds: 0,
		}
		got, err := validateConfig(context.Background(), logger, cfg)
		require.NoError(t, err)
		assert.Equal(t, defaultMaxRetries, got.MaxRetries)
		assert.Equal(t, defaultRetryDelaySeconds, got.RetryDelaySeconds)
		assert.Equal(t, defaultRequestsPerMinute, got.RequestsPerMinute)
		assert.Equal(t, defaultExamplesPerWord, got.ExamplesPerWord)
	})
}

func TestNewGeminiGenerator_NilLogger(t *testing.T) {
	t.Parallel()

	_, err := NewGeminiGenerator(context.Background(), nil, testConfig())
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}
