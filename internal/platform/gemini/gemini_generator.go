package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"github.com/phrazzld/vocab-review/internal/config"
	"github.com/phrazzld/vocab-review/internal/generation"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const promptText = `You are helping a language learner review vocabulary.
Write {{.Count}} short, natural example sentences that use the word "{{.Term}}"
with this meaning: {{.Definition}}

Respond with JSON only, in the form {"examples": ["...", "..."]}.`

var promptTemplate = template.Must(template.New("examples").Parse(promptText))

// contentGenerator is the part of the genai client used by the generator.
// *genai.Models satisfies it.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements generation.Generator using the Gemini API.
type GeminiGenerator struct {
	logger    *slog.Logger
	config    config.LLMConfig
	models    contentGenerator
	limiter   *rate.Limiter
	baseDelay time.Duration
}

var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator validates cfg and creates a generator backed by a new
// Gemini client.
func NewGeminiGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", generation.ErrInvalidConfig)
	}

	cfg, err := validateConfig(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	logger.InfoContext(ctx, "Gemini generator initialized",
		"model", cfg.ModelName,
		"requests_per_minute", cfg.RequestsPerMinute,
		"examples_per_word", cfg.ExamplesPerWord)

	return newGenerator(logger, cfg, client.Models), nil
}

func newGenerator(logger *slog.Logger, cfg config.LLMConfig, models contentGenerator) *GeminiGenerator {
	return &GeminiGenerator{
		logger:    logger.With("component", "gemini_generator"),
		config:    cfg,
		models:    models,
		limiter:   rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
		baseDelay: time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}
}

// GenerateExamples asks the model for example sentences using term. At most
// ExamplesPerWord non-empty sentences are returned.
func (g *GeminiGenerator) GenerateExamples(ctx context.Context, term, definition string) ([]string, error) {
	prompt, err := createPrompt(term, definition, g.config.ExamplesPerWord)
	if err != nil {
		return nil, err
	}

	response, err := g.callGeminiWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	examples := make([]string, 0, g.config.ExamplesPerWord)
	for _, sentence := range response.Examples {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		examples = append(examples, sentence)
		if len(examples) == g.config.ExamplesPerWord {
			break
		}
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("%w: no examples in response", generation.ErrInvalidResponse)
	}

	g.logger.DebugContext(ctx, "Generated examples",
		"term", term,
		"count", len(examples))

	return examples, nil
}

func createPrompt(term, definition string, count int) (string, error) {
	if strings.TrimSpace(term) == "" {
		return "", generation.ErrEmptyTerm
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, promptData{
		Term:       term,
		Definition: definition,
		Count:      count,
	}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// callGeminiWithRetry calls the API up to MaxRetries+1 times. Transient
// errors are retried after base * 2^attempt * (0.5 + rand(0, 0.5)); permanent
// errors are returned immediately.
func (g *GeminiGenerator) callGeminiWithRetry(ctx context.Context, prompt string) (*exampleResponse, error) {
	maxRetries := g.config.MaxRetries

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1

		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}

		g.logger.DebugContext(ctx, "Making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		response, err := g.generate(ctx, prompt)
		if err == nil {
			return response, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, ctx.Err())
		}
		if generation.IsPermanent(err) {
			g.logger.WarnContext(ctx, "Permanent error occurred, not retrying",
				"error", err)
			return nil, err
		}

		if attempt >= maxRetries {
			g.logger.WarnContext(ctx, "Maximum retry attempts reached",
				"max_retries", maxRetries)
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				generation.ErrTransientFailure, maxRetries, err)
		}

		backoff := float64(g.baseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rand.Float64()*0.5))

		g.logger.InfoContext(ctx, "Retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			g.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// generate performs a single API call and decodes its JSON payload.
func (g *GeminiGenerator) generate(ctx context.Context, prompt string) (*exampleResponse, error) {
	resp, err := g.models.GenerateContent(ctx, g.config.ModelName, genai.Text(prompt),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	switch {
	case resp == nil:
		return nil, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	case len(resp.Candidates) == 0 || resp.Candidates[0] == nil:
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return nil, fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	case resp.Candidates[0].Content == nil:
		return nil, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	var parsed exampleResponse
	if err := json.Unmarshal([]byte(text.String()), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}
	return &parsed, nil
}
