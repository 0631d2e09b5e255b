package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultBaseURL is OpenRouter's OpenAI-compatible API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultModel is the chat model used for question generation.
	DefaultModel = "mistralai/mistral-7b-instruct"
	// DefaultQuestionCount is how many questions the model is asked for.
	DefaultQuestionCount = 3

	systemPrompt = "You are a helpful AI hiring assistant."
)

// OpenRouterConfig configures the OpenRouter question provider.
type OpenRouterConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	QuestionCount int
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// OpenRouter generates questions through an OpenAI-compatible chat
// completions endpoint.
type OpenRouter struct {
	client  openai.Client
	model   string
	count   int
	timeout time.Duration
	logger  *slog.Logger
}

// NewOpenRouter creates a provider. SDK retries are disabled so each
// Generate call issues exactly one request.
func NewOpenRouter(cfg OpenRouterConfig, logger *slog.Logger) *OpenRouter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = DefaultQuestionCount
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/") + "/"),
		option.WithMaxRetries(0),
		option.WithHeader("X-Title", "TalentScout"),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &OpenRouter{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		count:   cfg.QuestionCount,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Prompt builds the generation instruction for a tech stack.
func Prompt(count int, techStack string) string {
	return fmt.Sprintf("Generate %d concise and challenging interview questions based on the following tech stack: %s. Keep them on point and diverse.", count, techStack)
}

// Generate implements QuestionProvider.
func (p *OpenRouter) Generate(ctx context.Context, skillDescription string) ([]string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(Prompt(p.count, skillDescription)),
		},
	})
	if err != nil {
		failure := classify(err)
		p.logger.Warn("Question generation failed",
			"model", p.model,
			"kind", failure.Kind,
			"status", failure.Status,
			"duration", time.Since(start),
			"error", err)
		return nil, failure
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, &Failure{Kind: KindPayload, Err: errors.New("response has no choices")}
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		p.logger.Warn("Question generation returned no content", "model", p.model, "duration", time.Since(start))
		return nil, &Failure{Kind: KindPayload, Err: errors.New("response message has no content")}
	}

	questions := ParseQuestions(content)
	p.logger.Info("Generated technical questions",
		"model", p.model,
		"count", len(questions),
		"duration", time.Since(start))
	return questions, nil
}

func classify(err error) *Failure {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &Failure{Kind: KindStatus, Status: apiErr.StatusCode, Err: err}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.As(err, &urlErr) ||
		errors.As(err, &netErr) {
		return &Failure{Kind: KindTransport, Err: err}
	}
	return &Failure{Kind: KindPayload, Err: err}
}

var _ QuestionProvider = (*OpenRouter)(nil)
