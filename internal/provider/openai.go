package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"go.uber.org/zap"

	"github.com/kennyg/lore/internal/research"
)

const (
	defaultOpenAIModel = "gpt-5-mini"

	openAIEventOutputTextDelta = "response.output_text.delta"
	openAIEventCompleted       = "response.completed"
	openAIEventFailed          = "response.failed"
	openAIEventError           = "error"
)

// OpenAIConfig configures the OpenAI Responses backend
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// MaxRetries nil keeps the SDK default
	MaxRetries *int
}

// OpenAI researches topics with the OpenAI Responses streaming API
type OpenAI struct {
	responses openAIResponsesClient
	model     string
	logger    *zap.Logger
}

var _ research.Researcher = (*OpenAI)(nil)

type openAIResponsesClient interface {
	NewStreaming(ctx context.Context, body responses.ResponseNewParams, opts ...option.RequestOption) openAIResponseStream
}

type openAIResponseStream interface {
	Next() bool
	Current() responses.ResponseStreamEventUnion
	Err() error
	Close() error
}

type openAIResponseServiceAdapter struct {
	service responses.ResponseService
}

func (a openAIResponseServiceAdapter) NewStreaming(
	ctx context.Context,
	body responses.ResponseNewParams,
	opts ...option.RequestOption,
) openAIResponseStream {
	return a.service.NewStreaming(ctx, body, opts...)
}

// NewOpenAI validates cfg and builds the backend
func NewOpenAI(cfg OpenAIConfig, logger *zap.Logger) (*OpenAI, error) {
	normalized, err := normalizeOpenAIConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("new openai provider: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	options := make([]option.RequestOption, 0, 3)
	options = append(options, option.WithAPIKey(normalized.APIKey))
	if normalized.BaseURL != "" {
		options = append(options, option.WithBaseURL(normalized.BaseURL))
	}
	if normalized.MaxRetries != nil {
		options = append(options, option.WithMaxRetries(*normalized.MaxRetries))
	}

	client := openai.NewClient(options...)

	return &OpenAI{
		responses: openAIResponseServiceAdapter{service: client.Responses},
		model:     normalized.Model,
		logger:    logger,
	}, nil
}

// Name implements research.Researcher
func (p *OpenAI) Name() string { return NameOpenAI }

// Research streams one response and returns the accumulated text
func (p *OpenAI) Research(ctx context.Context, req research.Request) (*research.Findings, error) {
	params := responses.ResponseNewParams{
		Model: p.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(systemPrompt, responses.EasyInputMessageRoleSystem),
				responses.ResponseInputItemParamOfMessage(userPrompt(req), responses.EasyInputMessageRoleUser),
			},
		},
	}

	stream := p.responses.NewStreaming(ctx, params)
	if stream == nil {
		return nil, fmt.Errorf("openai research: stream is nil")
	}
	defer stream.Close()

	var text strings.Builder
	completed := false
	for !completed && stream.Next() {
		event := stream.Current()
		switch strings.TrimSpace(event.Type) {
		case openAIEventOutputTextDelta:
			text.WriteString(event.Delta)
		case openAIEventCompleted:
			completed = true
		case openAIEventFailed:
			status := strings.TrimSpace(string(event.Response.Status))
			if status == "" {
				status = "unknown"
			}
			return nil, fmt.Errorf("openai response failed: status=%s", status)
		case openAIEventError:
			message := strings.TrimSpace(event.Message)
			if code := strings.TrimSpace(event.Code); code != "" {
				return nil, fmt.Errorf("openai stream error %s: %s", code, message)
			}
			return nil, fmt.Errorf("openai stream error: %s", message)
		default:
			// Keep non-text events forward-compatible.
		}
	}

	if err := stream.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("openai stream context: %w", ctxErr)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("openai stream canceled: %w", err)
		}
		return nil, fmt.Errorf("openai stream next: %w", err)
	}
	if !completed {
		return nil, fmt.Errorf("openai stream ended before %s", openAIEventCompleted)
	}

	p.logger.Debug("openai response completed",
		zap.String("slug", req.Slug),
		zap.String("model", p.model),
		zap.Int("chars", text.Len()))
	return findingsFromMarkdown(text.String()), nil
}

func normalizeOpenAIConfig(cfg OpenAIConfig) (OpenAIConfig, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)

	if cfg.APIKey == "" {
		return OpenAIConfig{}, fmt.Errorf("missing api_key")
	}
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return OpenAIConfig{}, err
	}
	if cfg.MaxRetries != nil && *cfg.MaxRetries < 0 {
		return OpenAIConfig{}, fmt.Errorf("max_retries must be >= 0")
	}
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}

	return cfg, nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse base_url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("parse base_url: must include scheme and host")
	}
	return nil
}
