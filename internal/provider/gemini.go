package provider

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kennyg/lore/internal/entry"
	"github.com/kennyg/lore/internal/research"
)

const (
	defaultGeminiModel      = "gemini-2.5-flash"
	defaultGeminiAPIVersion = "v1beta"
)

// GeminiConfig configures the Gemini backend
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// GoogleSearch grounds answers with Google Search results
	GoogleSearch bool
}

// Gemini researches topics with the Gemini streaming API
type Gemini struct {
	models       geminiModelsClient
	model        string
	googleSearch bool
	logger       *zap.Logger
}

var _ research.Researcher = (*Gemini)(nil)

type geminiModelsClient interface {
	GenerateContentStream(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) iter.Seq2[*genai.GenerateContentResponse, error]
}

// NewGemini validates cfg and builds the backend
func NewGemini(cfg GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("new gemini provider: missing api_key")
	}
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("new gemini provider: %w", err)
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: defaultGeminiAPIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("new gemini client: %w", err)
	}
	if client == nil || client.Models == nil {
		return nil, fmt.Errorf("new gemini client: models client is nil")
	}

	return &Gemini{
		models:       client.Models,
		model:        cfg.Model,
		googleSearch: cfg.GoogleSearch,
		logger:       logger,
	}, nil
}

// Name implements research.Researcher
func (p *Gemini) Name() string { return NameGemini }

// Research streams one answer and collects its text and grounding sources
func (p *Gemini) Research(ctx context.Context, req research.Request) (*research.Findings, error) {
	contents := []*genai.Content{
		{
			Role:  string(genai.RoleUser),
			Parts: []*genai.Part{{Text: userPrompt(req)}},
		},
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}
	if p.googleSearch {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	// The caller's context is the only deadline
	streamTimeout := time.Duration(0)
	config.HTTPOptions = &genai.HTTPOptions{Timeout: &streamTimeout}

	var (
		text     strings.Builder
		grounded []string
	)
	for response, err := range p.models.GenerateContentStream(ctx, p.model, contents, config) {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("gemini stream context: %w", ctxErr)
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("gemini stream canceled: %w", err)
			}
			return nil, fmt.Errorf("gemini stream next: %w", err)
		}
		if response == nil || len(response.Candidates) == 0 || response.Candidates[0] == nil {
			continue
		}

		candidate := response.Candidates[0]
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part == nil || part.Text == "" || part.Thought {
					continue
				}
				text.WriteString(part.Text)
			}
		}
		if gm := candidate.GroundingMetadata; gm != nil {
			for _, chunk := range gm.GroundingChunks {
				if chunk != nil && chunk.Web != nil && chunk.Web.URI != "" {
					grounded = append(grounded, chunk.Web.URI)
				}
			}
		}
	}

	findings := findingsFromMarkdown(text.String())
	findings.Sources = entry.MergeStrings(findings.Sources, grounded...)

	p.logger.Debug("gemini response completed",
		zap.String("slug", req.Slug),
		zap.String("model", p.model),
		zap.Int("chars", len(findings.Content)),
		zap.Int("grounding_sources", len(grounded)))
	return findings, nil
}
