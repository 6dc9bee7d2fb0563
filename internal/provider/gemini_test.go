package provider

import (
	"context"
	"errors"
	"iter"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/kennyg/lore/internal/research"
)

func TestNewGeminiConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		cfg              GeminiConfig
		wantErrSubstring string
	}{
		{
			name: "valid config",
			cfg: GeminiConfig{
				APIKey:       "gm-test",
				BaseURL:      "https://generativelanguage.googleapis.com/",
				GoogleSearch: true,
			},
		},
		{
			name:             "missing api key",
			cfg:              GeminiConfig{APIKey: "   "},
			wantErrSubstring: "missing api_key",
		},
		{
			name:             "invalid base url",
			cfg:              GeminiConfig{APIKey: "gm-test", BaseURL: "not a url"},
			wantErrSubstring: "parse base_url",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			p, err := NewGemini(testCase.cfg, nil)
			if testCase.wantErrSubstring != "" {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), testCase.wantErrSubstring) {
					t.Fatalf("error = %v, want substring %q", err, testCase.wantErrSubstring)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewGemini failed: %v", err)
			}
			if p.model != defaultGeminiModel {
				t.Fatalf("model = %q, want %q", p.model, defaultGeminiModel)
			}
		})
	}
}

func TestGeminiResearchCollectsTextAndGrounding(t *testing.T) {
	t.Parallel()

	grounded := textResponse([]*genai.Part{{Text: "Use an append-only log."}})
	grounded.Candidates[0].GroundingMetadata = &genai.GroundingMetadata{
		GroundingChunks: []*genai.GroundingChunk{
			{Web: &genai.GroundingChunkWeb{URI: "https://eventstore.com/blog"}},
			{},
		},
	}

	client := &modelsClientStub{
		stream: seqFromSteps([]streamStep{
			{response: textResponse([]*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "# Event Sourcing\n\n"},
			})},
			{response: &genai.GenerateContentResponse{}},
			{response: grounded},
		}),
	}
	p := &Gemini{models: client, model: "gemini-test", googleSearch: true}

	findings, err := p.Research(context.Background(), research.Request{Slug: "event-sourcing", Topic: "Event Sourcing"})
	if err != nil {
		t.Fatalf("Research failed: %v", err)
	}
	if findings.Content != "# Event Sourcing\n\nUse an append-only log." {
		t.Fatalf("content = %q", findings.Content)
	}
	if findings.Title != "Event Sourcing" {
		t.Fatalf("title = %q", findings.Title)
	}
	if len(findings.Sources) != 1 || findings.Sources[0] != "https://eventstore.com/blog" {
		t.Fatalf("sources = %v", findings.Sources)
	}

	if len(client.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(client.calls))
	}
	call := client.calls[0]
	if call.model != "gemini-test" {
		t.Fatalf("model = %q", call.model)
	}
	if call.config.SystemInstruction == nil {
		t.Fatal("missing system instruction")
	}
	if len(call.config.Tools) != 1 || call.config.Tools[0].GoogleSearch == nil {
		t.Fatalf("tools = %+v, want google search", call.config.Tools)
	}
}

func TestGeminiResearchWithoutSearchHasNoTools(t *testing.T) {
	t.Parallel()

	client := &modelsClientStub{stream: seqFromSteps([]streamStep{
		{response: textResponse([]*genai.Part{{Text: "ok"}})},
	})}
	p := &Gemini{models: client, model: "gemini-test"}

	if _, err := p.Research(context.Background(), research.Request{Slug: "x", Topic: "x"}); err != nil {
		t.Fatalf("Research failed: %v", err)
	}
	if len(client.calls[0].config.Tools) != 0 {
		t.Fatalf("tools = %+v, want none", client.calls[0].config.Tools)
	}
}

func TestGeminiResearchErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		wantIs    error
		wantSubst string
	}{
		{name: "deadline", err: context.DeadlineExceeded, wantIs: context.DeadlineExceeded},
		{name: "api error", err: errors.New("quota exceeded"), wantSubst: "quota exceeded"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			p := &Gemini{
				models: &modelsClientStub{stream: seqFromSteps([]streamStep{
					{response: textResponse([]*genai.Part{{Text: "partial"}})},
					{err: testCase.err},
				})},
				model: "gemini-test",
			}
			_, err := p.Research(context.Background(), research.Request{Slug: "x", Topic: "x"})
			if err == nil {
				t.Fatal("expected error")
			}
			if testCase.wantIs != nil && !errors.Is(err, testCase.wantIs) {
				t.Fatalf("error = %v, want %v", err, testCase.wantIs)
			}
			if testCase.wantSubst != "" && !strings.Contains(err.Error(), testCase.wantSubst) {
				t.Fatalf("error = %v, want substring %q", err, testCase.wantSubst)
			}
		})
	}
}

type modelsClientStub struct {
	calls  []generateCall
	stream iter.Seq2[*genai.GenerateContentResponse, error]
}

type generateCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (s *modelsClientStub) GenerateContentStream(
	_ context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) iter.Seq2[*genai.GenerateContentResponse, error] {
	s.calls = append(s.calls, generateCall{
		model:    model,
		contents: contents,
		config:   config,
	})
	if s.stream == nil {
		return emptySeq()
	}
	return s.stream
}

type streamStep struct {
	response *genai.GenerateContentResponse
	err      error
}

func seqFromSteps(steps []streamStep) iter.Seq2[*genai.GenerateContentResponse, error] {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, step := range steps {
			if !yield(step.response, step.err) {
				return
			}
		}
	}
}

func emptySeq() iter.Seq2[*genai.GenerateContentResponse, error] {
	return func(func(*genai.GenerateContentResponse, error) bool) {}
}

func textResponse(parts []*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: parts,
				},
			},
		},
	}
}
