// Package provider holds the research backends lore can be configured with.
// Each one implements research.Researcher.
package provider

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kennyg/lore/internal/research"
)

// Backend names accepted in provider.name
const (
	NameOpenAI  = "openai"
	NameGemini  = "gemini"
	NameGitHub  = "github"
	NameCommand = "command"
)

// Config selects and configures one backend
type Config struct {
	Name       string   `yaml:"name"`
	Model      string   `yaml:"model,omitempty"`
	APIKey     string   `yaml:"api_key,omitempty"`
	BaseURL    string   `yaml:"base_url,omitempty"`
	Host       string   `yaml:"host,omitempty"`
	WebSearch  bool     `yaml:"web_search,omitempty"`
	MaxRetries *int     `yaml:"max_retries,omitempty"`
	Limit      int      `yaml:"limit,omitempty"`
	Command    []string `yaml:"command,omitempty"`
}

// Names lists the supported backends
func Names() []string {
	names := []string{NameOpenAI, NameGemini, NameGitHub, NameCommand}
	sort.Strings(names)
	return names
}

// New builds the backend named by cfg.Name
func New(cfg Config, logger *zap.Logger) (research.Researcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("provider")

	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case NameOpenAI:
		if cfg.WebSearch {
			logger.Warn("web_search is ignored by the openai provider")
		}
		return NewOpenAI(OpenAIConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			MaxRetries: cfg.MaxRetries,
		}, logger)
	case NameGemini:
		return NewGemini(GeminiConfig{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			Model:        cfg.Model,
			GoogleSearch: cfg.WebSearch,
		}, logger)
	case NameGitHub:
		return NewGitHub(GitHubConfig{
			Host:    cfg.Host,
			BaseURL: cfg.BaseURL,
			Limit:   cfg.Limit,
		}, logger)
	case NameCommand:
		return NewCommand(cfg.Command, logger)
	case "":
		return nil, fmt.Errorf("no research provider configured (set provider.name to one of %s)", strings.Join(Names(), ", "))
	default:
		return nil, fmt.Errorf("unknown research provider %q (want one of %s)", cfg.Name, strings.Join(Names(), ", "))
	}
}
