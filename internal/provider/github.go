package provider

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kennyg/lore/internal/ghclient"
	"github.com/kennyg/lore/internal/research"
)

const (
	defaultGitHubLimit = 10
	readmeExcerptLines = 12
	maxTopicTags       = 5
)

// GitHubConfig configures the repository survey backend
type GitHubConfig struct {
	// Host selects a GitHub Enterprise host; empty means github.com
	Host string
	// BaseURL overrides the API root entirely
	BaseURL string
	// Limit is the number of repositories to include
	Limit int
}

type repoSearcher interface {
	SearchRepos(ctx context.Context, query string, limit int) ([]ghclient.Repo, error)
	Readme(ctx context.Context, fullName string) (string, error)
}

// GitHub researches a topic by surveying the most starred matching repositories.
// It needs no model API key, only an optional GitHub token.
type GitHub struct {
	client repoSearcher
	limit  int
	logger *zap.Logger
}

var _ research.Researcher = (*GitHub)(nil)

// NewGitHub builds the backend, resolving a token the same way the gh CLI does
func NewGitHub(cfg GitHubConfig, logger *zap.Logger) (*GitHub, error) {
	client := ghclient.NewForHost(cfg.Host)
	if cfg.BaseURL != "" {
		if err := client.SetBaseURL(cfg.BaseURL); err != nil {
			return nil, fmt.Errorf("new github provider: %w", err)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if !client.IsAuthenticated() {
		logger.Warn("no GitHub token found, search is rate limited")
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultGitHubLimit
	}
	return &GitHub{client: client, limit: limit, logger: logger}, nil
}

// Name implements research.Researcher
func (p *GitHub) Name() string { return NameGitHub }

// Research renders a Markdown survey of the top repositories for the topic
func (p *GitHub) Research(ctx context.Context, req research.Request) (*research.Findings, error) {
	repos, err := p.client.SearchRepos(ctx, req.Topic, p.limit)
	if err != nil {
		return nil, err
	}
	if len(repos) == 0 {
		return nil, fmt.Errorf("no repositories match %q", req.Topic)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s on GitHub\n\n", req.Topic)
	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "The %d most starred repositories matching %q.\n\n", len(repos), req.Topic)

	b.WriteString("## Repositories\n\n")
	b.WriteString("| Repository | Stars | Language | Description |\n")
	b.WriteString("|------------|------:|----------|-------------|\n")

	findings := &research.Findings{Title: req.Topic + " on GitHub"}
	topicCounts := map[string]int{}
	var topicOrder []string
	for _, r := range repos {
		lang := r.Language
		if lang == "" {
			lang = "—"
		}
		fmt.Fprintf(&b, "| [%s](%s) | %d | %s | %s |\n", r.FullName, r.URL, r.Stars, lang, tableCell(r.Description))
		if r.URL != "" {
			findings.Sources = append(findings.Sources, r.URL)
		}
		for _, t := range r.Topics {
			if topicCounts[t] == 0 {
				topicOrder = append(topicOrder, t)
			}
			topicCounts[t]++
		}
	}

	top := repos[0]
	readme, err := p.client.Readme(ctx, top.FullName)
	if err != nil {
		p.logger.Debug("skipping readme excerpt", zap.String("repo", top.FullName), zap.Error(err))
	} else if excerpt := firstLines(readme, readmeExcerptLines); excerpt != "" {
		fmt.Fprintf(&b, "\n## Top Project: %s\n\n", top.FullName)
		for _, line := range strings.Split(excerpt, "\n") {
			b.WriteString("> " + line + "\n")
		}
	}

	for _, t := range topicOrder {
		if topicCounts[t] > 1 && len(findings.Tags) < maxTopicTags {
			findings.Tags = append(findings.Tags, t)
		}
	}

	findings.Content = strings.TrimSpace(b.String())
	return findings, nil
}

func tableCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func firstLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
