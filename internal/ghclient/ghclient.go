// Package ghclient talks to the GitHub API for the github research provider
package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/go-github/v67/github"
	"golang.org/x/oauth2"
	"gopkg.in/yaml.v3"
)

const publicHost = "github.com"

// Client is the slice of the GitHub API lore's research and doctor commands use
type Client struct {
	gh    *github.Client
	token string
}

// New returns a client for github.com
func New() *Client {
	return NewForHost(publicHost)
}

// NewForHost returns a client for host, which may be a GitHub Enterprise
// server. The token comes from resolveToken; without one the client is
// anonymous and limited to 60 requests an hour.
func NewForHost(host string) *Client {
	host = canonicalHost(host)
	c := &Client{token: resolveToken(host)}

	var httpClient *http.Client
	if c.token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token})
		httpClient = oauth2.NewClient(context.Background(), src)
	}
	c.gh = github.NewClient(httpClient)

	if host != publicHost {
		root := "https://" + host + "/"
		if gh, err := c.gh.WithEnterpriseURLs(root, root); err == nil {
			c.gh = gh
		}
	}
	return c
}

func canonicalHost(host string) string {
	host = strings.TrimSpace(strings.ToLower(host))
	if host == "" || host == "api.github.com" {
		return publicHost
	}
	return host
}

// SetBaseURL points the client at an explicit API root such as a proxy
func (c *Client) SetBaseURL(raw string) error {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("parse base_url: must include scheme and host")
	}
	c.gh.BaseURL = u
	return nil
}

// IsAuthenticated reports whether a token was found for the host
func (c *Client) IsAuthenticated() bool {
	return c.token != ""
}

// Repo is one repository search hit
type Repo struct {
	FullName    string
	Description string
	URL         string
	Language    string
	Stars       int
	Topics      []string
	UpdatedAt   time.Time
}

// SearchRepos searches for repositories on GitHub, most starred first
func (c *Client) SearchRepos(ctx context.Context, query string, limit int) ([]Repo, error) {
	opts := &github.SearchOptions{
		Sort:  "stars",
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: limit,
		},
	}

	result, _, err := c.gh.Search.Repositories(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("search repositories %q: %w", query, err)
	}

	var repos []Repo
	for _, r := range result.Repositories {
		if r == nil {
			continue
		}
		repos = append(repos, Repo{
			FullName:    r.GetFullName(),
			Description: r.GetDescription(),
			URL:         r.GetHTMLURL(),
			Language:    r.GetLanguage(),
			Stars:       r.GetStargazersCount(),
			Topics:      r.Topics,
			UpdatedAt:   r.GetUpdatedAt().Time,
		})
		if limit > 0 && len(repos) == limit {
			break
		}
	}

	return repos, nil
}

// Readme fetches the decoded README of owner/repo
func (c *Client) Readme(ctx context.Context, fullName string) (string, error) {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" {
		return "", fmt.Errorf("invalid repository name %q", fullName)
	}

	readme, _, err := c.gh.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		return "", fmt.Errorf("readme %s: %w", fullName, err)
	}

	content, err := readme.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode readme %s: %w", fullName, err)
	}

	return content, nil
}

// tokenEnv lists the variables checked for a token, most specific first.
// The enterprise names match what the gh CLI reads.
func tokenEnv(host string) []string {
	if host == publicHost {
		return []string{"GITHUB_TOKEN", "GH_TOKEN"}
	}
	return []string{"GH_ENTERPRISE_TOKEN", "GITHUB_ENTERPRISE_TOKEN"}
}

// resolveToken checks the environment, then the gh CLI login for host
func resolveToken(host string) string {
	for _, name := range tokenEnv(host) {
		if token := os.Getenv(name); token != "" {
			return token
		}
	}
	return hostsToken(hostsFile(), host)
}

type hostEntry struct {
	OAuthToken string `yaml:"oauth_token"`
	User       string `yaml:"user"`
}

func hostsFile() string {
	if dir := os.Getenv("GH_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "hosts.yml")
	}
	return filepath.Join(xdg.ConfigHome, "gh", "hosts.yml")
}

// hostsToken reads host's oauth_token from a gh hosts.yml. Missing or
// unreadable files yield no token.
func hostsToken(path, host string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	hosts := map[string]hostEntry{}
	if err := yaml.Unmarshal(data, &hosts); err != nil {
		return ""
	}
	return hosts[host].OAuthToken
}
