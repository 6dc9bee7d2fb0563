// Package doctor checks that lore's configuration can actually be used:
// the research provider has credentials or a binary, and both tiers are writable.
package doctor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"github.com/kennyg/lore/internal/config"
	"github.com/kennyg/lore/internal/ghclient"
	"github.com/kennyg/lore/internal/provider"
	"github.com/kennyg/lore/internal/skill"
)

// RequirementType represents the kind of requirement checked
type RequirementType string

const (
	TypeCommand RequirementType = "command" // Binary must exist on PATH
	TypeSetting RequirementType = "setting" // Config value must be non-empty
	TypeDir     RequirementType = "dir"     // Directory must be writable or creatable
	TypeGitHub  RequirementType = "github"  // A GitHub token must be discoverable
	TypeFile    RequirementType = "file"    // File must exist
)

// Requirement is one thing lore needs
type Requirement struct {
	Type RequirementType `json:"type"`
	// Value is the command, setting name or path
	Value string `json:"value"`
	// Current is the configured value of a TypeSetting
	Current string `json:"-"`
	// Source names what needs it, e.g. "provider openai"
	Source string `json:"source"`
	Hint   string `json:"hint,omitempty"`
	// Optional requirements only warn when unsatisfied
	Optional bool `json:"optional,omitempty"`
}

// VerifyResult contains the result of verifying a requirement
type VerifyResult struct {
	Requirement Requirement
	Satisfied   bool
	Message     string
}

// ForConfig lists what cfg needs. The agent skill is checked under home.
func ForConfig(cfg *config.Config, home string) []Requirement {
	reqs := []Requirement{
		{Type: TypeDir, Value: cfg.CacheDir, Source: "tier-1 cache"},
		{Type: TypeDir, Value: cfg.DocsDir, Source: "tier-2 docs"},
	}

	p := cfg.Provider
	name := strings.ToLower(strings.TrimSpace(p.Name))
	source := "provider " + name
	switch name {
	case "":
		reqs = append(reqs, Requirement{
			Type:   TypeSetting,
			Value:  "provider.name",
			Source: "research",
			Hint:   "Set provider.name to one of " + strings.Join(provider.Names(), ", "),
		})
	case provider.NameOpenAI:
		reqs = append(reqs, Requirement{
			Type: TypeSetting, Value: "provider.api_key", Current: p.APIKey, Source: source,
			Hint: "Export OPENAI_API_KEY or set provider.api_key",
		})
	case provider.NameGemini:
		reqs = append(reqs, Requirement{
			Type: TypeSetting, Value: "provider.api_key", Current: p.APIKey, Source: source,
			Hint: "Export GEMINI_API_KEY (or GOOGLE_API_KEY) or set provider.api_key",
		})
	case provider.NameGitHub:
		reqs = append(reqs, Requirement{
			Type: TypeGitHub, Value: "GitHub token", Source: source, Optional: true,
			Hint: "Export GITHUB_TOKEN or run `gh auth login`; anonymous search is heavily rate limited",
		})
	case provider.NameCommand:
		if len(p.Command) == 0 {
			reqs = append(reqs, Requirement{
				Type: TypeSetting, Value: "provider.command", Source: source,
				Hint: "Set provider.command to the program and its arguments",
			})
		} else {
			reqs = append(reqs, Requirement{Type: TypeCommand, Value: p.Command[0], Source: source})
		}
	default:
		reqs = append(reqs, Requirement{
			Type: TypeSetting, Value: "provider.name", Source: "research",
			Hint: fmt.Sprintf("Unknown provider %q; use one of %s", p.Name, strings.Join(provider.Names(), ", ")),
		})
	}

	if agent := config.GetAgentConfig(cfg.Agent); agent != nil {
		reqs = append(reqs, Requirement{
			Type:     TypeFile,
			Value:    skill.TargetFor(home, *agent).Path,
			Source:   agent.DisplayName + " skill",
			Hint:     "Run `lore skill install`",
			Optional: true,
		})
	}
	return reqs
}

// Verify checks if a requirement is satisfied
func Verify(req Requirement) VerifyResult {
	result := VerifyResult{Requirement: req}

	switch req.Type {
	case TypeCommand:
		_, err := exec.LookPath(req.Value)
		result.Satisfied = err == nil
		if !result.Satisfied {
			result.Message = "Command not found: " + req.Value
		}

	case TypeSetting:
		result.Satisfied = strings.TrimSpace(req.Current) != ""
		if !result.Satisfied {
			result.Message = "Not set: " + req.Value
		}

	case TypeDir:
		result.Satisfied, result.Message = checkDir(req.Value)

	case TypeGitHub:
		result.Satisfied = ghclient.New().IsAuthenticated()
		if !result.Satisfied {
			result.Message = "No GitHub token found"
		}

	case TypeFile:
		_, err := os.Stat(req.Value)
		result.Satisfied = err == nil
		if !result.Satisfied {
			result.Message = "Missing: " + req.Value
		}

	default:
		result.Satisfied = true // Unknown types pass by default
	}

	if !result.Satisfied && req.Hint != "" {
		result.Message += "\n  " + req.Hint
	}
	return result
}

// checkDir accepts a writable directory or one that does not exist yet
func checkDir(path string) (bool, string) {
	if path == "" {
		return false, "No directory configured"
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return true, "Will be created: " + path
	}
	if err != nil {
		return false, err.Error()
	}
	if !info.IsDir() {
		return false, "Not a directory: " + path
	}

	probe, err := os.CreateTemp(path, ".lore-doctor-*")
	if err != nil {
		return false, "Not writable: " + path
	}
	probe.Close()
	_ = os.Remove(probe.Name())
	return true, ""
}

// VerifyAll checks all requirements and returns results
func VerifyAll(reqs []Requirement) []VerifyResult {
	results := make([]VerifyResult, len(reqs))
	for i, req := range reqs {
		results[i] = Verify(req)
	}
	return results
}

// HasUnsatisfied returns true if any required (non-optional) check failed
func HasUnsatisfied(results []VerifyResult) bool {
	for _, r := range results {
		if !r.Satisfied && !r.Requirement.Optional {
			return true
		}
	}
	return false
}
