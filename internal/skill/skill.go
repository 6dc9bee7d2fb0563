// Package skill installs the agent-facing instructions that teach a coding
// agent to call lore before researching a topic itself.
//
// Claude Code, OpenCode, Gemini CLI and Amp read SKILL.md files with YAML
// frontmatter; Cursor and Windsurf read rule files.
package skill

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kennyg/lore/internal/config"
)

// Name is the directory and file stem the skill is installed under
const Name = "lore-research"

// Format is the file layout an agent expects
type Format string

const (
	// FormatSkill is <config>/skills/<name>/SKILL.md
	FormatSkill Format = "skill"
	// FormatRule is <config>/rules/<name>.md with description-only frontmatter
	FormatRule Format = "rule"
)

// Skill is the document installed for an agent
type Skill struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Version      string   `yaml:"version,omitempty"`
	AllowedTools []string `yaml:"allowed-tools,omitempty"`

	Body string `yaml:"-"`
}

// ruleFrontmatter is what rule-based agents read
type ruleFrontmatter struct {
	Description string `yaml:"description"`
	AlwaysApply bool   `yaml:"alwaysApply"`
	Version     string `yaml:"version,omitempty"`
}

// Target is where one agent's copy of the skill goes
type Target struct {
	Agent  config.AgentConfig
	Format Format
	Path   string
}

// FormatFor returns the layout agent reads
func FormatFor(agent config.Agent) Format {
	switch agent {
	case config.AgentCursor, config.AgentWindsurf:
		return FormatRule
	default:
		return FormatSkill
	}
}

// TargetFor returns the install location under home
func TargetFor(home string, agent config.AgentConfig) Target {
	format := FormatFor(agent.Name)
	base := filepath.Join(home, agent.ConfigDir)

	var path string
	switch {
	case format == FormatRule && agent.Name == config.AgentCursor:
		path = filepath.Join(base, "rules", Name+".mdc")
	case format == FormatRule:
		path = filepath.Join(base, "rules", Name+".md")
	case agent.Name == config.AgentOpenCode:
		path = filepath.Join(base, "skill", Name, "SKILL.md")
	default:
		path = filepath.Join(base, "skills", Name, "SKILL.md")
	}
	return Target{Agent: agent, Format: format, Path: path}
}

// Render serializes s for format
func (s *Skill) Render(format Format) ([]byte, error) {
	switch format {
	case FormatSkill:
		fm := *s
		return serializeFrontmatter(&fm, s.Body)
	case FormatRule:
		return serializeFrontmatter(&ruleFrontmatter{
			Description: s.Description,
			AlwaysApply: false,
			Version:     s.Version,
		}, s.Body)
	default:
		return nil, fmt.Errorf("unknown skill format %q", format)
	}
}

// Parse reads an installed skill or rule file
func Parse(content []byte) (*Skill, error) {
	s := &Skill{}
	body, err := parseFrontmatter(content, s)
	if err != nil {
		return nil, err
	}
	s.Body = body
	return s, nil
}

// Result reports what Install did
type Result int

const (
	Unchanged Result = iota
	Created
	Updated
)

func (r Result) String() string {
	switch r {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "unchanged"
	}
}

// Install writes s to t.Path. An existing file with identical content is left
// alone; a file that does not parse as a lore skill is only replaced with force.
func Install(t Target, s *Skill, force bool) (Result, error) {
	data, err := s.Render(t.Format)
	if err != nil {
		return Unchanged, err
	}

	existing, err := os.ReadFile(t.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := write(t.Path, data); err != nil {
			return Unchanged, err
		}
		return Created, nil
	case err != nil:
		return Unchanged, fmt.Errorf("read %s: %w", t.Path, err)
	}

	if bytes.Equal(existing, data) {
		return Unchanged, nil
	}
	if !force {
		installed, err := Parse(existing)
		if err != nil || !written(installed) {
			return Unchanged, fmt.Errorf("%s exists and was not written by lore (use --force)", t.Path)
		}
	}
	if err := write(t.Path, data); err != nil {
		return Unchanged, err
	}
	return Updated, nil
}

// written reports whether an installed file came from lore
func written(s *Skill) bool {
	return s.Name == Name || strings.Contains(s.Body, "lore research")
}

func write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
