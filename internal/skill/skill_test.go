package skill

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kennyg/lore/internal/config"
)

func TestTargetFor(t *testing.T) {
	home := "/home/dev"
	tests := []struct {
		agent      config.Agent
		wantFormat Format
		wantPath   string
	}{
		{config.AgentClaude, FormatSkill, "/home/dev/.claude/skills/lore-research/SKILL.md"},
		{config.AgentOpenCode, FormatSkill, "/home/dev/.opencode/skill/lore-research/SKILL.md"},
		{config.AgentGemini, FormatSkill, "/home/dev/.gemini/skills/lore-research/SKILL.md"},
		{config.AgentCursor, FormatRule, "/home/dev/.cursor/rules/lore-research.mdc"},
		{config.AgentWindsurf, FormatRule, "/home/dev/.windsurf/rules/lore-research.md"},
	}

	for _, tt := range tests {
		t.Run(string(tt.agent), func(t *testing.T) {
			target := TargetFor(home, *config.GetAgentConfig(tt.agent))
			if target.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", target.Format, tt.wantFormat)
			}
			if target.Path != filepath.FromSlash(tt.wantPath) {
				t.Errorf("Path = %q, want %q", target.Path, tt.wantPath)
			}
		})
	}
}

func TestRender(t *testing.T) {
	s := Default("1.2.0")

	skillMD, err := s.Render(FormatSkill)
	if err != nil {
		t.Fatalf("Render(skill) error = %v", err)
	}
	text := string(skillMD)
	for _, want := range []string{"---\nname: lore-research\n", "version: 1.2.0", "allowed-tools:", "# Research with lore"} {
		if !strings.Contains(text, want) {
			t.Errorf("SKILL.md missing %q", want)
		}
	}

	rule, err := s.Render(FormatRule)
	if err != nil {
		t.Fatalf("Render(rule) error = %v", err)
	}
	if strings.Contains(string(rule), "name:") {
		t.Error("rule frontmatter should not carry a name")
	}
	if !strings.Contains(string(rule), "alwaysApply: false") {
		t.Error("rule frontmatter missing alwaysApply")
	}

	if _, err := s.Render("plist"); err == nil {
		t.Error("Render(plist) expected error")
	}
}

func TestParse(t *testing.T) {
	data, err := Default("dev").Render(FormatSkill)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Name != Name || got.Version != "dev" || got.Body != body {
		t.Errorf("Parse() = %+v", got)
	}

	plain, err := Parse([]byte("# Just markdown\n"))
	if err != nil {
		t.Fatalf("Parse(plain) error = %v", err)
	}
	if plain.Body != "# Just markdown\n" {
		t.Errorf("Body = %q", plain.Body)
	}
}

func TestInstall(t *testing.T) {
	home := t.TempDir()
	target := TargetFor(home, *config.GetAgentConfig(config.AgentClaude))

	res, err := Install(target, Default("1.0.0"), false)
	if err != nil || res != Created {
		t.Fatalf("first Install() = %v, %v; want created", res, err)
	}

	res, err = Install(target, Default("1.0.0"), false)
	if err != nil || res != Unchanged {
		t.Fatalf("second Install() = %v, %v; want unchanged", res, err)
	}

	res, err = Install(target, Default("1.1.0"), false)
	if err != nil || res != Updated {
		t.Fatalf("upgrade Install() = %v, %v; want updated", res, err)
	}
}

func TestInstall_ForeignFile(t *testing.T) {
	home := t.TempDir()
	target := TargetFor(home, *config.GetAgentConfig(config.AgentCursor))
	if err := os.MkdirAll(filepath.Dir(target.Path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target.Path, []byte("---\ndescription: team rule\n---\nUse tabs.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Install(target, Default("1.0.0"), false); err == nil {
		t.Fatal("Install() over a foreign file expected error")
	}

	res, err := Install(target, Default("1.0.0"), true)
	if err != nil || res != Updated {
		t.Fatalf("forced Install() = %v, %v; want updated", res, err)
	}
}
