package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable Load reads
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvCacheDir, EnvDocsDir, EnvTTLDays, EnvProvider, "OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		t.Setenv(k, "")
	}
}

func testPaths(t *testing.T) *Paths {
	t.Helper()
	home := t.TempDir()
	project := t.TempDir()
	return &Paths{
		Home:              home,
		UserConfigDir:     filepath.Join(home, ".config", ConfigDir),
		UserConfigFile:    filepath.Join(home, ".config", ConfigDir, ConfigFile),
		ProjectRoot:       project,
		ProjectConfigFile: filepath.Join(project, ".config", ConfigDir, ConfigFile),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	paths := testPaths(t)

	cfg, err := Load(paths, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Agent != AgentClaude {
		t.Errorf("Agent = %q, want claude", cfg.Agent)
	}
	if want := filepath.Join(paths.Home, ".claude", "plugins", "research"); cfg.CacheDir != want {
		t.Errorf("CacheDir = %q, want %q", cfg.CacheDir, want)
	}
	if want := filepath.Join(paths.ProjectRoot, "docs", "research"); cfg.DocsDir != want {
		t.Errorf("DocsDir = %q, want %q", cfg.DocsDir, want)
	}
	if cfg.TTL.Std() != 30*24*time.Hour {
		t.Errorf("TTL = %v, want 30d", cfg.TTL)
	}
	if cfg.Timeout.Std() != 5*time.Minute {
		t.Errorf("Timeout = %v, want 5m", cfg.Timeout)
	}
	if len(cfg.Sources) != 0 {
		t.Errorf("Sources = %v, want none", cfg.Sources)
	}
}

func TestLoad_ProjectOverridesUser(t *testing.T) {
	clearEnv(t)
	paths := testPaths(t)

	writeFile(t, paths.UserConfigFile, `
cache_dir: ~/research-cache
ttl: 7d
aliases:
  ddd: domain-driven-design
provider:
  name: openai
  model: gpt-user
`)
	writeFile(t, paths.ProjectConfigFile, `
docs_dir: knowledge
timeout: 90s
aliases:
  pna: ports-and-adapters
provider:
  model: gpt-project
`)

	cfg, err := Load(paths, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if want := filepath.Join(paths.Home, "research-cache"); cfg.CacheDir != want {
		t.Errorf("CacheDir = %q, want %q", cfg.CacheDir, want)
	}
	if want := filepath.Join(paths.ProjectRoot, "knowledge"); cfg.DocsDir != want {
		t.Errorf("DocsDir = %q, want %q", cfg.DocsDir, want)
	}
	if cfg.TTL.Std() != 7*24*time.Hour {
		t.Errorf("TTL = %v, want 7d", cfg.TTL)
	}
	if cfg.Timeout.Std() != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", cfg.Timeout)
	}
	if cfg.Provider.Name != "openai" || cfg.Provider.Model != "gpt-project" {
		t.Errorf("Provider = %+v", cfg.Provider)
	}
	if len(cfg.Aliases) != 2 {
		t.Errorf("Aliases = %v, want both files merged", cfg.Aliases)
	}
	if len(cfg.Sources) != 2 {
		t.Errorf("Sources = %v", cfg.Sources)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	paths := testPaths(t)
	writeFile(t, paths.UserConfigFile, "cache_dir: /from/file\nttl: 7d\nprovider:\n  name: gemini\n")

	t.Setenv(EnvCacheDir, "/from/env")
	t.Setenv(EnvDocsDir, "/docs/env")
	t.Setenv(EnvTTLDays, "14")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	cfg, err := Load(paths, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CacheDir != "/from/env" || cfg.DocsDir != "/docs/env" {
		t.Errorf("dirs = %q, %q", cfg.CacheDir, cfg.DocsDir)
	}
	if cfg.TTL.Std() != 14*24*time.Hour {
		t.Errorf("TTL = %v, want 14d", cfg.TTL)
	}
	if cfg.Provider.APIKey != "google-key" {
		t.Errorf("APIKey = %q, want google-key", cfg.Provider.APIKey)
	}
}

func TestLoad_APIKeyFromFileWins(t *testing.T) {
	clearEnv(t)
	paths := testPaths(t)
	writeFile(t, paths.UserConfigFile, "provider:\n  name: openai\n  api_key: file-key\n")
	t.Setenv("OPENAI_API_KEY", "env-key")

	cfg, err := Load(paths, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider.APIKey != "file-key" {
		t.Errorf("APIKey = %q, want file-key", cfg.Provider.APIKey)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, p *Paths) string
		wantErr string
	}{
		{
			name:    "explicit file missing",
			setup:   func(t *testing.T, p *Paths) string { return filepath.Join(p.Home, "nope.yaml") },
			wantErr: "read config",
		},
		{
			name: "invalid yaml",
			setup: func(t *testing.T, p *Paths) string {
				writeFile(t, p.UserConfigFile, "ttl: [")
				return ""
			},
			wantErr: "parse config",
		},
		{
			name: "invalid ttl",
			setup: func(t *testing.T, p *Paths) string {
				writeFile(t, p.UserConfigFile, "ttl: soon")
				return ""
			},
			wantErr: "invalid duration",
		},
		{
			name: "invalid ttl days env",
			setup: func(t *testing.T, p *Paths) string {
				t.Setenv(EnvTTLDays, "thirty")
				return ""
			},
			wantErr: EnvTTLDays,
		},
		{
			name: "unknown agent",
			setup: func(t *testing.T, p *Paths) string {
				writeFile(t, p.UserConfigFile, "agent: emacs")
				return ""
			},
			wantErr: "unknown agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			paths := testPaths(t)
			explicit := tt.setup(t, paths)

			_, err := Load(paths, explicit)
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_ExplicitFileSkipsOthers(t *testing.T) {
	clearEnv(t)
	paths := testPaths(t)
	writeFile(t, paths.UserConfigFile, "ttl: 7d\n")
	explicit := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, explicit, "ttl: 1d\n")

	cfg, err := Load(paths, explicit)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TTL.Std() != 24*time.Hour {
		t.Errorf("TTL = %v, want 1d", cfg.TTL)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0] != explicit {
		t.Errorf("Sources = %v", cfg.Sources)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	paths := testPaths(t)
	cfg := &Config{
		TTL:     Duration(3 * 24 * time.Hour),
		Timeout: Duration(2 * time.Minute),
		Aliases: map[string]string{"es": "event-sourcing"},
	}
	cfg.Provider.Name = "github"

	if err := cfg.Save(paths.UserConfigFile); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := os.ReadFile(paths.UserConfigFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "ttl: 3d") {
		t.Errorf("saved config missing day syntax:\n%s", data)
	}

	loaded, err := Load(paths, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.TTL != cfg.TTL || loaded.Timeout != cfg.Timeout || loaded.Provider.Name != "github" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    Duration
		wantErr bool
	}{
		{"30d", Duration(30 * 24 * time.Hour), false},
		{"12h", Duration(12 * time.Hour), false},
		{" 90m ", Duration(90 * time.Minute), false},
		{"never", Never, false},
		{"0d", Never, false},
		{"", 0, false},
		{"xd", 0, true},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDurationString(t *testing.T) {
	tests := []struct {
		in   Duration
		want string
	}{
		{Duration(30 * 24 * time.Hour), "30d"},
		{Duration(90 * time.Second), "1m30s"},
		{Never, "never"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "services", "api")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	t.Chdir(nested)
	got, err := filepath.EvalSymlinks(findProjectRoot())
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.EvalSymlinks(root)
	if got != want {
		t.Errorf("findProjectRoot() = %q, want %q", got, want)
	}
}

func TestDefaultAgent(t *testing.T) {
	home := t.TempDir()
	if got := DefaultAgent(home); got != AgentClaude {
		t.Errorf("DefaultAgent(empty home) = %q, want claude", got)
	}

	if err := os.Mkdir(filepath.Join(home, ".opencode"), 0o755); err != nil {
		t.Fatal(err)
	}
	if got := DefaultAgent(home); got != AgentOpenCode {
		t.Errorf("DefaultAgent() = %q, want opencode", got)
	}
	if want := filepath.Join(home, ".opencode", "research"); AgentCacheDir(home, AgentOpenCode) != want {
		t.Errorf("AgentCacheDir() = %q, want %q", AgentCacheDir(home, AgentOpenCode), want)
	}

	if err := os.Mkdir(filepath.Join(home, ".claude"), 0o755); err != nil {
		t.Fatal(err)
	}
	if got := DefaultAgent(home); got != AgentClaude {
		t.Errorf("DefaultAgent() = %q, want claude", got)
	}
}
