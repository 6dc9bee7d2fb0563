// Package config loads lore's settings.
//
// Following the dot-config layout:
//
//	User config:    $XDG_CONFIG_HOME/lore/config.yaml
//	Project config: .config/lore/config.yaml (in project root)
//
// Project settings override user settings, and RESEARCH_* environment
// variables override both.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/kennyg/lore/internal/provider"
)

const (
	// ConfigDir is the subdirectory name under .config
	ConfigDir = "lore"
	// ConfigFile is the config filename inside ConfigDir
	ConfigFile = "config.yaml"
	// DocsDir is the default Tier-2 location relative to the project root
	DocsDir = "docs/research"

	DefaultTTL     = 30 * 24 * time.Hour
	DefaultTimeout = 5 * time.Minute
)

// Environment overrides
const (
	EnvCacheDir = "RESEARCH_CACHE_DIR"
	EnvDocsDir  = "RESEARCH_DOCS_DIR"
	EnvTTLDays  = "RESEARCH_TTL_DAYS"
	EnvProvider = "LORE_PROVIDER"
)

// Config is the merged configuration
type Config struct {
	Agent    Agent             `yaml:"agent,omitempty"`
	CacheDir string            `yaml:"cache_dir,omitempty"`
	DocsDir  string            `yaml:"docs_dir,omitempty"`
	TTL      Duration          `yaml:"ttl,omitempty"`
	Timeout  Duration          `yaml:"timeout,omitempty"`
	Aliases  map[string]string `yaml:"aliases,omitempty"`
	Provider provider.Config   `yaml:"provider,omitempty"`

	// Sources lists the files that were merged, in order
	Sources []string `yaml:"-"`
}

// Paths holds the various paths lore uses
type Paths struct {
	// Home is the user's home directory
	Home string
	// UserConfigDir is $XDG_CONFIG_HOME/lore
	UserConfigDir string
	// UserConfigFile is $XDG_CONFIG_HOME/lore/config.yaml
	UserConfigFile string
	// ProjectRoot is the enclosing repository root, empty outside a project
	ProjectRoot string
	// ProjectConfigFile is .config/lore/config.yaml in ProjectRoot
	ProjectConfigFile string
}

// GetPaths returns the standard paths for lore
func GetPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	userConfigDir := filepath.Join(xdg.ConfigHome, ConfigDir)
	p := &Paths{
		Home:           home,
		UserConfigDir:  userConfigDir,
		UserConfigFile: filepath.Join(userConfigDir, ConfigFile),
		ProjectRoot:    findProjectRoot(),
	}
	if p.ProjectRoot != "" {
		p.ProjectConfigFile = filepath.Join(p.ProjectRoot, ".config", ConfigDir, ConfigFile)
	}
	return p, nil
}

// findProjectRoot finds the project root by looking for .config/lore or .git
func findProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Walk up the directory tree
	dir := cwd
	for {
		candidate := filepath.Join(dir, ".config", ConfigDir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return dir
		}

		// Also check for .git to stop at repo root
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}

	return ""
}

// Load merges the user and project config files, then the environment, then
// fills defaults. When explicit is set it replaces both files and must exist.
func Load(paths *Paths, explicit string) (*Config, error) {
	cfg := &Config{}

	if explicit != "" {
		if err := cfg.mergeFile(explicit); err != nil {
			return nil, err
		}
	} else {
		for _, path := range []string{paths.UserConfigFile, paths.ProjectConfigFile} {
			if path == "" {
				continue
			}
			err := cfg.mergeFile(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.applyDefaults(paths); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.Sources = append(c.Sources, path)
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvCacheDir); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv(EnvDocsDir); v != "" {
		c.DocsDir = v
	}
	if v := os.Getenv(EnvTTLDays); v != "" {
		days, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: invalid number of days %q", EnvTTLDays, v)
		}
		c.TTL = Duration(time.Duration(days) * 24 * time.Hour)
		if days <= 0 {
			c.TTL = Never
		}
	}
	if v := os.Getenv(EnvProvider); v != "" {
		c.Provider.Name = v
	}

	if c.Provider.APIKey == "" {
		switch strings.ToLower(c.Provider.Name) {
		case provider.NameOpenAI:
			c.Provider.APIKey = os.Getenv("OPENAI_API_KEY")
		case provider.NameGemini:
			c.Provider.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
		}
	}
	return nil
}

func (c *Config) applyDefaults(paths *Paths) error {
	if c.Agent == "" {
		c.Agent = DefaultAgent(paths.Home)
	} else if GetAgentConfig(c.Agent) == nil {
		return fmt.Errorf("unknown agent %q", c.Agent)
	}

	if c.CacheDir == "" {
		c.CacheDir = AgentCacheDir(paths.Home, c.Agent)
	}
	c.CacheDir = expandHome(c.CacheDir, paths.Home)

	base := paths.ProjectRoot
	if base == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		base = cwd
	}
	if c.DocsDir == "" {
		c.DocsDir = DocsDir
	}
	c.DocsDir = expandHome(c.DocsDir, paths.Home)
	if !filepath.IsAbs(c.DocsDir) {
		c.DocsDir = filepath.Join(base, c.DocsDir)
	}

	if c.TTL == 0 {
		c.TTL = Duration(DefaultTTL)
	}
	if c.Timeout <= 0 {
		c.Timeout = Duration(DefaultTimeout)
	}
	return nil
}

// Save writes c as YAML to path, creating parent directories
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(home, rest)
	}
	return path
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
