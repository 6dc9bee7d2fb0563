package config

import (
	"os"
	"path/filepath"
)

// Agent is the AI coding agent whose home directory holds the Tier-1 cache
type Agent string

const (
	AgentClaude   Agent = "claude"
	AgentOpenCode Agent = "opencode"
	AgentCursor   Agent = "cursor"
	AgentWindsurf Agent = "windsurf"
	AgentGemini   Agent = "gemini"
	AgentAmp      Agent = "amp"
)

// AgentConfig describes where an agent keeps its files
type AgentConfig struct {
	Name        Agent
	DisplayName string
	ConfigDir   string // Relative to home, e.g., ".claude"
	ResearchDir string // Relative to ConfigDir
}

// KnownAgents returns all known agent configurations
func KnownAgents() []AgentConfig {
	return []AgentConfig{
		{Name: AgentClaude, DisplayName: "Claude Code", ConfigDir: ".claude", ResearchDir: filepath.Join("plugins", "research")},
		{Name: AgentOpenCode, DisplayName: "OpenCode", ConfigDir: ".opencode", ResearchDir: "research"},
		{Name: AgentCursor, DisplayName: "Cursor", ConfigDir: ".cursor", ResearchDir: "research"},
		{Name: AgentWindsurf, DisplayName: "Windsurf", ConfigDir: ".windsurf", ResearchDir: "research"},
		{Name: AgentGemini, DisplayName: "Gemini CLI", ConfigDir: ".gemini", ResearchDir: "research"},
		{Name: AgentAmp, DisplayName: "Amp", ConfigDir: ".amp", ResearchDir: "research"},
	}
}

// GetAgentConfig returns the config for a specific agent
func GetAgentConfig(agent Agent) *AgentConfig {
	for _, a := range KnownAgents() {
		if a.Name == agent {
			return &a
		}
	}
	return nil
}

// DetectInstalledAgents returns agents whose config directory exists under home
func DetectInstalledAgents(home string) []AgentConfig {
	var installed []AgentConfig
	for _, agent := range KnownAgents() {
		if _, err := os.Stat(filepath.Join(home, agent.ConfigDir)); err == nil {
			installed = append(installed, agent)
		}
	}
	return installed
}

// DefaultAgent prefers Claude and falls back to the first detected agent
func DefaultAgent(home string) Agent {
	installed := DetectInstalledAgents(home)
	for _, a := range installed {
		if a.Name == AgentClaude {
			return AgentClaude
		}
	}
	if len(installed) > 0 {
		return installed[0].Name
	}
	// Default to Claude even if not detected
	return AgentClaude
}

// AgentCacheDir returns the Tier-1 directory for agent
func AgentCacheDir(home string, agent Agent) string {
	cfg := GetAgentConfig(agent)
	if cfg == nil {
		// Fallback to Claude-style paths
		cfg = GetAgentConfig(AgentClaude)
	}
	return filepath.Join(home, cfg.ConfigDir, cfg.ResearchDir)
}
