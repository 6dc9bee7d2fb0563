package skill

// Default returns the lore skill stamped with version
func Default(version string) *Skill {
	return &Skill{
		Name: Name,
		Description: "Look up cached research before investigating a technical topic, pattern or library. " +
			"Use when the user asks to research, compare or explain a concept that may have been researched before.",
		Version:      version,
		AllowedTools: []string{"Bash(lore:*)"},
		Body:         body,
	}
}

const body = `# Research with lore

lore keeps research findings in two tiers:

- **Tier 1** is a personal cache shared by every project, with a TTL.
- **Tier 2** is the project's ` + "`docs/research/`" + ` directory, version-controlled, never expires,
  and carries team notes.

## Before researching anything

Run:

` + "```bash" + `
lore research "<topic>" --format markdown
` + "```" + `

Topics are normalized, so "DDD", "Domain-Driven Design" and "domain driven design"
all resolve to the same entry. A cache hit costs nothing; a miss runs the configured
research provider once and caches the result.

Use ` + "`lore check \"<topic>\"`" + ` to see whether something is cached without researching it.

## Sharing with the team

When findings matter to this project, promote them:

` + "```bash" + `
lore promote <slug>
` + "```" + `

This writes ` + "`docs/research/<slug>.md`" + `. Only edit the TEAM-NOTES section of that
file; the AUTO-GENERATED section is rewritten on refresh.

## Keeping research current

- ` + "`lore list`" + ` shows everything cached and promoted, including expired entries.
- ` + "`lore refresh <slug>`" + ` researches again and keeps the team notes.
`
