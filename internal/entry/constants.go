package entry

// File names and markers shared by both cache tiers.
const (
	// IndexFilename is the manifest written at the root of each tier
	IndexFilename = "index.json"

	// ReadmeFilename is the human-readable index of a tier
	ReadmeFilename = "README.md"

	// EntriesDirName holds one directory per Tier-1 entry
	EntriesDirName = "entries"

	// MetadataFilename is the per-entry metadata file in Tier-1
	MetadataFilename = "metadata.json"

	// ContentFilename is the per-entry findings file in Tier-1
	ContentFilename = "content.md"

	// DocExt is the extension of promoted Tier-2 documents
	DocExt = ".md"
)

// Section markers delimit generated and hand-written parts of a promoted document.
const (
	AutoStart = "<!-- AUTO-GENERATED: Start -->"
	AutoEnd   = "<!-- AUTO-GENERATED: End -->"
	TeamStart = "<!-- TEAM-NOTES: Start -->"
	TeamEnd   = "<!-- TEAM-NOTES: End -->"
)

// TeamNotesTemplate is written into the team notes section until someone edits it.
const TeamNotesTemplate = `## Team Context

_Add project-specific notes, implementation references, and team knowledge here._`
