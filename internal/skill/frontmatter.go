package skill

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// parseFrontmatter decodes the YAML between the leading "---" lines into target
// and returns the body. Content without frontmatter is returned whole.
func parseFrontmatter[T any](content []byte, target *T) (string, error) {
	text := string(content)
	if !strings.HasPrefix(text, "---") {
		return text, nil
	}

	rest := strings.TrimPrefix(text[3:], "\n")
	idx := strings.Index(rest, "\n---")
	if idx == -1 {
		return text, nil
	}

	if err := yaml.Unmarshal([]byte(rest[:idx]), target); err != nil {
		return "", fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	body := strings.TrimPrefix(rest[idx+4:], "\n")
	// serializeFrontmatter separates the body with one blank line
	return strings.TrimPrefix(body, "\n"), nil
}

// serializeFrontmatter writes fm as YAML frontmatter followed by body
func serializeFrontmatter(fm any, body string) ([]byte, error) {
	yamlBytes, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize frontmatter: %w", err)
	}

	var result strings.Builder
	result.WriteString("---\n")
	result.Write(yamlBytes)
	result.WriteString("---\n")
	if body != "" {
		result.WriteString("\n")
		result.WriteString(body)
	}
	return []byte(result.String()), nil
}
