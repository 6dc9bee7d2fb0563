package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

// IsTTY indicates whether stdout is an interactive terminal.
// When false, UI functions produce plain text without colors or decorations.
var IsTTY = term.IsTerminal(os.Stdout.Fd())

// ═══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Library ink and index cards
// ═══════════════════════════════════════════════════════════════════════════════

var (
	Ink    = lipgloss.Color("#7FB3D5") // Fountain-pen blue
	Teal   = lipgloss.Color("#48C9B0") // Catalogue teal
	Gold   = lipgloss.Color("#F4D03F") // Gilt lettering
	Amber  = lipgloss.Color("#E59866") // Reading lamp
	Copper = lipgloss.Color("#DC7633") // Aged stamp
	Green  = lipgloss.Color("#58D68D") // Fresh
	Pink   = lipgloss.Color("#FF6B9D") // Errata
	Purple = lipgloss.Color("#9B59B6") // Promoted

	White    = lipgloss.Color("#FDFEFE")
	Gray     = lipgloss.Color("#AAB7B8")
	DarkGray = lipgloss.Color("#5D6D7E")
	Black    = lipgloss.Color("#1C2833")
)

// ═══════════════════════════════════════════════════════════════════════════════
// TEXT STYLES
// ═══════════════════════════════════════════════════════════════════════════════

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Gold)

	Success = lipgloss.NewStyle().
		Foreground(Green)

	Error = lipgloss.NewStyle().
		Foreground(Pink).
		Bold(true)

	Warning = lipgloss.NewStyle().
		Foreground(Copper)

	Muted = lipgloss.NewStyle().
		Foreground(Gray)

	// Dim - even more subtle
	Dim = lipgloss.NewStyle().
		Foreground(DarkGray)

	Highlight = lipgloss.NewStyle().
		Foreground(Gold).
		Bold(true)

	Link = lipgloss.NewStyle().
		Foreground(Teal).
		Underline(true)

	Code = lipgloss.NewStyle().
		Foreground(Ink)
)

// ═══════════════════════════════════════════════════════════════════════════════
// BADGES - Tier and freshness
// ═══════════════════════════════════════════════════════════════════════════════

var baseBadge = lipgloss.NewStyle().
	Padding(0, 1).
	Bold(true)

func badge(plain, fancy string, bg, fg lipgloss.Color) string {
	if !IsTTY {
		return "[" + plain + "]"
	}
	return baseBadge.Background(bg).Foreground(fg).Render(fancy)
}

// TierBadge returns the badge for a tier ("cache" or "docs")
func TierBadge(tier string) string {
	switch tier {
	case "cache":
		return badge("CACHE", "◇ CACHE", Ink, Black)
	case "docs":
		return badge("DOCS", "◆ DOCS", Purple, White)
	default:
		return badge(strings.ToUpper(tier), strings.ToUpper(tier), DarkGray, White)
	}
}

// StatusBadge returns the badge for a freshness status
func StatusBadge(status string) string {
	switch status {
	case "fresh":
		return badge("FRESH", "✓ FRESH", Green, Black)
	case "expired":
		return badge("EXPIRED", "⌛ EXPIRED", Copper, White)
	case "researched":
		return badge("NEW", "✦ NEW", Teal, Black)
	default:
		return badge(strings.ToUpper(status), strings.ToUpper(status), DarkGray, White)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// LOGO
// ═══════════════════════════════════════════════════════════════════════════════

// Logo returns the lore banner
func Logo() string {
	if !IsTTY {
		return "\n  LORE - Research once, remember everywhere\n"
	}

	lines := []struct {
		text  string
		color lipgloss.Color
	}{
		{"", Black},
		{"     █     ▄▀▀▄  █▀▀▄  █▀▀", Gold},
		{"     █     █  █  █▀▀▄  █▀▀", Amber},
		{"     ▀▀▀▀  ▀▄▄▀  ▀  ▀  ▀▀▀", Copper},
		{"     ─────────────────────", DarkGray},
		{"     ✦ research, remembered", Teal},
		{"", Black},
	}

	var result strings.Builder
	for _, line := range lines {
		result.WriteString(lipgloss.NewStyle().Foreground(line.color).Render(line.text))
		result.WriteString("\n")
	}
	return result.String()
}

// ═══════════════════════════════════════════════════════════════════════════════
// LAYOUT
// ═══════════════════════════════════════════════════════════════════════════════

// SectionHeader creates a decorated section header
func SectionHeader(title string) string {
	if !IsTTY {
		return fmt.Sprintf("=== %s ===", title)
	}

	width := min(TerminalWidth(), 80)

	titleStyled := lipgloss.NewStyle().
		Foreground(Gold).
		Bold(true).
		Render(title)

	titleLen := lipgloss.Width(title)
	padLeft := max((width-titleLen-6)/2, 0)
	padRight := max(width-titleLen-6-padLeft, 0)

	left := lipgloss.NewStyle().Foreground(DarkGray).Render(strings.Repeat("─", padLeft) + "┤ ")
	right := lipgloss.NewStyle().Foreground(DarkGray).Render(" ├" + strings.Repeat("─", padRight))

	return left + titleStyled + right
}

// PageFooter creates a page footer matching the header width
func PageFooter() string {
	if !IsTTY {
		return ""
	}

	width := min(TerminalWidth(), 80)
	padSide := (width - 5) / 2
	left := strings.Repeat("─", padSide)
	right := strings.Repeat("─", width-padSide-5)
	line := lipgloss.NewStyle().Foreground(DarkGray).Render(left + " ✦ " + right)
	return "\n" + line + "\n"
}

// SuccessLine creates a success status line
func SuccessLine(message string) string {
	if !IsTTY {
		return fmt.Sprintf("  OK: %s", message)
	}
	return statusLine("✓", message, Green)
}

// WarningLine creates a warning status line
func WarningLine(message string) string {
	if !IsTTY {
		return fmt.Sprintf("  WARN: %s", message)
	}
	return statusLine("!", message, Copper)
}

// InfoLine creates an info status line
func InfoLine(message string) string {
	if !IsTTY {
		return fmt.Sprintf("  %s", message)
	}
	return statusLine("→", message, Ink)
}

func statusLine(icon, message string, color lipgloss.Color) string {
	style := lipgloss.NewStyle().Foreground(color)
	return fmt.Sprintf("  %s %s", style.Render(icon), style.Render(message))
}

// EmptyIndex is shown when neither tier holds anything
func EmptyIndex() string {
	if !IsTTY {
		return "\n  (empty)\n\n  Nothing researched yet.\n  Use `lore research <topic>` to begin.\n"
	}

	shelf := lipgloss.NewStyle().Foreground(DarkGray).Render(`
      ┌─────────────┐
      │   (empty)   │
      └─────────────┘`)

	message := lipgloss.NewStyle().Foreground(Gray).Render("Nothing researched yet.")
	hint := lipgloss.NewStyle().Foreground(Teal).Render("lore research <topic>")

	return fmt.Sprintf("%s\n\n  %s\n  Use %s to begin.\n", shelf, message, hint)
}

// ═══════════════════════════════════════════════════════════════════════════════
// HELPER FUNCTIONS
// ═══════════════════════════════════════════════════════════════════════════════

// Render applies a lipgloss style to text, returning plain text in non-TTY environments.
func Render(style lipgloss.Style, text string) string {
	if !IsTTY {
		return text
	}
	return style.Render(text)
}

// Truncate shortens text to max runes with an ellipsis
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// Age formats the time since t, rounded to the largest useful unit
func Age(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// Until formats the time remaining before t, or "never" for nil
func Until(t *time.Time, now time.Time) string {
	if t == nil {
		return "never"
	}
	d := t.Sub(now)
	switch {
	case d <= 0:
		return "expired"
	case d < time.Hour:
		return fmt.Sprintf("in %dm", int(d.Minutes())+1)
	case d < 24*time.Hour:
		return fmt.Sprintf("in %dh", int(d.Hours()))
	default:
		return fmt.Sprintf("in %dd", int(d.Hours()/24))
	}
}

// TerminalWidth returns the current terminal width, defaulting to 80 if unknown
func TerminalWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
