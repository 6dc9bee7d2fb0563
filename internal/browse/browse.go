// Package browse is the interactive inventory of both tiers.
package browse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/kennyg/lore/internal/entry"
	"github.com/kennyg/lore/internal/research"
	"github.com/kennyg/lore/internal/ui"
)

// Backend is the part of research.Service the browser needs
type Backend interface {
	List(ctx context.Context) ([]research.Listing, error)
	Lookup(ctx context.Context, topic string, tier entry.Tier) (*entry.Entry, error)
	Promote(ctx context.Context, slug string) (*research.Result, error)
}

type listingItem struct {
	listing research.Listing
	now     time.Time
}

func (i listingItem) Title() string {
	return fmt.Sprintf("%s  %s", i.listing.DisplayTitle(), ui.Render(ui.Dim, "["+i.listing.Tier.Label()+"]"))
}

func (i listingItem) Description() string {
	desc := fmt.Sprintf("%s · %s · %s", i.listing.Slug, i.listing.Status, ui.Age(i.listing.CreatedAt, i.now))
	if i.listing.HasNotes {
		desc += " · team notes"
	}
	return desc
}

func (i listingItem) FilterValue() string {
	return i.listing.Slug + " " + i.listing.Title + " " + strings.Join(i.listing.Aliases, " ")
}

type (
	listingsMsg struct {
		listings []research.Listing
		err      error
	}
	contentMsg struct {
		entry *entry.Entry
		err   error
	}
	promotedMsg struct {
		slug string
		err  error
	}
)

// Model is the bubbletea model for `lore browse`
type Model struct {
	ctx     context.Context
	backend Backend
	now     func() time.Time

	list     list.Model
	viewer   viewport.Model
	renderer *glamour.TermRenderer
	reading  *entry.Entry
	status   string
	errorMsg string
	width    int
	height   int
}

// New creates the browser model
func New(ctx context.Context, backend Backend) *Model {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Research index"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return &Model{
		ctx:     ctx,
		backend: backend,
		now:     time.Now,
		list:    l,
		viewer:  viewport.New(0, 0),
		status:  "Loading...",
	}
}

// Init loads the listings
func (m *Model) Init() tea.Cmd {
	return m.load()
}

func (m *Model) load() tea.Cmd {
	return func() tea.Msg {
		listings, err := m.backend.List(m.ctx)
		return listingsMsg{listings: listings, err: err}
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, max(msg.Height-4, 5))
		m.viewer.Width = msg.Width
		m.viewer.Height = max(msg.Height-4, 5)
		m.renderer = newRenderer(msg.Width - 4)
		if m.reading != nil {
			m.viewer.SetContent(m.renderEntry(m.reading))
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.reading != nil {
			switch msg.String() {
			case "esc", "q", "backspace":
				m.reading = nil
				m.status = ""
				return m, nil
			}
			var cmd tea.Cmd
			m.viewer, cmd = m.viewer.Update(msg)
			return m, cmd
		}
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "q", "esc":
				return m, tea.Quit
			case "enter":
				return m, m.open()
			case "p":
				return m, m.promote()
			}
		}

	case listingsMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		m.errorMsg = ""
		now := m.now()
		items := make([]list.Item, len(msg.listings))
		for i, l := range msg.listings {
			items[i] = listingItem{listing: l, now: now}
		}
		cmd := m.list.SetItems(items)
		if m.status == "Loading..." {
			m.status = fmt.Sprintf("%d entries · enter to read · p to promote", len(items))
		}
		return m, cmd

	case contentMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		m.errorMsg = ""
		m.reading = msg.entry
		m.viewer.SetContent(m.renderEntry(msg.entry))
		m.viewer.GotoTop()
		m.status = "esc to go back"
		return m, nil

	case promotedMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		m.errorMsg = ""
		m.status = fmt.Sprintf("Promoted %s", msg.slug)
		return m, m.load()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) selected() *research.Listing {
	item, ok := m.list.SelectedItem().(listingItem)
	if !ok {
		return nil
	}
	return &item.listing
}

func (m *Model) open() tea.Cmd {
	sel := m.selected()
	if sel == nil {
		return nil
	}
	key, tier := sel.Slug, sel.Tier
	return func() tea.Msg {
		e, err := m.backend.Lookup(m.ctx, key, tier)
		return contentMsg{entry: e, err: err}
	}
}

func (m *Model) promote() tea.Cmd {
	sel := m.selected()
	if sel == nil {
		return nil
	}
	if sel.Tier == entry.TierDocs {
		m.status = sel.Slug + " is already promoted"
		return nil
	}
	key := sel.Slug
	return func() tea.Msg {
		_, err := m.backend.Promote(m.ctx, key)
		return promotedMsg{slug: key, err: err}
	}
}

// View renders the model
func (m *Model) View() string {
	body := m.list.View()
	if m.reading != nil {
		body = m.viewer.View()
	}
	if m.errorMsg != "" {
		errBlock := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.Pink).
			Padding(0, 1).
			Render("⚠ " + m.errorMsg)
		body = body + "\n" + errBlock
	}
	return body + "\n" + ui.Muted.Render(m.status)
}

// newRenderer returns nil when glamour cannot build a renderer; markdown is then shown raw
func newRenderer(width int) *glamour.TermRenderer {
	style := glamour.WithStandardStyle("notty")
	if ui.IsTTY {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(max(width, 20)))
	if err != nil {
		return nil
	}
	return r
}

func (m *Model) markdown(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func (m *Model) renderEntry(e *entry.Entry) string {
	var b strings.Builder
	b.WriteString(ui.Title.Render(e.DisplayTitle()))
	b.WriteString("\n")
	b.WriteString(ui.Muted.Render(fmt.Sprintf("%s · %s · researched %s", e.Slug, e.Tier.Label(), e.CreatedAt.Format("2006-01-02"))))
	b.WriteString("\n\n")
	b.WriteString(m.markdown(e.Content))
	if strings.TrimSpace(e.TeamNotes) != "" {
		b.WriteString("\n\n")
		b.WriteString(ui.Title.Render("Team notes"))
		b.WriteString("\n")
		b.WriteString(m.markdown(e.TeamNotes))
	}
	if len(e.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(ui.Title.Render("Sources"))
		b.WriteString("\n")
		for _, s := range e.Sources {
			b.WriteString("  " + s + "\n")
		}
	}
	return b.String()
}

// Run starts the full-screen browser
func Run(ctx context.Context, backend Backend) error {
	_, err := tea.NewProgram(New(ctx, backend), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
