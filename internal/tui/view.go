package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tickerchat/internal/chat"
	"tickerchat/internal/render"
	"tickerchat/internal/ticker"
)

// renderTranscript draws every turn followed by the session banner, if any.
// spin is the spinner frame shown beside an open turn.
func renderTranscript(turns []chat.Turn, banner string, term *render.Terminal, width int, spin string) string {
	var b strings.Builder
	for i := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		renderTurn(&b, &turns[i], term, width, spin)
	}
	if banner != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(errorStyle.Render(" " + banner + " "))
		b.WriteString("\n")
	}
	return b.String()
}

func renderTurn(b *strings.Builder, t *chat.Turn, term *render.Terminal, width int, spin string) {
	if t.Role == chat.RoleUser {
		b.WriteString(userLabelStyle.Render("You"))
		b.WriteString("\n")
		b.WriteString(userTextStyle.Width(wrapWidth(width)).Render(t.Text))
		b.WriteString("\n")
		return
	}

	b.WriteString(assistantLabelStyle.Render("Assistant"))
	b.WriteString("\n")
	if t.Text != "" {
		b.WriteString(term.Render(t.Text))
		b.WriteString("\n")
	}

	// The status line belongs to open turns only.
	if t.Open() {
		line := spin
		if t.Status != "" {
			line += " " + t.Status
		}
		b.WriteString(statusStyle.Render(line))
		b.WriteString("\n")
		return
	}

	if len(t.Resources) == 0 {
		return
	}
	b.WriteString(toggleStyle.Render(" " + resourceToggleLabel(len(t.Resources), t.ResourcesExpanded) + " "))
	b.WriteString(dimStyle.Render("  ctrl+o"))
	b.WriteString("\n")
	if t.ResourcesExpanded {
		for _, r := range t.Resources {
			renderCard(b, r)
		}
	}
}

// resourceToggleLabel is the text of a sealed turn's resource toggle.
func resourceToggleLabel(n int, expanded bool) string {
	if expanded {
		return "Hide resources"
	}
	if n == 1 {
		return "Show 1 resource"
	}
	return fmt.Sprintf("Show %d resources", n)
}

func renderCard(b *strings.Builder, r chat.Resource) {
	headline := r.Headline
	if headline == "" {
		headline = render.Headline(r.URL)
	}
	thumb := r.ThumbnailURL
	if thumb == "" {
		thumb = chat.BestCandidate(r.Images)
	}

	b.WriteString("  • ")
	b.WriteString(cardTitleStyle.Render(headline))
	b.WriteString("\n")
	if r.URL != "" {
		b.WriteString("    ")
		b.WriteString(dimStyle.Render(render.StripScheme(r.URL)))
		b.WriteString("\n")
	}
	if thumb != "" {
		b.WriteString("    ")
		b.WriteString(dimStyle.Render("image: " + render.StripScheme(thumb)))
		b.WriteString("\n")
	}
}

// renderSuggestions draws the autocomplete list with the selected row
// highlighted.
func renderSuggestions(matches []ticker.Record, selected, width int) string {
	lines := make([]string, len(matches))
	for i, r := range matches {
		label := tickerStyle.Render(r.Ticker) + " — " + r.Title
		row := padOrTrunc(" "+r.Label(), width)
		if i == selected {
			lines[i] = suggestionSelStyle.Render(row)
			continue
		}
		if lipgloss.Width(label)+1 <= width {
			lines[i] = suggestionStyle.Render(" " + label)
		} else {
			lines[i] = suggestionStyle.Render(row)
		}
	}
	return strings.Join(lines, "\n")
}

func wrapWidth(width int) int {
	if width <= 4 {
		return 0
	}
	return width - 2
}

func padOrTrunc(s string, width int) string {
	w := lipgloss.Width(s)
	if width <= 0 || w == width {
		return s
	}
	if w < width {
		return s + strings.Repeat(" ", width-w)
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)) > width {
		r = r[:len(r)-1]
	}
	return string(r)
}
