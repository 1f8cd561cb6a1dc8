// Package tui is the interactive chat session: a transcript viewport, an
// input line with ticker autocomplete, and the session banner.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"tickerchat/internal/chat"
	"tickerchat/internal/render"
	"tickerchat/internal/ticker"
)

// IndexLoader produces the ticker index. It is called once, off the UI
// goroutine, when the program starts.
type IndexLoader interface {
	Load(ctx context.Context) (ix *ticker.Index, fromCache bool)
}

// Options configures a Model.
type Options struct {
	Controller *chat.Controller
	Tickers    IndexLoader // nil disables autocomplete
	Renderer   *render.Terminal
	Server     string // shown in the header
	Log        *slog.Logger
}

type tickersLoadedMsg struct {
	index     *ticker.Index
	fromCache bool
}

type transcriptChangedMsg struct{}

type submitDoneMsg struct{ err error }

// Model is the bubbletea model for one session.
type Model struct {
	ctrl       *chat.Controller
	transcript *chat.Transcript
	loader     IndexLoader
	term       *render.Terminal
	server     string
	log        *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	subID  int
	events <-chan uint64

	// Autocomplete.
	index       *ticker.Index
	fromCache   bool
	suggestions ticker.Result
	selected    int
	suppressed  bool // hidden after a selection until the input changes

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	ready    bool
	width    int
	height   int
}

// New creates the model and subscribes it to the controller's transcript.
func New(opts Options) Model {
	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	in := textinput.New()
	in.Prompt = "❯ "
	in.Placeholder = "Ask about a company, # to search tickers"
	in.CharLimit = 2000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	ctx, cancel := context.WithCancel(context.Background())
	t := opts.Controller.Transcript()
	id, events := t.Subscribe(16)

	return Model{
		ctrl:       opts.Controller,
		transcript: t,
		loader:     opts.Tickers,
		term:       opts.Renderer,
		server:     opts.Server,
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
		subID:      id,
		events:     events,
		input:      in,
		spinner:    sp,
	}
}

// Init starts the cursor blink, the spinner, the transcript watch and the
// ticker load.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick, waitForChange(m.events)}
	if m.loader != nil {
		loader, ctx := m.loader, m.ctx
		cmds = append(cmds, func() tea.Msg {
			ix, fromCache := loader.Load(ctx)
			return tickersLoadedMsg{index: ix, fromCache: fromCache}
		})
	}
	return tea.Batch(cmds...)
}

// waitForChange blocks until the transcript reports a mutation. Versions
// that pile up are collapsed into one redraw.
func waitForChange(events <-chan uint64) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		for {
			select {
			case _, ok := <-events:
				if !ok {
					return transcriptChangedMsg{}
				}
			default:
				return transcriptChangedMsg{}
			}
		}
	}
}

// Update handles input and background messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = msg.Width - 4
		if !m.ready {
			m.viewport = viewport.New(m.width, 1)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		}
		m.layout()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.shutdown()
			return m, tea.Quit
		case "esc":
			if m.suggestionsShown() {
				m.suppressed = true
				m.layout()
				return m, nil
			}
			m.shutdown()
			return m, tea.Quit
		case "up":
			if m.suggestionsShown() {
				m.moveSelection(-1)
				return m, nil
			}
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case "down":
			if m.suggestionsShown() {
				m.moveSelection(1)
				return m, nil
			}
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case "tab":
			if m.suggestionsShown() {
				m.applySelection()
			}
			return m, nil
		case "enter":
			if m.suggestionsShown() {
				m.applySelection()
				return m, nil
			}
			return m, m.submit()
		case "ctrl+o":
			m.toggleResources()
			return m, nil
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			m.suppressed = false
			m.search()
		}
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case transcriptChangedMsg:
		m.refresh()
		m.viewport.GotoBottom()
		return m, waitForChange(m.events)

	case tickersLoadedMsg:
		m.index, m.fromCache = msg.index, msg.fromCache
		m.search()
		return m, nil

	case submitDoneMsg:
		if msg.err != nil {
			m.log.Warn("submit failed", "error", msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.transcript.State() == chat.StateOpen {
			m.refresh()
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View draws the header, transcript, suggestions and input line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := fmt.Sprintf(" tickerchat  %s    tickers: %d%s    %s ",
		m.server, m.index.Len(), m.cacheNote(), m.transcript.State())
	parts := []string{headerStyle.Render(padOrTrunc(header, m.width)), m.viewport.View()}
	if m.suggestionsShown() {
		parts = append(parts, renderSuggestions(m.suggestions.Matches, m.selected, m.width))
	}
	parts = append(parts, m.input.View())

	help := " enter send  tab/enter pick ticker  ctrl+o resources  pgup/pgdn scroll  esc quit"
	parts = append(parts, footerStyle.Render(padOrTrunc(help, m.width)))
	return strings.Join(parts, "\n")
}

func (m Model) cacheNote() string {
	if m.fromCache {
		return " (cached)"
	}
	return ""
}

func (m *Model) suggestionsShown() bool {
	return m.suggestions.Visible && !m.suppressed
}

func (m *Model) search() {
	m.suggestions = m.index.Search(m.input.Value())
	m.selected = 0
	m.layout()
}

func (m *Model) moveSelection(delta int) {
	n := len(m.suggestions.Matches)
	if n == 0 {
		return
	}
	m.selected = (m.selected + delta + n) % n
}

func (m *Model) applySelection() {
	if m.selected < 0 || m.selected >= len(m.suggestions.Matches) {
		return
	}
	chosen := m.suggestions.Matches[m.selected]
	m.input.SetValue(ticker.ApplySelection(m.input.Value(), chosen.Ticker))
	m.input.CursorEnd()
	m.suppressed = true
	m.layout()
}

// submit clears the input and runs the exchange off the UI goroutine.
// Blank input does nothing.
func (m *Model) submit() tea.Cmd {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	m.input.SetValue("")
	m.suggestions = ticker.Result{}
	m.layout()

	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return submitDoneMsg{err: ctrl.Submit(ctx, text)}
	}
}

// toggleResources flips the panel of the latest sealed turn that has
// resources.
func (m *Model) toggleResources() {
	if i := latestToggleable(m.transcript.Turns()); i >= 0 {
		m.transcript.ToggleResources(i)
	}
}

func latestToggleable(turns []chat.Turn) int {
	for i := len(turns) - 1; i >= 0; i-- {
		t := turns[i]
		if t.Role == chat.RoleAssistant && t.Sealed && len(t.Resources) > 0 {
			return i
		}
	}
	return -1
}

// layout sizes the viewport around the header, suggestions, input and
// footer.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	h := m.height - 3
	if m.suggestionsShown() {
		h -= len(m.suggestions.Matches)
	}
	if h < 1 {
		h = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = h
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	content := renderTranscript(m.transcript.Turns(), m.transcript.Error(), m.term, m.width, m.spinner.View())
	m.viewport.SetContent(content)
}

func (m *Model) shutdown() {
	m.cancel()
	m.ctrl.Close()
	m.transcript.Unsubscribe(m.subID)
}
