// ABOUTME: Bubble Tea interface: peer list, conversation pane, typing indicator
// ABOUTME: Bridges controller callbacks into the tea event loop via a coalescing sink

package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/onet/emotia/internal/controller"
	"github.com/onet/emotia/internal/identity"
)

const typingIdleTimeout = 2 * time.Second

// uiSink receives controller callbacks and coalesces them into a single
// "state changed" signal the tea loop can wait on. Views are full snapshots,
// so keeping only the latest one is lossless.
type uiSink struct {
	mu       sync.Mutex
	view     []controller.Message
	typing   bool
	failures []string
	notify   chan struct{}
}

func newUISink() *uiSink {
	return &uiSink{notify: make(chan struct{}, 1)}
}

func (s *uiSink) ViewUpdated(messages []controller.Message) {
	s.mu.Lock()
	s.view = messages
	s.mu.Unlock()
	s.signal()
}

func (s *uiSink) TypingChanged(typing bool) {
	s.mu.Lock()
	s.typing = typing
	s.mu.Unlock()
	s.signal()
}

func (s *uiSink) DeleteFailed(id string, err error) {
	s.mu.Lock()
	s.failures = append(s.failures, "couldn't delete message, restored")
	s.mu.Unlock()
	s.signal()
}

func (s *uiSink) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// drain returns the latest coalesced state and clears pending failures.
func (s *uiSink) drain() ([]controller.Message, bool, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	failures := s.failures
	s.failures = nil
	return s.view, s.typing, failures
}

type sinkChangedMsg struct{}

type typingIdleMsg struct{ at time.Time }

// waitSink blocks until the controller pushed something new.
func waitSink(s *uiSink) tea.Cmd {
	return func() tea.Msg {
		<-s.notify
		return sinkChangedMsg{}
	}
}

type pane int

const (
	panePeers pane = iota
	paneChat
)

type styles struct {
	header     lipgloss.Style
	peerRow    lipgloss.Style
	peerPick   lipgloss.Style
	peerMood   lipgloss.Style
	sender     lipgloss.Style
	selfSender lipgloss.Style
	timestamp  lipgloss.Style
	tone       lipgloss.Style
	typing     lipgloss.Style
	status     lipgloss.Style
	errStatus  lipgloss.Style
	help       lipgloss.Style
}

func newStyles() styles {
	muted := lipgloss.Color("#6b7280")
	return styles{
		header:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6c63ff")),
		peerRow:    lipgloss.NewStyle().PaddingLeft(2),
		peerPick:   lipgloss.NewStyle().PaddingLeft(0).Bold(true).Foreground(lipgloss.Color("#00ffa3")),
		peerMood:   lipgloss.NewStyle().Foreground(muted),
		sender:     lipgloss.NewStyle().Bold(true),
		selfSender: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6c63ff")),
		timestamp:  lipgloss.NewStyle().Foreground(muted),
		tone:       lipgloss.NewStyle().Foreground(muted).Italic(true),
		typing:     lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffa3")).Italic(true),
		status:     lipgloss.NewStyle().Foreground(muted),
		errStatus:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ff7eb3")).Bold(true),
		help:       lipgloss.NewStyle().Foreground(muted),
	}
}

type model struct {
	self identity.Identity
	dir  *identity.Directory
	ctrl *controller.Controller
	sink *uiSink

	pane      pane
	peers     []identity.Identity
	cursor    int
	activeID  string
	messages  []controller.Message
	peerTyped bool

	input    textinput.Model
	chatView viewport.Model
	styles   styles
	width    int
	height   int

	statusLine string
	lastKeyAt  time.Time
	selfTyping bool
}

func newChatModel(self identity.Identity, dir *identity.Directory, ctrl *controller.Controller, sink *uiSink) model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 2000
	input.Placeholder = "Say something..."

	chatView := viewport.New(0, 0)
	chatView.MouseWheelEnabled = true

	return model{
		self:       self,
		dir:        dir,
		ctrl:       ctrl,
		sink:       sink,
		pane:       panePeers,
		peers:      dir.List(self.ID),
		input:      input,
		chatView:   chatView,
		styles:     newStyles(),
		statusLine: "pick someone to talk to",
	}
}

func (m model) Init() tea.Cmd {
	return waitSink(m.sink)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chatView.Width = msg.Width
		m.chatView.Height = msg.Height - 5
		m.input.Width = msg.Width - 4
		m.renderChat()

	case sinkChangedMsg:
		view, typing, failures := m.sink.drain()
		m.messages = view
		m.peerTyped = typing
		for _, failure := range failures {
			m.statusLine = failure
		}
		m.renderChat()
		m.chatView.GotoBottom()
		cmds = append(cmds, waitSink(m.sink))

	case typingIdleMsg:
		// Only clear if no key came in since this tick was scheduled.
		if m.selfTyping && !m.lastKeyAt.After(msg.at) {
			m.selfTyping = false
			m.ctrl.SetTyping(context.Background(), false)
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.chatView, cmd = m.chatView.Update(msg)
	cmds = append(cmds, cmd)
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.ctrl.Close()
		return m, tea.Quit
	}

	if m.pane == panePeers {
		return m.handlePeerKey(msg)
	}
	return m.handleChatKey(msg)
}

func (m model) handlePeerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.peers)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.peers) == 0 {
			return m, nil
		}
		peer := m.peers[m.cursor]
		if err := m.ctrl.Open(context.Background(), peer); err != nil {
			m.statusLine = fmt.Sprintf("couldn't open conversation: %v", err)
			return m, nil
		}
		m.pane = paneChat
		m.activeID = peer.ID
		m.statusLine = ""
		m.input.Focus()
		return m, textinput.Blink
	case "q":
		m.ctrl.Close()
		return m, tea.Quit
	}
	return m, nil
}

func (m model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.ctrl.Close()
		m.pane = panePeers
		m.activeID = ""
		m.messages = nil
		m.peerTyped = false
		m.input.Reset()
		m.input.Blur()
		m.statusLine = "pick someone to talk to"
		return m, nil

	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		if m.selfTyping {
			m.selfTyping = false
			m.ctrl.SetTyping(context.Background(), false)
		}
		if err := m.ctrl.Send(context.Background(), text); err != nil {
			// Text stays in the input so the user can retry.
			m.statusLine = "send failed, message not delivered"
			return m, nil
		}
		m.statusLine = ""
		m.input.Reset()
		return m, nil

	case tea.KeyCtrlX:
		// Delete the most recent own message.
		for i := len(m.messages) - 1; i >= 0; i-- {
			if m.messages[i].Self {
				if err := m.ctrl.Delete(m.messages[i].ID); err != nil {
					m.statusLine = fmt.Sprintf("%v", err)
				}
				break
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	// Keystrokes publish the typing flag, cleared after a short idle gap.
	now := time.Now()
	m.lastKeyAt = now
	if !m.selfTyping {
		m.selfTyping = true
		m.ctrl.SetTyping(context.Background(), true)
	}
	idle := tea.Tick(typingIdleTimeout, func(time.Time) tea.Msg {
		return typingIdleMsg{at: now}
	})

	return m, tea.Batch(cmd, idle)
}

func (m *model) renderChat() {
	if m.pane != paneChat && m.activeID == "" {
		return
	}
	var b strings.Builder
	for _, msg := range m.messages {
		sender := m.styles.sender
		if msg.Self {
			sender = m.styles.selfSender
		}
		if msg.ColorTag != "" {
			sender = sender.Foreground(lipgloss.Color(msg.ColorTag))
		}
		b.WriteString(sender.Render(msg.SenderName))
		b.WriteString(" ")
		b.WriteString(m.styles.timestamp.Render(msg.Timestamp.Local().Format("15:04")))
		if msg.Tone != "" && msg.Tone != "neutral" {
			b.WriteString(" ")
			b.WriteString(m.styles.tone.Render("(" + string(msg.Tone) + ")"))
		}
		b.WriteString("\n")
		b.WriteString(msg.Text)
		if len(msg.Suggestions) > 0 && msg.Self {
			b.WriteString("  ")
			b.WriteString(m.styles.tone.Render(strings.Join(msg.Suggestions, " ")))
		}
		b.WriteString("\n\n")
	}
	m.chatView.SetContent(b.String())
}

func (m model) View() string {
	if m.pane == panePeers {
		return m.peerListView()
	}
	return m.chatPaneView()
}

func (m model) peerListView() string {
	var b strings.Builder
	b.WriteString(m.styles.header.Render("emotia"))
	b.WriteString("\n\n")

	for i, peer := range m.peers {
		mood := ""
		if peer.MoodEmoji != "" {
			mood = " " + peer.MoodEmoji + " " + m.styles.peerMood.Render(peer.MoodKey)
		}
		line := peer.DisplayName + mood
		if i == m.cursor {
			b.WriteString(m.styles.peerPick.Render("→ " + line))
		} else {
			b.WriteString(m.styles.peerRow.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.statusLine != "" {
		b.WriteString(m.styles.status.Render(m.statusLine))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.help.Render("↑/↓ move · enter open · q quit"))
	return b.String()
}

func (m model) chatPaneView() string {
	peer, _ := m.dir.Lookup(m.activeID)

	header := m.styles.header.Render(peer.DisplayName)
	if peer.MoodEmoji != "" {
		header += " " + peer.MoodEmoji
	}
	if m.peerTyped {
		header += "  " + m.styles.typing.Render("typing...")
	}

	status := ""
	if m.statusLine != "" {
		status = m.styles.errStatus.Render(m.statusLine)
	}

	help := m.styles.help.Render("enter send · ctrl+x delete last · esc back · ctrl+c quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.chatView.View(),
		m.input.View(),
		status,
		help,
	)
}

func runTUI(self identity.Identity, dir *identity.Directory, ctrl *controller.Controller, sink *uiSink) error {
	p := tea.NewProgram(newChatModel(self, dir, ctrl, sink), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
