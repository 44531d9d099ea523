package session

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/wsclient/internal/client"
	"github.com/muurk/wsclient/internal/protocol"
	"github.com/muurk/wsclient/internal/ui"
)

// Messages delivered from the client's goroutine
type connectResultMsg struct {
	result client.ConnectResult
}

type frameMsg struct {
	line ui.FrameLine
}

type disconnectMsg struct {
	err error
}

// Sender is the part of client.Client the session drives.
type Sender interface {
	Connect(url string)
	Send(op protocol.FrameType, data []byte) (int, error)
	Flush() (int, error)
	Close() error
	State() client.State
}

// keyMap defines key bindings for the session screen
type keyMap struct {
	Send      key.Binding
	Reconnect key.Binding
	Up        key.Binding
	Down      key.Binding
	Quit      key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Reconnect, k.Up, k.Down, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Reconnect},
		{k.Up, k.Down, k.Quit},
	}
}

func newKeyMap() keyMap {
	return keyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Reconnect: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reconnect"),
		),
		Up: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// Model is the interactive session screen: a scrolling frame log above a
// message input.
type Model struct {
	URL    string
	Binary bool // send input as binary frames

	client  Sender
	state   client.State
	history *history
	status  string
	err     error

	// UI state
	Width    int
	Height   int
	Viewport viewport.Model
	Input    textinput.Model
	Spinner  spinner.Model
	Help     help.Model
	Keys     keyMap
}

// NewModel creates a session for url driven by c.
func NewModel(url string, c Sender, historySize int) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	input := textinput.New()
	input.Placeholder = "message, /ping, /binary <hex>, /close, /quit"
	input.Prompt = PromptStyle.Render("> ")
	input.CharLimit = 0
	input.Focus()

	vp := viewport.New(MinTerminalWidth-4, MinViewportRows)

	return Model{
		URL:      url,
		client:   c,
		state:    client.Connecting,
		history:  newHistory(historySize),
		Viewport: vp,
		Input:    input,
		Spinner:  s,
		Help:     help.New(),
		Keys:     newKeyMap(),
	}
}

// Init starts the connection
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.Spinner.Tick,
		m.connect(),
	)
}

func (m Model) connect() tea.Cmd {
	c, url := m.client, m.URL
	return func() tea.Msg {
		c.Connect(url)
		return nil
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Reconnect):
			if m.client.State() == client.Disconnected {
				m.state = client.Connecting
				m.status = "reconnecting"
				return m, tea.Batch(m.connect(), m.Spinner.Tick)
			}
			return m, nil
		case key.Matches(msg, m.Keys.Send):
			line := m.Input.Value()
			m.Input.SetValue("")
			return m.submit(line)
		case key.Matches(msg, m.Keys.Up), key.Matches(msg, m.Keys.Down):
			var cmd tea.Cmd
			m.Viewport, cmd = m.Viewport.Update(msg)
			return m, cmd
		}

	case connectResultMsg:
		m.state = m.client.State()
		if msg.result == client.Success {
			m.status = "connected"
			m.err = nil
		} else {
			m.status = "connect failed: " + msg.result.String()
		}
		m.log(ui.StatusStyle.Render(m.status))

	case frameMsg:
		m.log(msg.line.Render())

	case disconnectMsg:
		m.state = client.Disconnected
		m.status = "disconnected"
		if msg.err != nil {
			m.err = msg.err
			m.status = "disconnected: " + msg.err.Error()
		}
		m.log(ui.StatusStyle.Render(m.status + " (ctrl+r to reconnect)"))

	case spinner.TickMsg:
		if m.state == client.Connecting {
			var cmd tea.Cmd
			m.Spinner, cmd = m.Spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles one line typed by the user.
func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	in, err := ParseInput(line, m.Binary)
	if err != nil {
		m.fail(err)
		return m, nil
	}

	switch in.Action {
	case ActionNone:
		return m, nil
	case ActionQuit:
		return m, tea.Quit
	case ActionClose:
		if err := m.client.Close(); err != nil {
			m.fail(err)
		}
		return m, nil
	case ActionFlush:
		n, err := m.client.Flush()
		if err != nil {
			m.fail(err)
		} else {
			m.log(ui.StatusStyle.Render(fmt.Sprintf("%d bytes still pending", n)))
		}
		return m, nil
	}

	remaining, err := m.client.Send(in.Op, in.Payload)
	switch {
	case errors.Is(err, client.ErrSendPending):
		m.log(ui.StatusStyle.Render(fmt.Sprintf("previous frame still has %d bytes pending, not sent", remaining)))
		return m, nil
	case err != nil:
		m.fail(err)
		return m, nil
	}

	if remaining > 0 {
		m.log(ui.StatusStyle.Render(fmt.Sprintf("%d bytes pending (/flush to retry)", remaining)))
	}
	return m, nil
}

func (m *Model) fail(err error) {
	m.err = err
	m.log(ErrorLineStyle.Render("error: " + err.Error()))
}

// log appends a line and keeps the view pinned to the newest line when it
// was already at the bottom.
func (m *Model) log(line string) {
	atBottom := m.Viewport.AtBottom()
	m.history.add(line)
	m.Viewport.SetContent(m.history.String())
	if atBottom {
		m.Viewport.GotoBottom()
	}
}

func (m *Model) resize() {
	width := max(m.Width, MinTerminalWidth)
	m.Viewport.Width = width - 4
	m.Viewport.Height = max(m.Height-chromeRows, MinViewportRows)
	m.Input.Width = width - 8
	m.Help.Width = width - 4
	m.Viewport.SetContent(m.history.String())
	m.Viewport.GotoBottom()
}

// View renders the session screen
func (m Model) View() string {
	state := m.state
	header := buildHeaderContent(m.URL, state)
	if state == client.Connecting {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, " ", m.Spinner.View())
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.Viewport.View(),
		"",
		m.Input.View(),
	)

	return renderContainer(header, content, m.Help.View(m.Keys), m.Width, m.Height)
}

// Err returns the last error shown in the session, if any
func (m Model) Err() error {
	return m.err
}

// Lines returns the number of lines in the frame log
func (m Model) Lines() int {
	return m.history.len()
}
