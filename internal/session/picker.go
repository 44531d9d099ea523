package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/wsclient/internal/discovery"
	"github.com/muurk/wsclient/internal/transport"
)

// ScanFunc finds services to offer in the picker
type ScanFunc func(ctx context.Context) ([]*discovery.Service, error)

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	services []*discovery.Service
	err      error
}

// pickerKeyMap defines key bindings for the picker screen
type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualKeyMap defines key bindings for manual URL entry
type manualKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k manualKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k manualKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}

// serviceItem wraps a Service for use with bubbles/list
type serviceItem struct {
	service *discovery.Service
}

func (s serviceItem) FilterValue() string {
	return s.service.Instance + " " + s.service.IP + " " + s.service.Hostname
}

// Title returns the instance name for list display
func (s serviceItem) Title() string {
	if s.service.Instance == "" {
		return s.service.URL()
	}
	return s.service.Instance
}

// Description returns service details for list display
func (s serviceItem) Description() string {
	desc := s.service.URL()
	if s.service.Hostname != "" {
		desc += " • " + strings.TrimSuffix(s.service.Hostname, ".")
	}
	return desc
}

// PickerModel scans for WebSocket services and lets the user choose one or
// type a URL.
type PickerModel struct {
	Scanning    bool
	ServiceList list.Model
	Selected    bool
	Err         error

	ManualMode bool
	URLInput   textinput.Model

	// UI state
	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	ScanTimeout   time.Duration
	Help          help.Model
	Keys          pickerKeyMap
	ManualKeys    manualKeyMap

	scan ScanFunc
}

// NewPickerModel creates a picker that runs scan on start and on rescan.
func NewPickerModel(scan ScanFunc, timeout time.Duration) PickerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	urlInput := textinput.New()
	urlInput.Placeholder = "ws://localhost:8080/"
	urlInput.Width = 40

	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = 40

	serviceList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	serviceList.Title = "Discovered Services"
	serviceList.SetShowStatusBar(false)
	serviceList.SetFilteringEnabled(true)
	serviceList.Styles.Title = TitleStyle

	if timeout <= 0 {
		timeout = discovery.DefaultScanTimeout
	}

	return PickerModel{
		ServiceList: serviceList,
		URLInput:    urlInput,
		Spinner:     s,
		ProgressBar: progressBar,
		ScanTimeout: timeout,
		Help:        help.New(),
		Keys: pickerKeyMap{
			Up: key.NewBinding(
				key.WithKeys("up", "k"),
				key.WithHelp("↑/k", "move up"),
			),
			Down: key.NewBinding(
				key.WithKeys("down", "j"),
				key.WithHelp("↓/j", "move down"),
			),
			Enter: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "connect"),
			),
			Rescan: key.NewBinding(
				key.WithKeys("r"),
				key.WithHelp("r", "rescan"),
			),
			Manual: key.NewBinding(
				key.WithKeys("m"),
				key.WithHelp("m", "enter URL"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "esc", "ctrl+c"),
				key.WithHelp("q", "quit"),
			),
		},
		ManualKeys: manualKeyMap{
			Confirm: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "confirm"),
			),
			Cancel: key.NewBinding(
				key.WithKeys("esc"),
				key.WithHelp("esc", "cancel"),
			),
		},
		scan: scan,
	}
}

// Init starts the first scan
func (m PickerModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		m.scanCmd(),
		m.Spinner.Tick,
	)
}

func (m PickerModel) scanCmd() tea.Cmd {
	scan, timeout := m.scan, m.ScanTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		services, err := scan(ctx)
		return scanCompleteMsg{services: services, err: err}
	}
}

// Update handles messages and updates the model
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		if m.ServiceList.FilterState() != list.Filtering {
			if next, cmd, handled := m.updateNormalMode(msg); handled {
				return next, cmd
			}
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.ServiceList.SetWidth(msg.Width - 4)
		m.ServiceList.SetHeight(max(msg.Height-chromeRows, MinViewportRows))

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.services))
		for i, svc := range msg.services {
			items[i] = serviceItem{service: svc}
		}
		cmd = m.ServiceList.SetItems(items)
		return m, cmd

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if !m.ManualMode && !m.Scanning {
		m.ServiceList, cmd = m.ServiceList.Update(msg)
	}
	return m, cmd
}

// updateNormalMode handles keys on the result list. Keys it does not handle
// fall through to the list for navigation.
func (m PickerModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.Keys.Enter):
		if m.ServiceList.SelectedItem() != nil {
			m.Selected = true
			return m, tea.Quit, true
		}
		return m, nil, true

	case key.Matches(msg, m.Keys.Rescan):
		if m.Scanning {
			return m, nil, true
		}
		m.Err = nil
		return m, tea.Batch(
			m.ServiceList.SetItems(nil),
			func() tea.Msg { return scanStartMsg{} },
			m.scanCmd(),
			m.Spinner.Tick,
		), true

	case key.Matches(msg, m.Keys.Manual):
		m.ManualMode = true
		m.Err = nil
		m.URLInput.SetValue("")
		return m, m.URLInput.Focus(), true
	}
	return m, nil, false
}

// updateManualMode handles keyboard input while typing a URL
func (m PickerModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.ManualKeys.Cancel), msg.Type == tea.KeyCtrlC:
		m.ManualMode = false
		m.URLInput.SetValue("")
		m.URLInput.Blur()
		return m, nil

	case key.Matches(msg, m.ManualKeys.Confirm):
		value := strings.TrimSpace(m.URLInput.Value())
		if value == "" {
			return m, nil
		}
		svc, err := manualService(value)
		if err != nil {
			m.Err = err
			return m, nil
		}
		items := append([]list.Item{serviceItem{service: svc}}, m.ServiceList.Items()...)
		cmd := m.ServiceList.SetItems(items)
		m.ServiceList.Select(0)
		m.ManualMode = false
		m.URLInput.SetValue("")
		m.URLInput.Blur()
		return m, cmd
	}

	var cmd tea.Cmd
	m.URLInput, cmd = m.URLInput.Update(msg)
	return m, cmd
}

// manualService builds a list entry from a typed URL.
func manualService(raw string) (*discovery.Service, error) {
	u, err := transport.ParseURL(raw)
	if err != nil {
		return nil, err
	}
	port := discovery.DefaultPort
	if p, err := strconv.Atoi(u.Port()); err == nil {
		port = p
	}
	return &discovery.Service{
		Instance:     "Manual: " + raw,
		Hostname:     u.Hostname(),
		IP:           u.Hostname(),
		Port:         port,
		Path:         u.RequestURI(),
		DiscoveredAt: time.Now(),
	}, nil
}

// View renders the picker
func (m PickerModel) View() string {
	width := m.Width
	if width == 0 {
		width = 72
	}

	var content, helpText string
	switch {
	case m.ManualMode:
		content = m.renderManualEntry()
		helpText = m.Help.View(m.ManualKeys)
	case m.Scanning:
		content = m.renderScanning(width)
		helpText = m.Help.View(m.Keys)
	default:
		content = m.renderResults()
		helpText = m.Help.View(m.Keys)
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		TitleStyle.Render(AppName),
		"  ",
		SubtitleStyle.Render("discover "+discovery.ServiceType),
	)
	return renderContainer(header, content, helpText, m.Width, m.Height)
}

// renderScanning renders a centered scan progress display
func (m PickerModel) renderScanning(width int) string {
	elapsed := time.Since(m.ScanStartTime)
	fraction := min(1, elapsed.Seconds()/m.ScanTimeout.Seconds())

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(m.Spinner.View()+" SEARCHING FOR SERVICES"),
		"",
		SubtitleStyle.Render("Browsing "+discovery.ServiceType+" on the local network..."),
		"",
		m.ProgressBar.ViewAs(fraction),
		"",
		SubtitleStyle.Render(fmt.Sprintf("Elapsed: %ds", int(elapsed.Seconds()))),
		"",
	)
	return lipgloss.Place(width-4, 0, lipgloss.Center, lipgloss.Top, content)
}

// renderResults renders the service list or an empty/error notice
func (m PickerModel) renderResults() string {
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case m.Err != nil:
		b.WriteString(ErrorLineStyle.Render("  ✗ Scan failed: " + m.Err.Error()))
		b.WriteString("\n\n")
		b.WriteString("  Press 'm' to enter a URL or 'r' to rescan.\n")
	case len(m.ServiceList.Items()) == 0:
		b.WriteString(lipgloss.NewStyle().Foreground(WarningColor).Bold(true).
			Render("  ⚠ No services found on your network"))
		b.WriteString("\n\n")
		b.WriteString("  Servers must advertise " + discovery.ServiceType + " over mDNS.\n")
		b.WriteString("  Press 'm' to enter a URL or 'r' to rescan.\n")
	default:
		b.WriteString(m.ServiceList.View())
	}
	return b.String()
}

// renderManualEntry renders the URL entry dialog
func (m PickerModel) renderManualEntry() string {
	var b strings.Builder
	b.WriteString(SubtitleStyle.Render("Enter a WebSocket URL"))
	b.WriteString("\n\n  URL: ")
	b.WriteString(m.URLInput.View())
	b.WriteString("\n")
	if m.Err != nil {
		b.WriteString("\n")
		b.WriteString(ErrorLineStyle.Render("  " + m.Err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

// SelectedService returns the chosen service, or nil if the user quit.
func (m PickerModel) SelectedService() *discovery.Service {
	if !m.Selected {
		return nil
	}
	if item, ok := m.ServiceList.SelectedItem().(serviceItem); ok {
		return item.service
	}
	return nil
}
