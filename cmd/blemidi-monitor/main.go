// Command blemidi-monitor is a terminal UI for watching a single BLE
// MIDI input peripheral: pick a port, connect, and watch decoded
// messages stream in. With -http it also mounts the admin status
// server so /metrics and /ports are reachable while the TUI runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bleportable/blemidi/blemidi"
	"github.com/bleportable/blemidi/bleport"
	"github.com/bleportable/blemidi/internal/admin"
	"github.com/bleportable/blemidi/internal/config"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#4B9CD3")).
			Padding(0, 2).
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4B5563")).
			Padding(0, 2)

	logStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#9CA3AF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#34D399")).
		Bold(true)
)

type portItem struct{ port bleport.Port }

func (i portItem) Title() string       { return i.port.Name }
func (i portItem) Description() string { return i.port.ID() }
func (i portItem) FilterValue() string { return i.port.Name }

type view int

const (
	viewPortList view = iota
	viewStream
)

type portsScannedMsg struct{ ports []bleport.Port }

type connectedMsg struct {
	conn *blemidi.InputConnection
	err  error
}

type midiEventMsg struct {
	timestamp int64
	message   []byte
}

type model struct {
	in       *blemidi.MidiInput
	metrics  *admin.Metrics
	list     list.Model
	log      viewport.Model
	logLines []string
	events   chan midiEventMsg
	current  view
	status   string
	statusOK bool
	conn     *blemidi.InputConnection
	width    int
	height   int
}

func newModel(in *blemidi.MidiInput, metrics *admin.Metrics) model {
	l := list.New(nil, list.NewDefaultDelegate(), 76, 16)
	l.Title = "BLE MIDI ports"
	l.SetShowStatusBar(false)

	lg := viewport.New(76, 16)
	lg.Style = logStyle
	lg.SetContent("Waiting for messages...")

	return model{
		in:      in,
		metrics: metrics,
		list:    l,
		log:     lg,
		events:  make(chan midiEventMsg, 256),
		current: viewPortList,
		status:  "scanning...",
	}
}

func (m model) Init() tea.Cmd {
	return m.scanPorts()
}

func (m model) scanPorts() tea.Cmd {
	return func() tea.Msg {
		return portsScannedMsg{ports: m.in.Ports()}
	}
}

func (m model) connect(port bleport.Port) tea.Cmd {
	return func() tea.Msg {
		conn, err := m.in.Connect(port, func(timestamp int64, message []byte, _ interface{}) {
			if m.metrics != nil {
				m.metrics.RecordIn(1)
			}
			select {
			case m.events <- midiEventMsg{timestamp: timestamp, message: append([]byte(nil), message...)}:
			default:
			}
		}, nil)
		return connectedMsg{conn: conn, err: err}
	}
}

func waitForEvent(events chan midiEventMsg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(m.width-4, m.height-8)
		m.log.Width = m.width - 4
		m.log.Height = m.height - 8

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.conn != nil {
				m.conn.Close()
			}
			return m, tea.Quit
		case "r":
			if m.current == viewPortList {
				m.status = "scanning..."
				return m, m.scanPorts()
			}
		case "enter":
			if m.current == viewPortList {
				if item, ok := m.list.SelectedItem().(portItem); ok {
					m.status = fmt.Sprintf("connecting to %s...", item.port.Name)
					m.statusOK = false
					return m, m.connect(item.port)
				}
			}
		case "esc":
			if m.current == viewStream {
				if m.conn != nil {
					m.conn.Close()
					m.conn = nil
				}
				m.current = viewPortList
				m.status = "scanning..."
				return m, m.scanPorts()
			}
		}

	case portsScannedMsg:
		items := make([]list.Item, len(msg.ports))
		for i, p := range msg.ports {
			items[i] = portItem{port: p}
		}
		m.list.SetItems(items)
		m.status = fmt.Sprintf("%d port(s) found", len(msg.ports))
		m.statusOK = true

	case connectedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			m.statusOK = false
			return m, nil
		}
		m.conn = msg.conn
		m.current = viewStream
		m.status = "connected"
		m.statusOK = true
		return m, waitForEvent(m.events)

	case midiEventMsg:
		m.logLines = append(m.logLines, fmt.Sprintf("[%8dus] % X", msg.timestamp, msg.message))
		if len(m.logLines) > 500 {
			m.logLines = m.logLines[len(m.logLines)-500:]
		}
		m.log.SetContent(strings.Join(m.logLines, "\n"))
		m.log.GotoBottom()
		return m, waitForEvent(m.events)
	}

	var cmd tea.Cmd
	switch m.current {
	case viewPortList:
		m.list, cmd = m.list.Update(msg)
	case viewStream:
		m.log, cmd = m.log.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	header := headerStyle.Width(m.widthOr(80)).Render(" blemidi-monitor")

	status := m.status
	if m.statusOK {
		status = okStyle.Render(status)
	} else if status != "" {
		status = errorStyle.Render(status)
	}
	footer := footerStyle.Width(m.widthOr(80)).Render(
		"↑/↓ select · enter connect · r rescan · esc back · q quit  |  " + status,
	)

	var body string
	switch m.current {
	case viewPortList:
		body = m.list.View()
	case viewStream:
		body = m.log.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m model) widthOr(fallback int) int {
	if m.width > 0 {
		return m.width
	}
	return fallback
}

func main() {
	clientName := flag.String("client-name", "blemidi-monitor", "client name reported to the façade")
	httpAddr := flag.String("http", "", "if set, also serve the admin HTTP status surface on this address")
	flag.Parse()

	cfg := config.Load()
	if *httpAddr == "" {
		*httpAddr = cfg.HTTPAddr
	}

	in, err := blemidi.NewMidiInput(*clientName)
	if err != nil {
		log.Fatalf("blemidi-monitor: %v", err)
	}

	metrics := admin.NewMetrics(prometheus.DefaultRegisterer)
	m := newModel(in, metrics)

	if *httpAddr != "" {
		server := admin.NewServer(in, metrics)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := server.Run(ctx, *httpAddr); err != nil {
				log.Printf("blemidi-monitor: admin server: %v", err)
			}
		}()
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("blemidi-monitor: %v", err)
	}
}
