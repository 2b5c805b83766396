// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Grid Tools

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gridtools/currentcost/pkg/ccmsg"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Live dashboard of readings, history, and decode statistics",
	Long: `Terminal dashboard showing the latest power reading, per-phase values,
temperature, history availability, decode statistics, and an event log.

Supports both serial and WebSocket connections.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// Event log entry
type logEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// Messages
type tickMsg time.Time
type fragmentMsg struct {
	msg       *ccmsg.Message
	decodeErr error
	anomalies []ccmsg.ValidationError
}
type connClosedMsg struct{}

// TUI model
type model struct {
	connInfo      string
	stats         *ccmsg.Statistics
	last          *ccmsg.Message
	eventLog      []logEntry
	maxLogEntries int
	logView       viewport.Model
	width         int
	height        int
	connClosed    bool
	quitting      bool
}

func initialModel(connInfo string) model {
	return model{
		connInfo:      connInfo,
		stats:         ccmsg.NewStatistics(),
		eventLog:      make([]logEntry, 0),
		maxLogEntries: 200,
		logView:       viewport.New(80, 10),
		width:         80,
		height:        24,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.logView, cmd = m.logView.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLog()

	case tickMsg:
		m.stats.CalculateRates()
		return m, tickCmd()

	case connClosedMsg:
		m.connClosed = true
		m.addLogEntry("Connection closed", true)
		m.refreshLog()

	case fragmentMsg:
		if msg.decodeErr != nil {
			m.stats.Update(nil, msg.decodeErr, nil)
			m.addLogEntry(fmt.Sprintf("DECODE ERROR: %v", msg.decodeErr), true)
		} else if msg.msg != nil {
			m.stats.Update(msg.msg, nil, msg.anomalies)
			m.last = msg.msg
			m.addLogEntry(describeMessage(msg.msg), false)
			for _, anomaly := range msg.anomalies {
				m.addLogEntry(fmt.Sprintf("ANOMALY: %s", anomaly.Message), true)
			}
		}
		m.refreshLog()
	}

	return m, nil
}

// describeMessage condenses a decoded message into one event-log line
func describeMessage(msg *ccmsg.Message) string {
	parts := []string{msg.Variant().String()}
	if v, ok := msg.Value(); ok {
		units, _ := msg.Units()
		parts = append(parts, fmt.Sprintf("%s %s", ccmsg.FormatValue(v), units))
	}
	if msg.HasHistory() {
		parts = append(parts, fmt.Sprintf("history (%d sensors)", len(msg.History())))
	}
	return strings.Join(parts, ", ")
}

func (m *model) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, logEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})

	// Keep only last N entries
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func (m *model) resizeLog() {
	logHeight := m.height - 16
	if logHeight < 5 {
		logHeight = 5
	}
	m.logView.Width = m.width - 4
	m.logView.Height = logHeight
	m.refreshLog()
}

func (m *model) refreshLog() {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	infoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	var b strings.Builder
	for _, entry := range m.eventLog {
		timestamp := entry.timestamp.Format("15:04:05.000")
		style := infoStyle
		marker := "·"
		if entry.isError {
			style = errorStyle
			marker = "✗"
		}
		fmt.Fprintf(&b, "%s %s\n", headerStyle.Render(timestamp), style.Render(marker+" "+entry.message))
	}
	m.logView.SetContent(b.String())
	m.logView.GotoBottom()
}

func (m model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("CCWATCH - ENERGY MONITOR"))
	s.WriteString("\n")
	status := "receiving"
	if m.connClosed {
		status = "closed"
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("Connection: %s (%s) | Press 'q' to quit", m.connInfo, status)))
	s.WriteString("\n\n")

	// Statistics
	m.stats.CalculateRates()
	stats := strings.Builder{}
	stats.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		labelStyle.Render("Total:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.TotalMessages)),
		labelStyle.Render("Classic:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.ClassicMessages)),
		labelStyle.Render("Envy:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.EnvyMessages)),
	))
	stats.WriteString(fmt.Sprintf("%s %s   %s %s\n",
		labelStyle.Render("Malformed:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.MalformedMessages)),
		labelStyle.Render("Anomalous:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.AnomalousValues)),
	))
	stats.WriteString(fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("Message Rate:"), valueStyle.Render(fmt.Sprintf("%.1f msgs/s", m.stats.MessageRate)),
		labelStyle.Render("Error Rate:"), valueStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate)),
	))
	s.WriteString(boxStyle.Render(stats.String()))
	s.WriteString("\n\n")

	// Latest reading
	if m.last != nil {
		s.WriteString(labelStyle.Render("Latest Reading:"))
		s.WriteString("\n")

		reading := strings.Builder{}
		reading.WriteString(fmt.Sprintf("%s %s\n",
			labelStyle.Render("Device:"),
			valueStyle.Render(fmt.Sprintf("%s %s", m.last.DeviceName(), m.last.DeviceVersion())),
		))

		if total, ok := m.last.Value(); ok {
			units, _ := m.last.Units()
			reading.WriteString(fmt.Sprintf("%s %s\n",
				labelStyle.Render("Total:"),
				valueStyle.Render(fmt.Sprintf("%s %s", ccmsg.FormatValue(total), units)),
			))
			for ch := 1; ch <= ccmsg.MaxChannels; ch++ {
				if v, ok := m.last.ChannelValue(ch); ok {
					reading.WriteString(fmt.Sprintf("%s %s\n",
						labelStyle.Render(fmt.Sprintf("Phase %d:", ch)),
						valueStyle.Render(fmt.Sprintf("%s %s", ccmsg.FormatValue(v), units)),
					))
				}
			}
		}

		if temp, ok := m.last.Temperature(); ok {
			reading.WriteString(fmt.Sprintf("%s %s\n",
				labelStyle.Render("Temperature:"),
				valueStyle.Render(fmt.Sprintf("%.1f°C", temp)),
			))
		}

		uptime := time.Duration(m.last.BootTimeSeconds()) * time.Second
		reading.WriteString(fmt.Sprintf("%s %s",
			labelStyle.Render("Meter Uptime:"),
			valueStyle.Render(uptime.String()),
		))

		if m.last.HasHistory() {
			reading.WriteString(fmt.Sprintf("\n%s %s",
				labelStyle.Render("History:"),
				valueStyle.Render(fmt.Sprintf("%d sensors", len(m.last.History()))),
			))
		}

		s.WriteString(boxStyle.Render(reading.String()))
		s.WriteString("\n\n")
	}

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")
	s.WriteString(boxStyle.Width(m.width - 4).Render(m.logView.View()))

	return s.String()
}

func runTUI(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	decoder := ccmsg.NewDecoder()
	p := tea.NewProgram(initialModel(connInfo))

	// Reader goroutine
	go func() {
		scanner := newFragmentScanner(conn)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			msg, err := decoder.Decode(line)
			if err != nil {
				p.Send(fragmentMsg{decodeErr: err})
				continue
			}
			p.Send(fragmentMsg{msg: msg, anomalies: ccmsg.ValidateMessage(msg)})
		}
		p.Send(connClosedMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}

	return nil
}
