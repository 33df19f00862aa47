// Package ui renders live snapshots as a terminal dashboard.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hostpulse/hostpulse/internal/model"
)

// Model renders the latest snapshot from the monitor's subscription channel.
type Model struct {
	snaps  <-chan model.Snapshot
	latest model.Snapshot
	width  int
	height int
}

func New(snaps <-chan model.Snapshot) *Model {
	return &Model{snaps: snaps, width: 100, height: 40}
}

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/5, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m *Model) Init() tea.Cmd { return tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tickMsg:
		select {
		case snap, ok := <-m.snaps:
			if ok {
				m.latest = snap
			}
		default:
		}
		return m, tickCmd()
	}
	return m, nil
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1).
			MarginRight(1)
)

func (m *Model) View() string {
	s := m.latest
	header := titleStyle.Render("hostpulse") + "  " +
		subtleStyle.Render(s.Timestamp.Format("Mon Jan 2 15:04:05 MST 2006"))

	cpuCard := card("CPU", gaugeBar(s.CPUPercent, 28))
	memCard := card("Memory", gaugeBar(s.MemoryPercent, 28))
	diskCard := card("Disk", gaugeBar(s.DiskPercent, 28))

	topTable := card("Top processes (by CPU)", renderTable(s.TopProcesses))

	line1 := lipgloss.JoinHorizontal(lipgloss.Top, cpuCard, memCard, diskCard)
	return lipgloss.JoinVertical(lipgloss.Left, header, line1, topTable,
		subtleStyle.Render("q to quit"))
}

// Helpers
func gaugeBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int((pct / 100) * float64(width))
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat(gaugeFill, filled),
		strings.Repeat(gaugeEmpty, width-filled),
		pct)
}

func card(title, body string) string {
	return cardStyle.Render(labelStyle.Render(title) + "\n" + body)
}

func renderTable(rows []model.Process) string {
	if len(rows) == 0 {
		return subtleStyle.Render("(no process info available)")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %-7s %-6s %-6s\n", "name", "pid", "cpu", "mem")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-24s %-7d %6.1f %6.1f\n",
			truncate(r.Name, 24), r.PID, r.CPUPercent, r.MemoryPercent)
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Run starts the dashboard and blocks until the user quits.
func Run(snaps <-chan model.Snapshot) error {
	prog := tea.NewProgram(New(snaps), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
