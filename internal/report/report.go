// Package report renders snapshots as human-readable terminal text.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hostpulse/hostpulse/internal/model"
)

var (
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	separator = strings.Repeat("-", 60)
)

// Render formats one snapshot: separator, labeled metric lines, then the
// process summary re-split into bullets. Pure function, no trailing newline.
func Render(s model.Snapshot) string {
	var b strings.Builder
	b.WriteString(separator)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Time:         "), s.Timestamp.Format(model.TimeLayout))
	fmt.Fprintf(&b, "%s %.1f%%\n", labelStyle.Render("CPU Usage:    "), s.CPUPercent)
	fmt.Fprintf(&b, "%s %.1f%%\n", labelStyle.Render("Memory Usage: "), s.MemoryPercent)
	fmt.Fprintf(&b, "%s %.1f%%\n", labelStyle.Render("Disk Usage:   "), s.DiskPercent)
	b.WriteString("Top processes (by CPU):\n")

	summary := s.Summary()
	if summary == "" {
		b.WriteString(subtleStyle.Render("  (no process info available)"))
		return b.String()
	}
	for _, entry := range strings.Split(summary, model.ProcessDelimiter) {
		b.WriteString("  - ")
		b.WriteString(entry)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
