package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ProcessDelimiter separates entries in the rendered process summary. It is
// shared by the CSV log and the console report so both show the same text.
const ProcessDelimiter = "; "

// TimeLayout is the second-resolution local timestamp format used in log
// rows and console output.
const TimeLayout = "2006-01-02T15:04:05"

// Process is one entry in a snapshot's top list.
type Process struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
}

// String renders one process as it appears in logs and on the console.
func (p Process) String() string {
	return fmt.Sprintf("%s[pid=%d]: CPU=%.1f%%, MEM=%.1f%%",
		p.Name, p.PID, p.CPUPercent, p.MemoryPercent)
}

// Snapshot is one immutable sample of system and process metrics.
type Snapshot struct {
	Timestamp     time.Time `json:"timestamp"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	DiskPercent   float64   `json:"disk_percent"`
	TopProcesses  []Process `json:"top_processes"`
}

// Summary joins the top processes into the single display string shared by
// the CSV log and the console report.
func (s Snapshot) Summary() string {
	parts := make([]string, len(s.TopProcesses))
	for i, p := range s.TopProcesses {
		parts[i] = p.String()
	}
	return strings.Join(parts, ProcessDelimiter)
}

// ClampPercent forces v into [0, 100].
func ClampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// TopN sorts procs descending by CPU usage and returns at most n entries.
// The sort is stable, so ties keep enumeration order. Sorts in place.
func TopN(procs []Process, n int) []Process {
	sort.SliceStable(procs, func(i, j int) bool {
		return procs[i].CPUPercent > procs[j].CPUPercent
	})
	if n >= 0 && len(procs) > n {
		procs = procs[:n]
	}
	return procs
}
