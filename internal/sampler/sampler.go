// Package sampler collects host-wide and per-process utilization snapshots
// via gopsutil.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/hostpulse/hostpulse/internal/model"
)

// Sampler builds Snapshots. System CPU usage is the delta since the previous
// Collect call (gopsutil keeps that state internally), so the reading covers
// roughly one sampling interval.
type Sampler struct {
	topN   int
	logger zerolog.Logger
}

func New(topN int, logger zerolog.Logger) *Sampler {
	return &Sampler{topN: topN, logger: logger}
}

// Collect gathers one snapshot. A failure reading any system-wide metric
// aborts the whole collect; per-process failures only drop that process.
func (s *Sampler) Collect(ctx context.Context) (model.Snapshot, error) {
	now := time.Now()

	cpuPcts, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("query cpu: %w", err)
	}
	var cpuPct float64
	if len(cpuPcts) > 0 {
		cpuPct = cpuPcts[0]
	}

	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("query memory: %w", err)
	}

	du, err := disk.UsageWithContext(ctx, rootPath())
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("query disk %s: %w", rootPath(), err)
	}

	top, err := s.topProcesses(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}

	return model.Snapshot{
		Timestamp:     now,
		CPUPercent:    model.ClampPercent(cpuPct),
		MemoryPercent: model.ClampPercent(vmem.UsedPercent),
		DiskPercent:   model.ClampPercent(du.UsedPercent),
		TopProcesses:  top,
	}, nil
}

// skipReason classifies why a process was left out of the top list.
type skipReason string

const (
	skipVanished skipReason = "vanished"
	skipDenied   skipReason = "denied"
	skipOther    skipReason = "other"
)

func classify(err error) skipReason {
	switch {
	case errors.Is(err, process.ErrorProcessNotRunning), errors.Is(err, fs.ErrNotExist):
		return skipVanished
	case errors.Is(err, fs.ErrPermission):
		return skipDenied
	default:
		return skipOther
	}
}

func (s *Sampler) topProcesses(ctx context.Context) ([]model.Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}

	entries := make([]model.Process, 0, len(procs))
	skips := make(map[skipReason]int)
	for _, p := range procs {
		entry, reason, ok := readProcess(ctx, p.Pid, p)
		if !ok {
			skips[reason]++
			continue
		}
		entries = append(entries, entry)
	}
	if len(skips) > 0 {
		ev := s.logger.Debug()
		for reason, n := range skips {
			ev = ev.Int(string(reason), n)
		}
		ev.Msg("processes skipped during enumeration")
	}

	return model.TopN(entries, s.topN), nil
}

// proc is the per-process read surface. *process.Process satisfies it.
type proc interface {
	NameWithContext(ctx context.Context) (string, error)
	CPUPercentWithContext(ctx context.Context) (float64, error)
	MemoryPercentWithContext(ctx context.Context) (float32, error)
}

// readProcess reads one process entry. A process that vanished or denied
// access is reported as a skip; a reading that merely failed or is absent
// (common for CPU on first sight) is coerced to 0 so the fields are never
// missing. A process without a readable name stays in the list as "unknown".
func readProcess(ctx context.Context, pid int32, p proc) (model.Process, skipReason, bool) {
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return model.Process{}, classify(err), false
	}
	if name == "" {
		name = "unknown"
	}

	cpuPct, err := p.CPUPercentWithContext(ctx)
	if err != nil {
		if r := classify(err); r == skipVanished || r == skipDenied {
			return model.Process{}, r, false
		}
		cpuPct = 0
	}
	memPct, err := p.MemoryPercentWithContext(ctx)
	if err != nil {
		if r := classify(err); r == skipVanished || r == skipDenied {
			return model.Process{}, r, false
		}
		memPct = 0
	}

	// Per-process CPU may legitimately exceed 100 on multi-core hosts.
	return model.Process{
		PID:           pid,
		Name:          name,
		CPUPercent:    max(cpuPct, 0),
		MemoryPercent: max(float64(memPct), 0),
	}, "", true
}

func rootPath() string {
	if runtime.GOOS == "windows" {
		return `C:\`
	}
	return "/"
}
