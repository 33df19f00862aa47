package sampler

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostpulse/hostpulse/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want skipReason
	}{
		{name: "not running", err: process.ErrorProcessNotRunning, want: skipVanished},
		{name: "wrapped not exist", err: fs.ErrNotExist, want: skipVanished},
		{name: "permission", err: fs.ErrPermission, want: skipDenied},
		{name: "anything else", err: errors.New("proc parse"), want: skipOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

type fakeProc struct {
	name    string
	nameErr error
	cpu     float64
	cpuErr  error
	mem     float32
	memErr  error
}

func (f fakeProc) NameWithContext(context.Context) (string, error) { return f.name, f.nameErr }
func (f fakeProc) CPUPercentWithContext(context.Context) (float64, error) {
	return f.cpu, f.cpuErr
}
func (f fakeProc) MemoryPercentWithContext(context.Context) (float32, error) {
	return f.mem, f.memErr
}

func TestReadProcess(t *testing.T) {
	tests := []struct {
		name     string
		proc     fakeProc
		want     model.Process
		wantSkip skipReason
		wantOK   bool
	}{
		{
			name:   "healthy readings",
			proc:   fakeProc{name: "chrome", cpu: 9.0, mem: 20.0},
			want:   model.Process{PID: 42, Name: "chrome", CPUPercent: 9.0, MemoryPercent: 20.0},
			wantOK: true,
		},
		{
			name:   "unavailable cpu reading coerced to zero",
			proc:   fakeProc{name: "fresh", cpuErr: errors.New("not yet sampled"), mem: 1.5},
			want:   model.Process{PID: 42, Name: "fresh", CPUPercent: 0, MemoryPercent: 1.5},
			wantOK: true,
		},
		{
			name:   "unavailable memory reading coerced to zero",
			proc:   fakeProc{name: "fresh", cpu: 2.0, memErr: errors.New("proc parse")},
			want:   model.Process{PID: 42, Name: "fresh", CPUPercent: 2.0, MemoryPercent: 0},
			wantOK: true,
		},
		{
			name:   "both readings unavailable",
			proc:   fakeProc{name: "fresh", cpuErr: errors.New("no cpu"), memErr: errors.New("no mem")},
			want:   model.Process{PID: 42, Name: "fresh", CPUPercent: 0, MemoryPercent: 0},
			wantOK: true,
		},
		{
			name:   "empty name resolves to unknown",
			proc:   fakeProc{name: "", cpu: 1.0, mem: 0.5},
			want:   model.Process{PID: 42, Name: "unknown", CPUPercent: 1.0, MemoryPercent: 0.5},
			wantOK: true,
		},
		{
			name:     "vanished during name read",
			proc:     fakeProc{nameErr: process.ErrorProcessNotRunning},
			wantSkip: skipVanished,
		},
		{
			name:     "vanished during cpu read",
			proc:     fakeProc{name: "gone", cpuErr: process.ErrorProcessNotRunning},
			wantSkip: skipVanished,
		},
		{
			name:     "denied during memory read",
			proc:     fakeProc{name: "guarded", memErr: fs.ErrPermission},
			wantSkip: skipDenied,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason, ok := readProcess(context.Background(), 42, tt.proc)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				assert.Equal(t, tt.wantSkip, reason)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestCollect runs against the real host. It asserts the snapshot contract,
// not any particular workload.
func TestCollect(t *testing.T) {
	const topN = 5
	s := New(topN, zerolog.New(io.Discard))

	snap, err := s.Collect(context.Background())
	require.NoError(t, err)

	assert.False(t, snap.Timestamp.IsZero())
	for name, v := range map[string]float64{
		"cpu":    snap.CPUPercent,
		"memory": snap.MemoryPercent,
		"disk":   snap.DiskPercent,
	} {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 100.0, name)
	}

	assert.LessOrEqual(t, len(snap.TopProcesses), topN)
	for i, p := range snap.TopProcesses {
		assert.NotEmpty(t, p.Name)
		assert.GreaterOrEqual(t, p.CPUPercent, 0.0)
		assert.GreaterOrEqual(t, p.MemoryPercent, 0.0)
		if i > 0 {
			assert.GreaterOrEqual(t, snap.TopProcesses[i-1].CPUPercent, p.CPUPercent,
				"top list must be sorted descending by CPU")
		}
	}
}

func TestCollectZeroTopN(t *testing.T) {
	s := New(0, zerolog.New(io.Discard))
	snap, err := s.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.TopProcesses)
}
