// Package monitor drives the collect → log → report loop in a background
// goroutine with cooperative, bounded-latency shutdown.
package monitor

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hostpulse/hostpulse/internal/model"
	"github.com/hostpulse/hostpulse/internal/report"
)

// Collector produces one snapshot per call.
type Collector interface {
	Collect(ctx context.Context) (model.Snapshot, error)
}

// Appender persists one snapshot per call.
type Appender interface {
	Append(model.Snapshot) error
}

// State of the sampling loop.
type State int

const (
	Idle State = iota
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "idle"
	}
}

const (
	// stopPoll bounds how long a stop request can go unobserved mid-sleep.
	stopPoll    = 100 * time.Millisecond
	joinTimeout = 5 * time.Second
	// maxAppendFailures ends the loop rather than silently dropping samples.
	maxAppendFailures = 3
)

// Monitor owns one background sampling goroutine. Each instance carries its
// own stop signal and state, so independent monitors can coexist.
type Monitor struct {
	interval  time.Duration
	collector Collector
	sink      Appender
	out       io.Writer
	logger    zerolog.Logger

	mu    sync.Mutex
	state State
	stop  chan struct{}
	done  chan struct{}
	subs  []chan model.Snapshot
}

func New(interval time.Duration, c Collector, sink Appender, out io.Writer, logger zerolog.Logger) *Monitor {
	return &Monitor{
		interval:  interval,
		collector: c,
		sink:      sink,
		out:       out,
		logger:    logger,
	}
}

// State reports the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe returns a channel receiving each tick's snapshot. Sends are
// non-blocking: a slow receiver misses snapshots instead of stalling the loop.
func (m *Monitor) Subscribe() <-chan model.Snapshot {
	ch := make(chan model.Snapshot, 1)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// Start launches the sampling loop. Calling Start while the loop is already
// running is a no-op that reports the existing state.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.state == Running {
		m.mu.Unlock()
		m.logger.Info().Msg("monitor already running")
		return
	}
	m.state = Running
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	stop, done := m.stop, m.done
	m.mu.Unlock()

	m.logger.Info().Dur("interval", m.interval).Msg("monitor started")
	go m.loop(stop, done)
}

// Stop signals the loop and waits up to joinTimeout for it to exit. The
// monitor settles in Idle even if the goroutine never confirmed (best-effort
// join); a tick in flight always runs to completion first.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.state != Running {
		m.mu.Unlock()
		return
	}
	m.state = Stopping
	close(m.stop)
	done := m.done
	m.mu.Unlock()

	select {
	case <-done:
	case <-time.After(joinTimeout):
		m.logger.Warn().Msg("sampling goroutine did not confirm exit in time")
	}

	m.mu.Lock()
	// settle Idle only if no newer Start superseded this run
	if m.done == done {
		m.state = Idle
	}
	m.mu.Unlock()
	m.logger.Info().Msg("monitor stopped")
}

func (m *Monitor) loop(stop, done chan struct{}) {
	defer func() {
		close(done)
		m.mu.Lock()
		// only reset if no newer run superseded this one
		if m.done == done && m.state == Running {
			m.state = Idle
		}
		m.mu.Unlock()
	}()

	var appendFailures int
	for {
		select {
		case <-stop:
			return
		default:
		}

		if err := m.tick(); err != nil {
			appendFailures++
			if appendFailures >= maxAppendFailures {
				m.logger.Error().Int("failures", appendFailures).
					Msg("stopping after repeated log write failures")
				return
			}
		} else {
			appendFailures = 0
		}

		if !m.sleep(stop) {
			return
		}
	}
}

// tick runs one collect → log → report cycle. The writer runs before the
// reporter so persistence precedes any display. A collect error drops the
// whole tick: no row, no console output.
func (m *Monitor) tick() error {
	snap, err := m.collector.Collect(context.Background())
	if err != nil {
		m.logger.Error().Err(err).Msg("collect failed, skipping tick")
		return nil
	}
	if err := m.sink.Append(snap); err != nil {
		m.logger.Error().Err(err).Msg("log write failed, dropping tick output")
		return err
	}
	fmt.Fprintln(m.out, report.Render(snap))
	m.publish(snap)
	return nil
}

// sleep waits out the interval in short slices so a stop request is honored
// within roughly stopPoll. Returns false once stop is signaled.
func (m *Monitor) sleep(stop chan struct{}) bool {
	deadline := time.Now().Add(m.interval)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return true
		}
		slice := stopPoll
		if remaining < slice {
			slice = remaining
		}
		select {
		case <-stop:
			return false
		case <-time.After(slice):
		}
	}
}

func (m *Monitor) publish(s model.Snapshot) {
	m.mu.Lock()
	subs := m.subs
	m.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- s:
		default:
		}
	}
}
