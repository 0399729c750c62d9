// Package monitor streams live reflectance readings from both line sensors.
package monitor

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/radioactivebrix/squarebot/pkg/robot"
)

// State is one snapshot of both sensors.
type State struct {
	Left       float64
	Right      float64
	Difference float64
	LeftBelow  bool // left reading is under the threshold
	RightBelow bool
	Timestamp  time.Time
	Error      error
}

// Monitor polls a robot's line sensors.
type Monitor struct {
	left      robot.ReflectanceSensor
	right     robot.ReflectanceSensor
	hz        int
	threshold float64

	mu      sync.RWMutex
	last    State
	running bool
	stateCh chan State
	logCh   chan string
}

// Config holds configuration for the monitor.
type Config struct {
	Hz        int
	Threshold float64
}

// New creates a monitor for r's sensors.
func New(r *robot.Robot, cfg Config) (*Monitor, error) {
	left, right, err := r.Sensors()
	if err != nil {
		return nil, err
	}
	if cfg.Hz <= 0 {
		cfg.Hz = 20
	}
	return &Monitor{
		left:      left,
		right:     right,
		hz:        cfg.Hz,
		threshold: cfg.Threshold,
		stateCh:   make(chan State, 1),
		logCh:     make(chan string, 10),
	}, nil
}

// States returns a channel that receives state updates.
func (m *Monitor) States() <-chan State {
	return m.stateCh
}

// Logs returns a channel that receives log messages.
func (m *Monitor) Logs() <-chan string {
	return m.logCh
}

// Hz returns the polling frequency.
func (m *Monitor) Hz() int {
	return m.hz
}

// Last returns the most recent state.
func (m *Monitor) Last() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

func (m *Monitor) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case m.logCh <- msg:
	default:
	}
}

// Start polls until ctx is done.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("already running")
	}
	m.running = true
	m.mu.Unlock()

	m.log("Monitoring sensors at %d Hz", m.hz)

	ticker := time.NewTicker(time.Second / time.Duration(m.hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			m.running = false
			m.mu.Unlock()
			m.log("Monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			m.step(ctx)
		}
	}
}

func (m *Monitor) step(ctx context.Context) {
	left, err := m.left.Reflection(ctx)
	if err != nil {
		m.log("Left sensor error: %v", err)
		m.sendState(State{Error: fmt.Errorf("read left sensor: %w", err), Timestamp: time.Now()})
		return
	}
	right, err := m.right.Reflection(ctx)
	if err != nil {
		m.log("Right sensor error: %v", err)
		m.sendState(State{Error: fmt.Errorf("read right sensor: %w", err), Timestamp: time.Now()})
		return
	}

	m.sendState(State{
		Left:       left,
		Right:      right,
		Difference: math.Abs(left - right),
		LeftBelow:  left < m.threshold,
		RightBelow: right < m.threshold,
		Timestamp:  time.Now(),
	})
}

func (m *Monitor) sendState(s State) {
	m.mu.Lock()
	m.last = s
	m.mu.Unlock()

	select {
	case m.stateCh <- s:
	default:
		// Replace the stale state.
		select {
		case <-m.stateCh:
		default:
		}
		select {
		case m.stateCh <- s:
		default:
		}
	}
}
