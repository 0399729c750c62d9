// Package sim provides simulated hardware for tests and dry runs: scripted
// sensors and recording motors on a step clock, and a kinematic mat with a
// line on it.
package sim

import (
	"context"
	"sync"
	"time"
)

var epoch = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

// StepClock counts sleeps instead of waiting. Tick is the number of sleeps
// so far, so the k-th poll of a loop happens at tick k.
type StepClock struct {
	mu      sync.Mutex
	ticks   int
	elapsed time.Duration
}

// Now returns a virtual time advanced by every Sleep.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return epoch.Add(c.elapsed)
}

// Sleep advances the clock by d and one tick.
func (c *StepClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	c.elapsed += d
	return nil
}

// Tick returns the number of sleeps so far.
func (c *StepClock) Tick() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// Elapsed returns the total virtual time slept.
func (c *StepClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// ScriptedSensor returns one scripted reading per call and repeats the last
// reading once the script runs out.
type ScriptedSensor struct {
	mu     sync.Mutex
	values []float64
	reads  int
	err    error
}

// NewScriptedSensor returns a sensor that plays back values.
func NewScriptedSensor(values ...float64) *ScriptedSensor {
	return &ScriptedSensor{values: values}
}

// Crossing returns a sensor that reads before for the first at reads and
// after from then on.
func Crossing(before, after float64, at int) *ScriptedSensor {
	values := make([]float64, 0, at+1)
	for i := 0; i < at; i++ {
		values = append(values, before)
	}
	return NewScriptedSensor(append(values, after)...)
}

// Then appends readings to the script.
func (s *ScriptedSensor) Then(values ...float64) *ScriptedSensor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append(s.values, values...)
	return s
}

// Fail makes every later read return err.
func (s *ScriptedSensor) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Reflection returns the next scripted reading.
func (s *ScriptedSensor) Reflection(ctx context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	if len(s.values) == 0 {
		return 0, nil
	}
	v := s.values[min(s.reads, len(s.values)-1)]
	s.reads++
	return v, nil
}

// Reads returns the number of readings taken.
func (s *ScriptedSensor) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// CallKind names a motor command.
type CallKind string

const (
	CallRun      CallKind = "run"
	CallRunAngle CallKind = "run_angle"
	CallStop     CallKind = "stop"
)

// Call is one recorded motor command.
type Call struct {
	Kind  CallKind
	Speed float64
	Angle float64
	Wait  bool
	Tick  int
}

// RecordingMotor records every command it receives, stamped with the tick of
// its clock.
type RecordingMotor struct {
	mu    sync.Mutex
	clock *StepClock
	calls []Call
	fail  map[CallKind]error
}

// NewRecordingMotor returns a motor stamping calls with clock ticks.
func NewRecordingMotor(clock *StepClock) *RecordingMotor {
	return &RecordingMotor{clock: clock}
}

// FailOn makes commands of kind return err.
func (m *RecordingMotor) FailOn(kind CallKind, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail == nil {
		m.fail = make(map[CallKind]error)
	}
	m.fail[kind] = err
}

func (m *RecordingMotor) record(c Call) error {
	if m.clock != nil {
		c.Tick = m.clock.Tick()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
	return m.fail[c.Kind]
}

func (m *RecordingMotor) Run(ctx context.Context, speed float64) error {
	return m.record(Call{Kind: CallRun, Speed: speed})
}

func (m *RecordingMotor) RunAngle(ctx context.Context, speed, angle float64, wait bool) error {
	return m.record(Call{Kind: CallRunAngle, Speed: speed, Angle: angle, Wait: wait})
}

func (m *RecordingMotor) Stop(ctx context.Context) error {
	return m.record(Call{Kind: CallStop})
}

// Calls returns all recorded calls.
func (m *RecordingMotor) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallsOf returns the recorded calls of one kind.
func (m *RecordingMotor) CallsOf(kind CallKind) []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Last returns the most recent call, and false if there is none.
func (m *RecordingMotor) Last() (Call, bool) {
	calls := m.Calls()
	if len(calls) == 0 {
		return Call{}, false
	}
	return calls[len(calls)-1], true
}
