package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/radioactivebrix/squarebot/pkg/robot"
	"github.com/radioactivebrix/squarebot/pkg/sim"
)

func newRobot(left, right *sim.ScriptedSensor) *robot.Robot {
	return &robot.Robot{
		LeftSensor:  robot.Attach[robot.ReflectanceSensor](left),
		RightSensor: robot.Attach[robot.ReflectanceSensor](right),
	}
}

func TestNew_MissingSensor(t *testing.T) {
	r := &robot.Robot{LeftSensor: robot.Attach[robot.ReflectanceSensor](sim.NewScriptedSensor(50))}
	if _, err := New(r, Config{}); !errors.Is(err, robot.ErrMissingHardware) {
		t.Errorf("New() error = %v, want ErrMissingHardware", err)
	}
}

func TestNew_DefaultHz(t *testing.T) {
	m, err := New(newRobot(sim.NewScriptedSensor(50), sim.NewScriptedSensor(50)), Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.Hz() != 20 {
		t.Errorf("Hz() = %d, want 20", m.Hz())
	}
}

func TestStep(t *testing.T) {
	tests := []struct {
		name        string
		left, right float64
		want        State
	}{
		{"both white", 80, 85, State{Left: 80, Right: 85, Difference: 5}},
		{"left on line", 12, 70, State{Left: 12, Right: 70, Difference: 58, LeftBelow: true}},
		{"both on line", 10, 15, State{Left: 10, Right: 15, Difference: 5, LeftBelow: true, RightBelow: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(newRobot(sim.NewScriptedSensor(tt.left), sim.NewScriptedSensor(tt.right)), Config{Threshold: 20})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			m.step(context.Background())

			got := <-m.States()
			got.Timestamp = time.Time{}
			if got != tt.want {
				t.Errorf("state = %+v, want %+v", got, tt.want)
			}
			if last := m.Last(); last.Left != tt.left {
				t.Errorf("Last().Left = %f, want %f", last.Left, tt.left)
			}
		})
	}
}

func TestStep_Error(t *testing.T) {
	right := sim.NewScriptedSensor(50)
	unplugged := errors.New("unplugged")
	right.Fail(unplugged)
	m, err := New(newRobot(sim.NewScriptedSensor(50), right), Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m.step(context.Background())
	got := <-m.States()
	if !errors.Is(got.Error, unplugged) {
		t.Errorf("state error = %v, want %v", got.Error, unplugged)
	}
	select {
	case msg := <-m.Logs():
		if msg == "" {
			t.Error("empty log message")
		}
	default:
		t.Error("sensor error was not logged")
	}
}

func TestSendState_KeepsLatest(t *testing.T) {
	m, err := New(newRobot(sim.NewScriptedSensor(50), sim.NewScriptedSensor(50)), Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 1; i <= 3; i++ {
		m.sendState(State{Left: float64(i)})
	}
	if got := <-m.States(); got.Left != 3 {
		t.Errorf("state Left = %f, want 3", got.Left)
	}
}

func TestStart(t *testing.T) {
	m, err := New(newRobot(sim.NewScriptedSensor(40), sim.NewScriptedSensor(45)), Config{Hz: 200})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	select {
	case s := <-m.States():
		if s.Left != 40 || s.Right != 45 {
			t.Errorf("state = %+v, want (40, 45)", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no state within 2s")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Start() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
