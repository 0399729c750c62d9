package sim_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/radioactivebrix/squarebot/pkg/linesquare"
	"github.com/radioactivebrix/squarebot/pkg/robot"
	"github.com/radioactivebrix/squarebot/pkg/sim"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestStepClock(t *testing.T) {
	var c sim.StepClock
	ctx := context.Background()
	start := c.Now()

	for i := 0; i < 3; i++ {
		if err := c.Sleep(ctx, 10*time.Millisecond); err != nil {
			t.Fatalf("Sleep: %v", err)
		}
	}
	if c.Tick() != 3 {
		t.Errorf("Tick() = %d, want 3", c.Tick())
	}
	if got := c.Now().Sub(start); got != 30*time.Millisecond {
		t.Errorf("Now() advanced %v, want 30ms", got)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := c.Sleep(cancelled, time.Second); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep on cancelled context = %v, want context.Canceled", err)
	}
	if c.Tick() != 3 {
		t.Errorf("cancelled Sleep advanced the clock to tick %d", c.Tick())
	}
}

func TestCrossing(t *testing.T) {
	s := sim.Crossing(80, 15, 3)
	want := []float64{80, 80, 80, 15, 15}
	for i, w := range want {
		got, err := s.Reflection(context.Background())
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if got != w {
			t.Errorf("read %d = %f, want %f", i, got, w)
		}
	}
	if s.Reads() != len(want) {
		t.Errorf("Reads() = %d, want %d", s.Reads(), len(want))
	}
}

func TestRecordingMotor(t *testing.T) {
	var clock sim.StepClock
	m := sim.NewRecordingMotor(&clock)
	ctx := context.Background()

	m.Run(ctx, 100)
	clock.Sleep(ctx, time.Millisecond)
	clock.Sleep(ctx, time.Millisecond)
	m.Stop(ctx)

	stops := m.CallsOf(sim.CallStop)
	if len(stops) != 1 || stops[0].Tick != 2 {
		t.Errorf("stops = %+v, want one stop at tick 2", stops)
	}

	boom := errors.New("stalled")
	m.FailOn(sim.CallRunAngle, boom)
	if err := m.RunAngle(ctx, 50, -10, false); !errors.Is(err, boom) {
		t.Errorf("RunAngle() = %v, want %v", err, boom)
	}
	last, ok := m.Last()
	if !ok || last.Kind != sim.CallRunAngle || last.Angle != -10 {
		t.Errorf("Last() = %+v, %v", last, ok)
	}
}

func TestMat_Profile(t *testing.T) {
	cfg := sim.DefaultMatConfig()
	cfg.LineMM = 0
	cfg.SkewMM = 0
	cfg.EdgeMM = 4
	m := sim.NewMat(cfg)
	r := m.Robot()
	left, _ := r.LeftWheel.Get()
	ctx := context.Background()

	// 1 mm per 10 ms at this speed.
	speed := linesquare.MotorSpeed(100, cfg.Specs.WheelDiameterMM)

	tests := []struct {
		at   float64 // mm
		want float64
	}{
		{2, 47.5},
		{10, 10},
		{26, 47.5},
		{30, 85},
	}

	if got := m.Reflectance(robot.Left); got != 85 {
		t.Errorf("Reflectance before moving = %f, want 85", got)
	}
	left.Run(ctx, speed)
	for _, tt := range tests {
		dt := time.Duration((tt.at - m.Position(robot.Left)) / 100 * float64(time.Second))
		m.Sleep(ctx, dt)
		if got := m.Reflectance(robot.Left); !approxEqual(got, tt.want, 0.01) {
			t.Errorf("Reflectance at %.0fmm = %f, want %f", tt.at, got, tt.want)
		}
	}
	if got := m.Reflectance(robot.Right); !approxEqual(got, 85, 0) {
		t.Errorf("right sensor moved with the left wheel: %f", got)
	}
}

func TestMat_Motion(t *testing.T) {
	cfg := sim.DefaultMatConfig()
	cfg.StopLagMM = 5
	m := sim.NewMat(cfg)
	r := m.Robot()
	left, _ := r.LeftWheel.Get()
	right, _ := r.RightWheel.Get()
	ctx := context.Background()
	circumference := math.Pi * cfg.Specs.WheelDiameterMM

	left.Run(ctx, 360)
	right.RunAngle(ctx, 90, -45, false)

	m.Sleep(ctx, 100*time.Millisecond)
	if got, want := m.Position(robot.Right), -9.0/360*circumference; !approxEqual(got, want, 1e-6) {
		t.Errorf("right position after 100ms = %f, want %f", got, want)
	}

	m.Sleep(ctx, 900*time.Millisecond)
	if got, want := m.Position(robot.Left), circumference; !approxEqual(got, want, 1e-6) {
		t.Errorf("left position after 1s = %f, want %f", got, want)
	}
	if got, want := m.Position(robot.Right), -45.0/360*circumference; !approxEqual(got, want, 1e-6) {
		t.Errorf("right position after move = %f, want %f", got, want)
	}

	left.Stop(ctx)
	if got, want := m.Position(robot.Left), circumference+5; !approxEqual(got, want, 1e-6) {
		t.Errorf("left position after stop = %f, want %f", got, want)
	}
	m.Sleep(ctx, time.Second)
	if got, want := m.Position(robot.Left), circumference+5; !approxEqual(got, want, 1e-6) {
		t.Errorf("stopped wheel kept moving: %f, want %f", got, want)
	}
}

func TestMat_RunAngleWait(t *testing.T) {
	m := sim.NewMat(sim.DefaultMatConfig())
	left, _ := m.Robot().LeftWheel.Get()
	start := m.Now()

	if err := left.RunAngle(context.Background(), 180, 90, true); err != nil {
		t.Fatalf("RunAngle: %v", err)
	}
	if got := m.Now().Sub(start); got != 500*time.Millisecond {
		t.Errorf("RunAngle waited %v, want 500ms", got)
	}
}

func TestMat_SquareOnLine(t *testing.T) {
	cfg := sim.DefaultMatConfig()
	cfg.EdgeMM = 0
	cfg.StopLagMM = 0
	cfg.LineMM = 50
	cfg.SkewMM = 10
	cfg.LineWidthMM = 30
	m := sim.NewMat(cfg)

	settings := linesquare.DefaultSettings()
	settings.DriveSpeed = 100
	c, err := linesquare.New(m.Robot(), settings, linesquare.WithClock(m))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := c.SquareOnLine(context.Background(), linesquare.Request{})
	if err != nil {
		t.Fatalf("SquareOnLine: %v", err)
	}
	if res.Outcome != linesquare.Aligned {
		t.Errorf("Outcome = %v, want aligned", res.Outcome)
	}
	if res.Left != cfg.Black || res.Right != cfg.Black {
		t.Errorf("readings = (%f, %f), want both %f", res.Left, res.Right, cfg.Black)
	}
	skew := m.Position(robot.Right) - m.Position(robot.Left)
	if !approxEqual(skew, cfg.SkewMM, 1.5) {
		t.Errorf("right wheel travelled %fmm more than left, want about %fmm", skew, cfg.SkewMM)
	}
}

func TestMat_SquareOnLine_Corrects(t *testing.T) {
	// Both wheels coast onto the far edge of the line, the left one deeper.
	cfg := sim.DefaultMatConfig()
	m := sim.NewMat(cfg)

	c, err := linesquare.New(m.Robot(), linesquare.DefaultSettings(), linesquare.WithClock(m))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := c.SquareOnLine(context.Background(), linesquare.Request{})
	if err != nil {
		t.Fatalf("SquareOnLine: %v", err)
	}
	if res.Outcome != linesquare.Aligned {
		t.Errorf("Outcome = %v, want aligned", res.Outcome)
	}
	if res.Attempts == 0 {
		t.Error("Attempts = 0, want at least one correction")
	}
	for _, side := range robot.AllSides() {
		if got := m.Reflectance(side); !approxEqual(got, cfg.Black, 1e-6) {
			t.Errorf("%s reflectance = %f, want %f", side, got, cfg.Black)
		}
	}
}

func TestMat_PlaceOnLine(t *testing.T) {
	cfg := sim.DefaultMatConfig()
	m := sim.NewMat(cfg)
	m.PlaceOnLine()
	for _, side := range robot.AllSides() {
		if got := m.Reflectance(side); !approxEqual(got, cfg.Black, 1e-9) {
			t.Errorf("%s reflectance on line = %f, want %f", side, got, cfg.Black)
		}
	}
}
