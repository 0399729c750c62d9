package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/radioactivebrix/squarebot/pkg/robot"
)

// MatConfig describes a straight line across the robot's path. Distances are
// in mm along the direction of travel, measured from each sensor's start
// position.
type MatConfig struct {
	Specs robot.Specs
	// LineMM is the distance from the left sensor to the near edge of the line.
	LineMM float64
	// SkewMM is how much farther the line is from the right sensor.
	SkewMM      float64
	LineWidthMM float64
	// EdgeMM is the width of the graded border on each side of the line.
	EdgeMM float64
	// StopLagMM is how far a running wheel coasts after Stop.
	StopLagMM float64
	White     float64
	Black     float64
	// Pace scales virtual sleeps into real ones. Zero runs as fast as possible.
	Pace float64
}

// DefaultMatConfig returns a mat with a 20 mm line skewed to the robot. The
// wheels coast far enough after stopping that a default run needs alignment
// corrections.
func DefaultMatConfig() MatConfig {
	return MatConfig{
		Specs:       robot.DefaultSpecs(),
		LineMM:      120,
		SkewMM:      15,
		LineWidthMM: 20,
		EdgeMM:      8,
		StopLagMM:   22,
		White:       85,
		Black:       10,
	}
}

// Mat simulates a robot driving over a line. It is the clock of the
// simulation: wheels only move while someone sleeps on it.
type Mat struct {
	mu     sync.Mutex
	cfg    MatConfig
	now    time.Time
	wheels map[robot.Side]*matWheel
	// attachments turn freely and have no effect on the sensors.
	attachments map[robot.Side]*matWheel
}

type matWheel struct {
	offset float64 // line distance for this side
	angle  float64 // degrees turned
	speed  float64 // continuous speed, deg/s
	target float64 // angle goal of a positioned move
	moving bool    // positioned move in progress
	step   float64 // speed of the positioned move, deg/s
}

// NewMat returns a mat with both wheels at their start positions.
func NewMat(cfg MatConfig) *Mat {
	if cfg.Specs.WheelDiameterMM <= 0 {
		cfg.Specs = robot.DefaultSpecs()
	}
	return &Mat{
		cfg: cfg,
		now: epoch,
		wheels: map[robot.Side]*matWheel{
			robot.Left:  {offset: cfg.LineMM},
			robot.Right: {offset: cfg.LineMM + cfg.SkewMM},
		},
		attachments: map[robot.Side]*matWheel{
			robot.Left:  {},
			robot.Right: {},
		},
	}
}

// Robot returns a robot whose wheels, sensors and attachments live on the mat.
func (m *Mat) Robot() *robot.Robot {
	r := &robot.Robot{Specs: m.cfg.Specs}
	r.LeftWheel = robot.Attach[robot.Motor](&matMotor{mat: m, w: m.wheels[robot.Left]})
	r.RightWheel = robot.Attach[robot.Motor](&matMotor{mat: m, w: m.wheels[robot.Right]})
	r.LeftAttachment = robot.Attach[robot.Motor](&matMotor{mat: m, w: m.attachments[robot.Left]})
	r.RightAttachment = robot.Attach[robot.Motor](&matMotor{mat: m, w: m.attachments[robot.Right]})
	r.LeftSensor = robot.Attach[robot.ReflectanceSensor](&matSensor{mat: m, side: robot.Left})
	r.RightSensor = robot.Attach[robot.ReflectanceSensor](&matSensor{mat: m, side: robot.Right})
	return r
}

// Now returns the simulated time.
func (m *Mat) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Sleep advances the simulation by d.
func (m *Mat) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.cfg.Pace > 0 {
		if err := (robot.SystemClock{}).Sleep(ctx, time.Duration(float64(d)*m.cfg.Pace)); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advance(d)
	return nil
}

// Position returns how far the side's sensor has travelled, in mm.
func (m *Mat) Position(side robot.Side) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position(side)
}

// AttachmentAngle returns how far the side's attachment has turned, in degrees.
func (m *Mat) AttachmentAngle(side robot.Side) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attachments[side].angle
}

// Reflectance returns what the side's sensor currently sees.
func (m *Mat) Reflectance(side robot.Side) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reflectance(m.position(side) - m.wheels[side].offset)
}

// PlaceOnLine moves both sensors to the middle of the line and stops the
// wheels there.
func (m *Mat) PlaceOnLine() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.wheels {
		w.angle = m.degrees(w.offset + m.cfg.EdgeMM + m.cfg.LineWidthMM/2)
		w.speed = 0
		w.moving = false
	}
}

func (m *Mat) position(side robot.Side) float64 {
	return m.wheels[side].angle / 360 * math.Pi * m.cfg.Specs.WheelDiameterMM
}

func (m *Mat) degrees(mm float64) float64 {
	return mm / (math.Pi * m.cfg.Specs.WheelDiameterMM) * 360
}

// reflectance of the mat at x mm past the start of the line's near edge.
func (m *Mat) reflectance(x float64) float64 {
	edge, width := m.cfg.EdgeMM, m.cfg.LineWidthMM
	white, black := m.cfg.White, m.cfg.Black
	ramp := func(t float64) float64 {
		if edge <= 0 {
			return black
		}
		return white + (black-white)*t/edge
	}
	switch {
	case x < 0:
		return white
	case x < edge:
		return ramp(x)
	case x < edge+width:
		return black
	case x < 2*edge+width:
		return ramp(2*edge + width - x)
	default:
		return white
	}
}

func (m *Mat) advance(d time.Duration) {
	m.now = m.now.Add(d)
	dt := d.Seconds()
	for _, w := range m.wheels {
		w.advance(dt)
	}
	for _, w := range m.attachments {
		w.advance(dt)
	}
}

func (w *matWheel) advance(dt float64) {
	if !w.moving {
		w.angle += w.speed * dt
		return
	}
	remaining := w.target - w.angle
	delta := math.Abs(w.step) * dt
	if delta >= math.Abs(remaining) {
		w.angle = w.target
		w.moving = false
		return
	}
	w.angle += math.Copysign(delta, remaining)
}

type matMotor struct {
	mat *Mat
	w   *matWheel
}

func (mm *matMotor) Run(ctx context.Context, speed float64) error {
	m := mm.mat
	m.mu.Lock()
	defer m.mu.Unlock()
	w := mm.w
	w.moving = false
	w.speed = speed
	return nil
}

func (mm *matMotor) RunAngle(ctx context.Context, speed, angle float64, wait bool) error {
	m := mm.mat
	m.mu.Lock()
	w := mm.w
	w.speed = 0
	w.target = w.angle + angle
	w.step = speed
	w.moving = speed != 0 && angle != 0
	m.mu.Unlock()

	if !wait || speed == 0 {
		return nil
	}
	return m.Sleep(ctx, time.Duration(math.Abs(angle/speed)*float64(time.Second)))
}

func (mm *matMotor) Stop(ctx context.Context) error {
	m := mm.mat
	m.mu.Lock()
	defer m.mu.Unlock()
	w := mm.w
	if w.speed != 0 {
		w.angle += math.Copysign(m.degrees(m.cfg.StopLagMM), w.speed)
	}
	w.speed = 0
	w.moving = false
	return nil
}

type matSensor struct {
	mat  *Mat
	side robot.Side
}

func (ms *matSensor) Reflection(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return ms.mat.Reflectance(ms.side), nil
}
