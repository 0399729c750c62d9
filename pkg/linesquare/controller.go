// Package linesquare squares a two-wheel robot on a dark line using two
// reflectance sensors.
//
// A call to SquareOnLine runs two phases. During the approach both wheels
// drive forward and each wheel stops as soon as its own sensor reads below
// the black threshold. During the alignment the wheel whose sensor reads
// lighter is nudged backward in proportion to the difference, until both
// sensors agree within a tolerance or the attempt budget is spent.
package linesquare

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/radioactivebrix/squarebot/pkg/logging"
	"github.com/radioactivebrix/squarebot/pkg/robot"
)

const tracerName = "github.com/radioactivebrix/squarebot/pkg/linesquare"

// Phase names a stage of a squaring run.
type Phase string

const (
	PhaseApproach  Phase = "approach"
	PhaseAlignment Phase = "alignment"
	PhaseDone      Phase = "done"
)

// Outcome classifies a completed run.
type Outcome int

const (
	// Failed is the outcome of a run that returned a hardware, validation or
	// cancellation error.
	Failed Outcome = iota
	// Aligned means both sensors ended within tolerance of each other.
	Aligned
	// AlignmentIncomplete means the attempt budget ran out first. The robot
	// is stopped at whatever skew remained.
	AlignmentIncomplete
	// ApproachTimedOut means the line was not found in time.
	ApproachTimedOut
)

func (o Outcome) String() string {
	switch o {
	case Failed:
		return "failed"
	case Aligned:
		return "aligned"
	case AlignmentIncomplete:
		return "alignment_incomplete"
	case ApproachTimedOut:
		return "approach_timed_out"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Request holds per-call overrides. Absent sensors and zero values fall back
// to the robot's sensors and the controller settings.
type Request struct {
	LeftSensor     robot.Device[robot.ReflectanceSensor]
	RightSensor    robot.Device[robot.ReflectanceSensor]
	DriveSpeed     float64
	BlackThreshold float64
}

// Result is the final state of a run.
type Result struct {
	Left     float64
	Right    float64
	Outcome  Outcome
	Attempts int
}

// Difference returns the absolute difference between the final readings.
func (r Result) Difference() float64 {
	return math.Abs(r.Left - r.Right)
}

// Controller squares a robot on a line. It borrows the robot's handles for
// the duration of each call and must not be used concurrently.
type Controller struct {
	robot    *robot.Robot
	settings Settings
	logger   logging.Logger
	clock    robot.Clock
	samples  chan Sample
	tracer   trace.Tracer
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards output.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock sets the clock used for polling and settle waits.
func WithClock(clock robot.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithSamples publishes every sensor snapshot on ch. Slow readers lose the
// oldest samples.
func WithSamples(ch chan Sample) Option {
	return func(c *Controller) { c.samples = ch }
}

// WithTracer sets the tracer. The default comes from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Controller) { c.tracer = t }
}

// New creates a controller for r.
func New(r *robot.Robot, s Settings, opts ...Option) (*Controller, error) {
	if r == nil {
		return nil, errors.New("linesquare: nil robot")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if r.Specs.WheelDiameterMM <= 0 {
		return nil, &ValidationError{Field: "wheel_diameter_mm", Message: "must be positive"}
	}

	c := &Controller{
		robot:    r,
		settings: s,
		logger:   logging.NopLogger{},
		clock:    robot.SystemClock{},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Settings returns the controller settings.
func (c *Controller) Settings() Settings {
	return c.settings
}

// session is the state of one SquareOnLine call.
type session struct {
	left, right             robot.Motor
	leftSensor, rightSensor robot.ReflectanceSensor
	threshold               float64
	motorSpeed              float64
	moving                  bool
}

func (s *session) read(ctx context.Context) (left, right float64, err error) {
	left, err = s.leftSensor.Reflection(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("read left sensor: %w", err)
	}
	right, err = s.rightSensor.Reflection(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("read right sensor: %w", err)
	}
	return left, right, nil
}

// halt stops both wheels, even when ctx is already cancelled.
func (s *session) halt(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	if err := s.left.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop left wheel: %w", err))
	}
	if err := s.right.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop right wheel: %w", err))
	}
	if len(errs) == 0 {
		s.moving = false
	}
	return errors.Join(errs...)
}

// SquareOnLine drives onto the line and aligns on it. Missing wheels or
// sensors fail with a *robot.MissingHardwareError before any motion. Failure
// to align within the attempt budget is reported through Result.Outcome, not
// as an error. Once motion has started both wheels are stopped on every
// return path.
func (c *Controller) SquareOnLine(ctx context.Context, req Request) (res Result, err error) {
	left, right, err := c.robot.Wheels()
	if err != nil {
		return Result{}, err
	}
	ls, rs, err := robot.ResolveSensors(
		req.LeftSensor.Or(c.robot.LeftSensor),
		req.RightSensor.Or(c.robot.RightSensor),
	)
	if err != nil {
		c.logger.Error("cannot square on line", logging.Err(err))
		return Result{}, err
	}

	speed := c.settings.DriveSpeed
	if req.DriveSpeed != 0 {
		speed = req.DriveSpeed
	}
	threshold := c.settings.BlackThreshold
	if req.BlackThreshold != 0 {
		threshold = req.BlackThreshold
	}
	if speed <= 0 {
		return Result{}, &ValidationError{Field: "drive_speed", Message: "must be positive"}
	}
	if threshold <= 0 || threshold > 100 {
		return Result{}, &ValidationError{Field: "black_threshold", Message: "must be in (0, 100]"}
	}

	s := &session{
		left:        left,
		right:       right,
		leftSensor:  ls,
		rightSensor: rs,
		threshold:   threshold,
		motorSpeed:  MotorSpeed(speed, c.robot.Specs.WheelDiameterMM),
	}

	ctx, span := c.tracer.Start(ctx, "linesquare.SquareOnLine", trace.WithAttributes(
		attribute.Float64("drive_speed", speed),
		attribute.Float64("black_threshold", threshold),
		attribute.Float64("motor_speed", s.motorSpeed),
	))
	defer span.End()

	defer func() {
		if s.moving {
			if stopErr := s.halt(ctx); stopErr != nil {
				err = errors.Join(err, stopErr)
			}
		}
		event := res.Outcome.String()
		if err != nil && res.Outcome == Failed {
			event = "failed: " + err.Error()
		}
		c.publish(Sample{Phase: PhaseDone, Left: res.Left, Right: res.Right, Event: event})
		span.SetAttributes(
			attribute.String("outcome", res.Outcome.String()),
			attribute.Int("attempts", res.Attempts),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	c.logger.Info("square on line",
		logging.Float64("drive_speed", speed),
		logging.Float64("black_threshold", threshold),
		logging.Float64("motor_speed", s.motorSpeed),
	)

	if err := c.approach(ctx, s); err != nil {
		var te *TimeoutError
		if !errors.As(err, &te) {
			return Result{}, err
		}
		c.logger.Warn("line not found", logging.Duration("timeout", te.Limit))
		res = Result{Outcome: ApproachTimedOut}
		if stopErr := s.halt(ctx); stopErr != nil {
			return res, errors.Join(err, stopErr)
		}
		if l, r, readErr := s.read(ctx); readErr == nil {
			res.Left, res.Right = l, r
		}
		return res, err
	}

	return c.align(ctx, s)
}

// publish sends a sample without blocking, replacing the oldest queued one
// when the channel is full.
func (c *Controller) publish(smp Sample) {
	if c.samples == nil {
		return
	}
	smp.Time = c.clock.Now()
	select {
	case c.samples <- smp:
	default:
		select {
		case <-c.samples:
		default:
		}
		select {
		case c.samples <- smp:
		default:
		}
	}
}

// Sample is one sensor snapshot or phase event of a run.
type Sample struct {
	Phase Phase
	Left  float64
	Right float64
	// Event describes what happened at this sample, if anything.
	Event string
	Time  time.Time
}
