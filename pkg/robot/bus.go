package robot

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

const (
	ticksPerRev = 4096
	maxPosition = ticksPerRev - 1

	// settleTime is added to a blocking move before it is considered done.
	settleTime = 100 * time.Millisecond
)

// Bus is a feetech servo bus carrying the drive wheels and attachments.
type Bus struct {
	bus   *feetech.Bus
	group *feetech.ServoGroup
	robot *Robot
	port  string
}

// OpenBus opens the configured serial bus, scans it and binds the configured
// servos. Both wheels must answer; attachments that do not answer are left
// absent.
func OpenBus(ctx context.Context, cfg *Config) (*Bus, error) {
	if cfg.Port == "" {
		return nil, &MissingHardwareError{Component: "servo_bus"}
	}

	// Open serial bus
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     cfg.Port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}

	servos, err := bus.Scan(ctx, 1, maxConfiguredID(cfg))
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("scan bus: %w", err)
	}
	found := make(map[int]feetech.FoundServo, len(servos))
	for _, s := range servos {
		found[s.ID] = s
	}

	r := &Robot{Specs: cfg.Specs}
	var ids []int
	bind := func(component string, sc ServoConfig) (Device[Motor], error) {
		if !sc.Configured() {
			return Device[Motor]{}, nil
		}
		fs, ok := found[sc.ID]
		if !ok {
			return Device[Motor]{}, &MissingHardwareError{
				Component: component,
				Port:      fmt.Sprintf("%s#%d", cfg.Port, sc.ID),
			}
		}
		ids = append(ids, sc.ID)
		return Attach[Motor](newServoMotor(feetech.NewServo(bus, fs.ID, fs.Model), sc.Inverted)), nil
	}

	if r.LeftWheel, err = bind("left_wheel", cfg.Wheels.Left); err == nil {
		r.RightWheel, err = bind("right_wheel", cfg.Wheels.Right)
	}
	if err != nil {
		bus.Close()
		return nil, err
	}
	if _, _, err := r.Wheels(); err != nil {
		bus.Close()
		return nil, err
	}

	// Attachments are optional
	r.LeftAttachment, _ = bind("left_attachment", cfg.Attachments.Left)
	r.RightAttachment, _ = bind("right_attachment", cfg.Attachments.Right)

	return &Bus{
		bus:   bus,
		group: feetech.NewServoGroupByIDs(bus, ids...),
		robot: r,
		port:  cfg.Port,
	}, nil
}

func maxConfiguredID(cfg *Config) int {
	id := 1
	for _, sc := range []ServoConfig{
		cfg.Wheels.Left, cfg.Wheels.Right,
		cfg.Attachments.Left, cfg.Attachments.Right,
	} {
		id = max(id, sc.ID)
	}
	return id
}

// Robot returns the robot bound to this bus. Sensors are absent.
func (b *Bus) Robot() *Robot {
	return b.robot
}

// Port returns the serial port of the bus.
func (b *Bus) Port() string {
	return b.port
}

// Enable enables torque on all bound servos.
func (b *Bus) Enable(ctx context.Context) error {
	return b.group.EnableAll(ctx)
}

// Disable disables torque on all bound servos.
func (b *Bus) Disable(ctx context.Context) error {
	return b.group.DisableAll(ctx)
}

// Close closes the bus connection.
func (b *Bus) Close() error {
	return b.bus.Close()
}

// servo is the part of *feetech.Servo a ServoMotor drives.
type servo interface {
	Position(ctx context.Context) (int, error)
	SetPosition(ctx context.Context, position int) error
	SetPositionWithTime(ctx context.Context, position, timeMs int) error
	SetVelocity(ctx context.Context, velocity int) error
	SetOperatingMode(ctx context.Context, mode int) error
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
}

// ServoMotor drives a feetech servo as a wheel. Run and Stop use velocity
// (wheel) mode; RunAngle switches to position mode for a relative move within
// one turn.
type ServoMotor struct {
	servo    servo
	inverted bool
	clock    Clock
	mode     int
}

func newServoMotor(s servo, inverted bool) *ServoMotor {
	return &ServoMotor{servo: s, inverted: inverted, clock: SystemClock{}, mode: modeUnknown}
}

const modeUnknown = -1

// setMode switches the operating mode. Torque must be off while the mode
// register is written.
func (m *ServoMotor) setMode(ctx context.Context, mode int) error {
	if m.mode == mode {
		return nil
	}
	if err := m.servo.Disable(ctx); err != nil {
		return fmt.Errorf("disable torque: %w", err)
	}
	if err := m.servo.SetOperatingMode(ctx, mode); err != nil {
		return fmt.Errorf("set operating mode %d: %w", mode, err)
	}
	if err := m.servo.Enable(ctx); err != nil {
		return fmt.Errorf("enable torque: %w", err)
	}
	m.mode = mode
	return nil
}

// Run spins the wheel at speed deg/s until Stop.
func (m *ServoMotor) Run(ctx context.Context, speed float64) error {
	if speed == 0 {
		return m.Stop(ctx)
	}
	if err := m.setMode(ctx, feetech.ModeVelocity); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	steps := stepsPerSecond(speed)
	if m.inverted {
		steps = -steps
	}
	if err := m.servo.SetVelocity(ctx, steps); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// RunAngle moves by angle degrees relative to the current position. The
// target is clamped to the servo's range of travel.
func (m *ServoMotor) RunAngle(ctx context.Context, speed, angle float64, wait bool) error {
	if err := m.setMode(ctx, feetech.ModePosition); err != nil {
		return fmt.Errorf("run angle: %w", err)
	}
	pos, err := m.servo.Position(ctx)
	if err != nil {
		return fmt.Errorf("read position: %w", err)
	}

	delta := int(math.Round(angle * ticksPerRev / 360))
	if m.inverted {
		delta = -delta
	}
	target := min(max(pos+delta, 0), maxPosition)
	ms := moveTimeMs(target-pos, speed)
	if err := m.servo.SetPositionWithTime(ctx, target, ms); err != nil {
		return fmt.Errorf("run angle: %w", err)
	}

	if !wait {
		return nil
	}
	return m.clock.Sleep(ctx, time.Duration(ms)*time.Millisecond+settleTime)
}

// Stop zeroes the wheel velocity, or holds the current position after a
// positioned move.
func (m *ServoMotor) Stop(ctx context.Context) error {
	if m.mode == feetech.ModeVelocity {
		if err := m.servo.SetVelocity(ctx, 0); err != nil {
			return fmt.Errorf("stop: %w", err)
		}
		return nil
	}
	pos, err := m.servo.Position(ctx)
	if err != nil {
		return fmt.Errorf("read position: %w", err)
	}
	if err := m.servo.SetPosition(ctx, pos); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}

// stepsPerSecond converts deg/s to servo steps per second.
func stepsPerSecond(speed float64) int {
	return int(math.Round(speed * ticksPerRev / 360))
}

// moveTimeMs returns how long a move of ticks takes at speed deg/s.
func moveTimeMs(ticks int, speed float64) int {
	speed = math.Abs(speed)
	if speed == 0 {
		return 0
	}
	deg := math.Abs(float64(ticks)) * 360 / ticksPerRev
	return max(int(deg/speed*1000), 1)
}
