// Package robot provides abstractions for the drive base, sensors and attachments
// of a two-wheel line-squaring robot.
package robot

//go:generate mockgen -source=motors.go -destination=mock_robot/mock_motors.go

import "context"

// Side identifies the left or right half of the robot.
type Side string

// Robot sides.
const (
	Left  Side = "left"
	Right Side = "right"
)

// AllSides returns both sides in polling order.
func AllSides() []Side {
	return []Side{Left, Right}
}

// Motor is a wheel or attachment motor. Speeds are in degrees per second,
// angles in degrees; positive values drive the robot forward.
type Motor interface {
	// Run spins the motor continuously until Stop is called.
	Run(ctx context.Context, speed float64) error

	// RunAngle rotates the motor by a relative angle. With wait=false the
	// call returns as soon as the move has been issued.
	RunAngle(ctx context.Context, speed, angle float64, wait bool) error

	// Stop brings the motor to zero velocity.
	Stop(ctx context.Context) error
}

// ReflectanceSensor reads reflected light as a percentage in [0, 100].
// Lower values are darker.
type ReflectanceSensor interface {
	Reflection(ctx context.Context) (float64, error)
}
