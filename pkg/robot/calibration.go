package robot

import (
	"context"
	"fmt"
	"time"
)

// SensorCalibration holds the averaged readings of one sensor over a white
// surface and over the black line.
type SensorCalibration struct {
	White float64 `json:"white"`
	Black float64 `json:"black"`
}

// Calibration holds sensor calibration data keyed by side.
type Calibration map[Side]SensorCalibration

// Threshold returns the reflectance halfway between black and white.
func (c SensorCalibration) Threshold() float64 {
	return (c.White + c.Black) / 2
}

// Normalize rescales a raw reading so that black maps to 0 and white to 100.
// Results are clamped to [0, 100].
func (c SensorCalibration) Normalize(raw float64) float64 {
	rangeSize := c.White - c.Black
	if rangeSize == 0 {
		return 0
	}
	norm := (raw - c.Black) / rangeSize * 100
	return min(max(norm, 0), 100)
}

// Valid reports whether white reads lighter than black.
func (c SensorCalibration) Valid() bool {
	return c.White > c.Black
}

// Threshold returns the mean threshold over all calibrated sides, and false
// when no side is calibrated.
func (c Calibration) Threshold() (float64, bool) {
	var sum float64
	var n int
	for _, side := range AllSides() {
		sc, ok := c[side]
		if !ok || !sc.Valid() {
			continue
		}
		sum += sc.Threshold()
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// NormalizedThreshold is the black threshold for normalized readings: halfway
// between black (0) and white (100).
const NormalizedThreshold = 50

// NormalizedSensor reports readings rescaled by a sensor calibration.
type NormalizedSensor struct {
	Sensor      ReflectanceSensor
	Calibration SensorCalibration
}

func (s NormalizedSensor) Reflection(ctx context.Context) (float64, error) {
	raw, err := s.Sensor.Reflection(ctx)
	if err != nil {
		return 0, err
	}
	return s.Calibration.Normalize(raw), nil
}

// Normalized wraps both sensors with their calibration. Absent sensors stay
// absent. It fails when either side lacks a valid calibration.
func (c Calibration) Normalized(left, right Device[ReflectanceSensor]) (Device[ReflectanceSensor], Device[ReflectanceSensor], error) {
	wrap := func(side Side, d Device[ReflectanceSensor]) (Device[ReflectanceSensor], error) {
		sc, ok := c[side]
		if !ok || !sc.Valid() {
			return d, fmt.Errorf("%s sensor is not calibrated", side)
		}
		s, ok := d.Get()
		if !ok {
			return d, nil
		}
		return Attach[ReflectanceSensor](NormalizedSensor{Sensor: s, Calibration: sc}), nil
	}
	l, err := wrap(Left, left)
	if err != nil {
		return left, right, err
	}
	r, err := wrap(Right, right)
	if err != nil {
		return left, right, err
	}
	return l, r, nil
}

// SampleReflectance averages n readings taken interval apart.
func SampleReflectance(ctx context.Context, s ReflectanceSensor, clock Clock, n int, interval time.Duration) (float64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("sample count must be positive, got %d", n)
	}

	var sum float64
	for i := 0; i < n; i++ {
		v, err := s.Reflection(ctx)
		if err != nil {
			return 0, fmt.Errorf("read reflectance: %w", err)
		}
		sum += v
		if i < n-1 {
			if err := clock.Sleep(ctx, interval); err != nil {
				return 0, err
			}
		}
	}
	return sum / float64(n), nil
}
