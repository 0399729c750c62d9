package linesquare

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestMotorSpeed(t *testing.T) {
	tests := []struct {
		linear, diameter float64
		want             float64
	}{
		{100, 56, 204.6278},
		{200, 56, 409.2556},
		{math.Pi * 56, 56, 360},
		{0, 56, 0},
	}

	for _, tt := range tests {
		got := MotorSpeed(tt.linear, tt.diameter)
		if math.Abs(got-tt.want) > 0.001 {
			t.Errorf("MotorSpeed(%f, %f) = %f, want %f", tt.linear, tt.diameter, got, tt.want)
		}
	}
}

func TestMotorSpeed_Monotonic(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("faster for higher linear speed", prop.ForAll(
		func(v, dv, d float64) bool {
			return MotorSpeed(v+dv, d) > MotorSpeed(v, d)
		},
		gen.Float64Range(1, 1000),
		gen.Float64Range(0.1, 100),
		gen.Float64Range(10, 100),
	))
	properties.Property("slower for larger wheels", prop.ForAll(
		func(v, d, dd float64) bool {
			return MotorSpeed(v, d+dd) < MotorSpeed(v, d)
		},
		gen.Float64Range(1, 1000),
		gen.Float64Range(10, 100),
		gen.Float64Range(0.1, 50),
	))

	properties.TestingRun(t)
}

func TestCorrection(t *testing.T) {
	tests := []struct {
		err, gain, limit float64
		want             float64
	}{
		{4, 5, 30, 20},
		{6, 5, 30, 30},
		{30, 5, 30, 30},
		{3.5, 2, 30, 7},
	}

	for _, tt := range tests {
		if got := Correction(tt.err, tt.gain, tt.limit); got != tt.want {
			t.Errorf("Correction(%f, %f, %f) = %f, want %f", tt.err, tt.gain, tt.limit, got, tt.want)
		}
	}
}
