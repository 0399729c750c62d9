package linesquare

import "math"

// MotorSpeed converts a linear speed in mm/s into a wheel speed in deg/s for
// a wheel of the given diameter in mm.
func MotorSpeed(linear, diameter float64) float64 {
	return linear / (math.Pi * diameter) * 360
}

// Correction returns the backward correction angle for a reflectance error:
// proportional to the error, capped at limit.
func Correction(err, gain, limit float64) float64 {
	return math.Min(err*gain, limit)
}
