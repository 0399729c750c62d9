// Package squarebot squares a two-wheel robot on a dark line using two
// reflectance sensors mounted in front of the wheels.
//
// The robot drives forward until each sensor finds the line, stopping each
// wheel on its own, then nudges the lighter side back until both sensors read
// the same.
//
// # Installation
//
//	go install github.com/radioactivebrix/squarebot/cmd/squarebot@latest
//
// # Usage
//
// First, run setup to find the servo bus and identify the wheels:
//
//	squarebot setup
//
// Calibrate the line sensors, then square up:
//
//	squarebot calibrate
//	squarebot square --use-calibration
//
// Attachment motors are turned by a relative angle:
//
//	squarebot attachment --side left --angle 90
//
// Every command except setup and ports accepts --sim to run against a
// simulated mat instead.
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/squarebot: CLI with setup, ports, square, monitor, calibrate and attachment commands
//   - pkg/linesquare: The line squaring controller
//   - pkg/robot: Hardware handles, servo bus, calibration and configuration
//   - pkg/config: Season settings files and environment overrides
//   - pkg/monitor: Live sensor polling
//   - pkg/metrics: Prometheus run metrics
//   - pkg/sim: Simulated mat and scripted test hardware
//   - pkg/logging: Structured logging over zerolog
package squarebot
