package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/radioactivebrix/squarebot/pkg/config"
	"github.com/radioactivebrix/squarebot/pkg/robot"
	"github.com/radioactivebrix/squarebot/pkg/sim"
)

// rig is the robot a command works on: the servo bus or the simulated mat.
type rig struct {
	robot *robot.Robot
	clock robot.Clock
	cfg   *robot.Config
	mat   *sim.Mat
	bus   *robot.Bus
}

// openRig opens the configured hardware, or a simulated mat when simulate is
// set. pace slows the simulation down to wall-clock speed for the TUIs.
func openRig(ctx context.Context, simulate bool, pace float64) (*rig, error) {
	cfg, err := robot.LoadConfig()
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = robot.DefaultConfig()
	case err != nil:
		return nil, &config.ConfigError{Path: robot.DefaultConfigFile, Message: "load hardware config", Err: err}
	}

	if simulate {
		mc := sim.DefaultMatConfig()
		mc.Specs = cfg.Specs
		mc.Pace = pace
		mat := sim.NewMat(mc)
		return &rig{robot: mat.Robot(), clock: mat, cfg: cfg, mat: mat}, nil
	}

	if !cfg.IsConfigured() {
		return nil, &config.ConfigError{
			Path:    robot.DefaultConfigFile,
			Message: "wheels not configured, run 'squarebot setup' first",
		}
	}
	bus, err := robot.OpenBus(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := bus.Enable(ctx); err != nil {
		bus.Close()
		return nil, fmt.Errorf("enable servos: %w", err)
	}
	return &rig{robot: bus.Robot(), clock: robot.SystemClock{}, cfg: cfg, bus: bus}, nil
}

// Close releases the servo bus, if any.
func (r *rig) Close() error {
	if r.bus == nil {
		return nil
	}
	err := r.bus.Disable(context.Background())
	return errors.Join(err, r.bus.Close())
}

// Name describes the rig for headers.
func (r *rig) Name() string {
	if r.bus != nil {
		return r.bus.Port()
	}
	return "simulated mat"
}
