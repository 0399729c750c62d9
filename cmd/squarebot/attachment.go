package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/radioactivebrix/squarebot/pkg/logging"
	"github.com/radioactivebrix/squarebot/pkg/robot"
)

type AttachmentCommand struct {
	Sim   bool    `long:"sim" description:"Turn a simulated attachment"`
	Side  string  `long:"side" choice:"left" choice:"right" required:"true" description:"Attachment to turn"`
	Angle float64 `long:"angle" required:"true" description:"Relative angle in degrees, negative turns back"`
	Speed float64 `long:"speed" default:"180" description:"Speed in deg/s"`
}

func (c *AttachmentCommand) Execute(args []string) error {
	logger := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r, err := openRig(ctx, c.Sim, 0)
	if err != nil {
		logger.Error("cannot open robot", logging.Err(err))
		return err
	}
	defer r.Close()

	return c.turn(ctx, r)
}

// turn runs the attachment by Angle and waits for the move to finish.
func (c *AttachmentCommand) turn(ctx context.Context, r *rig) error {
	if c.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %g", c.Speed)
	}
	side := robot.Side(c.Side)
	m, err := r.robot.Attachment(side)
	if err != nil {
		return err
	}
	if err := m.RunAngle(ctx, c.Speed, c.Angle, true); err != nil {
		// Leave the motor holding, not drifting, after an interrupted move.
		if stopErr := m.Stop(context.WithoutCancel(ctx)); stopErr != nil {
			err = fmt.Errorf("%w (stop: %v)", err, stopErr)
		}
		return fmt.Errorf("turn %s attachment: %w", side, err)
	}
	fmt.Printf("%s attachment turned %s\n", capitalize(c.Side), successStyle.Render(fmt.Sprintf("%.0f°", c.Angle)))
	return nil
}
