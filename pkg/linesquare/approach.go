package linesquare

import (
	"context"
	"fmt"

	"github.com/radioactivebrix/squarebot/pkg/logging"
)

// approach drives both wheels forward and stops each one independently when
// its own sensor reads below the threshold. It returns once both wheels are
// stopped, on a hardware error, on cancellation, or with a *TimeoutError
// after ApproachTimeout.
func (c *Controller) approach(ctx context.Context, s *session) error {
	ctx, span := c.tracer.Start(ctx, "linesquare.approach")
	defer span.End()

	timeout := c.settings.ApproachTimeout
	deadline := c.clock.Now().Add(timeout)

	s.moving = true
	if err := s.left.Run(ctx, s.motorSpeed); err != nil {
		return fmt.Errorf("run left wheel: %w", err)
	}
	if err := s.right.Run(ctx, s.motorSpeed); err != nil {
		return fmt.Errorf("run right wheel: %w", err)
	}

	var leftStopped, rightStopped bool
	for tick := 0; ; tick++ {
		left, right, err := s.read(ctx)
		if err != nil {
			return err
		}
		c.publish(Sample{Phase: PhaseApproach, Left: left, Right: right})

		// Once stopped, a wheel gets no further commands in this phase.
		if !leftStopped && left < s.threshold {
			if err := s.left.Stop(ctx); err != nil {
				return fmt.Errorf("stop left wheel: %w", err)
			}
			leftStopped = true
			c.logger.Info("left wheel stopped", logging.Float64("reflectance", left), logging.Int("tick", tick))
			c.publish(Sample{Phase: PhaseApproach, Left: left, Right: right, Event: "left wheel stopped"})
		}
		if !rightStopped && right < s.threshold {
			if err := s.right.Stop(ctx); err != nil {
				return fmt.Errorf("stop right wheel: %w", err)
			}
			rightStopped = true
			c.logger.Info("right wheel stopped", logging.Float64("reflectance", right), logging.Int("tick", tick))
			c.publish(Sample{Phase: PhaseApproach, Left: left, Right: right, Event: "right wheel stopped"})
		}

		if leftStopped && rightStopped {
			s.moving = false
			span.AddEvent("line reached")
			return nil
		}

		if timeout > 0 && !c.clock.Now().Before(deadline) {
			return &TimeoutError{Phase: PhaseApproach, Limit: timeout}
		}
		if err := c.clock.Sleep(ctx, c.settings.PollInterval); err != nil {
			return fmt.Errorf("approach: %w", err)
		}
	}
}
