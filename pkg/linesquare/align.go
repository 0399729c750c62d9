package linesquare

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"

	"github.com/radioactivebrix/squarebot/pkg/logging"
	"github.com/radioactivebrix/squarebot/pkg/robot"
)

// align corrects the skew left by the approach. The darker sensor is taken as
// the target; every wheel whose sensor reads more than Tolerance lighter is
// turned backward by a capped proportional angle. Both corrections are issued
// without waiting and then the loop settles once. Running out of attempts is
// not an error.
func (c *Controller) align(ctx context.Context, s *session) (Result, error) {
	ctx, span := c.tracer.Start(ctx, "linesquare.align")
	defer span.End()

	tol := c.settings.Tolerance
	speed := s.motorSpeed * c.settings.AlignmentRatio

	var (
		converged bool
		attempts  int
		diff      float64
	)
	for attempts < c.settings.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return Result{Attempts: attempts}, fmt.Errorf("align: %w", err)
		}

		// Both corrections come from this one snapshot.
		left, right, err := s.read(ctx)
		if err != nil {
			return Result{Attempts: attempts}, err
		}
		c.publish(Sample{Phase: PhaseAlignment, Left: left, Right: right})

		diff = math.Abs(left - right)
		if diff <= tol {
			converged = true
			c.logger.Info("aligned", logging.Float64("difference", diff), logging.Int("attempts", attempts))
			break
		}

		target := math.Min(left, right)
		corrections := []struct {
			side    robot.Side
			motor   robot.Motor
			reading float64
		}{
			{robot.Left, s.left, left},
			{robot.Right, s.right, right},
		}
		for _, cr := range corrections {
			errPct := cr.reading - target
			if errPct <= tol {
				continue
			}
			angle := Correction(errPct, c.settings.Gain, c.settings.MaxCorrection)
			s.moving = true
			if err := cr.motor.RunAngle(ctx, speed, -angle, false); err != nil {
				return Result{Attempts: attempts}, fmt.Errorf("correct %s wheel: %w", cr.side, err)
			}
			c.logger.Debug("correcting",
				logging.String("side", string(cr.side)),
				logging.Float64("angle", -angle),
				logging.Float64("reading", cr.reading),
				logging.Float64("target", target),
			)
			c.publish(Sample{
				Phase: PhaseAlignment, Left: left, Right: right,
				Event: fmt.Sprintf("%s back %.0f°", cr.side, angle),
			})
		}

		if err := c.clock.Sleep(ctx, c.settings.SettleDelay); err != nil {
			return Result{Attempts: attempts}, fmt.Errorf("align: %w", err)
		}
		attempts++
	}

	if err := s.halt(ctx); err != nil {
		return Result{Attempts: attempts}, err
	}

	left, right, err := s.read(ctx)
	if err != nil {
		return Result{Attempts: attempts}, err
	}
	res := Result{Left: left, Right: right, Outcome: Aligned, Attempts: attempts}
	if !converged && res.Difference() > tol {
		res.Outcome = AlignmentIncomplete
		c.logger.Warn("alignment incomplete",
			logging.Int("attempts", attempts),
			logging.Float64("difference", res.Difference()),
		)
	}
	span.SetAttributes(attribute.Float64("difference", res.Difference()))

	c.logger.Info("squared on line",
		logging.Float64("left", left),
		logging.Float64("right", right),
		logging.String("outcome", res.Outcome.String()),
	)
	return res, nil
}
