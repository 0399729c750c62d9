package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/radioactivebrix/squarebot/pkg/logging"
	"github.com/radioactivebrix/squarebot/pkg/robot"
)

type CalibrateCommand struct {
	Sim      bool          `long:"sim" description:"Calibrate against a simulated mat"`
	Samples  int           `long:"samples" default:"20" description:"Readings averaged per surface"`
	Interval time.Duration `long:"interval" default:"20ms" description:"Time between readings"`
}

func (c *CalibrateCommand) Execute(args []string) error {
	logger := newLogger()
	ctx := context.Background()

	r, err := openRig(ctx, c.Sim, 0)
	if err != nil {
		logger.Error("cannot open robot", logging.Err(err))
		return err
	}
	defer r.Close()

	left, right, err := r.robot.Sensors()
	if err != nil {
		logger.Error("cannot calibrate", logging.Err(err))
		return err
	}
	sensors := map[robot.Side]robot.ReflectanceSensor{robot.Left: left, robot.Right: right}

	fmt.Println(headerStyle.Render("Squarebot Sensor Calibration"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println()

	white, err := c.sample(ctx, r, sensors, "Place both sensors over WHITE mat.")
	if err != nil {
		return err
	}
	if r.mat != nil {
		r.mat.PlaceOnLine()
	}
	black, err := c.sample(ctx, r, sensors, "Place both sensors over the BLACK line.")
	if err != nil {
		return err
	}

	cal := make(robot.Calibration, 2)
	for _, side := range robot.AllSides() {
		cal[side] = robot.SensorCalibration{White: white[side], Black: black[side]}
	}
	fmt.Println(renderCalibration(cal))

	threshold, ok := cal.Threshold()
	if !ok {
		fmt.Println(warnStyle.Render("White and black readings do not differ, calibration not saved."))
		return nil
	}
	fmt.Printf("Recommended black threshold: %s\n", successStyle.Render(fmt.Sprintf("%.1f", threshold)))

	if r.mat != nil {
		fmt.Println(dimStyle.Render("Simulated run, configuration left unchanged."))
		return nil
	}
	r.cfg.Calibration = cal
	if err := r.cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Printf("Calibration saved to %s\n", robot.DefaultConfigFile)
	return nil
}

// sample prompts the user, then averages readings from both sensors.
func (c *CalibrateCommand) sample(ctx context.Context, r *rig, sensors map[robot.Side]robot.ReflectanceSensor, prompt string) (map[robot.Side]float64, error) {
	if r.mat == nil {
		if err := waitForUser(prompt); err != nil {
			return nil, err
		}
	} else {
		fmt.Println(prompt)
	}

	out := make(map[robot.Side]float64, len(sensors))
	for _, side := range robot.AllSides() {
		v, err := robot.SampleReflectance(ctx, sensors[side], r.clock, c.Samples, c.Interval)
		if err != nil {
			return nil, fmt.Errorf("%s sensor: %w", side, err)
		}
		out[side] = v
		fmt.Printf("  %-5s %5.1f\n", side, v)
	}
	fmt.Println()
	return out, nil
}

func renderCalibration(cal robot.Calibration) string {
	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(cal))
	for _, side := range robot.AllSides() {
		sc := cal[side]
		rows = append(rows, []string{
			string(side),
			fmt.Sprintf("%.1f", sc.White),
			fmt.Sprintf("%.1f", sc.Black),
			fmt.Sprintf("%.1f", sc.Threshold()),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Sensor", "White", "Black", "Threshold").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Render()
}
