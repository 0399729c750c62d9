package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/radioactivebrix/squarebot/pkg/linesquare"
	"github.com/radioactivebrix/squarebot/pkg/logging"
	"github.com/radioactivebrix/squarebot/pkg/monitor"
)

type MonitorCommand struct {
	Sim       bool    `long:"sim" description:"Read a simulated mat instead of the robot"`
	Hz        int     `long:"hz" default:"20" description:"Sensor polling frequency"`
	Threshold float64 `long:"threshold" description:"Threshold line to draw (default: calibrated or season value)"`
}

type monitorModel struct {
	mon      *monitor.Monitor
	chart    *reflectanceChart
	source   string
	last     monitor.State
	quitting bool
}

// Messages from the monitor
type stateMsg monitor.State
type logMsg string

func waitForState(mon *monitor.Monitor) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-mon.States())
	}
}

func waitForLog(mon *monitor.Monitor) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-mon.Logs())
	}
}

func newMonitorModel(mon *monitor.Monitor, threshold float64, source string) monitorModel {
	return monitorModel{
		mon:    mon,
		chart:  newReflectanceChart(threshold),
		source: source,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.mon),
		waitForLog(m.mon),
	)
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.chart.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case stateMsg:
		state := monitor.State(msg)
		if state.Error == nil {
			m.chart.push(state.Left, state.Right)
		}
		m.last = state
		return m, waitForState(m.mon)

	case logMsg:
		m.chart.addLog(string(msg))
		return m, waitForLog(m.mon)
	}

	return m, nil
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Monitor stopped.\n"
	}

	header := titleStyle.Render("Squarebot Monitor") + fmt.Sprintf(" - %s, %d Hz", m.source, m.mon.Hz())
	return m.chart.view(header, m.status(), "Press 'q' to quit")
}

func (m monitorModel) status() string {
	s := m.last
	if s.Timestamp.IsZero() || s.Error != nil {
		return ""
	}
	mark := func(v float64, below bool) string {
		text := fmt.Sprintf("%5.1f", v)
		if below {
			return belowStyle.Render(text)
		}
		return text
	}
	return fmt.Sprintf("│ L %s  R %s  Δ %4.1f",
		mark(s.Left, s.LeftBelow), mark(s.Right, s.RightBelow), s.Difference)
}

func (c *MonitorCommand) Execute(args []string) error {
	logger := newLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r, err := openRig(ctx, c.Sim, 0)
	if err != nil {
		logger.Error("cannot open robot", logging.Err(err))
		return err
	}
	defer r.Close()

	threshold := c.Threshold
	if threshold == 0 {
		threshold = linesquare.DefaultBlackThreshold
		if t, ok := r.cfg.Calibration.Threshold(); ok {
			threshold = t
		}
	}

	mon, err := monitor.New(r.robot, monitor.Config{Hz: c.Hz, Threshold: threshold})
	if err != nil {
		logger.Error("cannot monitor sensors", logging.Err(err))
		return err
	}

	go func() {
		if err := mon.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("monitor stopped", logging.Err(err))
		}
	}()

	p := tea.NewProgram(newMonitorModel(mon, threshold, r.Name()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
