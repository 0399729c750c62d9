package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/briandowns/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/radioactivebrix/squarebot/pkg/config"
	"github.com/radioactivebrix/squarebot/pkg/linesquare"
	"github.com/radioactivebrix/squarebot/pkg/logging"
	"github.com/radioactivebrix/squarebot/pkg/metrics"
	"github.com/radioactivebrix/squarebot/pkg/robot"
)

type SquareCommand struct {
	Sim            bool          `long:"sim" description:"Run on a simulated mat instead of the robot"`
	Mission        string        `short:"m" long:"mission" description:"Mission table to apply from the settings file"`
	Settings       string        `short:"s" long:"settings" description:"Season settings file (.toml or .yaml)"`
	DriveSpeed     float64       `long:"drive-speed" description:"Approach speed in mm/s"`
	Threshold      float64       `long:"threshold" description:"Black threshold in percent"`
	UseCalibration bool          `long:"use-calibration" description:"Normalize readings with the calibration stored by 'squarebot calibrate'"`
	Timeout        time.Duration `long:"timeout" description:"Approach timeout, 0 to use the season value"`
	TUI            bool          `long:"tui" description:"Chart the run in a terminal UI"`
	MetricsFile    string        `long:"metrics-file" description:"Write Prometheus metrics for the run to this file"`
}

var (
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// settings resolves defaults, the season file, the environment and flags.
func (c *SquareCommand) settings() (linesquare.Settings, error) {
	path := c.Settings
	if path == "" {
		path = config.SettingsPath("")
	}
	s, err := config.Resolve(path, c.Mission)
	if err != nil {
		return s, err
	}
	if c.DriveSpeed != 0 {
		s.DriveSpeed = c.DriveSpeed
	}
	if c.Threshold != 0 {
		s.BlackThreshold = c.Threshold
	}
	if c.Timeout != 0 {
		s.ApproachTimeout = c.Timeout
	}
	if err := s.Validate(); err != nil {
		return s, &config.ConfigError{Message: "invalid flag", Err: err}
	}
	return s, nil
}

func (c *SquareCommand) Execute(args []string) error {
	logger := newLogger()

	settings, err := c.settings()
	if err != nil {
		logger.Error("invalid settings", logging.Err(err))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pace := 0.0
	if c.TUI {
		pace = 1
	}
	r, err := openRig(ctx, c.Sim, pace)
	if err != nil {
		logger.Error("cannot open robot", logging.Err(err))
		return err
	}
	defer r.Close()

	var req linesquare.Request
	if c.UseCalibration {
		if req, err = calibratedRequest(r.cfg, r.robot, c.Threshold); err != nil {
			logger.Error("cannot use calibration", logging.Err(err))
			return err
		}
	}

	var ctrlLogger logging.Logger = logger.With(logging.String("rig", r.Name()))
	var samples chan linesquare.Sample
	if c.TUI {
		// Console logs would tear the alternate screen.
		ctrlLogger = logging.NopLogger{}
		samples = make(chan linesquare.Sample, 64)
	}
	ctrl, err := linesquare.New(r.robot, settings,
		linesquare.WithLogger(ctrlLogger),
		linesquare.WithClock(r.clock),
		linesquare.WithSamples(samples),
	)
	if err != nil {
		return err
	}

	start := time.Now()
	var res linesquare.Result
	if c.TUI {
		res, err = c.runTUI(ctx, ctrl, req, samples)
	} else {
		res, err = c.runPlain(ctx, ctrl, req)
	}
	elapsed := time.Since(start)

	rec := metrics.NewRecorder()
	rec.ObserveRun(res, err, elapsed)
	if c.MetricsFile != "" {
		if werr := rec.WriteTextfile(c.MetricsFile); werr != nil {
			logger.Warn("cannot write metrics", logging.Err(werr))
		}
	}

	printResult(res, err, elapsed)
	return err
}

// calibratedRequest reads the robot's sensors through their calibration, so
// both report 0 on black and 100 on white. Without an explicit threshold the
// line is detected halfway between the two.
func calibratedRequest(cfg *robot.Config, r *robot.Robot, threshold float64) (linesquare.Request, error) {
	if !cfg.IsCalibrated() {
		return linesquare.Request{}, &config.ConfigError{Path: robot.DefaultConfigFile, Message: "no sensor calibration, run 'squarebot calibrate' first"}
	}
	left, right, err := cfg.Calibration.Normalized(r.LeftSensor, r.RightSensor)
	if err != nil {
		return linesquare.Request{}, &config.ConfigError{Path: robot.DefaultConfigFile, Message: "incomplete sensor calibration", Err: err}
	}
	req := linesquare.Request{LeftSensor: left, RightSensor: right, BlackThreshold: threshold}
	if threshold == 0 {
		req.BlackThreshold = robot.NormalizedThreshold
	}
	return req, nil
}

func (c *SquareCommand) runPlain(ctx context.Context, ctrl *linesquare.Controller, req linesquare.Request) (linesquare.Result, error) {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " squaring on line..."
	s.Start()
	defer s.Stop()
	return ctrl.SquareOnLine(ctx, req)
}

type sampleMsg linesquare.Sample

type doneMsg struct {
	res linesquare.Result
	err error
}

func waitForSample(ch <-chan linesquare.Sample) tea.Cmd {
	return func() tea.Msg {
		smp, ok := <-ch
		if !ok {
			return nil
		}
		return sampleMsg(smp)
	}
}

type squareModel struct {
	samples  <-chan linesquare.Sample
	chart    *reflectanceChart
	phase    linesquare.Phase
	done     *doneMsg
	quitting bool
}

func (m squareModel) Init() tea.Cmd {
	return waitForSample(m.samples)
}

func (m squareModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.chart.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "enter":
			m.quitting = true
			return m, tea.Quit
		}

	case sampleMsg:
		smp := linesquare.Sample(msg)
		m.phase = smp.Phase
		if smp.Event != "" {
			m.chart.addLog(fmt.Sprintf("[%s] %s: %s", smp.Time.Format("15:04:05.000"), smp.Phase, smp.Event))
		} else {
			m.chart.push(smp.Left, smp.Right)
		}
		return m, waitForSample(m.samples)

	case doneMsg:
		m.done = &msg
		return m, nil
	}

	return m, nil
}

func (m squareModel) View() string {
	if m.quitting {
		return ""
	}
	header := titleStyle.Render("Squarebot") + " - " + string(m.phase)
	hint := "Press 'q' to abort"
	status := ""
	if m.done != nil {
		hint = "Press 'q' to exit"
		status = "│ " + resultLine(m.done.res, m.done.err)
	}
	return m.chart.view(header, status, hint)
}

func (c *SquareCommand) runTUI(ctx context.Context, ctrl *linesquare.Controller, req linesquare.Request, samples chan linesquare.Sample) (linesquare.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	threshold := ctrl.Settings().BlackThreshold
	if req.BlackThreshold != 0 {
		threshold = req.BlackThreshold
	}
	model := squareModel{
		samples: samples,
		chart:   newReflectanceChart(threshold),
		phase:   linesquare.PhaseApproach,
	}
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	var res linesquare.Result
	var runErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, runErr = ctrl.SquareOnLine(gctx, req)
		p.Send(doneMsg{res: res, err: runErr})
		return nil
	})
	g.Go(func() error {
		_, err := p.Run()
		// Quitting the UI aborts a run still in progress.
		cancel()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return res, errors.Join(runErr, fmt.Errorf("run tui: %w", err))
	}
	return res, runErr
}

func resultLine(res linesquare.Result, err error) string {
	summary := fmt.Sprintf("%s  L %.1f  R %.1f  Δ %.1f  attempts %d",
		res.Outcome, res.Left, res.Right, res.Difference(), res.Attempts)
	switch {
	case err != nil && !errors.Is(err, linesquare.ErrApproachTimedOut):
		return errorStyle.Render(err.Error())
	case res.Outcome == linesquare.Aligned:
		return successStyle.Render(summary)
	default:
		return warnStyle.Render(summary)
	}
}

func printResult(res linesquare.Result, err error, elapsed time.Duration) {
	fmt.Println(resultLine(res, err))
	fmt.Println(dimStyle.Render(fmt.Sprintf("finished in %s", elapsed.Round(time.Millisecond))))
}
