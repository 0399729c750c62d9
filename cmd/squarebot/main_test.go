package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"

	"github.com/radioactivebrix/squarebot/pkg/config"
	"github.com/radioactivebrix/squarebot/pkg/linesquare"
	"github.com/radioactivebrix/squarebot/pkg/robot"
	"github.com/radioactivebrix/squarebot/pkg/sim"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"generic", errors.New("bus exploded"), ExitErrorGeneric},
		{"timeout", fmt.Errorf("square: %w", &linesquare.TimeoutError{Phase: linesquare.PhaseApproach}), ExitErrorTimeout},
		{"missing hardware", &robot.MissingHardwareError{Component: "right_sensor"}, ExitMissingHardware},
		{"config", &config.ConfigError{Message: "bad"}, ExitErrorConfig},
		{"validation", &linesquare.ValidationError{Field: "gain"}, ExitErrorConfig},
		{"canceled", fmt.Errorf("approach: %w", context.Canceled), ExitErrorCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestSquareCommand_Settings(t *testing.T) {
	t.Setenv(config.EnvPrefix+"SETTINGS", "")
	t.Setenv(config.EnvPrefix+"DRIVE_SPEED", "120")

	path := filepath.Join(t.TempDir(), "season.toml")
	content := "black_threshold = 25.0\n\n[missions.m04]\ntolerance = 2.0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c := &SquareCommand{Settings: path, Mission: "m04", Timeout: 3 * time.Second}
	s, err := c.settings()
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if s.BlackThreshold != 25 || s.Tolerance != 2 || s.DriveSpeed != 120 || s.ApproachTimeout != 3*time.Second {
		t.Errorf("settings = %+v", s)
	}

	c.DriveSpeed = 90
	if s, _ = c.settings(); s.DriveSpeed != 90 {
		t.Errorf("DriveSpeed = %f, want flag value 90", s.DriveSpeed)
	}

	c.Threshold = 150
	if _, err := c.settings(); exitCode(err) != ExitErrorConfig {
		t.Errorf("settings() with threshold 150 = %v, want config error", err)
	}
}

func TestAssignRole(t *testing.T) {
	cfg := robot.DefaultConfig()
	assignRole(cfg, roleLeftWheel, robot.ServoConfig{ID: 1})
	assignRole(cfg, roleRightWheel, robot.ServoConfig{ID: 2, Inverted: true})
	assignRole(cfg, roleRightAttachment, robot.ServoConfig{ID: 4})

	if cfg.Wheels.Left.ID != 1 || cfg.Wheels.Right.ID != 2 || !cfg.Wheels.Right.Inverted {
		t.Errorf("wheels = %+v", cfg.Wheels)
	}
	if cfg.Attachments.Right.ID != 4 || cfg.Attachments.Left.Configured() {
		t.Errorf("attachments = %+v", cfg.Attachments)
	}

	roles := []string{roleLeftWheel, roleRightWheel, roleLeftAttachment}
	got := removeRole(roles, roleRightWheel)
	if len(got) != 2 || got[0] != roleLeftWheel || got[1] != roleLeftAttachment {
		t.Errorf("removeRole() = %v", got)
	}
	if len(roles) != 3 || roles[1] != roleRightWheel {
		t.Errorf("removeRole modified its input: %v", roles)
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"left", "Left"},
		{"right", "Right"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := capitalize(tt.in); got != tt.want {
			t.Errorf("capitalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDescribeServos(t *testing.T) {
	cfg := robot.DefaultConfig()
	cfg.Wheels.Left.ID = 1
	cfg.Wheels.Right.ID = 2

	got := describeServos([]feetech.FoundServo{{ID: 1}, {ID: 2}, {ID: 5}}, cfg)
	want := "#1 left wheel, #2 right wheel, #5"
	if got != want {
		t.Errorf("describeServos() = %q, want %q", got, want)
	}
	if got := describeServos([]feetech.FoundServo{{ID: 3}}, nil); got != "#3" {
		t.Errorf("describeServos(nil config) = %q, want #3", got)
	}
}

func TestResultLine(t *testing.T) {
	res := linesquare.Result{Left: 12, Right: 14, Outcome: linesquare.Aligned, Attempts: 2}
	if got := resultLine(res, nil); !strings.Contains(got, "aligned") || !strings.Contains(got, "attempts 2") {
		t.Errorf("resultLine() = %q", got)
	}
	if got := resultLine(linesquare.Result{}, errors.New("unplugged")); !strings.Contains(got, "unplugged") {
		t.Errorf("resultLine() with error = %q", got)
	}
}

func TestOpenRig_Sim(t *testing.T) {
	t.Chdir(t.TempDir())

	r, err := openRig(context.Background(), true, 0)
	if err != nil {
		t.Fatalf("openRig: %v", err)
	}
	defer r.Close()

	if r.Name() != "simulated mat" {
		t.Errorf("Name() = %q", r.Name())
	}
	if _, _, err := r.robot.Sensors(); err != nil {
		t.Errorf("simulated robot sensors: %v", err)
	}

	ctrl, err := linesquare.New(r.robot, linesquare.DefaultSettings(), linesquare.WithClock(r.clock))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := ctrl.SquareOnLine(context.Background(), linesquare.Request{})
	if err != nil {
		t.Fatalf("SquareOnLine on simulated mat: %v", err)
	}
	if res.Outcome != linesquare.Aligned || res.Attempts == 0 {
		t.Errorf("SquareOnLine() = %+v, want aligned after corrections", res)
	}
	if res.Left >= linesquare.DefaultBlackThreshold || res.Right >= linesquare.DefaultBlackThreshold {
		t.Errorf("sensors ended at (%f, %f), not on the line", res.Left, res.Right)
	}
}

func TestCalibratedRequest(t *testing.T) {
	mat := sim.NewMat(sim.DefaultMatConfig())
	cfg := robot.DefaultConfig()

	if _, err := calibratedRequest(cfg, mat.Robot(), 0); exitCode(err) != ExitErrorConfig {
		t.Errorf("calibratedRequest() without calibration = %v, want config error", err)
	}

	cfg.Calibration = robot.Calibration{
		robot.Left:  {White: 85, Black: 10},
		robot.Right: {White: 85, Black: 10},
	}
	req, err := calibratedRequest(cfg, mat.Robot(), 0)
	if err != nil {
		t.Fatalf("calibratedRequest: %v", err)
	}
	if req.BlackThreshold != robot.NormalizedThreshold {
		t.Errorf("BlackThreshold = %f, want %d", req.BlackThreshold, robot.NormalizedThreshold)
	}
	left, ok := req.LeftSensor.Get()
	if !ok {
		t.Fatal("request has no left sensor")
	}
	if got, _ := left.Reflection(context.Background()); got != 100 {
		t.Errorf("normalized reading on white = %f, want 100", got)
	}

	if req, _ := calibratedRequest(cfg, mat.Robot(), 30); req.BlackThreshold != 30 {
		t.Errorf("BlackThreshold with flag = %f, want 30", req.BlackThreshold)
	}
}

func TestAttachmentCommand_Turn(t *testing.T) {
	t.Chdir(t.TempDir())

	r, err := openRig(context.Background(), true, 0)
	if err != nil {
		t.Fatalf("openRig: %v", err)
	}
	defer r.Close()

	c := &AttachmentCommand{Side: "right", Angle: -90, Speed: 180}
	if err := c.turn(context.Background(), r); err != nil {
		t.Fatalf("turn: %v", err)
	}
	if got := r.mat.AttachmentAngle(robot.Right); got != -90 {
		t.Errorf("right attachment angle = %f, want -90", got)
	}
	if got := r.mat.AttachmentAngle(robot.Left); got != 0 {
		t.Errorf("left attachment angle = %f, want 0", got)
	}

	r.robot.LeftAttachment = robot.Device[robot.Motor]{}
	c = &AttachmentCommand{Side: "left", Angle: 45, Speed: 180}
	if err := c.turn(context.Background(), r); exitCode(err) != ExitMissingHardware {
		t.Errorf("turn without left attachment = %v, want missing hardware", err)
	}
}

func TestOpenRig_Unconfigured(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := openRig(context.Background(), false, 0)
	if exitCode(err) != ExitErrorConfig {
		t.Errorf("openRig() without config = %v, want config error", err)
	}
}
