package robot

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

type nopMotor struct{}

func (nopMotor) Run(ctx context.Context, speed float64) error { return nil }

func (nopMotor) RunAngle(ctx context.Context, speed, angle float64, wait bool) error { return nil }

func (nopMotor) Stop(ctx context.Context) error { return nil }

func TestDevice(t *testing.T) {
	var absent Device[Motor]
	if absent.Present() {
		t.Error("zero Device should be absent")
	}
	if _, ok := absent.Get(); ok {
		t.Error("zero Device.Get() should return false")
	}

	present := Attach[Motor](nopMotor{})
	if !present.Present() {
		t.Error("attached Device should be present")
	}
	if got := absent.Or(present); !got.Present() {
		t.Error("Or should fall back to the present device")
	}
	if got := present.Or(absent); !got.Present() {
		t.Error("Or should keep a present device")
	}
}

func TestRobot_Wheels(t *testing.T) {
	r := &Robot{LeftWheel: Attach[Motor](nopMotor{})}

	_, _, err := r.Wheels()
	var mhe *MissingHardwareError
	if !errors.As(err, &mhe) {
		t.Fatalf("Wheels() error = %v, want MissingHardwareError", err)
	}
	if mhe.Component != "right_wheel" {
		t.Errorf("Component = %q, want right_wheel", mhe.Component)
	}

	r.RightWheel = Attach[Motor](nopMotor{})
	if _, _, err := r.Wheels(); err != nil {
		t.Errorf("Wheels() with both wheels: %v", err)
	}
}

func TestRobot_Sensors(t *testing.T) {
	r := &Robot{}
	_, _, err := r.Sensors()
	if !errors.Is(err, ErrMissingHardware) {
		t.Fatalf("Sensors() error = %v, want ErrMissingHardware", err)
	}
	if err.Error() != "missing hardware: left_sensor" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestRobot_Attachment(t *testing.T) {
	r := &Robot{LeftAttachment: Attach[Motor](nopMotor{})}

	if _, err := r.Attachment(Left); err != nil {
		t.Errorf("Attachment(left): %v", err)
	}
	_, err := r.Attachment(Right)
	var mhe *MissingHardwareError
	if !errors.As(err, &mhe) || mhe.Component != "right_attachment" {
		t.Errorf("Attachment(right) error = %v, want missing right_attachment", err)
	}
}

func TestMissingHardwareError_Port(t *testing.T) {
	err := &MissingHardwareError{Component: "left_wheel", Port: "/dev/ttyUSB0#1"}
	want := "missing hardware: left_wheel (port /dev/ttyUSB0#1)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestMoveTimeMs(t *testing.T) {
	tests := []struct {
		ticks    int
		speed    float64
		expected int
	}{
		{4096, 360, 1000},  // one revolution at 1 rev/s
		{-4096, 360, 1000}, // direction does not matter
		{2048, -90, 2000},  // half revolution at 90 deg/s
		{1, 1000, 1},       // never zero for a real move
		{100, 0, 0},        // zero speed
	}

	for _, tt := range tests {
		got := moveTimeMs(tt.ticks, tt.speed)
		if got != tt.expected {
			t.Errorf("moveTimeMs(%d, %f) = %d, want %d", tt.ticks, tt.speed, got, tt.expected)
		}
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "squarebot.json")

	cfg := DefaultConfig()
	cfg.Port = "/dev/ttyACM0"
	cfg.Wheels.Left = ServoConfig{ID: 1, Inverted: true}
	cfg.Wheels.Right = ServoConfig{ID: 2}
	cfg.Calibration = Calibration{Left: {White: 80, Black: 10}}

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if !loaded.IsConfigured() {
		t.Error("loaded config should be configured")
	}
	if !loaded.Wheels.Left.Inverted {
		t.Error("left wheel inversion lost")
	}
	if loaded.Attachments.Side(Left).Configured() {
		t.Error("left attachment should not be configured")
	}
	if loaded.Specs.WheelDiameterMM != DefaultWheelDiameterMM {
		t.Errorf("WheelDiameterMM = %f, want %d", loaded.Specs.WheelDiameterMM, DefaultWheelDiameterMM)
	}
	if th, ok := loaded.Calibration.Threshold(); !ok || th != 45 {
		t.Errorf("Calibration.Threshold() = %f, %v, want 45, true", th, ok)
	}
	if got := maxConfiguredID(loaded); got != 2 {
		t.Errorf("maxConfiguredID = %d, want 2", got)
	}
}
