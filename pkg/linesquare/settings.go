package linesquare

import "time"

// Settings are the tunable parameters of the squaring controller.
type Settings struct {
	// DriveSpeed is the approach speed in mm/s.
	DriveSpeed float64
	// BlackThreshold is the reflectance percentage below which a sensor is
	// considered to be on the line.
	BlackThreshold float64
	// Tolerance is the largest left/right reflectance difference, in percent,
	// that counts as square.
	Tolerance float64
	// MaxAttempts bounds the number of alignment iterations.
	MaxAttempts int
	// Gain is the correction angle in degrees per percent of error.
	Gain float64
	// MaxCorrection caps a single correction, in degrees.
	MaxCorrection float64
	// SettleDelay is the wait after issuing corrections.
	SettleDelay time.Duration
	// PollInterval is the approach sensor polling cadence.
	PollInterval time.Duration
	// ApproachTimeout bounds the approach phase. Zero waits forever.
	ApproachTimeout time.Duration
	// AlignmentRatio scales the approach motor speed for corrections.
	AlignmentRatio float64
}

// Default settings.
const (
	DefaultDriveSpeed      = 200
	DefaultBlackThreshold  = 20
	DefaultTolerance       = 3
	DefaultMaxAttempts     = 20
	DefaultGain            = 5
	DefaultMaxCorrection   = 30
	DefaultSettleDelay     = 150 * time.Millisecond
	DefaultPollInterval    = 10 * time.Millisecond
	DefaultApproachTimeout = 15 * time.Second
	DefaultAlignmentRatio  = 0.25
)

// DefaultSettings returns the season defaults.
func DefaultSettings() Settings {
	return Settings{
		DriveSpeed:      DefaultDriveSpeed,
		BlackThreshold:  DefaultBlackThreshold,
		Tolerance:       DefaultTolerance,
		MaxAttempts:     DefaultMaxAttempts,
		Gain:            DefaultGain,
		MaxCorrection:   DefaultMaxCorrection,
		SettleDelay:     DefaultSettleDelay,
		PollInterval:    DefaultPollInterval,
		ApproachTimeout: DefaultApproachTimeout,
		AlignmentRatio:  DefaultAlignmentRatio,
	}
}

// Validate checks every field and returns a *ValidationError for the first
// invalid one.
func (s Settings) Validate() error {
	switch {
	case s.DriveSpeed <= 0:
		return &ValidationError{Field: "drive_speed", Message: "must be positive"}
	case s.BlackThreshold <= 0 || s.BlackThreshold > 100:
		return &ValidationError{Field: "black_threshold", Message: "must be in (0, 100]"}
	case s.Tolerance < 0:
		return &ValidationError{Field: "tolerance", Message: "must not be negative"}
	case s.MaxAttempts < 1:
		return &ValidationError{Field: "max_attempts", Message: "must be at least 1"}
	case s.Gain <= 0:
		return &ValidationError{Field: "gain", Message: "must be positive"}
	case s.MaxCorrection <= 0:
		return &ValidationError{Field: "max_correction", Message: "must be positive"}
	case s.SettleDelay < 0:
		return &ValidationError{Field: "settle_delay", Message: "must not be negative"}
	case s.PollInterval <= 0:
		return &ValidationError{Field: "poll_interval", Message: "must be positive"}
	case s.ApproachTimeout < 0:
		return &ValidationError{Field: "approach_timeout", Message: "must not be negative"}
	case s.AlignmentRatio <= 0 || s.AlignmentRatio > 1:
		return &ValidationError{Field: "alignment_ratio", Message: "must be in (0, 1]"}
	}
	return nil
}
