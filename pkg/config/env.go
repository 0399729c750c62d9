package config

import (
	"os"
	"strconv"
	"time"

	"github.com/radioactivebrix/squarebot/pkg/linesquare"
)

// EnvPrefix is prepended to every settings environment variable.
const EnvPrefix = "SQUAREBOT_"

// ApplyEnv overrides settings from SQUAREBOT_* environment variables, for
// example SQUAREBOT_DRIVE_SPEED=150 or SQUAREBOT_SETTLE_DELAY=200ms. Values
// that do not parse are ignored.
func ApplyEnv(s *linesquare.Settings) {
	s.DriveSpeed = getEnvFloat("DRIVE_SPEED", s.DriveSpeed)
	s.BlackThreshold = getEnvFloat("BLACK_THRESHOLD", s.BlackThreshold)
	s.Tolerance = getEnvFloat("TOLERANCE", s.Tolerance)
	s.MaxAttempts = getEnvInt("MAX_ATTEMPTS", s.MaxAttempts)
	s.Gain = getEnvFloat("GAIN", s.Gain)
	s.MaxCorrection = getEnvFloat("MAX_CORRECTION", s.MaxCorrection)
	s.SettleDelay = getEnvDuration("SETTLE_DELAY", s.SettleDelay)
	s.PollInterval = getEnvDuration("POLL_INTERVAL", s.PollInterval)
	s.ApproachTimeout = getEnvDuration("APPROACH_TIMEOUT", s.ApproachTimeout)
	s.AlignmentRatio = getEnvFloat("ALIGNMENT_RATIO", s.AlignmentRatio)
}

// getEnvString returns the value of EnvPrefix+key, or defaultVal if unset.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvDuration accepts formats like "150ms" or "15s".
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// SettingsPath returns the season file named by SQUAREBOT_SETTINGS, or
// fallback.
func SettingsPath(fallback string) string {
	return getEnvString("SETTINGS", fallback)
}
