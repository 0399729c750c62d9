// Package config loads season settings for the squaring controller.
//
// A season file is TOML or YAML, chosen by extension. Top-level keys set the
// base settings and each [missions.<name>] table overrides them for one
// mission:
//
//	drive_speed = 200
//	black_threshold = 20
//	settle_delay = "150ms"
//
//	[missions.m04]
//	drive_speed = 150
//
// Precedence, lowest first: built-in defaults, the file, the mission table,
// SQUAREBOT_* environment variables, then command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/radioactivebrix/squarebot/pkg/linesquare"
)

// ConfigError reports an unusable settings file or value.
type ConfigError struct {
	Path    string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Duration is a time.Duration written as a string such as "150ms".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// fileSettings mirrors linesquare.Settings. Nil fields are left unchanged.
type fileSettings struct {
	DriveSpeed      *float64  `toml:"drive_speed" yaml:"drive_speed"`
	BlackThreshold  *float64  `toml:"black_threshold" yaml:"black_threshold"`
	Tolerance       *float64  `toml:"tolerance" yaml:"tolerance"`
	MaxAttempts     *int      `toml:"max_attempts" yaml:"max_attempts"`
	Gain            *float64  `toml:"gain" yaml:"gain"`
	MaxCorrection   *float64  `toml:"max_correction" yaml:"max_correction"`
	SettleDelay     *Duration `toml:"settle_delay" yaml:"settle_delay"`
	PollInterval    *Duration `toml:"poll_interval" yaml:"poll_interval"`
	ApproachTimeout *Duration `toml:"approach_timeout" yaml:"approach_timeout"`
	AlignmentRatio  *float64  `toml:"alignment_ratio" yaml:"alignment_ratio"`
}

func (f fileSettings) apply(s *linesquare.Settings) {
	setFloat(&s.DriveSpeed, f.DriveSpeed)
	setFloat(&s.BlackThreshold, f.BlackThreshold)
	setFloat(&s.Tolerance, f.Tolerance)
	if f.MaxAttempts != nil {
		s.MaxAttempts = *f.MaxAttempts
	}
	setFloat(&s.Gain, f.Gain)
	setFloat(&s.MaxCorrection, f.MaxCorrection)
	setDuration(&s.SettleDelay, f.SettleDelay)
	setDuration(&s.PollInterval, f.PollInterval)
	setDuration(&s.ApproachTimeout, f.ApproachTimeout)
	setFloat(&s.AlignmentRatio, f.AlignmentRatio)
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *Duration) {
	if v != nil {
		*dst = time.Duration(*v)
	}
}

type seasonFile struct {
	fileSettings `yaml:",inline"`
	Missions     map[string]fileSettings `toml:"missions" yaml:"missions"`
}

// Season is a parsed season file.
type Season struct {
	Path     string
	base     fileSettings
	missions map[string]fileSettings
}

// Load reads a season file. The format follows the extension: .toml, .yaml
// or .yml. Unknown keys are rejected.
func Load(path string) (*Season, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Message: "read settings", Err: err}
	}

	var raw seasonFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		meta, err := toml.Decode(string(data), &raw)
		if err != nil {
			return nil, &ConfigError{Path: path, Message: "parse toml", Err: err}
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, &ConfigError{Path: path, Message: fmt.Sprintf("unknown key %q", undecoded[0].String())}
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, &ConfigError{Path: path, Message: "parse yaml", Err: err}
		}
	default:
		return nil, &ConfigError{Path: path, Message: fmt.Sprintf("unsupported extension %q", ext)}
	}

	return &Season{Path: path, base: raw.fileSettings, missions: raw.Missions}, nil
}

// Missions returns the mission names in the file, sorted.
func (s *Season) Missions() []string {
	names := make([]string, 0, len(s.missions))
	for name := range s.missions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Settings returns the defaults overlaid with the file and, if mission is not
// empty, with that mission's table.
func (s *Season) Settings(mission string) (linesquare.Settings, error) {
	settings := linesquare.DefaultSettings()
	s.base.apply(&settings)
	if mission != "" {
		m, ok := s.missions[mission]
		if !ok {
			return settings, &ConfigError{
				Path:    s.Path,
				Message: fmt.Sprintf("unknown mission %q (have: %s)", mission, strings.Join(s.Missions(), ", ")),
			}
		}
		m.apply(&settings)
	}
	return settings, nil
}

// Resolve builds validated settings from an optional season file, an optional
// mission name and the environment.
func Resolve(path, mission string) (linesquare.Settings, error) {
	settings := linesquare.DefaultSettings()
	if path != "" {
		season, err := Load(path)
		if err != nil {
			return settings, err
		}
		if settings, err = season.Settings(mission); err != nil {
			return settings, err
		}
	} else if mission != "" {
		return settings, &ConfigError{Message: fmt.Sprintf("mission %q needs a settings file", mission)}
	}

	ApplyEnv(&settings)
	if err := settings.Validate(); err != nil {
		return settings, &ConfigError{Path: path, Message: "invalid settings", Err: err}
	}
	return settings, nil
}
