package robot

import (
	"errors"
	"fmt"
)

// ErrMissingHardware matches any MissingHardwareError.
var ErrMissingHardware = errors.New("missing hardware")

// MissingHardwareError reports a required motor or sensor that is not
// connected. It is raised before any motion is commanded.
type MissingHardwareError struct {
	// Component names the missing device, e.g. "right_sensor".
	Component string
	// Port is the configured port or servo ID, if known.
	Port string
}

func (e *MissingHardwareError) Error() string {
	msg := fmt.Sprintf("missing hardware: %s", e.Component)
	if e.Port != "" {
		msg += fmt.Sprintf(" (port %s)", e.Port)
	}
	return msg
}

// Is reports whether target is ErrMissingHardware.
func (e *MissingHardwareError) Is(target error) bool {
	return target == ErrMissingHardware
}
