package main

import (
	"context"
	"errors"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"github.com/radioactivebrix/squarebot/pkg/config"
	"github.com/radioactivebrix/squarebot/pkg/linesquare"
	"github.com/radioactivebrix/squarebot/pkg/logging"
	"github.com/radioactivebrix/squarebot/pkg/robot"
)

// Exit codes.
const (
	ExitSuccess         = 0
	ExitErrorGeneric    = 1
	ExitErrorTimeout    = 2
	ExitMissingHardware = 3
	ExitErrorConfig     = 4
	ExitErrorCanceled   = 130
)

type Options struct {
	Verbose    bool              `short:"v" long:"verbose" description:"Log controller decisions at debug level"`
	Setup      SetupCommand      `command:"setup" description:"Scan for the servo bus and identify the wheels"`
	Ports      PortsCommand      `command:"ports" description:"List serial ports and the servos on them"`
	Square     SquareCommand     `command:"square" description:"Drive onto the line and square up on it"`
	Monitor    MonitorCommand    `command:"monitor" description:"Show live reflectance of both line sensors"`
	Calibrate  CalibrateCommand  `command:"calibrate" description:"Sample white and black and store a threshold"`
	Attachment AttachmentCommand `command:"attachment" description:"Turn an attachment motor by an angle"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "squarebot - line squaring for two-wheel robots"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(ExitSuccess)
			}
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var ce *config.ConfigError
	var ve *linesquare.ValidationError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.Is(err, linesquare.ErrApproachTimedOut):
		return ExitErrorTimeout
	case errors.Is(err, robot.ErrMissingHardware):
		return ExitMissingHardware
	case errors.As(err, &ce), errors.As(err, &ve):
		return ExitErrorConfig
	default:
		return ExitErrorGeneric
	}
}

func newLogger() *logging.ZerologAdapter {
	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	return logging.NewConsoleLogger(os.Stderr, level)
}
