// Package detector chooses between the interactive dashboard and linear logs.
package detector

import (
	"os"

	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// OutputMode is the renderer the run command uses.
type OutputMode int

const (
	// ModeAuto defers to environment detection.
	ModeAuto OutputMode = iota
	// ModeTUI selects the interactive dashboard.
	ModeTUI
	// ModeLinear selects plain log lines.
	ModeLinear
)

// String returns the flag value for the mode.
func (m OutputMode) String() string {
	switch m {
	case ModeTUI:
		return "tui"
	case ModeLinear:
		return "linear"
	default:
		return "auto"
	}
}

// Env is the part of the process environment the detector inspects.
type Env struct {
	IsTerminal bool
	Getenv     func(string) string
}

// ProcessEnv describes the current process.
func ProcessEnv() Env {
	return Env{
		IsTerminal: term.IsTerminal(int(os.Stdout.Fd())),
		Getenv:     os.Getenv,
	}
}

// Detect returns the linear mode outside a terminal or under CI and the dashboard otherwise.
func Detect(env Env) OutputMode {
	ci := ""
	if env.Getenv != nil {
		ci = env.Getenv("CI")
	}
	if !env.IsTerminal || ci == "true" || ci == "1" {
		return ModeLinear
	}
	return ModeTUI
}

// ParseMode parses the --output flag. "ci" is accepted as an alias of "linear".
func ParseMode(flag string) (OutputMode, error) {
	switch flag {
	case "", "auto":
		return ModeAuto, nil
	case "tui":
		return ModeTUI, nil
	case "linear", "ci":
		return ModeLinear, nil
	default:
		return ModeAuto, zerr.With(ErrUnknownMode, "output", flag)
	}
}

// ErrUnknownMode is returned for an unrecognized --output value.
var ErrUnknownMode = zerr.New("unknown output mode")

// Resolve applies a user override to the detected mode.
func Resolve(detected, override OutputMode) OutputMode {
	if override == ModeAuto {
		return detected
	}
	return override
}
