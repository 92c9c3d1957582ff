// Package restart implements the Restarter port. After a cycle merges code
// the bot replaces itself so the next cycle runs the merged code.
package restart

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ericfisherdev/meritbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Restarter = (*Restarter)(nil)

// Mode selects how the process restarts.
type Mode string

const (
	// ModeExec replaces the process image in place.
	ModeExec Mode = "exec"
	// ModeExit exits with ExitCode and leaves the restart to a supervisor.
	ModeExit Mode = "exit"
	// ModeNone only logs the request.
	ModeNone Mode = "none"
)

// ExitCode is the status used by ModeExit so supervisors can tell a
// requested restart from a crash.
const ExitCode = 3

// ParseMode validates a configured restart mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeExec, ModeExit, ModeNone:
		return m, nil
	case "":
		return ModeExec, nil
	default:
		return "", fmt.Errorf("unknown restart mode %q (want exec, exit or none)", s)
	}
}

// Restarter restarts the bot according to its Mode.
type Restarter struct {
	mode    Mode
	command []string

	exit func(code int)
	exec func(argv []string) error
}

// NewRestarter creates a Restarter. command overrides the argv used by
// ModeExec; when empty the running executable is re-executed with its
// original arguments.
func NewRestarter(mode Mode, command string) *Restarter {
	return &Restarter{
		mode:    mode,
		command: strings.Fields(command),
		exit:    os.Exit,
		exec:    execProcess,
	}
}

// Restart performs the restart. In ModeExec and ModeExit it does not return
// on success.
func (r *Restarter) Restart() error {
	switch r.mode {
	case ModeNone:
		slog.Info("restart requested, restart mode is none")
		return nil
	case ModeExit:
		slog.Info("restart requested, exiting", "code", ExitCode)
		flushOutput()
		r.exit(ExitCode)
		return nil
	case ModeExec:
		argv, err := r.argv()
		if err != nil {
			return err
		}
		slog.Info("restart requested, re-executing", "argv", argv)
		flushOutput()
		if err := r.exec(argv); err != nil {
			return fmt.Errorf("exec %s: %w", argv[0], err)
		}
		return nil
	default:
		return fmt.Errorf("unknown restart mode %q", r.mode)
	}
}

func (r *Restarter) argv() ([]string, error) {
	if len(r.command) > 0 {
		return r.command, nil
	}

	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}
	return append([]string{self}, os.Args[1:]...), nil
}

func flushOutput() {
	_ = os.Stdout.Sync()
	_ = os.Stderr.Sync()
}
