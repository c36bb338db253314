// Package smartctl runs smartctl to discover disks and read their SMART attribute table.
package smartctl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/biola/nagios-plugins/pkg/logger"
	"github.com/sni/shelltoken"
)

var log = logger.Log

// DefaultCommand is used to run smartctl if nothing else is configured.
const DefaultCommand = "sudo /usr/sbin/smartctl"

// ErrEmptyCommand is returned if the smartctl command line is empty.
var ErrEmptyCommand = errors.New("smartctl command is empty")

// Runner executes smartctl with the given arguments and returns its
// stdout and exit code. A non-zero exit code is not an error.
type Runner interface {
	Run(ctx context.Context, args ...string) (output []byte, exitCode int, err error)
}

// UnprivilegedRunner is implemented by runners which can drop their
// privilege wrapper. Device scans do not need root.
type UnprivilegedRunner interface {
	Runner
	Unprivileged() Runner
}

// sudo options followed by a separate argument
var sudoArgOptions = map[string]bool{
	"-u": true, "-g": true, "-C": true, "-h": true, "-p": true,
	"-r": true, "-t": true, "-U": true, "-D": true,
}

// ExecRunner runs smartctl as external command.
type ExecRunner struct {
	// Command is the command prefix, ex.: ["sudo", "/usr/sbin/smartctl"]
	Command []string
}

// NewExecRunner parses the command line and returns a runner for it.
func NewExecRunner(command string) (*ExecRunner, error) {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}

	_, argv, err := shelltoken.SplitLinux(command)
	if err != nil {
		return nil, fmt.Errorf("parsing smartctl command %s: %s", command, err.Error())
	}
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}

	return &ExecRunner{Command: argv}, nil
}

// Run executes the command.
func (r *ExecRunner) Run(ctx context.Context, args ...string) (output []byte, exitCode int, err error) {
	if len(r.Command) == 0 {
		return nil, -1, ErrEmptyCommand
	}

	binary, err := exec.LookPath(r.Command[0])
	if err != nil {
		return nil, -1, fmt.Errorf("could not find %s: %s", r.Command[0], err.Error())
	}

	cmdArgs := make([]string, 0, len(r.Command)-1+len(args))
	cmdArgs = append(cmdArgs, r.Command[1:]...)
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.CommandContext(ctx, binary, cmdArgs...)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	log.Debugf("running: %s %s", binary, strings.Join(cmdArgs, " "))
	err = cmd.Run()
	if stderr.Len() > 0 {
		log.Debugf("stderr: %s", strings.TrimSpace(stderr.String()))
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return stdout.Bytes(), exitErr.ExitCode(), nil
		}

		return stdout.Bytes(), -1, fmt.Errorf("running '%s %s' failed: %w", binary, strings.Join(cmdArgs, " "), err)
	}

	return stdout.Bytes(), 0, nil
}

// Unprivileged returns a runner without a leading sudo and its options.
// The runner itself is returned if there is nothing to strip.
func (r *ExecRunner) Unprivileged() Runner {
	if len(r.Command) < 2 || filepath.Base(r.Command[0]) != "sudo" {
		return r
	}

	rest := r.Command[1:]
	for len(rest) > 0 && strings.HasPrefix(rest[0], "-") {
		opt := rest[0]
		rest = rest[1:]
		if opt == "--" {
			break
		}
		if sudoArgOptions[opt] && len(rest) > 0 {
			rest = rest[1:]
		}
	}
	if len(rest) == 0 {
		return r
	}

	return &ExecRunner{Command: rest}
}
