package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	DefaultCommandTimeout = 30 * time.Second
)

// cmdResult contains the result from the command
type cmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// cmd contains the command along with assertions to run on the output
type cmd struct {
	Cmd  string   // the command to run (required)
	Args []string // arguments for the command
	Dir  string   // override work dir

	// assertions
	Like    []string // stdout must contain these lines (regexp)
	ErrLike []string // stderr must contain these lines (regexp), if nil, stderr must be empty
	Exit    int      // exit code must match this number, set to -1 to accept all exit code (default 0)

	// optional values when running a cmd
	Timeout time.Duration     // maximum run duration (default 30sec)
	Env     map[string]string // environment values
}

// runCmd runs a command and applies all assertions
func runCmd(t *testing.T, opt *cmd) *cmdResult {
	t.Helper()
	require.NotEmptyf(t, opt.Cmd, "command must not be empty")

	if opt.Timeout <= 0 {
		opt.Timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), opt.Timeout)
	defer cancel()

	check, outbuf, errbuf := prepareCmd(ctx, opt)

	t.Logf("run: %s", check.String())
	err := check.Run()

	res := &cmdResult{
		Stdout: outbuf.String(),
		Stderr: errbuf.String(),
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.ExitCode = -1
		logCmd(t, check, res)
		assert.Failf(t, "timeout", "command run into timeout after %s", opt.Timeout.String())

		return res
	}

	if err != nil && check.ProcessState == nil {
		logCmd(t, check, res)
		require.NoErrorf(t, err, "command wait: %s", opt.Cmd)

		return res
	}
	res.ExitCode = check.ProcessState.ExitCode()

	if opt.Exit != -1 && !assert.Equalf(t, opt.Exit, res.ExitCode, "exit code is: %d", opt.Exit) {
		logCmd(t, check, res)
	}

	for _, l := range opt.Like {
		assert.Regexpf(t, l, res.Stdout, "stdout contains: "+l)
	}

	if len(opt.ErrLike) == 0 {
		assert.Regexpf(t, `^\s*$`, res.Stderr, "stderr must be empty")
	} else {
		for _, l := range opt.ErrLike {
			assert.Regexpf(t, l, res.Stderr, "stderr contains: "+l)
		}
	}

	return res
}

func prepareCmd(ctx context.Context, opt *cmd) (check *exec.Cmd, outbuf, errbuf *bytes.Buffer) {
	check = exec.CommandContext(ctx, opt.Cmd, opt.Args...) //nolint:gosec // for testing purposes only
	check.Env = os.Environ()
	for key, val := range opt.Env {
		check.Env = append(check.Env, fmt.Sprintf("%s=%s", key, val))
	}
	switch opt.Dir {
	case "":
		workDir, _ := filepath.Abs(".")
		check.Dir = workDir
	default:
		check.Dir = opt.Dir
	}

	outbuf = &bytes.Buffer{}
	errbuf = &bytes.Buffer{}
	check.Stdout = outbuf
	check.Stderr = errbuf

	return check, outbuf, errbuf
}

// getBinary returns path to the multi-call binary
func getBinary() string {
	workDir, _ := filepath.Abs(".")
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(workDir, "nagios-plugins.exe")
	default:
		return filepath.Join(workDir, "nagios-plugins")
	}
}

// logCmd prints some diagnostics useful when a command fails
func logCmd(t *testing.T, check *exec.Cmd, res *cmdResult) {
	t.Helper()
	t.Logf("cmd:     %s", check.String())
	t.Logf("path:    %s", check.Path)
	t.Logf("workdir: %s", check.Dir)
	t.Logf("exit:    %d", res.ExitCode)
	t.Logf("stdout:  %s", res.Stdout)
	t.Logf("stderr:  %s", res.Stderr)
}

// writeFile creates/updates a file with given content
func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()

	err := os.WriteFile(path, []byte(content), mode)
	require.NoErrorf(t, err, "writing file %s succeeded", path)
}

// skipWithoutShell skips tests which need posix shell scripts
func skipWithoutShell(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires a posix shell")
	}
}
