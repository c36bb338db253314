// Package logger configures the factorlog logger shared by all plugins.
//
// Plugins print their result on stdout, so all logging goes to stderr.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kdar/factorlog"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// define all available log level.
const (
	// LogVerbosityNone disables logging.
	LogVerbosityNone = 0

	// LogVerbosityDefault sets the default log level.
	LogVerbosityDefault = 1

	// LogVerbosityDebug sets the debug log level.
	LogVerbosityDebug = 2

	// LogVerbosityTrace sets trace log level.
	LogVerbosityTrace = 3

	// LogColors sets colors for some log levels
	LogColors = `%{Color "yellow+b" "WARN"}` +
		`%{Color "red+b" "ERROR"}` +
		`%{Color "red+b" "FATAL"}` +
		`%{Color "white+b" "INFO"}` +
		`%{Color "white" "DEBUG"}` +
		`%{Color "white" "TRACE"}`

	// LogColorReset resets colors from LogColors
	LogColorReset = `%{Color "reset"}`
)

var (
	DateTimeLogFormat = `[%{Date} %{Time "15:04:05.000"}]`
	LogFormat         = `[%{Severity}][pid:%{Pid}][%{ShortFile}:%{Line}] %{Message}`

	// Log is the logger used by all packages.
	Log = factorlog.New(os.Stderr, BuildFormatter(DateTimeLogFormat+LogFormat))

	currentLevel = "warn"
)

func init() {
	SetOutput(os.Stderr)
	SetLevel(currentLevel)
}

// SetLevel sets the log level, one of: off, error, warn, info, debug, trace.
func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "off":
		Log.SetMinMaxSeverity(factorlog.StringToSeverity("PANIC"), factorlog.StringToSeverity("PANIC"))
		Log.SetVerbosity(LogVerbosityNone)
	case "error", "warn", "info":
		Log.SetMinMaxSeverity(factorlog.StringToSeverity(strings.ToUpper(level)), factorlog.StringToSeverity("PANIC"))
		Log.SetVerbosity(LogVerbosityDefault)
	case "debug":
		Log.SetMinMaxSeverity(factorlog.StringToSeverity(strings.ToUpper(level)), factorlog.StringToSeverity("PANIC"))
		Log.SetVerbosity(LogVerbosityDebug)
	case "trace":
		Log.SetMinMaxSeverity(factorlog.StringToSeverity(strings.ToUpper(level)), factorlog.StringToSeverity("PANIC"))
		Log.SetVerbosity(LogVerbosityTrace)
	case "":
		return
	default:
		Log.Errorf("unknown log level: %s", level)

		return
	}
	currentLevel = strings.ToLower(level)
}

// Level returns the current log level.
func Level() string {
	return currentLevel
}

// IsDebug returns true if debug (or trace) logging is enabled.
func IsDebug() bool {
	return currentLevel == "debug" || currentLevel == "trace"
}

// SetVerbosity maps a verbosity counter (ex. from -zz) to a log level.
func SetVerbosity(verbose int) {
	switch {
	case verbose <= 0:
		return
	case verbose == 1:
		SetLevel("debug")
	default:
		SetLevel("trace")
	}
}

// SetOutput changes the log target, colors are used for terminals only.
func SetOutput(writer io.Writer) {
	format := DateTimeLogFormat + LogFormat
	if isTerminal(writer) {
		format = LogColors + format + LogColorReset
		if file, ok := writer.(*os.File); ok {
			// translates escape sequences on windows consoles
			writer = colorable.NewColorable(file)
		}
	}
	Log.SetFormatter(BuildFormatter(format))
	Log.SetOutput(writer)
}

// SetFormat overrides the log format, see https://pkg.go.dev/github.com/kdar/factorlog
func SetFormat(format string) {
	if format != "" {
		Log.SetFormatter(BuildFormatter(format))
	}
}

func BuildFormatter(format string) *factorlog.StdFormatter {
	format = strings.ReplaceAll(format, "%{Pid}", fmt.Sprintf("%d", os.Getpid()))

	return (factorlog.NewStdFormatter(format))
}

// LogError logs the error if it is not nil.
func LogError(err error) {
	if err != nil {
		logErr := Log.Output(factorlog.ERROR, 2, err.Error())
		if logErr != nil {
			fmt.Fprintf(os.Stderr, "failed to log: %s (%s)\n", err.Error(), logErr.Error())
		}
	}
}

// LogDebug logs the error with debug level if it is not nil.
func LogDebug(err error) {
	if err != nil {
		logErr := Log.Output(factorlog.DEBUG, 2, err.Error())
		if logErr != nil {
			fmt.Fprintf(os.Stderr, "failed to log: %s (%s)\n", err.Error(), logErr.Error())
		}
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
