// Package plugin contains the parts shared by all monitoring plugins:
// argument parsing, usage handling and result output.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/biola/nagios-plugins/pkg/logger"
	"github.com/biola/nagios-plugins/pkg/threshold"
	"github.com/jessevdk/go-flags"
)

// CheckFunc is the entry point of a plugin.
type CheckFunc func(ctx context.Context, output io.Writer, args []string) int

// Common contains the options every plugin supports.
type Common struct {
	Config string `long:"config" value-name:"FILE" no-ini:"true" description:"Read options from ini file (section [Application Options]), command line options take precedence"`
	Debug  []bool `short:"z" long:"debug" no-ini:"true" description:"Run in debugging mode, repeat for trace output (logs go to stderr)"`
}

// UsageError is returned for missing or invalid arguments.
type UsageError struct {
	Message string
	Help    bool
}

func (e *UsageError) Error() string {
	return e.Message
}

// Parser wraps the go-flags parser.
type Parser struct {
	*flags.Parser
}

// NewParser creates a parser for the given options struct.
func NewParser(name, usage string, opts interface{}) *Parser {
	psr := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash) // default flags without flags.PrintErrors
	psr.Name = name
	psr.Usage = usage

	return &Parser{Parser: psr}
}

// Parse reads the optional ini file and parses command line args afterwards.
// Remaining positional args are returned.
func (p *Parser) Parse(args []string) ([]string, error) {
	if file := configFileArg(args); file != "" {
		logger.Log.Debugf("reading options from %s", file)
		ini := flags.NewIniParser(p.Parser)
		if err := ini.ParseFile(file); err != nil {
			return nil, &UsageError{Message: fmt.Sprintf("config file %s: %s", file, err.Error())}
		}
	}

	rest, err := p.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, &UsageError{Message: flagsErr.Message, Help: true}
		}

		return nil, &UsageError{Message: err.Error()}
	}

	return rest, nil
}

// UsageExit writes the error (or help text) to output and returns the exit code
// for usage problems. Those are reported as UNKNOWN.
func (p *Parser) UsageExit(output io.Writer, err error) int {
	var usageErr *UsageError
	if errors.As(err, &usageErr) && usageErr.Help {
		fmt.Fprintf(output, "%s\n", usageErr.Message)

		return threshold.Unknown.ExitCode()
	}

	fmt.Fprintf(output, "%s\n", err.Error())
	p.WriteHelp(output)

	return threshold.Unknown.ExitCode()
}

// Apply configures logging from the common options.
func (c *Common) Apply() {
	logger.SetVerbosity(len(c.Debug))
}

// Required is a mandatory option and its value.
type Required struct {
	Name  string
	Value string
}

// CheckRequired returns a usage error listing all options without value.
// It is used instead of the required tag so values from env and ini files
// count as well.
func CheckRequired(options ...Required) error {
	missing := []string{}
	for _, opt := range options {
		if strings.TrimSpace(opt.Value) == "" {
			missing = append(missing, opt.Name)
		}
	}
	if len(missing) > 0 {
		return &UsageError{Message: fmt.Sprintf("Missing options: %s", strings.Join(missing, ", "))}
	}

	return nil
}

// configFileArg extracts the --config value before the real parsing starts
func configFileArg(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--":
			return ""
		case arg == "--config" && i+1 < len(args):
			return args[i+1]
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}

	return ""
}

// LintThreshold logs a warning if the threshold pair looks wrong. The check
// still runs with the given values.
func LintThreshold(name string, th threshold.Threshold) {
	if err := th.Validate(); err != nil {
		logger.Log.Warnf("%s threshold %s: %s", name, th.String(), err.Error())

		return
	}
	logger.Log.Debugf("%s threshold: %s", name, th.String())
}
