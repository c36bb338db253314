package plugin

import (
	"fmt"
	"io"
	"strings"

	"github.com/biola/nagios-plugins/pkg/threshold"
	"github.com/mackerelio/checkers"
)

// Result is the outcome of a single plugin run.
type Result struct {
	*checkers.Checker
	Metrics []*Metric
}

// NewResult creates a result with given verdict and message.
func NewResult(verdict threshold.Verdict, message string) *Result {
	return &Result{
		Checker: checkers.NewChecker(checkers.Status(verdict), message),
	}
}

// FromReport creates a result from an aggregated report.
func FromReport(report threshold.Report) *Result {
	return NewResult(report.Verdict, report.Message)
}

// Unknown creates an unknown result, used when the check itself fails.
func Unknown(format string, args ...interface{}) *Result {
	return NewResult(threshold.Unknown, fmt.Sprintf(format, args...))
}

// Verdict returns the state of this result.
func (r *Result) Verdict() threshold.Verdict {
	return threshold.Verdict(r.Status)
}

// AddMetric appends performance data.
func (r *Result) AddMetric(metric *Metric) {
	r.Metrics = append(r.Metrics, metric)
}

// Output returns the plugin output line: "STATE: message |perfdata"
func (r *Result) Output() string {
	var out strings.Builder
	out.WriteString(r.Verdict().String())
	out.WriteString(": ")
	out.WriteString(strings.TrimSpace(r.Message))
	if len(r.Metrics) > 0 {
		perf := make([]string, 0, len(r.Metrics))
		for _, m := range r.Metrics {
			perf = append(perf, m.String())
		}
		out.WriteString(" |")
		out.WriteString(strings.Join(perf, " "))
	}

	return out.String()
}

// Write prints the output line and returns the exit code.
func (r *Result) Write(output io.Writer) int {
	fmt.Fprintf(output, "%s\n", r.Output())

	return r.Verdict().ExitCode()
}
