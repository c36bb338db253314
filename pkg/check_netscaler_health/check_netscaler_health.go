// Package check_netscaler_health checks cpu, memory and high availability
// state of a NetScaler appliance through its NITRO api.
package check_netscaler_health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/biola/nagios-plugins/pkg/logger"
	"github.com/biola/nagios-plugins/pkg/nitro"
	"github.com/biola/nagios-plugins/pkg/plugin"
	"github.com/biola/nagios-plugins/pkg/threshold"
	"github.com/biola/nagios-plugins/pkg/utils"
)

const (
	// Name is the plugin name used in usage output.
	Name = "check_netscaler_health"

	ModeCPU    = "cpuusage"
	ModeMemory = "memusage"
	ModeHA     = "hastate"
)

var log = logger.Log

var (
	// ErrInvalidMode is returned for unknown --mode values.
	ErrInvalidMode = errors.New("Invalid mode selected.") //nolint:stylecheck // printed as is

	// ErrNotConfigured is returned if the node is not part of a ha pair.
	ErrNotConfigured = errors.New("High availability not configured on this node.") //nolint:stylecheck // printed as is
)

// Modes lists all supported modes.
var Modes = []string{ModeCPU, ModeMemory, ModeHA}

type healthOpts struct {
	plugin.Common
	Host          string `short:"H" long:"host" value-name:"HOSTNAME" description:"The hostname or IP address of the NetScaler appliance"`
	Mode          string `short:"m" long:"mode" value-name:"VALUE" description:"The mode of the plugin. Available options: cpuusage, memusage, hastate"`
	Username      string `short:"u" long:"username" value-name:"VALUE" env:"NETSCALER_USERNAME" description:"The username to use for authentication"`
	Password      string `short:"p" long:"password" value-name:"VALUE" env:"NETSCALER_PASSWORD" description:"The password to use for authentication"`
	Warning       int64  `short:"w" long:"warning" value-name:"VALUE" default:"75" description:"Warning threshold for CPU or memory usage"`
	Critical      int64  `short:"c" long:"critical" value-name:"VALUE" default:"90" description:"Critical threshold for CPU or memory usage"`
	Insecure      bool   `short:"k" long:"insecure" description:"Skip certificate verification"`
	TLSMinVersion string `long:"tls-min-version" value-name:"VERSION" default:"tls1.2" description:"Minimum TLS version"`
	Timeout       string `short:"t" long:"timeout" value-name:"DURATION" default:"60s" description:"Timeout for each api request"`
}

// Check runs the plugin and returns the exit code.
func Check(ctx context.Context, output io.Writer, args []string) int {
	opts := &healthOpts{}
	psr := plugin.NewParser(Name, "[OPTIONS]", opts)
	if _, err := psr.Parse(args); err != nil {
		return psr.UsageExit(output, err)
	}
	opts.Apply()

	err := plugin.CheckRequired(
		plugin.Required{Name: "host", Value: opts.Host},
		plugin.Required{Name: "mode", Value: opts.Mode},
		plugin.Required{Name: "username", Value: opts.Username},
		plugin.Required{Name: "password", Value: opts.Password},
	)
	if err != nil {
		return psr.UsageExit(output, err)
	}

	if !validMode(opts.Mode) {
		fmt.Fprintf(output, "%s\n", plugin.Unknown("%s", ErrInvalidMode.Error()).Output())
		psr.WriteHelp(output)

		return threshold.Unknown.ExitCode()
	}

	config, err := opts.clientConfig()
	if err != nil {
		return psr.UsageExit(output, &plugin.UsageError{Message: err.Error()})
	}

	return opts.run(ctx, config).Write(output)
}

func validMode(mode string) bool {
	for _, m := range Modes {
		if m == mode {
			return true
		}
	}

	return false
}

func (opts *healthOpts) clientConfig() (nitro.Config, error) {
	timeout, err := utils.ParseDuration(opts.Timeout)
	if err != nil {
		return nitro.Config{}, fmt.Errorf("invalid timeout %s: %s", opts.Timeout, err.Error())
	}
	if _, err := utils.ParseTLSMinVersion(opts.TLSMinVersion); err != nil {
		return nitro.Config{}, err
	}

	return nitro.Config{
		Host:          opts.Host,
		Username:      opts.Username,
		Password:      opts.Password,
		Insecure:      opts.Insecure,
		TLSMinVersion: opts.TLSMinVersion,
		Timeout:       timeout,
	}, nil
}

func (opts *healthOpts) threshold() threshold.Threshold {
	th := threshold.New(float64(opts.Warning), float64(opts.Critical), threshold.Ascending, threshold.Strict)
	plugin.LintThreshold(opts.Mode, th)

	return th
}

func (opts *healthOpts) run(ctx context.Context, config nitro.Config) *plugin.Result {
	client, err := nitro.NewClient(config)
	if err != nil {
		return plugin.Unknown("%s", err.Error())
	}
	log.Debugf("checking %s on %s", opts.Mode, client.BaseURL())

	var result *plugin.Result
	err = nitro.WithSession(ctx, client, func(session *nitro.Session) error {
		var err error
		switch opts.Mode {
		case ModeCPU:
			result, err = opts.checkCPU(ctx, session)
		case ModeMemory:
			result, err = opts.checkMemory(ctx, session)
		case ModeHA:
			result, err = checkHA(ctx, session)
		default:
			err = ErrInvalidMode
		}

		return err
	})

	if err != nil {
		// includes ErrNotConfigured
		return plugin.Unknown("%s", err.Error())
	}

	return result
}

func (opts *healthOpts) checkCPU(ctx context.Context, session *nitro.Session) (*plugin.Result, error) {
	cpus, err := session.SystemCPUs(ctx)
	if err != nil {
		return nil, err
	}

	th := opts.threshold()
	agg := threshold.NewAggregator(threshold.Policy{})
	metrics := make([]*plugin.Metric, 0, len(cpus))
	for _, cpu := range cpus {
		usage := cpu.PerCPUUse.Int64("percpuuse")
		obs := threshold.Observation{Label: "CPU" + cpu.ID.String(), Value: float64(usage)}
		agg.Add(ModeCPU, obs, th, func(f *threshold.Finding) string {
			return fmt.Sprintf("%s usage: %s%%", f.Label, cpu.PerCPUUse.String())
		})
		metrics = append(metrics, percentMetric("cpu"+cpu.ID.String(), usage, th))
	}

	result := plugin.FromReport(agg.Report(" "))
	result.Metrics = metrics

	return result, nil
}

func (opts *healthOpts) checkMemory(ctx context.Context, session *nitro.Session) (*plugin.Result, error) {
	mem, err := session.SystemMemory(ctx)
	if err != nil {
		return nil, err
	}

	th := opts.threshold()
	usage := mem.MemUsagePcnt.Int64("memusagepcnt")
	agg := threshold.NewAggregator(threshold.Policy{})
	agg.Add(ModeMemory, threshold.Observation{Label: "memory", Value: float64(usage)}, th, func(_ *threshold.Finding) string {
		return fmt.Sprintf("memory usage is %d%%", usage)
	})

	result := plugin.FromReport(agg.Report(" "))
	result.AddMetric(percentMetric("memory", usage, th))

	return result, nil
}

// checkHA is a plain state check, there are no thresholds involved.
func checkHA(ctx context.Context, session *nitro.Session) (*plugin.Result, error) {
	node, err := session.HANode(ctx)
	if err != nil {
		return nil, err
	}

	if !node.Configured() {
		log.Debugf("hacurstatus is %q", node.HACurStatus)

		return nil, ErrNotConfigured
	}

	verdict := threshold.OK
	if !node.Up() {
		log.Debugf("hacurstate is %q", node.HACurState)
		verdict = threshold.Critical
	}

	msg := fmt.Sprintf("state is %s; last transition was %s", node.HACurMasterState, strings.TrimSpace(node.TransTime))

	return plugin.NewResult(verdict, msg), nil
}

func percentMetric(name string, value int64, th threshold.Threshold) *plugin.Metric {
	return &plugin.Metric{
		Name:     name,
		Unit:     "%",
		Value:    value,
		Warning:  plugin.Float(th.Warning),
		Critical: plugin.Float(th.Critical),
		Min:      plugin.Float(0),
		Max:      plugin.Float(100),
	}
}
