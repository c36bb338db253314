// Package check_netscaler_vserver checks the share of available service
// bindings of a NetScaler load balancing vserver.
package check_netscaler_vserver

import (
	"context"
	"fmt"
	"io"

	"github.com/biola/nagios-plugins/pkg/nitro"
	"github.com/biola/nagios-plugins/pkg/plugin"
	"github.com/biola/nagios-plugins/pkg/threshold"
	"github.com/biola/nagios-plugins/pkg/utils"
)

// Name is the plugin name used in usage output.
const Name = "check_netscaler_vserver"

type vserverOpts struct {
	plugin.Common
	Host          string `short:"H" long:"host" value-name:"HOSTNAME" description:"The hostname or IP address of the NetScaler appliance"`
	VServer       string `short:"v" long:"vserver" value-name:"VALUE" description:"The name of the NetScaler virtual server"`
	Username      string `short:"u" long:"username" value-name:"VALUE" env:"NETSCALER_USERNAME" description:"The username to use for authentication"`
	Password      string `short:"p" long:"password" value-name:"VALUE" env:"NETSCALER_PASSWORD" description:"The password to use for authentication"`
	Warning       int64  `short:"w" long:"warning" value-name:"VALUE" default:"50" description:"Service availability to result in a warning state"`
	Critical      int64  `short:"c" long:"critical" value-name:"VALUE" default:"0" description:"Service availability to result in a critical state"`
	Insecure      bool   `short:"k" long:"insecure" description:"Skip certificate verification"`
	TLSMinVersion string `long:"tls-min-version" value-name:"VERSION" default:"tls1.2" description:"Minimum TLS version"`
	Timeout       string `short:"t" long:"timeout" value-name:"DURATION" default:"60s" description:"Timeout for each api request"`
}

// Check runs the plugin and returns the exit code.
func Check(ctx context.Context, output io.Writer, args []string) int {
	opts := &vserverOpts{}
	psr := plugin.NewParser(Name, "[OPTIONS]", opts)
	if _, err := psr.Parse(args); err != nil {
		return psr.UsageExit(output, err)
	}
	opts.Apply()

	err := plugin.CheckRequired(
		plugin.Required{Name: "host", Value: opts.Host},
		plugin.Required{Name: "vserver", Value: opts.VServer},
		plugin.Required{Name: "username", Value: opts.Username},
		plugin.Required{Name: "password", Value: opts.Password},
	)
	if err != nil {
		return psr.UsageExit(output, err)
	}

	timeout, err := utils.ParseDuration(opts.Timeout)
	if err != nil {
		return psr.UsageExit(output, &plugin.UsageError{Message: fmt.Sprintf("invalid timeout %s: %s", opts.Timeout, err.Error())})
	}

	client, err := nitro.NewClient(nitro.Config{
		Host:          opts.Host,
		Username:      opts.Username,
		Password:      opts.Password,
		Insecure:      opts.Insecure,
		TLSMinVersion: opts.TLSMinVersion,
		Timeout:       timeout,
	})
	if err != nil {
		return psr.UsageExit(output, &plugin.UsageError{Message: err.Error()})
	}

	// the session is closed before the result gets printed
	var vserver *nitro.LBVServer
	err = nitro.WithSession(ctx, client, func(session *nitro.Session) error {
		var err error
		vserver, err = session.LBVServer(ctx, opts.VServer)

		return err
	})
	if err != nil {
		return plugin.Unknown("%s", err.Error()).Write(output)
	}

	return opts.evaluate(vserver).Write(output)
}

func (opts *vserverOpts) evaluate(vserver *nitro.LBVServer) *plugin.Result {
	th := threshold.New(float64(opts.Warning), float64(opts.Critical), threshold.Descending, threshold.Inclusive)
	plugin.LintThreshold("vserver", th)

	health := vserver.VSLBHealth.Int64("vslbhealth")
	agg := threshold.NewAggregator(threshold.Policy{})
	agg.Add(vserver.Name, threshold.Observation{Label: vserver.Name, Value: float64(health)}, th, func(_ *threshold.Finding) string {
		return fmt.Sprintf("%s%% of service bindings are available", vserver.VSLBHealth.String())
	})

	result := plugin.FromReport(agg.Report(""))
	result.AddMetric(&plugin.Metric{
		Name:     "health",
		Unit:     "%",
		Value:    health,
		Warning:  plugin.Float(th.Warning),
		Critical: plugin.Float(th.Critical),
		Min:      plugin.Float(0),
		Max:      plugin.Float(100),
	})

	return result
}
