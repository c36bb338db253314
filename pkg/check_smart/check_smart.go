// Package check_smart checks SMART attributes of local disks using smartctl.
package check_smart

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/biola/nagios-plugins/pkg/logger"
	"github.com/biola/nagios-plugins/pkg/plugin"
	"github.com/biola/nagios-plugins/pkg/smartctl"
	"github.com/biola/nagios-plugins/pkg/threshold"
	"github.com/biola/nagios-plugins/pkg/utils"
)

// Name is the plugin name used in usage output.
const Name = "check_smart"

var log = logger.Log

type smartOpts struct {
	plugin.Common
	Device       string `short:"d" long:"device" value-name:"DEVICE" description:"A physical disk to check, e.g. /dev/sda"`
	Interface    string `short:"i" long:"interface" value-name:"TYPE" description:"The interface of the device, e.g. scsi"`
	Regex        string `short:"r" long:"regex" value-name:"REGEX" description:"A regular expression of disks to check, e.g. /dev/sd.{1,2}"`
	Verbose      bool   `short:"v" long:"verbose" description:"Return status of each hard drive"`
	ExtraVerbose bool   `short:"x" long:"extra-verbose" description:"Return the status of each attribute of each hard drive"`
	Smartctl     string `long:"smartctl" value-name:"COMMAND" default:"sudo /usr/sbin/smartctl" description:"Command used to run smartctl"`
}

// findingRow is used for the debug table.
type findingRow struct {
	Device    string
	Attribute string
	Raw       string
	Threshold string
	State     threshold.Verdict
}

// Check runs the plugin and returns the exit code.
// All detected disks are checked unless a device or regex is given.
func Check(ctx context.Context, output io.Writer, args []string) int {
	return check(ctx, output, args, nil)
}

func check(ctx context.Context, output io.Writer, args []string, runner smartctl.Runner) int {
	opts := &smartOpts{}
	psr := plugin.NewParser(Name, "[OPTIONS]", opts)
	if _, err := psr.Parse(args); err != nil {
		return psr.UsageExit(output, err)
	}
	opts.Apply()

	sel := smartctl.Selector{
		Device:    opts.Device,
		Interface: opts.Interface,
	}
	if opts.Regex != "" {
		regex, err := regexp.Compile(opts.Regex)
		if err != nil {
			return psr.UsageExit(output, &plugin.UsageError{Message: fmt.Sprintf("invalid regex %s: %s", opts.Regex, err.Error())})
		}
		sel.Regex = regex
	}

	if runner == nil {
		execRunner, err := smartctl.NewExecRunner(opts.Smartctl)
		if err != nil {
			return psr.UsageExit(output, &plugin.UsageError{Message: err.Error()})
		}
		runner = execRunner
	}

	return opts.run(ctx, runner, sel).Write(output)
}

func (opts *smartOpts) run(ctx context.Context, runner smartctl.Runner, sel smartctl.Selector) *plugin.Result {
	devices, err := smartctl.Discover(ctx, runner, sel)
	if err != nil {
		return plugin.Unknown("%s", err.Error())
	}
	logDevices(devices)
	log.Debugf("checked attributes: %v", AttributeIDs())

	policy := threshold.Policy{
		Filter: threshold.KeepProblems(opts.ExtraVerbose),
	}
	if opts.Verbose {
		policy.Fallback = func(device string) string {
			return device + " is OK"
		}
	}
	agg := threshold.NewAggregator(policy)

	metrics := []*plugin.Metric{}
	for _, dev := range devices {
		attributes, err := smartctl.ReadAttributes(ctx, runner, dev)
		if err != nil {
			return plugin.Unknown("%s", err.Error())
		}

		for i := range attributes {
			attr := &attributes[i]
			id, err := strconv.Atoi(attr.ID)
			if err != nil {
				continue
			}
			th, ok := lookupThreshold(id)
			if !ok {
				continue
			}

			raw, clean := attr.Raw()
			if !clean {
				log.Warnf("%s: attribute %s has malformed raw value %q, using %d", dev.Path, attr.ID, attr.RawValue, raw)
			}

			obs := threshold.Observation{
				Label: fmt.Sprintf("%s attribute %s", dev.Path, attr.ID),
				Value: float64(raw),
			}
			agg.Add(dev.Path, obs, th, nil)

			metrics = append(metrics, &plugin.Metric{
				Name:     fmt.Sprintf("%s_%s", dev.Path, attr.ID),
				Value:    raw,
				Warning:  plugin.Float(th.Warning),
				Critical: plugin.Float(th.Critical),
			})
		}
		agg.CloseGroup(dev.Path)
	}

	report := agg.Report("; ")
	logFindings(report.Findings)
	if report.Message == "" && report.Verdict == threshold.OK {
		report.Message = "all disks passed"
	}

	result := plugin.FromReport(report)
	result.Metrics = metrics

	return result
}

func logDevices(devices []smartctl.Device) {
	if !logger.IsDebug() {
		return
	}

	table, err := utils.ASCIITable([]utils.ASCIITableHeader{
		{Name: "Device", Field: "Path"},
		{Name: "Interface", Field: "Interface"},
	}, devices)
	if err != nil {
		log.Debugf("devices found: %v", devices)

		return
	}
	log.Debugf("devices found:\n%s", table)
}

func logFindings(findings []threshold.Finding) {
	if !logger.IsDebug() {
		return
	}

	rows := make([]findingRow, 0, len(findings))
	for i := range findings {
		rows = append(rows, findingRow{
			Device:    findings[i].Group,
			Attribute: findings[i].Label,
			Raw:       strconv.FormatFloat(findings[i].Value, 'f', -1, 64),
			Threshold: findings[i].Threshold.String(),
			State:     findings[i].Verdict,
		})
	}

	table, err := utils.ASCIITable([]utils.ASCIITableHeader{
		{Name: "Attribute", Field: "Attribute"},
		{Name: "Raw", Field: "Raw", Centered: true},
		{Name: "Threshold", Field: "Threshold"},
		{Name: "State", Field: "State", Centered: true},
	}, rows)
	if err != nil {
		log.Debugf("findings: %v", rows)

		return
	}
	log.Debugf("evaluated attributes:\n%s", table)
}
