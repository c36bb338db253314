package smartctl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/biola/nagios-plugins/pkg/convert"
	"github.com/biola/nagios-plugins/pkg/utils"
)

// AutoInterface lets smartctl guess the device type.
const AutoInterface = "auto"

// attribute table columns, the last one keeps the rest of the line
const attributeColumns = 10

// Device is a disk together with the smartctl device type used to access it.
type Device struct {
	Path      string
	Interface string
}

// Selector chooses which devices get checked.
type Selector struct {
	// Device is checked exclusively if set.
	Device string

	// Interface overrides the device type of all devices.
	Interface string

	// Regex filters scanned devices by path, unanchored.
	Regex *regexp.Regexp
}

// Explicit returns true if a single device was requested and no scan is needed.
func (s *Selector) Explicit() bool {
	return s.Device != ""
}

// Attribute is a row of the smartctl attribute table.
type Attribute struct {
	ID         string
	Name       string
	Flag       string
	Value      string
	Worst      string
	Thresh     string
	Type       string
	Updated    string
	WhenFailed string
	RawValue   string
}

// Raw returns the leading integer of the raw value. Values like
// "33 (Min/Max 20/45)" use the first number only.
func (a *Attribute) Raw() (num int64, ok bool) {
	fields := strings.Fields(a.RawValue)
	if len(fields) == 0 {
		return 0, false
	}

	return convert.Int64Loose(fields[0])
}

// Scan runs smartctl --scan and returns all devices found. Runners
// implementing UnprivilegedRunner scan without their privilege wrapper.
func Scan(ctx context.Context, runner Runner) ([]Device, error) {
	if unprivileged, ok := runner.(UnprivilegedRunner); ok {
		runner = unprivileged.Unprivileged()
	}
	output, code, err := runner.Run(ctx, "--scan")
	if err != nil {
		return nil, fmt.Errorf("scanning devices: %w", err)
	}
	if _, err := ParseReturnCode(code); err != nil {
		return nil, fmt.Errorf("scanning devices: %w", err)
	}

	return ParseScan(output), nil
}

// ParseScan parses the output of smartctl --scan:
//
//	/dev/sda -d scsi # /dev/sda, SCSI device
func ParseScan(output []byte) []Device {
	devices := []Device{}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		tokens := strings.Fields(line)
		dev := Device{Path: tokens[0], Interface: AutoInterface}
		if len(tokens) >= 3 && tokens[1] == "-d" {
			dev.Interface = tokens[2]
		}
		devices = append(devices, dev)
	}

	return devices
}

// SelectDevices applies the selector to the scanned devices. An explicit
// device is returned as only entry, regardless of the scan result.
func SelectDevices(found []Device, sel Selector) []Device {
	if sel.Explicit() {
		iface := sel.Interface
		if iface == "" {
			iface = AutoInterface
		}

		return []Device{{Path: sel.Device, Interface: iface}}
	}

	selected := []Device{}
	for _, dev := range found {
		if sel.Regex != nil && !sel.Regex.MatchString(dev.Path) {
			log.Debugf("skipping %s, does not match %s", dev.Path, sel.Regex.String())

			continue
		}
		if sel.Interface != "" {
			dev.Interface = sel.Interface
		}
		selected = append(selected, dev)
	}

	return selected
}

// Discover returns the devices to check, scanning only if required.
func Discover(ctx context.Context, runner Runner, sel Selector) ([]Device, error) {
	if sel.Explicit() {
		return SelectDevices(nil, sel), nil
	}

	found, err := Scan(ctx, runner)
	if err != nil {
		return nil, err
	}

	return SelectDevices(found, sel), nil
}

// ReadAttributes runs smartctl -A for the device and parses the attribute table.
func ReadAttributes(ctx context.Context, runner Runner, dev Device) ([]Attribute, error) {
	output, code, err := runner.Run(ctx, "-A", "-d", dev.Interface, dev.Path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dev.Path, err)
	}

	explanation, err := ParseReturnCode(code)
	if err != nil {
		return nil, fmt.Errorf("%s: smartctl exit code %d: %w", dev.Path, code, err)
	}
	if code != 0 {
		log.Debugf("%s: smartctl exit code %d: %s", dev.Path, code, explanation)
	}

	log.Debugf("SMART attributes for %s (%s):\n%s", dev.Path, dev.Interface, output)

	return ParseAttributes(output), nil
}

// ParseAttributes returns all rows of the attribute table in output order.
// Rows are recognized by their numeric attribute id.
func ParseAttributes(output []byte) []Attribute {
	attributes := []Attribute{}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := utils.FieldsN(scanner.Text(), attributeColumns)
		if len(fields) == 0 || !utils.IsDigitsOnly(fields[0]) {
			continue
		}
		if len(fields) < attributeColumns {
			log.Debugf("incomplete attribute row: %s", scanner.Text())
			fields = append(fields, make([]string, attributeColumns-len(fields))...)
		}

		attributes = append(attributes, Attribute{
			ID:         fields[0],
			Name:       fields[1],
			Flag:       fields[2],
			Value:      fields[3],
			Worst:      fields[4],
			Thresh:     fields[5],
			Type:       fields[6],
			Updated:    fields[7],
			WhenFailed: fields[8],
			RawValue:   strings.TrimSpace(fields[9]),
		})
	}

	return attributes
}
