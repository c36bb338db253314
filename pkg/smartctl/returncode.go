package smartctl

import (
	"errors"
	"strings"
)

var (
	// ErrCommandLine is bit 0 of the smartctl exit code.
	ErrCommandLine = errors.New("command line did not parse")

	// ErrDeviceOpen is bit 1 of the smartctl exit code.
	ErrDeviceOpen = errors.New("device open failed, device did not return an IDENTIFY DEVICE structure, or device is in a low-power mode")
)

// informational bits, see smartctl(8)
var returnCodeBits = []struct {
	mask        int
	explanation string
}{
	{1 << 2, "Some SMART or other ATA command to the disk failed, or there was a checksum error in the SMART data structure."},
	{1 << 3, "SMART status check returned DISK FAILING."},
	{1 << 4, "Some Attributes have been <= threshold, which translates into a prefailure."},
	{1 << 5, "SMART status check returned DISK OK but some (usage or prefail) Attributes have been <= threshold at some time in the past."},
	{1 << 6, "The device error log contains records of errors."},
	{1 << 7, "The device self-test log contains records of errors."},
}

// ParseReturnCode explains the smartctl exit code.
// An error is returned if smartctl could not read the device at all, the
// remaining bits only describe problems while the output is still usable.
func ParseReturnCode(returnCode int) (explanation string, err error) {
	if returnCode == 0 {
		return "No problem with the error code", nil
	}

	if returnCode&(1<<0) > 0 {
		return "Command line did not parse", ErrCommandLine
	}
	if returnCode&(1<<1) > 0 {
		return "Device open failed", ErrDeviceOpen
	}

	explanations := []string{}
	for _, bit := range returnCodeBits {
		if returnCode&bit.mask > 0 {
			explanations = append(explanations, bit.explanation)
		}
	}

	return "The return code of the smartctl indicates problems: " + strings.Join(explanations, " | "), nil
}
