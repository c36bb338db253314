package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const fakeSmartctl = `#!/bin/sh
case "$*" in
  --scan)
    echo "/dev/sda -d sat # /dev/sda [SAT], ATA device"
    echo "/dev/sdb -d sat # /dev/sdb [SAT], ATA device"
    ;;
  *"/dev/sda")
    echo "ID# ATTRIBUTE_NAME          FLAG     VALUE WORST THRESH TYPE      UPDATED  WHEN_FAILED RAW_VALUE"
    echo "  5 Reallocated_Sector_Ct   0x0033   200   200   140    Pre-fail  Always       -       0"
    echo "197 Current_Pending_Sector  0x0032   200   200   000    Old_age   Always       -       0"
    ;;
  *"/dev/sdb")
    echo "ID# ATTRIBUTE_NAME          FLAG     VALUE WORST THRESH TYPE      UPDATED  WHEN_FAILED RAW_VALUE"
    echo "  5 Reallocated_Sector_Ct   0x0033   200   200   140    Pre-fail  Always       -       3"
    exit 64
    ;;
esac
`

func TestCommandFlags(t *testing.T) {
	bin := getBinary()
	require.FileExistsf(t, bin, "nagios-plugins binary must exist")

	runCmd(t, &cmd{
		Cmd:  bin,
		Args: []string{"version"},
		Like: []string{`^nagios-plugins v\d+\.\d+\.7 \(Build: e2e`},
	})

	runCmd(t, &cmd{
		Cmd:  bin,
		Args: []string{"--help"},
		Like: []string{"Usage:", "check_netscaler_health", "check_netscaler_vserver", "check_smart"},
	})

	runCmd(t, &cmd{
		Cmd:  bin,
		Args: []string{"check_netscaler_health", "--help"},
		Like: []string{"check_netscaler_health", "--mode"},
		Exit: 3,
	})

	runCmd(t, &cmd{
		Cmd:  bin,
		Args: []string{"check_netscaler_vserver", "-H", "ns1"},
		Like: []string{"Missing options: vserver, username, password"},
		Exit: 3,
	})
}

func TestCheckSmart(t *testing.T) {
	skipWithoutShell(t)

	bin := getBinary()
	dir := t.TempDir()
	smartctl := filepath.Join(dir, "smartctl")
	writeFile(t, smartctl, fakeSmartctl, 0o700)

	runCmd(t, &cmd{
		Cmd:  bin,
		Args: []string{"check_smart", "--smartctl", smartctl, "-v"},
		Like: []string{`^WARNING: /dev/sda is OK; /dev/sdb attribute 5 is WARNING \|'/dev/sda_5'=0;1;50 '/dev/sda_197'=0;1;2 '/dev/sdb_5'=3;1;50`},
		Exit: 1,
	})

	runCmd(t, &cmd{
		Cmd:     bin,
		Args:    []string{"check_smart", "--smartctl", smartctl, "-r", "sda", "-z"},
		Like:    []string{`^OK: all disks passed`},
		ErrLike: []string{`devices found`, `Reallocated_Sector_Ct`},
	})

	// busybox style symlink
	link := filepath.Join(dir, "check_smart")
	require.NoError(t, os.Symlink(bin, link))
	runCmd(t, &cmd{
		Cmd:  link,
		Args: []string{"--smartctl", smartctl, "-d", "/dev/sda", "-i", "sat", "-x"},
		Like: []string{`^OK: /dev/sda attribute 5 is OK; /dev/sda attribute 197 is OK`},
	})
}
