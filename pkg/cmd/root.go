// Package cmd contains the multi-call binary which runs every plugin by
// sub command or by the name it was called with.
package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/biola/nagios-plugins/pkg/check_netscaler_health"
	"github.com/biola/nagios-plugins/pkg/check_netscaler_vserver"
	"github.com/biola/nagios-plugins/pkg/check_smart"
	"github.com/biola/nagios-plugins/pkg/plugin"
	"github.com/biola/nagios-plugins/pkg/threshold"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	// NAME contains the binary name.
	NAME = "nagios-plugins"

	// VERSION contains the actual version.
	VERSION = "1.0"
)

// CheckEntry is a plugin available as sub command.
type CheckEntry struct {
	Check       plugin.CheckFunc
	Description string
}

// AvailableChecks contains all plugins by name.
var AvailableChecks = map[string]CheckEntry{
	check_netscaler_health.Name:  {check_netscaler_health.Check, "Check cpu, memory or ha state of a NetScaler appliance"},
	check_netscaler_vserver.Name: {check_netscaler_vserver.Check, "Check service availability of a NetScaler lb vserver"},
	check_smart.Name:             {check_smart.Check, "Check SMART attributes of local disks"},
}

var (
	// build info set from main
	buildRevision = "0"
	buildID       = "unknown"

	// exit code of the last plugin run
	exitCode int
)

var rootCmd = &cobra.Command{
	Use:   NAME + " [command]",
	Short: "Monitoring plugins for NetScaler appliances and SMART disks.",
	Long: `nagios-plugins bundles all plugins into a single binary.

Plugins can be run as sub command or by creating a symlink named like the
plugin pointing to this binary.

Examples:

# run the vserver check
nagios-plugins check_netscaler_vserver -H ns1 -v vs_web

# same as above, using a symlink
ln -s nagios-plugins check_netscaler_vserver
./check_netscaler_vserver -H ns1 -v vs_web
`,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s called without arguments, see --help for usage.\n", NAME)
		exitCode = threshold.Unknown.ExitCode()
	},
}

func init() {
	rootCmd.DisableAutoGenTag = true
	rootCmd.DisableSuggestions = true
	rootCmd.SilenceUsage = true
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddGroup(&cobra.Group{ID: "plugins", Title: "Plugins:"})

	names := maps.Keys(AvailableChecks)
	slices.Sort(names)
	for _, name := range names {
		entry := AvailableChecks[name]
		rootCmd.AddCommand(&cobra.Command{
			Use:                name + " [plugin options]",
			Short:              entry.Description,
			GroupID:            "plugins",
			DisableFlagParsing: true,
			Run: func(cmd *cobra.Command, args []string) {
				exitCode = entry.Check(cmd.Context(), cmd.OutOrStdout(), args)
			},
		})
	}
}

// Execute runs the command line and returns the exit code.
func Execute(ctx context.Context, build, revision string, args []string, output io.Writer) int {
	if build != "" {
		buildID = build
	}
	if revision != "" {
		buildRevision = revision
	}

	return run(ctx, args, output)
}

// run dispatches directly if args[0] is a plugin name, otherwise the sub commands are used.
func run(ctx context.Context, args []string, output io.Writer) int {
	if len(args) > 0 {
		name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		if entry, ok := AvailableChecks[name]; ok {
			return entry.Check(ctx, output, args[1:])
		}
		args = args[1:]
	}
	if args == nil {
		// cobra falls back to os.Args otherwise
		args = []string{}
	}

	exitCode = 0
	rootCmd.SetOut(output)
	rootCmd.SetErr(output)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return threshold.Unknown.ExitCode()
	}

	return exitCode
}
