package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", Version())
		},
	})
}

// Version returns the version string including build information.
func Version() string {
	return fmt.Sprintf("%s v%s.%s (Build: %s, %s)", NAME, VERSION, buildRevision, buildID, runtime.Version())
}
