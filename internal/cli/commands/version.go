package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/shiftguard/pkg/config"
)

// Version is set via ldflags at build time.
var Version = "dev"

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the version of ShiftGuard. With --verbose, also print the Go runtime and the supported rules.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "shiftguard %s\n", Version)
			if verbose {
				fmt.Fprintf(w, "go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
				fmt.Fprintf(w, "rules: %v\n", config.RuleNames)
			}
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show runtime and rule details")
	return cmd
}
