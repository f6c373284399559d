package main

import (
	"runtime"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		pterm.Fprintln(cmd.OutOrStdout(), pterm.Sprintf("cloudcollector %s (%s %s/%s)", version, runtime.Version(), runtime.GOOS, runtime.GOARCH))
	},
}
