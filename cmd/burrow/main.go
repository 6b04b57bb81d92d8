package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "burrow",
	Short: "Burrow - DNS records that follow your virtual machines",
	Long: `Burrow keeps a DNS zone in step with the guests running on a Proxmox
cluster. Each run discovers the cluster's guests, works out an address
for every one of them, and converges the zone's A records with the
minimum number of write calls.

Built to run from cron or a systemd timer: one run, one exit code.`,
	Version: Version,

	// Failures are reported through structured logs; keep cobra from
	// repeating them with usage text appended
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Burrow version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))
}
