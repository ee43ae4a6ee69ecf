// Package cmd provides Cobra CLI commands for capbridge.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/titanbrowser/capbridge/internal/cli"
	"github.com/titanbrowser/capbridge/internal/domain/build"
)

var (
	app       *cli.App
	buildInfo build.Info
	rootCmd   = &cobra.Command{
		Use:   "capbridge",
		Short: "Host capability bridge for embedded web content",
		Long: `Capbridge exposes a curated set of host capabilities (clipboard, share,
notifications, geolocation, battery, network, screen orientation) to
untrusted script content running in an embedded web renderer.

Script content calls a promise-based API installed on the page; each call
crosses the trust boundary once, passes a permission gate, and resolves
with exactly one result.

Explore the subcommands to inspect contracts, check host support, manage
stored permission decisions, or drive the bridge interactively against the
simulated host.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}

			var err error
			app, err = cli.NewApp()
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			app.BuildInfo = buildInfo
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
}
