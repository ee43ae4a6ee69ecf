package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/titanbrowser/capbridge/internal/facade"
)

var facadeBootToken string

var facadeCmd = &cobra.Command{
	Use:   "facade",
	Short: "Print the script facade a renderer would inject",
	Long: `Build the JavaScript polyfill from the configured handler and global
names and print it. Renderer integrators can inspect the exact script a
bridge instance installs, or pipe it into their own injection tooling.

Each invocation generates a fresh boot token unless --boot-token pins one,
so correlation ids in the output differ run to run.

Examples:
  capbridge facade
  capbridge facade --boot-token devtoken > titanhost.js`,
	RunE: runFacade,
}

func init() {
	rootCmd.AddCommand(facadeCmd)
	facadeCmd.Flags().StringVar(&facadeBootToken, "boot-token", "", "Pin the correlation id boot token (default: random)")
}

func runFacade(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	script, err := facade.Build(facade.Options{
		HandlerName: app.Config.Facade.HandlerName,
		GlobalName:  app.Config.Facade.GlobalName,
		BootToken:   facadeBootToken,
	})
	if err != nil {
		return fmt.Errorf("build facade script: %w", err)
	}

	fmt.Println(script)
	return nil
}
