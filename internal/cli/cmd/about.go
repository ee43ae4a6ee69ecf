package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/titanbrowser/capbridge/internal/cli/styles"
)

var aboutCmd = &cobra.Command{
	Use:   "about",
	Short: "Show version and build information",
	RunE:  runAbout,
}

func init() {
	rootCmd.AddCommand(aboutCmd)
}

func runAbout(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	renderer := styles.NewAboutRenderer(app.Theme)
	fmt.Println(renderer.Render(app.BuildInfo))
	return nil
}
