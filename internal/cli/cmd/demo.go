package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/titanbrowser/capbridge/internal/bridge"
	"github.com/titanbrowser/capbridge/internal/cli/model"
	"github.com/titanbrowser/capbridge/internal/config"
	"github.com/titanbrowser/capbridge/internal/domain/entity"
	"github.com/titanbrowser/capbridge/internal/permission"
	"github.com/titanbrowser/capbridge/internal/platform/simhost"
)

var demoOrigin string

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Drive the bridge interactively against the simulated host",
	Long: `Start an interactive console wired to a bridge instance backed by the
in-memory simulated host. Each line is dispatched as a capability call;
results and subscription events stream into the transcript.

Permission prompts auto-grant so every capability is reachable. Stored
decisions for the demo origin still apply; clear them with
'capbridge permissions set'.

Examples:
  capbridge demo
  capbridge demo --origin https://demo.example`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().StringVar(&demoOrigin, "origin", "https://demo.capbridge.local", "Origin the demo content pretends to be")
}

func runDemo(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := app.Ctx()

	host := simhost.New(simhost.Options{})
	defer func() { _ = host.Close() }()

	// A separate gate with an auto-granting prompter keeps the demo flowing;
	// it still persists decisions through the shared store.
	gate := permission.NewGate(permission.Options{
		Store: app.Permissions,
		Prompter: permission.PrompterFunc(func(_ context.Context, _ string, _ entity.PermissionKind) (entity.PermissionState, error) {
			return entity.PermissionGranted, nil
		}),
		PromptTimeout: app.Config.Permissions.PromptTimeout,
	})

	// Demo config: everything on.
	cfg := *app.Config
	cfg.Capabilities.NotificationsEnabled = true
	cfg.Capabilities.GeolocationEnabled = true

	sink := &model.ConsoleSink{}
	br, err := bridge.New(ctx, bridge.Options{
		Origin:   demoOrigin,
		Config:   &cfg,
		Adapters: host,
		Gate:     gate,
		Sink:     sink,
	})
	if err != nil {
		return fmt.Errorf("construct bridge: %w", err)
	}
	defer br.Dispose(ctx)

	console := model.NewConsoleModel(ctx, app.Theme, br)
	program := tea.NewProgram(console, tea.WithAltScreen())
	sink.Attach(program)

	// Capability toggles are read at bridge construction, so a live edit of
	// the config file only takes effect on the next run. Surface that.
	if watcher, werr := config.NewWatcher(ctx); werr == nil {
		defer func() { _ = watcher.Close() }()
		watcher.OnConfigChange(func(*config.Config) {
			sink.Notify("config file changed on disk; restart the demo to apply it")
		})
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run demo console: %w", err)
	}
	return nil
}
