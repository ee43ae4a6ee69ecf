package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/titanbrowser/capbridge/internal/bridge"
	"github.com/titanbrowser/capbridge/internal/cli"
	"github.com/titanbrowser/capbridge/internal/cli/styles"
	"github.com/titanbrowser/capbridge/internal/domain/entity"
	"github.com/titanbrowser/capbridge/internal/platform"
	"github.com/titanbrowser/capbridge/internal/platform/darwinhost"
	"github.com/titanbrowser/capbridge/internal/platform/linuxhost"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check which capabilities this host can serve",
	Long: `Doctor probes the running host (bus connections, clipboard helpers)
and reports, per capability, whether the bridge would serve it or fail it
with capability_unavailable.

Examples:
  capbridge doctor`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	adapters := hostAdapters(app)
	defer func() { _ = adapters.Close() }()

	report := styles.DoctorReport{
		Family:    string(adapters.Family()),
		OverallOK: true,
	}

	for _, c := range bridge.Contracts() {
		check := styles.DoctorCheck{
			Capability: string(c.Name),
			Gated:      c.Gated(),
		}

		switch {
		case !c.SupportsFamily(adapters.Family()):
			check.Detail = "not supported on this family"
		case c.Kind == bridge.KindWatch:
			_, check.Available = adapters.Watcher(c.Name)
		case c.Kind == bridge.KindWatchCancel:
			// Cancellation is served by the bridge itself.
			check.Available = true
		case c.Name == entity.CapNotificationRequestPermission:
			check.Available = true
		default:
			_, check.Available = adapters.Invoker(c.Name)
		}

		if !check.Available {
			report.OverallOK = false
		}
		report.Checks = append(report.Checks, check)
	}

	renderer := styles.NewDoctorRenderer(app.Theme)
	fmt.Println(renderer.Render(report))
	return nil
}

// hostAdapters probes the real host for the current GOOS.
func hostAdapters(app *cli.App) platform.AdapterSet {
	if runtime.GOOS == "darwin" {
		return darwinhost.New()
	}
	return linuxhost.New(app.Ctx(), linuxhost.Options{})
}
