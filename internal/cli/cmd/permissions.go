package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/titanbrowser/capbridge/internal/cli/styles"
	"github.com/titanbrowser/capbridge/internal/domain/entity"
)

var permissionsCmd = &cobra.Command{
	Use:   "permissions",
	Short: "Inspect and edit stored permission decisions",
}

var permissionsListCmd = &cobra.Command{
	Use:   "list <origin>",
	Short: "List stored decisions for an origin",
	Args:  cobra.ExactArgs(1),
	RunE:  runPermissionsList,
}

var permissionsSetCmd = &cobra.Command{
	Use:   "set <origin> <kind> <state>",
	Short: "Override a decision (granted, denied, not_determined)",
	Long: `Override a stored permission decision from the host side.

Setting not_determined clears the decision so the next gated call prompts
again. Kinds: location, notifications.

Examples:
  capbridge permissions set https://example.com notifications granted
  capbridge permissions set https://example.com location not_determined`,
	Args: cobra.ExactArgs(3),
	RunE: runPermissionsSet,
}

func init() {
	rootCmd.AddCommand(permissionsCmd)
	permissionsCmd.AddCommand(permissionsListCmd)
	permissionsCmd.AddCommand(permissionsSetCmd)
}

func runPermissionsList(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	if app.Permissions == nil {
		return fmt.Errorf("permission persistence is disabled (permissions.database_path is empty)")
	}

	records, err := app.Permissions.ListByOrigin(app.Ctx(), args[0])
	if err != nil {
		return fmt.Errorf("list permissions: %w", err)
	}

	if len(records) == 0 {
		fmt.Println(app.Theme.Subtle.Render("no stored decisions for " + args[0]))
		return nil
	}

	fmt.Println(app.Theme.Title.Render(args[0]))
	for _, rec := range records {
		stateStyle := app.Theme.SuccessStyle
		if rec.State == entity.PermissionDenied {
			stateStyle = app.Theme.ErrorStyle
		}
		fmt.Printf("  %s %s %s\n",
			app.Theme.Normal.Render(fmt.Sprintf("%-15s", rec.Kind)),
			stateStyle.Render(string(rec.State)),
			app.Theme.Subtle.Render(time.Unix(rec.UpdatedAt, 0).Format("2006-01-02 15:04")),
		)
	}
	return nil
}

func runPermissionsSet(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	if app.Permissions == nil {
		return fmt.Errorf("permission persistence is disabled (permissions.database_path is empty)")
	}

	origin := args[0]
	kind := entity.PermissionKind(args[1])
	state := entity.PermissionState(args[2])

	if kind != entity.PermissionLocation && kind != entity.PermissionNotifications {
		return fmt.Errorf("unknown permission kind %q", args[1])
	}
	if !state.Valid() {
		return fmt.Errorf("unknown permission state %q", args[2])
	}

	if err := app.Gate.Set(app.Ctx(), origin, kind, state); err != nil {
		return fmt.Errorf("set permission: %w", err)
	}

	fmt.Println(app.Theme.SuccessStyle.Render(
		fmt.Sprintf("%s %s for %s -> %s", styles.IconCheck, kind, origin, state)))
	return nil
}
