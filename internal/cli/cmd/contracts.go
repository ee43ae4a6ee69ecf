package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/titanbrowser/capbridge/internal/bridge"
	"github.com/titanbrowser/capbridge/internal/cli/styles"
)

var contractsJSONSchema bool

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "List the capability contract table",
	Long: `List every capability the bridge can expose, its call kind, the
permission it requires, and the OS families that can serve it.

With --schema, emit JSON Schema documents for each capability's argument
and result shapes instead of the table.`,
	RunE: runContracts,
}

func init() {
	rootCmd.AddCommand(contractsCmd)
	contractsCmd.Flags().BoolVar(&contractsJSONSchema, "schema", false, "Emit JSON Schema for argument and result shapes")
}

func runContracts(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	if contractsJSONSchema {
		return printContractSchemas()
	}

	rows := make([]styles.ContractRow, 0, len(bridge.Contracts()))
	for _, c := range bridge.Contracts() {
		platforms := make([]string, 0, len(c.Platforms))
		for _, f := range c.Platforms {
			platforms = append(platforms, string(f))
		}
		rows = append(rows, styles.ContractRow{
			Name:       string(c.Name),
			Kind:       kindLabel(c.Kind),
			Permission: string(c.RequiredPermission),
			Platforms:  platforms,
		})
	}

	renderer := styles.NewContractsRenderer(app.Theme)
	fmt.Println(renderer.Render(rows))
	return nil
}

func kindLabel(kind bridge.CallKind) string {
	switch kind {
	case bridge.KindWatch:
		return "watch"
	case bridge.KindWatchCancel:
		return "watch-cancel"
	default:
		return "one-shot"
	}
}

// contractSchema is the per-capability schema document emitted by --schema.
type contractSchema struct {
	Capability string             `json:"capability"`
	Kind       string             `json:"kind"`
	Permission string             `json:"permission,omitempty"`
	Args       *jsonschema.Schema `json:"args,omitempty"`
	Result     *jsonschema.Schema `json:"result,omitempty"`
}

func printContractSchemas() error {
	reflector := new(jsonschema.Reflector)
	reflector.DoNotReference = true

	docs := make([]contractSchema, 0, len(bridge.Contracts()))
	for _, c := range bridge.Contracts() {
		doc := contractSchema{
			Capability: string(c.Name),
			Kind:       kindLabel(c.Kind),
			Permission: string(c.RequiredPermission),
		}
		if c.Args != nil {
			doc.Args = reflector.Reflect(c.Args)
		}
		if c.Result != nil {
			doc.Result = reflector.Reflect(c.Result)
		}
		docs = append(docs, doc)
	}

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schemas: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
