package commands

import (
	"os"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"compsec/internal/catalog"
	"compsec/internal/database"
	"compsec/internal/ui"
	"compsec/internal/validation"
)

var initFrameworksCmd = &cobra.Command{
	Use:   "init-frameworks",
	Short: "Seed ISO 27005, NIST RMF and GDPR into an empty store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		seeded, created, err := database.SeedFrameworks(ctx)
		if err != nil {
			return err
		}
		if !created {
			pterm.Info.Println("Frameworks already initialized.")
			return nil
		}
		pterm.Success.Printf("Initialized %d default frameworks.\n\n", len(seeded))
		ui.PrintFrameworks(seeded)
		return nil
	},
}

var importFrameworkCmd = &cobra.Command{
	Use:   "import-framework <file>",
	Short: "Create or update a framework from a YAML or JSON document",
	Long:  `Reads a framework document (.yaml, .yml or .json) and upserts it by name. Controls in the file replace the stored ones; fields the file leaves out are kept.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, _ := cmd.Flags().GetString("actor")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrap(err, "read framework file")
		}
		doc, err := catalog.Parse(args[0], data)
		if err != nil {
			return err
		}
		if err := validation.New().Struct(doc); err != nil {
			for _, m := range validation.Messages(err) {
				pterm.Error.Println(m)
			}
			return errors.New("invalid framework document")
		}

		ctx, cancel, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		fw, created, err := database.UpsertFramework(ctx, doc, actor)
		if err != nil {
			return err
		}
		if created {
			pterm.Success.Printf("Created framework %q (%d controls).\n", fw.Name, len(fw.Controls))
		} else {
			pterm.Success.Printf("Updated framework %q (%d controls).\n", fw.Name, len(fw.Controls))
		}
		return nil
	},
}

func init() {
	importFrameworkCmd.Flags().String("actor", "compsecctl", "Name recorded as the framework's author")
	rootCmd.AddCommand(initFrameworksCmd, importFrameworkCmd)
}
