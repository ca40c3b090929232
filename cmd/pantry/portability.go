package pantry

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/saadjs/pantry-cli/internal/app"
	"github.com/saadjs/pantry-cli/internal/service"
)

var (
	exportOut    string
	importFile   string
	importMode   string
	importDryRun bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export ingredients, grocery list and shops as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			data := service.ExportDataSnapshot(stores(a), nowFunc())
			var w io.Writer = cmd.OutOrStdout()
			if exportOut != "" && exportOut != "-" {
				f, err := os.Create(exportOut)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := service.WriteExport(w, data); err != nil {
				return err
			}
			if exportOut != "" && exportOut != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d ingredient(s), %d grocery item(s), %d shop(s) to %s\n", len(data.Ingredients), len(data.Grocery), len(data.Shops), exportOut)
			}
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON export",
	RunE: func(cmd *cobra.Command, args []string) error {
		if importFile == "" {
			return fmt.Errorf("--file is required")
		}
		mode, err := service.ParseImportMode(importMode)
		if err != nil {
			return err
		}
		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()
		data, err := service.ReadExport(f)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			report, err := service.ImportDataSnapshot(ctx, stores(a), data, service.ImportOptions{Mode: mode, DryRun: importDryRun})
			if err != nil {
				return err
			}
			prefix := "Imported"
			if importDryRun {
				prefix = "Would import"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d inserted, %d updated, %d skipped\n", prefix, report.Inserted, report.Updated, report.Skipped)
			for _, w := range report.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default: stdout)")
	importCmd.Flags().StringVar(&importFile, "file", "", "Export file to import")
	importCmd.Flags().StringVar(&importMode, "mode", "merge", "Import mode: replace, merge or skip")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Report what would change without writing")
}
