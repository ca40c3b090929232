package pantry

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/pantry-cli/internal/app"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize local pantry database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized pantry database at %s\n", a.DBPath)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
