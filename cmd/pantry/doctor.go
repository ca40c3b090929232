package pantry

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/pantry-cli/internal/app"
	"github.com/saadjs/pantry-cli/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			report, err := service.RunDoctor(ctx, a.DB, stores(a), doctorFix, nowFunc())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Duplicate ids: %d\n", report.DuplicateIDs)
			fmt.Fprintf(w, "Frozen non-fresh items: %d\n", report.FrozenNotFresh)
			fmt.Fprintf(w, "Bad ripeness timestamps: %d\n", report.BadMaturityStamps)
			fmt.Fprintf(w, "Unnamed grocery items: %d\n", report.BlankGroceryNames)
			fmt.Fprintf(w, "Shops with invalid coordinates: %d\n", report.InvalidShops)
			fmt.Fprintf(w, "Expired cache rows: %d\n", report.ExpiredCacheRows)
			if doctorFix {
				fmt.Fprintf(w, "Fixed ingredients: %d\n", report.FixedIngredients)
				fmt.Fprintf(w, "Removed grocery items: %d\n", report.RemovedGroceryItems)
				fmt.Fprintf(w, "Removed shops: %d\n", report.RemovedShops)
				fmt.Fprintf(w, "Purged cache rows: %d\n", report.PurgedCacheRows)
				// Re-check after fixes so exit status reflects final state.
				report, err = service.RunDoctor(ctx, a.DB, stores(a), false, nowFunc())
				if err != nil {
					return err
				}
			}
			if report.Problems() > report.ExpiredCacheRows {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Attempt safe auto-fixes")
}
