package pantry

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/saadjs/pantry-cli/internal/app"
	"github.com/saadjs/pantry-cli/internal/freshness"
	"github.com/saadjs/pantry-cli/internal/model"
)

var (
	qMissing    bool
	qRecent     bool
	qWithin     int
	qLocation   string
	qCategory   string
	qConfection string
	qSearch     string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Filter pantry ingredients",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := freshness.Query{Missing: qMissing, Recent: qRecent, WithinDays: qWithin, Search: qSearch}
		var err error
		if q.Location, err = model.ParseLocation(qLocation); err != nil {
			return err
		}
		if q.Category, err = model.ParseCategory(qCategory); err != nil {
			return err
		}
		if q.Confection, err = model.ParseConfection(qConfection); err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			now := nowFunc()
			printIngredients(cmd.OutOrStdout(), q.Apply(a.Inventory.List(), now), now)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().BoolVar(&qMissing, "missing", false, "Only items missing category, location, confection or expiry")
	queryCmd.Flags().BoolVar(&qRecent, "recent", false, "Newest additions first")
	queryCmd.Flags().IntVar(&qWithin, "within", 0, "With --recent, only items added in the last N days")
	queryCmd.Flags().StringVar(&qLocation, "location", "", "Storage location")
	queryCmd.Flags().StringVar(&qCategory, "category", "", "Category")
	queryCmd.Flags().StringVar(&qConfection, "confection", "", "Confection type")
	queryCmd.Flags().StringVar(&qSearch, "search", "", "Name contains, ignoring case and accents")
}
