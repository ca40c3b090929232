package pantry

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/pantry-cli/internal/app"
	"github.com/saadjs/pantry-cli/internal/freshness"
	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/service"
)

const defaultExpiringDays = 7

var (
	expDays    int
	expOverdue bool
	expGroup   bool
	expByDay   bool
	expSearch  string
)

var expiringCmd = &cobra.Command{
	Use:   "expiring",
	Short: "Show ingredients that are expiring or ripe",
	RunE: func(cmd *cobra.Command, args []string) error {
		if expOverdue && cmd.Flags().Changed("days") {
			return fmt.Errorf("use either --days or --overdue")
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			now := nowFunc()
			items := searchIngredients(a.Inventory.List(), expSearch)
			if expGroup || expByDay {
				mode := freshness.ByThreshold
				if expByDay {
					mode = freshness.ByDay
				}
				renderBuckets(cmd.OutOrStdout(), freshness.Group(items, now, mode), now)
				return nil
			}
			threshold := expDays
			switch {
			case expOverdue:
				threshold = freshness.Overdue
			case !cmd.Flags().Changed("days"):
				days, err := service.ConfigInt(a.DB, service.ConfigExpiringDefaultDays, defaultExpiringDays)
				if err != nil {
					return err
				}
				threshold = days
			}
			renderExpiring(cmd.OutOrStdout(), freshness.Filter(items, threshold, now), now)
			return nil
		})
	},
}

func searchIngredients(items []model.Ingredient, search string) []model.Ingredient {
	if search == "" {
		return items
	}
	out := make([]model.Ingredient, 0, len(items))
	for _, it := range items {
		if freshness.MatchName(it.Name, search) {
			out = append(out, it)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(expiringCmd)
	expiringCmd.Flags().IntVar(&expDays, "days", defaultExpiringDays, "Show items expiring within N days (default from config expiring_default_days)")
	expiringCmd.Flags().BoolVar(&expOverdue, "overdue", false, "Show items past their expiration date")
	expiringCmd.Flags().BoolVar(&expGroup, "group", false, "Group items by expiry range, with ripe and undated items")
	expiringCmd.Flags().BoolVar(&expByDay, "by-day", false, "Group items by exact day count")
	expiringCmd.Flags().StringVar(&expSearch, "search", "", "Only items whose name contains this text")
}
