package pantry

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/pantry-cli/internal/app"
	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/proximity"
)

var shopCmd = &cobra.Command{
	Use:     "shop",
	Aliases: []string{"shops"},
	Short:   "Manage the shop registry",
}

var (
	shopName       string
	shopType       string
	shopCategories string
)

var shopAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a shop at a position",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
			return fmt.Errorf("--lat and --lon are required")
		}
		typ, err := model.ParseShopType(shopType)
		if err != nil {
			return err
		}
		cats, err := model.ParseCategories(shopCategories)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			shop, err := a.Shops.Add(ctx, model.Shop{Name: shopName, Type: typ, Categories: cats, Latitude: locLat, Longitude: locLon})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added shop %s (%s)\n", shop.ID, shop.Name)
			return nil
		})
	},
}

var shopListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered shops",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tTYPE\tCATEGORIES\tLATITUDE\tLONGITUDE")
			for _, s := range a.Shops.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%.6f\t%.6f\n", s.ID, s.Name, s.Type, shopCategoryList(s), s.Latitude, s.Longitude)
			}
			return nil
		})
	},
}

var shopDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a shop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			found, err := a.Shops.Delete(ctx, args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("shop %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted shop %s\n", args[0])
			return nil
		})
	},
}

var shopNearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "List shops near the current position",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			at, err := resolvePosition(ctx, cmd, a)
			if err != nil {
				return err
			}
			radius, err := resolveRadius(cmd, a)
			if err != nil {
				return err
			}
			nearby := proximity.ShopsWithin(a.Shops.List(), at, radius)
			if len(nearby) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No shops within %.2f km.\n", radius)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tTYPE\tDISTANCE_KM\tCATEGORIES")
			for _, n := range nearby {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%.3f\t%s\n", n.Shop.ID, n.Shop.Name, n.Shop.Type, n.DistanceKm, shopCategoryList(n.Shop))
			}
			return nil
		})
	},
}

func shopCategoryList(s model.Shop) string {
	if len(s.Categories) == 0 {
		return "all"
	}
	names := make([]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ",")
}

func init() {
	rootCmd.AddCommand(shopCmd)
	shopCmd.AddCommand(shopAddCmd, shopListCmd, shopDeleteCmd, shopNearbyCmd)

	shopAddCmd.Flags().StringVar(&shopName, "name", "", "Shop name (default: New Shop)")
	shopAddCmd.Flags().StringVar(&shopType, "type", "", "Shop type (supermarket, butcher, bakery, fishmonger, greengrocer, other)")
	shopAddCmd.Flags().StringVar(&shopCategories, "categories", "", "Comma-separated categories sold (default: everything)")
	shopAddCmd.Flags().Float64Var(&locLat, "lat", 0, "Latitude")
	shopAddCmd.Flags().Float64Var(&locLon, "lon", 0, "Longitude")

	addLocationFlags(shopNearbyCmd)
}
