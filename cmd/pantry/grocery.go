package pantry

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/pantry-cli/internal/app"
	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/proximity"
	"github.com/saadjs/pantry-cli/internal/service"
)

var groceryCmd = &cobra.Command{
	Use:     "grocery",
	Aliases: []string{"groceries"},
	Short:   "Manage the grocery list",
}

var (
	grocNear     bool
	grocShowAll  bool
	grocMerge    bool
	grocClearYes bool
)

var groceryAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add an item to the grocery list",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		edits, err := draftFromFlags(cmd, name)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			form, err := buildForm(ctx, a)
			if err != nil {
				return err
			}
			draft, err := form.Apply(edits, nowFunc())
			if err != nil {
				return err
			}
			entry, err := a.Grocery.Add(ctx, draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added grocery item %s (%s)\n", entry.ID, entry.Item.Name)
			return nil
		})
	},
}

var groceryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the grocery list, optionally only what nearby shops sell",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			items := a.Grocery.List()
			if !grocNear {
				printGrocery(cmd.OutOrStdout(), items)
				return nil
			}
			at, err := resolvePosition(ctx, cmd, a)
			if err != nil {
				return err
			}
			radius, err := resolveRadius(cmd, a)
			if err != nil {
				return err
			}
			nearby := proximity.ShopsWithin(a.Shops.List(), at, radius)
			a.Metrics.ProximityCheck("list")
			if len(nearby) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No shops within %.2f km.\n", radius)
				if !grocShowAll {
					return nil
				}
			} else {
				names := make([]string, 0, len(nearby))
				for _, n := range nearby {
					names = append(names, fmt.Sprintf("%s (%.2f km)", n.Shop.Name, n.DistanceKm))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Nearby: %s\n", strings.Join(names, ", "))
			}
			printGrocery(cmd.OutOrStdout(), proximity.AvailableItems(items, nearby, grocShowAll))
			return nil
		})
	},
}

var groceryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one grocery item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			entry, ok := a.Grocery.Get(args[0])
			if !ok {
				return fmt.Errorf("grocery item %s not found", args[0])
			}
			it := entry.Item
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "ID: %s\n", entry.ID)
			fmt.Fprintf(w, "Name: %s\n", it.Name)
			fmt.Fprintf(w, "Brand: %s\n", orDash(it.Brand))
			fmt.Fprintf(w, "Category: %s\n", orDash(string(it.Category)))
			fmt.Fprintf(w, "Location: %s\n", orDash(string(it.Location)))
			fmt.Fprintf(w, "Confection: %s\n", orDash(string(it.ConfectionType)))
			fmt.Fprintf(w, "Amount: %s\n", model.FormatAmount(it.Amount))
			fmt.Fprintf(w, "Expires: %s\n", dateOrDash(it.ExpirationDate))
			fmt.Fprintf(w, "Added: %s\n", dateOrDash(it.AddedDate))
			return nil
		})
	},
}

var groceryEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a grocery item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			entry, ok := a.Grocery.Get(args[0])
			if !ok {
				return fmt.Errorf("grocery item %s not found", args[0])
			}
			edits, err := draftFromFlags(cmd, ingName)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			it := &entry.Item
			if f.Changed("name") {
				it.Name = edits.Name
			}
			if f.Changed("brand") {
				it.Brand = edits.Brand
			}
			if f.Changed("category") {
				it.Category = edits.Category
			}
			if f.Changed("location") {
				it.Location = edits.Location
			}
			if f.Changed("confection") {
				it.ConfectionType = edits.ConfectionType
			}
			if ingNoExpiry {
				it.ExpirationDate = nil
			} else if f.Changed("expires") || f.Changed("expires-in") {
				it.ExpirationDate = edits.ExpirationDate
			}
			if f.Changed("amount") {
				it.Amount = edits.Amount
			}
			found, err := a.Grocery.Update(ctx, entry)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("grocery item %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated grocery item %s (%s)\n", entry.ID, entry.Item.Name)
			return nil
		})
	},
}

var groceryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove an item from the grocery list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			found, err := a.Grocery.Delete(ctx, args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("grocery item %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted grocery item %s\n", args[0])
			return nil
		})
	},
}

var groceryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the grocery list",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !grocClearYes {
			return fmt.Errorf("refusing to clear the grocery list without --yes")
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			n := a.Grocery.Len()
			if err := a.Grocery.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d grocery item(s)\n", n)
			return nil
		})
	},
}

var groceryBuyCmd = &cobra.Command{
	Use:   "buy <id>",
	Short: "Move a grocery item into the pantry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := parseExpiry(ingExpires, ingExpiresIn, nowFunc())
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res, err := service.Buy(ctx, a.Inventory, a.Grocery, args[0], service.BuyOptions{ExpirationDate: exp, Merge: grocMerge}, nowFunc())
			if err != nil {
				return err
			}
			verb := "Added"
			if res.Merged {
				verb = "Merged into"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s ingredient %s (%s), expires %s\n", verb, res.Ingredient.ID, res.Ingredient.Name, dateOrDash(res.Ingredient.ExpirationDate))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(groceryCmd)
	groceryCmd.AddCommand(groceryAddCmd, groceryListCmd, groceryShowCmd, groceryEditCmd, groceryDeleteCmd, groceryClearCmd, groceryBuyCmd)

	addIngredientFlags(groceryAddCmd)
	groceryAddCmd.Flags().StringVar(&ingBarcode, "barcode", "", "Pre-fill from a product barcode")
	groceryAddCmd.Flags().StringVar(&ingProvider, "provider", "", "Preferred lookup provider (openfoodfacts, upcitemdb, usda)")
	groceryAddCmd.Flags().StringVar(&ingUnlock, "unlock", "", "Comma-separated barcode fields to allow editing (name, brand)")

	addIngredientFlags(groceryEditCmd)
	groceryEditCmd.Flags().StringVar(&ingName, "name", "", "New name")
	groceryEditCmd.Flags().BoolVar(&ingNoExpiry, "no-expiry", false, "Clear the expiration date")

	groceryListCmd.Flags().BoolVar(&grocNear, "near", false, "Only items sold by shops near the current position")
	groceryListCmd.Flags().BoolVar(&grocShowAll, "all", false, "With --near, list every item anyway")
	addLocationFlags(groceryListCmd)

	groceryClearCmd.Flags().BoolVar(&grocClearYes, "yes", false, "Confirm clearing the whole list")

	groceryBuyCmd.Flags().StringVar(&ingExpires, "expires", "", "Expiration date YYYY-MM-DD (default: projected from the list item)")
	groceryBuyCmd.Flags().StringVar(&ingExpiresIn, "expires-in", "", "Shelf life from today: 1w, 10d, 2w, 1m or <N>d")
	groceryBuyCmd.Flags().BoolVar(&grocMerge, "merge", false, "Add to a matching pantry ingredient instead of creating one")
}
