package pantry

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/pantry-cli/internal/app"
	"github.com/saadjs/pantry-cli/internal/freshness"
	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/service"
)

var ingredientCmd = &cobra.Command{
	Use:     "ingredient",
	Aliases: []string{"ing"},
	Short:   "Manage pantry ingredients",
}

var (
	ingBrand      string
	ingCategory   string
	ingLocation   string
	ingConfection string
	ingExpires    string
	ingExpiresIn  string
	ingNoExpiry   bool
	ingAmount     string
	ingAmountKind string
	ingUnit       string
	ingOpen       bool
	ingRipeness   string
	ingBarcode    string
	ingProvider   string
	ingUnlock     string
	ingName       string
	ingToGrocery  bool
)

// draftFromFlags collects the ingredient fields set on cmd.
func draftFromFlags(cmd *cobra.Command, name string) (model.IngredientDraft, error) {
	now := nowFunc()
	d := model.IngredientDraft{Name: strings.TrimSpace(name), Brand: strings.TrimSpace(ingBrand)}
	var err error
	if d.Category, err = model.ParseCategory(ingCategory); err != nil {
		return d, err
	}
	if d.Location, err = model.ParseLocation(ingLocation); err != nil {
		return d, err
	}
	if d.ConfectionType, err = model.ParseConfection(ingConfection); err != nil {
		return d, err
	}
	if d.ExpirationDate, err = parseExpiry(ingExpires, ingExpiresIn, now); err != nil {
		return d, err
	}
	if d.Amount, err = parseAmount(ingAmount, ingAmountKind, ingUnit); err != nil {
		return d, err
	}
	if cmd.Flags().Changed("open") {
		open := ingOpen
		d.Open = &open
	}
	if strings.TrimSpace(ingRipeness) != "" {
		lvl, err := model.ParseRipeness(ingRipeness)
		if err != nil {
			return d, err
		}
		d.Maturity = &model.Maturity{Level: lvl, Edited: now}
	}
	return d, nil
}

// buildForm looks the barcode up when one is given and returns the form the
// user's flags are applied to.
func buildForm(ctx context.Context, a *app.App) (service.Form, error) {
	if strings.TrimSpace(ingBarcode) == "" {
		return service.Form{}, nil
	}
	order, err := service.ResolveProviderOrder(a.DB, ingProvider)
	if err != nil {
		return service.Form{}, err
	}
	res, err := service.LookupProductWithFallback(ctx, a.DB, ingBarcode, order, lookupOptions(a.Config))
	if err != nil {
		return service.Form{}, err
	}
	a.Log.Info("barcode resolved", "barcode", res.Barcode, "provider", res.Provider, "source", res.SourceTier)
	locks, err := service.BarcodeLocks(res).Unlock(parseFieldList(ingUnlock))
	if err != nil {
		return service.Form{}, err
	}
	return service.Form{Initial: res.Draft(), Locks: locks}, nil
}

var ingredientAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add an ingredient to the pantry",
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
			ing, err := a.Inventory.Add(ctx, draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added ingredient %s (%s)\n", ing.ID, ing.Name)
			if ing.Open {
				fmt.Fprintln(cmd.OutOrStdout(), freshness.OpenedNotice)
			}
			if ingToGrocery {
				entry, err := service.AddToGrocery(ctx, a.Grocery, ing, nowFunc())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added grocery item %s (%s)\n", entry.ID, entry.Item.Name)
			}
			return nil
		})
	},
}

var ingredientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pantry ingredients",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			printIngredients(cmd.OutOrStdout(), a.Inventory.List(), nowFunc())
			return nil
		})
	},
}

var ingredientShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one ingredient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			ing, ok := a.Inventory.Get(args[0])
			if !ok {
				return fmt.Errorf("ingredient %s not found", args[0])
			}
			printIngredient(cmd.OutOrStdout(), ing, nowFunc())
			return nil
		})
	},
}

var ingredientEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an ingredient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateIngredient(cmd, args[0], func(ing model.Ingredient) (model.Ingredient, error) {
			now := nowFunc()
			f := cmd.Flags()
			if f.Changed("name") {
				if err := model.ValidateName(ingName); err != nil {
					return ing, err
				}
				ing.Name = strings.TrimSpace(ingName)
			}
			if f.Changed("brand") {
				ing.Brand = strings.TrimSpace(ingBrand)
			}
			if f.Changed("category") {
				c, err := model.ParseCategory(ingCategory)
				if err != nil {
					return ing, err
				}
				ing.Category = c
			}
			if f.Changed("location") {
				l, err := model.ParseLocation(ingLocation)
				if err != nil {
					return ing, err
				}
				ing.Location = l
			}
			if f.Changed("confection") {
				c, err := model.ParseConfection(ingConfection)
				if err != nil {
					return ing, err
				}
				ing = freshness.SetConfection(ing, c, now)
			}
			if ingNoExpiry {
				ing.ExpirationDate = nil
				ing.Frozen = nil
			} else if f.Changed("expires") || f.Changed("expires-in") {
				exp, err := parseExpiry(ingExpires, ingExpiresIn, now)
				if err != nil {
					return ing, err
				}
				ing.ExpirationDate = exp
			}
			if f.Changed("amount") {
				amount, err := parseAmount(ingAmount, ingAmountKind, ingUnit)
				if err != nil {
					return ing, err
				}
				ing.Amount = amount
			}
			if f.Changed("open") {
				var notice bool
				ing, notice = freshness.SetOpen(ing, ingOpen)
				if notice {
					fmt.Fprintln(cmd.OutOrStdout(), freshness.OpenedNotice)
				}
			}
			return ing, nil
		})
	},
}

var ingredientDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove an ingredient from the pantry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			found, err := a.Inventory.Delete(ctx, args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("ingredient %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted ingredient %s\n", args[0])
			return nil
		})
	},
}

var ingredientRipenessCmd = &cobra.Command{
	Use:   "ripeness <id> <none|green|ripe|advanced|overripe>",
	Short: "Record the ripeness of an ingredient",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := model.ParseRipeness(args[1])
		if err != nil {
			return err
		}
		return updateIngredient(cmd, args[0], func(ing model.Ingredient) (model.Ingredient, error) {
			return freshness.SetRipeness(ing, lvl, nowFunc()), nil
		})
	},
}

var ingredientConfirmCmd = &cobra.Command{
	Use:   "confirm [id]",
	Short: "Confirm the ripeness of an ingredient, or list the ones due for a check",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				due := freshness.NeedingCheck(a.Inventory.List(), nowFunc())
				if len(due) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No ripeness checks due.")
					return nil
				}
				printIngredients(cmd.OutOrStdout(), due, nowFunc())
				return nil
			})
		}
		return updateIngredient(cmd, args[0], func(ing model.Ingredient) (model.Ingredient, error) {
			return freshness.Confirm(ing, nowFunc()), nil
		})
	},
}

var ingredientFreezeCmd = &cobra.Command{
	Use:   "freeze <id>",
	Short: "Move a fresh ingredient to the freezer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateIngredient(cmd, args[0], func(ing model.Ingredient) (model.Ingredient, error) {
			out, ok := freshness.Freeze(ing, nowFunc())
			if !ok {
				return ing, fmt.Errorf("ingredient %s cannot be frozen: it needs an expiration date, must be fresh and not already frozen", ing.ID)
			}
			return out, nil
		})
	},
}

var ingredientUnfreezeCmd = &cobra.Command{
	Use:   "unfreeze <id>",
	Short: "Thaw a frozen ingredient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateIngredient(cmd, args[0], func(ing model.Ingredient) (model.Ingredient, error) {
			out, ok := freshness.Unfreeze(ing, nowFunc())
			if !ok {
				return ing, fmt.Errorf("ingredient %s is not frozen", ing.ID)
			}
			return out, nil
		})
	},
}

var ingredientToGroceryCmd = &cobra.Command{
	Use:   "to-grocery <id>",
	Short: "Put a copy of an ingredient on the grocery list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			ing, ok := a.Inventory.Get(args[0])
			if !ok {
				return fmt.Errorf("ingredient %s not found", args[0])
			}
			entry, err := service.AddToGrocery(ctx, a.Grocery, ing, nowFunc())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added grocery item %s (%s)\n", entry.ID, entry.Item.Name)
			return nil
		})
	},
}

func updateIngredient(cmd *cobra.Command, id string, change func(model.Ingredient) (model.Ingredient, error)) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		ing, ok := a.Inventory.Get(id)
		if !ok {
			return fmt.Errorf("ingredient %s not found", id)
		}
		ing, err := change(ing)
		if err != nil {
			return err
		}
		if _, err := a.Inventory.Update(ctx, ing); err != nil {
			return err
		}
		updated, _ := a.Inventory.Get(id)
		printIngredient(cmd.OutOrStdout(), updated, nowFunc())
		return nil
	})
}

func addIngredientFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ingBrand, "brand", "", "Brand")
	cmd.Flags().StringVar(&ingCategory, "category", "", "Category (fruit, vegetable, dairy, fish, meat, liquid, pantry staple, spice, other)")
	cmd.Flags().StringVar(&ingLocation, "location", "", "Storage location (fridge, freezer, pantry, counter, other)")
	cmd.Flags().StringVar(&ingConfection, "confection", "", "Confection type (fresh, canned, frozen, cured, dried, cooked, other)")
	cmd.Flags().StringVar(&ingExpires, "expires", "", "Expiration date YYYY-MM-DD")
	cmd.Flags().StringVar(&ingExpiresIn, "expires-in", "", "Shelf life from today: 1w, 10d, 2w, 1m or <N>d")
	cmd.Flags().StringVar(&ingAmount, "amount", "", "Amount value")
	cmd.Flags().StringVar(&ingAmountKind, "amount-kind", "", "Amount kind: count, fraction or custom")
	cmd.Flags().StringVar(&ingUnit, "unit", "", "Unit for custom amounts")
	cmd.Flags().BoolVar(&ingOpen, "open", false, "Package is open")
}

func init() {
	rootCmd.AddCommand(ingredientCmd)
	ingredientCmd.AddCommand(ingredientAddCmd, ingredientListCmd, ingredientShowCmd, ingredientEditCmd, ingredientDeleteCmd,
		ingredientRipenessCmd, ingredientConfirmCmd, ingredientFreezeCmd, ingredientUnfreezeCmd, ingredientToGroceryCmd)

	addIngredientFlags(ingredientAddCmd)
	ingredientAddCmd.Flags().StringVar(&ingRipeness, "ripeness", "", "Ripeness level (green, ripe, advanced, overripe)")
	ingredientAddCmd.Flags().StringVar(&ingBarcode, "barcode", "", "Pre-fill from a product barcode")
	ingredientAddCmd.Flags().StringVar(&ingProvider, "provider", "", "Preferred lookup provider (openfoodfacts, upcitemdb, usda)")
	ingredientAddCmd.Flags().StringVar(&ingUnlock, "unlock", "", "Comma-separated barcode fields to allow editing (name, brand)")
	ingredientAddCmd.Flags().BoolVar(&ingToGrocery, "to-grocery", false, "Also put a copy on the grocery list")

	addIngredientFlags(ingredientEditCmd)
	ingredientEditCmd.Flags().StringVar(&ingName, "name", "", "New name")
	ingredientEditCmd.Flags().BoolVar(&ingNoExpiry, "no-expiry", false, "Clear the expiration date")
}
