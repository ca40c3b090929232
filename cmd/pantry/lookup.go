package pantry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/pantry-cli/internal/app"
	"github.com/saadjs/pantry-cli/internal/service"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Lookup products by barcode",
}

var (
	lookupProvider   string
	lookupNoFallback bool
	lookupJSON       bool
	overrideName     string
	overrideBrand    string
	overrideCategory string
	overrideNotes    string
	cacheLimit       int
	cacheBarcode     string
	cacheAll         bool
)

var lookupBarcodeCmd = &cobra.Command{
	Use:   "barcode <code>",
	Short: "Lookup a product by barcode through the configured providers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		barcode := strings.TrimSpace(args[0])
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			opts := lookupOptions(a.Config)
			var (
				result service.ProductLookupResult
				err    error
			)
			if lookupNoFallback {
				result, err = service.LookupProduct(ctx, a.DB, lookupProvider, barcode, opts)
			} else {
				order, oerr := service.ResolveProviderOrder(a.DB, lookupProvider)
				if oerr != nil {
					return oerr
				}
				result, err = service.LookupProductWithFallback(ctx, a.DB, barcode, order, opts)
			}
			if err != nil {
				return err
			}
			if lookupJSON {
				b, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal barcode lookup json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Provider: %s (%s)\n", result.Provider, result.SourceTier)
			fmt.Fprintf(cmd.OutOrStdout(), "Barcode: %s\n", result.Barcode)
			fmt.Fprintf(cmd.OutOrStdout(), "Name: %s\n", result.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "Brand: %s\n", orDash(result.Brand))
			fmt.Fprintf(cmd.OutOrStdout(), "Category: %s\n", orDash(string(result.Category)))
			if len(result.LookupTrail) > 1 {
				fmt.Fprintf(cmd.OutOrStdout(), "Tried: %s\n", strings.Join(result.LookupTrail, " -> "))
			}
			return nil
		})
	},
}

var lookupCacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or purge the product lookup cache",
}

var lookupCacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached product lookups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListProductCache(sqldb, lookupProvider, cacheLimit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "PROVIDER\tBARCODE\tNAME\tBRAND\tEXPIRES")
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n", it.Provider, it.Barcode, it.Name, orDash(it.Brand), it.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		})
	},
}

var lookupCachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached product lookups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			n, err := service.PurgeProductCache(sqldb, lookupProvider, cacheBarcode, cacheAll)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cache row(s)\n", n)
			return nil
		})
	},
}

var lookupOverrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Manage local barcode overrides",
}

var lookupOverrideSetCmd = &cobra.Command{
	Use:   "set <barcode>",
	Short: "Set or update the local override for a barcode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.ProductOverrideInput{Name: overrideName, Brand: overrideBrand, Category: overrideCategory, Notes: overrideNotes}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetProductOverride(sqldb, args[0], in, nowFunc()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set override for %s\n", args[0])
			return nil
		})
	},
}

var lookupOverrideShowCmd = &cobra.Command{
	Use:   "show <barcode>",
	Short: "Show the local override for a barcode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			result, found, err := service.GetProductOverride(sqldb, args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no override found for %s", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Barcode: %s\nName: %s\nBrand: %s\nCategory: %s\n", result.Barcode, result.Name, orDash(result.Brand), orDash(string(result.Category)))
			return nil
		})
	},
}

var lookupOverrideDeleteCmd = &cobra.Command{
	Use:   "delete <barcode>",
	Short: "Delete the local override for a barcode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteProductOverride(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted override for %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.AddCommand(lookupBarcodeCmd, lookupCacheCmd, lookupOverrideCmd)
	lookupCacheCmd.AddCommand(lookupCacheListCmd, lookupCachePurgeCmd)
	lookupOverrideCmd.AddCommand(lookupOverrideSetCmd, lookupOverrideShowCmd, lookupOverrideDeleteCmd)

	lookupBarcodeCmd.Flags().StringVar(&lookupProvider, "provider", "", "Preferred provider (openfoodfacts, upcitemdb, usda)")
	lookupBarcodeCmd.Flags().BoolVar(&lookupNoFallback, "no-fallback", false, "Only ask the preferred provider")
	lookupBarcodeCmd.Flags().BoolVar(&lookupJSON, "json", false, "Print JSON")

	lookupCacheListCmd.Flags().StringVar(&lookupProvider, "provider", "", "Only rows from this provider")
	lookupCacheListCmd.Flags().IntVar(&cacheLimit, "limit", 50, "Maximum rows")
	lookupCachePurgeCmd.Flags().StringVar(&lookupProvider, "provider", "", "Only rows from this provider")
	lookupCachePurgeCmd.Flags().StringVar(&cacheBarcode, "barcode", "", "Only this barcode")
	lookupCachePurgeCmd.Flags().BoolVar(&cacheAll, "all", false, "Purge every row")

	lookupOverrideSetCmd.Flags().StringVar(&overrideName, "name", "", "Product name")
	lookupOverrideSetCmd.Flags().StringVar(&overrideBrand, "brand", "", "Brand")
	lookupOverrideSetCmd.Flags().StringVar(&overrideCategory, "category", "", "Category")
	lookupOverrideSetCmd.Flags().StringVar(&overrideNotes, "notes", "", "Free-form notes")
}
