package pantry

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/saadjs/pantry-cli/internal/service"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pantry preferences stored in the database",
}

var (
	cfgBarcodeProvider      string
	cfgBarcodeFallbackOrder string
	cfgProximityRadius      string
	cfgExpiringDefaultDays  string
)

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set configuration values",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			updates := 0
			for _, u := range []struct {
				flag, key string
				value     *string
			}{
				{"barcode-provider", service.ConfigBarcodeProvider, &cfgBarcodeProvider},
				{"fallback-order", service.ConfigBarcodeFallbackOrder, &cfgBarcodeFallbackOrder},
				{"proximity-radius", service.ConfigProximityRadius, &cfgProximityRadius},
				{"expiring-days", service.ConfigExpiringDefaultDays, &cfgExpiringDefaultDays},
			} {
				if !cmd.Flags().Changed(u.flag) {
					continue
				}
				if err := service.SetConfig(sqldb, u.key, *u.value); err != nil {
					return err
				}
				updates++
			}
			if updates == 0 {
				return fmt.Errorf("set at least one flag")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d config value(s)\n", updates)
			return nil
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			cfg, err := service.ListConfig(sqldb)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(cfg))
			for k := range cfg {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(cmd.OutOrStdout(), "KEY\tVALUE")
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", k, cfg[k])
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configGetCmd)

	configSetCmd.Flags().StringVar(&cfgBarcodeProvider, "barcode-provider", "", "Preferred barcode provider")
	configSetCmd.Flags().StringVar(&cfgBarcodeFallbackOrder, "fallback-order", "", "Provider fallback order (comma-separated)")
	configSetCmd.Flags().StringVar(&cfgProximityRadius, "proximity-radius", "", "Nearby-shop radius in km (max 5)")
	configSetCmd.Flags().StringVar(&cfgExpiringDefaultDays, "expiring-days", "", "Default --days for pantry expiring (-1 for overdue)")
}
