package pantry

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/saadjs/pantry-cli/internal/app"
)

var (
	dbPath     string
	configPath string
	envFile    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "pantry",
	Short: "pantry keeps track of what is in your kitchen",
	Long:  "pantry is a local-first kitchen inventory with expiry tracking, ripeness checks, a grocery list and nearby-shop alerts.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(app.NewLogger(cmd.ErrOrStderr(), verbose))
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to pantry.yaml (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file with PANTRY_* variables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
