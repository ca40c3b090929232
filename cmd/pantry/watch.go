package pantry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/pantry-cli/internal/app"
	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/proximity"
)

const pantryView = "pantry"

var (
	watchInterval    time.Duration
	watchOnce        bool
	watchMetricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Alert when a registered shop is nearby and show what to buy there",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			radius, err := resolveRadius(cmd, a)
			if err != nil {
				return err
			}
			interval := a.Config.Proximity.WatchInterval
			if cmd.Flags().Changed("interval") {
				interval = watchInterval
			}
			if interval <= 0 {
				interval = time.Minute
			}
			out := cmd.OutOrStdout()
			var views *proximity.ViewTracker
			views = proximity.NewViewTracker(pantryView, func(ctx context.Context, view string) error {
				printGrocery(out, a.Grocery.List())
				views.Leave(pantryView)
				return nil
			})
			w := proximity.NewWatcher(a.Shops, a.Locator(), views, proximity.WriterNotifier{W: out}, a.Log,
				proximity.WithRadius(radius),
				proximity.WithWatchInterval(interval),
				proximity.WithMetrics(a.Metrics),
				proximity.WithRefresh(a.Reload),
			)

			if watchOnce {
				outcome, err := w.Check(ctx)
				if err != nil && !errors.Is(err, proximity.ErrPermissionDenied) {
					return err
				}
				fmt.Fprintf(out, "Outcome: %s\n", outcome)
				return nil
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			unsubscribe := a.Shops.Subscribe(func([]model.Shop) { w.Trigger() })
			defer unsubscribe()

			if watchMetricsAddr != "" {
				srv := &http.Server{Addr: watchMetricsAddr, Handler: a.Metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						a.Log.Error("metrics server stopped", "addr", watchMetricsAddr, "err", err)
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
				a.Log.Info("serving metrics", "addr", watchMetricsAddr)
			}

			a.Log.Info("watching for nearby shops", "radius_km", radius, "interval", interval.String(), "shops", a.Shops.Len())
			w.Run(ctx)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Minute, "How often to re-check the position (default from config proximity.watch_interval)")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Check once and exit")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address while watching")
	watchCmd.Flags().Float64Var(&locRadius, "radius", 0, "Proximity radius in km (default: config proximity_radius_km)")
}
