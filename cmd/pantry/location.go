package pantry

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/pantry-cli/internal/app"
	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/proximity"
	"github.com/saadjs/pantry-cli/internal/service"
)

var (
	locLat    float64
	locLon    float64
	locRadius float64
)

func addLocationFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&locLat, "lat", 0, "Latitude of the current position (default: configured location)")
	cmd.Flags().Float64Var(&locLon, "lon", 0, "Longitude of the current position (default: configured location)")
	cmd.Flags().Float64Var(&locRadius, "radius", 0, "Search radius in km (default: config proximity_radius_km)")
}

// resolvePosition uses --lat/--lon when given and the configured locator
// otherwise.
func resolvePosition(ctx context.Context, cmd *cobra.Command, a *app.App) (proximity.Point, error) {
	latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
	if latSet != lonSet {
		return proximity.Point{}, fmt.Errorf("--lat and --lon must be used together")
	}
	if latSet {
		if err := model.ValidateCoordinates(locLat, locLon); err != nil {
			return proximity.Point{}, err
		}
		return proximity.Point{Latitude: locLat, Longitude: locLon}, nil
	}
	p, err := proximity.Locate(ctx, a.Locator())
	if errors.Is(err, proximity.ErrPermissionDenied) {
		return proximity.Point{}, fmt.Errorf("no location available: pass --lat/--lon or set location in pantry.yaml")
	}
	return p, err
}

// resolveRadius prefers the flag, then the stored preference, then the
// config file.
func resolveRadius(cmd *cobra.Command, a *app.App) (float64, error) {
	if cmd.Flags().Changed("radius") {
		if locRadius <= 0 || locRadius > proximity.MaxRadiusKm {
			return 0, fmt.Errorf("--radius must be in (0, %.0f]", proximity.MaxRadiusKm)
		}
		return locRadius, nil
	}
	km, err := service.ConfigFloat(a.DB, service.ConfigProximityRadius, a.Config.Proximity.RadiusKm)
	if err != nil {
		return 0, err
	}
	return proximity.ClampRadius(km), nil
}
