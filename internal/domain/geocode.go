package domain

import (
	"context"
	"log/slog"
)

// bulletinState is the federative unit every bulletin municipality belongs to.
const bulletinState = "RN"

// EnrichWithGeocoding attaches coordinates for the observation's municipality.
// A nil geocoder, a missing municipality or a failed lookup leaves the
// observation unchanged.
func EnrichWithGeocoding(ctx context.Context, obs Observation, geocoder Geocoder, logger *slog.Logger) Observation {
	if geocoder == nil || deref(obs.Municipality) == "" {
		return obs
	}

	result, err := geocoder.ForwardGeocode(ctx, *obs.Municipality, bulletinState)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"region", obs.Region,
			"municipality", *obs.Municipality,
			"error", err,
		)
		return obs
	}
	if result.Lat == 0 && result.Lon == 0 {
		return obs
	}

	lat, lon := result.Lat, result.Lon
	obs.Lat = &lat
	obs.Lon = &lon
	obs.PlaceName = result.PlaceName
	return obs
}
