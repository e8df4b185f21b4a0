package weather

import (
	"context"
)

// Provider abstracts a weather data source (e.g. OpenWeatherMap).
// A city the API does not know yields an *APIError.
type Provider interface {
	Name() string
	Current(ctx context.Context, city string) (Current, error)
	Forecast(ctx context.Context, city string) (Forecast, error)
}

// Cache is the contract the in-memory lookup cache must satisfy.
type Cache interface {
	SaveCurrent(key string, c Current)
	GetCurrent(key string) (Current, error)
	Prune() int
	Len() int
}
