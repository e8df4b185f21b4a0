package weather

import (
	"fmt"
	"strings"
)

// MaxForecastPoints is the length of the 5-day forecast at 3-hour steps.
const MaxForecastPoints = 40

// Current is a normalized current-conditions reading for one city.
// Timestamps are unix seconds in UTC; TimezoneOffset is the city's shift
// from UTC in seconds.
type Current struct {
	Name        string   `json:"name"` // canonical city name as resolved by the provider
	Country     string   `json:"country"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`

	TempC       *float64 `json:"tempC,omitempty"`
	FeelsLikeC  *float64 `json:"feelsLikeC,omitempty"`
	TempMinC    *float64 `json:"tempMinC,omitempty"`
	TempMaxC    *float64 `json:"tempMaxC,omitempty"`
	PressureHpa *float64 `json:"pressureHpa,omitempty"`
	HumidityPct *float64 `json:"humidityPct,omitempty"`
	WindSpeedMS *float64 `json:"windSpeedMs,omitempty"`
	CloudsPct   *float64 `json:"cloudsPct,omitempty"`

	Timestamp      *int64 `json:"timestamp,omitempty"`
	Sunrise        *int64 `json:"sunrise,omitempty"`
	Sunset         *int64 `json:"sunset,omitempty"`
	TimezoneOffset int    `json:"timezoneOffset"`
}

// IconURL returns the provider-hosted icon image, or "" when there is no icon.
func (c Current) IconURL() string {
	if c.Icon == "" {
		return ""
	}
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", c.Icon)
}

// ForecastPoint is one 3-hour step of a forecast.
type ForecastPoint struct {
	Timestamp   int64   `json:"timestamp"`
	TempC       float64 `json:"tempC"`
	FeelsLikeC  float64 `json:"feelsLikeC"`
	WindSpeedMS float64 `json:"windSpeedMs"`
}

// Forecast is a city's forecast as returned by a provider, ordered by
// Timestamp ascending.
type Forecast struct {
	City           string          `json:"city"`
	Country        string          `json:"country"`
	TimezoneOffset int             `json:"timezoneOffset"`
	Points         []ForecastPoint `json:"points"`
}

// APIError is a non-success answer from a weather API, such as an unknown
// city.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Sprintf("weather api error %d: %s", e.Code, msg)
}

// cityKey is the cache key for a city query.
func cityKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
