package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-now/internal/weather"
)

const openWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// Option customizes an OpenWeatherProvider.
type Option func(*OpenWeatherProvider)

// WithBaseURL points the provider at another API root.
func WithBaseURL(u string) Option {
	return func(p *OpenWeatherProvider) { p.baseURL = strings.TrimRight(u, "/") }
}

// WithBackoff overrides the retry policy.
func WithBackoff(b BackoffConfig) Option {
	return func(p *OpenWeatherProvider) { p.httpCfg.Backoff = b }
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...Option) *OpenWeatherProvider {
	p := &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: openWeatherBaseURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: newCircuitBreaker("openweather"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Current fetches current conditions for city.
func (p *OpenWeatherProvider) Current(ctx context.Context, city string) (weather.Current, error) {
	var payload struct {
		Name  string `json:"name"`
		Coord struct {
			Lat *float64 `json:"lat"`
			Lon *float64 `json:"lon"`
		} `json:"coord"`
		Sys struct {
			Country string `json:"country"`
			Sunrise *int64 `json:"sunrise"`
			Sunset  *int64 `json:"sunset"`
		} `json:"sys"`
		Main struct {
			Temp      *float64 `json:"temp"`
			FeelsLike *float64 `json:"feels_like"`
			TempMin   *float64 `json:"temp_min"`
			TempMax   *float64 `json:"temp_max"`
			Pressure  *float64 `json:"pressure"`
			Humidity  *float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed *float64 `json:"speed"`
		} `json:"wind"`
		Clouds struct {
			All *float64 `json:"all"`
		} `json:"clouds"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Dt       *int64 `json:"dt"`
		Timezone int    `json:"timezone"`
	}

	if err := p.get(ctx, "/weather", city, url.Values{}, &payload); err != nil {
		return weather.Current{}, err
	}

	cur := weather.Current{
		Name:           payload.Name,
		Country:        payload.Sys.Country,
		Lat:            payload.Coord.Lat,
		Lon:            payload.Coord.Lon,
		TempC:          payload.Main.Temp,
		FeelsLikeC:     payload.Main.FeelsLike,
		TempMinC:       payload.Main.TempMin,
		TempMaxC:       payload.Main.TempMax,
		PressureHpa:    payload.Main.Pressure,
		HumidityPct:    payload.Main.Humidity,
		WindSpeedMS:    payload.Wind.Speed,
		CloudsPct:      payload.Clouds.All,
		Timestamp:      payload.Dt,
		Sunrise:        payload.Sys.Sunrise,
		Sunset:         payload.Sys.Sunset,
		TimezoneOffset: payload.Timezone,
	}
	if len(payload.Weather) > 0 {
		cur.Description = payload.Weather[0].Description
		cur.Icon = payload.Weather[0].Icon
	}
	if cur.Name == "" {
		cur.Name = strings.Clone(strings.TrimSpace(city))
	}
	return cur, nil
}

// Forecast fetches the 5-day forecast at 3-hour steps for city.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, city string) (weather.Forecast, error) {
	var payload struct {
		City struct {
			Name     string `json:"name"`
			Country  string `json:"country"`
			Timezone int    `json:"timezone"`
		} `json:"city"`
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp      float64 `json:"temp"`
				FeelsLike float64 `json:"feels_like"`
			} `json:"main"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
		} `json:"list"`
	}

	extra := url.Values{}
	extra.Set("lang", "en")
	if err := p.get(ctx, "/forecast", city, extra, &payload); err != nil {
		return weather.Forecast{}, err
	}

	fc := weather.Forecast{
		City:           payload.City.Name,
		Country:        payload.City.Country,
		TimezoneOffset: payload.City.Timezone,
		Points:         make([]weather.ForecastPoint, 0, len(payload.List)),
	}
	for _, it := range payload.List {
		fc.Points = append(fc.Points, weather.ForecastPoint{
			Timestamp:   it.Dt,
			TempC:       it.Main.Temp,
			FeelsLikeC:  it.Main.FeelsLike,
			WindSpeedMS: it.Wind.Speed,
		})
	}
	return fc, nil
}

func (p *OpenWeatherProvider) get(ctx context.Context, path, city string, extra url.Values, out any) error {
	if p.apiKey == "" {
		return fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		for k, v := range extra {
			values[k] = v
		}
		values.Set("q", strings.TrimSpace(city))
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")

		u := fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", p.name, err)
	}
	return nil
}
