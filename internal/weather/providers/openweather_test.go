package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-now/internal/weather"
)

const currentBody = `{
	"coord": {"lon": 2.35, "lat": 48.85},
	"weather": [{"main": "Clouds", "description": "broken clouds", "icon": "04d"}],
	"main": {"temp": 11.46, "feels_like": 10.5, "temp_min": 10.1, "temp_max": 12.8, "pressure": 1012, "humidity": 81},
	"wind": {"speed": 4.12},
	"clouds": {"all": 75},
	"dt": 1700000000,
	"sys": {"country": "FR", "sunrise": 1699975000, "sunset": 1700008000},
	"timezone": 3600,
	"name": "Paris",
	"cod": 200
}`

const forecastBody = `{
	"cod": "200",
	"list": [
		{"dt": 1700000000, "main": {"temp": 10.0, "feels_like": 9.0}, "wind": {"speed": 3.1}},
		{"dt": 1700010800, "main": {"temp": 11.5, "feels_like": 10.2}, "wind": {"speed": 2.4}}
	],
	"city": {"name": "Paris", "country": "FR", "timezone": 3600}
}`

var fastBackoff = BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

func newTestProvider(srv *httptest.Server) *OpenWeatherProvider {
	return NewOpenWeatherProvider(srv.Client(), "test-key", WithBaseURL(srv.URL), WithBackoff(fastBackoff))
}

func TestOpenWeatherCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "paris" || q.Get("appid") != "test-key" || q.Get("units") != "metric" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(currentBody))
	}))
	defer srv.Close()

	cur, err := newTestProvider(srv).Current(context.Background(), " paris ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cur.Name != "Paris" || cur.Country != "FR" {
		t.Fatalf("unexpected identity: %+v", cur)
	}
	if cur.TempC == nil || *cur.TempC != 11.46 {
		t.Fatalf("unexpected temperature: %v", cur.TempC)
	}
	if cur.CloudsPct == nil || *cur.CloudsPct != 75 {
		t.Fatalf("unexpected clouds: %v", cur.CloudsPct)
	}
	if cur.Description != "broken clouds" || cur.Icon != "04d" {
		t.Fatalf("unexpected description: %+v", cur)
	}
	if cur.TimezoneOffset != 3600 || cur.Timestamp == nil || *cur.Timestamp != 1700000000 {
		t.Fatalf("unexpected time fields: %+v", cur)
	}
}

func TestOpenWeatherCityNotFound(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}))
	defer srv.Close()

	_, err := newTestProvider(srv).Current(context.Background(), "Atlantis")

	var apiErr *weather.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *weather.APIError, got %v", err)
	}
	if apiErr.Code != 404 || apiErr.Message != "city not found" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("client errors must not be retried, got %d calls", n)
	}
}

func TestOpenWeatherRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(currentBody))
	}))
	defer srv.Close()

	cur, err := newTestProvider(srv).Current(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cur.Name != "Paris" {
		t.Fatalf("unexpected name %q", cur.Name)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
}

func TestOpenWeatherForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("lang") != "en" {
			t.Errorf("expected lang=en, got %s", r.URL.RawQuery)
		}
		w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	fc, err := newTestProvider(srv).Forecast(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fc.City != "Paris" || fc.TimezoneOffset != 3600 {
		t.Fatalf("unexpected forecast header: %+v", fc)
	}
	if len(fc.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(fc.Points))
	}
	if fc.Points[1].TempC != 11.5 || fc.Points[1].WindSpeedMS != 2.4 {
		t.Fatalf("unexpected point: %+v", fc.Points[1])
	}
}

func TestOpenWeatherMissingAPIKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "")
	if _, err := p.Current(context.Background(), "Paris"); err == nil {
		t.Fatal("expected error without api key")
	}
}
