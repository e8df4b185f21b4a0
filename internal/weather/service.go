package weather

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-now/internal/users"
)

// ErrEmptyCity is returned when a lookup is asked for a blank city name.
var ErrEmptyCity = errors.New("city name is required")

// Recorder observes lookup outcomes, typically for metrics.
type Recorder interface {
	ObserveLookup(kind string, err error, cached bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLookup(string, error, bool) {}

// Service orchestrates the provider, the lookup cache and per-user lookup
// counters.
type Service struct {
	provider Provider
	cache    Cache
	limiter  *rate.Limiter
	recorder Recorder
}

// Option customizes a Service.
type Option func(*Service)

// WithLimiter bounds the rate of outbound provider calls.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithRecorder registers an observer for lookup outcomes.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewService creates a new Service. cache may be nil to disable caching.
func NewService(provider Provider, cache Cache, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		cache:    cache,
		limiter:  rate.NewLimiter(rate.Inf, 0),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LookupCurrent returns current conditions for city and, on success, counts
// the lookup against user under the provider's canonical city name.
func (s *Service) LookupCurrent(ctx context.Context, user *users.User, city string) (Current, error) {
	cur, cached, err := s.current(ctx, city)
	s.recorder.ObserveLookup("current", err, cached)
	if err != nil {
		return Current{}, err
	}

	if user != nil {
		user.AddCity(cur.Name)
		logrus.WithFields(logrus.Fields{
			"user":   user.Nickname(),
			"city":   cur.Name,
			"cached": cached,
		}).Debug("recorded city lookup")
	}
	return cur, nil
}

// ResolveCity returns the canonical name of city without recording a lookup.
// Registration uses it to fix a user's home city.
func (s *Service) ResolveCity(ctx context.Context, city string) (string, error) {
	cur, _, err := s.current(ctx, city)
	if err != nil {
		return "", err
	}
	if cur.Name == "" {
		return "", fmt.Errorf("provider returned no city name for %q", city)
	}
	return cur.Name, nil
}

// LookupForecast fetches the forecast for city trimmed to at most points
// entries. Forecast lookups are not counted.
func (s *Service) LookupForecast(ctx context.Context, city string, points int) (Forecast, error) {
	if cityKey(city) == "" {
		return Forecast{}, ErrEmptyCity
	}
	if points <= 0 || points > MaxForecastPoints {
		points = MaxForecastPoints
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return Forecast{}, fmt.Errorf("lookup rate limit: %w", err)
	}

	fc, err := s.provider.Forecast(ctx, city)
	s.recorder.ObserveLookup("forecast", err, false)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"provider": s.provider.Name(),
			"city":     city,
		}).Warn("forecast lookup failed")
		return Forecast{}, err
	}

	if len(fc.Points) > points {
		fc.Points = fc.Points[:points]
	}
	return fc, nil
}

// PruneCache drops expired cache entries and returns how many were removed.
func (s *Service) PruneCache() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Prune()
}

func (s *Service) current(ctx context.Context, city string) (Current, bool, error) {
	key := cityKey(city)
	if key == "" {
		return Current{}, false, ErrEmptyCity
	}

	if s.cache != nil {
		if cur, err := s.cache.GetCurrent(key); err == nil {
			return cur, true, nil
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return Current{}, false, fmt.Errorf("lookup rate limit: %w", err)
	}

	cur, err := s.provider.Current(ctx, city)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"provider": s.provider.Name(),
			"city":     city,
		}).Warn("current weather lookup failed")
		return Current{}, false, err
	}

	if s.cache != nil {
		s.cache.SaveCurrent(key, cur)
	}
	return cur, false, nil
}
