package httpapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-now/internal/auth"
	"github.com/i474232898/weather-now/internal/users"
	"github.com/i474232898/weather-now/internal/weather"
)

var validate = validator.New()

const (
	localsUser    = "user"
	lookupTimeout = 30 * time.Second
	profileTop    = 5
)

// Deps are the shared objects the handlers work with. They are built once
// in main and live for the whole process.
type Deps struct {
	Users   *users.Store
	Weather *weather.Service
	Tokens  *auth.Issuer
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	h := &handlers{Deps: d}

	v1 := app.Group("/api/v1")

	v1.Post("/auth/register", h.register)
	v1.Post("/auth/login", h.login)

	v1.Get("/me", h.requireUser, h.profile)
	v1.Delete("/me/cities", h.requireUser, h.clearCities)

	wx := v1.Group("/weather", h.requireUser)
	wx.Get("/current", h.currentWeather)
	wx.Get("/forecast", h.forecast)

	admin := v1.Group("/admin", h.requireUser, requireAdmin)
	admin.Get("/stats", h.adminStats)
	admin.Get("/users", h.adminUsers)
	admin.Delete("/users/:nickname", h.adminDeleteUser)
}

type handlers struct {
	Deps
}

// registerRequest is the body of POST /auth/register.
type registerRequest struct {
	Nickname string `json:"nickname" validate:"required,max=64"`
	City     string `json:"city" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=72"`
}

// loginRequest is the body of POST /auth/login.
type loginRequest struct {
	Nickname string `json:"nickname" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	City   string
	Points int `validate:"min=1,max=40"`
}

type profileResponse struct {
	Nickname      string            `json:"nickname"`
	Role          users.Role        `json:"role"`
	HomeCity      string            `json:"homeCity"`
	TotalRequests int               `json:"totalRequests"`
	UniqueCities  int               `json:"uniqueCities"`
	TopCities     []users.CityCount `json:"topCities"`
	CityCounts    map[string]int    `json:"cityCounts"`
}

func newProfile(u *users.User) profileResponse {
	return profileResponse{
		Nickname:      u.Nickname(),
		Role:          u.Role(),
		HomeCity:      u.HomeCity(),
		TotalRequests: u.TotalRequests(),
		UniqueCities:  u.UniqueCities(),
		TopCities:     u.TopCities(profileTop),
		CityCounts:    u.CityCounts(),
	}
}

func (h *handlers) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req.Nickname = strings.TrimSpace(req.Nickname)
	req.City = strings.TrimSpace(req.City)
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "fill all fields")
	}
	if err := users.ValidatePassword(h.Users.Hasher(), req.Password); err != nil {
		return err
	}

	// Fail before spending a weather API call on a taken nickname.
	if _, ok := h.Users.GetUser(req.Nickname); ok {
		return users.ErrDuplicateNickname
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), lookupTimeout)
	defer cancel()

	homeCity, err := h.Weather.ResolveCity(ctx, req.City)
	if err != nil {
		return weatherError(err)
	}

	u, err := h.Users.AddUser(req.Nickname, homeCity, req.Password, users.RoleUser)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"user": u.Nickname(), "homeCity": u.HomeCity()}).Info("user registered")

	return h.session(c.Status(fiber.StatusCreated), u)
}

func (h *handlers) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "fill all fields")
	}

	u, err := h.Users.Authenticate(req.Nickname, req.Password)
	if err != nil {
		// Same answer for both cases so nicknames cannot be probed.
		if errors.Is(err, users.ErrUserNotFound) || errors.Is(err, users.ErrInvalidPassword) {
			logrus.WithField("nickname", req.Nickname).WithError(err).Info("login rejected")
			return fiber.NewError(fiber.StatusUnauthorized, "invalid nickname or password")
		}
		return err
	}

	return h.session(c, u)
}

func (h *handlers) session(c *fiber.Ctx, u *users.User) error {
	token, err := h.Tokens.Issue(u.Nickname())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user":  newProfile(u),
	})
}

func (h *handlers) profile(c *fiber.Ctx) error {
	return c.JSON(newProfile(currentUser(c)))
}

func (h *handlers) clearCities(c *fiber.Ctx) error {
	u := currentUser(c)
	u.ClearCities()
	return c.JSON(newProfile(u))
}

func (h *handlers) currentWeather(c *fiber.Ctx) error {
	// Query values alias the request buffer; the service keeps the city.
	city := utils.CopyString(strings.TrimSpace(c.Query("city")))
	if city == "" {
		return fiber.NewError(fiber.StatusBadRequest, "please enter a city name")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), lookupTimeout)
	defer cancel()

	cur, err := h.Weather.LookupCurrent(ctx, currentUser(c), city)
	if err != nil {
		return weatherError(err)
	}
	return c.JSON(weather.NewCurrentView(cur))
}

func (h *handlers) forecast(c *fiber.Ctx) error {
	u := currentUser(c)

	q := forecastQuery{
		City:   utils.CopyString(strings.TrimSpace(c.Query("city"))),
		Points: c.QueryInt("points", weather.MaxForecastPoints),
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "points must be between 1 and 40")
	}
	if q.City == "" {
		q.City = u.HomeCity()
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), lookupTimeout)
	defer cancel()

	fc, err := h.Weather.LookupForecast(ctx, q.City, q.Points)
	if err != nil {
		return weatherError(err)
	}
	return c.JSON(weather.NewForecastView(fc, q.Points))
}

func (h *handlers) adminStats(c *fiber.Ctx) error {
	report, err := h.Users.AllStats(currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(report)
}

func (h *handlers) adminUsers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"users": h.Users.DeletableUsers(currentUser(c)),
	})
}

func (h *handlers) adminDeleteUser(c *fiber.Ctx) error {
	actor := currentUser(c)
	target := c.Params("nickname")

	if users.NormalizeNickname(target) == users.NormalizeNickname(actor.Nickname()) {
		return fiber.NewError(fiber.StatusBadRequest, "admins cannot delete their own account")
	}

	if err := h.Users.DeleteUser(target, actor); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"admin": actor.Nickname(), "deleted": target}).Info("user deleted")
	return c.JSON(fiber.Map{"deleted": target})
}

// weatherError keeps errors the error handler understands and hides
// transport failures behind a 502.
func weatherError(err error) error {
	var apiErr *weather.APIError
	if errors.As(err, &apiErr) || errors.Is(err, weather.ErrEmptyCity) {
		return err
	}
	logrus.WithError(err).Warn("weather lookup failed")
	return fiber.NewError(fiber.StatusBadGateway, "weather service unavailable")
}
