package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-now/internal/auth"
	"github.com/i474232898/weather-now/internal/users"
	"github.com/i474232898/weather-now/internal/weather"
)

// ErrorObserver is notified of every error response.
type ErrorObserver interface {
	ObserveHTTPError(code int)
}

// ErrorHandler renders errors as {"error": true, "message": ...} and maps
// domain errors to status codes.
func ErrorHandler(obs ErrorObserver) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, msg := classify(err)
		if code >= fiber.StatusInternalServerError {
			logrus.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).Error("request failed")
		}
		if obs != nil {
			obs.ObserveHTTPError(code)
		}
		return c.Status(code).JSON(fiber.Map{
			"error":   true,
			"message": msg,
		})
	}
}

func classify(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	var apiErr *weather.APIError
	switch {
	case errors.Is(err, users.ErrValidation):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, users.ErrDuplicateNickname):
		return fiber.StatusConflict, "nickname already exists"
	case errors.Is(err, users.ErrUserNotFound):
		return fiber.StatusNotFound, "user not found"
	case errors.Is(err, users.ErrInvalidPassword), errors.Is(err, auth.ErrInvalidToken):
		return fiber.StatusUnauthorized, "unauthorized"
	case errors.Is(err, users.ErrAccessDenied):
		return fiber.StatusForbidden, "access denied"
	case errors.Is(err, weather.ErrEmptyCity):
		return fiber.StatusBadRequest, err.Error()
	case errors.As(err, &apiErr):
		if apiErr.Code >= 400 && apiErr.Code < 500 {
			return apiErr.Code, "city error: " + apiErr.Message
		}
		return fiber.StatusBadGateway, "weather service error: " + apiErr.Message
	}
	return fiber.StatusInternalServerError, "internal server error"
}
