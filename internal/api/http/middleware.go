package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-now/internal/users"
)

// requireUser resolves the bearer token to a registered user. The user is
// looked up on every request so deleted accounts lose access immediately.
func (h *handlers) requireUser(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	}

	nickname, err := h.Tokens.Parse(token)
	if err != nil {
		return err
	}

	u, found := h.Users.GetUser(nickname)
	if !found {
		return fiber.NewError(fiber.StatusUnauthorized, "account no longer exists")
	}

	c.Locals(localsUser, u)
	return c.Next()
}

func requireAdmin(c *fiber.Ctx) error {
	if !currentUser(c).IsAdmin() {
		return users.ErrAccessDenied
	}
	return c.Next()
}

func currentUser(c *fiber.Ctx) *users.User {
	u, _ := c.Locals(localsUser).(*users.User)
	return u
}
