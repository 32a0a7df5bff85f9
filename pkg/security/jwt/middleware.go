package jwt

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/docqa/pkg/auth"
)

const (
	userLocalsKey = "auth.user"
	// requestIDLocalsKey matches the key the request id middleware stores under.
	requestIDLocalsKey = "requestid"
)

// NewAuthMiddleware returns a Fiber middleware that requires "Authorization: Bearer <token>",
// resolves the user through authenticator and stores it for CurrentUser.
// Every failure is answered with the same 401 so callers cannot tell a bad
// token from an unknown user.
func NewAuthMiddleware(authenticator auth.Authenticator, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c)
		}
		user, err := authenticator.Authenticate(c.UserContext(), tokenStr)
		if err != nil {
			log.DebugContext(c.UserContext(), "authentication rejected", "path", c.Path(), "reason", err.Error())
			return unauthorized(c)
		}
		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by the auth middleware.
func CurrentUser(c *fiber.Ctx) (auth.User, bool) {
	user, ok := c.Locals(userLocalsKey).(auth.User)
	return user, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	body := fiber.Map{"detail": "Could not validate credentials"}
	if id, _ := c.Locals(requestIDLocalsKey).(string); id != "" {
		body["request_id"] = id
	}
	return c.Status(http.StatusUnauthorized).JSON(body)
}
