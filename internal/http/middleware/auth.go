package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"finobs/internal/auth"
)

// SessionLocalKey is the key used to store the authenticated session in
// Fiber's context locals.
const SessionLocalKey = "session"

// Auth validates the Authorization bearer token and attaches the resulting
// session to both Fiber locals and the request's user context. Requests
// without a valid token get 401 and never reach the handler.
func Auth(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.ErrUnauthorized
		}

		sess, err := tokens.Validate(token)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals(SessionLocalKey, sess)
		c.SetUserContext(auth.WithSession(c.UserContext(), sess))

		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
