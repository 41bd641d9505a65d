// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	helper "workforce_backend/internals/helpers"
)

type Options struct {
	// Secret signs HS256 access tokens. Issuance happens elsewhere.
	Secret string
	// AllowCookieFallback reads access_token from a cookie (browsers using EventSource cannot set headers).
	AllowCookieFallback bool
	// Leeway tolerated on exp.
	Leeway time.Duration
}

// AuthMiddleware verifies the bearer token and stores the caller's user id
// in Locals("user_id"). Roles are not trusted from the token; the access
// gate resolves them per request.
func AuthMiddleware(opts Options) fiber.Handler {
	if opts.Leeway == 0 {
		opts.Leeway = 30 * time.Second
	}

	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c, opts.AllowCookieFallback)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
		}

		if opts.Secret == "" {
			zap.S().Error("auth: JWT_SECRET is empty")
			return helper.JsonError(c, fiber.StatusInternalServerError, "missing JWT secret")
		}

		claims := jwt.MapClaims{}
		parser := jwt.Parser{SkipClaimsValidation: true}
		if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(opts.Secret), nil
		}); err != nil {
			zap.S().Debugw("auth: token parse failed", "error", err)
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - token parse error")
		}

		if err := validateTokenExpiry(claims, opts.Leeway); err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - token expired")
		}

		userID, err := extractUserID(claims)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - invalid or missing user id")
		}
		c.Locals(helper.LocUserID, userID.String())

		return c.Next()
	}
}
