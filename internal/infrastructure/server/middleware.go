package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/biofert/core/internal/ports"
)

// multipart framing allowance on top of the file size ceiling
const uploadOverhead = 64 << 10

// adminAuth rejects requests whose admin header does not carry the shared
// secret. The configured key may be the secret itself or a bcrypt hash of it.
func (s *Server) adminAuth() echo.MiddlewareFunc {
	header := s.config.Security.AdminHeader
	key := s.config.Security.AdminKey
	hashed := strings.HasPrefix(key, "$2")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			provided := c.Request().Header.Get(header)

			if key == "" || provided == "" || !adminKeyMatches(key, provided, hashed) {
				s.logger.LogSecurityEvent("admin_auth_failed", c.RealIP(), map[string]interface{}{
					"method":     c.Request().Method,
					"endpoint":   c.Request().URL.Path,
					"header_set": provided != "",
				})
				return echo.NewHTTPError(http.StatusForbidden, "Unauthorized: invalid admin key")
			}

			return next(c)
		}
	}
}

func adminKeyMatches(key, provided string, hashed bool) bool {
	if hashed {
		return bcrypt.CompareHashAndPassword([]byte(key), []byte(provided)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(provided)) == 1
}

// rateLimiter limits requests per client IP over the configured window
func (s *Server) rateLimiter() echo.MiddlewareFunc {
	sec := s.config.Security
	perSecond := rate.Limit(sec.RateLimitRequests)
	if sec.RateLimitWindow > 0 {
		perSecond = rate.Limit(float64(sec.RateLimitRequests) / sec.RateLimitWindow.Seconds())
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      perSecond,
				Burst:     sec.RateLimitRequests,
				ExpiresIn: sec.RateLimitWindow,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, ports.ErrorResponse{Message: "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			s.logger.LogSecurityEvent("rate_limited", identifier, map[string]interface{}{
				"endpoint": context.Request().URL.Path,
			})
			return context.JSON(http.StatusTooManyRequests, ports.ErrorResponse{Message: "Too many requests, please try again later."})
		},
	})
}

// csrf issues the token cookie on GET and checks the X-CSRF-Token header on
// unsafe methods
func (s *Server) csrf() echo.MiddlewareFunc {
	sameSite := http.SameSiteLaxMode
	secure := false
	if s.config.App.IsProduction() {
		// the site and the API live on different origins in production
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:" + echo.HeaderXCSRFToken,
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: sameSite,
		ErrorHandler: func(err error, c echo.Context) error {
			s.logger.LogSecurityEvent("csrf_rejected", c.RealIP(), map[string]interface{}{
				"endpoint": c.Request().URL.Path,
				"error":    err.Error(),
			})
			return echo.NewHTTPError(http.StatusForbidden, "Invalid CSRF token")
		},
	})
}

// uploadBodyLimit converts the file ceiling to an echo body limit string
func uploadBodyLimit(maxSize int64) string {
	return fmt.Sprintf("%dK", (maxSize+uploadOverhead)/1024)
}
