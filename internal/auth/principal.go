package auth

import (
	"net/http"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	apperrors "taskboard/internal/errors"
	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// PrincipalKey is the echo context key under which the resolved principal is
// stored for handlers.
const PrincipalKey = "principal"

// PrincipalMiddleware resolves the authenticated principal from the bearer
// token already validated by the echo-jwt middleware. The user record is
// re-fetched from the store on every request: a token whose subject no longer
// exists, or whose ID was blacklisted by logout, is rejected even though its
// signature is still valid.
func PrincipalMiddleware(users repository.UserRepository, tokens TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := tokenClaims(c)
			if !ok {
				return errUnauthorized()
			}
			email, _ := claims["email"].(string)
			if email == "" {
				return errUnauthorized()
			}

			ctx := c.Request().Context()
			if jti, _ := claims["jti"].(string); jti != "" {
				if blacklisted, _ := tokens.IsAccessTokenBlacklisted(ctx, jti); blacklisted {
					return errUnauthorized()
				}
			}

			user, err := users.FindByEmail(ctx, email)
			if err != nil {
				return errUnauthorized()
			}

			c.Set(PrincipalKey, user)
			return next(c)
		}
	}
}

// Principal returns the user resolved by PrincipalMiddleware.
func Principal(c echo.Context) (*model.User, error) {
	user, ok := c.Get(PrincipalKey).(*model.User)
	if !ok {
		return nil, errUnauthorized()
	}
	return user, nil
}

// AccessTokenMeta returns the ID and remaining lifetime of the request's
// access token, for blacklisting on logout.
func AccessTokenMeta(c echo.Context) (jti string, ttl time.Duration, ok bool) {
	claims, ok := tokenClaims(c)
	if !ok {
		return "", 0, false
	}
	jti, _ = claims["jti"].(string)
	exp, err := claims.GetExpirationTime()
	if jti == "" || err != nil || exp == nil {
		return "", 0, false
	}
	return jti, time.Until(exp.Time), true
}

// tokenClaims extracts the claims the echo-jwt middleware stored on the
// context. echo-jwt parses with golang-jwt v5, hence the version split with
// the v4-based issuing service; the HS256 payload is identical either way.
func tokenClaims(c echo.Context) (jwtv5.MapClaims, bool) {
	token, ok := c.Get("user").(*jwtv5.Token)
	if !ok {
		return nil, false
	}
	claims, ok := token.Claims.(jwtv5.MapClaims)
	return claims, ok
}

func errUnauthorized() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
		Error: apperrors.ErrInvalidToken.Error(),
		Code:  "INVALID_TOKEN",
	})
}
