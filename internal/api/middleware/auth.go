package middleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// HeaderAuthToken is the fixed header carrying the bearer token.
const HeaderAuthToken = "x-auth-token"

// Auth validates the token from the x-auth-token header and injects the
// acting user id into the request context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get(HeaderAuthToken)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "no token, authorization denied")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "token is not valid")
			}

			userID, _ := claims["userId"].(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token is not valid")
			}

			c.Set("user_id", userID)
			return next(c)
		}
	}
}
