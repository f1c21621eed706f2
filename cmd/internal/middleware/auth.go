package middleware

import (
	"errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gobarber/cmd/internal/utils"
	"gobarber/cmd/internal/utils/apierror"
	"strconv"
	"strings"
	"time"
)

var errBadSubject = errors.New("token subject is not a user id")

// Auth resolves the requester from "Authorization: Bearer <jwt>". Tokens are
// issued elsewhere; only HS256 with the shared secret is accepted.
func Auth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(raw) == "" {
				return c.JSON(apierror.MissingAuthTokenError.Code(), apierror.MissingAuthTokenError)
			}

			data, err := parseToken(strings.TrimSpace(raw), secret)
			if err != nil {
				return c.JSON(apierror.InvalidAuthTokenError.Code(), apierror.InvalidAuthTokenError)
			}

			utils.SetTokenDataCtx(c, data)
			return next(c)
		}
	}
}

func parseToken(raw, secret string) (*utils.TokenData, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil || id <= 0 {
		return nil, errBadSubject
	}
	return &utils.TokenData{Sub: claims.Subject, UserID: id}, nil
}

// SignToken issues an HS256 token for userID, mirroring what the identity
// service hands to clients.
func SignToken(userID int, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
