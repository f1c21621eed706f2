package utils

import (
	"errors"
	"github.com/labstack/echo/v4"
)

const tokenDataKey = "token_data"

var ErrNoTokenData = errors.New("no token data in context")

// TokenData is the identity resolved from the bearer token.
type TokenData struct {
	Sub    string
	UserID int
}

func SetTokenDataCtx(c echo.Context, data *TokenData) {
	c.Set(tokenDataKey, data)
}

func ParseTokenDataCtx(c echo.Context) (*TokenData, error) {
	data, ok := c.Get(tokenDataKey).(*TokenData)
	if !ok || data == nil {
		return nil, ErrNoTokenData
	}
	return data, nil
}
