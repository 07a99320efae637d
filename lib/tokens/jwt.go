package tokens

import (
	"net/http"
	"strings"
	"time"

	"github.com/anvahreal/ravgateway/common"
	"github.com/anvahreal/ravgateway/db/models"
	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
)

type jwtCustomClaims struct {
	ID int64 `json:"id"`

	jwt.StandardClaims
}

// GenerateAccessToken : Generate Access Token for a merchant's dashboard session
func GenerateAccessToken(secret []byte, expiryInSeconds int, m *models.Merchant) (string, error) {
	claims := &jwtCustomClaims{
		ID: m.ID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Duration(expiryInSeconds) * time.Second).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(secret)
}

// ParseToken validates a signed access token and returns the merchant id.
func ParseToken(secret []byte, signed string) (int64, error) {
	claims := &jwtCustomClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, jwt.ErrSignatureInvalid
	}
	return claims.ID, nil
}

// Middleware authenticates merchant requests and puts the merchant id on the
// echo context as "MerchantID". Both credential kinds arrive as a bearer
// value: dashboard sessions present a JWT, programmatic clients present an
// api key (recognized by its prefix) that is resolved through lookup.
func Middleware(secret []byte, lookup APIKeyLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			credential := strings.TrimPrefix(auth, "Bearer ")

			var merchantID int64
			var err error
			if strings.HasPrefix(credential, common.APIKeyPrefix) {
				merchantID, err = lookup(c.Request().Context(), Digest(credential))
			} else {
				merchantID, err = ParseToken(secret, credential)
			}
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "bad auth")
			}
			c.Set("MerchantID", merchantID)
			return next(c)
		}
	}
}
