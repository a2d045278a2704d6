package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// CookieName holds the session token.
const CookieName = "token"

const userIDKey = "userID"

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a given user
func GenerateToken(userID string, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", services.ErrServerMisconfigured
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken verifies a session token and returns the user id it was issued for.
func ParseToken(tokenStr string, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", services.ErrServerMisconfigured
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", services.ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("%w: no user id in claims", services.ErrInvalidToken)
	}
	return claims.UserID, nil
}

// SetSessionCookie stores token in an HttpOnly, SameSite=Strict cookie.
func SetSessionCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, token, int(ttl.Seconds()), "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}

// AuthRequired validates the session cookie and injects the user id into context
func AuthRequired(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(CookieName)
		if err != nil || tokenStr == "" {
			abort(c, http.StatusUnauthorized, services.ErrUnauthenticated)
			return
		}
		userID, err := ParseToken(tokenStr, secret)
		if errors.Is(err, services.ErrServerMisconfigured) {
			abort(c, http.StatusInternalServerError, err)
			return
		}
		if err != nil {
			abort(c, http.StatusUnauthorized, services.ErrInvalidToken)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": err.Error()})
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
