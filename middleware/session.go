package middleware

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"ooru-foods/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionHeader = "X-Session-ID"
	SessionKey    = "session_id"
)

var sessionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// SessionMiddleware identifies the cart owner. A bearer token issued by the
// auth provider takes precedence (its subject becomes the session); otherwise
// the X-Session-ID header is used. Tokens are only honoured when a secret is set.
func SessionMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth := c.GetHeader("Authorization"); auth != "" && jwtSecret != "" {
			parts := strings.SplitN(auth, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				abortSession(c, "Invalid authorization header format", nil)
				return
			}

			subject, err := subjectFromToken(parts[1], jwtSecret)
			if err != nil {
				abortSession(c, "Invalid or expired token", err)
				return
			}
			c.Set(SessionKey, "user-"+subject)
			c.Next()
			return
		}

		session := strings.TrimSpace(c.GetHeader(SessionHeader))
		if !sessionPattern.MatchString(session) {
			abortSession(c, "X-Session-ID header required", nil)
			return
		}
		c.Set(SessionKey, session)
		c.Next()
	}
}

// providerClaims are the claims the auth provider puts in its access tokens.
type providerClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func parseToken(tokenString, secret string) (*providerClaims, error) {
	claims := &providerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func subjectFromToken(tokenString, secret string) (string, error) {
	claims, err := parseToken(tokenString, secret)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// ServiceRoleMiddleware admits only tokens carrying the service_role claim.
func ServiceRoleMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSecret == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Success: false,
				Message: "Admin access is not configured",
			})
			return
		}

		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortSession(c, "Authorization header required", nil)
			return
		}

		claims, err := parseToken(parts[1], jwtSecret)
		if err != nil {
			abortSession(c, "Invalid or expired token", err)
			return
		}
		if claims.Role != "service_role" {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Success: false,
				Message: "Access denied. Service role required",
			})
			return
		}
		c.Next()
	}
}

func abortSession(c *gin.Context, message string, err error) {
	resp := models.ErrorResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, resp)
}

func SessionID(c *gin.Context) string {
	return c.GetString(SessionKey)
}
