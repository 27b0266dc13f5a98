package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func jwtKey() []byte {
	return []byte(os.Getenv("KEY"))
}

// GenerateToken signs a bearer token carrying the account email.
func GenerateToken(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"Email": email,
	})
	return token.SignedString(jwtKey())
}

// DecodeToken validates a raw JWT and returns the email claim.
func DecodeToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtKey(), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	email, ok := claims["Email"].(string)
	if !ok || email == "" {
		return "", errors.New("token carries no email")
	}
	return email, nil
}

// JWTDecoder extracts and validates the Bearer token of a request,
// returning the authenticated email.
func JWTDecoder(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errors.New("missing Authorization header")
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == header {
		return "", errors.New("malformed Authorization header")
	}
	return DecodeToken(tokenString)
}

// HandshakeJWTDecoder validates the bearer token a socket.io client sends
// in its handshake auth payload and returns the email claim.
func HandshakeJWTDecoder(authData map[string]interface{}) (string, error) {
	raw, ok := authData["authorization"].(string)
	if !ok || raw == "" {
		return "", errors.New("missing authorization field")
	}
	tokenString := strings.TrimPrefix(raw, "Bearer ")
	if tokenString == raw {
		return "", errors.New("malformed authorization field")
	}
	return DecodeToken(tokenString)
}

// AuthRequired guards a route group: requests without a valid bearer
// token are aborted with 401 and the email is stored in the context.
func AuthRequired(c *gin.Context) {
	email, err := JWTDecoder(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set("email", email)
	c.Next()
}
