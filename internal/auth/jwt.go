package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stockmanager/backend/internal/models"
)

var (
	jwtSecret     []byte
	tokenLifetime = time.Hour
)

// Configure sets the signing secret and access token lifetime. Must be
// called once at startup before any token is issued or parsed.
func Configure(secret string, lifetime time.Duration) {
	jwtSecret = []byte(secret)
	if lifetime > 0 {
		tokenLifetime = lifetime
	}
}

func GenerateToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Name,
		"role": user.Role,
		"exp":  time.Now().Add(tokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ParseToken(tokenStr string) (*jwt.Token, error) {
	return jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
}

// TokenClaims parses the bearer token out of an Authorization header
// and returns it with its claims.
func TokenClaims(authorizationHeader string) (*jwt.Token, jwt.MapClaims, error) {
	tokenStr := strings.TrimPrefix(authorizationHeader, "Bearer ")
	token, err := ParseToken(tokenStr)
	if err != nil {
		return nil, nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return token, nil, errors.New("unexpected claims type")
	}
	return token, claims, nil
}
