package services

import (
	"fmt"
	"log"
	"time"

	"markethub/internal/models"

	"github.com/dgrijalva/jwt-go"
)

// APITokenService issues and validates short-lived bearer tokens for
// programmatic clients of the JSON API. Browser clients use the cookie
// session instead; the two are independent.
type APITokenService struct {
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which the token is valid
}

// NewAPITokenService creates a new APITokenService.
func NewAPITokenService(jwtSecret string) *APITokenService {
	return &APITokenService{
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
	}
}

// GenerateToken signs a token carrying the user's identity and role snapshot.
func (s *APITokenService) GenerateToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(s.tokenDurat).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a bearer token, returning the claims if valid.
func (s *APITokenService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
