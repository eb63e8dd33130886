package usecase

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sweetshop-backend/internal/domain"
)

// AuthService verifies the bearer tokens issued by the account service.
// Issue exists for tooling and tests; this service has no login flow.
type AuthService struct {
	JWTSecret string
}

func (s *AuthService) Issue(a domain.Actor, ttl time.Duration) (string, error) {
	if s.JWTSecret == "" {
		return "", ErrUnauthorized("auth not configured")
	}
	claims := jwt.MapClaims{
		"id":      a.ID,
		"email":   a.Email,
		"isAdmin": a.IsAdmin,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	if a.Name != "" {
		claims["name"] = a.Name
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.JWTSecret))
}

func (s *AuthService) Verify(token string) (domain.Actor, error) {
	if s.JWTSecret == "" {
		return domain.Actor{}, ErrUnauthorized("auth not configured")
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte(s.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return domain.Actor{}, ErrUnauthorized("invalid token")
	}
	m, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Actor{}, ErrUnauthorized("invalid claims")
	}
	id, _ := m["id"].(string)
	if id == "" {
		return domain.Actor{}, ErrUnauthorized("token has no subject")
	}
	email, _ := m["email"].(string)
	name, _ := m["name"].(string)
	admin, _ := m["isAdmin"].(bool)
	return domain.Actor{ID: domain.NormalizeID(id), Email: email, Name: name, IsAdmin: admin}, nil
}
