package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"projectroom/internal/domain"
)

var (
	ErrTokenMissing = errors.New("token missing")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Service verifies access tokens. Tokens are issued by the login service;
// this backend only reads them.
type Service interface {
	ValidateAccessToken(token string) (*Claims, error)
	// Authenticate resolves a raw token to the sender it identifies.
	Authenticate(token string) (domain.Sender, error)
	IssueAccessToken(sender domain.Sender, ttl time.Duration) (string, error)
}

type Claims struct {
	ID   int64       `json:"id"`
	Role domain.Role `json:"role"`
	Name string      `json:"name"`
	jwt.RegisteredClaims
}

func (c *Claims) Sender() domain.Sender {
	return domain.Sender{Actor: domain.Actor{ID: c.ID, Role: c.Role}, Name: c.Name}
}

type service struct {
	secret []byte
}

func NewService(secret string) Service {
	return &service{secret: []byte(secret)}
}

func (s *service) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.Role.IsValid() {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *service) Authenticate(token string) (domain.Sender, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Sender{}, ErrTokenMissing
	}
	claims, err := s.ValidateAccessToken(token)
	if err != nil {
		return domain.Sender{}, err
	}
	return claims.Sender(), nil
}

// IssueAccessToken signs a token for sender. Used by tooling and tests.
func (s *service) IssueAccessToken(sender domain.Sender, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		ID:   sender.ID,
		Role: sender.Role,
		Name: sender.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
