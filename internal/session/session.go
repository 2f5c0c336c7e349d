// Package session verifies bearer tokens issued by the auth provider and
// carries the resulting identity through request contexts.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"

	"rentaBack/internal/models"
)

var (
	ErrMissingToken = errors.New("authorization header missing or invalid")
	ErrInvalidToken = errors.New("invalid or expired token")
)

type Session struct {
	UserID string
	Role   string
	Email  string
}

func (s Session) IsAdmin() bool { return s.Role == models.RoleAdmin }

// Claims mirrors the provider's access token payload.
type Claims struct {
	Email       string `json:"email,omitempty"`
	Role        string `json:"role,omitempty"`
	AppMetadata struct {
		Role string `json:"role,omitempty"`
	} `json:"app_metadata"`
	jwt.StandardClaims
}

// Provider is created once at startup and shared by the auth middleware.
type Provider struct {
	secret   []byte
	audience string
}

func NewProvider(secret, audience string) *Provider {
	return &Provider{secret: []byte(secret), audience: audience}
}

// Authenticate reads the bearer token from r and validates it.
func (p *Provider) Authenticate(r *http.Request) (Session, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return Session{}, ErrMissingToken
	}
	return p.Parse(strings.TrimPrefix(authHeader, "Bearer "))
}

func (p *Provider) Parse(accessToken string) (Session, error) {
	if len(p.secret) == 0 {
		return Session{}, ErrInvalidToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Session{}, ErrInvalidToken
	}
	if p.audience != "" && !claims.VerifyAudience(p.audience, true) {
		return Session{}, ErrInvalidToken
	}

	role := models.RoleUser
	if claims.AppMetadata.Role == models.RoleAdmin {
		role = models.RoleAdmin
	}
	return Session{UserID: claims.Subject, Role: role, Email: claims.Email}, nil
}

type contextKey struct{}

func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok && s.UserID != ""
}
