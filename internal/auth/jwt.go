// Package auth verifies bearer identities issued by the platform's auth service.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dataroom/internal/config"
	"dataroom/internal/model"
)

// ErrInvalidToken covers malformed, expired, wrongly signed or incomplete tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload. Subject carries the user ID.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 tokens.
type Verifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &Verifier{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer, leeway: 30 * time.Second}, nil
}

// Verify parses tokenString and returns the identity it asserts.
func (v *Verifier) Verify(tokenString string) (model.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return model.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.Email == "" {
		return model.Identity{}, fmt.Errorf("%w: missing subject or email", ErrInvalidToken)
	}
	return model.Identity{UserID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}
