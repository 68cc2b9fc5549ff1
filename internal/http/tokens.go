package http

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"rewards-optimizer-go/internal/models"
)

const tokenIssuer = "rewards-optimizer"

var (
	errTokenFormat    = errors.New("invalid_token_format")
	errTokenStructure = errors.New("invalid_token_structure")
	errTokenInvalid   = errors.New("invalid_token")
)

// Tokens issues and reads bearer tokens. With a secret it signs HS256 JWTs
// whose subject is the user's public UUID; without one it falls back to
// mock_token_{UUID}_{Random}.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret string, ttl time.Duration) Tokens {
	return Tokens{secret: []byte(secret), ttl: ttl}
}

func (t Tokens) signed() bool {
	return len(t.secret) > 0
}

func (t Tokens) Issue(user *models.User) (string, error) {
	if !t.signed() {
		return "mock_token_" + user.UUID + "_" + strings.ReplaceAll(uuid.NewString(), "-", ""), nil
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   user.UUID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Subject returns the user UUID the token was issued for.
func (t Tokens) Subject(token string) (string, error) {
	if !t.signed() {
		if !strings.HasPrefix(token, "mock_token_") {
			return "", errTokenFormat
		}
		parts := strings.Split(token, "_") // mock, token, UUID, Random...
		if len(parts) < 4 {
			return "", errTokenStructure
		}
		return parts[2], nil
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || claims.Subject == "" {
		return "", errTokenInvalid
	}
	return claims.Subject, nil
}
