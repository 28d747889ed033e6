package clients

import (
	"fmt"
	"time"

	"auction-house/internal/domain/apperr"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 24 * time.Hour

// Tokens issues and checks the bearer tokens handed out at login.
type Tokens struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

func (t *Tokens) Issue(c *Client) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"client_id": c.ID,
		"email":     c.Email,
		"is_staff":  c.IsStaff,
		"exp":       t.Now().Add(t.TTL).Unix(),
	})
	s, err := tok.SignedString(t.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Parse validates a token and returns the principal it names.
func (t *Tokens) Parse(raw string) (Principal, error) {
	if len(t.Secret) == 0 {
		return Principal{}, fmt.Errorf("jwt secret not configured")
	}
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.Secret, nil
	}, jwt.WithTimeFunc(t.Now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Principal{}, apperr.Auth("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, apperr.Auth("Invalid token claims")
	}
	id, ok := claims["client_id"].(float64)
	if !ok || id <= 0 {
		return Principal{}, apperr.Auth("Invalid token claims")
	}
	p := Principal{ClientID: uint(id)}
	p.Email, _ = claims["email"].(string)
	p.IsStaff, _ = claims["is_staff"].(bool)
	return p, nil
}
