package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrSecretMissing = errors.New("JWT secret not configured")
	ErrInvalidToken  = errors.New("invalid or expired token")
)

// Claims is the identity carried by an access token.
type Claims struct {
	UserID string
	Role   string
}

// TokenParser validates HS256 access tokens.
type TokenParser struct {
	secret []byte
}

// NewTokenParser creates a parser for tokens signed with secret.
func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(strings.TrimSpace(secret))}
}

// Parse validates tokenStr and extracts the user id (sub, user_id or id) and role.
func (p *TokenParser) Parse(tokenStr string) (*Claims, error) {
	if len(p.secret) == 0 {
		return nil, ErrSecretMissing
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	claims := &Claims{Role: stringClaim(mc, "role")}
	for _, key := range []string{"sub", "user_id", "id"} {
		if v := stringClaim(mc, key); v != "" {
			claims.UserID = v
			break
		}
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Sign issues a token for userID and role. It is used by tooling and tests.
func (p *TokenParser) Sign(userID, role string, ttl time.Duration) (string, error) {
	if len(p.secret) == 0 {
		return "", ErrSecretMissing
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	})
	return token.SignedString(p.secret)
}

func stringClaim(mc jwt.MapClaims, key string) string {
	switch v := mc[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}
