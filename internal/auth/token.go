// token.go

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
)

// ErrInvalidToken 令牌无效或已过期
var ErrInvalidToken = errors.New("无效或已过期的令牌")

// Claims 玩家令牌声明
type Claims struct {
	Guest bool `json:"guest"`
	jwt.RegisteredClaims
}

// TokenIssuer 签发和校验 HS256 令牌
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenIssuer 创建令牌签发器
func NewTokenIssuer(cfg config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
	}
}

// IssueGuest 为新的访客签发令牌，返回令牌和访客ID
func (t *TokenIssuer) IssueGuest(now time.Time) (string, string, error) {
	playerID := uuid.New().String()
	token, err := t.Issue(playerID, true, now)
	if err != nil {
		return "", "", err
	}
	return token, playerID, nil
}

// Issue 签发令牌
func (t *TokenIssuer) Issue(playerID string, guest bool, now time.Time) (string, error) {
	claims := Claims{
		Guest: guest,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("签发令牌失败: %w", err)
	}
	return signed, nil
}

// Verify 校验令牌并返回玩家ID
func (t *TokenIssuer) Verify(token string, now time.Time) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// TTL 令牌有效期
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}
