package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// JoinTokenTTL 加入令牌有效期
	JoinTokenTTL = 30 * time.Minute

	tokenIssuer = "fpsnet-server"
)

var ErrInvalidToken = errors.New("无效的加入令牌")

// JoinClaims 加入令牌携带的信息
type JoinClaims struct {
	PlayerName string `json:"player_name"`
	jwt.RegisteredClaims
}

// TokenIssuer 签发和校验加入令牌
type TokenIssuer struct {
	key []byte
	ttl time.Duration
}

// NewTokenIssuer secret 为空时读取环境变量 JWT_SECRET，仍为空则使用开发密钥
func NewTokenIssuer(secret string) *TokenIssuer {
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		secret = "fpsnet-dev-secret-change-in-production"
	}
	return &TokenIssuer{key: []byte(secret), ttl: JoinTokenTTL}
}

// Generate 为玩家签发加入令牌
func (i *TokenIssuer) Generate(playerName string) (string, error) {
	now := time.Now()
	claims := JoinClaims{
		PlayerName: playerName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   playerName,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.key)
}

// Verify 校验令牌并返回其中的玩家名
func (i *TokenIssuer) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JoinClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.key, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*JoinClaims); ok && token.Valid {
		return claims.PlayerName, nil
	}
	return "", ErrInvalidToken
}
