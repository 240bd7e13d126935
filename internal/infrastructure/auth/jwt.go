package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/echomag/echomag/internal/shared/biztime"
)

const defaultTokenTTL = time.Hour

// ErrSecretNotConfigured is returned by every call while no signing secret is
// set, so admin routes stay closed on a bare config.
var ErrSecretNotConfigured = errors.New("jwt secret is not configured")

// Claims identifies the admin console caller by account uid.
type Claims struct {
	UID int64 `json:"uid"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewJWTService(secret string, tokenTTL time.Duration) *JWTService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &JWTService{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Generate signs an HS256 access token for uid.
func (s *JWTService) Generate(uid int64) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSecretNotConfigured
	}
	if uid <= 0 {
		return "", fmt.Errorf("uid must be positive, got %d", uid)
	}

	now := biztime.NowUTC()
	claims := &Claims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrSecretNotConfigured
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.UID <= 0 {
		return nil, fmt.Errorf("token carries no uid")
	}
	return claims, nil
}

// TokenTTL returns how long generated tokens stay valid.
func (s *JWTService) TokenTTL() time.Duration {
	return s.tokenTTL
}
