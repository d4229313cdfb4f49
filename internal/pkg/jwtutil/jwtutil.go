package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AccessClaims carries the identity fields embedded in a short-lived access
// token.
type AccessClaims struct {
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}

// RefreshClaims carries only the user id; refresh tokens are matched against
// the stored copy, so nothing else belongs in them.
type RefreshClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

func GenerateAccessToken(secret string, expiration time.Duration, userID uint, email, username, fullName string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:   userID,
		Email:    email,
		Username: username,
		FullName: fullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign access token failed: %w", err)
	}
	return signed, nil
}

func GenerateRefreshToken(secret string, expiration time.Duration, userID uint) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign refresh token failed: %w", err)
	}
	return signed, nil
}

func ParseAccessToken(secret, tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parse(secret, tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func ParseRefreshToken(secret, tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parse(secret, tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func parse(secret, tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
