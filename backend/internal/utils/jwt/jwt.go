// Package jwt signs the session cookie so a client cannot forge or guess a session id.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mahalaxmi-group/site-api/shared/logger"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrMissingClaim = errors.New("session token has no sid claim")
)

type Jwt struct {
	secretKey []byte
}

func New(secretKey []byte) *Jwt {
	return &Jwt{secretKey: secretKey}
}

// NewToken wraps a session id into an HS256 token.
func (j *Jwt) NewToken(sid string, issuedAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sid": sid,
		"iat": issuedAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return tokenString, nil
}

// DecodeToken verifies the signature and returns the session id.
func (j *Jwt) DecodeToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		logger.Log.Debug("rejected session token", "error", err)
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrMissingClaim
	}
	return sid, nil
}
