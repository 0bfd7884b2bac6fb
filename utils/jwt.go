package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims scope a bearer token to one startup.
type Claims struct {
	StartupID int64 `json:"startup_id"`
	jwt.RegisteredClaims
}

func GenerateJWT(secret string, startupID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		StartupID: startupID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(startupID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

func ParseJWT(secret, token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims.StartupID <= 0 {
		return nil, errors.New("token has no startup")
	}
	return claims, nil
}
