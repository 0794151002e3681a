// Package auth issues and verifies the HS256 session tokens that carry a
// client's nickname.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/roomchat/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the session nickname.
type Claims struct {
	jwt.RegisteredClaims
	Nickname string `json:"nickname"`
}

func GenerateToken(nickname string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Nickname: nickname,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetNicknameFromToken validates tokenString and returns its nickname.
// Expired tokens yield common.ErrTokenExpired, anything else that fails
// validation yields common.ErrInvalidToken.
func GetNicknameFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Nickname == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Nickname, nil
}
