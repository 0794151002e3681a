package services

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dmitrijs2005/roomchat/internal/common"
	"github.com/dmitrijs2005/roomchat/internal/server/auth"
)

// MaxNicknameLength bounds nicknames, in bytes.
const MaxNicknameLength = 64

// Sessions trades nicknames for signed session tokens. There is no account
// system: a session only vouches that every write it makes uses the same
// nickname.
type Sessions struct {
	secret   []byte
	validity time.Duration
}

func NewSessions(secret string, validity time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), validity: validity}
}

func validateNickname(nickname string) error {
	if nickname == "" {
		return fmt.Errorf("%w: empty nickname", common.ErrorValidation)
	}
	if len(nickname) > MaxNicknameLength {
		return fmt.Errorf("%w: nickname too long", common.ErrorValidation)
	}
	if strings.TrimSpace(nickname) != nickname {
		return fmt.Errorf("%w: nickname has surrounding whitespace", common.ErrorValidation)
	}
	if strings.IndexFunc(nickname, unicode.IsControl) >= 0 {
		return fmt.Errorf("%w: nickname contains control characters", common.ErrorValidation)
	}
	return nil
}

// Open issues a token for nickname.
func (s *Sessions) Open(nickname string) (string, error) {
	if err := validateNickname(nickname); err != nil {
		return "", err
	}
	return auth.GenerateToken(nickname, s.secret, s.validity)
}

// Verify returns the nickname of token, common.ErrTokenExpired or
// common.ErrInvalidToken.
func (s *Sessions) Verify(token string) (string, error) {
	return auth.GetNicknameFromToken(token, s.secret)
}
