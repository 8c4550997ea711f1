package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ResetTokenTTL     = 30 * time.Minute
	resetTokenPurpose = "password_reset"
	resetTokenIssuer  = "inkwell"
)

type resetClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies password reset tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ResetTokenTTL, now: time.Now}
}

// ResetToken returns a signed token naming userID that expires after ResetTokenTTL.
func (s *TokenService) ResetToken(userID uint) (string, error) {
	now := s.now()
	claims := resetClaims{
		Purpose: resetTokenPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    resetTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return signed, nil
}

// VerifyResetToken returns the user id carried by a valid, unexpired token.
func (s *TokenService) VerifyResetToken(raw string) (uint, error) {
	claims := &resetClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(resetTokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.Purpose != resetTokenPurpose {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
