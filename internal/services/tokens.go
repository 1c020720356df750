package services

import (
	"fmt"
	"strconv"
	"time"

	"bookmarkd/pkg/utils"

	"github.com/golang-jwt/jwt/v4"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

type Claims struct {
	jwt.RegisteredClaims
	Type TokenType `json:"type"`
}

type TokenPair struct {
	Access  string
	Refresh string
}

type TokenService struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secretKey string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secretKey:  []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issue signs a token of the given type whose subject is userID.
func (s *TokenService) Issue(userID uint, typ TokenType) (string, error) {
	ttl := s.accessTTL
	if typ == RefreshToken {
		ttl = s.refreshTTL
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        utils.NewTokenID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Type: typ,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return token, nil
}

func (s *TokenService) IssuePair(userID uint) (TokenPair, error) {
	access, err := s.Issue(userID, AccessToken)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.Issue(userID, RefreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Verify validates the signature, expiry and type of tokenString and returns
// the user id carried in its subject.
func (s *TokenService) Verify(tokenString string, want TokenType) (uint, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secretKey, nil
		})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return 0, ErrInvalidToken
	}

	if claims.Type != want {
		return 0, fmt.Errorf("%w: expected %s, got %q", ErrWrongTokenType, want, claims.Type)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	return uint(userID), nil
}
