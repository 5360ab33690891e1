package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"trackmyfin/internal/cache"
)

// ErrInvalidToken is returned for expired, malformed, or forged tokens.
var ErrInvalidToken = errors.New("invalid token")

const (
	tokenIssuer        = "trackmyfin"
	tokenCacheSize     = 1024
	tokenCacheInterval = 5 * time.Minute
)

// TokenService issues and verifies HS256 bearer tokens. Verified tokens
// are cached so a hot client does not pay signature checks per request.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	verified *cache.LRU[verifiedToken]
	now      func() time.Time
}

// verifiedToken carries the token's own expiry so a cache hit can never
// outlive the token.
type verifiedToken struct {
	userID    int64
	expiresAt time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	verified := cache.NewLRU[verifiedToken](tokenCacheSize, ttl)
	verified.StartJanitor(tokenCacheInterval)
	return &TokenService{
		secret:   []byte(secret),
		ttl:      ttl,
		verified: verified,
		now:      time.Now,
	}
}

// Issue signs a token for the user, valid for the configured TTL.
func (s *TokenService) Issue(userID int64) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the user ID a token was issued for.
func (s *TokenService) Verify(token string) (int64, error) {
	if v, ok := s.verified.Get(token); ok {
		if s.now().Before(v.expiresAt) {
			return v.userID, nil
		}
		s.verified.Delete(token)
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, ErrInvalidToken
	}
	s.verified.Set(token, verifiedToken{userID: userID, expiresAt: exp.Time})
	return userID, nil
}

// Revoke drops a token from the verified cache. The token itself stays
// valid until it expires; revocation only forces re-verification.
func (s *TokenService) Revoke(token string) {
	s.verified.Delete(token)
}

// Close stops the cache janitor.
func (s *TokenService) Close() {
	s.verified.Stop()
}
