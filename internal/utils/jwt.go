package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA-256 hashing for refresh tokens at rest
	"encoding/hex"  // hex encoding of the digest
	"errors"        // uniform verification failure
	"strings"       // cheap shape check before parsing
	"time"          // expiry computation

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Token type claim values. The gate only accepts "access" bearers, so a
// refresh token can never be replayed as an access credential.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is the single error surfaced for every verification
// failure: bad signature, expired, malformed shape, unsupported algorithm or
// wrong token type. Callers must not learn which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// SignedToken is a serialized HS256 JWT together with its UTC expiry.
type SignedToken struct {
	Token string
	Exp   time.Time
}

// NewAccessToken builds and signs a short-lived HS256 JWT for a user. The
// claims carry the subject id (sub), token type (typ), expiry (exp) and
// issued-at (iat).
func NewAccessToken(secret, userID string, ttlMin int) (SignedToken, error) {
	return newToken(secret, userID, TokenTypeAccess, time.Duration(ttlMin)*time.Minute)
}

// NewRefreshToken builds and signs a long-lived HS256 JWT for a user. The
// raw string goes back to the client; only HashRefreshRaw of it is persisted
// so stolen database rows cannot be used to refresh sessions.
func NewRefreshToken(secret, userID string, ttlDays int) (SignedToken, error) {
	return newToken(secret, userID, TokenTypeRefresh, time.Duration(ttlDays)*24*time.Hour)
}

func newToken(secret, userID, typ string, ttl time.Duration) (SignedToken, error) {
	exp := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"sub": userID,
		"typ": typ,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// VerifySubject parses and validates a token of the expected type and
// returns its subject id. Any failure yields ErrInvalidToken.
func VerifySubject(secret, raw, wantTyp string) (string, error) {
	// Reject anything that is not three dot-separated segments before
	// touching the crypto layer.
	if strings.Count(raw, ".") != 2 {
		return "", ErrInvalidToken
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if typ, _ := claims["typ"].(string); typ != wantTyp {
		return "", ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// HashRefreshRaw returns the SHA-256 hash of the raw refresh token as a hex
// string. The refresh_tokens table stores only this digest.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
