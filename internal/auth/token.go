// Package auth issues and verifies the signed tokens behind admin sessions
// and password resets, and hashes admin passwords.
//
// Tokens are stateless: base64url("<email>:<unix ms>:<hex hmac-sha256>").
// Reset tokens are keyed with the secret plus the current password hash, so
// changing the password invalidates every outstanding reset link.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidToken is the only failure a caller ever sees: malformed, forged
// and expired tokens are indistinguishable.
var ErrInvalidToken = errors.New("invalid or expired token")

// ResetTTL is how long a password reset link stays valid.
const ResetTTL = time.Hour

// Signer creates and verifies tokens with a server secret.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner returns a Signer keyed with secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

// WithClock returns a copy of s that reads time from now.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	return &Signer{secret: s.secret, now: now}
}

// NewSessionToken returns a session token for email.
func (s *Signer) NewSessionToken(email string) string {
	payload := email + ":" + strconv.FormatInt(s.now().UnixMilli(), 10)
	return encode(payload, sign(s.secret, payload))
}

// VerifySessionToken returns the email a session token was issued for.
// Session tokens carry no expiry; their lifetime is the browser session.
func (s *Signer) VerifySessionToken(token string) (string, error) {
	email, stamp, sig, err := decode(token)
	if err != nil {
		return "", err
	}
	if !verify(s.secret, email+":"+stamp, sig) {
		return "", ErrInvalidToken
	}
	return email, nil
}

// NewResetToken returns a reset token for email that expires after ResetTTL
// or as soon as passwordHash changes.
func (s *Signer) NewResetToken(email, passwordHash string) string {
	expiry := s.now().Add(ResetTTL).UnixMilli()
	payload := email + ":" + strconv.FormatInt(expiry, 10)
	return encode(payload, sign(s.resetKey(passwordHash), payload))
}

// VerifyResetToken checks a reset token against the admin's current
// password hash and returns the email it was issued for.
func (s *Signer) VerifyResetToken(token, passwordHash string) (string, error) {
	email, expiry, sig, err := decode(token)
	if err != nil {
		return "", err
	}
	ms, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if s.now().UnixMilli() > ms {
		return "", ErrInvalidToken
	}
	if !verify(s.resetKey(passwordHash), email+":"+expiry, sig) {
		return "", ErrInvalidToken
	}
	return email, nil
}

// TokenSubject returns the email embedded in a token without verifying it.
// Callers use it only to look up the key material needed for verification.
func TokenSubject(token string) (string, error) {
	email, _, _, err := decode(token)
	return email, err
}

func (s *Signer) resetKey(passwordHash string) []byte {
	key := make([]byte, 0, len(s.secret)+len(passwordHash))
	key = append(key, s.secret...)
	return append(key, passwordHash...)
}

func sign(key []byte, payload string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func verify(key []byte, payload, sig string) bool {
	return hmac.Equal([]byte(sign(key, payload)), []byte(sig))
}

func encode(payload, sig string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(payload + ":" + sig))
}

func decode(token string) (subject, stamp, sig string, err error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return "", "", "", ErrInvalidToken
	}
	parts := strings.Split(string(raw), ":")
	if len(parts) != 3 || parts[0] == "" {
		return "", "", "", ErrInvalidToken
	}
	return parts[0], parts[1], parts[2], nil
}
