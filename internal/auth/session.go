package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/oauth2"
)

const nonceSize = 24

var (
	ErrInvalidKey    = errors.New("session key must be 32 bytes")
	ErrInvalidCookie = errors.New("session cookie could not be opened")
)

// Session is what the browser carries between requests.
type Session struct {
	AccessToken string    `json:"accessToken"`
	Expiry      time.Time `json:"expiry,omitempty"`
	Email       string    `json:"email,omitempty"`
}

// SessionFromToken keeps the parts of an OAuth token the dashboard needs.
// Refresh tokens are not stored.
func SessionFromToken(token *oauth2.Token) Session {
	return Session{
		AccessToken: token.AccessToken,
		Expiry:      token.Expiry,
	}
}

// Expired reports whether the access token is expired or will be within
// ExpiryBuffer of now. A zero expiry never expires.
func (s Session) Expired(now time.Time) bool {
	if s.Expiry.IsZero() {
		return false
	}
	return !now.Add(ExpiryBuffer).Before(s.Expiry)
}

// Sealer encrypts sessions into opaque cookie values.
type Sealer struct {
	key [32]byte
}

func NewSealer(key string) (*Sealer, error) {
	if len(key) != 32 {
		return nil, ErrInvalidKey
	}
	s := &Sealer{}
	copy(s.key[:], key)
	return s, nil
}

// Seal returns base64url(nonce || secretbox(json(session))).
func (s *Sealer) Seal(session Session) (string, error) {
	plain, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], plain, &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (s *Sealer) Open(value string) (Session, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return Session{}, ErrInvalidCookie
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return Session{}, ErrInvalidCookie
	}

	var session Session
	if err := json.Unmarshal(plain, &session); err != nil {
		return Session{}, ErrInvalidCookie
	}
	return session, nil
}
