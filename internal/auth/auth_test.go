package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"ga4dash/internal/apperrors"
)

const testKey = "0123456789abcdef0123456789abcdef"

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newSealer(t *testing.T) *Sealer {
	t.Helper()
	sealer, err := NewSealer(testKey)
	require.NoError(t, err)
	return sealer
}

func TestSealerRoundTrip(t *testing.T) {
	sealer := newSealer(t)
	in := Session{AccessToken: "ya29.token", Expiry: now.Add(time.Hour), Email: "me@example.com"}

	value, err := sealer.Seal(in)
	require.NoError(t, err)
	assert.NotContains(t, value, "ya29")

	out, err := sealer.Open(value)
	require.NoError(t, err)
	assert.Equal(t, in.AccessToken, out.AccessToken)
	assert.True(t, in.Expiry.Equal(out.Expiry))
	assert.Equal(t, in.Email, out.Email)
}

func TestSealerRejectsTamperedAndForeignCookies(t *testing.T) {
	sealer := newSealer(t)
	value, err := sealer.Seal(Session{AccessToken: "token"})
	require.NoError(t, err)

	other, err := NewSealer("fedcba9876543210fedcba9876543210")
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(value)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	tampered := base64.RawURLEncoding.EncodeToString(raw)

	_, err = other.Open(value)
	assert.ErrorIs(t, err, ErrInvalidCookie)
	_, err = sealer.Open(tampered)
	assert.ErrorIs(t, err, ErrInvalidCookie)
	_, err = sealer.Open("not base64!")
	assert.ErrorIs(t, err, ErrInvalidCookie)
	_, err = sealer.Open("c2hvcnQ")
	assert.ErrorIs(t, err, ErrInvalidCookie)
}

func TestNewSealerKeyLength(t *testing.T) {
	_, err := NewSealer("short")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestSessionExpired(t *testing.T) {
	testCases := []struct {
		name   string
		expiry time.Time
		want   bool
	}{
		{"no expiry", time.Time{}, false},
		{"an hour left", now.Add(time.Hour), false},
		{"just outside the buffer", now.Add(ExpiryBuffer + time.Second), false},
		{"exactly at the buffer", now.Add(ExpiryBuffer), true},
		{"inside the buffer", now.Add(time.Minute), true},
		{"already expired", now.Add(-time.Minute), true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Session{AccessToken: "t", Expiry: tc.expiry}.Expired(now))
		})
	}
}

func TestAuthenticatorToken(t *testing.T) {
	sealer := newSealer(t)
	auth := NewAuthenticator(sealer, func() time.Time { return now })

	valid, err := sealer.Seal(Session{AccessToken: "cookie-token", Expiry: now.Add(time.Hour)})
	require.NoError(t, err)
	expired, err := sealer.Seal(Session{AccessToken: "old-token", Expiry: now.Add(2 * time.Minute)})
	require.NoError(t, err)
	empty, err := sealer.Seal(Session{})
	require.NoError(t, err)

	t.Run("bearer header wins over cookie", func(t *testing.T) {
		token, err := auth.Token("Bearer header-token", valid)
		require.NoError(t, err)
		assert.Equal(t, "header-token", token)
	})

	t.Run("bearer scheme is case insensitive", func(t *testing.T) {
		token, err := auth.Token("bearer header-token", "")
		require.NoError(t, err)
		assert.Equal(t, "header-token", token)
	})

	t.Run("cookie is used without header", func(t *testing.T) {
		token, err := auth.Token("", valid)
		require.NoError(t, err)
		assert.Equal(t, "cookie-token", token)
	})

	t.Run("non bearer header falls back to cookie", func(t *testing.T) {
		token, err := auth.Token("Basic dXNlcjpwYXNz", valid)
		require.NoError(t, err)
		assert.Equal(t, "cookie-token", token)
	})

	failures := map[string][2]string{
		"nothing":        {"", ""},
		"empty bearer":   {"Bearer   ", ""},
		"garbage cookie": {"", "garbage"},
		"expired cookie": {"", expired},
		"empty session":  {"", empty},
	}
	for name, in := range failures {
		in := in
		t.Run(name, func(t *testing.T) {
			_, err := auth.Token(in[0], in[1])
			require.Error(t, err)
			assert.True(t, apperrors.IsAuth(err))
			assert.Equal(t, http.StatusUnauthorized, apperrors.StatusCode(err))
		})
	}
}

func TestAuthCodeURL(t *testing.T) {
	o := NewOAuth("client-id", "secret", "http://localhost:3000/auth/callback", oauth2.Endpoint{})
	state := NewState()

	u, err := url.Parse(o.AuthCodeURL(state))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "openid email profile "+AnalyticsReadonlyScope, q.Get("scope"))
	assert.Equal(t, "http://localhost:3000/auth/callback", q.Get("redirect_uri"))
}

func TestNewStateIsUnique(t *testing.T) {
	assert.NotEqual(t, NewState(), NewState())
	assert.Len(t, NewState(), 36)
}

func TestExchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"ya29.new","token_type":"Bearer","expires_in":3600,"refresh_token":"r"}`))
	}))
	defer server.Close()

	o := NewOAuth("id", "secret", "http://localhost/auth/callback", oauth2.Endpoint{
		AuthURL:  server.URL + "/auth",
		TokenURL: server.URL + "/token",
	})

	session, err := o.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "ya29.new", session.AccessToken)
	assert.False(t, session.Expiry.IsZero())

	_, err = o.Exchange(context.Background(), "bad-code")
	require.Error(t, err)
	assert.True(t, apperrors.IsAuth(err))
	assert.True(t, strings.Contains(err.Error(), "token exchange"))

	_, err = o.Exchange(context.Background(), "")
	assert.True(t, apperrors.IsAuth(err))
}
