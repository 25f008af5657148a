// Package auth implements the Google sign-in flow and resolves the access
// token a request acts with.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"ga4dash/internal/apperrors"
)

// Cookie names
const (
	SessionCookie = "ga4dash_session"
	StateCookie   = "ga4dash_oauth_state"
)

// AnalyticsReadonlyScope grants read access to GA4 reports and properties.
const AnalyticsReadonlyScope = "https://www.googleapis.com/auth/analytics.readonly"

// ExpiryBuffer treats tokens about to expire as already expired.
const ExpiryBuffer = 5 * time.Minute

// StateTTL bounds how long a login attempt may take.
const StateTTL = 10 * time.Minute

var Scopes = []string{"openid", "email", "profile", AnalyticsReadonlyScope}

// OAuth wraps the Google OAuth web flow.
type OAuth struct {
	config *oauth2.Config
}

// NewOAuth configures the flow. A zero endpoint means Google's.
func NewOAuth(clientID, clientSecret, redirectURL string, endpoint oauth2.Endpoint) *OAuth {
	if endpoint.AuthURL == "" && endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	return &OAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       Scopes,
			Endpoint:     endpoint,
		},
	}
}

// NewState returns a fresh CSRF state value.
func NewState() string {
	return uuid.NewString()
}

// AuthCodeURL is where the browser is sent to sign in. Consent is always
// prompted so Google reissues the offline grant.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades the callback code for a session.
func (o *OAuth) Exchange(ctx context.Context, code string) (Session, error) {
	if code == "" {
		return Session{}, apperrors.NewAuthError("Missing authorization code", nil)
	}
	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return Session{}, apperrors.NewAuthError("Failed to complete Google sign-in", fmt.Errorf("token exchange: %w", err))
	}
	return SessionFromToken(token), nil
}

// Authenticator resolves the access token of a request.
type Authenticator struct {
	sealer *Sealer
	now    func() time.Time
}

func NewAuthenticator(sealer *Sealer, now func() time.Time) *Authenticator {
	if now == nil {
		now = time.Now
	}
	return &Authenticator{sealer: sealer, now: now}
}

// Token returns the bearer token from the Authorization header, or else the
// token in the session cookie. Everything else is an AuthError.
func (a *Authenticator) Token(authorization, cookie string) (string, error) {
	if token, ok := bearerToken(authorization); ok {
		return token, nil
	}

	if cookie == "" {
		return "", apperrors.NewAuthError(apperrors.MsgUnauthorized, nil)
	}

	session, err := a.sealer.Open(cookie)
	if err != nil {
		return "", apperrors.NewAuthError(apperrors.MsgUnauthorized, err)
	}
	if session.AccessToken == "" {
		return "", apperrors.NewAuthError(apperrors.MsgUnauthorized, nil)
	}
	if session.Expired(a.now()) {
		return "", apperrors.NewAuthError("Session expired. Please sign in again.", nil)
	}
	return session.AccessToken, nil
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
