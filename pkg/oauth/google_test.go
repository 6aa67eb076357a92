package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newFakeGoogle(t *testing.T, info GoogleUserInfo, hostedDomain string) *GoogleOAuthService {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "at",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(info)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc := NewGoogleOAuthService(GoogleOAuthConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/callback",
		HostedDomain: hostedDomain,
	})
	svc.oauth.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	svc.userInfoURL = srv.URL + "/userinfo"
	return svc
}

func TestAuthenticate(t *testing.T) {
	svc := newFakeGoogle(t, GoogleUserInfo{Subject: "1", Email: "Ops@Example.com", EmailVerified: true, Name: "Ops"}, "")

	info, err := svc.Authenticate(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", info.Email)
}

func TestAuthenticateRejectsBadCode(t *testing.T) {
	svc := newFakeGoogle(t, GoogleUserInfo{Email: "ops@example.com", EmailVerified: true}, "")

	_, err := svc.Authenticate(context.Background(), "bad-code")
	assert.True(t, errors.Is(err, ErrInvalidCode))
}

func TestAuthenticateRequiresVerifiedEmail(t *testing.T) {
	svc := newFakeGoogle(t, GoogleUserInfo{Email: "ops@example.com"}, "")

	_, err := svc.Authenticate(context.Background(), "good-code")
	assert.True(t, errors.Is(err, ErrEmailNotVerified))
}

func TestNotConfigured(t *testing.T) {
	svc := NewGoogleOAuthService(GoogleOAuthConfig{})
	assert.False(t, svc.IsConfigured())

	_, err := svc.Authenticate(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrOAuthNotConfigured))
}

func TestAuthenticateEnforcesHostedDomain(t *testing.T) {
	svc := newFakeGoogle(t, GoogleUserInfo{Email: "ops@gmail.com", EmailVerified: true}, "notas.com.br")
	_, err := svc.Authenticate(context.Background(), "good-code")
	assert.True(t, errors.Is(err, ErrDomainNotAllowed))

	svc = newFakeGoogle(t, GoogleUserInfo{Email: "ops@notas.com.br", EmailVerified: true, HostedDomain: "notas.com.br"}, "Notas.com.br")
	info, err := svc.Authenticate(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "ops@notas.com.br", info.Email)
}

func TestAuthCodeURL(t *testing.T) {
	svc := NewGoogleOAuthService(GoogleOAuthConfig{ClientID: "client", ClientSecret: "secret", HostedDomain: "notas.com.br"})
	u, err := url.Parse(svc.AuthCodeURL("st4te"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "st4te", q.Get("state"))
	assert.Equal(t, "notas.com.br", q.Get("hd"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
}
