package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const openIDUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

var (
	ErrInvalidCode        = errors.New("invalid authorization code")
	ErrFailedToGetUser    = errors.New("failed to get user info from Google")
	ErrEmailNotVerified   = errors.New("Google account email is not verified")
	ErrDomainNotAllowed   = errors.New("Google account does not belong to the allowed domain")
	ErrOAuthNotConfigured = errors.New("Google OAuth is not configured")
)

// GoogleUserInfo is the OpenID Connect identity returned by Google
type GoogleUserInfo struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	HostedDomain  string `json:"hd"`
}

// GoogleOAuthConfig holds the configuration for Google sign-in. An empty
// HostedDomain accepts any verified Google account.
type GoogleOAuthConfig struct {
	ClientID           string
	ClientSecret       string
	RedirectURL        string
	HostedDomain       string
	FrontendSuccessURL string
	FrontendErrorURL   string
}

// GoogleOAuthService signs operators in with their Google account
type GoogleOAuthService struct {
	oauth        *oauth2.Config
	userInfoURL  string
	hostedDomain string
	successURL   string
	errorURL     string
}

func NewGoogleOAuthService(cfg GoogleOAuthConfig) *GoogleOAuthService {
	return &GoogleOAuthService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL:  openIDUserInfoURL,
		hostedDomain: strings.ToLower(strings.TrimSpace(cfg.HostedDomain)),
		successURL:   cfg.FrontendSuccessURL,
		errorURL:     cfg.FrontendErrorURL,
	}
}

// IsConfigured reports whether client credentials are present
func (s *GoogleOAuthService) IsConfigured() bool {
	return s != nil && s.oauth.ClientID != "" && s.oauth.ClientSecret != ""
}

// AuthCodeURL is the consent screen URL carrying state. With a hosted domain
// the account chooser is limited to that Workspace.
func (s *GoogleOAuthService) AuthCodeURL(state string) string {
	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("prompt", "select_account")}
	if s.hostedDomain != "" {
		opts = append(opts, oauth2.SetAuthURLParam("hd", s.hostedDomain))
	}
	return s.oauth.AuthCodeURL(state, opts...)
}

// SuccessURL is where the browser lands after a successful sign-in
func (s *GoogleOAuthService) SuccessURL() string { return s.successURL }

// ErrorURL is where the browser lands when sign-in fails
func (s *GoogleOAuthService) ErrorURL() string { return s.errorURL }

// Authenticate exchanges the authorization code and returns the verified
// identity behind it, with the email lower-cased.
func (s *GoogleOAuthService) Authenticate(ctx context.Context, code string) (*GoogleUserInfo, error) {
	if !s.IsConfigured() {
		return nil, ErrOAuthNotConfigured
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}

	info, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	if !info.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	// the hd auth param is only a hint to the chooser
	if s.hostedDomain != "" && !strings.EqualFold(info.HostedDomain, s.hostedDomain) {
		return nil, ErrDomainNotAllowed
	}
	info.Email = strings.ToLower(info.Email)
	return info, nil
}

func (s *GoogleOAuthService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	resp, err := s.oauth.Client(ctx, token).Get(s.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetUser, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrFailedToGetUser, resp.StatusCode, snippet)
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetUser, err)
	}
	return &info, nil
}
