package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/notas-backoffice/internal/application/service"
	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/testutil"
	"github.com/sangkips/notas-backoffice/pkg/logger"
	"github.com/sangkips/notas-backoffice/pkg/oauth"
	"github.com/sangkips/notas-backoffice/pkg/utils"
)

type stubGoogle struct {
	emails map[string]string // code -> email
}

func (stubGoogle) IsConfigured() bool { return true }

func (g stubGoogle) Authenticate(_ context.Context, code string) (*oauth.GoogleUserInfo, error) {
	email, ok := g.emails[code]
	if !ok {
		return nil, oauth.ErrInvalidCode
	}
	return &oauth.GoogleUserInfo{Email: email, EmailVerified: true}, nil
}

func (stubGoogle) AuthCodeURL(state string) string {
	return "https://accounts.example/auth?state=" + state
}
func (stubGoogle) SuccessURL() string { return "https://painel.notas.test/login/ok" }
func (stubGoogle) ErrorURL() string   { return "https://painel.notas.test/login/erro" }

func newGoogleRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := testutil.NewStore()
	require.NoError(t, store.Users().Create(context.Background(), &entity.SystemUser{
		Name: "Admin", Email: "admin@notas.test", PasswordHash: "x", IsAdmin: true,
	}))

	google := stubGoogle{emails: map[string]string{"known": "admin@notas.test", "stranger": "x@gmail.com"}}
	authService := service.NewAuthService(store.Users(), store.ResetTokens(), store.Transactor(),
		utils.NewJWTManager("secret", time.Hour), nil, google, logger.Discard())
	h := NewAuthHandler(authService, google, false)

	r := gin.New()
	r.GET("/auth/google", h.GoogleRedirect)
	r.GET("/auth/google/callback", h.GoogleCallback)
	return r
}

func callback(r *gin.Engine, query, cookieState string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?"+query, nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: cookieState})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGoogleRedirectSetsStateCookie(t *testing.T) {
	r := newGoogleRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/google", nil))

	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, oauthStateCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "https://accounts.example/auth?state="+cookies[0].Value, w.Header().Get("Location"))
}

func TestGoogleCallback(t *testing.T) {
	r := newGoogleRouter(t)

	w := callback(r, "state=abc&code=known", "abc")
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	loc := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "https://painel.notas.test/login/ok#"), loc)
	fragment, err := url.ParseQuery(strings.SplitN(loc, "#", 2)[1])
	require.NoError(t, err)
	assert.NotEmpty(t, fragment.Get("access_token"))

	tests := []struct {
		name   string
		query  string
		cookie string
		reason string
	}{
		{"state mismatch", "state=abc&code=known", "other", "invalid_state"},
		{"missing cookie", "state=abc&code=known", "", "invalid_state"},
		{"bad code", "state=abc&code=nope", "abc", "login_failed"},
		{"not an operator", "state=abc&code=stranger", "abc", "not_registered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := callback(r, tt.query, tt.cookie)
			require.Equal(t, http.StatusTemporaryRedirect, w.Code)
			assert.Equal(t, "https://painel.notas.test/login/erro?error="+tt.reason, w.Header().Get("Location"))
		})
	}
}
