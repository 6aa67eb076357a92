package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/notas-backoffice/internal/application/service"
	"github.com/sangkips/notas-backoffice/internal/presentation/http/dto/request"
	"github.com/sangkips/notas-backoffice/internal/presentation/http/dto/response"
	"github.com/sangkips/notas-backoffice/pkg/apperror"
	"github.com/sangkips/notas-backoffice/pkg/utils"
)

const oauthStateCookie = "oauth_state"

// GoogleRedirector builds the consent URL and knows where to send the
// browser afterwards
type GoogleRedirector interface {
	AuthCodeURL(state string) string
	SuccessURL() string
	ErrorURL() string
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService  *service.AuthService
	google       GoogleRedirector
	secureCookie bool
}

// NewAuthHandler creates a new auth handler. google may be nil.
func NewAuthHandler(authService *service.AuthService, google GoogleRedirector, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, google: google, secureCookie: secureCookie}
}

func tokenPayload(out *service.LoginOutput) gin.H {
	return gin.H{
		"user":         out.User,
		"access_token": out.AccessToken,
		"token_type":   "Bearer",
		"expires_in":   out.ExpiresIn,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	output, err := h.authService.Login(c.Request.Context(), &service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Login successful", tokenPayload(output))
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.authService.GetCurrentUser(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "User retrieved successfully", user)
}

// ForgotPassword handles POST /auth/forgot-password. The answer is the same
// whether or not the email is known.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req request.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "If the email is registered, a reset link has been sent", nil)
}

// ResetPassword handles POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req request.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.authService.ResetPassword(c.Request.Context(), &service.ResetPasswordInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Password reset successfully", nil)
}

// GoogleRedirect handles GET /auth/google
func (h *AuthHandler) GoogleRedirect(c *gin.Context) {
	if h.google == nil || !h.authService.GoogleEnabled() {
		response.BadRequest(c, "Google sign-in is not configured")
		return
	}

	state, err := utils.RandomToken(16)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", h.secureCookie, true)
	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthCodeURL(state))
}

// GoogleCallback handles GET /auth/google/callback. Only existing operators
// can sign in; the token is handed to the frontend in the URL fragment.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		response.BadRequest(c, "Google sign-in is not configured")
		return
	}

	state, err := c.Cookie(oauthStateCookie)
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.secureCookie, true)
	if err != nil || state == "" || state != c.Query("state") {
		h.googleFailed(c, "invalid_state")
		return
	}

	output, err := h.authService.GoogleLogin(c.Request.Context(), c.Query("code"))
	if err != nil {
		reason := "login_failed"
		if errors.Is(err, apperror.ErrForbidden) {
			reason = "not_registered"
		}
		h.googleFailed(c, reason)
		return
	}

	fragment := url.Values{}
	fragment.Set("access_token", output.AccessToken)
	c.Redirect(http.StatusTemporaryRedirect, h.google.SuccessURL()+"#"+fragment.Encode())
}

func (h *AuthHandler) googleFailed(c *gin.Context, reason string) {
	target := h.google.ErrorURL()
	if target == "" {
		response.Unauthorized(c, "Google sign-in failed")
		return
	}
	q := url.Values{}
	q.Set("error", reason)
	c.Redirect(http.StatusTemporaryRedirect, target+"?"+q.Encode())
}
