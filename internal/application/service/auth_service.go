package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/pkg/apperror"
	"github.com/sangkips/notas-backoffice/pkg/oauth"
	"github.com/sangkips/notas-backoffice/pkg/utils"
)

const (
	resetTokenBytes = 32
	resetTokenTTL   = time.Hour
	minPasswordLen  = 8
)

var errInvalidResetToken = apperror.NewBadRequestError("Invalid or expired reset token")

// GoogleAuthenticator exchanges an OAuth code for a verified Google identity
type GoogleAuthenticator interface {
	IsConfigured() bool
	Authenticate(ctx context.Context, code string) (*oauth.GoogleUserInfo, error)
}

// AuthService handles operator authentication
type AuthService struct {
	userRepo          repository.SystemUserRepository
	passwordResetRepo repository.PasswordResetTokenRepository
	tx                repository.Transactor
	jwtManager        *utils.JWTManager
	mailer            PasswordResetMailer
	google            GoogleAuthenticator
	log               *logrus.Logger
	now               func() time.Time
}

// NewAuthService creates a new auth service. google may be nil when Google
// sign-in is not configured.
func NewAuthService(
	userRepo repository.SystemUserRepository,
	passwordResetRepo repository.PasswordResetTokenRepository,
	tx repository.Transactor,
	jwtManager *utils.JWTManager,
	mailer PasswordResetMailer,
	google GoogleAuthenticator,
	log *logrus.Logger,
) *AuthService {
	return &AuthService{
		userRepo:          userRepo,
		passwordResetRepo: passwordResetRepo,
		tx:                tx,
		jwtManager:        jwtManager,
		mailer:            mailer,
		google:            google,
		log:               log,
		now:               time.Now,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User        *entity.SystemUser
	AccessToken string
	ExpiresIn   int64
}

// Login authenticates an operator by email and password
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperror.ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *entity.SystemUser) (*LoginOutput, error) {
	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &LoginOutput{
		User:        user,
		AccessToken: token,
		ExpiresIn:   int64(s.jwtManager.Expiry().Seconds()),
	}, nil
}

// GetCurrentUser returns the authenticated operator
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.SystemUser, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// ForgotPassword mails a reset link when the email belongs to an operator.
// The caller never learns whether it does.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		s.logError(err, "forgot password lookup failed")
		return nil
	}
	if user == nil {
		return nil
	}

	token, err := utils.RandomToken(resetTokenBytes)
	if err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.passwordResetRepo.DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		return s.passwordResetRepo.Create(ctx, &entity.PasswordResetToken{
			UserID:    user.ID,
			TokenHash: utils.HashToken(token),
			ExpiresAt: s.now().Add(resetTokenTTL),
		})
	})
	if err != nil {
		return err
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordResetEmail(user.Email, token); err != nil {
			s.logError(err, "password reset email failed")
		}
	}
	return nil
}

// ResetPasswordInput represents the reset password input
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// ResetPassword sets a new password using a valid single-use token
func (s *AuthService) ResetPassword(ctx context.Context, input *ResetPasswordInput) error {
	if len(input.NewPassword) < minPasswordLen {
		return apperror.NewFieldError("new_password", "must be at least 8 characters")
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		token, err := s.passwordResetRepo.GetByTokenHash(ctx, utils.HashToken(strings.TrimSpace(input.Token)))
		if err != nil {
			return err
		}
		now := s.now()
		if token == nil || !token.IsValid(now) {
			return errInvalidResetToken
		}

		hashed, err := utils.HashPassword(input.NewPassword)
		if err != nil {
			return err
		}
		if err := s.userRepo.UpdatePassword(ctx, token.UserID, hashed); err != nil {
			return err
		}
		if err := s.passwordResetRepo.MarkAsUsed(ctx, token.ID, now); err != nil {
			return err
		}
		return s.passwordResetRepo.DeleteByUser(ctx, token.UserID)
	})
}

// GoogleEnabled reports whether Google sign-in is configured
func (s *AuthService) GoogleEnabled() bool {
	return s.google != nil && s.google.IsConfigured()
}

// GoogleLogin signs in an existing operator with a Google authorization code.
// Accounts are never created this way.
func (s *AuthService) GoogleLogin(ctx context.Context, code string) (*LoginOutput, error) {
	if !s.GoogleEnabled() {
		return nil, apperror.NewBadRequestError("Google sign-in is not configured")
	}
	info, err := s.google.Authenticate(ctx, code)
	if err != nil {
		if errors.Is(err, oauth.ErrEmailNotVerified) || errors.Is(err, oauth.ErrInvalidCode) {
			return nil, apperror.ErrUnauthorized
		}
		if errors.Is(err, oauth.ErrDomainNotAllowed) {
			return nil, apperror.ErrForbidden
		}
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(info.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrForbidden
	}
	return s.issue(user)
}

func (s *AuthService) logError(err error, msg string) {
	if s.log != nil {
		s.log.WithError(err).Error(msg)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
