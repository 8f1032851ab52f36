package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pos-inventory/internal/model"
	"pos-inventory/internal/repository"
	"pos-inventory/internal/ws"
	"pos-inventory/pkg/apperror"
	"pos-inventory/pkg/jwt"
)

var (
	ErrInvalidCredentials = apperror.Unauthorized("invalid email or password")
	ErrUserInactive       = apperror.Unauthorized("user account is inactive")
	ErrWrongPassword      = apperror.Validation("current password is incorrect")
	ErrSessionTimeout     = apperror.Unauthorized("session expired due to inactivity")
	ErrSessionReplaced    = apperror.Unauthorized("session expired (logged in on another device)")
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	// Authenticate checks the token and that it belongs to the user's current session.
	Authenticate(ctx context.Context, tokenString string) (*jwt.Claims, error)
	ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error)
	Heartbeat(ctx context.Context, userID uuid.UUID) error
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo    repository.UserRepository
	tokens      *jwt.Manager
	idleTimeout time.Duration
	notifier    Notifier
	now         func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, idleTimeout time.Duration, notifier Notifier) AuthService {
	return &authService{
		userRepo:    userRepo,
		tokens:      tokens,
		idleTimeout: idleTimeout,
		notifier:    notifierOrNoop(notifier),
		now:         time.Now,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	if email == "" || password == "" {
		return nil, apperror.Validation("email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		err = apperror.FromDB(err, "user")
		logInternal("auth", "Login", "find user", email, err)
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// Single session: a new token version invalidates older tokens
	now := s.now()
	user.TokenVersion = uuid.New().String()
	user.LastSeenAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		err = apperror.Wrap(apperror.KindInternal, "failed to update session", err)
		logInternal("auth", "Login", "update session", user.ID, err)
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName, user.RoleCode(), user.GetPrivilegeCodes(), user.TokenVersion)
	if err != nil {
		err = apperror.Wrap(apperror.KindInternal, "failed to generate token", err)
		logInternal("auth", "Login", "sign token", user.ID, err)
		return nil, err
	}

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if err := validate(&req); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return apperror.FromDB(err, "user")
	}
	if !user.CheckPassword(req.OldPassword) {
		return ErrWrongPassword
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return apperror.Wrap(apperror.KindInternal, "failed to hash new password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		err = apperror.FromDB(err, "user")
		logInternal("auth", "ResetPassword", "update password", user.ID, err)
		return err
	}

	// sign out every device
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, uuid.New().String()); err != nil {
		err = apperror.FromDB(err, "user")
		logInternal("auth", "ResetPassword", "rotate token version", user.ID, err)
		return err
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*jwt.Claims, error) {
	claims, _, err := s.session(ctx, tokenString)
	return claims, err
}

func (s *authService) session(ctx context.Context, tokenString string) (*jwt.Claims, *model.User, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, nil, apperror.Wrap(apperror.KindUnauthorized, "invalid or expired token", err)
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperror.Unauthorized("user not found")
		}
		return nil, nil, apperror.FromDB(err, "user")
	}
	if !user.IsActive {
		return nil, nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, nil, ErrSessionReplaced
	}
	return claims, user, nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error) {
	_, user, err := s.session(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	if user.LastSeenAt == nil || s.now().Sub(*user.LastSeenAt) > s.idleTimeout {
		return nil, ErrSessionTimeout
	}

	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	now := s.now()
	if err := s.userRepo.UpdateLastSeen(ctx, userID, now); err != nil {
		err = apperror.FromDB(err, "user")
		logInternal("auth", "Heartbeat", "update last seen", userID, err)
		return err
	}

	s.notifier.Publish(ws.Event{
		Type: ws.EventUserStatusUpdate,
		Data: map[string]interface{}{
			"user_id":      userID.String(),
			"status":       "online",
			"last_seen_at": now,
		},
	})
	return nil
}
