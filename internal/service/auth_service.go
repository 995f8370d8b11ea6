package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"carcare-backend/internal/config"
	"carcare-backend/internal/domain"
	"carcare-backend/internal/mailer"
	"carcare-backend/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

type AuthService struct {
	Config config.Config
	Users  repository.UserRepository
	Mailer mailer.Mailer
	Logger *slog.Logger
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         domain.User
	ExpiresAt    time.Time
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      domain.UserRole
}

type LoginInput struct {
	Email    string
	Password string
}

func (s AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.Email == "" || in.Password == "" || in.FirstName == "" {
		return nil, domain.ErrValidation
	}
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if !domain.ValidRole(in.Role) {
		return nil, domain.ErrValidation
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.Users.Create(ctx, repository.CreateUserParams{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Role:         in.Role,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

func (s AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.DeletedAt != nil || !user.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(user)
}

func (s AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.Config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if claims["token_type"] != "refresh" {
		return nil, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if user.DeletedAt != nil || !user.Active {
		return nil, ErrInvalidToken
	}
	return s.issueTokens(user)
}

// ForgotPassword stores a one-time reset token and mails the reset link.
// Unknown emails succeed silently so the endpoint cannot be used to probe
// which addresses exist.
func (s AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	err = s.Users.CreatePasswordReset(ctx, domain.PasswordReset{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.Config.ResetTokenTTL),
	})
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.Config.PublicBaseURL, token)
	body := fmt.Sprintf("Hello %s,\r\n\r\nUse the link below to reset your password:\r\n%s\r\n\r\nThe link expires in %s.",
		user.FirstName, link, s.Config.ResetTokenTTL)
	if err := s.Mailer.Send(user.Email, "Password reset", body); err != nil {
		s.Logger.Error("send reset mail", "email", user.Email, "error", err)
	}
	return nil
}

func (s AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return domain.ErrValidation
	}
	reset, err := s.Users.ConsumePasswordReset(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.Users.SetPassword(ctx, reset.UserID, string(hash))
}

// ChangePassword verifies the current password before setting the new one.
func (s AuthService) ChangePassword(ctx context.Context, userID int64, current, newPassword string) error {
	if current == "" || newPassword == "" {
		return domain.ErrValidation
	}
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	return s.setPassword(ctx, userID, newPassword)
}

// SetPassword overwrites a user's password without a current-password check.
// Admin surface only.
func (s AuthService) SetPassword(ctx context.Context, userID int64, newPassword string) error {
	if newPassword == "" {
		return domain.ErrValidation
	}
	return s.setPassword(ctx, userID, newPassword)
}

func (s AuthService) setPassword(ctx context.Context, userID int64, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.Users.SetPassword(ctx, userID, string(hash))
}

func (s AuthService) issueTokens(user *domain.User) (*AuthResult, error) {
	now := time.Now()
	accessExp := now.Add(s.Config.AccessTokenTTL)
	refreshExp := now.Add(s.Config.RefreshTokenTTL)

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        fmt.Sprintf("%d", user.ID),
		"email":      user.Email,
		"role":       user.Role,
		"hourlyPay":  user.HourlyPay,
		"token_type": "access",
		"exp":        accessExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        fmt.Sprintf("%d", user.ID),
		"token_type": "refresh",
		"exp":        refreshExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         *user,
		ExpiresAt:    accessExp,
	}, nil
}
