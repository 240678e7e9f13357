package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kos-manager/internal/models"
	"kos-manager/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles registration, login and session resolution.
type AuthService struct {
	DB          *gorm.DB
	JWTSecret   string
	Issuer      string
	TokenTTL    time.Duration
	RememberTTL time.Duration
	BcryptCost  int
	Clock       Clock
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
	IP         string
	UserAgent  string
}

// LoginResult carries the signed token and the session it refers to.
type LoginResult struct {
	User      *models.User
	Session   *models.Session
	Token     string
	ExpiresAt time.Time
	TTL       time.Duration
}

var validate = validator.New()

// Register creates a user after checking username and email are unused.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if n := len(in.Username); n < 4 || n > 25 {
		return nil, invalid("username", "username must be 4-25 characters")
	}
	if err := validate.Var(in.Email, "required,email,max=120"); err != nil {
		return nil, invalid("email", "invalid email address")
	}
	if len(in.Password) < 6 {
		return nil, invalid("password", "password must be at least 6 characters")
	}
	if in.Password != in.ConfirmPassword {
		return nil, invalid("confirm_password", "passwords do not match")
	}

	db := s.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).
		Where("LOWER(username) = LOWER(?)", in.Username).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}
	if err := db.Model(&models.User{}).
		Where("LOWER(email) = ?", in.Email).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	cost := s.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Login checks the password and opens a new session.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	db := s.DB.WithContext(ctx)

	var user models.User
	if err := db.Where("LOWER(email) = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.Clock.now()
	ttl := s.TokenTTL
	if in.RememberMe && s.RememberTTL > 0 {
		ttl = s.RememberTTL
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(ttl),
		IP:        in.IP,
		UserAgent: util.Truncate(in.UserAgent, 255),
	}
	if err := db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := util.GenerateToken(s.JWTSecret, s.Issuer, user.ID, session.ID, ttl)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	user.LastLoginAt = &now
	user.LastLoginIP = in.IP
	if err := db.Model(&user).Select("last_login_at", "last_login_ip").Updates(&user).Error; err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	return &LoginResult{User: &user, Session: &session, Token: token, ExpiresAt: session.ExpiresAt, TTL: ttl}, nil
}

// Resolve maps a token to its live session and user.
func (s *AuthService) Resolve(ctx context.Context, token string) (*models.User, *models.Session, error) {
	claims, err := util.ParseToken(s.JWTSecret, token)
	if err != nil {
		return nil, nil, ErrSessionInvalid
	}

	db := s.DB.WithContext(ctx)

	var session models.Session
	if err := db.Where("id = ? AND user_id = ?", claims.SessionID, claims.UserID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSessionInvalid
		}
		return nil, nil, fmt.Errorf("query session: %w", err)
	}
	if session.Revoked || !session.ExpiresAt.After(s.Clock.now()) {
		return nil, nil, ErrSessionInvalid
	}

	var user models.User
	if err := db.First(&user, session.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSessionInvalid
		}
		return nil, nil, fmt.Errorf("query user: %w", err)
	}
	return &user, &session, nil
}

// Logout revokes a session. Revoking an unknown session is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.DB.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", sessionID).
		Update("revoked", true).Error; err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// ChangePassword replaces the password and revokes every other session of the user.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, keepSession, oldPassword, newPassword string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return invalid("old_password", "current password is incorrect")
	}
	if len(newPassword) < 6 {
		return invalid("new_password", "password must be at least 6 characters")
	}

	cost := s.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("password_hash", string(hash)).Error; err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if err := tx.Model(&models.Session{}).
			Where("user_id = ? AND id <> ?", user.ID, keepSession).
			Update("revoked", true).Error; err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}
		return nil
	})
}
