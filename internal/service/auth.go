package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finteach/internal/config"
	"finteach/internal/models"
	"finteach/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	DefaultBcryptCost = 12
	minPasswordLen    = 8
	maxPasswordBytes  = 72 // bcrypt input limit
)

// AuthService registers users and issues access/refresh token pairs.
// Every refresh token has a Session row keyed by its jti.
type AuthService struct {
	db         *gorm.DB
	jwt        config.JWTConfig
	bcryptCost int
}

func NewAuthService(db *gorm.DB, jwtCfg config.JWTConfig, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	return &AuthService{db: db, jwt: jwtCfg, bcryptCost: bcryptCost}
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	Access  string
	Refresh string
}

// Register creates a user. Usernames are unique regardless of case.
func (s *AuthService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if !util.ValidUsername(username) {
		return nil, fmt.Errorf("%w: username must be 3-150 letters, digits or @.+-_", ErrInvalidRequest)
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).
		Where("LOWER(username) = LOWER(?)", username).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Login checks the credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", strings.TrimSpace(username)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no active account found with the given credentials", ErrUnauthorized)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: no active account found with the given credentials", ErrUnauthorized)
	}

	access, _, err := util.GenerateToken(s.jwt.Secret, s.jwt.Issuer, user.ID, util.TokenTypeAccess, s.jwt.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, jti, err := util.GenerateToken(s.jwt.Secret, s.jwt.Issuer, user.ID, util.TokenTypeRefresh, s.jwt.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	session := models.Session{
		ID:        jti,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.refreshTTL()),
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a live refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	session, err := s.liveSession(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	access, _, err := util.GenerateToken(s.jwt.Secret, s.jwt.Issuer, session.UserID, util.TokenTypeAccess, s.jwt.AccessTTL)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return access, nil
}

// Revoke ends the session behind a refresh token.
func (s *AuthService) Revoke(ctx context.Context, refreshToken string) error {
	session, err := s.liveSession(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(session).Update("revoked", true).Error; err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// ChangePassword replaces the password after checking the old one and
// revokes every open session of the user.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return fmt.Errorf("%w: old password is incorrect", ErrInvalidRequest)
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("password_hash", string(hash)).Error; err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if err := tx.Model(&models.Session{}).
			Where("user_id = ? AND revoked = ?", user.ID, false).
			Update("revoked", true).Error; err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return nil
}

// UpdateEmail overwrites the user's email; empty clears it.
func (s *AuthService) UpdateEmail(ctx context.Context, user *models.User, email string) error {
	email = strings.TrimSpace(email)
	if err := s.db.WithContext(ctx).Model(user).Update("email", email).Error; err != nil {
		return fmt.Errorf("update email: %w", err)
	}
	user.Email = email
	return nil
}

func checkPassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRequest, minPasswordLen)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidRequest, maxPasswordBytes)
	}
	return nil
}

func (s *AuthService) liveSession(ctx context.Context, refreshToken string) (*models.Session, error) {
	claims, err := util.ParseToken(s.jwt.Secret, refreshToken, util.TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: token is invalid or expired", ErrUnauthorized)
	}

	var session models.Session
	err = s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND revoked = ? AND expires_at > ?", claims.ID, claims.UserID, false, time.Now()).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: token is invalid or expired", ErrUnauthorized)
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &session, nil
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.jwt.RefreshTTL <= 0 {
		return 5 * time.Minute
	}
	return s.jwt.RefreshTTL
}
