package service

import (
	"database/sql"
	"errors"
	"fmt"
	"masterdata-web/internal/config"
	"masterdata-web/internal/models"
	"masterdata-web/internal/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

type AuthService struct {
	userRepo UserStore
	cfg      *config.Config
}

func NewAuthService(userRepo UserStore, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

func (s *AuthService) Login(req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.VerifyCredentials(req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	// Generate JWT tokens
	accessToken, err := utils.GenerateAccessToken(*user, s.cfg.JWTSecret, s.cfg.JWTAccessExpire)
	if err != nil {
		return nil, errors.New("failed to generate access token")
	}

	refreshToken, err := utils.GenerateRefreshToken(*user, s.cfg.JWTSecret, s.cfg.JWTRefreshExpire)
	if err != nil {
		return nil, errors.New("failed to generate refresh token")
	}

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
	}, nil
}

// VerifyCredentials checks a username and password against the user table. Users without a
// stored password hash only accept an empty password.
func (s *AuthService) VerifyCredentials(username, password string) (*models.User, error) {
	if username == "" {
		return nil, models.ErrAuthenticationFailed
	}

	user, err := s.userRepo.FindByUsername(username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAuthenticationFailed
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to find user: %v", models.ErrPersistence, err)
	}

	// Check if user is active
	if !user.IsActive {
		return nil, models.ErrAuthenticationFailed
	}

	if user.PasswordHash == "" {
		if password != "" {
			return nil, models.ErrAuthenticationFailed
		}
		return user, nil
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, models.ErrAuthenticationFailed
	}
	return user, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*utils.JWTClaims, error) {
	return utils.ValidateToken(tokenString, s.cfg.JWTSecret)
}

func (s *AuthService) GetUserByID(id int) (*models.User, error) {
	return s.userRepo.FindByID(id)
}

// EnsureAdmin creates the initial admin account when it does not exist yet. An admin is never
// created without a password.
func (s *AuthService) EnsureAdmin(username, password string) (bool, error) {
	if username == "" {
		return false, nil
	}
	if password == "" {
		return false, models.ErrAdminPassword
	}
	_, err := s.userRepo.FindByUsername(username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, errors.New("failed to hash password")
	}
	user := &models.User{
		Name:         "Administrator",
		Username:     username,
		PasswordHash: hash,
		Role:         "admin",
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return false, err
	}
	return true, nil
}

// WebLogin authenticates a browser user and stores the identity in the session.
func (s *AuthService) WebLogin(req models.LoginRequest, c *fiber.Ctx, store *session.Store) (*models.User, error) {
	user, err := s.VerifyCredentials(req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	// pages call the JSON API with the same identity
	accessToken, err := utils.GenerateAccessToken(*user, s.cfg.JWTSecret, s.cfg.JWTAccessExpire)
	if err != nil {
		return nil, errors.New("failed to generate access token")
	}

	sess, err := store.Get(c)
	if err != nil {
		return nil, errors.New("failed to create session")
	}

	sess.Set("user_id", user.ID)
	sess.Set("access_token", accessToken)
	sess.Set("username", user.Username)
	sess.Set("role", user.Role)
	sess.Set("expires_at", time.Now().Add(s.cfg.JWTAccessExpire).Unix())

	if err := sess.Save(); err != nil {
		return nil, errors.New("failed to save session")
	}

	return user, nil
}

// WebLogout destroys the browser session.
func (s *AuthService) WebLogout(c *fiber.Ctx, store *session.Store) error {
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}
