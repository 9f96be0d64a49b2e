package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"esporthub/internal/config"
	"esporthub/internal/middleware/auth"
	"esporthub/internal/microservices/http-api/dto"
	"esporthub/internal/microservices/http-api/models"
	"esporthub/internal/microservices/http-api/repository"
	"esporthub/internal/shared"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrUsernameInUse      = errors.New("username already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
)

type AuthService interface {
	Register(username, password, email string) (*dto.RegisterResponse, error)
	Login(email, password string) (*dto.AuthResponse, error)
	RefreshAccessToken(refreshToken string) (*dto.RefreshResponse, error)
	RevokeRefreshToken(refreshToken string) error
	ValidateToken(tokenString string) (*shared.AuthClaims, error)
}

type authService struct {
	userRepo         repository.UserRepository
	profileRepo      repository.ProfileRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtSecret        string
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtSecret:        cfg.JWTSecret,
		accessTokenTTL:   cfg.AccessTokenTTL,
		refreshTokenTTL:  cfg.RefreshTokenTTL,
	}
}

// Register creates the identity and its public profile.
func (s *authService) Register(username, password, email string) (*dto.RegisterResponse, error) {
	ctx := context.Background()

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailInUse
	}

	if exists, err := s.profileRepo.UsernameExists(ctx, username); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrUsernameInUse
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Email:    email,
		Password: hashedPassword,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	profile := &models.Profile{
		UserID:   user.ID,
		Username: username,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	return &dto.RegisterResponse{
		UserID:   user.ID,
		Username: username,
		Email:    user.Email,
	}, nil
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(email, password string) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		// dummy compare to mitigate timing attacks (always take same time)
		auth.VerifyPassword("$2a$10$7EqJtq98hPqEX7fNZaFWoOHi6VbU5h6K9v8u5rO0m3j0h6dX5r8e", password)
		return nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.TouchLastLogin(user.ID); err != nil {
		// informational only, login still succeeds
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
		Username:     s.lookupUsername(user.ID),
		ExpiresIn:    int64(s.accessTokenTTL.Seconds()),
	}, nil
}

// lookupUsername resolves the display username, falling back to the user id
// when the profile row is missing.
func (s *authService) lookupUsername(userID string) string {
	if profile, err := s.profileRepo.GetByUserID(context.Background(), userID); err == nil {
		return profile.Username
	}
	return userID
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	username := s.lookupUsername(user.ID)

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": username,
		"role":     user.Role,
		"exp":      time.Now().Add(s.accessTokenTTL).Unix(),
		"iat":      time.Now().Unix(),
		"type":     "access",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) generateRefreshToken(user *models.User) (string, error) {
	refreshToken := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     uuid.New().String(), // opaque UUID as refresh token
		ExpiresAt: time.Now().Add(s.refreshTokenTTL),
	}

	if err := s.refreshTokenRepo.Create(refreshToken); err != nil {
		return "", err
	}

	return refreshToken.Token, nil
}

func (s *authService) RefreshAccessToken(refreshTokenString string) (*dto.RefreshResponse, error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(refreshTokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if time.Now().After(refreshToken.ExpiresAt) {
		s.refreshTokenRepo.Delete(refreshToken.ID)
		return nil, ErrExpiredToken
	}

	user, err := s.userRepo.FindByID(refreshToken.UserID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.RefreshResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.accessTokenTTL.Seconds()),
	}, nil
}

// RevokeRefreshToken invalidates a refresh token (logout).
func (s *authService) RevokeRefreshToken(refreshTokenString string) error {
	refreshToken, err := s.refreshTokenRepo.FindByToken(refreshTokenString)
	if err != nil {
		return ErrInvalidToken
	}
	return s.refreshTokenRepo.Delete(refreshToken.ID)
}

func (s *authService) ValidateToken(tokenString string) (*shared.AuthClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, _ := mapClaims["user_id"].(string)
	username, _ := mapClaims["username"].(string)
	role, _ := mapClaims["role"].(string)
	if userID == "" {
		return nil, ErrInvalidToken
	}

	return &shared.AuthClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
	}, nil
}
