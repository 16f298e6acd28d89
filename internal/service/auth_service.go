package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskboard/internal/auth"
	apperrors "taskboard/internal/errors"
	"taskboard/internal/model"
	"taskboard/internal/repository"
)

const bcryptCost = 10

// Demo accounts seeded by SeedDemoUsers. Dev/demo convenience only, never a
// security control; production deployments leave seeding disabled.
const (
	SeedAdminEmail   = "admin@test.com"
	SeedMember1Email = "member1@test.com"
	SeedMember2Email = "member2@test.com"
	SeedPassword     = "Password123!"
)

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken, accessTokenID string, accessTokenTTL time.Duration) error
	SeedDemoUsers(ctx context.Context) (int, error)
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Register stores a new MEMBER user with a bcrypt password hash. The email
// must be unused; the duplicate check is backed by the unique index, so two
// concurrent registrations of one email cannot both succeed.
func (s *authService) Register(ctx context.Context, email, password string) error {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         model.RoleMember,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Login authenticates a user and returns access and refresh tokens. Unknown
// email and wrong password yield the same error so the response does not
// reveal which accounts exist.
func (s *authService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", "", apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", apperrors.ErrInvalidCredentials
	}

	accessToken, err = s.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return "", "", fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Email, auth.RefreshTokenExpiry); err != nil {
		return "", "", fmt.Errorf("store refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" {
		return "", apperrors.ErrInvalidToken
	}

	storedUserID, storedEmail, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", apperrors.ErrInvalidToken
	}
	if storedUserID != claims.UserID || storedEmail != claims.Email {
		return "", apperrors.ErrInvalidToken
	}

	accessToken, err = s.jwtService.GenerateAccessToken(claims.UserID, claims.Email)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes the refresh token and blacklists the presented access token
// for its remaining lifetime.
func (s *authService) Logout(ctx context.Context, refreshToken, accessTokenID string, accessTokenTTL time.Duration) error {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" {
		return apperrors.ErrInvalidToken
	}

	if err := s.tokenStore.DeleteRefreshToken(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	if accessTokenID != "" {
		if err := s.tokenStore.BlacklistAccessToken(ctx, accessTokenID, accessTokenTTL); err != nil {
			return fmt.Errorf("blacklist access token: %w", err)
		}
	}
	return nil
}

// SeedDemoUsers creates one admin and two members with a shared well-known
// password, only when the admin account is absent. Callers opt in explicitly;
// nothing triggers this on import or startup by itself.
func (s *authService) SeedDemoUsers(ctx context.Context) (int, error) {
	_, err := s.users.FindByEmail(ctx, SeedAdminEmail)
	if err == nil {
		log.Println("default admin already exists, skipping seed")
		return 0, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("check admin existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("hash seed password: %w", err)
	}

	seeds := []model.User{
		{Email: SeedAdminEmail, PasswordHash: string(hashedPassword), Role: model.RoleAdmin},
		{Email: SeedMember1Email, PasswordHash: string(hashedPassword), Role: model.RoleMember},
		{Email: SeedMember2Email, PasswordHash: string(hashedPassword), Role: model.RoleMember},
	}
	created := 0
	for i := range seeds {
		if err := s.users.Create(ctx, &seeds[i]); err != nil {
			return created, fmt.Errorf("seed user %s: %w", seeds[i].Email, err)
		}
		created++
	}
	log.Printf("seeded %d demo users (password for all: %s)", created, SeedPassword)
	return created, nil
}
