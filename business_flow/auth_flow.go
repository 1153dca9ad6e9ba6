package businessflow

import (
	"context"
	"strings"

	"github.com/verdantia/carbontrace/app/dto"
	"github.com/verdantia/carbontrace/app/services"
	"github.com/verdantia/carbontrace/config"
	"github.com/verdantia/carbontrace/models"
	"github.com/verdantia/carbontrace/repository"
	"github.com/verdantia/carbontrace/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthFlow handles the registration and login business logic
type AuthFlow interface {
	Register(ctx context.Context, req *dto.RegisterRequest, metadata *ClientMetadata) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.AuthResponse, error)
}

// AuthFlowImpl implements the auth business flow
type AuthFlowImpl struct {
	userRepo       repository.UserRepository
	tokenService   services.TokenService
	securityConfig config.SecurityConfig
	jwtConfig      config.JWTConfig
	db             *gorm.DB
}

// NewAuthFlow creates a new auth flow instance
func NewAuthFlow(
	userRepo repository.UserRepository,
	tokenService services.TokenService,
	securityConfig config.SecurityConfig,
	jwtConfig config.JWTConfig,
	db *gorm.DB,
) AuthFlow {
	return &AuthFlowImpl{
		userRepo:       userRepo,
		tokenService:   tokenService,
		securityConfig: securityConfig,
		jwtConfig:      jwtConfig,
		db:             db,
	}
}

// Register creates a new account and issues a token pair
func (s *AuthFlowImpl) Register(ctx context.Context, req *dto.RegisterRequest, metadata *ClientMetadata) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if existing != nil {
		return nil, NewBusinessError("EMAIL_ALREADY_EXISTS", "Email is already registered", ErrEmailAlreadyExists)
	}

	cost := s.securityConfig.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), cost)
	if err != nil {
		return nil, NewBusinessError("PASSWORD_HASH_FAILED", "Failed to hash password", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		JobTitle:     req.JobTitle,
		Role:         utils.RoleMember,
		IsActive:     true,
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		return s.userRepo.Save(txCtx, user)
	})
	if err != nil {
		return nil, NewBusinessError("REGISTRATION_FAILED", "Registration failed", err)
	}

	return s.buildAuthResponse(user, "Registration successful")
}

// Login verifies credentials, refreshes last_login_at, and issues a token pair
func (s *AuthFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if user == nil {
		return nil, NewBusinessError("INVALID_CREDENTIALS", "Invalid email or password", ErrUserNotFound)
	}
	if !user.IsActive {
		return nil, NewBusinessError("ACCOUNT_INACTIVE", "Account is inactive", ErrAccountInactive)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewBusinessError("INVALID_CREDENTIALS", "Invalid email or password", ErrIncorrectPassword)
	}

	user.LastLoginAt = utils.UTCNowPtr()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, NewBusinessError("LOGIN_UPDATE_FAILED", "Failed to record login", err)
	}

	return s.buildAuthResponse(user, "Login successful")
}

func (s *AuthFlowImpl) buildAuthResponse(user *models.User, message string) (*dto.AuthResponse, error) {
	accessToken, refreshToken, err := s.tokenService.GenerateTokens(user.ID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate tokens", err)
	}

	return &dto.AuthResponse{
		Message: message,
		User:    ToUserDTO(*user),
		Tokens: dto.TokenPairDTO{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    int(s.jwtConfig.AccessTokenTTL.Seconds()),
		},
	}, nil
}
