package services

import (
	"github.com/agrocredbr/agrocred-api/internal/auth"
	apperrors "github.com/agrocredbr/agrocred-api/internal/errors"
	"github.com/agrocredbr/agrocred-api/internal/models"
	"github.com/agrocredbr/agrocred-api/internal/repository"
	"github.com/agrocredbr/agrocred-api/pkg/config"
)

// authServiceImpl implements AuthService
type authServiceImpl struct {
	repos      *repository.Repositories
	jwtService *auth.JWTService
	cfg        *config.Config
}

// newAuthService creates a new auth service implementation
func newAuthService(repos *repository.Repositories, cfg *config.Config) AuthService {
	return &authServiceImpl{
		repos:      repos,
		jwtService: auth.NewJWTService(cfg.JWTSecret),
		cfg:        cfg,
	}
}

// Login authenticates a user and returns a token pair
func (s *authServiceImpl) Login(email, password string) (*repository.LoginResponse, error) {
	user, err := s.repos.User.GetByEmail(email)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", nil)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, apperrors.Unauthorized("invalid credentials", nil)
	}

	return s.issueTokens(user)
}

// Register creates a new back-office user account
func (s *authServiceImpl) Register(req *repository.RegisterRequest) (*models.User, error) {
	if existing, err := s.repos.User.GetByEmail(req.Email); err == nil && existing != nil {
		return nil, apperrors.Conflict("user with this email already exists", nil)
	}

	role := req.Role
	if role == "" {
		role = string(models.RoleOperator)
	}
	switch models.UserRole(role) {
	case models.RoleAdmin, models.RoleAnalyst, models.RoleOperator:
	default:
		return nil, apperrors.InvalidInput("invalid role", nil).WithDetails(role)
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError("failed to hash password", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         role,
	}

	if err := s.repos.User.Create(user); err != nil {
		return nil, apperrors.DatabaseError("failed to create user", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// ValidateToken validates a JWT token and returns the user
func (s *authServiceImpl) ValidateToken(token string) (*models.User, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token", err)
	}

	// Re-read the user so revoked accounts lose access immediately
	user, err := s.repos.User.GetByID(claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("user not found", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// RefreshToken generates a new token pair from a refresh token
func (s *authServiceImpl) RefreshToken(refreshToken string) (*repository.LoginResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token", err)
	}

	user, err := s.repos.User.GetByID(claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("user not found", err)
	}

	return s.issueTokens(user)
}

func (s *authServiceImpl) issueTokens(user *models.User) (*repository.LoginResponse, error) {
	claims := auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}

	token, expiresAt, err := s.jwtService.GenerateToken(claims)
	if err != nil {
		return nil, apperrors.InternalError("failed to generate token", err)
	}

	refreshToken, _, err := s.jwtService.GenerateRefreshToken(claims)
	if err != nil {
		return nil, apperrors.InternalError("failed to generate refresh token", err)
	}

	return &repository.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User: models.User{
			ID:        user.ID,
			Email:     user.Email,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		},
		ExpiresAt: expiresAt,
	}, nil
}
