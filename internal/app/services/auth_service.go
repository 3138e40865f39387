package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/diploma-registry/internal/app/models"
	"github.com/yigit/diploma-registry/internal/app/models/dto"
	"github.com/yigit/diploma-registry/internal/app/repositories"
	"github.com/yigit/diploma-registry/internal/pkg/apperrors"
	"github.com/yigit/diploma-registry/internal/pkg/auth"
)

// RegistrationPolicy decides who may register once the first user exists.
type RegistrationPolicy struct {
	AllowSelfRegister bool
	InviteGrantsAdmin bool
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo   repositories.IUserRepository
	jwtService *auth.JWTService
	policy     RegistrationPolicy
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	jwtService *auth.JWTService,
	policy RegistrationPolicy,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		policy:     policy,
		logger:     logger,
		now:        time.Now,
	}
}

func credentialsRequired() error {
	return apperrors.NewCustomError(apperrors.ErrMissingFields, "Email and password are required")
}

// Register creates a user. The very first user is always an admin; after
// that either self-registration is open or a usable invite code is needed.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	req.Normalize()
	if req.Email == "" || req.Password == "" {
		return nil, credentialsRequired()
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "User already exists").
			WithField("email", "already registered")
	} else if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting users: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{ID: uuid.New(), Email: req.Email, PasswordHash: hash}

	switch {
	case count == 0:
		user.IsAdmin = true
		err = s.userRepo.Create(ctx, user)
	case s.policy.AllowSelfRegister:
		err = s.userRepo.Create(ctx, user)
	case req.InviteCode == "":
		return nil, apperrors.NewCustomError(apperrors.ErrInviteRequired, "Invite code is required").
			WithField("inviteCode", "is required")
	default:
		user.IsAdmin = s.policy.InviteGrantsAdmin
		err = s.userRepo.CreateWithInvite(ctx, user, req.InviteCode, s.now())
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("userID", user.ID.String()).
		Bool("isAdmin", user.IsAdmin).
		Bool("bootstrap", count == 0).
		Msg("User registered")

	return s.authResponse(user)
}

// Login verifies credentials and issues a token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := dto.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, credentialsRequired()
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid email or password")
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid email or password")
	}

	return s.authResponse(user)
}

// Me returns the user behind a verified token. A user deleted after the
// token was issued is reported as unauthorized.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*dto.MeResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrUnauthorized, "Unauthorized")
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return &dto.MeResponse{User: dto.NewUserResponse(user)}, nil
}

func (s *AuthService) authResponse(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}
	return &dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}
