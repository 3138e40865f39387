package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yigit/diploma-registry/internal/app/models"
	"github.com/yigit/diploma-registry/internal/app/repositories"
	"github.com/yigit/diploma-registry/internal/pkg/apperrors"
	"github.com/yigit/diploma-registry/internal/pkg/auth"
	"github.com/yigit/diploma-registry/internal/pkg/logger"
)

// InviteService defines invite operations
type InviteService interface {
	// Create issues a new invite; ttlMinutes <= 0 means it never expires
	Create(ctx context.Context, ttlMinutes int) (*models.Invite, error)
	List(ctx context.Context) ([]models.Invite, error)
	Delete(ctx context.Context, key string) error
	Revoke(ctx context.Context, key string) (*models.Invite, error)
}

type inviteServiceImpl struct {
	repo     repositories.IInviteRepository
	now      func() time.Time
	generate func(n int) (string, error)
}

// NewInviteService creates a new invite service instance
func NewInviteService(repo repositories.IInviteRepository) InviteService {
	return &inviteServiceImpl{
		repo:     repo,
		now:      time.Now,
		generate: auth.GenerateInviteCode,
	}
}

func (s *inviteServiceImpl) Create(ctx context.Context, ttlMinutes int) (*models.Invite, error) {
	code, err := s.generate(auth.InviteCodeLength)
	if err != nil {
		return nil, fmt.Errorf("error generating invite code: %w", err)
	}

	invite := &models.Invite{Code: code}
	if ttlMinutes > 0 {
		expires := s.now().Add(time.Duration(ttlMinutes) * time.Minute)
		invite.ExpiresAt = &expires
	}

	if err := s.repo.Create(ctx, invite); err != nil {
		return nil, err
	}

	ev := logger.Ctx(ctx).Info().Str("inviteID", invite.ID.String())
	if invite.ExpiresAt != nil {
		ev = ev.Time("expiresAt", *invite.ExpiresAt)
	}
	ev.Msg("Invite created")
	return invite, nil
}

func (s *inviteServiceImpl) List(ctx context.Context) ([]models.Invite, error) {
	return s.repo.List(ctx)
}

func (s *inviteServiceImpl) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperrors.NewResourceNotFoundError("Invite not found")
	}
	if err := s.repo.DeleteByKey(ctx, key); err != nil {
		return err
	}
	logger.Ctx(ctx).Info().Str("key", key).Msg("Invite deleted")
	return nil
}

// Revoke keeps the row but makes the invite unusable
func (s *inviteServiceImpl) Revoke(ctx context.Context, key string) (*models.Invite, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperrors.NewResourceNotFoundError("Invite not found")
	}
	invite, err := s.repo.RevokeByKey(ctx, key, s.now())
	if err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("inviteID", invite.ID.String()).Msg("Invite revoked")
	return invite, nil
}
