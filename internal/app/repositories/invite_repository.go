package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/diploma-registry/internal/app/models"
	"github.com/yigit/diploma-registry/internal/pkg/apperrors"
	"github.com/yigit/diploma-registry/internal/pkg/dberrors"
)

var inviteColumns = []string{"id", "code", "created_at", "expires_at", "used_at", "used_by_id", "revoked_at"}

// InviteRepository handles database operations for invites
type InviteRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewInviteRepository creates a new InviteRepository
func NewInviteRepository(db *pgxpool.Pool) *InviteRepository {
	return &InviteRepository{db: db, sb: psql}
}

func scanInvite(row pgx.Row) (*models.Invite, error) {
	var inv models.Invite
	if err := row.Scan(&inv.ID, &inv.Code, &inv.CreatedAt, &inv.ExpiresAt, &inv.UsedAt, &inv.UsedByID, &inv.RevokedAt); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create inserts an invite. A code collision surfaces as a conflict.
func (r *InviteRepository) Create(ctx context.Context, invite *models.Invite) error {
	if invite.ID == uuid.Nil {
		invite.ID = uuid.New()
	}

	sql, args, err := r.sb.Insert("invites").
		Columns("id", "code", "expires_at").
		Values(invite.ID, invite.Code, invite.ExpiresAt).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&invite.CreatedAt); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.NewConflictError("Invite code already exists").WithField("code", "already exists")
		}
		return fmt.Errorf("failed to insert invite: %w", err)
	}
	return nil
}

// List returns all invites, newest first
func (r *InviteRepository) List(ctx context.Context) ([]models.Invite, error) {
	sql, args, err := r.sb.Select(inviteColumns...).From("invites").OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	invites := make([]models.Invite, 0)
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		invites = append(invites, *inv)
	}
	return invites, rows.Err()
}

// DeleteByKey hard-deletes the invite whose id or code equals key.
func (r *InviteRepository) DeleteByKey(ctx context.Context, key string) error {
	sql, args, err := r.sb.Delete("invites").Where(inviteKeyPredicate(key)).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("Invite not found")
	}
	return nil
}

// RevokeByKey marks the invite revoked. Revoking twice keeps the first timestamp.
func (r *InviteRepository) RevokeByKey(ctx context.Context, key string, now time.Time) (*models.Invite, error) {
	sql, args, err := r.sb.Update("invites").
		Set("revoked_at", squirrel.Expr("COALESCE(revoked_at, ?)", now)).
		Where(inviteKeyPredicate(key)).
		Suffix("RETURNING " + strings.Join(inviteColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	inv, err := scanInvite(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("Invite not found")
		}
		return nil, fmt.Errorf("failed to revoke invite: %w", err)
	}
	return inv, nil
}

// inviteKeyPredicate matches by id when key parses as one, and always by code.
func inviteKeyPredicate(key string) squirrel.Sqlizer {
	key = strings.TrimSpace(key)
	code := squirrel.Eq{"code": strings.ToUpper(key)}
	if id, err := uuid.Parse(key); err == nil {
		return squirrel.Or{squirrel.Eq{"id": id}, code}
	}
	return code
}
