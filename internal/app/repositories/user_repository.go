package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/diploma-registry/internal/app/models"
	"github.com/yigit/diploma-registry/internal/db"
	"github.com/yigit/diploma-registry/internal/pkg/apperrors"
	"github.com/yigit/diploma-registry/internal/pkg/dberrors"
	"github.com/yigit/diploma-registry/internal/pkg/logger"
)

const usersEmailConstraint = "users_email_key"

var userColumns = []string{"id", "email", "password_hash", "is_admin", "created_at", "updated_at"}

// UserRepository handles database operations for users
type UserRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(database *db.PostgresDB) *UserRepository {
	return &UserRepository{db: database, sb: psql}
}

// querier is satisfied by both the pool and a transaction
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Count returns the number of registered users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// Create inserts a user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.insert(ctx, r.db.Pool, user)
}

func (r *UserRepository) insert(ctx context.Context, q querier, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	sql, args, err := r.sb.Insert("users").
		Columns("id", "email", "password_hash", "is_admin").
		Values(user.ID, user.Email, user.PasswordHash, user.IsAdmin).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, usersEmailConstraint) {
			return apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "User already exists").
				WithField("email", "already registered")
		}
		logger.Error().Err(err).Msg("Failed to insert user")
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// CreateWithInvite registers user and marks the invite used in one transaction.
// The invite row is locked so concurrent redemptions of one code cannot both win.
func (r *UserRepository) CreateWithInvite(ctx context.Context, user *models.User, code string, now time.Time) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Select(inviteColumns...).
			From("invites").
			Where(squirrel.Eq{"code": code}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}

		invite, err := scanInvite(tx.QueryRow(ctx, sql, args...))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewCustomError(apperrors.ErrInviteInvalid, "Invalid or expired invite code").
					WithField("inviteCode", "not found")
			}
			return fmt.Errorf("failed to load invite: %w", err)
		}
		if !invite.IsUsable(now) {
			return apperrors.NewCustomError(apperrors.ErrInviteInvalid, "Invalid or expired invite code").
				WithField("inviteCode", "used, revoked or expired")
		}

		if err := r.insert(ctx, tx, user); err != nil {
			return err
		}

		sql, args, err = r.sb.Update("invites").
			Set("used_at", now).
			Set("used_by_id", user.ID).
			Where(squirrel.Eq{"id": invite.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("failed to consume invite: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by normalized email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email})
}

func (r *UserRepository) getBy(ctx context.Context, where squirrel.Eq) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	user, err := scanUser(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
