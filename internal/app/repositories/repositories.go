package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/yigit/diploma-registry/internal/app/models"
	"github.com/yigit/diploma-registry/internal/db"
)

// psql builds PostgreSQL statements with $n placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, user *models.User) error
	// CreateWithInvite inserts user and consumes the invite with the given code
	// atomically. It fails with ErrInviteInvalid when the invite is not usable at now.
	CreateWithInvite(ctx context.Context, user *models.User, code string, now time.Time) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// IDiplomaRepository defines diploma persistence
type IDiplomaRepository interface {
	Create(ctx context.Context, d *models.Diploma) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Diploma, error)
	Update(ctx context.Context, id uuid.UUID, patch models.DiplomaPatch) (*models.Diploma, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter models.DiplomaFilter) ([]models.Diploma, int64, error)
	CountVerifiedBySpecialty(ctx context.Context) (map[string]int64, error)
}

// IInviteRepository defines invite persistence
type IInviteRepository interface {
	Create(ctx context.Context, invite *models.Invite) error
	List(ctx context.Context) ([]models.Invite, error)
	DeleteByKey(ctx context.Context, key string) error
	RevokeByKey(ctx context.Context, key string, now time.Time) (*models.Invite, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository    *UserRepository
	DiplomaRepository *DiplomaRepository
	InviteRepository  *InviteRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		UserRepository:    NewUserRepository(database),
		DiplomaRepository: NewDiplomaRepository(database.Pool),
		InviteRepository:  NewInviteRepository(database.Pool),
	}
}
