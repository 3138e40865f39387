package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/diploma-registry/internal/app/models"
	"github.com/yigit/diploma-registry/internal/pkg/apperrors"
	"github.com/yigit/diploma-registry/internal/pkg/dberrors"
	"github.com/yigit/diploma-registry/internal/pkg/logger"
)

const diplomaNumberYearConstraint = "diplomas_number_year_key"

var diplomaColumns = []string{
	"id", "student_name", "specialty", "year", "diploma_number",
	"file_url", "is_verified", "created_at", "updated_at",
}

// DiplomaRepository handles database operations for diplomas
type DiplomaRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewDiplomaRepository creates a new DiplomaRepository
func NewDiplomaRepository(db *pgxpool.Pool) *DiplomaRepository {
	return &DiplomaRepository{db: db, sb: psql}
}

func scanDiploma(row pgx.Row) (*models.Diploma, error) {
	var d models.Diploma
	err := row.Scan(&d.ID, &d.StudentName, &d.Specialty, &d.Year, &d.DiplomaNumber,
		&d.FileURL, &d.IsVerified, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func diplomaConflict() error {
	return apperrors.NewConflictError("Diploma with this number already exists for this year").
		WithFields(map[string]string{
			"diplomaNumber": "already exists for this year",
			"year":          "already has a diploma with this number",
		})
}

func isDiplomaConflict(err error) bool {
	return dberrors.IsDuplicateConstraintError(err, diplomaNumberYearConstraint) || dberrors.IsUniqueViolation(err)
}

// Create inserts d, assigning its id when unset and filling timestamps.
func (r *DiplomaRepository) Create(ctx context.Context, d *models.Diploma) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}

	sql, args, err := r.sb.Insert("diplomas").
		Columns("id", "student_name", "specialty", "year", "diploma_number", "file_url", "is_verified").
		Values(d.ID, d.StudentName, d.Specialty, d.Year, d.DiplomaNumber, d.FileURL, d.IsVerified).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&d.CreatedAt, &d.UpdatedAt); err != nil {
		if isDiplomaConflict(err) {
			return diplomaConflict()
		}
		logger.Error().Err(err).Msg("Failed to insert diploma")
		return fmt.Errorf("failed to insert diploma: %w", err)
	}
	return nil
}

// GetByID retrieves a diploma by id
func (r *DiplomaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Diploma, error) {
	sql, args, err := r.sb.Select(diplomaColumns...).From("diplomas").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	d, err := scanDiploma(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("Diploma not found")
		}
		return nil, fmt.Errorf("failed to get diploma: %w", err)
	}
	return d, nil
}

// buildDiplomaUpdate sets only the patched columns. updated_at moves on
// every successful patch, field edits included.
func buildDiplomaUpdate(sb squirrel.StatementBuilderType, id uuid.UUID, patch models.DiplomaPatch) squirrel.UpdateBuilder {
	set := map[string]interface{}{"updated_at": squirrel.Expr("NOW()")}
	if patch.StudentName != nil {
		set["student_name"] = *patch.StudentName
	}
	if patch.Specialty != nil {
		set["specialty"] = *patch.Specialty
	}
	if patch.Year != nil {
		set["year"] = *patch.Year
	}
	if patch.DiplomaNumber != nil {
		set["diploma_number"] = *patch.DiplomaNumber
	}
	if patch.IsVerified != nil {
		set["is_verified"] = *patch.IsVerified
	}
	if patch.FileURL != nil {
		set["file_url"] = *patch.FileURL
	}

	return sb.Update("diplomas").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(diplomaColumns, ", "))
}

// Update applies patch and refreshes updated_at.
func (r *DiplomaRepository) Update(ctx context.Context, id uuid.UUID, patch models.DiplomaPatch) (*models.Diploma, error) {
	sql, args, err := buildDiplomaUpdate(r.sb, id, patch).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	d, err := scanDiploma(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("Diploma not found")
		}
		if isDiplomaConflict(err) {
			return nil, diplomaConflict()
		}
		logger.Error().Err(err).Str("diplomaID", id.String()).Msg("Failed to update diploma")
		return nil, fmt.Errorf("failed to update diploma: %w", err)
	}
	return d, nil
}

// Delete removes a diploma record. The stored file is left alone.
func (r *DiplomaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("diplomas").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete diploma: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("Diploma not found")
	}
	return nil
}

// List returns one page of diplomas matching filter and the total match count.
func (r *DiplomaRepository) List(ctx context.Context, filter models.DiplomaFilter) ([]models.Diploma, int64, error) {
	countSQL, countArgs, err := applyDiplomaFilter(r.sb.Select("COUNT(*)").From("diplomas"), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building count SQL: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count diplomas: %w", err)
	}

	listSQL, listArgs, err := buildDiplomaListQuery(r.sb, filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building list SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list diplomas: %w", err)
	}
	defer rows.Close()

	diplomas := make([]models.Diploma, 0)
	for rows.Next() {
		d, err := scanDiploma(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		diplomas = append(diplomas, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return diplomas, total, nil
}

// CountVerifiedBySpecialty groups verified diplomas by specialty code.
func (r *DiplomaRepository) CountVerifiedBySpecialty(ctx context.Context) (map[string]int64, error) {
	sql, args, err := r.sb.Select("specialty", "COUNT(*)").
		From("diplomas").
		Where(squirrel.Eq{"is_verified": true}).
		GroupBy("specialty").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count diplomas: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var specialty string
		var n int64
		if err := rows.Scan(&specialty, &n); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		counts[specialty] = n
	}
	return counts, rows.Err()
}

func buildDiplomaListQuery(sb squirrel.StatementBuilderType, filter models.DiplomaFilter) squirrel.SelectBuilder {
	q := applyDiplomaFilter(sb.Select(diplomaColumns...).From("diplomas"), filter)
	q = q.OrderBy(mapSortFieldToColumn(filter.Sort)+" "+sortDirection(filter.Dir), "id ASC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	return q.Offset(filter.Offset)
}

// applyDiplomaFilter adds the WHERE clause shared by the list and count queries.
func applyDiplomaFilter(q squirrel.SelectBuilder, f models.DiplomaFilter) squirrel.SelectBuilder {
	if term := strings.TrimSpace(f.Query); term != "" {
		pattern := "%" + escapeLike(term) + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"student_name": pattern},
			squirrel.ILike{"diploma_number": pattern},
		})
	}
	if f.Year != nil {
		q = q.Where(squirrel.Eq{"year": *f.Year})
	}
	if f.IsVerified != nil {
		q = q.Where(squirrel.Eq{"is_verified": *f.IsVerified})
	}
	if f.Specialties != nil {
		q = q.Where(squirrel.Eq{"specialty": f.Specialties})
	}
	return q
}

func mapSortFieldToColumn(field models.SortField) string {
	switch field {
	case models.SortYear:
		return "year"
	case models.SortStudentName:
		return "student_name"
	case models.SortDiplomaNumber:
		return "diploma_number"
	default:
		return "created_at"
	}
}

func sortDirection(dir models.SortDir) string {
	if dir == models.SortAsc {
		return "ASC"
	}
	return "DESC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
