package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/diploma-registry/internal/app/models"
	"github.com/yigit/diploma-registry/internal/app/models/dto"
	"github.com/yigit/diploma-registry/internal/app/repositories"
	"github.com/yigit/diploma-registry/internal/catalog"
	"github.com/yigit/diploma-registry/internal/pkg/apperrors"
	"github.com/yigit/diploma-registry/internal/pkg/filestorage"
	"github.com/yigit/diploma-registry/internal/pkg/logger"
)

// DiplomaPayload is an incoming create/update body: plain fields from JSON
// or form values, plus the multipart form when there was one.
type DiplomaPayload struct {
	Fields map[string]any
	Form   *multipart.Form
}

// DiplomaService defines diploma operations
type DiplomaService interface {
	Create(ctx context.Context, in DiplomaPayload) (*models.Diploma, error)
	Get(ctx context.Context, id string) (*models.Diploma, error)
	Update(ctx context.Context, id string, in DiplomaPayload) (*models.Diploma, error)
	Delete(ctx context.Context, id string) error
	// ResolveFile returns the on-disk path of a diploma's scan
	ResolveFile(ctx context.Context, id string) (string, error)
	List(ctx context.Context, q dto.DiplomaListQuery) (*dto.DiplomaListResponse, error)
	Filters() *dto.FiltersResponse
	FacultyOverview(ctx context.Context) (*dto.FacultyOverviewResponse, error)
}

// diplomaServiceImpl implements the DiplomaService interface
type diplomaServiceImpl struct {
	repo    repositories.IDiplomaRepository
	catalog *catalog.Catalog
	storage filestorage.FileStorage
	uploads filestorage.Policy
	now     func() time.Time
}

// NewDiplomaService creates a new diploma service instance
func NewDiplomaService(
	repo repositories.IDiplomaRepository,
	cat *catalog.Catalog,
	storage filestorage.FileStorage,
	uploads filestorage.Policy,
) DiplomaService {
	return &diplomaServiceImpl{
		repo:    repo,
		catalog: cat,
		storage: storage,
		uploads: uploads,
		now:     time.Now,
	}
}

// parseDiplomaID rejects blank ids and treats anything that cannot be a
// stored id, including the "undefined"/"null" sentinels, as not found.
func parseDiplomaID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, apperrors.NewCustomError(apperrors.ErrInvalidID, "Invalid id")
	}
	if raw == "undefined" || raw == "null" {
		return uuid.Nil, apperrors.NewResourceNotFoundError("Diploma not found")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewResourceNotFoundError("Diploma not found")
	}
	return id, nil
}

func parseYear(raw string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, apperrors.NewValidationError("Year must be a number").WithField("year", "must be a number")
	}
	return year, nil
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// Create validates the fields and the file, stores the file and inserts the
// record. Nothing is written until every check has passed.
func (s *diplomaServiceImpl) Create(ctx context.Context, in DiplomaPayload) (*models.Diploma, error) {
	input := dto.NormalizeDiplomaFields(in.Fields)

	missing := make(map[string]string)
	for field, value := range map[string]*string{
		"studentName":   input.StudentName,
		"specialty":     input.Specialty,
		"year":          input.Year,
		"diplomaNumber": input.DiplomaNumber,
	} {
		if trimmed(value) == "" {
			missing[field] = "is required"
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrMissingFields, "Missing fields").WithFields(missing)
	}

	year, err := parseYear(*input.Year)
	if err != nil {
		return nil, err
	}

	upload, err := s.uploads.Resolve(in.Form, in.Fields)
	if err != nil {
		return nil, err
	}
	if upload == nil {
		return nil, apperrors.NewCustomError(apperrors.ErrFileRequired, "File is required").
			WithField("file", "is required")
	}

	specialty := trimmed(input.Specialty)
	if !s.catalog.HasSpecialty(specialty) {
		return nil, apperrors.NewCustomError(apperrors.ErrUnknownSpecialty, "Unknown specialty (not in catalog)").
			WithField("specialty", "not in catalog")
	}

	fileURL, err := s.storage.Save(upload, filestorage.TimestampedName(upload, s.now()))
	if err != nil {
		return nil, fmt.Errorf("error storing diploma file: %w", err)
	}

	d := &models.Diploma{
		ID:            uuid.New(),
		StudentName:   trimmed(input.StudentName),
		Specialty:     specialty,
		Year:          year,
		DiplomaNumber: trimmed(input.DiplomaNumber),
		FileURL:       fileURL,
		IsVerified:    false,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		if delErr := s.storage.DeleteFile(fileURL); delErr != nil {
			logger.Ctx(ctx).Warn().Err(delErr).Str("fileUrl", fileURL).Msg("Failed to remove orphaned upload")
		}
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("diplomaID", d.ID.String()).Str("fileUrl", fileURL).Msg("Diploma created")
	return s.enrich(d), nil
}

// Get returns one diploma with its faculty fields filled in
func (s *diplomaServiceImpl) Get(ctx context.Context, rawID string) (*models.Diploma, error) {
	id, err := parseDiplomaID(rawID)
	if err != nil {
		return nil, err
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.enrich(d), nil
}

// Update applies a partial change. A new file replaces the stored one under
// the fixed name "<id><ext>".
func (s *diplomaServiceImpl) Update(ctx context.Context, rawID string, in DiplomaPayload) (*models.Diploma, error) {
	id, err := parseDiplomaID(rawID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch, err := buildDiplomaPatch(dto.NormalizeDiplomaFields(in.Fields))
	if err != nil {
		return nil, err
	}

	upload, err := s.uploads.Resolve(in.Form, in.Fields)
	if err != nil {
		return nil, err
	}
	// the new file stays staged until the row is updated, so a rejected
	// update leaves the current scan in place
	var stagedURL, fixedName string
	if upload != nil {
		fixedName = filestorage.FixedName(id.String(), upload)
		stagedURL, err = s.storage.Save(upload, filestorage.StagedName(id.String(), upload, s.now()))
		if err != nil {
			return nil, fmt.Errorf("error storing diploma file: %w", err)
		}
		fileURL := filestorage.PublicURL(fixedName)
		patch.FileURL = &fileURL
	}

	if patch.IsEmpty() {
		return s.enrich(existing), nil
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if stagedURL != "" {
			if delErr := s.storage.DeleteFile(stagedURL); delErr != nil {
				logger.Ctx(ctx).Warn().Err(delErr).Str("fileUrl", stagedURL).Msg("Failed to remove staged upload")
			}
		}
		return nil, err
	}

	if stagedURL != "" {
		if _, err := s.storage.Promote(stagedURL, fixedName); err != nil {
			return nil, fmt.Errorf("error replacing diploma file: %w", err)
		}
		s.storage.RemoveVariants(id.String(), upload.Ext())
	}

	logger.Ctx(ctx).Info().
		Str("diplomaID", id.String()).
		Bool("fileReplaced", upload != nil).
		Msg("Diploma updated")
	return s.enrich(updated), nil
}

// buildDiplomaPatch turns normalized input into a patch. Text fields that
// are sent must not be blank.
func buildDiplomaPatch(input dto.DiplomaInput) (models.DiplomaPatch, error) {
	var patch models.DiplomaPatch
	blank := make(map[string]string)

	text := func(field string, v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		if t == "" {
			blank[field] = "must not be empty"
			return nil
		}
		return &t
	}
	patch.StudentName = text("studentName", input.StudentName)
	patch.Specialty = text("specialty", input.Specialty)
	patch.DiplomaNumber = text("diplomaNumber", input.DiplomaNumber)
	yearText := text("year", input.Year)

	if len(blank) > 0 {
		return patch, apperrors.NewCustomError(apperrors.ErrMissingFields, "Missing fields").WithFields(blank)
	}

	if yearText != nil {
		year, err := parseYear(*yearText)
		if err != nil {
			return patch, err
		}
		patch.Year = &year
	}
	if input.IsVerified != nil {
		v := dto.ParseTruthy(*input.IsVerified)
		patch.IsVerified = &v
	}
	return patch, nil
}

// Delete removes the record; its file stays in the upload directory.
func (s *diplomaServiceImpl) Delete(ctx context.Context, rawID string) error {
	id, err := parseDiplomaID(rawID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Ctx(ctx).Info().Str("diplomaID", id.String()).Msg("Diploma deleted")
	return nil
}

// ResolveFile probes the fixed "<id><ext>" names first and only reads the
// record when none of them exists.
func (s *diplomaServiceImpl) ResolveFile(ctx context.Context, rawID string) (string, error) {
	id, err := parseDiplomaID(rawID)
	if err != nil {
		return "", err
	}

	if p, ok := s.storage.Locate(id.String(), ""); ok {
		return p, nil
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if p, ok := s.storage.Locate(id.String(), d.FileURL); ok {
		return p, nil
	}
	return "", apperrors.NewResourceNotFoundError("File not found")
}

func (s *diplomaServiceImpl) enrich(d *models.Diploma) *models.Diploma {
	d.FacultyKey, d.FacultyName = nil, nil
	if f, ok := s.catalog.FacultyForSpecialty(d.Specialty); ok {
		key, name := f.Key, f.Name
		d.FacultyKey, d.FacultyName = &key, &name
	}
	return d
}
