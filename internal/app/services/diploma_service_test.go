package services

import (
	"context"
	"encoding/base64"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/diploma-registry/internal/app/models"
	"github.com/yigit/diploma-registry/internal/app/models/dto"
	"github.com/yigit/diploma-registry/internal/catalog"
	"github.com/yigit/diploma-registry/internal/pkg/apperrors"
	"github.com/yigit/diploma-registry/internal/pkg/filestorage"
	"github.com/yigit/diploma-registry/internal/pkg/helpers"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

func pdfDataURL() string {
	return "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdfBytes)
}

type diplomaFixture struct {
	svc     *diplomaServiceImpl
	repo    *mockDiplomaRepo
	storage *filestorage.LocalStorage
	catalog *catalog.Catalog
}

func newDiplomaFixture(t *testing.T, maxBytes int64) *diplomaFixture {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	storage, err := filestorage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	repo := new(mockDiplomaRepo)
	svc := NewDiplomaService(repo, cat, storage, filestorage.NewPolicy(maxBytes)).(*diplomaServiceImpl)
	svc.now = func() time.Time { return time.UnixMilli(1718000000123) }
	return &diplomaFixture{svc: svc, repo: repo, storage: storage, catalog: cat}
}

func validCreateFields() map[string]any {
	return map[string]any{
		"studentName":   "Ivanenko Olha",
		"specialty":     "051",
		"year":          float64(2023),
		"diplomaNumber": "№1",
		"fileBase64":    pdfDataURL(),
		"fileName":      "scan.pdf",
	}
}

func storedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCreateDiploma(t *testing.T) {
	f := newDiplomaFixture(t, 0)
	ctx := context.Background()
	f.repo.On("Create", ctx, mock.AnythingOfType("*models.Diploma")).Return(nil)

	d, err := f.svc.Create(ctx, DiplomaPayload{Fields: validCreateFields()})
	require.NoError(t, err)

	assert.False(t, d.IsVerified)
	assert.Equal(t, "Ivanenko Olha", d.StudentName)
	assert.Equal(t, 2023, d.Year)
	assert.Equal(t, "№1", d.DiplomaNumber)
	assert.Equal(t, "/uploads/1718000000123_scan.pdf", d.FileURL)
	require.NotNil(t, d.FacultyKey)
	assert.Equal(t, "economics", *d.FacultyKey)

	_, err = os.Stat(filepath.Join(f.storage.BasePath(), "1718000000123_scan.pdf"))
	assert.NoError(t, err)
}

func TestCreateDiplomaAcceptsSnakeCase(t *testing.T) {
	f := newDiplomaFixture(t, 0)
	ctx := context.Background()
	f.repo.On("Create", ctx, mock.MatchedBy(func(d *models.Diploma) bool {
		return d.StudentName == "Petrenko" && d.DiplomaNumber == "B-7" && d.Year == 2022
	})).Return(nil)

	_, err := f.svc.Create(ctx, DiplomaPayload{Fields: map[string]any{
		"student_name":   "Petrenko",
		"specialty_key":  "122",
		"year_value":     "2022",
		"diploma_number": "B-7",
		"fileBase64":     pdfDataURL(),
	}})
	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestCreateDiplomaRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(map[string]any)
		maxSize int64
		want    error
	}{
		{"missing student name", func(m map[string]any) { delete(m, "studentName") }, 0, apperrors.ErrMissingFields},
		{"blank diploma number", func(m map[string]any) { m["diplomaNumber"] = "  " }, 0, apperrors.ErrMissingFields},
		{"year not numeric", func(m map[string]any) { m["year"] = "twenty" }, 0, apperrors.ErrValidationFailed},
		{"no file", func(m map[string]any) { delete(m, "fileBase64") }, 0, apperrors.ErrFileRequired},
		{"unknown specialty", func(m map[string]any) { m["specialty"] = "999" }, 0, apperrors.ErrUnknownSpecialty},
		{"wrong type", func(m map[string]any) {
			m["fileBase64"] = "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))
			m["fileName"] = "notes.txt"
		}, 0, apperrors.ErrInvalidFileType},
		{"too large", func(m map[string]any) {}, 16, apperrors.ErrFileTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newDiplomaFixture(t, tc.maxSize)
			fields := validCreateFields()
			tc.mutate(fields)

			_, err := f.svc.Create(context.Background(), DiplomaPayload{Fields: fields})
			assert.ErrorIs(t, err, tc.want)
			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			assert.Empty(t, storedFiles(t, f.storage.BasePath()))
		})
	}
}

func TestCreateDiplomaConflictRemovesFile(t *testing.T) {
	f := newDiplomaFixture(t, 0)
	ctx := context.Background()
	f.repo.On("Create", ctx, mock.Anything).Return(apperrors.NewConflictError("Diploma with this number already exists for this year"))

	_, err := f.svc.Create(ctx, DiplomaPayload{Fields: validCreateFields()})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Empty(t, storedFiles(t, f.storage.BasePath()))
}

func TestGetDiplomaIDs(t *testing.T) {
	f := newDiplomaFixture(t, 0)
	ctx := context.Background()

	for _, id := range []string{"undefined", "null", "not-a-uuid"} {
		_, err := f.svc.Get(ctx, id)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound, id)
	}
	_, err := f.svc.Get(ctx, " ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidID)

	id := uuid.New()
	f.repo.On("GetByID", ctx, id).Return(&models.Diploma{ID: id, Specialty: "no-such-code"}, nil)
	d, err := f.svc.Get(ctx, id.String())
	require.NoError(t, err)
	assert.Nil(t, d.FacultyKey)
	assert.Nil(t, d.FacultyName)
}

func TestUpdateDiplomaFields(t *testing.T) {
	f := newDiplomaFixture(t, 0)
	ctx := context.Background()
	id := uuid.New()
	existing := &models.Diploma{ID: id, StudentName: "Old", Specialty: "051", Year: 2020, DiplomaNumber: "A1"}
	verified := true
	year := 2021

	f.repo.On("GetByID", ctx, id).Return(existing, nil)
	f.repo.On("Update", ctx, id, models.DiplomaPatch{IsVerified: &verified, Year: &year}).
		Return(&models.Diploma{ID: id, StudentName: "Old", Specialty: "051", Year: 2021, DiplomaNumber: "A1", IsVerified: true}, nil)

	d, err := f.svc.Update(ctx, id.String(), DiplomaPayload{Fields: map[string]any{"is_verified": "1", "year": "2021"}})
	require.NoError(t, err)
	assert.True(t, d.IsVerified)
	assert.Equal(t, "economics", *d.FacultyKey)
	f.repo.AssertExpectations(t)
}

func TestUpdateDiplomaRejectsBlankField(t *testing.T) {
	f := newDiplomaFixture(t, 0)
	ctx := context.Background()
	id := uuid.New()
	f.repo.On("GetByID", ctx, id).Return(&models.Diploma{ID: id}, nil)

	_, err := f.svc.Update(ctx, id.String(), DiplomaPayload{Fields: map[string]any{"studentName": ""}})
	assert.ErrorIs(t, err, apperrors.ErrMissingFields)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateDiplomaReplacesFileUnderFixedName(t *testing.T) {
	f := newDiplomaFixture(t, 0)
	ctx := context.Background()
	id := uuid.New()
	stale := filepath.Join(f.storage.BasePath(), id.String()+".png")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	wantURL := "/uploads/" + id.String() + ".pdf"
	f.repo.On("GetByID", ctx, id).Return(&models.Diploma{ID: id, Specialty: "051"}, nil)
	f.repo.On("Update", ctx, id, mock.MatchedBy(func(p models.DiplomaPatch) bool {
		return p.FileURL != nil && *p.FileURL == wantURL
	})).Return(&models.Diploma{ID: id, Specialty: "051", FileURL: wantURL}, nil)

	d, err := f.svc.Update(ctx, id.String(), DiplomaPayload{Fields: map[string]any{"file": pdfDataURL()}})
	require.NoError(t, err)
	assert.Equal(t, wantURL, d.FileURL)

	assert.FileExists(t, filepath.Join(f.storage.BasePath(), id.String()+".pdf"))
	assert.NoFileExists(t, stale)

	p, err := f.svc.ResolveFile(ctx, id.String())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.storage.BasePath(), id.String()+".pdf"), p)
}

func TestUpdateDiplomaConflictKeepsCurrentFile(t *testing.T) {
	f := newDiplomaFixture(t, 0)
	ctx := context.Background()
	id := uuid.New()
	current := filepath.Join(f.storage.BasePath(), id.String()+".png")
	require.NoError(t, os.WriteFile(current, []byte("current scan"), 0o644))

	f.repo.On("GetByID", ctx, id).Return(&models.Diploma{ID: id, Specialty: "051", FileURL: "/uploads/" + id.String() + ".png"}, nil)
	f.repo.On("Update", ctx, id, mock.Anything).
		Return(nil, apperrors.NewConflictError("Diploma with this number already exists for this year"))

	_, err := f.svc.Update(ctx, id.String(), DiplomaPayload{Fields: map[string]any{
		"diplomaNumber": "taken",
		"file":          pdfDataURL(),
	}})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	assert.Equal(t, []string{id.String() + ".png"}, storedFiles(t, f.storage.BasePath()))
	stored, err := os.ReadFile(current)
	require.NoError(t, err)
	assert.Equal(t, "current scan", string(stored))

	p, err := f.svc.ResolveFile(ctx, id.String())
	require.NoError(t, err)
	assert.Equal(t, current, p)
}

func TestUpdateDiplomaStoreFailureDiscardsUpload(t *testing.T) {
	f := newDiplomaFixture(t, 0)
	ctx := context.Background()
	id := uuid.New()

	f.repo.On("GetByID", ctx, id).Return(&models.Diploma{ID: id, Specialty: "051"}, nil)
	f.repo.On("Update", ctx, id, mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := f.svc.Update(ctx, id.String(), DiplomaPayload{Fields: map[string]any{"file": pdfDataURL()}})
	assert.Error(t, err)
	assert.Empty(t, storedFiles(t, f.storage.BasePath()))
}

func TestToggleVerificationTwiceRestoresRecord(t *testing.T) {
	f := newDiplomaFixture(t, 0)
	ctx := context.Background()
	id := uuid.New()
	original := models.Diploma{ID: id, StudentName: "X", Specialty: "051", Year: 2023, DiplomaNumber: "1"}

	on, off := true, false
	flipped := original
	flipped.IsVerified = true
	f.repo.On("GetByID", ctx, id).Return(&original, nil)
	f.repo.On("Update", ctx, id, models.DiplomaPatch{IsVerified: &on}).Return(&flipped, nil)
	f.repo.On("Update", ctx, id, models.DiplomaPatch{IsVerified: &off}).Return(&original, nil)

	_, err := f.svc.Update(ctx, id.String(), DiplomaPayload{Fields: map[string]any{"isVerified": true}})
	require.NoError(t, err)
	back, err := f.svc.Update(ctx, id.String(), DiplomaPayload{Fields: map[string]any{"isVerified": false}})
	require.NoError(t, err)

	assert.False(t, back.IsVerified)
	assert.Equal(t, original.StudentName, back.StudentName)
	assert.Equal(t, original.DiplomaNumber, back.DiplomaNumber)
	assert.Equal(t, original.Year, back.Year)
}

func TestResolveFileFallsBackToRecordedURL(t *testing.T) {
	f := newDiplomaFixture(t, 0)
	ctx := context.Background()
	id := uuid.New()
	require.NoError(t, os.WriteFile(filepath.Join(f.storage.BasePath(), "1700_scan.pdf"), pdfBytes, 0o644))

	f.repo.On("GetByID", ctx, id).Return(&models.Diploma{ID: id, FileURL: "/uploads/1700_scan.pdf"}, nil)
	p, err := f.svc.ResolveFile(ctx, id.String())
	require.NoError(t, err)
	assert.Equal(t, "1700_scan.pdf", filepath.Base(p))

	missing := uuid.New()
	f.repo.On("GetByID", ctx, missing).Return(&models.Diploma{ID: missing, FileURL: "/uploads/gone.pdf"}, nil)
	_, err = f.svc.ResolveFile(ctx, missing.String())
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestDeleteMissingDiploma(t *testing.T) {
	f := newDiplomaFixture(t, 0)
	ctx := context.Background()
	id := uuid.New()
	f.repo.On("Delete", ctx, id).Return(apperrors.NewResourceNotFoundError("Diploma not found"))

	assert.ErrorIs(t, f.svc.Delete(ctx, id.String()), apperrors.ErrResourceNotFound)
}

func TestListDiplomasEnrichesRows(t *testing.T) {
	f := newDiplomaFixture(t, 0)
	ctx := context.Background()
	rows := []models.Diploma{{ID: uuid.New(), Specialty: "122", IsVerified: true}}
	f.repo.On("List", ctx, mock.MatchedBy(func(filter models.DiplomaFilter) bool {
		return filter.IsVerified != nil && *filter.IsVerified && filter.Offset == 10 && filter.Limit == 10
	})).Return(rows, int64(11), nil)

	isVerified := "true"
	resp, err := f.svc.List(ctx, dto.DiplomaListQuery{IsVerified: &isVerified, Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 11, resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 10, resp.Limit)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "csd", *resp.Rows[0].FacultyKey)
}

func TestBuildDiplomaFilter(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	t.Run("is_verified wins over scope", func(t *testing.T) {
		v := "0"
		filter, _, _ := BuildDiplomaFilter(cat, dto.DiplomaListQuery{IsVerified: &v, Scope: "verified"})
		require.NotNil(t, filter.IsVerified)
		assert.False(t, *filter.IsVerified)
	})

	t.Run("empty is_verified falls back to scope", func(t *testing.T) {
		v := ""
		filter, _, _ := BuildDiplomaFilter(cat, dto.DiplomaListQuery{IsVerified: &v, Scope: "UNVERIFIED"})
		require.NotNil(t, filter.IsVerified)
		assert.False(t, *filter.IsVerified)

		filter, _, _ = BuildDiplomaFilter(cat, dto.DiplomaListQuery{Scope: "all"})
		assert.Nil(t, filter.IsVerified)
	})

	t.Run("faculty expands to its specialty codes", func(t *testing.T) {
		filter, _, _ := BuildDiplomaFilter(cat, dto.DiplomaListQuery{Faculty: "economics"})
		f, ok := cat.Lookup("economics")
		require.True(t, ok)
		assert.Equal(t, f.Codes(), filter.Specialties)
	})

	t.Run("specialty wins over faculty", func(t *testing.T) {
		filter, _, _ := BuildDiplomaFilter(cat, dto.DiplomaListQuery{Faculty: "economics", Specialty: "122"})
		assert.Equal(t, []string{"122"}, filter.Specialties)
	})

	t.Run("bad values fall back", func(t *testing.T) {
		filter, page, limit := BuildDiplomaFilter(cat, dto.DiplomaListQuery{
			Year: "abc", Faculty: "nowhere", Sort: "password", Dir: "sideways", Page: -1, Limit: 1000,
		})
		assert.Nil(t, filter.Year)
		assert.Nil(t, filter.Specialties)
		assert.Equal(t, models.SortCreatedAt, filter.Sort)
		assert.Equal(t, models.SortDesc, filter.Dir)
		assert.Equal(t, 1, page)
		assert.Equal(t, 100, limit)
	})

	t.Run("huge page keeps offset in range", func(t *testing.T) {
		filter, page, _ := BuildDiplomaFilter(cat, dto.DiplomaListQuery{Page: math.MaxInt / 10, Limit: 20})
		assert.Equal(t, helpers.MaxPage, page)
		assert.LessOrEqual(t, filter.Offset, uint64(math.MaxInt64))
		assert.Equal(t, uint64(20), filter.Limit)
	})

	t.Run("dir is case-insensitive", func(t *testing.T) {
		filter, _, _ := BuildDiplomaFilter(cat, dto.DiplomaListQuery{Dir: "ASC", Year: "2023"})
		assert.Equal(t, models.SortAsc, filter.Dir)
		require.NotNil(t, filter.Year)
		assert.Equal(t, 2023, *filter.Year)
	})
}

func TestFiltersMirrorCatalog(t *testing.T) {
	f := newDiplomaFixture(t, 0)
	resp := f.svc.Filters()

	assert.Len(t, resp.Faculties, len(f.catalog.Faculties()))
	assert.Equal(t, f.catalog.SpecialtyCodes(), resp.Specialties)
	assert.Contains(t, resp.SpecialtiesByFacultyKey["economics"], "051")
	assert.Equal(t, models.Scopes(), resp.Scopes)
	assert.Equal(t, models.SortDirs(), resp.Dirs)
}

func TestFacultyOverviewSumsCounts(t *testing.T) {
	f := newDiplomaFixture(t, 0)
	ctx := context.Background()
	f.repo.On("CountVerifiedBySpecialty", ctx).Return(map[string]int64{"051": 3, "122": 2, "999": 7}, nil)

	resp, err := f.svc.FacultyOverview(ctx)
	require.NoError(t, err)
	require.Len(t, resp.Faculties, len(f.catalog.Faculties()))

	totals := map[string]int64{}
	var sum int64
	for _, fc := range resp.Faculties {
		totals[fc.Faculty] = fc.Count
		sum += fc.Count
		var inner int64
		for _, sp := range fc.Specialties {
			inner += sp.Count
		}
		assert.Equal(t, inner, fc.Count, fc.Faculty)
	}
	assert.EqualValues(t, 3, totals["economics"])
	assert.EqualValues(t, 2, totals["csd"])
	assert.EqualValues(t, 5, sum)
}
