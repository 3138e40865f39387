package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/diploma-registry/internal/app/models"
	"github.com/yigit/diploma-registry/internal/app/models/dto"
	"github.com/yigit/diploma-registry/internal/app/services"
	"github.com/yigit/diploma-registry/internal/catalog"
	"github.com/yigit/diploma-registry/internal/middleware"
	"github.com/yigit/diploma-registry/internal/pkg/apperrors"
	"github.com/yigit/diploma-registry/internal/pkg/auth"
	"github.com/yigit/diploma-registry/internal/pkg/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Configure(logger.Config{Level: logger.ErrorLevel, Output: os.Stderr})
	os.Exit(m.Run())
}

type mockDiplomaService struct {
	mock.Mock
}

func (m *mockDiplomaService) Create(ctx context.Context, in services.DiplomaPayload) (*models.Diploma, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*models.Diploma), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDiplomaService) Get(ctx context.Context, id string) (*models.Diploma, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Diploma), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDiplomaService) Update(ctx context.Context, id string, in services.DiplomaPayload) (*models.Diploma, error) {
	args := m.Called(ctx, id, in)
	if v := args.Get(0); v != nil {
		return v.(*models.Diploma), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDiplomaService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockDiplomaService) ResolveFile(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *mockDiplomaService) List(ctx context.Context, q dto.DiplomaListQuery) (*dto.DiplomaListResponse, error) {
	args := m.Called(ctx, q)
	if v := args.Get(0); v != nil {
		return v.(*dto.DiplomaListResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDiplomaService) Filters() *dto.FiltersResponse {
	return m.Called().Get(0).(*dto.FiltersResponse)
}

func (m *mockDiplomaService) FacultyOverview(ctx context.Context) (*dto.FacultyOverviewResponse, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*dto.FacultyOverviewResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockInviteService struct {
	mock.Mock
}

func (m *mockInviteService) Create(ctx context.Context, ttlMinutes int) (*models.Invite, error) {
	args := m.Called(ctx, ttlMinutes)
	if v := args.Get(0); v != nil {
		return v.(*models.Invite), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInviteService) List(ctx context.Context) ([]models.Invite, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]models.Invite), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInviteService) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockInviteService) Revoke(ctx context.Context, key string) (*models.Invite, error) {
	args := m.Called(ctx, key)
	if v := args.Get(0); v != nil {
		return v.(*models.Invite), args.Error(1)
	}
	return nil, args.Error(1)
}

// memUserRepo is an in-memory user store for exercising the real AuthService
type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *memUserRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *memUserRepo) CreateWithInvite(context.Context, *models.User, string, time.Time) error {
	return apperrors.NewCustomError(apperrors.ErrInviteInvalid, "Invalid or expired invite code")
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, apperrors.NewResourceNotFoundError("User not found")
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("User not found")
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error { return p.err }

type testEnv struct {
	router   *gin.Engine
	diplomas *mockDiplomaService
	invites  *mockInviteService
	users    *memUserRepo
	jwt      *auth.JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	env := &testEnv{
		diplomas: new(mockDiplomaService),
		invites:  new(mockInviteService),
		users:    newMemUserRepo(),
		jwt:      auth.NewJWTService(auth.JWTConfig{SecretKey: "controller-secret"}),
	}
	authService := services.NewAuthService(env.users, env.jwt, services.RegistrationPolicy{InviteGrantsAdmin: true}, zerolog.Nop())
	authMW := middleware.NewAuthMiddleware(env.jwt)

	r := gin.New()
	r.GET("/api/health", NewHealthController(fakePinger{}).Health)
	r.POST("/api/login", NewAuthController(authService, zerolog.Nop()).Login)
	r.POST("/api/register", NewAuthController(authService, zerolog.Nop()).Register)
	r.GET("/api/me", authMW.JWTAuth(), NewAuthController(authService, zerolog.Nop()).Me)

	cc := NewCatalogController(cat)
	r.GET("/api/catalog", cc.GetCatalog)
	r.GET("/api/catalog/list", cc.ListCatalog)

	dc := NewDiplomaController(env.diplomas)
	r.GET("/api/diplomas", dc.ListDiplomas)
	r.GET("/api/diplomas/filters", dc.GetFilters)
	r.GET("/api/diplomas/faculties", dc.GetFacultyOverview)
	r.GET("/api/diplomas/:id", dc.GetDiploma)
	r.GET("/api/diplomas/:id/file", dc.GetDiplomaFile)
	r.POST("/api/diplomas", dc.CreateDiploma)
	r.PATCH("/api/diplomas/:id", dc.UpdateDiploma)
	r.DELETE("/api/diplomas/:id", dc.DeleteDiploma)

	ic := NewInviteController(env.invites)
	r.GET("/api/invites", ic.ListInvites)
	r.POST("/api/invites", ic.CreateInvite)
	r.DELETE("/api/invites/:key", ic.DeleteInvite)
	r.POST("/api/invites/:key/revoke", ic.RevokeInvite)

	env.router = r
	return env
}

func (e *testEnv) do(method, path, contentType string, body []byte, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(method, path string, body any, header ...string) *httptest.ResponseRecorder {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	return e.do(method, path, "application/json", raw, header...)
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(http.MethodPost, "/api/register", map[string]string{"email": "Root@Example.com", "password": "secret"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reg dto.AuthResponse
	decodeInto(t, w, &reg)
	assert.True(t, reg.User.IsAdmin)
	assert.Equal(t, "root@example.com", reg.User.Email)

	w = env.doJSON(http.MethodPost, "/api/register", map[string]string{"email": "clerk@example.com", "password": "secret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errBody dto.ErrorResponse
	decodeInto(t, w, &errBody)
	assert.Equal(t, dto.ErrorCodeInviteRequired, errBody.Code)

	w = env.doJSON(http.MethodPost, "/api/register", map[string]string{"email": "root@example.com", "password": "other"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.doJSON(http.MethodPost, "/api/login", map[string]string{"email": "root@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.doJSON(http.MethodPost, "/api/login", map[string]string{"email": "root@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.doJSON(http.MethodPost, "/api/login", map[string]string{"email": "root@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	var login dto.AuthResponse
	decodeInto(t, w, &login)

	w = env.doJSON(http.MethodGet, "/api/me", nil, "Authorization", "Bearer "+login.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var me dto.MeResponse
	decodeInto(t, w, &me)
	assert.Equal(t, reg.User.ID, me.User.ID)
	assert.True(t, me.User.IsAdmin)

	ghost, err := env.jwt.GenerateToken(&models.User{ID: uuid.New()})
	require.NoError(t, err)
	w = env.doJSON(http.MethodGet, "/api/me", nil, "Authorization", "Bearer "+ghost)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListDiplomasPassesQuery(t *testing.T) {
	env := newTestEnv(t)
	env.diplomas.On("List", mock.Anything, mock.MatchedBy(func(q dto.DiplomaListQuery) bool {
		return q.Q == "ivan" && q.IsVerified != nil && *q.IsVerified == "1" &&
			q.Faculty == "economics" && q.Page == 2 && q.Limit == 100
	})).Return(&dto.DiplomaListResponse{Rows: []models.Diploma{}, Total: 0, Page: 2, Limit: 100}, nil)

	w := env.doJSON(http.MethodGet, "/api/diplomas?q=ivan&isVerified=1&faculty=economics&page=2&limit=500", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"rows":[],"total":0,"page":2,"limit":100}`, w.Body.String())
	env.diplomas.AssertExpectations(t)
}

func TestListDiplomasNoVerificationParam(t *testing.T) {
	env := newTestEnv(t)
	env.diplomas.On("List", mock.Anything, mock.MatchedBy(func(q dto.DiplomaListQuery) bool {
		return q.IsVerified == nil && q.Scope == "verified" && q.Page == 1 && q.Limit == 20
	})).Return(&dto.DiplomaListResponse{Rows: []models.Diploma{}, Page: 1, Limit: 20}, nil)

	w := env.doJSON(http.MethodGet, "/api/diplomas?scope=verified", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	env.diplomas.AssertExpectations(t)
}

func TestGetDiplomaNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.diplomas.On("Get", mock.Anything, "undefined").Return(nil, apperrors.NewResourceNotFoundError("Diploma not found"))

	w := env.doJSON(http.MethodGet, "/api/diplomas/undefined", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body dto.ErrorResponse
	decodeInto(t, w, &body)
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "Diploma not found", body.Message)
}

func TestGetDiplomaFile(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.NewString()
	p := filepath.Join(t.TempDir(), id+".pdf")
	require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4 test"), 0o644))

	env.diplomas.On("ResolveFile", mock.Anything, id).Return(p, nil)
	env.diplomas.On("ResolveFile", mock.Anything, "missing").Return("", apperrors.NewResourceNotFoundError("File not found"))

	w := env.doJSON(http.MethodGet, "/api/diplomas/"+id+"/file", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store, max-age=0", w.Header().Get("Cache-Control"))
	assert.Equal(t, "%PDF-1.4 test", w.Body.String())

	w = env.doJSON(http.MethodGet, "/api/diplomas/missing/file", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateDiplomaMultipart(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("studentName", "Ivanenko Olha"))
	require.NoError(t, mw.WriteField("specialty", "051"))
	require.NoError(t, mw.WriteField("year", "2023"))
	require.NoError(t, mw.WriteField("diploma_number", "№1"))
	part, err := mw.CreateFormFile("scan", "scan.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	created := &models.Diploma{ID: uuid.New(), StudentName: "Ivanenko Olha", Specialty: "051", Year: 2023, DiplomaNumber: "№1"}
	env.diplomas.On("Create", mock.Anything, mock.MatchedBy(func(p services.DiplomaPayload) bool {
		return p.Fields["studentName"] == "Ivanenko Olha" &&
			p.Fields["diploma_number"] == "№1" &&
			p.Form != nil && len(p.Form.File["scan"]) == 1
	})).Return(created, nil)

	w := env.do(http.MethodPost, "/api/diplomas", mw.FormDataContentType(), buf.Bytes())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var got models.Diploma
	decodeInto(t, w, &got)
	assert.Equal(t, created.ID, got.ID)
	assert.False(t, got.IsVerified)
}

func TestCreateDiplomaJSONConflict(t *testing.T) {
	env := newTestEnv(t)
	env.diplomas.On("Create", mock.Anything, mock.MatchedBy(func(p services.DiplomaPayload) bool {
		return p.Form == nil && p.Fields["year"] == float64(2023)
	})).Return(nil, apperrors.NewConflictError("Diploma with this number already exists for this year").
		WithFields(map[string]string{"diplomaNumber": "already exists", "year": "already exists"}))

	w := env.doJSON(http.MethodPost, "/api/diplomas", map[string]any{
		"studentName": "X", "specialty": "051", "year": 2023, "diplomaNumber": "1", "fileBase64": "data:application/pdf;base64,JVBERi0=",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	var body dto.ErrorResponse
	decodeInto(t, w, &body)
	assert.Equal(t, "already exists", body.Errors["diplomaNumber"])
	assert.Equal(t, "already exists", body.Errors["year"])
}

func TestCreateDiplomaRejectsMalformedJSON(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/api/diplomas", "application/json", []byte(`{"studentName":`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.diplomas.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateDiplomaEmptyBody(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.NewString()
	env.diplomas.On("Update", mock.Anything, id, mock.MatchedBy(func(p services.DiplomaPayload) bool {
		return len(p.Fields) == 0
	})).Return(&models.Diploma{}, nil)

	w := env.do(http.MethodPatch, "/api/diplomas/"+id, "application/json", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	env.diplomas.AssertExpectations(t)
}

func TestDeleteDiploma(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.NewString()
	env.diplomas.On("Delete", mock.Anything, id).Return(nil)

	w := env.doJSON(http.MethodDelete, "/api/diplomas/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestFacultyOverviewError(t *testing.T) {
	env := newTestEnv(t)
	env.diplomas.On("FacultyOverview", mock.Anything).Return(nil, errors.New("db down"))

	w := env.doJSON(http.MethodGet, "/api/diplomas/faculties", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestInviteEndpoints(t *testing.T) {
	env := newTestEnv(t)
	invite := &models.Invite{ID: uuid.New(), Code: "K7Q2ZD"}

	env.invites.On("Create", mock.Anything, 30).Return(invite, nil)
	env.invites.On("Create", mock.Anything, 0).Return(invite, nil)
	env.invites.On("List", mock.Anything).Return([]models.Invite{*invite}, nil)
	env.invites.On("Delete", mock.Anything, "K7Q2ZD").Return(nil)
	env.invites.On("Delete", mock.Anything, "NOPE00").Return(apperrors.NewResourceNotFoundError("Invite not found"))
	env.invites.On("Revoke", mock.Anything, "K7Q2ZD").Return(invite, nil)

	w := env.doJSON(http.MethodPost, "/api/invites", map[string]any{"minutes": "30"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"code":"K7Q2ZD"`)

	w = env.do(http.MethodPost, "/api/invites", "application/json", nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.doJSON(http.MethodGet, "/api/invites", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(w.Body.String()), "["))

	w = env.doJSON(http.MethodDelete, "/api/invites/K7Q2ZD", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = env.doJSON(http.MethodDelete, "/api/invites/NOPE00", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.doJSON(http.MethodPost, "/api/invites/K7Q2ZD/revoke", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	env.invites.AssertExpectations(t)
}

func TestCatalogEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var byKey map[string]catalog.Faculty
	decodeInto(t, w, &byKey)
	assert.Contains(t, byKey, "economics")

	w = env.doJSON(http.MethodGet, "/api/catalog/list", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []dto.CatalogFaculty
	decodeInto(t, w, &list)
	require.NotEmpty(t, list)
	assert.Equal(t, "economics", list[0].Key)
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	NewHealthController(fakePinger{err: errors.New("refused")}).Health(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	env := newTestEnv(t)
	w = env.doJSON(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"up"}`, w.Body.String())
}
