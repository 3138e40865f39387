package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/yigit/diploma-registry/internal/app/models/dto"
	"github.com/yigit/diploma-registry/internal/app/services"
	"github.com/yigit/diploma-registry/internal/middleware"
	"github.com/yigit/diploma-registry/internal/pkg/apperrors"
	"github.com/yigit/diploma-registry/internal/pkg/helpers"
)

// DiplomaController handles diploma endpoints
type DiplomaController struct {
	diplomaService services.DiplomaService
}

// NewDiplomaController creates a new DiplomaController
func NewDiplomaController(diplomaService services.DiplomaService) *DiplomaController {
	return &DiplomaController{diplomaService: diplomaService}
}

// ListDiplomas handles GET /diplomas
// @Summary List diplomas
// @Description Paginated search with text, year, verification, specialty and faculty filters
// @Tags diplomas
// @Produce json
// @Param q query string false "Substring of student name or diploma number"
// @Param year query int false "Graduation year"
// @Param is_verified query string false "true/1 for verified, anything else for unverified"
// @Param isVerified query string false "Alias of is_verified"
// @Param scope query string false "Used only without is_verified" Enums(all, verified, unverified)
// @Param specialty query string false "Specialty code"
// @Param faculty query string false "Faculty key or name"
// @Param sort query string false "Sort field" Enums(createdAt, year, studentName, diplomaNumber)
// @Param dir query string false "Sort direction" Enums(asc, desc)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20) maximum(100)
// @Success 200 {object} dto.DiplomaListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /diplomas [get]
func (dc *DiplomaController) ListDiplomas(ctx *gin.Context) {
	page, limit := helpers.ParsePaginationParams(ctx)
	q := dto.DiplomaListQuery{
		Q:         ctx.Query("q"),
		Year:      ctx.Query("year"),
		Scope:     ctx.Query("scope"),
		Specialty: ctx.Query("specialty"),
		Faculty:   ctx.Query("faculty"),
		Sort:      ctx.Query("sort"),
		Dir:       ctx.Query("dir"),
		Page:      page,
		Limit:     limit,
	}
	if v, ok := ctx.GetQuery("is_verified"); ok {
		q.IsVerified = &v
	} else if v, ok := ctx.GetQuery("isVerified"); ok {
		q.IsVerified = &v
	}

	resp, err := dc.diplomaService.List(ctx.Request.Context(), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetFilters handles GET /diplomas/filters
// @Summary Filter vocabulary
// @Description Faculties, specialties and the accepted scope/sort/dir values
// @Tags diplomas
// @Produce json
// @Success 200 {object} dto.FiltersResponse
// @Router /diplomas/filters [get]
func (dc *DiplomaController) GetFilters(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dc.diplomaService.Filters())
}

// GetFacultyOverview handles GET /diplomas/faculties
// @Summary Verified diplomas per faculty
// @Tags diplomas
// @Produce json
// @Success 200 {object} dto.FacultyOverviewResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /diplomas/faculties [get]
func (dc *DiplomaController) GetFacultyOverview(ctx *gin.Context) {
	resp, err := dc.diplomaService.FacultyOverview(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetDiploma handles GET /diplomas/:id
// @Summary Get a diploma
// @Tags diplomas
// @Produce json
// @Param id path string true "Diploma ID"
// @Success 200 {object} models.Diploma
// @Failure 400 {object} dto.ErrorResponse "Invalid id"
// @Failure 404 {object} dto.ErrorResponse "Diploma not found"
// @Router /diplomas/{id} [get]
func (dc *DiplomaController) GetDiploma(ctx *gin.Context) {
	d, err := dc.diplomaService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, d)
}

// GetDiplomaFile handles GET /diplomas/:id/file
// @Summary Download the diploma scan
// @Tags diplomas
// @Produce application/pdf,image/jpeg,image/png
// @Param id path string true "Diploma ID"
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse "Diploma or file not found"
// @Router /diplomas/{id}/file [get]
func (dc *DiplomaController) GetDiplomaFile(ctx *gin.Context) {
	p, err := dc.diplomaService.ResolveFile(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Cache-Control", "no-store, max-age=0")
	ctx.File(p)
}

// CreateDiploma handles POST /diplomas
// @Summary Create a diploma
// @Description Accepts multipart/form-data with a file part, or JSON with a base64 fileBase64/file field
// @Tags diplomas
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param studentName formData string true "Student name"
// @Param specialty formData string true "Specialty code"
// @Param year formData int true "Graduation year"
// @Param diplomaNumber formData string true "Diploma number"
// @Param file formData file true "PDF, JPG or PNG scan"
// @Success 201 {object} models.Diploma
// @Failure 400 {object} dto.ErrorResponse "Missing fields, unknown specialty or bad file"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Diploma number already exists for this year"
// @Router /diplomas [post]
func (dc *DiplomaController) CreateDiploma(ctx *gin.Context) {
	payload, err := readDiplomaPayload(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	d, err := dc.diplomaService.Create(ctx.Request.Context(), payload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, d)
}

// UpdateDiploma handles PATCH /diplomas/:id
// @Summary Update a diploma
// @Description Partial update; a new file replaces the stored one
// @Tags diplomas
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Diploma ID"
// @Param studentName formData string false "Student name"
// @Param specialty formData string false "Specialty code"
// @Param year formData int false "Graduation year"
// @Param diplomaNumber formData string false "Diploma number"
// @Param isVerified formData boolean false "Verification flag"
// @Param file formData file false "Replacement scan"
// @Success 200 {object} models.Diploma
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Diploma not found"
// @Failure 409 {object} dto.ErrorResponse "Diploma number already exists for this year"
// @Router /diplomas/{id} [patch]
func (dc *DiplomaController) UpdateDiploma(ctx *gin.Context) {
	payload, err := readDiplomaPayload(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	d, err := dc.diplomaService.Update(ctx.Request.Context(), ctx.Param("id"), payload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, d)
}

// DeleteDiploma handles DELETE /diplomas/:id
// @Summary Delete a diploma
// @Tags diplomas
// @Produce json
// @Security BearerAuth
// @Param id path string true "Diploma ID"
// @Success 200 {object} dto.OKResponse
// @Failure 404 {object} dto.ErrorResponse "Diploma not found"
// @Router /diplomas/{id} [delete]
func (dc *DiplomaController) DeleteDiploma(ctx *gin.Context) {
	if err := dc.diplomaService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// readDiplomaPayload collects body fields from multipart, urlencoded or
// JSON requests. An empty body yields no fields.
func readDiplomaPayload(ctx *gin.Context) (services.DiplomaPayload, error) {
	var payload services.DiplomaPayload

	switch ctx.ContentType() {
	case binding.MIMEMultipartPOSTForm:
		form, err := ctx.MultipartForm()
		if err != nil {
			return payload, bodyError(err)
		}
		payload.Form = form
		payload.Fields = firstValues(form.Value)
	case binding.MIMEPOSTForm:
		if err := ctx.Request.ParseForm(); err != nil {
			return payload, bodyError(err)
		}
		payload.Fields = firstValues(ctx.Request.PostForm)
	default:
		fields := make(map[string]any)
		if err := ctx.ShouldBindJSON(&fields); err != nil && !errors.Is(err, io.EOF) {
			return payload, bodyError(err)
		}
		payload.Fields = fields
	}
	return payload, nil
}

func firstValues(values map[string][]string) map[string]any {
	fields := make(map[string]any, len(values))
	for k, v := range values {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return fields
}

func bodyError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return err
	}
	return apperrors.NewValidationError("Invalid request body")
}
