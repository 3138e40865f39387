package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/yigit/diploma-registry/internal/app/models"
	"github.com/yigit/diploma-registry/internal/app/models/dto"
	"github.com/yigit/diploma-registry/internal/catalog"
	"github.com/yigit/diploma-registry/internal/pkg/helpers"
)

// BuildDiplomaFilter resolves a raw listing query against the catalog.
// Bad values never fail: they fall back to "no filter" or to defaults.
func BuildDiplomaFilter(cat *catalog.Catalog, q dto.DiplomaListQuery) (models.DiplomaFilter, int, int) {
	filter := models.DiplomaFilter{
		Query: strings.TrimSpace(q.Q),
		Sort:  models.ParseSortField(q.Sort),
		Dir:   models.ParseSortDir(strings.ToLower(strings.TrimSpace(q.Dir))),
	}

	if year, err := strconv.Atoi(strings.TrimSpace(q.Year)); err == nil {
		filter.Year = &year
	}

	// is_verified wins over scope
	if q.IsVerified != nil && strings.TrimSpace(*q.IsVerified) != "" {
		v := dto.ParseTruthy(*q.IsVerified)
		filter.IsVerified = &v
	} else {
		switch models.VerificationScope(strings.ToLower(strings.TrimSpace(q.Scope))) {
		case models.ScopeVerified:
			v := true
			filter.IsVerified = &v
		case models.ScopeUnverified:
			v := false
			filter.IsVerified = &v
		}
	}

	if specialty := strings.TrimSpace(q.Specialty); specialty != "" {
		filter.Specialties = []string{specialty}
	} else if f, ok := cat.ResolveFaculty(q.Faculty); ok {
		filter.Specialties = f.Codes()
	}

	page, limit := helpers.NormalizePage(q.Page, q.Limit)
	filter.Offset, filter.Limit = helpers.CalculateOffsetLimit(page, limit)
	return filter, page, limit
}

// List returns one enriched page of diplomas
func (s *diplomaServiceImpl) List(ctx context.Context, q dto.DiplomaListQuery) (*dto.DiplomaListResponse, error) {
	filter, page, limit := BuildDiplomaFilter(s.catalog, q)

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing diplomas: %w", err)
	}
	for i := range rows {
		s.enrich(&rows[i])
	}

	return &dto.DiplomaListResponse{Rows: rows, Total: total, Page: page, Limit: limit}, nil
}

// Filters exposes the catalog and the fixed enumerations for client UIs
func (s *diplomaServiceImpl) Filters() *dto.FiltersResponse {
	faculties := s.catalog.Faculties()
	resp := &dto.FiltersResponse{
		Faculties:                    make([]string, 0, len(faculties)),
		Specialties:                  s.catalog.SpecialtyCodes(),
		FacultiesOptions:             make([]dto.FacultyOption, 0, len(faculties)),
		SpecialtiesByFacultyName:     make(map[string][]string, len(faculties)),
		SpecialtiesByFacultyKey:      make(map[string][]string, len(faculties)),
		SpecialtyOptionsByFacultyKey: make(map[string][]catalog.Specialty, len(faculties)),
		Scopes:                       models.Scopes(),
		Sorts:                        models.SortFields(),
		Dirs:                         models.SortDirs(),
	}
	for _, f := range faculties {
		resp.Faculties = append(resp.Faculties, f.Name)
		resp.FacultiesOptions = append(resp.FacultiesOptions, dto.FacultyOption{Key: f.Key, Name: f.Name})
		resp.SpecialtiesByFacultyName[f.Name] = f.Labels()
		resp.SpecialtiesByFacultyKey[f.Key] = f.Codes()
		resp.SpecialtyOptionsByFacultyKey[f.Key] = f.Specialties
	}
	return resp
}

// FacultyOverview nests verified counts per specialty under each faculty
func (s *diplomaServiceImpl) FacultyOverview(ctx context.Context) (*dto.FacultyOverviewResponse, error) {
	counts, err := s.repo.CountVerifiedBySpecialty(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting verified diplomas: %w", err)
	}

	faculties := s.catalog.Faculties()
	out := make([]dto.FacultyCount, 0, len(faculties))
	for _, f := range faculties {
		fc := dto.FacultyCount{
			Faculty:     f.Key,
			Title:       f.Name,
			Name:        f.Name,
			Specialties: make([]dto.SpecialtyCount, 0, len(f.Specialties)),
		}
		for _, sp := range f.Specialties {
			n := counts[sp.Key]
			fc.Specialties = append(fc.Specialties, dto.SpecialtyCount{Key: sp.Key, Name: sp.Label, Label: sp.Label, Count: n})
			fc.Count += n
		}
		out = append(out, fc)
	}
	return &dto.FacultyOverviewResponse{Faculties: out}, nil
}
