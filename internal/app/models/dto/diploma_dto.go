package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/yigit/diploma-registry/internal/app/models"
	"github.com/yigit/diploma-registry/internal/catalog"
)

// diplomaAliases maps every accepted body key to its canonical field.
// The canonical key comes first, so it wins when both are sent.
var diplomaAliases = []struct {
	canonical string
	keys      []string
}{
	{"studentName", []string{"studentName", "student_name"}},
	{"specialty", []string{"specialty", "specialty_key"}},
	{"year", []string{"year", "year_value"}},
	{"diplomaNumber", []string{"diplomaNumber", "diploma_number"}},
	{"isVerified", []string{"isVerified", "is_verified"}},
}

// DiplomaInput is a diploma body after alias resolution. A nil field was not sent.
type DiplomaInput struct {
	StudentName   *string
	Specialty     *string
	Year          *string
	DiplomaNumber *string
	IsVerified    *string
}

// NormalizeDiplomaFields resolves camelCase and snake_case aliases in raw
// into one DiplomaInput. Null values count as absent.
func NormalizeDiplomaFields(raw map[string]any) DiplomaInput {
	resolved := make(map[string]*string, len(diplomaAliases))
	for _, alias := range diplomaAliases {
		for _, key := range alias.keys {
			v, ok := raw[key]
			if !ok || v == nil {
				continue
			}
			s := stringify(v)
			resolved[alias.canonical] = &s
			break
		}
	}
	return DiplomaInput{
		StudentName:   resolved["studentName"],
		Specialty:     resolved["specialty"],
		Year:          resolved["year"],
		DiplomaNumber: resolved["diplomaNumber"],
		IsVerified:    resolved["isVerified"],
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		if len(t) == 0 {
			return ""
		}
		return t[0]
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// ParseTruthy reports whether s is one of the accepted "true" spellings.
func ParseTruthy(s string) bool {
	s = strings.TrimSpace(s)
	return s == "true" || s == "1"
}

// DiplomaListResponse is one page of diplomas
type DiplomaListResponse struct {
	Rows  []models.Diploma `json:"rows"`
	Total int64            `json:"total" example:"42"`
	Page  int              `json:"page" example:"1"`
	Limit int              `json:"limit" example:"20"`
}

// DiplomaListQuery is the raw listing query string
type DiplomaListQuery struct {
	Q          string
	Year       string
	IsVerified *string
	Scope      string
	Specialty  string
	Faculty    string
	Sort       string
	Dir        string
	Page       int
	Limit      int
}

// FacultyOption is a faculty key with its display name
type FacultyOption struct {
	Key  string `json:"key" example:"economics"`
	Name string `json:"name" example:"Faculty of Economics"`
}

// FiltersResponse is the filter vocabulary for client UIs
type FiltersResponse struct {
	Faculties                    []string                       `json:"faculties"`
	Specialties                  []string                       `json:"specialties"`
	FacultiesOptions             []FacultyOption                `json:"facultiesOptions"`
	SpecialtiesByFacultyName     map[string][]string            `json:"specialtiesByFacultyName"`
	SpecialtiesByFacultyKey      map[string][]string            `json:"specialtiesByFacultyKey"`
	SpecialtyOptionsByFacultyKey map[string][]catalog.Specialty `json:"specialtyOptionsByFacultyKey"`
	Scopes                       []models.VerificationScope     `json:"scopes"`
	Sorts                        []models.SortField             `json:"sorts"`
	Dirs                         []models.SortDir               `json:"dirs"`
}

// SpecialtyCount is a specialty with its verified diploma count
type SpecialtyCount struct {
	Key   string `json:"key" example:"051"`
	Name  string `json:"name" example:"Economics"`
	Label string `json:"label" example:"Economics"`
	Count int64  `json:"count" example:"3"`
}

// FacultyCount groups verified counts under a faculty
type FacultyCount struct {
	Faculty     string           `json:"faculty" example:"economics"`
	Title       string           `json:"title" example:"Faculty of Economics"`
	Name        string           `json:"name" example:"Faculty of Economics"`
	Specialties []SpecialtyCount `json:"specialties"`
	Count       int64            `json:"count" example:"3"`
}

// FacultyOverviewResponse is the browse-by-faculty view
type FacultyOverviewResponse struct {
	Faculties []FacultyCount `json:"faculties"`
}
