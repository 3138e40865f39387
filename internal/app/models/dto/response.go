package dto

import "github.com/yigit/diploma-registry/internal/catalog"

// OKResponse acknowledges an operation without a body of its own
type OKResponse struct {
	OK bool `json:"ok" example:"true"`
}

// HealthResponse reports liveness and database reachability
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"up"`
}

// CatalogFaculty is one entry of the flat catalog listing
type CatalogFaculty struct {
	Key         string              `json:"key" example:"economics"`
	Name        string              `json:"name" example:"Faculty of Economics"`
	Specialties []catalog.Specialty `json:"specialties"`
}
