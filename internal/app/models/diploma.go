package models

import (
	"time"

	"github.com/google/uuid"
)

// Diploma defines the diploma model based on the 'diplomas' table
type Diploma struct {
	ID            uuid.UUID `json:"id" db:"id"`
	StudentName   string    `json:"studentName" db:"student_name" example:"Ivanenko Olha"`
	Specialty     string    `json:"specialty" db:"specialty" example:"122"`
	Year          int       `json:"year" db:"year" example:"2024"`
	DiplomaNumber string    `json:"diplomaNumber" db:"diploma_number" example:"B24 123456"`
	FileURL       string    `json:"fileUrl" db:"file_url" example:"/uploads/1718000000000_scan.pdf"`
	IsVerified    bool      `json:"isVerified" db:"is_verified"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`

	// Derived from the catalog on read, never stored.
	FacultyKey  *string `json:"facultyKey"`
	FacultyName *string `json:"facultyName"`
}

// DiplomaPatch carries the fields an update touches; nil means untouched.
type DiplomaPatch struct {
	StudentName   *string
	Specialty     *string
	Year          *int
	DiplomaNumber *string
	IsVerified    *bool
	FileURL       *string
}

// IsEmpty reports whether the patch changes nothing.
func (p DiplomaPatch) IsEmpty() bool {
	return p.StudentName == nil && p.Specialty == nil && p.Year == nil &&
		p.DiplomaNumber == nil && p.IsVerified == nil && p.FileURL == nil
}

// DiplomaFilter is a fully resolved listing query.
type DiplomaFilter struct {
	Query      string
	Year       *int
	IsVerified *bool
	// Specialties restricts to the given codes when non-nil; an empty non-nil
	// slice matches nothing.
	Specialties []string
	Sort        SortField
	Dir         SortDir
	Offset      uint64
	Limit       uint64
}
