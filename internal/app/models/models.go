package models

// VerificationScope narrows a listing by verification status
type VerificationScope string

const (
	ScopeVerified   VerificationScope = "verified"
	ScopeUnverified VerificationScope = "unverified"
	ScopeAll        VerificationScope = "all"
)

// SortField is a whitelisted diploma sort key
type SortField string

const (
	SortCreatedAt     SortField = "createdAt"
	SortYear          SortField = "year"
	SortStudentName   SortField = "studentName"
	SortDiplomaNumber SortField = "diplomaNumber"
)

// SortDir is the sort direction
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Scopes lists every accepted scope in display order.
func Scopes() []VerificationScope {
	return []VerificationScope{ScopeVerified, ScopeUnverified, ScopeAll}
}

// SortFields lists every accepted sort key in display order.
func SortFields() []SortField {
	return []SortField{SortCreatedAt, SortYear, SortStudentName, SortDiplomaNumber}
}

// SortDirs lists both directions.
func SortDirs() []SortDir {
	return []SortDir{SortAsc, SortDesc}
}

// ParseSortField returns the whitelisted key for s, falling back to createdAt.
func ParseSortField(s string) SortField {
	for _, f := range SortFields() {
		if string(f) == s {
			return f
		}
	}
	return SortCreatedAt
}

// ParseSortDir returns asc only when explicitly asked for.
func ParseSortDir(s string) SortDir {
	if s == string(SortAsc) {
		return SortAsc
	}
	return SortDesc
}
