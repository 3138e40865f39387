package dto

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrorCode represents standardized error codes
type ErrorCode string

// Standard error codes for the application
const (
	// Authentication errors
	ErrorCodeInvalidCredentials ErrorCode = "AUTH_001"
	ErrorCodeInvalidToken       ErrorCode = "AUTH_005"
	ErrorCodeExpiredToken       ErrorCode = "AUTH_006"
	ErrorCodeUnauthorized       ErrorCode = "AUTH_008"
	ErrorCodeForbidden          ErrorCode = "AUTH_009"
	ErrorCodeInviteRequired     ErrorCode = "AUTH_010"
	ErrorCodeInviteInvalid      ErrorCode = "AUTH_011"

	// Resource errors
	ErrorCodeResourceNotFound      ErrorCode = "RES_001"
	ErrorCodeResourceAlreadyExists ErrorCode = "RES_002"
	ErrorCodeConflict              ErrorCode = "RES_004"

	// Validation errors
	ErrorCodeValidationFailed ErrorCode = "VAL_001"
	ErrorCodeMissingFields    ErrorCode = "VAL_002"
	ErrorCodeUnknownSpecialty ErrorCode = "VAL_003"
	ErrorCodeInvalidID        ErrorCode = "VAL_004"

	// Upload errors
	ErrorCodeInvalidFileType ErrorCode = "FILE_001"
	ErrorCodeFileTooLarge    ErrorCode = "FILE_002"
	ErrorCodeFileRequired    ErrorCode = "FILE_003"

	// Server errors
	ErrorCodeInternalServer ErrorCode = "SRV_001"
	ErrorCodeRateLimited    ErrorCode = "SRV_004"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Status    string            `json:"status" example:"error"`
	Message   string            `json:"message" example:"Diploma with this number already exists for this year"`
	Code      ErrorCode         `json:"code" example:"RES_004"`
	Errors    map[string]string `json:"errors,omitempty"`
	Timestamp time.Time         `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewErrorResponse creates a standard error response
func NewErrorResponse(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{
		Status:    "error",
		Message:   message,
		Code:      code,
		Timestamp: time.Now(),
	}
}

// WithErrors attaches per-field messages; an empty map is dropped.
func (r *ErrorResponse) WithErrors(fields map[string]string) *ErrorResponse {
	if len(fields) > 0 {
		r.Errors = fields
	}
	return r
}

// WithError attaches a single per-field message
func (r *ErrorResponse) WithError(field, message string) *ErrorResponse {
	if r.Errors == nil {
		r.Errors = make(map[string]string)
	}
	r.Errors[field] = message
	return r
}

// HandleValidationError turns a binding error into a 400 body, listing
// validator failures per field.
func HandleValidationError(err error) *ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewErrorResponse(ErrorCodeValidationFailed, "Invalid request format")
	}

	resp := NewErrorResponse(ErrorCodeValidationFailed, "Validation failed")
	for _, fe := range verrs {
		resp.WithError(jsonFieldName(fe.Field()), formatValidationError(fe))
	}
	return resp
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	field := jsonFieldName(e.Field())
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + e.Param()
	case "max":
		return field + " must be at most " + e.Param()
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + e.Param()
	default:
		return field + " validation failed: " + e.Tag()
	}
}

func jsonFieldName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}
