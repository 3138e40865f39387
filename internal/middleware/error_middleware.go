package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/diploma-registry/internal/app/models/dto"
	"github.com/yigit/diploma-registry/internal/pkg/apperrors"
	"github.com/yigit/diploma-registry/internal/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order; the first match wins.
var errorMappings = []errorMapping{
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token has expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "User already exists"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
	{apperrors.ErrInviteRequired, http.StatusBadRequest, dto.ErrorCodeInviteRequired, "Invite code is required"},
	{apperrors.ErrInviteInvalid, http.StatusBadRequest, dto.ErrorCodeInviteInvalid, "Invalid or expired invite code"},
	{apperrors.ErrMissingFields, http.StatusBadRequest, dto.ErrorCodeMissingFields, "Missing fields"},
	{apperrors.ErrInvalidID, http.StatusBadRequest, dto.ErrorCodeInvalidID, "Invalid id"},
	{apperrors.ErrUnknownSpecialty, http.StatusBadRequest, dto.ErrorCodeUnknownSpecialty, "Unknown specialty (not in catalog)"},
	{apperrors.ErrInvalidFileType, http.StatusBadRequest, dto.ErrorCodeInvalidFileType, "Only PDF, JPG or PNG files are allowed"},
	{apperrors.ErrFileTooLarge, http.StatusBadRequest, dto.ErrorCodeFileTooLarge, "File is too large"},
	{apperrors.ErrFileRequired, http.StatusBadRequest, dto.ErrorCodeFileRequired, "File is required"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			dto.NewErrorResponse(dto.ErrorCodeFileTooLarge, "Request body is too large").
				WithError("file", "too large"))
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			resp := dto.NewErrorResponse(m.code, apperrors.MessageOf(err, m.message)).
				WithErrors(apperrors.FieldsOf(err))
			c.AbortWithStatusJSON(m.status, resp)
			return
		}
	}

	logger.Ctx(c.Request.Context()).Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("Unhandled error")
	c.AbortWithStatusJSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrorCodeInternalServer, "Internal server error"))
}
