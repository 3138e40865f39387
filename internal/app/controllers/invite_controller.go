package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/diploma-registry/internal/app/models/dto"
	"github.com/yigit/diploma-registry/internal/app/services"
	"github.com/yigit/diploma-registry/internal/middleware"
)

// InviteController handles admin invite endpoints
type InviteController struct {
	inviteService services.InviteService
}

// NewInviteController creates a new InviteController
func NewInviteController(inviteService services.InviteService) *InviteController {
	return &InviteController{inviteService: inviteService}
}

// ListInvites handles GET /invites
// @Summary List invites
// @Description All invites, newest first
// @Tags invites
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Invite
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /invites [get]
func (ic *InviteController) ListInvites(ctx *gin.Context) {
	invites, err := ic.inviteService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, invites)
}

// CreateInvite handles POST /invites
// @Summary Issue an invite
// @Description A positive number of minutes sets an expiry; otherwise the invite never expires
// @Tags invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateInviteRequest false "Optional lifetime"
// @Success 201 {object} models.Invite
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Generated code collided"
// @Router /invites [post]
func (ic *InviteController) CreateInvite(ctx *gin.Context) {
	var req dto.CreateInviteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.HandleValidationError(err))
		return
	}

	invite, err := ic.inviteService.Create(ctx.Request.Context(), req.TTLMinutes())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, invite)
}

// DeleteInvite handles DELETE /invites/:key
// @Summary Delete an invite
// @Tags invites
// @Security BearerAuth
// @Param key path string true "Invite id or code"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse "Invite not found"
// @Router /invites/{key} [delete]
func (ic *InviteController) DeleteInvite(ctx *gin.Context) {
	if err := ic.inviteService.Delete(ctx.Request.Context(), ctx.Param("key")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// RevokeInvite handles POST /invites/:key/revoke
// @Summary Revoke an invite
// @Description Keeps the invite for the audit trail but makes it unusable
// @Tags invites
// @Produce json
// @Security BearerAuth
// @Param key path string true "Invite id or code"
// @Success 200 {object} models.Invite
// @Failure 404 {object} dto.ErrorResponse "Invite not found"
// @Router /invites/{key}/revoke [post]
func (ic *InviteController) RevokeInvite(ctx *gin.Context) {
	invite, err := ic.inviteService.Revoke(ctx.Request.Context(), ctx.Param("key"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, invite)
}
