package dto

import (
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/diploma-registry/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"admin@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// RegisterRequest represents a registration request. InviteCode is needed
// once the first user exists and self-registration is off.
type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email" example:"clerk@example.com"`
	Password   string `json:"password" binding:"required" example:"secret123"`
	InviteCode string `json:"inviteCode" example:"K7Q2ZD"`
}

// Normalize trims input and lower-cases the email
func (r *RegisterRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.InviteCode = strings.ToUpper(strings.TrimSpace(r.InviteCode))
}

// NormalizeEmail is the canonical stored form of an email
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserResponse represents the public view of a user
type UserResponse struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email" example:"admin@example.com"`
	IsAdmin bool      `json:"isAdmin"`
}

// NewUserResponse maps a user model to its public view
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// MeResponse wraps the current user
type MeResponse struct {
	User UserResponse `json:"user"`
}
