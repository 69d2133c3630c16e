package auth

import (
	"github.com/veridianlabs/governport-backend/internal/users"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	"github.com/google/uuid"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OrgSummary describes the organization metadata returned after login.
type OrgSummary struct {
	ID   uuid.UUID  `json:"id"`
	Name string     `json:"name"`
	Plan enums.Plan `json:"plan"`
}

// LoginResponse contains the tokens, user, and organization list produced by a successful login.
type LoginResponse struct {
	AccessToken   string         `json:"access_token"`
	RefreshToken  string         `json:"refresh_token"`
	Organizations []OrgSummary   `json:"organizations"`
	User          *users.UserDTO `json:"user"`
}

// AdminLoginResponse mirrors LoginResponse while exposing the admin user.
type AdminLoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}
