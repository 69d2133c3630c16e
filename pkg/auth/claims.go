package auth

import (
	"github.com/veridianlabs/governport-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	ActiveOrgID *uuid.UUID
	Role        enums.MemberRole
	Plan        *enums.Plan
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID      uuid.UUID        `json:"user_id"`
	ActiveOrgID *uuid.UUID       `json:"active_org_id,omitempty"`
	Role        enums.MemberRole `json:"role"`
	Plan        *enums.Plan      `json:"plan,omitempty"`
	jwt.RegisteredClaims
}
