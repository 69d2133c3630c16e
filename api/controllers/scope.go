package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/api/middleware"
	"github.com/veridianlabs/governport-backend/api/validators"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
)

// requestScope extracts the authenticated user and active organization from
// the request context. Both are stamped by the auth middleware; an empty
// organization means the token was minted before the user joined one.
func requestScope(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user identity")
	}

	raw := middleware.OrgIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "no active organization on session")
	}

	orgID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid organization identifier")
	}

	return userID, orgID, nil
}

// pathID parses a UUID path parameter, mapping parse failures to a
// validation error so callers get a 400 rather than a raw uuid error.
func pathID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier in path")
	}
	return id, nil
}

// pageParams reads the shared limit/cursor pagination query parameters. A
// zero limit lets the service apply its default page size.
func pageParams(r *http.Request) (int, string, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
	if err != nil {
		return 0, "", err
	}
	return limit, r.URL.Query().Get("cursor"), nil
}
