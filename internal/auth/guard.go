package auth

import (
	"errors"

	"huduku-gateway/internal/model"
)

// ErrUnauthorized means the principal may not mutate the resource.
var ErrUnauthorized = errors.New("auth: unauthorized")

// AuthorizeMutation allows a mutation when the principal owns the resource
// or is staff. Callers must have fetched the resource first to learn its
// owner: the sequence is always fetch, authorize, act.
func AuthorizeMutation(principal *model.Principal, ownerUserID int64) error {
	if principal == nil {
		return ErrUnauthorized
	}
	if principal.UserID == ownerUserID || principal.IsStaff {
		return nil
	}
	return ErrUnauthorized
}
