package port

import "context"

// UserRef is the slice of user data the messaging core is allowed to see.
// Users are owned by the identity service; this core only references them.
type UserRef struct {
	ID          string
	DisplayName string
	AvatarURL   *string
}

// UserDirectory resolves user references against the identity collaborator.
type UserDirectory interface {
	// Exists reports whether the user id resolves to a known user.
	Exists(ctx context.Context, userID string) (bool, error)

	// GetByIDs resolves display data for the given ids. Unknown ids are
	// silently absent from the result.
	GetByIDs(ctx context.Context, userIDs []string) (map[string]UserRef, error)
}
