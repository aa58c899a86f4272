// Package store defines the persistence interfaces the service and API
// layers depend on. Implementations live under internal/platform.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/roster-api/internal/domain"
)

// UserCursor identifies a position in the stable user ordering
// (created_at ascending, id ascending as tie-breaker). A List call with a
// cursor returns only users strictly after that position.
type UserCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// ListUsersParams controls pagination of user listings. When After is set
// keyset pagination is used and Offset is ignored. Limit must be positive;
// unbounded listings are not supported.
type ListUsersParams struct {
	Offset int
	Limit  int
	After  *UserCursor
}

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The user must already carry a
	// hashed password; plaintext credentials are never persisted.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns a page of users in stable order (created_at, id
	// ascending). Returns at most params.Limit users.
	List(ctx context.Context, params ListUsersParams) ([]*domain.User, error)

	// Update modifies an existing user's details. The caller must provide a
	// complete user object including HashedPassword.
	// Returns ErrUserNotFound if the user does not exist and ErrEmailExists
	// if updating to an email that is already taken.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their ID.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new UserStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) UserStore
}
