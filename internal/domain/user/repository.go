package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for User aggregates.
type Repository interface {
	// FindByID retrieves a user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByCode retrieves a user by their personal booking code.
	FindByCode(ctx context.Context, code string) (*User, error)

	// Save persists a new user aggregate.
	Save(ctx context.Context, u *User) error

	// Update persists changes to an existing user aggregate.
	Update(ctx context.Context, u *User) error

	// AtomicUpdate loads the user under a row lock, applies fn and persists
	// the result in a single transaction. Point-balance and rights-ledger
	// mutations must go through here.
	AtomicUpdate(ctx context.Context, id uuid.UUID, fn func(*User) error) error
}
