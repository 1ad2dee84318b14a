package court

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// defaultRequiredPlayers maps a court category to the default group size when
// the court record does not specify one.
var defaultRequiredPlayers = map[string]int{
	"badminton":    2,
	"tennis":       2,
	"futsal":       10,
	"football":     22,
	"basketball":   10,
	"volleyball":   10,
	"multipurpose": 10,
}

// Court is a bookable facility.
type Court struct {
	id              uuid.UUID
	name            string
	category        string
	requiredPlayers int
	isActive        bool
	createdAt       time.Time
	updatedAt       time.Time
}

// NewCourt creates a court. requiredPlayers may be zero to fall back to the
// category default.
func NewCourt(name, category string, requiredPlayers int) *Court {
	now := time.Now().UTC()
	return &Court{
		id:              uuid.New(),
		name:            name,
		category:        category,
		requiredPlayers: requiredPlayers,
		isActive:        true,
		createdAt:       now,
		updatedAt:       now,
	}
}

func (c *Court) ID() uuid.UUID        { return c.id }
func (c *Court) Name() string         { return c.name }
func (c *Court) Category() string     { return c.category }
func (c *Court) IsActive() bool       { return c.isActive }
func (c *Court) CreatedAt() time.Time { return c.createdAt }
func (c *Court) UpdatedAt() time.Time { return c.updatedAt }

// RequiredPlayers returns the court's configured group size, falling back to
// the category default, then to 2.
func (c *Court) RequiredPlayers() int {
	if c.requiredPlayers > 0 {
		return c.requiredPlayers
	}
	if n, ok := defaultRequiredPlayers[c.category]; ok {
		return n
	}
	return 2
}

// Reconstitute rebuilds a Court from persisted data.
func Reconstitute(id uuid.UUID, name, category string, requiredPlayers int, isActive bool, createdAt, updatedAt time.Time) *Court {
	return &Court{
		id:              id,
		name:            name,
		category:        category,
		requiredPlayers: requiredPlayers,
		isActive:        isActive,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// Repository defines the persistence contract for courts.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Court, error)
	ListActive(ctx context.Context) ([]*Court, error)
	Save(ctx context.Context, c *Court) error
}
