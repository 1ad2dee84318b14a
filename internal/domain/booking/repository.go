package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for Booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// Save persists a new booking. For bookings in a blocking status the slot
	// holds for (court, date, slot) are inserted in the same transaction; a
	// conflict error is returned if any hold already exists.
	Save(ctx context.Context, b *Booking) error

	// Update persists changes to an existing booking. When the booking has
	// left the blocking statuses its slot holds are released in the same
	// transaction.
	Update(ctx context.Context, b *Booking) error

	// ClaimNoShow atomically applies the no-show auto-cancellation if the
	// booking is still pending/confirmed and not yet processed. Returns false
	// when another sweep already claimed it.
	ClaimNoShow(ctx context.Context, id uuid.UUID, reason string) (bool, error)

	// ClaimPointsAward atomically flips the bonus-award idempotency flag.
	// Returns false when the award was already claimed.
	ClaimPointsAward(ctx context.Context, id uuid.UUID) (bool, error)

	// ListByCourt retrieves all bookings for a court, any date or status.
	ListByCourt(ctx context.Context, courtID uuid.UUID) ([]*Booking, error)

	// ListByOwner retrieves all bookings owned by the user.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Booking, error)

	// ListByParticipant retrieves all bookings that list the user as participant.
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*Booking, error)

	// ListByStatuses retrieves all bookings in any of the given statuses.
	ListByStatuses(ctx context.Context, statuses []Status) ([]*Booking, error)

	// ListByDate retrieves all bookings whose canonical date matches.
	ListByDate(ctx context.Context, date string) ([]*Booking, error)

	// CancelBatch persists the cancellation of several bookings in one
	// transaction; either all succeed or none do.
	CancelBatch(ctx context.Context, bookings []*Booking) error
}
