package penalty

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is a penalty ledger entry. At most one record may exist per
// (bookingID, userID) pair; creation is guarded by an existence query.
type Record struct {
	id            uuid.UUID
	userID        uuid.UUID
	bookingID     uuid.UUID
	penaltyPoints int
	reason        string
	courtName     string
	bookingDate   string
	timeSlots     []string
	bookingKind   string
	createdAt     time.Time
}

// NewRecord creates a penalty ledger entry.
func NewRecord(userID, bookingID uuid.UUID, penaltyPoints int, reason, courtName, bookingDate string, timeSlots []string, bookingKind string) *Record {
	return &Record{
		id:            uuid.New(),
		userID:        userID,
		bookingID:     bookingID,
		penaltyPoints: penaltyPoints,
		reason:        reason,
		courtName:     courtName,
		bookingDate:   bookingDate,
		timeSlots:     timeSlots,
		bookingKind:   bookingKind,
		createdAt:     time.Now().UTC(),
	}
}

func (r *Record) ID() uuid.UUID        { return r.id }
func (r *Record) UserID() uuid.UUID    { return r.userID }
func (r *Record) BookingID() uuid.UUID { return r.bookingID }
func (r *Record) PenaltyPoints() int   { return r.penaltyPoints }
func (r *Record) Reason() string       { return r.reason }
func (r *Record) CourtName() string    { return r.courtName }
func (r *Record) BookingDate() string  { return r.bookingDate }
func (r *Record) TimeSlots() []string  { return r.timeSlots }
func (r *Record) BookingKind() string  { return r.bookingKind }
func (r *Record) CreatedAt() time.Time { return r.createdAt }

// Reconstitute rebuilds a Record from persisted data.
func Reconstitute(id, userID, bookingID uuid.UUID, penaltyPoints int, reason, courtName, bookingDate string, timeSlots []string, bookingKind string, createdAt time.Time) *Record {
	return &Record{
		id:            id,
		userID:        userID,
		bookingID:     bookingID,
		penaltyPoints: penaltyPoints,
		reason:        reason,
		courtName:     courtName,
		bookingDate:   bookingDate,
		timeSlots:     timeSlots,
		bookingKind:   bookingKind,
		createdAt:     createdAt,
	}
}

// Repository defines the persistence contract for penalty records.
type Repository interface {
	// ExistsForBookingAndUser is the idempotency query guarding record creation.
	ExistsForBookingAndUser(ctx context.Context, bookingID, userID uuid.UUID) (bool, error)

	// Save persists a new penalty record.
	Save(ctx context.Context, r *Record) error

	// ListByUser retrieves all penalty records for a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Record, error)
}
