package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/campus-sports/service-booking/internal/domain"
)

// Status represents the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCheckedIn Status = "checked-in"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Kind distinguishes regular court bookings from organized activities, which
// are exempt from no-show penalties.
type Kind string

const (
	KindRegular  Kind = "regular"
	KindActivity Kind = "activity"
)

// ActiveStatuses are the statuses that count toward a user's daily quota.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed, StatusCheckedIn, StatusCompleted}

// BlockingStatuses are the statuses that occupy court slots. Completed bookings
// no longer block because their slots are in the past.
var BlockingStatuses = []Status{StatusPending, StatusConfirmed, StatusCheckedIn}

// Participant is a user added to a group booking via their personal code.
type Participant struct {
	UserID   uuid.UUID
	UserName string
	UserCode string
}

// Booking is the aggregate root for a court reservation.
type Booking struct {
	id                 uuid.UUID
	ownerID            uuid.UUID
	ownerName          string
	studentID          string
	courtID            uuid.UUID
	courtName          string
	courtType          string
	date               string // canonical YYYY-MM-DD
	timeSlots          []string
	kind               Kind
	activityType       string
	note               string
	status             Status
	requiredPlayers    int
	participants       []Participant
	isQRVerified       bool
	isLocationVerified bool
	autoCancelled      bool
	noShowProcessed    bool
	pointsAwarded      bool
	privileged         bool
	isLateCancellation bool
	cancellationReason string
	confirmedAt        *time.Time
	checkedInAt        *time.Time
	completedAt        *time.Time
	cancelledAt        *time.Time
	expiredAt          *time.Time
	protectedAt        *time.Time
	createdAt          time.Time
	updatedAt          time.Time
}

// NewBooking creates a booking in pending state, awaiting verification.
func NewBooking(ownerID uuid.UUID, ownerName, studentID string, courtID uuid.UUID, courtName, courtType, date string, timeSlots []string, kind Kind, activityType, note string, requiredPlayers int, participants []Participant) *Booking {
	now := time.Now().UTC()
	return &Booking{
		id:              uuid.New(),
		ownerID:         ownerID,
		ownerName:       ownerName,
		studentID:       studentID,
		courtID:         courtID,
		courtName:       courtName,
		courtType:       courtType,
		date:            date,
		timeSlots:       timeSlots,
		kind:            kind,
		activityType:    activityType,
		note:            note,
		status:          StatusPending,
		requiredPlayers: requiredPlayers,
		participants:    participants,
		createdAt:       now,
		updatedAt:       now,
	}
}

// NewPrivilegedBooking creates a booking directly in checked-in state with both
// verifications satisfied. The privileged path bypasses quota, participant-code
// and verification requirements, and is exempt from the expiry sweep.
func NewPrivilegedBooking(ownerID uuid.UUID, ownerName string, courtID uuid.UUID, courtName, courtType, date string, timeSlots []string, kind Kind, activityType, note string, requiredPlayers int) *Booking {
	b := NewBooking(ownerID, ownerName, "", courtID, courtName, courtType, date, timeSlots, kind, activityType, note, requiredPlayers, nil)
	now := b.createdAt
	b.status = StatusCheckedIn
	b.isQRVerified = true
	b.isLocationVerified = true
	b.privileged = true
	b.confirmedAt = &now
	b.checkedInAt = &now
	return b
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID              { return b.id }
func (b *Booking) OwnerID() uuid.UUID         { return b.ownerID }
func (b *Booking) OwnerName() string          { return b.ownerName }
func (b *Booking) StudentID() string          { return b.studentID }
func (b *Booking) CourtID() uuid.UUID         { return b.courtID }
func (b *Booking) CourtName() string          { return b.courtName }
func (b *Booking) CourtType() string          { return b.courtType }
func (b *Booking) Date() string               { return b.date }
func (b *Booking) TimeSlots() []string        { return b.timeSlots }
func (b *Booking) Kind() Kind                 { return b.kind }
func (b *Booking) ActivityType() string       { return b.activityType }
func (b *Booking) Note() string               { return b.note }
func (b *Booking) Status() Status             { return b.status }
func (b *Booking) RequiredPlayers() int       { return b.requiredPlayers }
func (b *Booking) Participants() []Participant { return b.participants }
func (b *Booking) IsQRVerified() bool         { return b.isQRVerified }
func (b *Booking) IsLocationVerified() bool   { return b.isLocationVerified }
func (b *Booking) AutoCancelled() bool        { return b.autoCancelled }
func (b *Booking) NoShowProcessed() bool      { return b.noShowProcessed }
func (b *Booking) PointsAwarded() bool        { return b.pointsAwarded }
func (b *Booking) Privileged() bool           { return b.privileged }
func (b *Booking) IsLateCancellation() bool   { return b.isLateCancellation }
func (b *Booking) CancellationReason() string { return b.cancellationReason }
func (b *Booking) ConfirmedAt() *time.Time    { return b.confirmedAt }
func (b *Booking) CheckedInAt() *time.Time    { return b.checkedInAt }
func (b *Booking) CompletedAt() *time.Time    { return b.completedAt }
func (b *Booking) CancelledAt() *time.Time    { return b.cancelledAt }
func (b *Booking) ExpiredAt() *time.Time      { return b.expiredAt }
func (b *Booking) ProtectedAt() *time.Time    { return b.protectedAt }
func (b *Booking) CreatedAt() time.Time       { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time       { return b.updatedAt }

// InvolvedUserIDs returns the owner plus all participants.
func (b *Booking) InvolvedUserIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.participants)+1)
	ids = append(ids, b.ownerID)
	for _, p := range b.participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// Involves reports whether the user is the owner or a listed participant.
func (b *Booking) Involves(userID uuid.UUID) bool {
	if b.ownerID == userID {
		return true
	}
	for _, p := range b.participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the booking can no longer transition.
func (b *Booking) IsTerminal() bool {
	switch b.status {
	case StatusCancelled, StatusExpired, StatusCompleted:
		return true
	}
	return false
}

// Blocks reports whether the booking currently occupies its court slots.
func (b *Booking) Blocks() bool {
	switch b.status {
	case StatusPending, StatusConfirmed, StatusCheckedIn:
		return true
	}
	return false
}

// --- State transitions ---

// Confirm moves pending to confirmed. When the QR requirement is
// administratively disabled the QR flag is satisfied automatically.
func (b *Booking) Confirm(now time.Time, qrRequired bool) error {
	if b.status != StatusPending {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	b.status = StatusConfirmed
	b.confirmedAt = &now
	if !qrRequired {
		b.isQRVerified = true
	}
	b.updatedAt = now
	return nil
}

// CheckIn moves pending or confirmed to checked-in. When the location
// requirement is administratively disabled the location flag is satisfied
// automatically.
func (b *Booking) CheckIn(now time.Time, locationRequired bool) error {
	if b.status != StatusPending && b.status != StatusConfirmed {
		return domain.NewInvalidStateError(string(b.status), string(StatusCheckedIn))
	}
	b.status = StatusCheckedIn
	b.checkedInAt = &now
	if !locationRequired {
		b.isLocationVerified = true
	}
	b.updatedAt = now
	return nil
}

// CheckInWithProof is the QR/location verification path: both verification
// flags are recorded as satisfied.
func (b *Booking) CheckInWithProof(now time.Time) error {
	if b.status != StatusPending && b.status != StatusConfirmed {
		return domain.NewStateError("cannot verify a booking in status " + string(b.status))
	}
	b.status = StatusCheckedIn
	b.isQRVerified = true
	b.isLocationVerified = true
	b.checkedInAt = &now
	b.updatedAt = now
	return nil
}

// Complete moves checked-in to completed.
func (b *Booking) Complete(now time.Time) error {
	if b.status != StatusCheckedIn {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	b.status = StatusCompleted
	b.completedAt = &now
	b.updatedAt = now
	return nil
}

// Cancel performs a user-initiated cancellation from pending or confirmed.
// Lateness is assessed by the caller via AssessCancellation.
func (b *Booking) Cancel(now time.Time, reason string, late bool) error {
	if err := b.ensureCancellable(); err != nil {
		return err
	}
	b.status = StatusCancelled
	b.cancelledAt = &now
	b.cancellationReason = reason
	b.isLateCancellation = late
	b.updatedAt = now
	return nil
}

// ensureCancellable rejects cancellation with a status-specific message.
func (b *Booking) ensureCancellable() error {
	switch b.status {
	case StatusPending, StatusConfirmed:
		return nil
	case StatusCancelled:
		return domain.NewStateError("booking is already cancelled")
	case StatusCheckedIn:
		return domain.NewStateError("cannot cancel a booking that has been checked in")
	case StatusCompleted:
		return domain.NewStateError("cannot cancel a completed booking")
	case StatusExpired:
		return domain.NewStateError("cannot cancel an expired booking")
	default:
		return domain.NewStateError("cannot cancel a booking in status " + string(b.status))
	}
}

// MarkNoShow applies the auto-cancellation path used by the expiry sweep.
// Returns false when the booking was already processed; re-processing is a no-op.
func (b *Booking) MarkNoShow(now time.Time, reason string) bool {
	if b.noShowProcessed {
		return false
	}
	if b.status != StatusPending && b.status != StatusConfirmed {
		return false
	}
	b.status = StatusCancelled
	b.autoCancelled = true
	b.noShowProcessed = true
	b.cancellationReason = reason
	b.expiredAt = &now
	b.updatedAt = now
	return true
}

// ClaimPointsAward flips the idempotency flag guarding the bonus award. Returns
// false when the award was already claimed.
func (b *Booking) ClaimPointsAward() bool {
	if b.pointsAwarded {
		return false
	}
	b.pointsAwarded = true
	return true
}

// Protect stamps the startup-protection timestamp that shields a booking from
// penalties right after a deploy.
func (b *Booking) Protect(now time.Time) {
	b.protectedAt = &now
	b.updatedAt = now
}

// UnderStartupProtection reports whether the protection stamp is recent enough
// to shield the booking from the sweep.
func (b *Booking) UnderStartupProtection(now time.Time) bool {
	return b.protectedAt != nil && now.Sub(*b.protectedAt) < 30*time.Minute
}

// Reconstitute rebuilds a Booking from persisted data.
func Reconstitute(
	id, ownerID uuid.UUID,
	ownerName, studentID string,
	courtID uuid.UUID,
	courtName, courtType, date string,
	timeSlots []string,
	kind Kind,
	activityType, note string,
	status Status,
	requiredPlayers int,
	participants []Participant,
	isQRVerified, isLocationVerified, autoCancelled, noShowProcessed, pointsAwarded, privileged, isLateCancellation bool,
	cancellationReason string,
	confirmedAt, checkedInAt, completedAt, cancelledAt, expiredAt, protectedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                 id,
		ownerID:            ownerID,
		ownerName:          ownerName,
		studentID:          studentID,
		courtID:            courtID,
		courtName:          courtName,
		courtType:          courtType,
		date:               date,
		timeSlots:          timeSlots,
		kind:               kind,
		activityType:       activityType,
		note:               note,
		status:             status,
		requiredPlayers:    requiredPlayers,
		participants:       participants,
		isQRVerified:       isQRVerified,
		isLocationVerified: isLocationVerified,
		autoCancelled:      autoCancelled,
		noShowProcessed:    noShowProcessed,
		pointsAwarded:      pointsAwarded,
		privileged:         privileged,
		isLateCancellation: isLateCancellation,
		cancellationReason: cancellationReason,
		confirmedAt:        confirmedAt,
		checkedInAt:        checkedInAt,
		completedAt:        completedAt,
		cancelledAt:        cancelledAt,
		expiredAt:          expiredAt,
		protectedAt:        protectedAt,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}
