package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-sports/service-booking/internal/domain/booking"
	"github.com/campus-sports/service-booking/internal/domain/penalty"
	"github.com/campus-sports/service-booking/internal/domain/user"
	"github.com/campus-sports/service-booking/internal/events"
)

// Notifier delivers user-facing notifications. Delivery is best-effort and
// must never fail the calling operation.
type Notifier interface {
	Notify(ctx context.Context, eventType string, notification events.Notification)
}

// PenaltyResult reports the outcome of a penalty or bonus application for one
// group member.
type PenaltyResult struct {
	UserID  uuid.UUID `json:"userId"`
	Applied int       `json:"applied"`
	Skipped bool      `json:"skipped"`
	Reason  string    `json:"reason,omitempty"`
}

// PenaltyService applies point penalties and bonuses to every member of a
// booking group. Applications are best-effort per user: one member failing
// never blocks the others, and the ledger guard makes re-runs no-ops.
type PenaltyService struct {
	users     user.Repository
	penalties penalty.Repository
	bookings  booking.Repository
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewPenaltyService creates a new PenaltyService.
func NewPenaltyService(
	users user.Repository,
	penalties penalty.Repository,
	bookings booking.Repository,
	notifier Notifier,
	logger *zap.Logger,
) *PenaltyService {
	return &PenaltyService{
		users:     users,
		penalties: penalties,
		bookings:  bookings,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// ApplyGroupPenalty deducts penalty points from every involved user and, when
// rightsToConsume is positive, burns that many rights on the booking's date.
// A user who already has a ledger entry for this booking is skipped entirely.
func (s *PenaltyService) ApplyGroupPenalty(ctx context.Context, b *booking.Booking, points int, reason string, rightsToConsume int) []PenaltyResult {
	results := make([]PenaltyResult, 0, len(b.Participants())+1)
	for _, userID := range b.InvolvedUserIDs() {
		results = append(results, s.applyPenalty(ctx, b, userID, points, reason, rightsToConsume))
	}
	return results
}

func (s *PenaltyService) applyPenalty(ctx context.Context, b *booking.Booking, userID uuid.UUID, points int, reason string, rightsToConsume int) PenaltyResult {
	exists, err := s.penalties.ExistsForBookingAndUser(ctx, b.ID(), userID)
	if err != nil {
		s.logger.Error("penalty existence check failed",
			zap.String("booking_id", b.ID().String()),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return PenaltyResult{UserID: userID, Skipped: true, Reason: "ledger check failed"}
	}
	if exists {
		return PenaltyResult{UserID: userID, Skipped: true, Reason: "penalty already recorded"}
	}

	var deducted int
	now := s.now().UTC()
	err = s.users.AtomicUpdate(ctx, userID, func(u *user.User) error {
		deducted = u.DeductPoints(points, now)
		if rightsToConsume > 0 {
			u.ConsumeRights(b.Date(), rightsToConsume, now)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("penalty application failed",
			zap.String("booking_id", b.ID().String()),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return PenaltyResult{UserID: userID, Skipped: true, Reason: "user update failed"}
	}

	record := penalty.NewRecord(userID, b.ID(), deducted, reason, b.CourtName(), b.Date(), b.TimeSlots(), string(b.Kind()))
	if err := s.penalties.Save(ctx, record); err != nil {
		// Points already applied; the missing ledger row risks a double
		// deduction on retry, so log loudly.
		s.logger.Error("penalty ledger write failed after point deduction",
			zap.String("booking_id", b.ID().String()),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	s.notifier.Notify(ctx, events.EventTypePenalty, events.Notification{
		TargetUserID: userID,
		Title:        "Penalty applied",
		Body:         fmt.Sprintf("%d points were deducted: %s", deducted, reason),
		RelatedID:    b.ID().String(),
	})

	s.logger.Info("penalty applied",
		zap.String("booking_id", b.ID().String()),
		zap.String("user_id", userID.String()),
		zap.Int("points", deducted),
		zap.String("reason", reason),
	)
	return PenaltyResult{UserID: userID, Applied: deducted}
}

// AwardGroupBonus grants completion bonus points to every involved user. The
// booking-level claim makes the whole award idempotent: a second call for the
// same booking does nothing.
func (s *PenaltyService) AwardGroupBonus(ctx context.Context, b *booking.Booking, points int) ([]PenaltyResult, error) {
	if points <= 0 {
		return nil, nil
	}
	claimed, err := s.bookings.ClaimPointsAward(ctx, b.ID())
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, nil
	}

	now := s.now().UTC()
	results := make([]PenaltyResult, 0, len(b.Participants())+1)
	for _, userID := range b.InvolvedUserIDs() {
		var applied int
		err := s.users.AtomicUpdate(ctx, userID, func(u *user.User) error {
			applied = u.AwardPoints(points, now)
			return nil
		})
		if err != nil {
			s.logger.Error("bonus award failed",
				zap.String("booking_id", b.ID().String()),
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			results = append(results, PenaltyResult{UserID: userID, Skipped: true, Reason: "user update failed"})
			continue
		}
		if applied > 0 {
			s.notifier.Notify(ctx, events.EventTypePointsBonus, events.Notification{
				TargetUserID: userID,
				Title:        "Bonus points earned",
				Body:         fmt.Sprintf("You earned %d points for completing your booking at %s", applied, b.CourtName()),
				RelatedID:    b.ID().String(),
			})
		}
		results = append(results, PenaltyResult{UserID: userID, Applied: applied})
	}
	return results, nil
}

// PenaltyHistoryDTO is the API response DTO for one penalty ledger entry.
type PenaltyHistoryDTO struct {
	ID            uuid.UUID `json:"id"`
	BookingID     uuid.UUID `json:"bookingId"`
	PenaltyPoints int       `json:"penaltyPoints"`
	Reason        string    `json:"reason"`
	CourtName     string    `json:"courtName"`
	BookingDate   string    `json:"bookingDate"`
	TimeSlots     string    `json:"timeSlots"`
	BookingKind   string    `json:"bookingKind"`
	CreatedAt     time.Time `json:"createdAt"`
}

// History returns the user's penalty ledger, newest first.
func (s *PenaltyService) History(ctx context.Context, userID uuid.UUID) ([]PenaltyHistoryDTO, error) {
	records, err := s.penalties.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]PenaltyHistoryDTO, len(records))
	for i, r := range records {
		out[i] = PenaltyHistoryDTO{
			ID:            r.ID(),
			BookingID:     r.BookingID(),
			PenaltyPoints: r.PenaltyPoints(),
			Reason:        r.Reason(),
			CourtName:     r.CourtName(),
			BookingDate:   r.BookingDate(),
			TimeSlots:     strings.Join(r.TimeSlots(), ", "),
			BookingKind:   r.BookingKind(),
			CreatedAt:     r.CreatedAt(),
		}
	}
	return out, nil
}
