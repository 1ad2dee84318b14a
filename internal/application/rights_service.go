package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-sports/service-booking/internal/domain/booking"
	"github.com/campus-sports/service-booking/internal/domain/schedule"
	"github.com/campus-sports/service-booking/internal/domain/user"
	"github.com/campus-sports/service-booking/internal/settings"
)

// RightsStatusDTO is the API response DTO for a user's daily-rights status.
type RightsStatusDTO struct {
	Date               string `json:"date"`
	BaseRights         int    `json:"baseRights"`
	ExtraRights        int    `json:"extraRights"`
	EffectiveRights    int    `json:"effectiveRights"`
	ConsumedRights     int    `json:"consumedRights"`
	ActiveInvolvements int    `json:"activeInvolvements"`
	RemainingRights    int    `json:"remainingRights"`
	SecondsUntilReset  int64  `json:"secondsUntilReset"`
}

// RightsService answers quota questions for the booking core: how many rights
// a user has on an operational day, how many are used, and how many remain.
// Usage is the sum of two measures: live involvements in active bookings and
// the consumed-rights ledger, which survives cancellations.
type RightsService struct {
	bookings booking.Repository
	users    user.Repository
	policy   *settings.Store
	logger   *zap.Logger
	now      func() time.Time
}

// NewRightsService creates a new RightsService.
func NewRightsService(
	bookings booking.Repository,
	users user.Repository,
	policy *settings.Store,
	logger *zap.Logger,
) *RightsService {
	return &RightsService{
		bookings: bookings,
		users:    users,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

// CountActiveInvolvements counts the bookings on the given date in which the
// user appears as owner or participant with an active status. Each booking
// counts once no matter how the user appears in it.
func (s *RightsService) CountActiveInvolvements(ctx context.Context, userID uuid.UUID, date string) (int, error) {
	owned, err := s.bookings.ListByOwner(ctx, userID)
	if err != nil {
		return 0, err
	}
	joined, err := s.bookings.ListByParticipant(ctx, userID)
	if err != nil {
		return 0, err
	}

	seen := make(map[uuid.UUID]struct{})
	count := 0
	for _, b := range append(owned, joined...) {
		if b.Date() != date {
			continue
		}
		if !isActiveStatus(b.Status()) {
			continue
		}
		if _, dup := seen[b.ID()]; dup {
			continue
		}
		seen[b.ID()] = struct{}{}
		count++
	}
	return count, nil
}

// UsedRights returns the effective usage for a user on a date: active
// involvements plus the consumed-rights ledger. A cancelled booking keeps
// its consumed right while the slot it held is free again, so both measures
// count toward the quota.
func (s *RightsService) UsedRights(ctx context.Context, u *user.User, date string) (int, error) {
	involvements, err := s.CountActiveInvolvements(ctx, u.ID(), date)
	if err != nil {
		return 0, err
	}
	return involvements + u.ConsumedRightsOn(date), nil
}

// RemainingRights returns how many bookings the user may still join on a date.
func (s *RightsService) RemainingRights(ctx context.Context, u *user.User, date string) (int, error) {
	base := s.policy.GetInt(ctx, settings.KeyDailyRightsPerUser, settings.DefaultDailyRightsPerUser)
	used, err := s.UsedRights(ctx, u, date)
	if err != nil {
		return 0, err
	}
	remaining := u.EffectiveDailyRights(base) - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Status assembles the full rights snapshot for the current operational day.
func (s *RightsService) Status(ctx context.Context, userID uuid.UUID) (*RightsStatusDTO, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	boundary := s.policy.GetInt(ctx, settings.KeyResetBoundaryHour, settings.DefaultResetBoundaryHour)
	date := schedule.OperationalDate(now, boundary)
	base := s.policy.GetInt(ctx, settings.KeyDailyRightsPerUser, settings.DefaultDailyRightsPerUser)

	involvements, err := s.CountActiveInvolvements(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	consumed := u.ConsumedRightsOn(date)
	used := involvements + consumed
	effective := u.EffectiveDailyRights(base)
	remaining := effective - used
	if remaining < 0 {
		remaining = 0
	}

	extra := u.ExtraDailyRights()
	if extra < 0 {
		extra = 0
	}
	return &RightsStatusDTO{
		Date:               date,
		BaseRights:         maxInt(0, base),
		ExtraRights:        extra,
		EffectiveRights:    effective,
		ConsumedRights:     consumed,
		ActiveInvolvements: involvements,
		RemainingRights:    remaining,
		SecondsUntilReset:  int64(schedule.NextResetBoundary(now, boundary).Sub(now).Seconds()),
	}, nil
}

func isActiveStatus(status booking.Status) bool {
	for _, s := range booking.ActiveStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
