// Package watcher runs the background expiry sweep that turns unverified
// bookings into no-shows once their check-in window has passed.
package watcher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campus-sports/service-booking/internal/application"
	bookingDomain "github.com/campus-sports/service-booking/internal/domain/booking"
	"github.com/campus-sports/service-booking/internal/domain/schedule"
	"github.com/campus-sports/service-booking/internal/events"
	"github.com/campus-sports/service-booking/internal/settings"
)

// SweepInterval is how often the expiry sweep runs.
const SweepInterval = time.Minute

// SweepResult summarizes one pass of the expiry sweep.
type SweepResult struct {
	Scanned   int `json:"scanned"`
	Expired   int `json:"expired"`
	Skipped   int `json:"skipped"`
	Protected int `json:"protected"`
}

// ExpiryWatcher periodically scans pending and confirmed bookings and
// auto-cancels those whose check-in grace window has elapsed, applying the
// no-show penalty to the whole group.
type ExpiryWatcher struct {
	bookings  bookingDomain.Repository
	penalties *application.PenaltyService
	policy    *settings.Store
	notifier  application.Notifier
	logger    *zap.Logger
	now       func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewExpiryWatcher creates a new ExpiryWatcher.
func NewExpiryWatcher(
	bookings bookingDomain.Repository,
	penalties *application.PenaltyService,
	policy *settings.Store,
	notifier application.Notifier,
	logger *zap.Logger,
) *ExpiryWatcher {
	return &ExpiryWatcher{
		bookings:  bookings,
		penalties: penalties,
		policy:    policy,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the sweep loop in a goroutine. Call Stop to terminate it.
func (w *ExpiryWatcher) Start(ctx context.Context) {
	go func() {
		defer close(w.doneCh)
		ticker := time.NewTicker(SweepInterval)
		defer ticker.Stop()
		w.logger.Info("expiry watcher started", zap.Duration("interval", SweepInterval))
		for {
			select {
			case <-ticker.C:
				if _, err := w.RunSweep(ctx); err != nil {
					w.logger.Error("expiry sweep failed", zap.Error(err))
				}
			case <-w.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for the current pass to finish.
func (w *ExpiryWatcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info("expiry watcher stopped")
}

// RunSweep performs one expiry pass. It is safe to call concurrently with the
// background loop: the per-booking claim makes processing idempotent.
func (w *ExpiryWatcher) RunSweep(ctx context.Context) (*SweepResult, error) {
	candidates, err := w.bookings.ListByStatuses(ctx, []bookingDomain.Status{
		bookingDomain.StatusPending,
		bookingDomain.StatusConfirmed,
	})
	if err != nil {
		return nil, err
	}

	now := w.now().UTC()
	grace := w.policy.GetInt(ctx, settings.KeyCheckinGraceMinutes, settings.DefaultCheckinGraceMinutes)
	result := &SweepResult{Scanned: len(candidates)}

	for _, b := range candidates {
		switch {
		case b.Privileged():
			result.Skipped++
		case b.Kind() == bookingDomain.KindActivity:
			result.Skipped++
		case b.UnderStartupProtection(now):
			result.Protected++
		case w.isVerified(ctx, b):
			result.Skipped++
		case !w.graceElapsed(b, now, grace):
			result.Skipped++
		default:
			if err := w.expire(ctx, b, grace); err != nil {
				w.logger.Error("failed to expire booking",
					zap.String("booking_id", b.ID().String()),
					zap.Error(err),
				)
				continue
			}
			result.Expired++
		}
	}

	if result.Expired > 0 {
		w.logger.Info("expiry sweep completed",
			zap.Int("scanned", result.Scanned),
			zap.Int("expired", result.Expired),
			zap.Int("protected", result.Protected),
		)
	}
	return result, nil
}

// isVerified reports whether the booking satisfies every enabled verification
// requirement. When both requirements are administratively disabled nothing
// can be satisfied, so the booking is not considered verified.
func (w *ExpiryWatcher) isVerified(ctx context.Context, b *bookingDomain.Booking) bool {
	qrRequired := w.policy.GetBool(ctx, settings.KeyRequireQRVerification, true)
	locationRequired := w.policy.GetBool(ctx, settings.KeyRequireLocationVerify, true)
	if !qrRequired && !locationRequired {
		return false
	}
	if qrRequired && !b.IsQRVerified() {
		return false
	}
	if locationRequired && !b.IsLocationVerified() {
		return false
	}
	return true
}

// graceElapsed reports whether the booking's check-in window has passed. Only
// bookings dated today are eligible; past and future dates are left alone.
func (w *ExpiryWatcher) graceElapsed(b *bookingDomain.Booking, now time.Time, graceMinutes int) bool {
	if b.Date() != schedule.FormatDate(now) {
		return false
	}
	start, ok := schedule.EarliestStartMinutes(b.TimeSlots())
	if !ok {
		return false
	}
	return schedule.MinutesOfDay(now) > start+graceMinutes
}

// expire claims and processes one no-show: the booking is auto-cancelled and
// the whole group pays the penalty points plus one right and the configured
// surcharge. Organized activities never reach this path.
func (w *ExpiryWatcher) expire(ctx context.Context, b *bookingDomain.Booking, graceMinutes int) error {
	reason := fmt.Sprintf("no check-in within %d minutes of start", graceMinutes)
	claimed, err := w.bookings.ClaimNoShow(ctx, b.ID(), reason)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	w.logger.Info("booking auto-cancelled",
		zap.String("booking_id", b.ID().String()),
		zap.String("owner_id", b.OwnerID().String()),
		zap.String("date", b.Date()),
	)

	points := w.policy.GetInt(ctx, settings.KeyPenaltyNoCheckinAuto, settings.DefaultPenaltyNoCheckinAuto)
	surcharge := w.policy.GetInt(ctx, settings.KeyNoShowExtraRightsPenalty, settings.DefaultNoShowExtraRightsPenalty)
	if surcharge < 0 {
		surcharge = 0
	}
	w.penalties.ApplyGroupPenalty(ctx, b, points, reason, 1+surcharge)

	w.notifier.Notify(ctx, events.EventTypeBookingAutoCancelled, events.Notification{
		TargetUserID: b.OwnerID(),
		Title:        "Booking cancelled",
		Body:         fmt.Sprintf("Your booking at %s on %s was cancelled: %s", b.CourtName(), b.Date(), reason),
		RelatedID:    b.ID().String(),
	})
	return nil
}

// ProtectPendingAtStartup stamps startup protection on still-valid unverified
// bookings so a deploy in the middle of a check-in window does not mass-expire
// them. A booking is still valid while its latest slot end plus the grace
// period has not passed; anything already beyond that is left to the sweep.
// Runs once at boot.
func (w *ExpiryWatcher) ProtectPendingAtStartup(ctx context.Context) error {
	candidates, err := w.bookings.ListByStatuses(ctx, []bookingDomain.Status{bookingDomain.StatusPending})
	if err != nil {
		return err
	}
	now := w.now().UTC()
	grace := w.policy.GetInt(ctx, settings.KeyCheckinGraceMinutes, settings.DefaultCheckinGraceMinutes)
	protected := 0
	for _, b := range candidates {
		if b.IsLocationVerified() || !w.stillValid(b, now, grace) {
			continue
		}
		b.Protect(now)
		if err := w.bookings.Update(ctx, b); err != nil {
			w.logger.Error("failed to protect booking at startup",
				zap.String("booking_id", b.ID().String()),
				zap.Error(err),
			)
			continue
		}
		protected++
	}
	if protected > 0 {
		w.logger.Info("startup protection applied", zap.Int("bookings", protected))
	}
	return nil
}

// stillValid reports whether the booking's check-in window, including the
// grace period, has not yet fully passed.
func (w *ExpiryWatcher) stillValid(b *bookingDomain.Booking, now time.Time, graceMinutes int) bool {
	today := schedule.FormatDate(now)
	if b.Date() < today {
		return false
	}
	if b.Date() > today {
		return true
	}
	end, ok := schedule.LatestEndMinutes(b.TimeSlots())
	if !ok {
		return false
	}
	return schedule.MinutesOfDay(now) <= end+graceMinutes
}
