package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingDomain "github.com/campus-sports/service-booking/internal/domain/booking"
	userDomain "github.com/campus-sports/service-booking/internal/domain/user"
	"github.com/campus-sports/service-booking/internal/settings"
)

// seedBooking inserts a booking directly into the fake repository, bypassing
// the creation pipeline, so rights counting can be tested in isolation.
func (env *testEnv) seedBooking(ownerID uuid.UUID, date, slot string, status bookingDomain.Status, participants ...bookingDomain.Participant) *bookingDomain.Booking {
	b := bookingDomain.NewBooking(
		ownerID, "owner", "",
		uuid.New(), "Court A", "badminton",
		date, []string{slot}, bookingDomain.KindRegular, "", "",
		2, participants,
	)
	if err := env.bookings.Save(context.Background(), b); err != nil {
		panic(err)
	}
	if status != bookingDomain.StatusPending {
		switch status {
		case bookingDomain.StatusCancelled:
			_ = b.Cancel(env.now, "seeded", false)
		case bookingDomain.StatusConfirmed:
			_ = b.Confirm(env.now, true)
		case bookingDomain.StatusCheckedIn:
			_ = b.CheckInWithProof(env.now)
		case bookingDomain.StatusCompleted:
			_ = b.CheckInWithProof(env.now)
			_ = b.Complete(env.now)
		}
		_ = env.bookings.Update(context.Background(), b)
	}
	return b
}

func TestCountActiveInvolvementsDeduplicatesPerBooking(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	u := env.newUser("SMC01", 100)
	other := env.newUser("MLE02", 100)
	member := bookingDomain.Participant{UserID: u.ID(), UserName: "SMC", UserCode: "SMC01"}

	// Owned, joined, and one cancelled booking that no longer counts.
	env.seedBooking(u.ID(), "2026-03-16", "09:00-10:00", bookingDomain.StatusPending)
	env.seedBooking(other.ID(), "2026-03-16", "10:00-11:00", bookingDomain.StatusConfirmed, member)
	env.seedBooking(u.ID(), "2026-03-16", "11:00-12:00", bookingDomain.StatusCancelled)
	// A booking where the user is both owner and listed participant counts once.
	env.seedBooking(u.ID(), "2026-03-16", "12:00-13:00", bookingDomain.StatusPending, member)
	// Another date does not count.
	env.seedBooking(u.ID(), "2026-03-17", "09:00-10:00", bookingDomain.StatusPending)

	count, err := env.rights.CountActiveInvolvements(ctx, u.ID(), "2026-03-16")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCompletedBookingsStillCountTowardQuota(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	u := env.newUser("SMC01", 100)

	env.seedBooking(u.ID(), "2026-03-15", "08:00-09:00", bookingDomain.StatusCompleted)

	count, err := env.rights.CountActiveInvolvements(ctx, u.ID(), "2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUsedRightsSumsLedgerAndInvolvements(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	u := env.newUser("SMC01", 100)

	env.seedBooking(u.ID(), "2026-03-16", "09:00-10:00", bookingDomain.StatusPending)

	// One live involvement, empty ledger.
	used, err := env.rights.UsedRights(ctx, u, "2026-03-16")
	require.NoError(t, err)
	assert.Equal(t, 1, used)

	// Consumed rights from cancelled bookings stack on top of live
	// involvements rather than being absorbed by them.
	require.NoError(t, env.users.AtomicUpdate(ctx, u.ID(), func(user *userDomain.User) error {
		user.ConsumeRights("2026-03-16", 3, env.now)
		return nil
	}))
	used, err = env.rights.UsedRights(ctx, u, "2026-03-16")
	require.NoError(t, err)
	assert.Equal(t, 4, used)
}

func TestRemainingRightsClampsAndHonorsExtra(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	u := env.newUser("SMC01", 100)

	// Default base of 1, nothing used.
	remaining, err := env.rights.RemainingRights(ctx, u, "2026-03-16")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	// Over-consumed ledger clamps at zero instead of going negative.
	require.NoError(t, env.users.AtomicUpdate(ctx, u.ID(), func(user *userDomain.User) error {
		user.ConsumeRights("2026-03-16", 5, env.now)
		return nil
	}))
	remaining, err = env.rights.RemainingRights(ctx, u, "2026-03-16")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	// An admin extra-rights grant raises the ceiling.
	require.NoError(t, env.users.AtomicUpdate(ctx, u.ID(), func(user *userDomain.User) error {
		user.SetExtraDailyRights(6, env.now)
		return nil
	}))
	remaining, err = env.rights.RemainingRights(ctx, u, "2026-03-16")
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}

func TestRightsStatusSnapshot(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	u := env.newUser("SMC01", 100)

	env.readerMap[settings.KeyDailyRightsPerUser] = "2"
	env.seedBooking(u.ID(), "2026-03-15", "09:00-10:00", bookingDomain.StatusPending)

	status, err := env.rights.Status(ctx, u.ID())
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", status.Date)
	assert.Equal(t, 2, status.BaseRights)
	assert.Equal(t, 0, status.ExtraRights)
	assert.Equal(t, 2, status.EffectiveRights)
	assert.Equal(t, 0, status.ConsumedRights)
	assert.Equal(t, 1, status.ActiveInvolvements)
	assert.Equal(t, 1, status.RemainingRights)
	// 16 hours until the next midnight boundary from the fixed 08:00 clock.
	assert.Equal(t, int64(16*3600), status.SecondsUntilReset)
}
