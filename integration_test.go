//go:build integration

package main_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-sports/service-booking/internal/application"
	"github.com/campus-sports/service-booking/internal/domain"
	bookingDomain "github.com/campus-sports/service-booking/internal/domain/booking"
	"github.com/campus-sports/service-booking/internal/events"
	"github.com/campus-sports/service-booking/internal/repository"
	"github.com/campus-sports/service-booking/internal/settings"
)

// TestCreateBooking_PersistsSlotHoldsAndNotifiesParticipant verifies the full
// creation pipeline against real Postgres and Kafka: the booking row and its
// slot holds land in one transaction and the participant gets a notification
// event.
func TestCreateBooking_PersistsSlotHoldsAndNotifiesParticipant(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ownerID := seedUser(t, infra.DB, "ITSMC01", 100)
	participantID := seedUser(t, infra.DB, "ITMLE02", 100)
	courtID := seedCourt(t, infra.DB, "Court A", "badminton", 2)

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	result, err := stack.Bookings.Create(context.Background(), ownerID, application.CreateBookingRequest{
		CourtID:          courtID,
		Date:             tomorrow,
		TimeSlots:        []string{"09:00-10:00", "10:00-11:00"},
		ParticipantCodes: []string{"ITMLE02"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", result.Booking.Status)

	// Both slots are held in the database.
	var holds int64
	infra.DB.Model(&repository.SlotOccupancyModel{}).
		Where("booking_id = ?", result.Booking.ID).
		Count(&holds)
	assert.Equal(t, int64(2), holds)

	// The participant was notified that their code was used.
	ce := consumeOneEvent(t, infra.KafkaBrokers, notificationTopic, events.EventTypeCodeUsed, 15*time.Second)
	var notification events.Notification
	require.NoError(t, ce.ParseData(&notification))
	assert.Equal(t, participantID, notification.TargetUserID)
	assert.Equal(t, result.Booking.ID.String(), notification.RelatedID)
}

// TestSlotHold_BlocksRacingInsert verifies the database-level backstop: a save
// that bypasses the advisory conflict check still fails on the unique slot
// index and surfaces as a conflict error.
func TestSlotHold_BlocksRacingInsert(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ownerID := seedUser(t, infra.DB, "ITSMC03", 100)
	racerID := seedUser(t, infra.DB, "ITMLE04", 100)
	courtID := seedCourt(t, infra.DB, "Court B", "badminton", 1)

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	ctx := context.Background()

	first := bookingDomain.NewBooking(
		ownerID, "ITSMC03", "",
		courtID, "Court B", "badminton",
		tomorrow, []string{"14:00-15:00"}, bookingDomain.KindRegular, "", "", 1, nil,
	)
	require.NoError(t, stack.BookingRepo.Save(ctx, first))

	racer := bookingDomain.NewBooking(
		racerID, "ITMLE04", "",
		courtID, "Court B", "badminton",
		tomorrow, []string{"14:00-15:00"}, bookingDomain.KindRegular, "", "", 1, nil,
	)
	err := stack.BookingRepo.Save(ctx, racer)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	// The losing transaction left no booking row behind.
	var count int64
	infra.DB.Model(&repository.BookingModel{}).Where("id = ?", racer.ID()).Count(&count)
	assert.Equal(t, int64(0), count)
}

// TestExpirySweep_AutoCancelsOverdueBooking verifies one full sweep pass: the
// overdue booking is claimed, the group penalty lands in the users and
// penalties tables, and the auto-cancellation event reaches Kafka.
func TestExpirySweep_AutoCancelsOverdueBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ownerID := seedUser(t, infra.DB, "ITSMC05", 100)
	courtID := seedCourt(t, infra.DB, "Court C", "badminton", 2)
	bookingID := seedOverdueBooking(t, infra.DB, ownerID, courtID)

	ctx := context.Background()
	// Zero grace makes the midnight slot overdue regardless of wall-clock time.
	require.NoError(t, stack.Admin.UpdateSetting(ctx, settings.KeyCheckinGraceMinutes, "0"))

	result, err := stack.Watcher.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Expired)

	model := waitForBookingStatus(t, infra.DB, bookingID, "cancelled", 10*time.Second)
	assert.True(t, model.AutoCancelled)
	assert.True(t, model.NoShowProcessed)
	assert.NotNil(t, model.ExpiredAt)

	// Default no-show penalty: 50 points plus one right and the one-right surcharge.
	owner, err := stack.UserRepo.FindByID(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, 50, owner.Points())
	today := time.Now().UTC().Format("2006-01-02")
	assert.Equal(t, 2, owner.ConsumedRightsOn(today))

	var penaltyCount int64
	infra.DB.Model(&repository.PenaltyModel{}).Where("booking_id = ?", bookingID).Count(&penaltyCount)
	assert.Equal(t, int64(1), penaltyCount)

	ce := consumeOneEvent(t, infra.KafkaBrokers, notificationTopic, events.EventTypeBookingAutoCancelled, 15*time.Second)
	var notification events.Notification
	require.NoError(t, ce.ParseData(&notification))
	assert.Equal(t, ownerID, notification.TargetUserID)

	// A second sweep finds nothing left to expire.
	result, err = stack.Watcher.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Expired)
}

// TestSettingUpdate_InvalidatesRemoteReplicaCache verifies the cross-replica
// settings propagation: an admin update on one replica reaches another
// replica's policy cache through the settings topic, well before the TTL.
func TestSettingUpdate_InvalidatesRemoteReplicaCache(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	logger, _ := zap.NewDevelopment()
	remoteStore := settings.NewStore(repository.NewSettingsRepository(infra.DB), time.Minute, logger)
	groupID := fmt.Sprintf("test-settings-%s", uuid.New().String()[:8])
	consumer := events.NewSettingsConsumer(infra.KafkaBrokers, groupID, settingsTopic, remoteStore, logger)
	defer func() { _ = consumer.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	// Prime the remote cache with the default.
	assert.Equal(t, 1, remoteStore.GetInt(ctx, settings.KeyDailyRightsPerUser, settings.DefaultDailyRightsPerUser))

	require.NoError(t, stack.Admin.UpdateSetting(ctx, settings.KeyDailyRightsPerUser, "3"))

	// The consumer drops the cached entry; the next read sees the new row.
	require.Eventually(t, func() bool {
		return remoteStore.GetInt(ctx, settings.KeyDailyRightsPerUser, settings.DefaultDailyRightsPerUser) == 3
	}, 15*time.Second, 200*time.Millisecond, "remote replica cache was not invalidated")
}
