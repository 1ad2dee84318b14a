//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/campus-sports/service-booking/internal/application"
	"github.com/campus-sports/service-booking/internal/events"
	"github.com/campus-sports/service-booking/internal/platform/kafka"
	"github.com/campus-sports/service-booking/internal/repository"
	"github.com/campus-sports/service-booking/internal/settings"
	"github.com/campus-sports/service-booking/internal/watcher"
)

const (
	notificationTopic = "notifications"
	settingsTopic     = "settings-events"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	BookingRepo     *repository.BookingRepositoryImpl
	UserRepo        *repository.UserRepositoryImpl
	PenaltyRepo     *repository.PenaltyRepositoryImpl
	Policy          *settings.Store
	Rights          *application.RightsService
	Penalties       *application.PenaltyService
	Bookings        *application.BookingService
	Admin           *application.AdminService
	Watcher         *watcher.ExpiryWatcher
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error)
	require.NoError(t, db.AutoMigrate(
		&repository.BookingModel{},
		&repository.SlotOccupancyModel{},
		&repository.UserModel{},
		&repository.PenaltyModel{},
		&repository.CourtModel{},
		&repository.SettingModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, notificationTopic, settingsTopic)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires up the full booking service stack the way cmd/server does.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewBookingRepository(db)
	userRepo := repository.NewUserRepository(db)
	courtRepo := repository.NewCourtRepository(db)
	penaltyRepo := repository.NewPenaltyRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// A long TTL so cache invalidation, not expiry, is what the tests observe.
	policy := settings.NewStore(settingsRepo, time.Minute, logger)

	producer := kafka.NewProducer(brokers, logger)
	notifier := events.NewKafkaNotifier(producer, notificationTopic, logger)
	announcer := events.NewSettingsPublisher(producer, settingsTopic, logger)

	rightsSvc := application.NewRightsService(bookingRepo, userRepo, policy, logger)
	penaltySvc := application.NewPenaltyService(userRepo, penaltyRepo, bookingRepo, notifier, logger)
	bookingSvc := application.NewBookingService(bookingRepo, userRepo, courtRepo, rightsSvc, penaltySvc, policy, notifier, logger)
	adminSvc := application.NewAdminService(userRepo, courtRepo, settingsRepo, announcer, policy, logger)
	expiryWatcher := watcher.NewExpiryWatcher(bookingRepo, penaltySvc, policy, notifier, logger)

	return &bookingStack{
		BookingRepo:     bookingRepo,
		UserRepo:        userRepo,
		PenaltyRepo:     penaltyRepo,
		Policy:          policy,
		Rights:          rightsSvc,
		Penalties:       penaltySvc,
		Bookings:        bookingSvc,
		Admin:           adminSvc,
		Watcher:         expiryWatcher,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedUser inserts an active, verified user and returns its ID.
func seedUser(t *testing.T, db *gorm.DB, code string, points int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	model := repository.UserModel{
		ID:              id,
		Email:           fmt.Sprintf("%s@silpakorn.edu", code),
		FirstName:       code,
		UserCode:        code,
		Role:            "user",
		Points:          points,
		IsActive:        true,
		IsEmailVerified: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed user")
	return id
}

// seedCourt inserts an active court and returns its ID.
func seedCourt(t *testing.T, db *gorm.DB, name, category string, requiredPlayers int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	model := repository.CourtModel{
		ID:              id,
		Name:            name,
		Category:        category,
		RequiredPlayers: requiredPlayers,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed court")
	return id
}

// seedOverdueBooking inserts a pending booking for today whose slot started at
// midnight. With the check-in grace set to zero, the sweep treats its window
// as already past.
func seedOverdueBooking(t *testing.T, db *gorm.DB, ownerID, courtID uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	model := repository.BookingModel{
		ID:                 id,
		OwnerID:            ownerID,
		OwnerName:          "SMC01",
		CourtID:            courtID,
		CourtName:          "Court A",
		CourtType:          "badminton",
		Date:               now.Format("2006-01-02"),
		TimeSlots:          []string{"00:00-00:30"},
		Kind:               "regular",
		Status:             "pending",
		RequiredPlayers:    2,
		ParticipantUserIDs: []string{},
		CreatedAt:          now.Add(-time.Hour),
		UpdatedAt:          now.Add(-time.Hour),
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed booking")
	return id
}

// waitForBookingStatus polls the bookings table until the status matches.
func waitForBookingStatus(t *testing.T, db *gorm.DB, bookingID uuid.UUID, expectedStatus string, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		if err := db.Where("id = ?", bookingID).First(&model).Error; err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking did not transition to %s", expectedStatus)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
