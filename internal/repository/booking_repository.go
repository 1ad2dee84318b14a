package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campus-sports/service-booking/internal/domain"
	bookingDomain "github.com/campus-sports/service-booking/internal/domain/booking"
)

// BookingModel is the GORM persistence model for the bookings table.
type BookingModel struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primaryKey"`
	OwnerID            uuid.UUID          `gorm:"type:uuid;not null;index"`
	OwnerName          string             `gorm:"type:varchar(255)"`
	StudentID          string             `gorm:"type:varchar(50)"`
	CourtID            uuid.UUID          `gorm:"type:uuid;not null;index:idx_bookings_court_date"`
	CourtName          string             `gorm:"type:varchar(255)"`
	CourtType          string             `gorm:"type:varchar(50)"`
	Date               string             `gorm:"type:varchar(10);not null;index:idx_bookings_court_date"`
	TimeSlots          []string           `gorm:"type:jsonb;serializer:json;not null"`
	Kind               string             `gorm:"type:varchar(20);not null;default:'regular'"`
	ActivityType       string             `gorm:"type:varchar(100)"`
	Note               string             `gorm:"type:text"`
	Status             string             `gorm:"type:varchar(20);not null;default:'pending';index"`
	RequiredPlayers    int                `gorm:"not null;default:2"`
	Participants       []ParticipantModel `gorm:"type:jsonb;serializer:json"`
	ParticipantUserIDs []string           `gorm:"type:jsonb;serializer:json"`
	IsQRVerified       bool               `gorm:"not null;default:false"`
	IsLocationVerified bool               `gorm:"not null;default:false"`
	AutoCancelled      bool               `gorm:"not null;default:false"`
	NoShowProcessed    bool               `gorm:"not null;default:false"`
	PointsAwarded      bool               `gorm:"not null;default:false"`
	Privileged         bool               `gorm:"not null;default:false"`
	IsLateCancellation bool               `gorm:"not null;default:false"`
	CancellationReason string             `gorm:"type:text"`
	ConfirmedAt        *time.Time         `gorm:"type:timestamptz"`
	CheckedInAt        *time.Time         `gorm:"type:timestamptz"`
	CompletedAt        *time.Time         `gorm:"type:timestamptz"`
	CancelledAt        *time.Time         `gorm:"type:timestamptz"`
	ExpiredAt          *time.Time         `gorm:"type:timestamptz"`
	ProtectedAt        *time.Time         `gorm:"type:timestamptz"`
	CreatedAt          time.Time          `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt          time.Time          `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (BookingModel) TableName() string {
	return "bookings"
}

// ParticipantModel is the JSON shape of one participant inside a booking row.
type ParticipantModel struct {
	UserID   uuid.UUID `json:"userId"`
	UserName string    `json:"userName"`
	UserCode string    `json:"userCode"`
}

// SlotOccupancyModel enforces slot exclusivity at the database level: the
// unique index makes two bookings racing for the same (court, date, slot)
// impossible, the second insert fails with a duplicate-key error.
type SlotOccupancyModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;index"`
	CourtID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_slot_occupancy"`
	Date      string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_slot_occupancy"`
	Slot      string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_slot_occupancy"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (SlotOccupancyModel) TableName() string {
	return "slot_occupancies"
}

// BookingRepositoryImpl is the GORM-based implementation of booking.Repository.
type BookingRepositoryImpl struct {
	db *gorm.DB
}

// NewBookingRepository creates a new GORM-based booking repository.
func NewBookingRepository(db *gorm.DB) *BookingRepositoryImpl {
	return &BookingRepositoryImpl{db: db}
}

// FindByID retrieves a booking by its unique ID.
func (r *BookingRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, err
	}
	return bookingToDomain(&model), nil
}

// Save persists a new booking and, for blocking statuses, inserts its slot
// holds in the same transaction. A duplicate hold aborts the whole insert.
func (r *BookingRepositoryImpl) Save(ctx context.Context, b *bookingDomain.Booking) error {
	model := bookingToModel(b)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		if b.Blocks() {
			if err := tx.Create(occupanciesFor(b)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.NewConflictError("one or more selected time slots are already booked")
	}
	return err
}

// Update persists changes to an existing booking. When the booking has left
// the blocking statuses its slot holds are released in the same transaction.
func (r *BookingRepositoryImpl) Update(ctx context.Context, b *bookingDomain.Booking) error {
	model := bookingToModel(b)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&BookingModel{}).
			Where("id = ?", model.ID).
			Select("*").
			Omit("id", "created_at").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFoundError("Booking", model.ID.String())
		}
		if !b.Blocks() {
			if err := tx.Where("booking_id = ?", model.ID).Delete(&SlotOccupancyModel{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ClaimNoShow atomically applies the no-show auto-cancellation. The WHERE
// clause is the idempotency guard: concurrent sweeps race on the same row and
// only one update reports an affected row.
func (r *BookingRepositoryImpl) ClaimNoShow(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	var claimed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		result := tx.Model(&BookingModel{}).
			Where("id = ? AND status IN ? AND no_show_processed = false", id, []string{
				string(bookingDomain.StatusPending),
				string(bookingDomain.StatusConfirmed),
			}).
			Updates(map[string]interface{}{
				"status":              string(bookingDomain.StatusCancelled),
				"auto_cancelled":      true,
				"no_show_processed":   true,
				"cancellation_reason": reason,
				"expired_at":          now,
				"updated_at":          now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		claimed = true
		return tx.Where("booking_id = ?", id).Delete(&SlotOccupancyModel{}).Error
	})
	return claimed, err
}

// ClaimPointsAward atomically flips the bonus-award idempotency flag.
func (r *BookingRepositoryImpl) ClaimPointsAward(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("id = ? AND points_awarded = false", id).
		Updates(map[string]interface{}{
			"points_awarded": true,
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByCourt retrieves all bookings for a court.
func (r *BookingRepositoryImpl) ListByCourt(ctx context.Context, courtID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("court_id = ?", courtID).
		Order("date ASC, created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return bookingsToDomain(models), nil
}

// ListByOwner retrieves all bookings owned by the user.
func (r *BookingRepositoryImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return bookingsToDomain(models), nil
}

// ListByParticipant retrieves all bookings that list the user as participant,
// via jsonb containment on the denormalized id array.
func (r *BookingRepositoryImpl) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("participant_user_ids @> ?", fmt.Sprintf("%q", userID.String())).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return bookingsToDomain(models), nil
}

// ListByStatuses retrieves all bookings in any of the given statuses.
func (r *BookingRepositoryImpl) ListByStatuses(ctx context.Context, statuses []bookingDomain.Status) ([]*bookingDomain.Booking, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", values).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return bookingsToDomain(models), nil
}

// ListByDate retrieves all bookings whose canonical date matches.
func (r *BookingRepositoryImpl) ListByDate(ctx context.Context, date string) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return bookingsToDomain(models), nil
}

// CancelBatch persists the cancellation of several bookings in one
// transaction; either all succeed or none do.
func (r *BookingRepositoryImpl) CancelBatch(ctx context.Context, bookings []*bookingDomain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, b := range bookings {
			model := bookingToModel(b)
			result := tx.Model(&BookingModel{}).
				Where("id = ?", model.ID).
				Select("*").
				Omit("id", "created_at").
				Updates(model)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return domain.NewNotFoundError("Booking", model.ID.String())
			}
			if err := tx.Where("booking_id = ?", model.ID).Delete(&SlotOccupancyModel{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func occupanciesFor(b *bookingDomain.Booking) []SlotOccupancyModel {
	holds := make([]SlotOccupancyModel, len(b.TimeSlots()))
	for i, slot := range b.TimeSlots() {
		holds[i] = SlotOccupancyModel{
			ID:        uuid.New(),
			BookingID: b.ID(),
			CourtID:   b.CourtID(),
			Date:      b.Date(),
			Slot:      slot,
		}
	}
	return holds
}

func bookingsToDomain(models []BookingModel) []*bookingDomain.Booking {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = bookingToDomain(&models[i])
	}
	return bookings
}

// bookingToDomain maps a BookingModel to the domain Booking aggregate.
func bookingToDomain(model *BookingModel) *bookingDomain.Booking {
	participants := make([]bookingDomain.Participant, len(model.Participants))
	for i, p := range model.Participants {
		participants[i] = bookingDomain.Participant{
			UserID:   p.UserID,
			UserName: p.UserName,
			UserCode: p.UserCode,
		}
	}
	return bookingDomain.Reconstitute(
		model.ID,
		model.OwnerID,
		model.OwnerName,
		model.StudentID,
		model.CourtID,
		model.CourtName,
		model.CourtType,
		model.Date,
		model.TimeSlots,
		bookingDomain.Kind(model.Kind),
		model.ActivityType,
		model.Note,
		bookingDomain.Status(model.Status),
		model.RequiredPlayers,
		participants,
		model.IsQRVerified,
		model.IsLocationVerified,
		model.AutoCancelled,
		model.NoShowProcessed,
		model.PointsAwarded,
		model.Privileged,
		model.IsLateCancellation,
		model.CancellationReason,
		model.ConfirmedAt,
		model.CheckedInAt,
		model.CompletedAt,
		model.CancelledAt,
		model.ExpiredAt,
		model.ProtectedAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

// bookingToModel maps a domain Booking aggregate to a BookingModel.
func bookingToModel(b *bookingDomain.Booking) *BookingModel {
	participants := make([]ParticipantModel, len(b.Participants()))
	participantIDs := make([]string, len(b.Participants()))
	for i, p := range b.Participants() {
		participants[i] = ParticipantModel{
			UserID:   p.UserID,
			UserName: p.UserName,
			UserCode: p.UserCode,
		}
		participantIDs[i] = p.UserID.String()
	}
	return &BookingModel{
		ID:                 b.ID(),
		OwnerID:            b.OwnerID(),
		OwnerName:          b.OwnerName(),
		StudentID:          b.StudentID(),
		CourtID:            b.CourtID(),
		CourtName:          b.CourtName(),
		CourtType:          b.CourtType(),
		Date:               b.Date(),
		TimeSlots:          b.TimeSlots(),
		Kind:               string(b.Kind()),
		ActivityType:       b.ActivityType(),
		Note:               b.Note(),
		Status:             string(b.Status()),
		RequiredPlayers:    b.RequiredPlayers(),
		Participants:       participants,
		ParticipantUserIDs: participantIDs,
		IsQRVerified:       b.IsQRVerified(),
		IsLocationVerified: b.IsLocationVerified(),
		AutoCancelled:      b.AutoCancelled(),
		NoShowProcessed:    b.NoShowProcessed(),
		PointsAwarded:      b.PointsAwarded(),
		Privileged:         b.Privileged(),
		IsLateCancellation: b.IsLateCancellation(),
		CancellationReason: b.CancellationReason(),
		ConfirmedAt:        b.ConfirmedAt(),
		CheckedInAt:        b.CheckedInAt(),
		CompletedAt:        b.CompletedAt(),
		CancelledAt:        b.CancelledAt(),
		ExpiredAt:          b.ExpiredAt(),
		ProtectedAt:        b.ProtectedAt(),
		CreatedAt:          b.CreatedAt(),
		UpdatedAt:          b.UpdatedAt(),
	}
}
