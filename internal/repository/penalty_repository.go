package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	penaltyDomain "github.com/campus-sports/service-booking/internal/domain/penalty"
)

// PenaltyModel is the GORM persistence model for the penalty ledger.
type PenaltyModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_penalty_booking_user"`
	BookingID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_penalty_booking_user"`
	PenaltyPoints int       `gorm:"not null"`
	Reason        string    `gorm:"type:text"`
	CourtName     string    `gorm:"type:varchar(255)"`
	BookingDate   string    `gorm:"type:varchar(10)"`
	TimeSlots     []string  `gorm:"type:jsonb;serializer:json"`
	BookingKind   string    `gorm:"type:varchar(20)"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (PenaltyModel) TableName() string {
	return "penalties"
}

// PenaltyRepositoryImpl is the GORM-based implementation of penalty.Repository.
type PenaltyRepositoryImpl struct {
	db *gorm.DB
}

// NewPenaltyRepository creates a new GORM-based penalty repository.
func NewPenaltyRepository(db *gorm.DB) *PenaltyRepositoryImpl {
	return &PenaltyRepositoryImpl{db: db}
}

// ExistsForBookingAndUser is the idempotency query guarding record creation.
func (r *PenaltyRepositoryImpl) ExistsForBookingAndUser(ctx context.Context, bookingID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&PenaltyModel{}).
		Where("booking_id = ? AND user_id = ?", bookingID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save persists a new penalty record. The unique index on (booking_id, user_id)
// backstops the existence check under concurrent sweeps.
func (r *PenaltyRepositoryImpl) Save(ctx context.Context, record *penaltyDomain.Record) error {
	return r.db.WithContext(ctx).Create(penaltyToModel(record)).Error
}

// ListByUser retrieves all penalty records for a user, newest first.
func (r *PenaltyRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*penaltyDomain.Record, error) {
	var models []PenaltyModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	records := make([]*penaltyDomain.Record, len(models))
	for i := range models {
		records[i] = penaltyToDomain(&models[i])
	}
	return records, nil
}

func penaltyToDomain(model *PenaltyModel) *penaltyDomain.Record {
	return penaltyDomain.Reconstitute(
		model.ID,
		model.UserID,
		model.BookingID,
		model.PenaltyPoints,
		model.Reason,
		model.CourtName,
		model.BookingDate,
		model.TimeSlots,
		model.BookingKind,
		model.CreatedAt,
	)
}

func penaltyToModel(record *penaltyDomain.Record) *PenaltyModel {
	return &PenaltyModel{
		ID:            record.ID(),
		UserID:        record.UserID(),
		BookingID:     record.BookingID(),
		PenaltyPoints: record.PenaltyPoints(),
		Reason:        record.Reason(),
		CourtName:     record.CourtName(),
		BookingDate:   record.BookingDate(),
		TimeSlots:     record.TimeSlots(),
		BookingKind:   record.BookingKind(),
		CreatedAt:     record.CreatedAt(),
	}
}
