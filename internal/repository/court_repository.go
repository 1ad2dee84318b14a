package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campus-sports/service-booking/internal/domain"
	courtDomain "github.com/campus-sports/service-booking/internal/domain/court"
)

// CourtModel is the GORM persistence model for the courts table.
type CourtModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name            string    `gorm:"type:varchar(255);not null"`
	Category        string    `gorm:"type:varchar(50);not null"`
	RequiredPlayers int       `gorm:"not null;default:0"`
	IsActive        bool      `gorm:"not null;default:true"`
	CreatedAt       time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt       time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (CourtModel) TableName() string {
	return "courts"
}

// CourtRepositoryImpl is the GORM-based implementation of court.Repository.
type CourtRepositoryImpl struct {
	db *gorm.DB
}

// NewCourtRepository creates a new GORM-based court repository.
func NewCourtRepository(db *gorm.DB) *CourtRepositoryImpl {
	return &CourtRepositoryImpl{db: db}
}

// FindByID retrieves a court by its unique ID.
func (r *CourtRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*courtDomain.Court, error) {
	var model CourtModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Court", id.String())
		}
		return nil, err
	}
	return courtToDomain(&model), nil
}

// ListActive retrieves all active courts.
func (r *CourtRepositoryImpl) ListActive(ctx context.Context) ([]*courtDomain.Court, error) {
	var models []CourtModel
	if err := r.db.WithContext(ctx).
		Where("is_active = true").
		Order("name ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	courts := make([]*courtDomain.Court, len(models))
	for i := range models {
		courts[i] = courtToDomain(&models[i])
	}
	return courts, nil
}

// Save persists a new court.
func (r *CourtRepositoryImpl) Save(ctx context.Context, c *courtDomain.Court) error {
	return r.db.WithContext(ctx).Create(courtToModel(c)).Error
}

func courtToDomain(model *CourtModel) *courtDomain.Court {
	return courtDomain.Reconstitute(
		model.ID,
		model.Name,
		model.Category,
		model.RequiredPlayers,
		model.IsActive,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func courtToModel(c *courtDomain.Court) *CourtModel {
	return &CourtModel{
		ID:              c.ID(),
		Name:            c.Name(),
		Category:        c.Category(),
		RequiredPlayers: c.RequiredPlayers(),
		IsActive:        c.IsActive(),
		CreatedAt:       c.CreatedAt(),
		UpdatedAt:       c.UpdatedAt(),
	}
}
