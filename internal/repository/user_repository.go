package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campus-sports/service-booking/internal/domain"
	userDomain "github.com/campus-sports/service-booking/internal/domain/user"
)

// UserModel is the GORM persistence model for the users table.
type UserModel struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Email                string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	FirstName            string         `gorm:"type:varchar(100)"`
	LastName             string         `gorm:"type:varchar(100)"`
	StudentID            string         `gorm:"type:varchar(50);index"`
	UserCode             string         `gorm:"type:varchar(20);uniqueIndex"`
	Role                 string         `gorm:"type:varchar(20);not null;default:'user'"`
	Points               int            `gorm:"not null;default:100"`
	ExtraDailyRights     int            `gorm:"not null;default:0"`
	ConsumedRightsByDate map[string]int `gorm:"type:jsonb;serializer:json"`
	IsActive             bool           `gorm:"not null;default:true"`
	IsEmailVerified      bool           `gorm:"not null;default:false"`
	IsRequestBlocked     bool           `gorm:"not null;default:false"`
	BookingBanDate       string         `gorm:"type:varchar(10)"`
	CreatedAt            time.Time      `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt            time.Time      `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// UserRepositoryImpl is the GORM-based implementation of user.Repository.
type UserRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository creates a new GORM-based user repository.
func NewUserRepository(db *gorm.DB) *UserRepositoryImpl {
	return &UserRepositoryImpl{db: db}
}

// FindByID retrieves a user by their unique ID.
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", id.String())
		}
		return nil, err
	}
	return userToDomain(&model), nil
}

// FindByCode retrieves a user by their personal participant code.
func (r *UserRepositoryImpl) FindByCode(ctx context.Context, code string) (*userDomain.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("user_code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", code)
		}
		return nil, err
	}
	return userToDomain(&model), nil
}

// Save persists a new user aggregate.
func (r *UserRepositoryImpl) Save(ctx context.Context, u *userDomain.User) error {
	return r.db.WithContext(ctx).Create(userToModel(u)).Error
}

// Update persists changes to an existing user.
func (r *UserRepositoryImpl) Update(ctx context.Context, u *userDomain.User) error {
	model := userToModel(u)
	result := r.db.WithContext(ctx).Model(&UserModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("User", model.ID.String())
	}
	return nil
}

// AtomicUpdate loads the user under a row lock, applies fn, and persists the
// result in one transaction. Concurrent ledger mutations serialize on the row.
func (r *UserRepositoryImpl) AtomicUpdate(ctx context.Context, id uuid.UUID, fn func(*userDomain.User) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model UserModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("User", id.String())
			}
			return err
		}
		u := userToDomain(&model)
		if err := fn(u); err != nil {
			return err
		}
		updated := userToModel(u)
		return tx.Model(&UserModel{}).
			Where("id = ?", id).
			Select("*").
			Omit("id", "created_at").
			Updates(updated).Error
	})
}

// userToDomain maps a UserModel to the domain User aggregate.
func userToDomain(model *UserModel) *userDomain.User {
	return userDomain.Reconstitute(
		model.ID,
		model.Email,
		model.FirstName,
		model.LastName,
		model.StudentID,
		model.UserCode,
		userDomain.Role(model.Role),
		model.Points,
		model.ExtraDailyRights,
		model.ConsumedRightsByDate,
		model.IsActive,
		model.IsEmailVerified,
		model.IsRequestBlocked,
		model.BookingBanDate,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

// userToModel maps a domain User aggregate to a UserModel.
func userToModel(u *userDomain.User) *UserModel {
	return &UserModel{
		ID:                   u.ID(),
		Email:                u.Email(),
		FirstName:            u.FirstName(),
		LastName:             u.LastName(),
		StudentID:            u.StudentID(),
		UserCode:             u.UserCode(),
		Role:                 string(u.Role()),
		Points:               u.Points(),
		ExtraDailyRights:     u.ExtraDailyRights(),
		ConsumedRightsByDate: u.ConsumedRightsByDate(),
		IsActive:             u.IsActive(),
		IsEmailVerified:      u.IsEmailVerified(),
		IsRequestBlocked:     u.IsRequestBlocked(),
		BookingBanDate:       u.BookingBanDate(),
		CreatedAt:            u.CreatedAt(),
		UpdatedAt:            u.UpdatedAt(),
	}
}
