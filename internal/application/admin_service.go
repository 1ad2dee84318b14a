package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-sports/service-booking/internal/domain"
	courtDomain "github.com/campus-sports/service-booking/internal/domain/court"
	"github.com/campus-sports/service-booking/internal/domain/schedule"
	userDomain "github.com/campus-sports/service-booking/internal/domain/user"
	"github.com/campus-sports/service-booking/internal/settings"
)

// SettingsWriter is the persistence contract for mutating runtime settings.
type SettingsWriter interface {
	SetValue(ctx context.Context, key, value string) error
	ListAll(ctx context.Context) (map[string]string, error)
}

// SettingsAnnouncer propagates setting changes to the other service replicas
// so their policy caches invalidate immediately rather than on TTL expiry.
type SettingsAnnouncer interface {
	AnnounceSettingUpdated(ctx context.Context, key, value string)
}

// CourtDTO is the API response DTO for court data.
type CourtDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	RequiredPlayers int       `json:"requiredPlayers"`
	IsActive        bool      `json:"isActive"`
}

// AdminService covers the administrative surface: runtime settings, per-user
// quota overrides, ledger corrections, booking bans and court management.
type AdminService struct {
	users          userDomain.Repository
	courts         courtDomain.Repository
	settingsWriter SettingsWriter
	announcer      SettingsAnnouncer
	policy         *settings.Store
	logger         *zap.Logger
	now            func() time.Time
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	users userDomain.Repository,
	courts courtDomain.Repository,
	settingsWriter SettingsWriter,
	announcer SettingsAnnouncer,
	policy *settings.Store,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		users:          users,
		courts:         courts,
		settingsWriter: settingsWriter,
		announcer:      announcer,
		policy:         policy,
		logger:         logger,
		now:            time.Now,
	}
}

// UpdateSetting writes a runtime setting and drops its cached value so the
// change takes effect on the next policy read.
func (s *AdminService) UpdateSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return domain.NewValidationError("setting key is required")
	}
	if err := s.settingsWriter.SetValue(ctx, key, value); err != nil {
		return err
	}
	s.policy.Invalidate(key)
	s.announcer.AnnounceSettingUpdated(ctx, key, value)
	s.logger.Info("setting updated",
		zap.String("key", key),
		zap.String("value", value),
	)
	return nil
}

// ListSettings returns every stored setting.
func (s *AdminService) ListSettings(ctx context.Context) (map[string]string, error) {
	return s.settingsWriter.ListAll(ctx)
}

// SetExtraDailyRights applies the per-user quota override. The stored value is
// clamped to the guardrail range; the applied value is returned.
func (s *AdminService) SetExtraDailyRights(ctx context.Context, userID uuid.UUID, extra int) (int, error) {
	var applied int
	now := s.now().UTC()
	err := s.users.AtomicUpdate(ctx, userID, func(u *userDomain.User) error {
		applied = u.SetExtraDailyRights(extra, now)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("extra daily rights updated",
		zap.String("user_id", userID.String()),
		zap.Int("requested", extra),
		zap.Int("applied", applied),
	)
	return applied, nil
}

// CorrectConsumedRights overrides the consumed-rights ledger for one date.
// A non-positive count clears the entry.
func (s *AdminService) CorrectConsumedRights(ctx context.Context, userID uuid.UUID, rawDate string, count int) error {
	date, err := schedule.NormalizeDate(rawDate)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	err = s.users.AtomicUpdate(ctx, userID, func(u *userDomain.User) error {
		u.CorrectConsumedRights(date, count, now)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("consumed rights corrected",
		zap.String("user_id", userID.String()),
		zap.String("date", date),
		zap.Int("count", count),
	)
	return nil
}

// SetBookingBan places (or, with an empty date, lifts) a day-level booking ban.
func (s *AdminService) SetBookingBan(ctx context.Context, userID uuid.UUID, rawDate string) error {
	date := rawDate
	if rawDate != "" {
		normalized, err := schedule.NormalizeDate(rawDate)
		if err != nil {
			return err
		}
		date = normalized
	}
	now := s.now().UTC()
	err := s.users.AtomicUpdate(ctx, userID, func(u *userDomain.User) error {
		u.SetBookingBan(date, now)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("booking ban updated",
		zap.String("user_id", userID.String()),
		zap.String("date", date),
	)
	return nil
}

// CreateCourt registers a new bookable court.
func (s *AdminService) CreateCourt(ctx context.Context, name, category string, requiredPlayers int) (*CourtDTO, error) {
	if name == "" || category == "" {
		return nil, domain.NewValidationError("court name and category are required")
	}
	c := courtDomain.NewCourt(name, category, requiredPlayers)
	if err := s.courts.Save(ctx, c); err != nil {
		return nil, err
	}
	dto := toCourtDTO(c)
	return &dto, nil
}

// ListCourts returns all active courts.
func (s *AdminService) ListCourts(ctx context.Context) ([]CourtDTO, error) {
	courts, err := s.courts.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CourtDTO, len(courts))
	for i, c := range courts {
		out[i] = toCourtDTO(c)
	}
	return out, nil
}

func toCourtDTO(c *courtDomain.Court) CourtDTO {
	return CourtDTO{
		ID:              c.ID(),
		Name:            c.Name(),
		Category:        c.Category(),
		RequiredPlayers: c.RequiredPlayers(),
		IsActive:        c.IsActive(),
	}
}
