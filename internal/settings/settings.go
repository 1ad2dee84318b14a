// Package settings provides the policy configuration store. Settings live in
// an external collection and are administratively mutable at any time, so the
// store is eventually consistent: values are cached with a short TTL and the
// admin update path calls Invalidate explicitly. Components receive the store
// by reference; nothing reads a package-level singleton.
package settings

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Setting keys used by the booking core.
const (
	KeyDailyRightsPerUser        = "daily_rights_per_user"
	KeyCheckinGraceMinutes       = "checkin_grace_minutes"
	KeyCancelFreeHours           = "cancel_free_hours"
	KeyPenaltyLateCancel         = "penalty_late_cancel"
	KeyPenaltyNoCheckinAuto      = "penalty_no_checkin_auto_cancel"
	KeyNoShowExtraRightsPenalty  = "no_show_extra_rights_penalty"
	KeyBonusCompletedBooking     = "bonus_completed_booking"
	KeyResetBoundaryHour         = "reset_boundary_hour"
	KeyRequireQRVerification     = "require_qr_verification"
	KeyRequireLocationVerify     = "require_location_verification"
	KeyAllowNonUniversityBooking = "allow_non_university_booking"
)

// Defaults applied when a setting is absent or unreadable.
const (
	DefaultDailyRightsPerUser       = 1
	DefaultCheckinGraceMinutes      = 15
	DefaultCancelFreeHours          = 1
	DefaultPenaltyLateCancel        = 0
	DefaultPenaltyNoCheckinAuto     = 50
	DefaultNoShowExtraRightsPenalty = 1
	DefaultBonusCompletedBooking    = 5
	DefaultResetBoundaryHour        = 0
)

// DefaultTTL bounds how stale a cached setting may be.
const DefaultTTL = time.Minute

// Reader is the persistence contract for raw setting values.
type Reader interface {
	// GetValue returns the stored string for the key, or found=false.
	GetValue(ctx context.Context, key string) (value string, found bool, err error)
}

type cacheEntry struct {
	value   string
	found   bool
	fetched time.Time
}

// Store reads settings through a TTL cache with explicit invalidation.
type Store struct {
	reader Reader
	ttl    time.Duration
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
	now   func() time.Time
}

// NewStore creates a settings store. A non-positive ttl falls back to DefaultTTL.
func NewStore(reader Reader, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		reader: reader,
		ttl:    ttl,
		logger: logger,
		cache:  make(map[string]cacheEntry),
		now:    time.Now,
	}
}

// GetNumber returns the setting parsed as a number, or def when absent or
// malformed. Read failures fall back to the default; policy reads must never
// fail a request.
func (s *Store) GetNumber(ctx context.Context, key string, def float64) float64 {
	raw, found := s.get(ctx, key)
	if !found {
		return def
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return def
	}
	return n
}

// GetInt returns the setting as an integer, truncating fractional values.
func (s *Store) GetInt(ctx context.Context, key string, def int) int {
	return int(s.GetNumber(ctx, key, float64(def)))
}

// GetBool returns the setting parsed as a boolean, or def when absent or
// malformed. Accepts true/false, 1/0, yes/no, on/off.
func (s *Store) GetBool(ctx context.Context, key string, def bool) bool {
	raw, found := s.get(ctx, key)
	if !found {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return def
}

// Invalidate drops the cached value for a key so the next read hits the store.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, key)
}

// InvalidateAll drops the entire cache.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]cacheEntry)
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	now := s.now()

	s.mu.Lock()
	entry, ok := s.cache[key]
	s.mu.Unlock()
	if ok && now.Sub(entry.fetched) < s.ttl {
		return entry.value, entry.found
	}

	value, found, err := s.reader.GetValue(ctx, key)
	if err != nil {
		s.logger.Warn("settings read failed, using default",
			zap.String("key", key),
			zap.Error(err),
		)
		if ok {
			// Serve the stale entry rather than flapping to defaults.
			return entry.value, entry.found
		}
		return "", false
	}

	s.mu.Lock()
	s.cache[key] = cacheEntry{value: value, found: found, fetched: now}
	s.mu.Unlock()
	return value, found
}
