package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role distinguishes regular members from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Point-balance and extra-rights guardrails.
const (
	MaxPoints           = 100
	MinExtraDailyRights = -10
	MaxExtraDailyRights = 50
)

// allowedEmailSuffixes are the university domains permitted to book when the
// non-university booking policy is disabled.
var allowedEmailSuffixes = []string{"@silpakorn.edu", "@su.ac.th"}

// User is the aggregate root for a member account, including the embedded
// rights ledger (consumedRightsByDate) and point balance.
type User struct {
	id                   uuid.UUID
	email                string
	firstName            string
	lastName             string
	studentID            string
	userCode             string
	role                 Role
	points               int
	extraDailyRights     int
	consumedRightsByDate map[string]int
	isActive             bool
	isEmailVerified      bool
	isRequestBlocked     bool
	bookingBanDate       string
	createdAt            time.Time
	updatedAt            time.Time
}

// --- Getters ---

func (u *User) ID() uuid.UUID          { return u.id }
func (u *User) Email() string          { return u.email }
func (u *User) FirstName() string      { return u.firstName }
func (u *User) LastName() string       { return u.lastName }
func (u *User) StudentID() string      { return u.studentID }
func (u *User) UserCode() string       { return u.userCode }
func (u *User) Role() Role             { return u.role }
func (u *User) Points() int            { return u.points }
func (u *User) ExtraDailyRights() int  { return u.extraDailyRights }
func (u *User) IsActive() bool         { return u.isActive }
func (u *User) IsEmailVerified() bool  { return u.isEmailVerified }
func (u *User) IsRequestBlocked() bool { return u.isRequestBlocked }
func (u *User) BookingBanDate() string { return u.bookingBanDate }
func (u *User) CreatedAt() time.Time   { return u.createdAt }
func (u *User) UpdatedAt() time.Time   { return u.updatedAt }

// IsAdmin reports whether the account has administrative privileges.
func (u *User) IsAdmin() bool { return u.role == RoleAdmin }

// DisplayName returns the user code when present, otherwise the full name.
func (u *User) DisplayName() string {
	if u.userCode != "" {
		return u.userCode
	}
	name := strings.TrimSpace(u.firstName + " " + u.lastName)
	if name == "" {
		return u.id.String()
	}
	return name
}

// FullName returns first and last name joined.
func (u *User) FullName() string {
	return strings.TrimSpace(u.firstName + " " + u.lastName)
}

// HasUniversityEmail reports whether the account email belongs to an allowed
// university domain.
func (u *User) HasUniversityEmail() bool {
	e := strings.ToLower(strings.TrimSpace(u.email))
	for _, suffix := range allowedEmailSuffixes {
		if strings.HasSuffix(e, suffix) {
			return true
		}
	}
	return false
}

// IsBannedOn reports whether the account carries a booking ban for the date.
func (u *User) IsBannedOn(date string) bool {
	return u.bookingBanDate != "" && u.bookingBanDate == date
}

// ConsumedRightsByDate exposes a copy of the rights ledger map.
func (u *User) ConsumedRightsByDate() map[string]int {
	out := make(map[string]int, len(u.consumedRightsByDate))
	for k, v := range u.consumedRightsByDate {
		out[k] = v
	}
	return out
}

// ConsumedRightsOn returns the consumed-rights count for the date, clamped
// non-negative.
func (u *User) ConsumedRightsOn(date string) int {
	n := u.consumedRightsByDate[date]
	if n < 0 {
		return 0
	}
	return n
}

// EffectiveDailyRights combines the configured base quota with the per-user
// override: max(0, base) + max(0, extra).
func (u *User) EffectiveDailyRights(base int) int {
	if base < 0 {
		base = 0
	}
	extra := u.extraDailyRights
	if extra < 0 {
		extra = 0
	}
	return base + extra
}

// --- Mutations ---

// AwardPoints adds bonus points, capped at MaxPoints. Returns the points
// actually applied.
func (u *User) AwardPoints(n int, now time.Time) int {
	if n <= 0 {
		return 0
	}
	next := u.points + n
	if next > MaxPoints {
		next = MaxPoints
	}
	applied := next - u.points
	if applied == 0 {
		return 0
	}
	u.points = next
	u.updatedAt = now
	return applied
}

// DeductPoints removes penalty points, floored at zero. Returns the points
// actually deducted.
func (u *User) DeductPoints(n int, now time.Time) int {
	if n <= 0 {
		return 0
	}
	next := u.points - n
	if next < 0 {
		next = 0
	}
	deducted := u.points - next
	u.points = next
	u.updatedAt = now
	return deducted
}

// ConsumeRights increments the rights ledger for the date. The ledger is never
// decremented here; only CorrectConsumedRights may lower it.
func (u *User) ConsumeRights(date string, n int, now time.Time) {
	if n <= 0 {
		return
	}
	if u.consumedRightsByDate == nil {
		u.consumedRightsByDate = make(map[string]int)
	}
	u.consumedRightsByDate[date] += n
	u.updatedAt = now
}

// CorrectConsumedRights is the administrative override for the rights ledger.
func (u *User) CorrectConsumedRights(date string, n int, now time.Time) {
	if u.consumedRightsByDate == nil {
		u.consumedRightsByDate = make(map[string]int)
	}
	if n <= 0 {
		delete(u.consumedRightsByDate, date)
	} else {
		u.consumedRightsByDate[date] = n
	}
	u.updatedAt = now
}

// SetExtraDailyRights applies the admin override, clamped to the guardrail range.
func (u *User) SetExtraDailyRights(n int, now time.Time) int {
	if n < MinExtraDailyRights {
		n = MinExtraDailyRights
	}
	if n > MaxExtraDailyRights {
		n = MaxExtraDailyRights
	}
	u.extraDailyRights = n
	u.updatedAt = now
	return n
}

// SetBookingBan records (or clears, with "") a day-level booking ban.
func (u *User) SetBookingBan(date string, now time.Time) {
	u.bookingBanDate = date
	u.updatedAt = now
}

// Reconstitute rebuilds a User from persisted data.
func Reconstitute(
	id uuid.UUID,
	email, firstName, lastName, studentID, userCode string,
	role Role,
	points, extraDailyRights int,
	consumedRightsByDate map[string]int,
	isActive, isEmailVerified, isRequestBlocked bool,
	bookingBanDate string,
	createdAt, updatedAt time.Time,
) *User {
	if consumedRightsByDate == nil {
		consumedRightsByDate = make(map[string]int)
	}
	return &User{
		id:                   id,
		email:                email,
		firstName:            firstName,
		lastName:             lastName,
		studentID:            studentID,
		userCode:             userCode,
		role:                 role,
		points:               points,
		extraDailyRights:     extraDailyRights,
		consumedRightsByDate: consumedRightsByDate,
		isActive:             isActive,
		isEmailVerified:      isEmailVerified,
		isRequestBlocked:     isRequestBlocked,
		bookingBanDate:       bookingBanDate,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}
