package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-sports/service-booking/internal/domain"
	bookingDomain "github.com/campus-sports/service-booking/internal/domain/booking"
	courtDomain "github.com/campus-sports/service-booking/internal/domain/court"
	penaltyDomain "github.com/campus-sports/service-booking/internal/domain/penalty"
	userDomain "github.com/campus-sports/service-booking/internal/domain/user"
	"github.com/campus-sports/service-booking/internal/events"
	"github.com/campus-sports/service-booking/internal/settings"
)

// fakeBookingRepo is an in-memory booking.Repository that mirrors the slot
// hold behavior of the real implementation.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
	holds    map[string]uuid.UUID
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[uuid.UUID]*bookingDomain.Booking),
		holds:    make(map[string]uuid.UUID),
	}
}

func holdKey(courtID uuid.UUID, date, slot string) string {
	return fmt.Sprintf("%s|%s|%s", courtID, date, slot)
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return b, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.Blocks() {
		for _, slot := range b.TimeSlots() {
			if _, taken := r.holds[holdKey(b.CourtID(), b.Date(), slot)]; taken {
				return domain.NewConflictError("one or more selected time slots are already booked")
			}
		}
		for _, slot := range b.TimeSlots() {
			r.holds[holdKey(b.CourtID(), b.Date(), slot)] = b.ID()
		}
	}
	r.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[b.ID()]; !ok {
		return domain.NewNotFoundError("Booking", b.ID().String())
	}
	r.bookings[b.ID()] = b
	if !b.Blocks() {
		r.releaseHolds(b.ID())
	}
	return nil
}

func (r *fakeBookingRepo) releaseHolds(id uuid.UUID) {
	for key, holder := range r.holds {
		if holder == id {
			delete(r.holds, key)
		}
	}
}

func (r *fakeBookingRepo) ClaimNoShow(_ context.Context, id uuid.UUID, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return false, domain.NewNotFoundError("Booking", id.String())
	}
	if !b.MarkNoShow(time.Now().UTC(), reason) {
		return false, nil
	}
	r.releaseHolds(id)
	return true, nil
}

func (r *fakeBookingRepo) ClaimPointsAward(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return false, domain.NewNotFoundError("Booking", id.String())
	}
	return b.ClaimPointsAward(), nil
}

func (r *fakeBookingRepo) list(filter func(*bookingDomain.Booking) bool) []*bookingDomain.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*bookingDomain.Booking, 0)
	for _, b := range r.bookings {
		if filter(b) {
			out = append(out, b)
		}
	}
	return out
}

func (r *fakeBookingRepo) ListByCourt(_ context.Context, courtID uuid.UUID) ([]*bookingDomain.Booking, error) {
	return r.list(func(b *bookingDomain.Booking) bool { return b.CourtID() == courtID }), nil
}

func (r *fakeBookingRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	return r.list(func(b *bookingDomain.Booking) bool { return b.OwnerID() == ownerID }), nil
}

func (r *fakeBookingRepo) ListByParticipant(_ context.Context, userID uuid.UUID) ([]*bookingDomain.Booking, error) {
	return r.list(func(b *bookingDomain.Booking) bool {
		for _, p := range b.Participants() {
			if p.UserID == userID {
				return true
			}
		}
		return false
	}), nil
}

func (r *fakeBookingRepo) ListByStatuses(_ context.Context, statuses []bookingDomain.Status) ([]*bookingDomain.Booking, error) {
	return r.list(func(b *bookingDomain.Booking) bool {
		for _, s := range statuses {
			if b.Status() == s {
				return true
			}
		}
		return false
	}), nil
}

func (r *fakeBookingRepo) ListByDate(_ context.Context, date string) ([]*bookingDomain.Booking, error) {
	return r.list(func(b *bookingDomain.Booking) bool { return b.Date() == date }), nil
}

func (r *fakeBookingRepo) CancelBatch(_ context.Context, bookings []*bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range bookings {
		if _, ok := r.bookings[b.ID()]; !ok {
			return domain.NewNotFoundError("Booking", b.ID().String())
		}
	}
	for _, b := range bookings {
		r.bookings[b.ID()] = b
		r.releaseHolds(b.ID())
	}
	return nil
}

// fakeUserRepo is an in-memory user.Repository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*userDomain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*userDomain.User)}
}

func (r *fakeUserRepo) add(u *userDomain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("User", id.String())
	}
	return u, nil
}

func (r *fakeUserRepo) FindByCode(_ context.Context, code string) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserCode() == code {
			return u, nil
		}
	}
	return nil, domain.NewNotFoundError("User", code)
}

func (r *fakeUserRepo) Save(_ context.Context, u *userDomain.User) error {
	r.add(u)
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *userDomain.User) error {
	r.add(u)
	return nil
}

func (r *fakeUserRepo) AtomicUpdate(_ context.Context, id uuid.UUID, fn func(*userDomain.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.NewNotFoundError("User", id.String())
	}
	return fn(u)
}

// fakePenaltyRepo is an in-memory penalty.Repository.
type fakePenaltyRepo struct {
	mu      sync.Mutex
	records []*penaltyDomain.Record
}

func newFakePenaltyRepo() *fakePenaltyRepo {
	return &fakePenaltyRepo{}
}

func (r *fakePenaltyRepo) ExistsForBookingAndUser(_ context.Context, bookingID, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.BookingID() == bookingID && rec.UserID() == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePenaltyRepo) Save(_ context.Context, rec *penaltyDomain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *fakePenaltyRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*penaltyDomain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*penaltyDomain.Record, 0)
	for _, rec := range r.records {
		if rec.UserID() == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// fakeCourtRepo is an in-memory court.Repository.
type fakeCourtRepo struct {
	mu     sync.Mutex
	courts map[uuid.UUID]*courtDomain.Court
}

func newFakeCourtRepo() *fakeCourtRepo {
	return &fakeCourtRepo{courts: make(map[uuid.UUID]*courtDomain.Court)}
}

func (r *fakeCourtRepo) add(c *courtDomain.Court) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courts[c.ID()] = c
}

func (r *fakeCourtRepo) FindByID(_ context.Context, id uuid.UUID) (*courtDomain.Court, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courts[id]
	if !ok {
		return nil, domain.NewNotFoundError("Court", id.String())
	}
	return c, nil
}

func (r *fakeCourtRepo) ListActive(_ context.Context) ([]*courtDomain.Court, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*courtDomain.Court, 0)
	for _, c := range r.courts {
		if c.IsActive() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCourtRepo) Save(_ context.Context, c *courtDomain.Court) error {
	r.add(c)
	return nil
}

// mapSettingsReader backs the policy store in tests.
type mapSettingsReader struct {
	values map[string]string
}

func (m *mapSettingsReader) GetValue(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedNotification
}

type recordedNotification struct {
	Type         string
	Notification events.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, eventType string, notification events.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedNotification{Type: eventType, Notification: notification})
}

func (n *recordingNotifier) ofType(eventType string) []recordedNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]recordedNotification, 0)
	for _, e := range n.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// testEnv wires the whole application layer against in-memory fakes.
type testEnv struct {
	bookings  *fakeBookingRepo
	users     *fakeUserRepo
	penalties *fakePenaltyRepo
	courts    *fakeCourtRepo
	notifier  *recordingNotifier
	policy    *settings.Store
	readerMap map[string]string

	rights  *RightsService
	penalty *PenaltyService
	booking *BookingService

	now time.Time
}

func newTestEnv() *testEnv {
	logger := zap.NewNop()
	env := &testEnv{
		bookings:  newFakeBookingRepo(),
		users:     newFakeUserRepo(),
		penalties: newFakePenaltyRepo(),
		courts:    newFakeCourtRepo(),
		notifier:  &recordingNotifier{},
		readerMap: make(map[string]string),
		now:       time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC),
	}
	env.policy = settings.NewStore(&mapSettingsReader{values: env.readerMap}, time.Minute, logger)

	env.rights = NewRightsService(env.bookings, env.users, env.policy, logger)
	env.penalty = NewPenaltyService(env.users, env.penalties, env.bookings, env.notifier, logger)
	env.booking = NewBookingService(env.bookings, env.users, env.courts, env.rights, env.penalty, env.policy, env.notifier, logger)

	clock := func() time.Time { return env.now }
	env.rights.now = clock
	env.penalty.now = clock
	env.booking.now = clock
	return env
}

func (env *testEnv) newUser(code string, points int) *userDomain.User {
	now := env.now
	u := userDomain.Reconstitute(
		uuid.New(),
		code+"@silpakorn.edu", code, "Test", "6501"+code, code,
		userDomain.RoleUser,
		points, 0,
		nil,
		true, true, false,
		"",
		now, now,
	)
	env.users.add(u)
	return u
}

func (env *testEnv) newCourt(name, category string, requiredPlayers int) *courtDomain.Court {
	c := courtDomain.NewCourt(name, category, requiredPlayers)
	env.courts.add(c)
	return c
}
