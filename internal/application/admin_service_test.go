package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-sports/service-booking/internal/domain"
	userDomain "github.com/campus-sports/service-booking/internal/domain/user"
	"github.com/campus-sports/service-booking/internal/settings"
)

// fakeSettingsWriter stores settings in the shared reader map, so writes are
// immediately visible to the policy store once its cache is invalidated.
type fakeSettingsWriter struct {
	mu     sync.Mutex
	values map[string]string
}

func (w *fakeSettingsWriter) SetValue(_ context.Context, key, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.values[key] = value
	return nil
}

func (w *fakeSettingsWriter) ListAll(_ context.Context) (map[string]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]string, len(w.values))
	for k, v := range w.values {
		out[k] = v
	}
	return out, nil
}

type recordingAnnouncer struct {
	announced []string
}

func (a *recordingAnnouncer) AnnounceSettingUpdated(_ context.Context, key, _ string) {
	a.announced = append(a.announced, key)
}

func TestUpdateSettingInvalidatesCacheAndAnnounces(t *testing.T) {
	env := newTestEnv()
	writer := &fakeSettingsWriter{values: env.readerMap}
	announcer := &recordingAnnouncer{}
	admin := NewAdminService(env.users, env.courts, writer, announcer, env.policy, zap.NewNop())
	ctx := context.Background()

	// Prime the cache with the default.
	assert.Equal(t, 1, env.policy.GetInt(ctx, settings.KeyDailyRightsPerUser, settings.DefaultDailyRightsPerUser))

	require.NoError(t, admin.UpdateSetting(ctx, settings.KeyDailyRightsPerUser, "4"))
	assert.Equal(t, 4, env.policy.GetInt(ctx, settings.KeyDailyRightsPerUser, settings.DefaultDailyRightsPerUser))
	assert.Equal(t, []string{settings.KeyDailyRightsPerUser}, announcer.announced)

	err := admin.UpdateSetting(ctx, "", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestSetExtraDailyRightsClampsToGuardrails(t *testing.T) {
	env := newTestEnv()
	writer := &fakeSettingsWriter{values: env.readerMap}
	admin := NewAdminService(env.users, env.courts, writer, &recordingAnnouncer{}, env.policy, zap.NewNop())
	ctx := context.Background()
	u := env.newUser("SMC01", 100)

	applied, err := admin.SetExtraDailyRights(ctx, u.ID(), 80)
	require.NoError(t, err)
	assert.Equal(t, userDomain.MaxExtraDailyRights, applied)

	applied, err = admin.SetExtraDailyRights(ctx, u.ID(), -20)
	require.NoError(t, err)
	assert.Equal(t, userDomain.MinExtraDailyRights, applied)
}

func TestCorrectConsumedRightsAndBookingBan(t *testing.T) {
	env := newTestEnv()
	writer := &fakeSettingsWriter{values: env.readerMap}
	admin := NewAdminService(env.users, env.courts, writer, &recordingAnnouncer{}, env.policy, zap.NewNop())
	ctx := context.Background()
	u := env.newUser("SMC01", 100)

	require.NoError(t, admin.CorrectConsumedRights(ctx, u.ID(), "2026-03-16", 2))
	assert.Equal(t, 2, u.ConsumedRightsOn("2026-03-16"))
	// A non-positive count clears the entry.
	require.NoError(t, admin.CorrectConsumedRights(ctx, u.ID(), "2026-03-16", 0))
	assert.Equal(t, 0, u.ConsumedRightsOn("2026-03-16"))

	require.NoError(t, admin.SetBookingBan(ctx, u.ID(), "2026-03-20"))
	assert.True(t, u.IsBannedOn("2026-03-20"))
	// An empty date lifts the ban.
	require.NoError(t, admin.SetBookingBan(ctx, u.ID(), ""))
	assert.False(t, u.IsBannedOn("2026-03-20"))
}

func TestCreateCourtValidatesAndLists(t *testing.T) {
	env := newTestEnv()
	writer := &fakeSettingsWriter{values: env.readerMap}
	admin := NewAdminService(env.users, env.courts, writer, &recordingAnnouncer{}, env.policy, zap.NewNop())
	ctx := context.Background()

	_, err := admin.CreateCourt(ctx, "", "badminton", 0)
	require.Error(t, err)

	created, err := admin.CreateCourt(ctx, "Court A", "futsal", 0)
	require.NoError(t, err)
	// Category default for futsal.
	assert.Equal(t, 10, created.RequiredPlayers)

	courts, err := admin.ListCourts(ctx)
	require.NoError(t, err)
	require.Len(t, courts, 1)
	assert.Equal(t, "Court A", courts[0].Name)
}
